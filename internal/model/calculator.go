package model

import "math"

// SlabEstimate holds the result of a slab purchasing calculation.
type SlabEstimate struct {
	TotalPartArea    float64  `json:"total_part_area"`    // Bounding-box area of all parts plus kerf (sq mm)
	TotalPartAreaM2  float64  `json:"total_part_area_m2"` // Same in square meters
	SlabArea         float64  `json:"slab_area"`          // Area of one slab (sq mm)
	SlabsNeededExact float64  `json:"slabs_needed_exact"` // Exact fractional number of slabs
	SlabsNeededMin   int      `json:"slabs_needed_min"`   // Minimum slabs (ceiling of exact)
	SlabsWithWaste   int      `json:"slabs_with_waste"`   // Recommended slabs including waste factor
	WastePercent     float64  `json:"waste_percent"`      // Waste factor applied (e.g., 25 for 25%)
	EstimatedCost    float64  `json:"estimated_cost"`
	PricePerSlab     float64  `json:"price_per_slab"`
	KerfWidth        float64  `json:"kerf_width"`
	Oversized        []string `json:"oversized,omitempty"` // ids of parts that fit the slab in no allowed orientation
}

const sqmmPerSqm = 1_000_000.0

// EstimateSlabs computes how many slabs of one size to buy for a part list.
// Round parts count with their diameter square, the same box the packer uses.
// Parts that can never fit the slab are reported in Oversized and left out of
// the area total.
func EstimateSlabs(parts []Part, slabWidth, slabHeight, kerfWidth, wastePercent, pricePerSlab float64) SlabEstimate {
	est := SlabEstimate{
		WastePercent: wastePercent,
		PricePerSlab: pricePerSlab,
		KerfWidth:    kerfWidth,
	}

	checkFit := slabWidth > 0 && slabHeight > 0
	for _, p := range parts {
		w, h := p.Width, p.Height
		if r, ok := p.Radius(); ok {
			w, h = 2*r, 2*r
		}
		if checkFit {
			fits := w <= slabWidth && h <= slabHeight
			if !fits && p.AllowRotation {
				fits = h <= slabWidth && w <= slabHeight
			}
			if !fits {
				est.Oversized = append(est.Oversized, p.ID)
				continue
			}
		}
		est.TotalPartArea += (w + kerfWidth) * (h + kerfWidth)
	}
	est.TotalPartAreaM2 = est.TotalPartArea / sqmmPerSqm

	est.SlabArea = slabWidth * slabHeight
	if est.SlabArea <= 0 {
		est.SlabArea = 0
		return est
	}

	est.SlabsNeededExact = est.TotalPartArea / est.SlabArea
	est.SlabsNeededMin = int(math.Ceil(est.SlabsNeededExact))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	est.SlabsWithWaste = int(math.Ceil(est.SlabsNeededExact * wasteFactor))
	if est.SlabsWithWaste < est.SlabsNeededMin {
		est.SlabsWithWaste = est.SlabsNeededMin
	}

	est.EstimatedCost = float64(est.SlabsWithWaste) * pricePerSlab
	return est
}
