package model

import (
	"math"
	"sort"
	"strings"
)

// ProfileRaw marks an unfinished sawn edge. Raw edges need no finishing.
const ProfileRaw = "raw"

// EdgeFinishSummary holds the finishing length needed per edge profile.
type EdgeFinishSummary struct {
	ByProfile        map[string]float64 `json:"by_profile"`          // mm per profile, no waste
	TotalLinearMM    float64            `json:"total_linear_mm"`     // all profiles, no waste
	TotalLinearM     float64            `json:"total_linear_m"`      // all profiles, no waste
	WastePercent     float64            `json:"waste_percent"`       // Waste percentage applied
	TotalWithWasteMM float64            `json:"total_with_waste_mm"` // Total with waste in mm
	TotalWithWasteM  float64            `json:"total_with_waste_m"`  // Total with waste in meters
	PartCount        int                `json:"part_count"`          // Parts with at least one finished edge
	EdgeCount        int                `json:"edge_count"`          // Finished edges across all parts
}

// EdgeLength returns the length in mm of the named edge of the part. Round
// parts have a single curved edge whatever it is called: the circumference
// for circles and the outer arc for arcs.
func (p Part) EdgeLength(edge string) float64 {
	switch d := p.ShapeData.(type) {
	case *CircleData:
		return 2 * math.Pi * d.Radius
	case *ArcData:
		sweep := math.Abs(d.EndAngle - d.StartAngle)
		if sweep == 0 || sweep > 360 {
			sweep = 360
		}
		return d.Radius * sweep * math.Pi / 180
	}
	switch edge {
	case "top", "bottom":
		return p.Width
	case "left", "right":
		return p.Height
	}
	return 0
}

func finished(e EdgeProfile) bool {
	return e.Profile != "" && e.Profile != ProfileRaw
}

// CalculateEdgeFinishing totals the finished edge length of all parts.
// wastePercent is the additional percentage to add (e.g., 10 for 10%).
func CalculateEdgeFinishing(parts []Part, wastePercent float64) EdgeFinishSummary {
	s := EdgeFinishSummary{
		ByProfile:    map[string]float64{},
		WastePercent: wastePercent,
	}

	for _, p := range parts {
		edges := 0
		for _, e := range p.EdgeProfiles {
			if !finished(e) {
				continue
			}
			l := p.EdgeLength(e.Edge)
			s.ByProfile[e.Profile] += l
			s.TotalLinearMM += l
			edges++
		}
		if edges > 0 {
			s.PartCount++
			s.EdgeCount += edges
		}
	}

	totalWithWaste := math.Ceil(s.TotalLinearMM * (1.0 + wastePercent/100.0))
	s.TotalLinearM = s.TotalLinearMM / 1000.0
	s.TotalWithWasteMM = totalWithWaste
	s.TotalWithWasteM = totalWithWaste / 1000.0
	return s
}

// PerPartEdgeFinish is the finishing breakdown of one part.
type PerPartEdgeFinish struct {
	PartID string  `json:"part_id"`
	Name   string  `json:"name"`
	Edges  string  `json:"edges"`  // e.g. "left:bullnose+top:polished"
	Length float64 `json:"length"` // mm
}

// CalculatePerPartEdgeFinishing returns the finishing breakdown per part,
// skipping parts without finished edges.
func CalculatePerPartEdgeFinishing(parts []Part) []PerPartEdgeFinish {
	var results []PerPartEdgeFinish
	for _, p := range parts {
		var names []string
		var length float64
		for _, e := range p.EdgeProfiles {
			if !finished(e) {
				continue
			}
			names = append(names, e.Edge+":"+e.Profile)
			length += p.EdgeLength(e.Edge)
		}
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		results = append(results, PerPartEdgeFinish{
			PartID: p.ID,
			Name:   p.Name,
			Edges:  strings.Join(names, "+"),
			Length: length,
		})
	}
	return results
}
