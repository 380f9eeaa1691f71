package model

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Offcut is a usable rectangular remnant left on a slab after nesting.
type Offcut struct {
	ID       string  `json:"id"`
	SlabID   string  `json:"slabId"`
	SlabName string  `json:"slabName"`
	X        float64 `json:"x"`      // mm from the slab's left edge
	Y        float64 `json:"y"`      // mm from the slab's top edge
	Width    float64 `json:"width"`  // usable width (mm)
	Height   float64 `json:"height"` // usable height (mm)
}

// Area returns the area of the offcut in square mm.
func (o Offcut) Area() float64 {
	return o.Width * o.Height
}

// ToSlab converts an offcut into a slab that can be offered to a later run.
func (o Offcut) ToSlab() Slab {
	name := "Offcut " + o.SlabName
	if o.SlabName == "" {
		name = "Offcut " + o.SlabID
	}
	return NewSlab(name, o.Width, o.Height)
}

// MinOffcutDimension is the minimum width or height (in mm) for a remnant
// to be kept. Anything narrower is waste.
const MinOffcutDimension = 50.0

// MinOffcutArea is the minimum area (in sq mm) for a remnant to be kept.
const MinOffcutArea = 10000.0 // 100mm x 100mm equivalent

// DetectOffcuts finds the strips to the right of and below everything placed
// on slab. The strips start one kerf past the outermost parts.
func DetectOffcuts(slab Slab, placements []PlacedPart, kerf float64) []Offcut {
	newOffcut := func(x, y, w, h float64) Offcut {
		return Offcut{
			ID:       uuid.New().String()[:8],
			SlabID:   slab.ID,
			SlabName: slab.Name,
			X:        x,
			Y:        y,
			Width:    w,
			Height:   h,
		}
	}

	var onSlab []PlacedPart
	for _, p := range placements {
		if p.SlabID == slab.ID {
			onSlab = append(onSlab, p)
		}
	}
	if len(onSlab) == 0 {
		return []Offcut{newOffcut(0, 0, slab.Width, slab.Height)}
	}

	var maxRight, maxBottom float64
	for _, p := range onSlab {
		maxRight = math.Max(maxRight, p.X+p.Width+kerf)
		maxBottom = math.Max(maxBottom, p.Y+p.Height+kerf)
	}

	var offcuts []Offcut

	rightW := slab.Width - maxRight
	if usable(rightW, slab.Height) {
		offcuts = append(offcuts, newOffcut(maxRight, 0, rightW, slab.Height))
	}

	// Bottom strip stops at the right strip so the two never overlap.
	bottomH := slab.Height - maxBottom
	bottomW := math.Min(maxRight, slab.Width)
	if usable(bottomW, bottomH) {
		offcuts = append(offcuts, newOffcut(0, maxBottom, bottomW, bottomH))
	}

	sort.Slice(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	return offcuts
}

func usable(w, h float64) bool {
	return w >= MinOffcutDimension && h >= MinOffcutDimension && w*h >= MinOffcutArea
}

// DetectAllOffcuts finds offcuts on every slab that received at least one part.
// Untouched slabs are left out; they are still whole stock.
func DetectAllOffcuts(result NestingResult, slabs []Slab, kerf float64) []Offcut {
	var all []Offcut
	for _, slab := range slabs {
		placed := result.PlacementsOn(slab.ID)
		if len(placed) == 0 {
			continue
		}
		all = append(all, DetectOffcuts(slab, placed, kerf)...)
	}
	return all
}

// TotalOffcutArea returns the total area of all offcuts in square mm.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
