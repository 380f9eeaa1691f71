package engine

import (
	"math"

	"github.com/piwi3910/SlabNest/internal/model"
)

// Box is an axis-aligned bounding box size in mm.
type Box struct {
	W, H float64
}

// Area returns w*h.
func (b Box) Area() float64 {
	return b.W * b.H
}

// Rect is a box positioned on a slab, with its top-left corner at (X, Y).
type Rect struct {
	X, Y, W, H float64
}

// IsRotated reports whether rotation swaps the bounding box (90 and 270).
func IsRotated(rotation model.Rotation) bool {
	return rotation.Swaps()
}

// EffectiveBox returns the collision box of a part in the requested orientation.
// Circles and arcs occupy a 2r x 2r square that does not change when rotated;
// rectangles and L-shapes use the nominal width and height, swapped when rotated.
// The part's shape data must already have passed model.Part.ValidateShape.
func EffectiveBox(part model.Part, rotated bool) Box {
	if r, ok := part.Radius(); ok {
		return Box{W: 2 * r, H: 2 * r}
	}
	if rotated {
		return Box{W: part.Height, H: part.Width}
	}
	return Box{W: part.Width, H: part.Height}
}

// Overlaps reports whether two rects collide once each is grown by kerf on its
// right and bottom edges: [x, x+w+kerf) x [y, y+h+kerf), open-interval test.
// Parts packed with the same kerf therefore always keep one kerf of gap.
func Overlaps(a, b Rect, kerf float64) bool {
	return a.X < b.X+b.W+kerf && a.X+a.W+kerf > b.X &&
		a.Y < b.Y+b.H+kerf && a.Y+a.H+kerf > b.Y
}

// FitsOnSlab reports whether box can lie on a slab of the given size at all.
func FitsOnSlab(box, slab Box) bool {
	return box.W <= slab.W && box.H <= slab.H
}

// InBounds reports whether r lies fully inside a slab of the given size.
func InBounds(r Rect, slab Box) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= slab.W && r.Y+r.H <= slab.H
}

// StepSize returns the grid step of the bottom-left search: half the kerf
// rounded down (at least 1mm), or 10mm when the kerf is zero.
func StepSize(kerf float64) float64 {
	if kerf == 0 {
		return 10
	}
	return math.Max(1, math.Floor(kerf/2))
}

// placedRect converts a placement into its slab rectangle.
func placedRect(p model.PlacedPart) Rect {
	return Rect{X: p.X, Y: p.Y, W: p.Width, H: p.Height}
}
