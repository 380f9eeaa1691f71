package engine

import (
	"context"
	"math"

	"github.com/piwi3910/SlabNest/internal/model"
)

// surface is the packing state of a single slab during one run.
// Each optimize or edit call builds its own surfaces; nothing is shared.
type surface struct {
	slab     model.Slab
	size     Box
	kerf     float64
	occupied []occupant
}

type occupant struct {
	partID string
	rect   Rect
}

func newSurface(slab model.Slab, kerf float64) *surface {
	return &surface{
		slab: slab,
		size: Box{W: slab.Width, H: slab.Height},
		kerf: kerf,
	}
}

// add records r as occupied by partID without any checks.
func (s *surface) add(partID string, r Rect) {
	s.occupied = append(s.occupied, occupant{partID: partID, rect: r})
}

// collider returns the first occupant that r collides with, skipping the
// occupant owned by exclude.
func (s *surface) collider(r Rect, exclude string) (occupant, bool) {
	for _, o := range s.occupied {
		if exclude != "" && o.partID == exclude {
			continue
		}
		if Overlaps(r, o.rect, s.kerf) {
			return o, true
		}
	}
	return occupant{}, false
}

func (s *surface) collides(r Rect, exclude string) bool {
	_, hit := s.collider(r, exclude)
	return hit
}

// placeLocked seats a pinned rect if it lies on the slab and clears every
// part already on it.
func (s *surface) placeLocked(partID string, r Rect) bool {
	if !InBounds(r, s.size) {
		return false
	}
	if s.collides(r, partID) {
		return false
	}
	s.add(partID, r)
	return true
}

// findBottomLeft scans grid points row by row from the slab origin and
// returns the first collision-free top-left corner for a box of size b.
// With slide set, the found point is then pushed left and afterwards down
// one millimetre at a time while it stays clear.
//
// ctx is checked once per grid row so a deadline stops a scan of a very tall
// slab; its error is returned as is.
func (s *surface) findBottomLeft(ctx context.Context, partID string, b Box, slide bool) (float64, float64, bool, error) {
	if !FitsOnSlab(b, s.size) {
		return 0, 0, false, nil
	}
	step := StepSize(s.kerf)
	maxX := s.size.W - b.W
	maxY := s.size.H - b.H

	for j := 0; float64(j)*step <= maxY; j++ {
		if err := ctx.Err(); err != nil {
			return 0, 0, false, err
		}
		y := float64(j) * step
		for i := 0; float64(i)*step <= maxX; {
			x := float64(i) * step
			o, hit := s.collider(Rect{X: x, Y: y, W: b.W, H: b.H}, partID)
			if !hit {
				if slide {
					x, y = s.slide(partID, x, y, b)
				}
				return x, y, true, nil
			}
			// Every grid point left of the collider's kerf edge hits it too.
			next := int(math.Ceil((o.rect.X + o.rect.W + s.kerf) / step))
			if next <= i {
				next = i + 1
			}
			i = next
		}
	}
	return 0, 0, false, nil
}

// slide tightens a free position against its neighbours: left first, then down.
func (s *surface) slide(partID string, x, y float64, b Box) (float64, float64) {
	for x > 0 && !s.collides(Rect{X: x - 1, Y: y, W: b.W, H: b.H}, partID) {
		x--
	}
	for y > 0 && !s.collides(Rect{X: x, Y: y - 1, W: b.W, H: b.H}, partID) {
		y--
	}
	return x, y
}

// usedArea sums the effective area of every occupant.
func (s *surface) usedArea() float64 {
	var total float64
	for _, o := range s.occupied {
		total += o.rect.W * o.rect.H
	}
	return total
}

// usage builds the slab usage record for this surface.
func (s *surface) usage() model.SlabUsage {
	used := s.usedArea()
	total := s.slab.Area()
	waste := 0.0
	if total > 0 {
		waste = (total - used) / total * 100
	}
	return model.SlabUsage{
		SlabID:          s.slab.ID,
		UsedArea:        used,
		TotalArea:       total,
		WastePercentage: waste,
	}
}
