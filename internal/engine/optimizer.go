package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/piwi3910/SlabNest/internal/model"
)

// Optimizer runs the greedy bottom-left nesting algorithm.
type Optimizer struct {
	Settings model.NestSettings
}

func New(settings model.NestSettings) *Optimizer {
	return &Optimizer{Settings: settings}
}

// Optimize seats parts onto slabs and returns the layout with per-slab usage.
//
// Locked parts go first, straight into their pinned position; a pin that is
// off the slab or collides with an earlier pin leaves the part unplaced.
// Free parts follow, largest nominal area first (ties keep input order), each
// tried on every slab in caller order, upright before rotated.
//
// Parts that fit nowhere are reported in UnplacedParts and are not an error.
// An error is returned only for an invalid request, malformed shape data or
// a cancelled context.
func (o *Optimizer) Optimize(ctx context.Context, parts []model.Part, slabs []model.Slab) (model.NestingResult, error) {
	const op = "engine.Optimize"

	if err := validateInput(parts, slabs, o.Settings.KerfWidth); err != nil {
		return model.NestingResult{}, fmt.Errorf("%s: %w", op, err)
	}

	kerf := o.Settings.KerfWidth
	surfaces := make([]*surface, len(slabs))
	for i, slab := range slabs {
		surfaces[i] = newSurface(slab, kerf)
	}
	byID := lo.SliceToMap(surfaces, func(s *surface) (string, *surface) {
		return s.slab.ID, s
	})

	locked, free := lo.FilterReject(parts, func(p model.Part, _ int) bool {
		return p.HasLock()
	})

	result := model.NestingResult{
		Placements:    []model.PlacedPart{},
		UnplacedParts: []string{},
	}

	for _, part := range locked {
		pos := *part.LockedPosition
		slabID := pos.SlabID
		if slabID == "" {
			slabID = slabs[0].ID
		}
		s, ok := byID[slabID]
		if !ok {
			result.UnplacedParts = append(result.UnplacedParts, part.ID)
			continue
		}
		box := EffectiveBox(part, IsRotated(pos.Rotation))
		r := Rect{X: pos.X, Y: pos.Y, W: box.W, H: box.H}
		if !s.placeLocked(part.ID, r) {
			result.UnplacedParts = append(result.UnplacedParts, part.ID)
			continue
		}
		result.Placements = append(result.Placements, model.PlacedPart{
			PartID:   part.ID,
			SlabID:   slabID,
			X:        pos.X,
			Y:        pos.Y,
			Rotation: pos.Rotation,
			Width:    box.W,
			Height:   box.H,
		})
	}

	// Largest first reduces fragmentation; stable keeps ties in input order.
	sorted := make([]model.Part, len(free))
	copy(sorted, free)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NominalArea() > sorted[j].NominalArea()
	})

	for _, part := range sorted {
		if err := ctx.Err(); err != nil {
			return model.NestingResult{}, fmt.Errorf("%s: %w", op, err)
		}
		placement, ok, err := o.placeFree(ctx, surfaces, part)
		if err != nil {
			return model.NestingResult{}, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			result.UnplacedParts = append(result.UnplacedParts, part.ID)
			continue
		}
		result.Placements = append(result.Placements, placement)
	}

	result.SlabUsage = make([]model.SlabUsage, len(surfaces))
	for i, s := range surfaces {
		result.SlabUsage[i] = s.usage()
	}
	return result, nil
}

// placeFree tries every slab in order and, on each, every allowed orientation.
// The first slab that yields a position wins.
func (o *Optimizer) placeFree(ctx context.Context, surfaces []*surface, part model.Part) (model.PlacedPart, bool, error) {
	orientations := []bool{false}
	if part.AllowRotation {
		orientations = append(orientations, true)
	}

	for _, s := range surfaces {
		for _, rotated := range orientations {
			box := EffectiveBox(part, rotated)
			x, y, ok, err := s.findBottomLeft(ctx, part.ID, box, true)
			if err != nil {
				return model.PlacedPart{}, false, err
			}
			if !ok {
				continue
			}
			s.add(part.ID, Rect{X: x, Y: y, W: box.W, H: box.H})
			rotation := model.Rotation0
			if rotated {
				rotation = model.Rotation90
			}
			return model.PlacedPart{
				PartID:   part.ID,
				SlabID:   s.slab.ID,
				X:        x,
				Y:        y,
				Rotation: rotation,
				Width:    box.W,
				Height:   box.H,
			}, true, nil
		}
	}
	return model.PlacedPart{}, false, nil
}

// validateInput rejects requests the engine cannot work on. Shape data
// problems are reported as engine faults rather than invalid requests.
func validateInput(parts []model.Part, slabs []model.Slab, kerf float64) error {
	if len(slabs) == 0 {
		return fmt.Errorf("%w: at least one slab is required", model.ErrInvalidRequest)
	}
	if kerf < 0 || math.IsNaN(kerf) || math.IsInf(kerf, 0) {
		return fmt.Errorf("%w: kerf width %g must be a non-negative number", model.ErrInvalidRequest, kerf)
	}

	slabIDs := make(map[string]bool, len(slabs))
	for _, s := range slabs {
		if s.ID == "" {
			return fmt.Errorf("%w: slab %q has no id", model.ErrInvalidRequest, s.Name)
		}
		if slabIDs[s.ID] {
			return fmt.Errorf("%w: duplicate slab id %q", model.ErrInvalidRequest, s.ID)
		}
		slabIDs[s.ID] = true
		if !(s.Width > 0) || !(s.Height > 0) {
			return fmt.Errorf("%w: slab %q size %gx%g must be positive", model.ErrInvalidRequest, s.ID, s.Width, s.Height)
		}
	}

	partIDs := make(map[string]bool, len(parts))
	for _, p := range parts {
		if p.ID == "" {
			return fmt.Errorf("%w: part %q has no id", model.ErrInvalidRequest, p.Name)
		}
		if partIDs[p.ID] {
			return fmt.Errorf("%w: duplicate part id %q", model.ErrInvalidRequest, p.ID)
		}
		partIDs[p.ID] = true
		if err := p.ValidateShape(); err != nil {
			return fmt.Errorf("%w: %w", model.ErrEngineFault, err)
		}
		if _, round := p.Radius(); !round && (!(p.Width > 0) || !(p.Height > 0)) {
			return fmt.Errorf("%w: part %q size %gx%g must be positive", model.ErrInvalidRequest, p.ID, p.Width, p.Height)
		}
		if p.HasLock() && !p.LockedPosition.Rotation.Valid() {
			return fmt.Errorf("%w: part %q locked rotation %d is not a quarter turn",
				model.ErrInvalidRequest, p.ID, p.LockedPosition.Rotation)
		}
	}
	return nil
}
