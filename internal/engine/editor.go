package engine

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/piwi3910/SlabNest/internal/model"
)

// Editor re-flows a single slab after an interactive change to one part.
// It never runs a full optimization: locked parts and parts on other slabs
// stay where they are.
type Editor struct {
	Slabs     []model.Slab
	KerfWidth float64
}

func NewEditor(slabs []model.Slab, kerf float64) *Editor {
	return &Editor{Slabs: slabs, KerfWidth: kerf}
}

// EditResult is the outcome of an edit: the full placement list and the part
// list, either of which may have changed.
type EditResult struct {
	Placements []model.PlacedPart `json:"placements"`
	Parts      []model.Part       `json:"parts"`
}

// UpdatePlacement applies upd to the placement of partID and re-seats the
// unlocked parts sharing its target slab around it.
//
// The moved part anchors the re-flow only while it is unlocked; a locked
// part's position is already protected through its own lock. Movable parts
// are re-seated largest first with the grid search and keep their rotation.
// One that finds no slot keeps its previous placement and still blocks the
// parts seated after it.
//
// The input slices are not modified. Output placements keep the input order.
// The only error is ctx's, when it ends during re-seating.
func (e *Editor) UpdatePlacement(ctx context.Context, current []model.PlacedPart, parts []model.Part, partID string, upd model.PlacementUpdate) (EditResult, error) {
	out := EditResult{
		Placements: clonePlacements(current),
		Parts:      cloneParts(parts),
	}

	prev, idx, found := lo.FindIndexOf(current, func(p model.PlacedPart) bool { return p.PartID == partID })
	if !found {
		return out, nil
	}

	moved := applyUpdate(prev, upd)
	lockedIDs := lockedPartIDs(parts)
	movedLocked := lockedIDs[partID]

	slab, ok := lo.Find(e.Slabs, func(s model.Slab) bool { return s.ID == moved.SlabID })
	if !ok {
		out.Placements[idx] = moved
		if movedLocked {
			mirrorLock(out.Parts, moved)
		}
		return out, nil
	}

	s := newSurface(slab, e.KerfWidth)
	var movable []int
	for i, p := range current {
		if i == idx || p.SlabID != slab.ID {
			continue
		}
		if lockedIDs[p.PartID] {
			s.add(p.PartID, placedRect(p))
			continue
		}
		movable = append(movable, i)
	}
	if !movedLocked {
		s.add(moved.PartID, placedRect(moved))
	}

	sort.SliceStable(movable, func(a, b int) bool {
		return current[movable[a]].Area() > current[movable[b]].Area()
	})

	for _, i := range movable {
		p := current[i]
		box := Box{W: p.Width, H: p.Height}
		x, y, found, err := s.findBottomLeft(ctx, p.PartID, box, false)
		if err != nil {
			return EditResult{}, err
		}
		if found {
			p.X, p.Y = x, y
		}
		s.add(p.PartID, placedRect(p))
		out.Placements[i] = p
	}

	out.Placements[idx] = moved
	if movedLocked {
		mirrorLock(out.Parts, moved)
	}
	return out, nil
}

// SetLocked toggles the lock of partID. Locking pins the part at its current
// placement, or at the origin of the first slab when it has none; unlocking
// clears the pin so the part becomes movable again.
func (e *Editor) SetLocked(current []model.PlacedPart, parts []model.Part, partID string, locked bool) []model.Part {
	out := cloneParts(parts)
	for i := range out {
		if out[i].ID != partID {
			continue
		}
		out[i].IsLocked = locked
		if !locked {
			out[i].LockedPosition = nil
			continue
		}
		pos := model.LockedPosition{}
		if placement, ok := lo.Find(current, func(p model.PlacedPart) bool { return p.PartID == partID }); ok {
			pos = model.LockedPosition{
				SlabID:   placement.SlabID,
				X:        placement.X,
				Y:        placement.Y,
				Rotation: placement.Rotation,
			}
		} else if len(e.Slabs) > 0 {
			pos.SlabID = e.Slabs[0].ID
		}
		out[i].LockedPosition = &pos
	}
	return out
}

// applyUpdate merges upd into p. A rotation change that flips between the
// upright and quarter-turned orientations swaps the effective box.
func applyUpdate(p model.PlacedPart, upd model.PlacementUpdate) model.PlacedPart {
	if upd.X != nil {
		p.X = *upd.X
	}
	if upd.Y != nil {
		p.Y = *upd.Y
	}
	if upd.SlabID != nil {
		p.SlabID = *upd.SlabID
	}
	if upd.Rotation != nil {
		if upd.Rotation.Swaps() != p.Rotation.Swaps() {
			p.Width, p.Height = p.Height, p.Width
		}
		p.Rotation = *upd.Rotation
	}
	return p
}

// mirrorLock moves the lock target of a locked part along with its placement.
func mirrorLock(parts []model.Part, p model.PlacedPart) {
	for i := range parts {
		if parts[i].ID != p.PartID {
			continue
		}
		parts[i].LockedPosition = &model.LockedPosition{
			SlabID:   p.SlabID,
			X:        p.X,
			Y:        p.Y,
			Rotation: p.Rotation,
		}
	}
}

func lockedPartIDs(parts []model.Part) map[string]bool {
	ids := make(map[string]bool)
	for _, p := range parts {
		if p.IsLocked {
			ids[p.ID] = true
		}
	}
	return ids
}

func clonePlacements(in []model.PlacedPart) []model.PlacedPart {
	out := make([]model.PlacedPart, len(in))
	copy(out, in)
	return out
}

// cloneParts copies the part list, including each lock, so edits never write
// through to the caller's records.
func cloneParts(in []model.Part) []model.Part {
	out := make([]model.Part, len(in))
	copy(out, in)
	for i := range out {
		if out[i].LockedPosition != nil {
			pos := *out[i].LockedPosition
			out[i].LockedPosition = &pos
		}
	}
	return out
}
