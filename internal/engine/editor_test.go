package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabNest/internal/model"
)

func ptr[T any](v T) *T { return &v }

func update(t *testing.T, ed *Editor, current []model.PlacedPart, parts []model.Part, partID string, upd model.PlacementUpdate) EditResult {
	t.Helper()
	out, err := ed.UpdatePlacement(context.Background(), current, parts, partID, upd)
	require.NoError(t, err)
	return out
}

func editorFixture() ([]model.Slab, []model.Part, []model.PlacedPart) {
	slabs := []model.Slab{slab("s1", 1000, 1000), slab("s2", 1000, 1000)}
	parts := []model.Part{
		rectPart("a", 400, 400, true),
		rectPart("b", 300, 300, true),
		lockedPart("l", 200, 200, "s1", 800, 800, model.Rotation0),
		rectPart("c", 500, 500, true),
	}
	placements := []model.PlacedPart{
		{PartID: "a", SlabID: "s1", X: 0, Y: 0, Width: 400, Height: 400},
		{PartID: "b", SlabID: "s1", X: 400, Y: 0, Width: 300, Height: 300},
		{PartID: "l", SlabID: "s1", X: 800, Y: 800, Width: 200, Height: 200},
		{PartID: "c", SlabID: "s2", X: 0, Y: 0, Width: 500, Height: 500},
	}
	return slabs, parts, placements
}

func TestUpdatePlacement_ReflowsAroundMovedPart(t *testing.T) {
	slabs, parts, current := editorFixture()
	ed := NewEditor(slabs, 0)

	out := update(t, ed, current, parts, "a", model.PlacementUpdate{X: ptr(300.0)})

	require.Len(t, out.Placements, 4)
	assert.Equal(t, model.PlacedPart{PartID: "a", SlabID: "s1", X: 300, Y: 0, Width: 400, Height: 400}, out.Placements[0])
	assert.Equal(t, 0.0, out.Placements[1].X, "b is re-seated into the gap left of a")
	assert.Equal(t, 0.0, out.Placements[1].Y)
	assert.Equal(t, current[2], out.Placements[2], "locked part never moves")
	assert.Equal(t, current[3], out.Placements[3], "other slab untouched")
	assert.Equal(t, parts, out.Parts)
}

func TestUpdatePlacement_KeepsInputOrderAndInputs(t *testing.T) {
	slabs, parts, current := editorFixture()
	before := clonePlacements(current)
	ed := NewEditor(slabs, 0)

	out := update(t, ed, current, parts, "b", model.PlacementUpdate{Y: ptr(500.0)})

	assert.Equal(t, before, current, "input placements must not be modified")
	ids := make([]string, len(out.Placements))
	for i, p := range out.Placements {
		ids[i] = p.PartID
	}
	assert.Equal(t, []string{"a", "b", "l", "c"}, ids)
	assert.Equal(t, 500.0, out.Placements[1].Y)
}

func TestUpdatePlacement_LockedPartMirrorsLock(t *testing.T) {
	slabs, parts, current := editorFixture()
	ed := NewEditor(slabs, 0)

	out := update(t, ed, current, parts, "l", model.PlacementUpdate{X: ptr(500.0), Y: ptr(500.0)})

	assert.Equal(t, 500.0, out.Placements[2].X)
	assert.Equal(t, 500.0, out.Placements[2].Y)
	require.NotNil(t, out.Parts[2].LockedPosition)
	assert.Equal(t, model.LockedPosition{SlabID: "s1", X: 500, Y: 500}, *out.Parts[2].LockedPosition)
	assert.Equal(t, 800.0, parts[2].LockedPosition.X, "caller's lock is untouched")

	// Movable parts on the slab are re-seated bottom-left, largest first.
	assert.Equal(t, 0.0, out.Placements[0].X)
	assert.Equal(t, 400.0, out.Placements[1].X)
}

func TestUpdatePlacement_RotationSwapsBox(t *testing.T) {
	slabs := []model.Slab{slab("s1", 1000, 1000)}
	parts := []model.Part{rectPart("a", 400, 200, true)}
	current := []model.PlacedPart{{PartID: "a", SlabID: "s1", Width: 400, Height: 200}}

	out := update(t, NewEditor(slabs, 3), current, parts, "a", model.PlacementUpdate{Rotation: ptr(model.Rotation90)})

	p := out.Placements[0]
	assert.Equal(t, model.Rotation90, p.Rotation)
	assert.Equal(t, 200.0, p.Width)
	assert.Equal(t, 400.0, p.Height)

	out = update(t, NewEditor(slabs, 3), out.Placements, parts, "a", model.PlacementUpdate{Rotation: ptr(model.Rotation270)})
	assert.Equal(t, 200.0, out.Placements[0].Width, "90 to 270 keeps the box")
}

func TestUpdatePlacement_UnknownSlabAppliedVerbatim(t *testing.T) {
	slabs, parts, current := editorFixture()
	ed := NewEditor(slabs, 0)

	out := update(t, ed, current, parts, "a", model.PlacementUpdate{SlabID: ptr("ghost"), X: ptr(10.0)})

	assert.Equal(t, "ghost", out.Placements[0].SlabID)
	assert.Equal(t, 10.0, out.Placements[0].X)
	assert.Equal(t, current[1:], out.Placements[1:])
}

func TestUpdatePlacement_UnknownPartIsNoop(t *testing.T) {
	slabs, parts, current := editorFixture()

	out := update(t, NewEditor(slabs, 0), current, parts, "missing", model.PlacementUpdate{X: ptr(1.0)})

	assert.Equal(t, current, out.Placements)
	assert.Equal(t, parts, out.Parts)
}

func TestUpdatePlacement_NoSlotKeepsPrevious(t *testing.T) {
	slabs := []model.Slab{slab("s1", 500, 500)}
	parts := []model.Part{rectPart("a", 400, 400, false), rectPart("b", 300, 300, false)}
	current := []model.PlacedPart{
		{PartID: "a", SlabID: "s1", X: 0, Y: 0, Width: 400, Height: 400},
		{PartID: "b", SlabID: "s1", X: 100, Y: 100, Width: 300, Height: 300},
	}

	out := update(t, NewEditor(slabs, 0), current, parts, "a", model.PlacementUpdate{X: ptr(50.0), Y: ptr(50.0)})

	assert.Equal(t, current[1], out.Placements[1])
}

func TestUpdatePlacement_MoveToOtherSlab(t *testing.T) {
	slabs, parts, current := editorFixture()

	out := update(t, NewEditor(slabs, 0), current, parts, "b", model.PlacementUpdate{SlabID: ptr("s2"), X: ptr(0.0), Y: ptr(0.0)})

	assert.Equal(t, "s2", out.Placements[1].SlabID)
	assert.Equal(t, 0.0, out.Placements[1].X)
	// c is movable and is pushed off the moved part.
	c := out.Placements[3]
	assert.False(t, Overlaps(placedRect(out.Placements[1]), placedRect(c), 0))
	assert.Equal(t, current[0], out.Placements[0], "source slab is not re-flowed")
}

func TestSetLocked_CapturesPlacement(t *testing.T) {
	slabs, parts, current := editorFixture()

	out := NewEditor(slabs, 0).SetLocked(current, parts, "b", true)

	assert.True(t, out[1].IsLocked)
	require.NotNil(t, out[1].LockedPosition)
	assert.Equal(t, model.LockedPosition{SlabID: "s1", X: 400, Y: 0}, *out[1].LockedPosition)
	assert.False(t, parts[1].IsLocked, "input parts must not be modified")
}

func TestSetLocked_WithoutPlacementUsesFirstSlab(t *testing.T) {
	slabs, parts, _ := editorFixture()

	out := NewEditor(slabs, 0).SetLocked(nil, parts, "a", true)

	require.NotNil(t, out[0].LockedPosition)
	assert.Equal(t, model.LockedPosition{SlabID: "s1"}, *out[0].LockedPosition)
}

func TestSetLocked_Unlock(t *testing.T) {
	slabs, parts, current := editorFixture()

	out := NewEditor(slabs, 0).SetLocked(current, parts, "l", false)

	assert.False(t, out[2].IsLocked)
	assert.Nil(t, out[2].LockedPosition)
	assert.NotNil(t, parts[2].LockedPosition)
}

func TestUpdatePlacement_DeadlineStopsReseating(t *testing.T) {
	parts, slabs := tallSlabRequest()
	parts = append(parts, rectPart("g", 100, 100, false))
	current := []model.PlacedPart{
		{PartID: "wall", SlabID: "s1", X: 0, Y: 500, Width: 1000, Height: slabs[0].Height - 500},
		{PartID: "f", SlabID: "s1", X: 0, Y: 0, Width: 600, Height: 600},
		{PartID: "g", SlabID: "s1", X: 700, Y: 0, Width: 100, Height: 100},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewEditor(slabs, 2).UpdatePlacement(ctx, current, parts, "g", model.PlacementUpdate{X: ptr(800.0)})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

// Parts of at most 250mm on 3000x2000 slabs always leave a free 300mm cell
// for re-seating, so every movable part on the target slab finds a slot.
func TestUpdatePlacement_RandomizedDrags(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		f := gofakeit.New(seed)
		kerf := float64(f.IntRange(0, 5))
		slabs := []model.Slab{slab("s0", 3000, 2000), slab("s1", 3000, 2000)}
		parts := make([]model.Part, f.IntRange(2, 8))
		for i := range parts {
			parts[i] = rectPart(fmt.Sprintf("p%d", i), float64(f.IntRange(50, 250)), float64(f.IntRange(50, 250)), false)
		}

		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			result, err := New(testSettings(kerf)).Optimize(context.Background(), parts, slabs)
			require.NoError(t, err)
			require.Empty(t, result.UnplacedParts)

			ed := NewEditor(slabs, kerf)
			current := result.Placements
			for _, p := range current {
				if f.IntRange(0, 2) == 0 {
					parts = ed.SetLocked(current, parts, p.PartID, true)
				}
			}
			locked := lockedPartIDs(parts)

			for drag := 0; drag < 5; drag++ {
				var movable []int
				for i, p := range current {
					if !locked[p.PartID] {
						movable = append(movable, i)
					}
				}
				if len(movable) == 0 {
					return
				}
				idx := movable[f.IntRange(0, len(movable)-1)]
				target := slabs[f.IntRange(0, len(slabs)-1)]
				moved := current[idx]
				x := float64(f.IntRange(0, int(target.Width-moved.Width)))
				y := float64(f.IntRange(0, int(target.Height-moved.Height)))

				out := update(t, ed, current, parts, moved.PartID,
					model.PlacementUpdate{SlabID: &target.ID, X: &x, Y: &y})
				require.Len(t, out.Placements, len(current))

				got := out.Placements[idx]
				assert.Equal(t, target.ID, got.SlabID)
				assert.Equal(t, x, got.X)
				assert.Equal(t, y, got.Y)

				anchors := []Rect{placedRect(got)}
				var reseated []model.PlacedPart
				for i, p := range current {
					if i == idx {
						continue
					}
					switch {
					case locked[p.PartID]:
						assert.Equal(t, p, out.Placements[i], "locked part %s moved", p.PartID)
						if p.SlabID == target.ID {
							anchors = append(anchors, placedRect(p))
						}
					case p.SlabID != target.ID:
						assert.Equal(t, p, out.Placements[i], "part %s on another slab moved", p.PartID)
					default:
						reseated = append(reseated, out.Placements[i])
					}
				}

				for i, a := range reseated {
					assert.Equal(t, target.ID, a.SlabID)
					assert.True(t, InBounds(placedRect(a), Box{W: target.Width, H: target.Height}),
						"%s out of slab at (%.0f,%.0f)", a.PartID, a.X, a.Y)
					for _, r := range anchors {
						assert.False(t, Overlaps(placedRect(a), r, kerf), "%s overlaps an anchor", a.PartID)
					}
					for _, b := range reseated[i+1:] {
						assert.False(t, Overlaps(placedRect(a), placedRect(b), kerf), "%s overlaps %s", a.PartID, b.PartID)
					}
				}

				current = out.Placements
			}
		})
	}
}
