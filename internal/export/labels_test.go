package export

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SlabNest/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestLayout()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertNonEmptyFile(t, path, 500)
}

func TestExportLabels_EmptyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportLabels(path, NewLayout(model.NestingResult{}, nil, nil, model.DefaultSettings()))
	if err == nil {
		t.Fatal("expected error for empty layout, got nil")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(buildTestLayout())

	if len(labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(labels))
	}

	first := labels[0]
	if first.PartName != "Kitchen L" || first.Shape != model.ShapeLShape {
		t.Errorf("unexpected first label %+v", first)
	}
	if first.SlabIndex != 1 || first.Stone != "Carrara" {
		t.Errorf("expected slab 1 of Carrara, got %d %q", first.SlabIndex, first.Stone)
	}
	if first.Cutouts != 1 {
		t.Errorf("expected 1 cutout, got %d", first.Cutouts)
	}
	if len(first.Edges) != 1 || first.Edges[0] != "top:polished" {
		t.Errorf("expected only the finished edge, got %v", first.Edges)
	}

	// Slab 1 holds k1 and a1 in result order, then slab 2.
	if labels[1].PartID != "a1" || labels[1].Rotation != model.Rotation180 {
		t.Errorf("unexpected second label %+v", labels[1])
	}
	vanity := labels[2]
	if vanity.PartID != "v1" || !vanity.Locked || vanity.SlabIndex != 2 {
		t.Errorf("unexpected vanity label %+v", vanity)
	}
}

func TestLabelFlags(t *testing.T) {
	tests := []struct {
		info LabelInfo
		want string
	}{
		{LabelInfo{}, ""},
		{LabelInfo{Locked: true}, "Locked"},
		{LabelInfo{Rotation: model.Rotation90, Cutouts: 2}, "Rotated 90\xb0, 2 cutout(s)"},
	}
	for _, tt := range tests {
		if got := labelFlags(tt.info); got != tt.want {
			t.Errorf("labelFlags(%+v) = %q, want %q", tt.info, got, tt.want)
		}
	}
}

func TestExportLabels_ManyParts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	// 35 parts spill onto a second label page.
	slabs := []model.Slab{{ID: "s1", Name: "Large Slab", Width: 5000, Height: 3000}}
	var parts []model.Part
	var placements []model.PlacedPart
	for i := 0; i < 35; i++ {
		id := fmt.Sprintf("p%d", i)
		parts = append(parts, model.Part{ID: id, Name: "Part " + id, Width: 100, Height: 50, ShapeType: model.ShapeRectangle})
		placements = append(placements, model.PlacedPart{PartID: id, SlabID: "s1", X: float64(i * 110), Y: 10, Width: 100, Height: 50})
	}
	layout := NewLayout(model.NestingResult{Placements: placements}, parts, slabs, model.NestSettings{})

	if err := ExportLabels(path, layout); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertNonEmptyFile(t, path, 500)
}
