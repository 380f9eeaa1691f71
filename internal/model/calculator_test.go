package model

import (
	"math"
	"testing"
)

func TestEstimateSlabsBasic(t *testing.T) {
	parts := []Part{
		{ID: "a", Width: 500, Height: 300},
		{ID: "b", Width: 500, Height: 300},
		{ID: "c", Width: 500, Height: 300},
		{ID: "d", Width: 500, Height: 300},
	}
	est := EstimateSlabs(parts, 3000, 1400, 3.0, 15.0, 450.00)

	// Each part with kerf: 503 x 303
	expectedArea := 503.0 * 303.0 * 4
	if math.Abs(est.TotalPartArea-expectedArea) > 0.1 {
		t.Errorf("expected total area %.1f, got %.1f", expectedArea, est.TotalPartArea)
	}
	if math.Abs(est.TotalPartAreaM2-expectedArea/1e6) > 1e-9 {
		t.Errorf("expected %.6f m², got %.6f", expectedArea/1e6, est.TotalPartAreaM2)
	}
	if est.SlabsNeededMin != 1 || est.SlabsWithWaste != 1 {
		t.Errorf("expected 1 slab, got min=%d withWaste=%d", est.SlabsNeededMin, est.SlabsWithWaste)
	}
	if est.EstimatedCost != 450.00 {
		t.Errorf("expected cost 450, got %.2f", est.EstimatedCost)
	}
}

func TestEstimateSlabsCircleUsesDiameter(t *testing.T) {
	parts := []Part{NewCirclePart("Table", 500)}
	est := EstimateSlabs(parts, 3000, 1400, 0, 0, 0)
	if est.TotalPartArea != 1000*1000 {
		t.Errorf("expected diameter square area, got %.0f", est.TotalPartArea)
	}
}

func TestEstimateSlabsOversized(t *testing.T) {
	parts := []Part{
		{ID: "big", Width: 3500, Height: 500},
		{ID: "tall", Width: 1000, Height: 2000, AllowRotation: true},
		{ID: "stuck", Width: 1000, Height: 2000},
	}
	est := EstimateSlabs(parts, 3000, 1400, 0, 0, 0)

	if len(est.Oversized) != 2 || est.Oversized[0] != "big" || est.Oversized[1] != "stuck" {
		t.Errorf("expected big and stuck oversized, got %v", est.Oversized)
	}
	if est.TotalPartArea != 1000*2000 {
		t.Errorf("oversized parts must not count, got %.0f", est.TotalPartArea)
	}
}

func TestEstimateSlabsWasteFactor(t *testing.T) {
	parts := []Part{{ID: "full", Width: 3000, Height: 1400}}

	exact := EstimateSlabs(parts, 3000, 1400, 0, 0, 100)
	if exact.SlabsNeededMin != 1 || exact.SlabsWithWaste != 1 {
		t.Errorf("expected exactly 1 slab, got %+v", exact)
	}

	withWaste := EstimateSlabs(parts, 3000, 1400, 0, 20, 100)
	if withWaste.SlabsWithWaste != 2 {
		t.Errorf("expected 2 slabs with 20%% waste, got %d", withWaste.SlabsWithWaste)
	}
	if withWaste.EstimatedCost != 200 {
		t.Errorf("expected cost 200, got %.2f", withWaste.EstimatedCost)
	}
}

func TestEstimateSlabsZeroSlabArea(t *testing.T) {
	parts := []Part{{ID: "p", Width: 100, Height: 100}}
	est := EstimateSlabs(parts, 0, 0, 0, 10, 0)
	if est.SlabsNeededMin != 0 {
		t.Errorf("expected 0 slabs for zero slab area, got %d", est.SlabsNeededMin)
	}
	if est.TotalPartArea <= 0 {
		t.Error("expected positive total part area even with zero slab")
	}
}
