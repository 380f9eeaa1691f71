package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/SlabNest/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.NestSettings
}

// ComparisonResult holds the optimization result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.NestingResult
	SlabsUsed     int
	PlacedCount   int
	UnplacedCount int
	WastePercent  float64 // waste across the slabs that received parts
}

// CompareScenarios runs the optimizer once per scenario and returns the
// results in scenario order. Each run is independent of the others.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, parts []model.Part, slabs []model.Slab) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		opt := New(scenario.Settings)
		result, err := opt.Optimize(ctx, parts, slabs)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		slabsUsed := 0
		for _, u := range result.SlabUsage {
			if u.UsedArea > 0 {
				slabsUsed++
			}
		}

		waste := 0.0
		if slabsUsed > 0 {
			waste = 100.0 - result.TotalEfficiency()
		}

		results = append(results, ComparisonResult{
			Scenario:      scenario,
			Result:        result,
			SlabsUsed:     slabsUsed,
			PlacedCount:   len(result.Placements),
			UnplacedCount: len(result.UnplacedParts),
			WastePercent:  waste,
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates what-if alternatives around the current
// settings by varying the kerf width.
func BuildDefaultScenarios(baseSettings model.NestSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// Thinner blade
	if baseSettings.KerfWidth > 1.0 {
		halfKerf := baseSettings
		halfKerf.KerfWidth = baseSettings.KerfWidth * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Kerf %.1fmm (half)", halfKerf.KerfWidth),
			Settings: halfKerf,
		})
	}

	// Lower bound: no material lost to the blade
	if baseSettings.KerfWidth > 0 {
		noKerf := baseSettings
		noKerf.KerfWidth = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Kerf",
			Settings: noKerf,
		})
	}

	return scenarios
}
