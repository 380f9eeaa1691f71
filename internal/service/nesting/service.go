package nesting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/piwi3910/SlabNest/internal/engine"
	"github.com/piwi3910/SlabNest/internal/logger"
	"github.com/piwi3910/SlabNest/internal/model"
)

type Optimizer interface {
	Optimize(ctx context.Context, parts []model.Part, slabs []model.Slab) (model.NestingResult, error)
}

// OptimizerFactory builds an optimizer for one run.
type OptimizerFactory func(settings model.NestSettings) Optimizer

// EngineOptimizer is the production factory.
func EngineOptimizer(settings model.NestSettings) Optimizer {
	return engine.New(settings)
}

type service struct {
	newOptimizer    OptimizerFactory
	optimizeTimeout time.Duration
	defaultKerf     float64
}

func NewNestingService(
	newOptimizer OptimizerFactory,
	optimizeTimeout time.Duration,
	defaultKerf float64,
) *service {
	return &service{
		newOptimizer:    newOptimizer,
		optimizeTimeout: optimizeTimeout,
		defaultKerf:     defaultKerf,
	}
}

func (s *service) Optimize(ctx context.Context, req model.NestingRequest) (model.NestingResult, error) {
	const op = "nesting.service.Optimize"
	log := logger.With(
		logger.Int("parts", len(req.Parts)),
		logger.Int("slabs", len(req.Slabs)),
	)

	if req.Parts == nil || req.Slabs == nil || req.KerfWidth == nil {
		log.Warn(ctx, "validation: missing fields")
		return model.NestingResult{}, model.InvalidRequest("Missing required fields: parts, slabs, kerfWidth")
	}
	if len(req.Slabs) == 0 {
		log.Warn(ctx, "validation: no slabs")
		return model.NestingResult{}, model.InvalidRequest("At least one slab is required")
	}

	settings := model.DefaultSettings()
	settings.KerfWidth = *req.KerfWidth
	settings.Timeout = s.optimizeTimeout

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.newOptimizer(settings).Optimize(ctx, req.Parts, req.Slabs)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidRequest):
			log.Warn(ctx, "optimize rejected", logger.ErrorF(err))
		case errors.Is(err, context.DeadlineExceeded):
			log.Error(ctx, "optimize timed out", logger.Duration("timeout", settings.Timeout))
		default:
			log.Error(ctx, "optimize failed", logger.ErrorF(err))
		}
		return model.NestingResult{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info(ctx, "optimize finished",
		logger.Float64("kerf", settings.KerfWidth),
		logger.Int("placed", len(res.Placements)),
		logger.Int("unplaced", len(res.UnplacedParts)),
		logger.Duration("took", time.Since(start)),
	)
	if len(res.UnplacedParts) > 0 {
		log.Warn(ctx, "parts left unplaced", logger.Strings("part_ids", res.UnplacedParts))
	}
	return res, nil
}

// UpdatePlacement applies a drag or rotate to one placement. A request
// without kerfWidth uses the configured default kerf.
func (s *service) UpdatePlacement(ctx context.Context, req model.PlacementEditRequest) (engine.EditResult, error) {
	const op = "nesting.service.UpdatePlacement"
	log := logger.With(logger.String("part_id", req.PartID))

	if err := ctx.Err(); err != nil {
		return engine.EditResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if req.PartID == "" {
		return engine.EditResult{}, model.InvalidRequest("partId is required")
	}
	if req.Placements == nil || req.Parts == nil || req.Slabs == nil {
		return engine.EditResult{}, model.InvalidRequest("Missing required fields: placements, parts, slabs")
	}
	if r := req.Updates.Rotation; r != nil && !r.Valid() {
		return engine.EditResult{}, model.InvalidRequest(fmt.Sprintf("rotation %d is not one of 0, 90, 180, 270", *r))
	}

	kerf := s.defaultKerf
	if req.KerfWidth != nil {
		kerf = *req.KerfWidth
	}
	if kerf < 0 || math.IsNaN(kerf) || math.IsInf(kerf, 0) {
		return engine.EditResult{}, model.InvalidRequest(fmt.Sprintf("kerfWidth %g must be a non-negative number", kerf))
	}

	if s.optimizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.optimizeTimeout)
		defer cancel()
	}

	out, err := engine.NewEditor(req.Slabs, kerf).UpdatePlacement(ctx, req.Placements, req.Parts, req.PartID, req.Updates)
	if err != nil {
		log.Error(ctx, "placement update failed", logger.ErrorF(err))
		return engine.EditResult{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Debug(ctx, "placement updated", logger.Float64("kerf", kerf))
	return out, nil
}

// SetLocked locks or unlocks one part and returns the updated part list.
func (s *service) SetLocked(ctx context.Context, req model.LockRequest) ([]model.Part, error) {
	const op = "nesting.service.SetLocked"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.PartID == "" {
		return nil, model.InvalidRequest("partId is required")
	}
	if req.Parts == nil {
		return nil, model.InvalidRequest("Missing required fields: parts")
	}

	parts := engine.NewEditor(req.Slabs, s.defaultKerf).SetLocked(req.Placements, req.Parts, req.PartID, req.Locked)
	logger.Debug(ctx, "lock toggled",
		logger.String("part_id", req.PartID),
		logger.Bool("locked", req.Locked),
	)
	return parts, nil
}

// Compare runs the request once per scenario. With no scenarios the default
// kerf what-ifs around the request's kerf are used.
func (s *service) Compare(ctx context.Context, req model.NestingRequest, scenarios []engine.ComparisonScenario) ([]engine.ComparisonResult, error) {
	const op = "nesting.service.Compare"

	if req.Parts == nil || req.Slabs == nil || req.KerfWidth == nil {
		return nil, model.InvalidRequest("Missing required fields: parts, slabs, kerfWidth")
	}

	if len(scenarios) == 0 {
		settings := model.DefaultSettings()
		settings.KerfWidth = *req.KerfWidth
		scenarios = engine.BuildDefaultScenarios(settings)
	}

	if s.optimizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.optimizeTimeout*time.Duration(len(scenarios)))
		defer cancel()
	}

	results, err := engine.CompareScenarios(ctx, scenarios, req.Parts, req.Slabs)
	if err != nil {
		logger.Error(ctx, "compare failed", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return results, nil
}
