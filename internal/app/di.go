package app

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/piwi3910/SlabNest/internal/config"
	"github.com/piwi3910/SlabNest/internal/service/nesting"
	thttp "github.com/piwi3910/SlabNest/internal/transport/http/nesting/v1"
)

type NestingHandler interface {
	Routes(r chi.Router)
}

type di struct {
	service thttp.NestingService
	handler NestingHandler

	router *chi.Mux
}

func NewDI() *di { return &di{} }

func (d *di) NestingService(_ context.Context) thttp.NestingService {
	if d.service == nil {
		cfg := config.C()
		d.service = nesting.NewNestingService(
			nesting.EngineOptimizer,
			cfg.Nesting.OptimizeTimeout(),
			cfg.Nesting.DefaultKerf(),
		)
	}

	return d.service
}

func (d *di) NestingHandler(ctx context.Context) NestingHandler {
	if d.handler == nil {
		d.handler = thttp.NewNestingHandler(
			d.NestingService(ctx),
			config.C().Server.MaxBodyBytes(),
		)
	}

	return d.handler
}

func (d *di) Router(_ context.Context) *chi.Mux {
	if d.router == nil {
		d.router = chi.NewRouter()
	}

	return d.router
}
