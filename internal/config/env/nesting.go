package envconfig

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type nestingEnv struct {
	OptimizeTimeout time.Duration `env:"NESTING_OPTIMIZE_TIMEOUT" envDefault:"10s"`
	DefaultKerf     float64       `env:"NESTING_DEFAULT_KERF" envDefault:"3"`
}

type nesting struct {
	raw nestingEnv
}

func NewNestingConfig() (*nesting, error) {
	var raw nestingEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	if raw.OptimizeTimeout <= 0 {
		return nil, fmt.Errorf("NESTING_OPTIMIZE_TIMEOUT must be positive, got %s", raw.OptimizeTimeout)
	}
	if raw.DefaultKerf < 0 {
		return nil, fmt.Errorf("NESTING_DEFAULT_KERF must not be negative, got %g", raw.DefaultKerf)
	}
	return &nesting{raw: raw}, nil
}

func (cfg *nesting) OptimizeTimeout() time.Duration { return cfg.raw.OptimizeTimeout }
func (cfg *nesting) DefaultKerf() float64           { return cfg.raw.DefaultKerf }
