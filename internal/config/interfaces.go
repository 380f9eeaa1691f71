package config

import "time"

type Server interface {
	Host() string
	Port() int
	Address() string
	ReadTimeout() time.Duration
	ShutdownTimeout() time.Duration
	MaxBodyBytes() int64
}

type Logger interface {
	Level() string
	AsJSON() bool
}

type Nesting interface {
	OptimizeTimeout() time.Duration
	DefaultKerf() float64
}
