package model

import "time"

// NestSettings holds the optimizer configuration.
type NestSettings struct {
	KerfWidth float64       `json:"kerf_width"` // Saw blade width in mm
	Timeout   time.Duration `json:"timeout"`    // Upper bound for one optimize run, 0 = none
}

func DefaultSettings() NestSettings {
	return NestSettings{
		KerfWidth: 3.0,
		Timeout:   10 * time.Second,
	}
}
