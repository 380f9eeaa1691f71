package model

import "time"

// AppConfig holds user preferences and the defaults applied to new projects.
type AppConfig struct {
	DefaultKerfWidth float64       `json:"default_kerf_width"`
	OptimizeTimeout  time.Duration `json:"optimize_timeout"`

	// Application preferences
	RecentProjects []string `json:"recent_projects"`
	LabelFormat    string   `json:"label_format"` // "avery5160" only for now
}

// DefaultAppConfig returns an AppConfig populated with the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultKerfWidth: defaults.KerfWidth,
		OptimizeTimeout:  defaults.Timeout,
		RecentProjects:   []string{},
		LabelFormat:      "avery5160",
	}
}

// ApplyToSettings copies the default values from AppConfig into a NestSettings struct.
func (c AppConfig) ApplyToSettings(s *NestSettings) {
	s.KerfWidth = c.DefaultKerfWidth
	if c.OptimizeTimeout > 0 {
		s.Timeout = c.OptimizeTimeout
	}
}

// maxRecentProjects bounds the recent project list.
const maxRecentProjects = 10

// AddRecentProject moves path to the front of the recent project list.
func (c *AppConfig) AddRecentProject(path string) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentProjects {
		recent = recent[:maxRecentProjects]
	}
	c.RecentProjects = recent
}
