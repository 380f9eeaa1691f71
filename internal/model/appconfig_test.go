package model

import (
	"fmt"
	"testing"
	"time"
)

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultKerfWidth != defaults.KerfWidth {
		t.Errorf("KerfWidth mismatch: config=%f settings=%f", cfg.DefaultKerfWidth, defaults.KerfWidth)
	}
	if cfg.OptimizeTimeout != defaults.Timeout {
		t.Errorf("Timeout mismatch: config=%s settings=%s", cfg.OptimizeTimeout, defaults.Timeout)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultKerfWidth = 5.0
	cfg.OptimizeTimeout = 3 * time.Second

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.KerfWidth != 5.0 {
		t.Errorf("expected KerfWidth=5.0, got %f", s.KerfWidth)
	}
	if s.Timeout != 3*time.Second {
		t.Errorf("expected Timeout=3s, got %s", s.Timeout)
	}
}

func TestApplyToSettingsKeepsTimeoutWhenUnset(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.OptimizeTimeout = 0

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.Timeout != DefaultSettings().Timeout {
		t.Errorf("expected default timeout to survive, got %s", s.Timeout)
	}
}

func TestAddRecentProjectMovesToFront(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentProject("/a.slabnest")
	cfg.AddRecentProject("/b.slabnest")
	cfg.AddRecentProject("/a.slabnest")

	if len(cfg.RecentProjects) != 2 {
		t.Fatalf("expected 2 recent projects, got %d", len(cfg.RecentProjects))
	}
	if cfg.RecentProjects[0] != "/a.slabnest" {
		t.Errorf("expected /a.slabnest first, got %s", cfg.RecentProjects[0])
	}
}

func TestAddRecentProjectCapsLength(t *testing.T) {
	cfg := DefaultAppConfig()
	for i := 0; i < maxRecentProjects+5; i++ {
		cfg.AddRecentProject(fmt.Sprintf("/p%d.slabnest", i))
	}
	if len(cfg.RecentProjects) != maxRecentProjects {
		t.Errorf("expected %d recent projects, got %d", maxRecentProjects, len(cfg.RecentProjects))
	}
}
