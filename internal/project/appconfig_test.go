package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/SlabNest/internal/model"
)

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if filepath.Base(path) != "config.json" {
		t.Errorf("expected filename config.json, got %s", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ".slabnest" {
		t.Errorf("expected parent dir .slabnest, got %s", filepath.Dir(path))
	}
}

func TestSaveAndLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultKerfWidth = 4.0
	cfg.OptimizeTimeout = 30 * time.Second
	cfg.RecentProjects = []string{"/tmp/kitchen.slabnest", "/tmp/bath.slabnest"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultKerfWidth != 4.0 {
		t.Errorf("expected DefaultKerfWidth=4.0, got %f", loaded.DefaultKerfWidth)
	}
	if loaded.OptimizeTimeout != 30*time.Second {
		t.Errorf("expected OptimizeTimeout=30s, got %v", loaded.OptimizeTimeout)
	}
	if len(loaded.RecentProjects) != 2 {
		t.Errorf("expected 2 recent projects, got %d", len(loaded.RecentProjects))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultKerfWidth != defaults.DefaultKerfWidth {
		t.Errorf("expected default kerf width %f, got %f", defaults.DefaultKerfWidth, cfg.DefaultKerfWidth)
	}
	if cfg.LabelFormat != "avery5160" {
		t.Errorf("expected label format avery5160, got %s", cfg.LabelFormat)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadAppConfig(path); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "config.json")

	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	data := []byte(`{"default_kerf_width":5,"recent_projects":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil after loading")
	}
	if cfg.DefaultKerfWidth != 5 {
		t.Errorf("expected kerf 5, got %v", cfg.DefaultKerfWidth)
	}
	if cfg.OptimizeTimeout != model.DefaultSettings().Timeout {
		t.Errorf("missing timeout should keep the default, got %v", cfg.OptimizeTimeout)
	}
}
