package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8090 {
		t.Errorf("expected port 8090, got %d", cfg.Server.Port)
	}
	if cfg.View.Kind != "head" {
		t.Errorf("expected head view, got %q", cfg.View.Kind)
	}
	if cfg.View.DisplayMode != "light" {
		t.Errorf("expected light mode, got %q", cfg.View.DisplayMode)
	}
	if !cfg.View.Bidirectional {
		t.Error("expected bidirectional by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/heddle.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}

	herr, ok := err.(*herrors.HeddleError)
	if !ok {
		t.Fatalf("expected *herrors.HeddleError, got %T", err)
	}
	if herr.Code != herrors.ErrConfigNotFound {
		t.Errorf("expected code %q, got %q", herrors.ErrConfigNotFound, herr.Code)
	}
	if len(herr.Suggestions) == 0 {
		t.Error("expected suggestions to be attached")
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: [unclosed\n"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	_, err := Load(path)
	if !herrors.IsCode(err, herrors.ErrConfigParseFailed) {
		t.Fatalf("expected %s, got %v", herrors.ErrConfigParseFailed, err)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	if err := os.WriteFile(path, []byte("view:\n  kind: pie\n"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	_, err := Load(path)
	if !herrors.IsCode(err, herrors.ErrConfigInvalid) {
		t.Fatalf("expected %s, got %v", herrors.ErrConfigInvalid, err)
	}
}

func TestLoad_MergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heddle.yaml")
	content := `view:
  kind: model
  display_mode: dark
layout:
  surface_width: 1200
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.View.Kind != "model" || cfg.View.DisplayMode != "dark" {
		t.Errorf("unexpected view config: %+v", cfg.View)
	}
	if cfg.Layout.SurfaceWidth != 1200 {
		t.Errorf("expected surface width 1200, got %v", cfg.Layout.SurfaceWidth)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("expected default port to survive, got %d", cfg.Server.Port)
	}
}

func TestLoadOrDefault_Missing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}
}

func TestSaveAndInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "heddle.yaml")
	if err := InitConfig(path); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load after init failed: %v", err)
	}
	if cfg.Export.PNGScale != 4 {
		t.Errorf("expected png scale 4, got %d", cfg.Export.PNGScale)
	}

	// Second init must not overwrite an edited file.
	cfg.View.Kind = "neuron"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := InitConfig(path); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	again, _ := Load(path)
	if again.View.Kind != "neuron" {
		t.Errorf("InitConfig overwrote existing file")
	}
}
