// Package config handles Heddle configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `yaml:"server"`
	View   ViewConfig   `yaml:"view"`
	Layout LayoutConfig `yaml:"layout"`
	Export ExportConfig `yaml:"export"`
}

// ServerConfig holds settings for the host page server.
type ServerConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	CORSOrigins   []string      `yaml:"cors_origins"`
	EnableLogging bool          `yaml:"enable_logging"`
}

// ViewConfig holds defaults applied when the input data leaves them unset.
type ViewConfig struct {
	Kind          string `yaml:"kind"`         // head, model or neuron
	DisplayMode   string `yaml:"display_mode"` // light or dark
	Bidirectional bool   `yaml:"bidirectional"`
	Prettify      bool   `yaml:"prettify_tokens"`
}

// LayoutConfig overrides geometry constants. Zero values keep the defaults.
type LayoutConfig struct {
	SurfaceWidth       float64 `yaml:"surface_width"`
	ReferenceHeadCount int     `yaml:"reference_head_count"`
	ThumbnailRowHeight float64 `yaml:"thumbnail_row_height"`
	MatrixWidth        float64 `yaml:"matrix_width"`
}

// ExportConfig holds snapshot export settings.
type ExportConfig struct {
	Dir      string `yaml:"dir"`
	PNGScale int    `yaml:"png_scale"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "localhost",
			Port:          8090,
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  15 * time.Second,
			IdleTimeout:   60 * time.Second,
			CORSOrigins:   []string{"http://localhost:8888"}, // Jupyter
			EnableLogging: true,
		},
		View: ViewConfig{
			Kind:          "head",
			DisplayMode:   "light",
			Bidirectional: true,
			Prettify:      true,
		},
		Export: ExportConfig{
			Dir:      "./exports",
			PNGScale: 4,
		},
	}
}

// Validate checks enumerated and numeric fields.
func (c *Config) Validate() error {
	switch c.View.Kind {
	case "head", "model", "neuron":
	default:
		return herrors.New(herrors.ErrConfigInvalid, herrors.CategoryConfig,
			fmt.Sprintf("view.kind must be head, model or neuron, got %q", c.View.Kind)).
			WithContext("field", "view.kind")
	}
	switch c.View.DisplayMode {
	case "light", "dark":
	default:
		return herrors.New(herrors.ErrConfigInvalid, herrors.CategoryConfig,
			fmt.Sprintf("view.display_mode must be light or dark, got %q", c.View.DisplayMode)).
			WithContext("field", "view.display_mode")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return herrors.New(herrors.ErrConfigInvalid, herrors.CategoryConfig,
			fmt.Sprintf("server.port out of range: %d", c.Server.Port)).
			WithContext("field", "server.port")
	}
	if c.Layout.SurfaceWidth < 0 || c.Layout.ThumbnailRowHeight < 0 || c.Layout.MatrixWidth < 0 || c.Layout.ReferenceHeadCount < 0 {
		return herrors.New(herrors.ErrConfigInvalid, herrors.CategoryConfig,
			"layout values must not be negative").
			WithContext("field", "layout")
	}
	return nil
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, herrors.ConfigNotFound(path)
		}
		return nil, herrors.Wrap(err, herrors.ErrIOReadFailed, herrors.CategoryIO, "failed to read config").
			WithContext("path", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, herrors.ConfigParseError(path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns default if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return herrors.Wrap(err, herrors.ErrConfigWriteFailed, herrors.CategoryConfig, "failed to create config directory").
			WithContext("path", path)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return herrors.Wrap(err, herrors.ErrConfigWriteFailed, herrors.CategoryConfig, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return herrors.Wrap(err, herrors.ErrConfigWriteFailed, herrors.CategoryConfig, "failed to write config file").
			WithContext("path", path)
	}
	return nil
}

// DefaultConfigPath returns heddle.yaml in the working directory, or
// config/heddle.yaml when only that exists.
func DefaultConfigPath() string {
	if _, err := os.Stat("heddle.yaml"); err == nil {
		return "heddle.yaml"
	}
	if _, err := os.Stat("config/heddle.yaml"); err == nil {
		return "config/heddle.yaml"
	}
	return "heddle.yaml"
}

// InitConfig creates a default config file if it doesn't exist.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // Already exists
	}
	return Default().Save(path)
}
