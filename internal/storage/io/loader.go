package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/studiokit/vers/internal/model"
)

// Defaults are the pipeline-wide UI defaults loaded from the user config file.
type Defaults struct {
	// TakeName is the take every task starts with.
	TakeName string
	// VersionCount is the default cap on listed versions.
	VersionCount int
	// PublishedOnly lists only published versions by default.
	PublishedOnly bool
	// Environment is the default host application name.
	Environment string
}

// DefaultsYAMLRepository loads pipeline defaults from YAML files.
type DefaultsYAMLRepository struct {
	fs fs.FS
}

// NewDefaultsYAMLRepository creates a new YAML defaults repository.
func NewDefaultsYAMLRepository(filesystem fs.FS) *DefaultsYAMLRepository {
	return &DefaultsYAMLRepository{fs: filesystem}
}

// GetDefaults loads pipeline defaults from a YAML file. A missing file is not
// an error; built-in defaults are returned instead.
func (r *DefaultsYAMLRepository) GetDefaults(ctx context.Context, path string) (Defaults, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		if _, statErr := fs.Stat(r.fs, path); statErr != nil {
			return builtinDefaults(), nil
		}
		return Defaults{}, fmt.Errorf("reading defaults file: %w", err)
	}

	if ctx.Err() != nil {
		return Defaults{}, ctx.Err()
	}

	var cfg defaultsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Defaults{}, fmt.Errorf("invalid defaults: %w", err)
	}

	return cfg.toModel(), nil
}

// defaultsConfig represents the YAML structure of the defaults file.
type defaultsConfig struct {
	TakeName      string `yaml:"take_name"`
	VersionCount  int    `yaml:"version_count"`
	PublishedOnly bool   `yaml:"published_only"`
	Environment   string `yaml:"environment"`
}

func (c defaultsConfig) validate() error {
	if c.VersionCount < 0 {
		return fmt.Errorf("version_count cannot be negative")
	}
	if c.TakeName != "" && model.NormalizeTakeName(c.TakeName) != c.TakeName {
		return fmt.Errorf("take_name %q is not a canonical take name", c.TakeName)
	}
	return nil
}

func (c defaultsConfig) toModel() Defaults {
	d := builtinDefaults()
	if c.TakeName != "" {
		d.TakeName = c.TakeName
	}
	if c.VersionCount > 0 {
		d.VersionCount = c.VersionCount
	}
	d.PublishedOnly = c.PublishedOnly
	if c.Environment != "" {
		d.Environment = c.Environment
	}
	return d
}

func builtinDefaults() Defaults {
	return Defaults{
		TakeName:     model.DefaultTakeName,
		VersionCount: 25,
	}
}
