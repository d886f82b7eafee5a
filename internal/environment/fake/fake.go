package fake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/studiokit/vers/internal/environment"
	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/model"
)

// EnvironmentConfig is the configuration for the fake environment.
type EnvironmentConfig struct {
	// Name is the host application name to report.
	Name string
	// RepositoryRoot is where version files are materialized. Empty disables
	// file creation.
	RepositoryRoot string
	Logger         log.Logger
}

func (c *EnvironmentConfig) defaults() error {
	if c.Name == "" {
		c.Name = "fake"
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "environment.Fake"})
	return nil
}

// Environment is a fake implementation of environment.Environment. It
// simulates a host application: SaveAs materializes an empty version file
// under the repository root and Open/SaveAs remember the last version.
type Environment struct {
	name        string
	repoRoot    string
	lastVersion *model.Version
	mu          sync.RWMutex
	logger      log.Logger
}

var _ environment.Environment = &Environment{}

// NewEnvironment creates a new fake environment.
func NewEnvironment(cfg EnvironmentConfig) (*Environment, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Environment{
		name:     cfg.Name,
		repoRoot: cfg.RepositoryRoot,
		logger:   cfg.Logger,
	}, nil
}

// Name returns the host application name.
func (e *Environment) Name() string { return e.name }

// GetLastVersion returns the version the fake host has open, or nil.
func (e *Environment) GetLastVersion(ctx context.Context) (*model.Version, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.lastVersion == nil {
		return nil, nil
	}

	vCopy := *e.lastVersion
	return &vCopy, nil
}

// SetLastVersion primes the fake host with an open version.
func (e *Environment) SetLastVersion(v *model.Version) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v == nil {
		e.lastVersion = nil
		return
	}
	vCopy := *v
	e.lastVersion = &vCopy
}

// Open opens a version in the fake host.
func (e *Environment) Open(ctx context.Context, v model.Version) (*environment.OpenResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	vCopy := v
	e.lastVersion = &vCopy
	e.logger.Infof("Opened version %s (v%03d)", v.ID, v.VersionNumber)

	return &environment.OpenResult{}, nil
}

// SaveAs saves the fake host scene as the given version, materializing its
// file under the repository root.
func (e *Environment) SaveAs(ctx context.Context, v model.Version) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.materialize(v); err != nil {
		return err
	}

	vCopy := v
	e.lastVersion = &vCopy
	e.logger.Infof("Saved version %s (v%03d)", v.ID, v.VersionNumber)

	return nil
}

// Export exports the fake host selection as the given version file.
func (e *Environment) Export(ctx context.Context, v model.Version) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.materialize(v); err != nil {
		return err
	}

	e.logger.Infof("Exported version %s (v%03d)", v.ID, v.VersionNumber)
	return nil
}

// Import imports a version file into the fake host scene.
func (e *Environment) Import(ctx context.Context, v model.Version) error {
	e.logger.Infof("Imported version %s (v%03d)", v.ID, v.VersionNumber)
	return nil
}

// Reference references a version file into the fake host scene.
func (e *Environment) Reference(ctx context.Context, v model.Version) error {
	e.logger.Infof("Referenced version %s (v%03d)", v.ID, v.VersionNumber)
	return nil
}

func (e *Environment) materialize(v model.Version) error {
	if e.repoRoot == "" || v.Path == "" {
		return nil
	}

	path := filepath.Join(e.repoRoot, v.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create version directory: %w", err)
	}
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		return fmt.Errorf("could not create version file: %w", err)
	}

	return nil
}
