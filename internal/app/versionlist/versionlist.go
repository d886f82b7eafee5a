package versionlist

import (
	"context"
	"fmt"

	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
)

// ServiceConfig is the configuration for the version list service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service materializes the ordered version window for a (task, take) pair.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new version list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the listing request parameters.
type Request struct {
	TaskID   string
	TakeName string
	// PublishedOnly drops versions that are not published.
	PublishedOnly bool
	// Limit caps the number of versions kept, newest first.
	Limit int
}

// Run returns the version window for the request in ascending version number
// order (oldest first, newest last). Without a task or take the listing is
// empty. The result is a snapshot: callers re-run the listing after any
// mutation instead of patching it.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Version, error) {
	if req.TaskID == "" || req.TakeName == "" {
		return nil, nil
	}

	s.logger.Debugf("listing versions of task %s take %q (published only: %t, limit: %d)",
		req.TaskID, req.TakeName, req.PublishedOnly, req.Limit)

	// The repository returns newest first capped to the limit; reverse so
	// the display order is ascending and the last element is the newest.
	versions, err := s.repo.ListVersions(ctx, storage.VersionFilter{
		TaskID:        req.TaskID,
		TakeName:      req.TakeName,
		PublishedOnly: req.PublishedOnly,
		Limit:         req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list versions: %w", err)
	}

	for i, j := 0, len(versions)-1; i < j; i, j = i+1, j-1 {
		versions[i], versions[j] = versions[j], versions[i]
	}

	s.logger.Debugf("found %d versions", len(versions))
	return versions, nil
}

// Last returns the newest (highest version number) element of a window
// returned by Run, or nil when the window is empty.
func Last(versions []model.Version) *model.Version {
	if len(versions) == 0 {
		return nil
	}
	return &versions[len(versions)-1]
}
