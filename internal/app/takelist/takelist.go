package takelist

import (
	"context"
	"fmt"
	"sort"

	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/storage"
)

// ServiceConfig is the configuration for the take list service.
type ServiceConfig struct {
	Repository storage.Repository
	// DefaultTakeName is always present in the returned list.
	DefaultTakeName string
	Logger          log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.DefaultTakeName == "" {
		return fmt.Errorf("default take name is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	return nil
}

// Service lists the takes of a task.
type Service struct {
	repo        storage.Repository
	defaultTake string
	logger      log.Logger
}

// NewService creates a new take list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:        cfg.Repository,
		defaultTake: cfg.DefaultTakeName,
		logger:      cfg.Logger,
	}, nil
}

// Run returns the sorted distinct take names of a task's versions, always
// including the default take.
func (s *Service) Run(ctx context.Context, taskID string) ([]string, error) {
	takes, err := s.repo.ListTakeNames(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not list take names: %w", err)
	}

	s.logger.Debugf("found %d takes for task %s", len(takes), taskID)

	found := false
	for _, t := range takes {
		if t == s.defaultTake {
			found = true
			break
		}
	}
	if !found {
		takes = append(takes, s.defaultTake)
		sort.Strings(takes)
	}

	return takes, nil
}
