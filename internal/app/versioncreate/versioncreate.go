package versioncreate

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/studiokit/vers/internal/conventions"
	"github.com/studiokit/vers/internal/environment"
	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
)

// ServiceConfig is the configuration for the version create service.
type ServiceConfig struct {
	Repository storage.Repository
	// Environment is optional. Without one the service runs in
	// environment-less mode: it only creates the database record and the
	// caller is expected to surface the generated path.
	Environment environment.Environment
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.VersionCreate"})
	return nil
}

// Service creates new versions for a (task, take) pair.
type Service struct {
	repo   storage.Repository
	env    environment.Environment
	logger log.Logger
}

// NewService creates a new version create service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		env:    cfg.Environment,
		logger: cfg.Logger,
	}, nil
}

// CreateOptions are the options for creating a version.
type CreateOptions struct {
	TaskID   string
	TakeName string
	// User is the author of the version.
	User model.User
	// StatusCode must belong to the version status vocabulary. Empty picks
	// the first status of the list.
	StatusCode string
	// Note is an optional annotation attached to the new version.
	Note      string
	Published bool
}

// Create builds the next version for the (task, take) pair, lets the bound
// environment save it and persists the record. The returned version carries
// the generated path relative to the project repository root.
func (s *Service) Create(ctx context.Context, opts CreateOptions) (*model.Version, error) {
	task, err := s.repo.GetTask(ctx, opts.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	project, err := s.repo.GetProject(ctx, task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("could not get project: %w", err)
	}
	if !project.Active {
		return nil, fmt.Errorf("project %s is inactive: %w", project.ID, model.ErrNotValid)
	}

	takeName := model.NormalizeTakeName(opts.TakeName)
	if takeName == "" {
		return nil, fmt.Errorf("take name %q normalizes to empty: %w", opts.TakeName, model.ErrNotValid)
	}

	statusCode, err := s.resolveStatus(ctx, opts.StatusCode)
	if err != nil {
		return nil, err
	}

	number, err := s.nextVersionNumber(ctx, task.ID, takeName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	version := model.Version{
		ID:            ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		TaskID:        task.ID,
		TakeName:      takeName,
		VersionNumber: number,
		CreatedBy:     opts.User.ID,
		StatusCode:    statusCode,
		IsPublished:   opts.Published,
		Path:          conventions.VersionPath(*project, *task, takeName, number),
		CreatedAt:     now,
	}

	if opts.Note != "" {
		version.Notes = []model.Note{{
			ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
			VersionID: version.ID,
			Content:   opts.Note,
			CreatedAt: now,
		}}
	}

	if s.env != nil {
		if err := s.env.SaveAs(ctx, version); err != nil {
			return nil, fmt.Errorf("environment could not save version: %w", err)
		}
	} else {
		s.logger.Debugf("No environment bound, just generating paths")
	}

	if err := s.repo.CreateVersion(ctx, version); err != nil {
		return nil, fmt.Errorf("could not save version: %w", err)
	}

	s.logger.Infof("Created version v%03d of %s/%s (%s)", number, task.Name, takeName, version.ID)

	return &version, nil
}

// nextVersionNumber returns the next monotonic version number for a (task,
// take) pair. Numbering ignores the published filter.
func (s *Service) nextVersionNumber(ctx context.Context, taskID, takeName string) (int, error) {
	latest, err := s.repo.ListVersions(ctx, storage.VersionFilter{
		TaskID:   taskID,
		TakeName: takeName,
		Limit:    1,
	})
	if err != nil {
		return 0, fmt.Errorf("could not get latest version: %w", err)
	}

	if len(latest) == 0 {
		return 1, nil
	}
	return latest[0].VersionNumber + 1, nil
}

func (s *Service) resolveStatus(ctx context.Context, code string) (string, error) {
	list, err := s.repo.ListStatuses(ctx, model.StatusTargetVersion)
	if err != nil {
		return "", fmt.Errorf("could not list statuses: %w", err)
	}

	if code == "" {
		return list.Statuses[0].Code, nil
	}

	if list.ByCode(code) == nil {
		return "", fmt.Errorf("status %q is not in the version status list: %w", code, model.ErrNotValid)
	}
	return code, nil
}
