// Package review holds the mutations reviewers apply to existing versions:
// publish toggling, workflow status changes and note edits.
package review

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
)

// ServiceConfig is the configuration for the review service.
type ServiceConfig struct {
	Repository storage.Repository
	// ReadOnly rejects every mutation with model.ErrReadOnly.
	ReadOnly bool
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Review"})
	return nil
}

// Service mutates existing versions.
type Service struct {
	repo     storage.Repository
	readOnly bool
	logger   log.Logger
}

// NewService creates a new review service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:     cfg.Repository,
		readOnly: cfg.ReadOnly,
		logger:   cfg.Logger,
	}, nil
}

// SetPublished sets the published flag of a version, stamping the updater.
func (s *Service) SetPublished(ctx context.Context, versionID string, published bool, updatedBy model.User) (*model.Version, error) {
	if s.readOnly {
		return nil, fmt.Errorf("cannot publish: %w", model.ErrReadOnly)
	}

	version, err := s.repo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("could not get version: %w", err)
	}

	version.IsPublished = published
	version.UpdatedBy = updatedBy.ID
	if err := s.repo.UpdateVersion(ctx, *version); err != nil {
		return nil, fmt.Errorf("could not update version: %w", err)
	}

	s.logger.Infof("Set published=%t on version %s", published, versionID)
	return version, nil
}

// SetStatus changes the workflow status of a version. The status name or
// code must belong to the version status vocabulary.
func (s *Service) SetStatus(ctx context.Context, versionID, status string, updatedBy model.User) (*model.Version, error) {
	if s.readOnly {
		return nil, fmt.Errorf("cannot change status: %w", model.ErrReadOnly)
	}

	list, err := s.repo.ListStatuses(ctx, model.StatusTargetVersion)
	if err != nil {
		return nil, fmt.Errorf("could not list statuses: %w", err)
	}

	st := list.ByCode(status)
	if st == nil {
		st = list.ByName(status)
	}
	if st == nil {
		return nil, fmt.Errorf("status %q is not in the version status list: %w", status, model.ErrNotValid)
	}

	version, err := s.repo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("could not get version: %w", err)
	}

	version.StatusCode = st.Code
	version.UpdatedBy = updatedBy.ID
	if err := s.repo.UpdateVersion(ctx, *version); err != nil {
		return nil, fmt.Errorf("could not update version: %w", err)
	}

	s.logger.Infof("Set status %s on version %s", st.Code, versionID)
	return version, nil
}

// SetNote replaces the last note of a version with the given content,
// creating the first note when the version has none.
func (s *Service) SetNote(ctx context.Context, versionID, content string) (*model.Version, error) {
	if s.readOnly {
		return nil, fmt.Errorf("cannot change note: %w", model.ErrReadOnly)
	}

	now := time.Now().UTC()
	note := model.Note{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		VersionID: versionID,
		Content:   content,
		CreatedAt: now,
	}

	if err := s.repo.SetVersionNote(ctx, versionID, note); err != nil {
		return nil, fmt.Errorf("could not set note: %w", err)
	}

	version, err := s.repo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("could not get version: %w", err)
	}

	s.logger.Infof("Changed note on version %s", versionID)
	return version, nil
}
