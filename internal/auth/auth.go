// Package auth resolves the current pipeline user. It is an explicit
// capability injected into the commands instead of an ambient session:
// callers decide what to do on cancellation.
package auth

import (
	"context"
	"fmt"

	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
)

// Provider resolves the currently logged in user. Implementations return
// model.ErrCancelled (wrapped) when the user aborts the login step.
type Provider interface {
	CurrentUser(ctx context.Context) (*model.User, error)
}

// StaticProviderConfig is the configuration for the static provider.
type StaticProviderConfig struct {
	Repository storage.Repository
	// Login identifies the user, typically from a flag or env var. Empty
	// means the login step was cancelled.
	Login string
}

func (c *StaticProviderConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	return nil
}

// StaticProvider resolves a fixed login against the repository.
type StaticProvider struct {
	repo  storage.Repository
	login string
}

var _ Provider = &StaticProvider{}

// NewStaticProvider creates a new static provider.
func NewStaticProvider(cfg StaticProviderConfig) (*StaticProvider, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &StaticProvider{
		repo:  cfg.Repository,
		login: cfg.Login,
	}, nil
}

// CurrentUser resolves the configured login.
func (p *StaticProvider) CurrentUser(ctx context.Context) (*model.User, error) {
	if p.login == "" {
		return nil, fmt.Errorf("no user login provided: %w", model.ErrCancelled)
	}

	user, err := p.repo.GetUserByLogin(ctx, p.login)
	if err != nil {
		return nil, fmt.Errorf("could not resolve user %q: %w", p.login, err)
	}

	return user, nil
}
