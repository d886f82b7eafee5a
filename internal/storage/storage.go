package storage

import (
	"context"

	"github.com/studiokit/vers/internal/model"
)

// VersionFilter selects the versions of a single (task, take) pair. The
// repository returns matches ordered by version number descending, capped to
// Limit when it is positive.
type VersionFilter struct {
	TaskID        string
	TakeName      string
	PublishedOnly bool
	Limit         int
}

// Repository is the interface for pipeline persistence.
type Repository interface {
	CreateProject(ctx context.Context, p model.Project) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)

	CreateTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)

	CreateUser(ctx context.Context, u model.User) error
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)

	CreateVersion(ctx context.Context, v model.Version) error
	GetVersion(ctx context.Context, id string) (*model.Version, error)
	ListVersions(ctx context.Context, f VersionFilter) ([]model.Version, error)
	UpdateVersion(ctx context.Context, v model.Version) error
	// ListTakeNames returns the distinct take names of a task's versions.
	ListTakeNames(ctx context.Context, taskID string) ([]string, error)
	// SetVersionNote replaces the last note of a version (or creates the
	// first one) with the given content.
	SetVersionNote(ctx context.Context, versionID string, n model.Note) error

	// ListStatuses returns the ordered status vocabulary for a target entity
	// type (e.g. model.StatusTargetVersion).
	ListStatuses(ctx context.Context, target string) (*model.StatusList, error)
}
