package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	projects map[string]model.Project
	tasks    map[string]model.Task
	users    map[string]model.User
	versions map[string]model.Version
	statuses map[string]model.StatusList
	mu       sync.RWMutex
	logger   log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new memory repository seeded with the default
// version status vocabulary.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		projects: make(map[string]model.Project),
		tasks:    make(map[string]model.Task),
		users:    make(map[string]model.User),
		versions: make(map[string]model.Version),
		statuses: map[string]model.StatusList{
			model.StatusTargetVersion: {
				Target: model.StatusTargetVersion,
				Statuses: []model.Status{
					{Code: "wip", Name: "Work In Progress", FgColor: "#000000", BgColor: "#ffa500", Order: 0},
					{Code: "prev", Name: "Pending Review", FgColor: "#000000", BgColor: "#ffff00", Order: 1},
					{Code: "app", Name: "Approved", FgColor: "#000000", BgColor: "#00c000", Order: 2},
					{Code: "omt", Name: "Omitted", FgColor: "#ffffff", BgColor: "#808080", Order: 3},
				},
			},
		},
		logger: cfg.Logger,
	}, nil
}

// CreateProject creates a new project in the repository.
func (r *Repository) CreateProject(ctx context.Context, p model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	if _, ok := r.projects[p.ID]; ok {
		return fmt.Errorf("project with id %s: %w", p.ID, model.ErrAlreadyExists)
	}
	for _, existing := range r.projects {
		if existing.Code == p.Code {
			return fmt.Errorf("project with code %s: %w", p.Code, model.ErrAlreadyExists)
		}
	}

	r.projects[p.ID] = p
	r.logger.Debugf("Created project in repository: %s", p.ID)

	return nil
}

// GetProject retrieves a project by ID.
func (r *Repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}

	pCopy := p
	return &pCopy, nil
}

// ListProjects returns all projects ordered by name.
func (r *Repository) ListProjects(ctx context.Context) ([]model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })

	return projects, nil
}

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("task with id %s: %w", t.ID, model.ErrAlreadyExists)
	}

	r.tasks[t.ID] = t
	r.logger.Debugf("Created task in repository: %s", t.ID)

	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	tCopy := t
	return &tCopy, nil
}

// ListTasks returns all tasks ordered by name.
func (r *Repository) ListTasks(ctx context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })

	return tasks, nil
}

// CreateUser creates a new user in the repository.
func (r *Repository) CreateUser(ctx context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	if _, ok := r.users[u.ID]; ok {
		return fmt.Errorf("user with id %s: %w", u.ID, model.ErrAlreadyExists)
	}
	for _, existing := range r.users {
		if existing.Login == u.Login {
			return fmt.Errorf("user with login %s: %w", u.Login, model.ErrAlreadyExists)
		}
	}

	r.users[u.ID] = u
	r.logger.Debugf("Created user in repository: %s", u.ID)

	return nil
}

// GetUserByLogin retrieves a user by login.
func (r *Repository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Login == login {
			uCopy := u
			return &uCopy, nil
		}
	}

	return nil, fmt.Errorf("user with login %s: %w", login, model.ErrNotFound)
}

// CreateVersion creates a new version in the repository.
func (r *Repository) CreateVersion(ctx context.Context, v model.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := v.Validate(); err != nil {
		return fmt.Errorf("invalid version: %w", err)
	}

	if _, ok := r.versions[v.ID]; ok {
		return fmt.Errorf("version with id %s: %w", v.ID, model.ErrAlreadyExists)
	}
	for _, existing := range r.versions {
		if existing.TaskID == v.TaskID && existing.TakeName == v.TakeName && existing.VersionNumber == v.VersionNumber {
			return fmt.Errorf("version %d of %s/%s: %w", v.VersionNumber, v.TaskID, v.TakeName, model.ErrAlreadyExists)
		}
	}

	r.versions[v.ID] = v
	r.logger.Debugf("Created version in repository: %s", v.ID)

	return nil
}

// GetVersion retrieves a version by ID.
func (r *Repository) GetVersion(ctx context.Context, id string) (*model.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.versions[id]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", id, model.ErrNotFound)
	}

	vCopy := v
	return &vCopy, nil
}

// ListVersions returns the versions matching the filter ordered by version
// number descending, capped to the filter limit when positive.
func (r *Repository) ListVersions(ctx context.Context, f storage.VersionFilter) ([]model.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var versions []model.Version
	for _, v := range r.versions {
		if v.TaskID != f.TaskID || v.TakeName != f.TakeName {
			continue
		}
		if f.PublishedOnly && !v.IsPublished {
			continue
		}
		versions = append(versions, v)
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].VersionNumber > versions[j].VersionNumber })

	if f.Limit > 0 && len(versions) > f.Limit {
		versions = versions[:f.Limit]
	}

	return versions, nil
}

// UpdateVersion updates an existing version.
func (r *Repository) UpdateVersion(ctx context.Context, v model.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.versions[v.ID]
	if !ok {
		return fmt.Errorf("version %s: %w", v.ID, model.ErrNotFound)
	}

	current.UpdatedBy = v.UpdatedBy
	current.StatusCode = v.StatusCode
	current.IsPublished = v.IsPublished
	current.Path = v.Path
	r.versions[v.ID] = current
	r.logger.Debugf("Updated version in repository: %s", v.ID)

	return nil
}

// ListTakeNames returns the distinct take names of a task's versions, sorted.
func (r *Repository) ListTakeNames(ctx context.Context, taskID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	var takes []string
	for _, v := range r.versions {
		if v.TaskID != taskID {
			continue
		}
		if _, ok := seen[v.TakeName]; ok {
			continue
		}
		seen[v.TakeName] = struct{}{}
		takes = append(takes, v.TakeName)
	}
	sort.Strings(takes)

	return takes, nil
}

// SetVersionNote replaces the last note of a version or creates the first one.
func (r *Repository) SetVersionNote(ctx context.Context, versionID string, n model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.versions[versionID]
	if !ok {
		return fmt.Errorf("version %s: %w", versionID, model.ErrNotFound)
	}

	n.VersionID = versionID
	if len(v.Notes) == 0 {
		v.Notes = []model.Note{n}
	} else {
		v.Notes[len(v.Notes)-1] = n
	}
	r.versions[versionID] = v
	r.logger.Debugf("Set note on version: %s", versionID)

	return nil
}

// ListStatuses returns the ordered status vocabulary for a target entity type.
func (r *Repository) ListStatuses(ctx context.Context, target string) (*model.StatusList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.statuses[target]
	if !ok {
		return nil, fmt.Errorf("status list for %s: %w", target, model.ErrNotFound)
	}

	listCopy := list
	listCopy.Statuses = append([]model.Status(nil), list.Statuses...)
	return &listCopy, nil
}
