package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
	"github.com/studiokit/vers/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := migrations.Apply(db, cfg.Logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate database: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateProject creates a new project in the repository.
func (r *Repository) CreateProject(ctx context.Context, p model.Project) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	query := `
		INSERT INTO projects (id, name, code, active, repository_root, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Code, boolToInt(p.Active), p.RepositoryRoot, p.CreatedAt.Unix())
	if err != nil {
		if isUniqueErr(err, "projects.") {
			return fmt.Errorf("project already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert project: %w", err)
	}

	r.logger.Debugf("Created project in repository: %s", p.ID)
	return nil
}

// GetProject retrieves a project by ID.
func (r *Repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	query := `
		SELECT id, name, code, active, repository_root, created_at
		FROM projects
		WHERE id = ?
	`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query project: %w", err)
	}

	return &p, nil
}

// ListProjects returns all projects ordered by name.
func (r *Repository) ListProjects(ctx context.Context) ([]model.Project, error) {
	query := `
		SELECT id, name, code, active, repository_root, created_at
		FROM projects
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return projects, nil
}

// CreateTask creates a new task and its dependency links.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tasks (id, project_id, parent_id, name, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var parentID *string
	if t.ParentID != "" {
		parentID = &t.ParentID
	}

	_, err = tx.ExecContext(ctx, query, t.ID, t.ProjectID, parentID, t.Name, t.CreatedBy, t.CreatedAt.Unix())
	if err != nil {
		if isUniqueErr(err, "tasks.") {
			return fmt.Errorf("task already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert task: %w", err)
	}

	for _, depID := range t.DependencyIDs {
		_, err := tx.ExecContext(ctx, `INSERT INTO task_dependencies (task_id, depends_on_id) VALUES (?, ?)`, t.ID, depID)
		if err != nil {
			return fmt.Errorf("could not insert task dependency: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by ID, dependency links included.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	query := `
		SELECT id, project_id, parent_id, name, created_by, created_at
		FROM tasks
		WHERE id = ?
	`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	deps, err := r.taskDependencies(ctx, id)
	if err != nil {
		return nil, err
	}
	t.DependencyIDs = deps

	return &t, nil
}

// ListTasks returns all tasks ordered by name, dependency links included.
func (r *Repository) ListTasks(ctx context.Context) ([]model.Task, error) {
	query := `
		SELECT id, project_id, parent_id, name, created_by, created_at
		FROM tasks
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i := range tasks {
		deps, err := r.taskDependencies(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].DependencyIDs = deps
	}

	return tasks, nil
}

func (r *Repository) taskDependencies(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT depends_on_id FROM task_dependencies WHERE task_id = ? ORDER BY depends_on_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not query task dependencies: %w", err)
	}
	defer rows.Close()

	var deps []string
	for rows.Next() {
		var dep string
		if err := rows.Scan(&dep); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		deps = append(deps, dep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return deps, nil
}

// CreateUser creates a new user in the repository.
func (r *Repository) CreateUser(ctx context.Context, u model.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO users (id, login, name) VALUES (?, ?, ?)`, u.ID, u.Login, u.Name)
	if err != nil {
		if isUniqueErr(err, "users.") {
			return fmt.Errorf("user already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert user: %w", err)
	}

	r.logger.Debugf("Created user in repository: %s", u.ID)
	return nil
}

// GetUserByLogin retrieves a user by login.
func (r *Repository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, `SELECT id, login, name FROM users WHERE login = ?`, login).
		Scan(&u.ID, &u.Login, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with login %s: %w", login, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query user: %w", err)
	}

	return &u, nil
}

// CreateVersion creates a new version and its notes.
func (r *Repository) CreateVersion(ctx context.Context, v model.Version) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("invalid version: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO versions (
			id, task_id, take_name, version_number,
			created_by, updated_by, status_code, is_published,
			path, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		v.ID,
		v.TaskID,
		v.TakeName,
		v.VersionNumber,
		v.CreatedBy,
		v.UpdatedBy,
		v.StatusCode,
		boolToInt(v.IsPublished),
		v.Path,
		v.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueErr(err, "versions.") {
			return fmt.Errorf("version already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert version: %w", err)
	}

	for _, n := range v.Notes {
		_, err := tx.ExecContext(ctx, `INSERT INTO notes (id, version_id, content, created_at) VALUES (?, ?, ?, ?)`,
			n.ID, v.ID, n.Content, n.CreatedAt.Unix())
		if err != nil {
			return fmt.Errorf("could not insert note: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Created version in repository: %s", v.ID)
	return nil
}

// GetVersion retrieves a version by ID, notes included.
func (r *Repository) GetVersion(ctx context.Context, id string) (*model.Version, error) {
	query := versionSelect + ` WHERE id = ?`

	v, err := scanVersion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("version %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query version: %w", err)
	}

	notes, err := r.versionNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Notes = notes

	return &v, nil
}

// ListVersions returns the versions matching the filter ordered by version
// number descending, capped to the filter limit when positive.
func (r *Repository) ListVersions(ctx context.Context, f storage.VersionFilter) ([]model.Version, error) {
	query := versionSelect + ` WHERE task_id = ? AND take_name = ?`
	args := []any{f.TaskID, f.TakeName}

	if f.PublishedOnly {
		query += ` AND is_published = 1`
	}

	query += ` ORDER BY version_number DESC`

	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query versions: %w", err)
	}
	defer rows.Close()

	var versions []model.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i := range versions {
		notes, err := r.versionNotes(ctx, versions[i].ID)
		if err != nil {
			return nil, err
		}
		versions[i].Notes = notes
	}

	return versions, nil
}

// UpdateVersion updates an existing version (status, publish flag, updater).
func (r *Repository) UpdateVersion(ctx context.Context, v model.Version) error {
	query := `
		UPDATE versions
		SET updated_by = ?, status_code = ?, is_published = ?, path = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, v.UpdatedBy, v.StatusCode, boolToInt(v.IsPublished), v.Path, v.ID)
	if err != nil {
		return fmt.Errorf("could not update version: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("version %s: %w", v.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated version in repository: %s", v.ID)
	return nil
}

// ListTakeNames returns the distinct take names of a task's versions.
func (r *Repository) ListTakeNames(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT take_name FROM versions WHERE task_id = ? ORDER BY take_name ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not query take names: %w", err)
	}
	defer rows.Close()

	var takes []string
	for rows.Next() {
		var take string
		if err := rows.Scan(&take); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		takes = append(takes, take)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return takes, nil
}

// SetVersionNote replaces the last note of a version or creates the first one.
func (r *Repository) SetVersionNote(ctx context.Context, versionID string, n model.Note) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM versions WHERE id = ?`, versionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("could not query version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s: %w", versionID, model.ErrNotFound)
	}

	var lastID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM notes WHERE version_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, versionID).Scan(&lastID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `INSERT INTO notes (id, version_id, content, created_at) VALUES (?, ?, ?, ?)`,
			n.ID, versionID, n.Content, n.CreatedAt.Unix())
		if err != nil {
			return fmt.Errorf("could not insert note: %w", err)
		}
	case err != nil:
		return fmt.Errorf("could not query notes: %w", err)
	default:
		_, err = tx.ExecContext(ctx, `UPDATE notes SET content = ?, created_at = ? WHERE id = ?`,
			n.Content, n.CreatedAt.Unix(), lastID)
		if err != nil {
			return fmt.Errorf("could not update note: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Set note on version: %s", versionID)
	return nil
}

// ListStatuses returns the ordered status vocabulary for a target entity type.
func (r *Repository) ListStatuses(ctx context.Context, target string) (*model.StatusList, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name, fg_color, bg_color, ord FROM statuses WHERE target = ? ORDER BY ord ASC`, target)
	if err != nil {
		return nil, fmt.Errorf("could not query statuses: %w", err)
	}
	defer rows.Close()

	list := &model.StatusList{Target: target}
	for rows.Next() {
		var s model.Status
		if err := rows.Scan(&s.Code, &s.Name, &s.FgColor, &s.BgColor, &s.Order); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		list.Statuses = append(list.Statuses, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(list.Statuses) == 0 {
		return nil, fmt.Errorf("status list for %s: %w", target, model.ErrNotFound)
	}

	return list, nil
}

func (r *Repository) versionNotes(ctx context.Context, versionID string) ([]model.Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, version_id, content, created_at FROM notes WHERE version_id = ? ORDER BY created_at ASC, id ASC`, versionID)
	if err != nil {
		return nil, fmt.Errorf("could not query notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.VersionID, &n.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		n.CreatedAt = timeFromUnix(createdAt)
		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}

const versionSelect = `
	SELECT
		id, task_id, take_name, version_number,
		created_by, updated_by, status_code, is_published,
		path, created_at
	FROM versions
`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (model.Project, error) {
	var p model.Project
	var active int
	var createdAt int64

	err := s.Scan(&p.ID, &p.Name, &p.Code, &active, &p.RepositoryRoot, &createdAt)
	if err != nil {
		return model.Project{}, err
	}

	p.Active = active != 0
	p.CreatedAt = timeFromUnix(createdAt)
	return p, nil
}

func scanTask(s scanner) (model.Task, error) {
	var t model.Task
	var parentID sql.NullString
	var createdAt int64

	err := s.Scan(&t.ID, &t.ProjectID, &parentID, &t.Name, &t.CreatedBy, &createdAt)
	if err != nil {
		return model.Task{}, err
	}

	if parentID.Valid {
		t.ParentID = parentID.String
	}
	t.CreatedAt = timeFromUnix(createdAt)
	return t, nil
}

func scanVersion(s scanner) (model.Version, error) {
	var v model.Version
	var isPublished int
	var createdAt int64

	err := s.Scan(
		&v.ID,
		&v.TaskID,
		&v.TakeName,
		&v.VersionNumber,
		&v.CreatedBy,
		&v.UpdatedBy,
		&v.StatusCode,
		&isPublished,
		&v.Path,
		&createdAt,
	)
	if err != nil {
		return model.Version{}, err
	}

	v.IsPublished = isPublished != 0
	v.CreatedAt = timeFromUnix(createdAt)
	return v, nil
}

func isUniqueErr(err error, tablePrefix string) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed: "+tablePrefix)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
