package model

import (
	"fmt"
	"time"
)

// EntityKind is the closed set of entity kinds that can appear as task tree
// nodes. Tree building matches on it exhaustively instead of relying on
// runtime type identity.
type EntityKind string

const (
	// EntityKindProject is a project root node.
	EntityKindProject EntityKind = "project"
	// EntityKindTask is a task node (including subtasks).
	EntityKindTask EntityKind = "task"
)

// Project represents a production project. Tasks always belong to exactly one
// project.
type Project struct {
	ID     string
	Name   string
	Code   string
	Active bool
	// RepositoryRoot is the file area where version files of this project live.
	RepositoryRoot string
	CreatedAt      time.Time
}

// Validate validates the project model.
func (p Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("project id is required: %w", ErrNotValid)
	}
	if p.Name == "" {
		return fmt.Errorf("project name is required: %w", ErrNotValid)
	}
	if p.Code == "" {
		return fmt.Errorf("project code is required: %w", ErrNotValid)
	}
	return nil
}

// Task is a node in a project's work breakdown tree. A task has zero or one
// parent task and zero or more dependency links to sibling tasks.
type Task struct {
	ID        string
	ProjectID string
	// ParentID is empty for tasks hanging directly from the project.
	ParentID string
	Name     string
	// DependencyIDs are IDs of tasks this task depends on.
	DependencyIDs []string
	CreatedBy     string
	CreatedAt     time.Time
}

// Validate validates the task model.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required: %w", ErrNotValid)
	}
	if t.ProjectID == "" {
		return fmt.Errorf("task project id is required: %w", ErrNotValid)
	}
	if t.Name == "" {
		return fmt.Errorf("task name is required: %w", ErrNotValid)
	}
	if t.ParentID == t.ID {
		return fmt.Errorf("task cannot be its own parent: %w", ErrNotValid)
	}
	return nil
}

// User represents a pipeline user.
type User struct {
	ID    string
	Login string
	Name  string
}

// Validate validates the user model.
func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required: %w", ErrNotValid)
	}
	if u.Login == "" {
		return fmt.Errorf("user login is required: %w", ErrNotValid)
	}
	return nil
}

// Note is a free-text annotation on a version. Notes are ordered
// most-recent-last.
type Note struct {
	ID        string
	VersionID string
	Content   string
	CreatedAt time.Time
}
