package model

import (
	"fmt"
	"time"
)

// Version represents one immutable, numbered, persisted production file for a
// task and take. The version number is monotonic per (task, take) pair.
type Version struct {
	ID            string
	TaskID        string
	TakeName      string
	VersionNumber int
	CreatedBy     string
	UpdatedBy     string
	StatusCode    string
	IsPublished   bool
	// Path is the version file path relative to the project repository root.
	Path      string
	CreatedAt time.Time
	// Notes are the annotations of the version, most-recent-last. They are
	// loaded by the repository together with the version.
	Notes []Note
}

// Validate validates the version model.
func (v Version) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("version id is required: %w", ErrNotValid)
	}
	if v.TaskID == "" {
		return fmt.Errorf("version task id is required: %w", ErrNotValid)
	}
	if v.TakeName == "" {
		return fmt.Errorf("version take name is required: %w", ErrNotValid)
	}
	if NormalizeTakeName(v.TakeName) != v.TakeName {
		return fmt.Errorf("version take name %q is not in canonical form: %w", v.TakeName, ErrNotValid)
	}
	if v.VersionNumber <= 0 {
		return fmt.Errorf("version number must be positive: %w", ErrNotValid)
	}
	if v.CreatedBy == "" {
		return fmt.Errorf("version created by is required: %w", ErrNotValid)
	}
	if v.CreatedAt.IsZero() {
		return fmt.Errorf("version created at is required: %w", ErrNotValid)
	}
	return nil
}

// LastNote returns the content of the most recent note, or empty when the
// version has no notes.
func (v Version) LastNote() string {
	if len(v.Notes) == 0 {
		return ""
	}
	return v.Notes[len(v.Notes)-1].Content
}
