package environment

import (
	"context"

	"github.com/studiokit/vers/internal/model"
)

// OpenResult is the outcome of opening a version in the host application.
type OpenResult struct {
	// ToUpdate are referenced versions that have newer published versions
	// available and should be updated by the user.
	ToUpdate []model.Version
}

// Environment is the interface for host creative application integration
// (Maya, Houdini, Nuke, ...). It introduces the host application to the
// pipeline so it can open, save, export, import or reference version files.
//
// GetLastVersion returns the version the host currently has open, or nil
// when there is none; the restoration protocol treats it as an opaque
// reference.
type Environment interface {
	Name() string
	GetLastVersion(ctx context.Context) (*model.Version, error)
	Open(ctx context.Context, v model.Version) (*OpenResult, error)
	SaveAs(ctx context.Context, v model.Version) error
	Export(ctx context.Context, v model.Version) error
	Import(ctx context.Context, v model.Version) error
	Reference(ctx context.Context, v model.Version) error
}
