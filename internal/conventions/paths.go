package conventions

import (
	"fmt"
	"path/filepath"

	"github.com/studiokit/vers/internal/model"
)

const (
	// DefaultDataDir is the default vers data directory name (relative to home).
	DefaultDataDir = ".vers"
	// DBFile is the SQLite database filename.
	DBFile = "vers.db"
	// DefaultsFile is the pipeline defaults filename inside the data dir.
	DefaultsFile = "config.yaml"

	// VersionFileExt is the extension of version files created in
	// environment-less mode.
	VersionFileExt = ".ma"
)

// VersionFileName returns the canonical filename for a version of a task and
// take, e.g. "Lighting_Main_v003.ma".
func VersionFileName(taskName, takeName string, versionNumber int) string {
	return fmt.Sprintf("%s_%s_v%03d%s", taskName, takeName, versionNumber, VersionFileExt)
}

// VersionPath returns the version file path relative to the project
// repository root: <project code>/<task id>/<take>/<file>.
func VersionPath(p model.Project, t model.Task, takeName string, versionNumber int) string {
	return filepath.Join(p.Code, t.ID, takeName, VersionFileName(t.Name, takeName, versionNumber))
}

// AbsoluteVersionPath resolves a version path against the project repository
// root. An empty repository root leaves the path relative.
func AbsoluteVersionPath(p model.Project, versionPath string) string {
	if p.RepositoryRoot == "" {
		return versionPath
	}
	return filepath.Join(p.RepositoryRoot, versionPath)
}

// DBPath returns the database path inside a data dir.
func DBPath(dataDir string) string { return filepath.Join(dataDir, DBFile) }

// DefaultsPath returns the defaults file path inside a data dir.
func DefaultsPath(dataDir string) string { return filepath.Join(dataDir, DefaultsFile) }
