package printer

import (
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/tree"
)

// Printer knows how to print version browser information in different formats.
type Printer interface {
	PrintProjectList(projects []model.Project) error
	PrintTaskTree(t *tree.Tree) error
	PrintTakeList(takes []string, selected string) error
	PrintVersionList(project model.Project, versions []model.Version) error
	PrintVersion(project model.Project, version model.Version) error
	PrintMessage(msg string) error
}
