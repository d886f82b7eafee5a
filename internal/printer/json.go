package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/studiokit/vers/internal/conventions"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/tree"
)

// JSONPrinter prints version browser information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// projectItem represents a project in the list output.
type projectItem struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// treeNode represents a task tree node with its children nested.
type treeNode struct {
	Kind         string     `json:"kind"`
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Dependencies []string   `json:"dependencies,omitempty"`
	Children     []treeNode `json:"children,omitempty"`
}

// takeListOutput represents the take list with the selected entry.
type takeListOutput struct {
	Takes    []string `json:"takes"`
	Selected string   `json:"selected,omitempty"`
}

// versionItem represents a version in the list and detail outputs.
type versionItem struct {
	ID            string    `json:"id"`
	TaskID        string    `json:"task_id"`
	TakeName      string    `json:"take_name"`
	VersionNumber int       `json:"version_number"`
	Status        string    `json:"status"`
	Published     bool      `json:"published"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	Path          string    `json:"path"`
	Note          string    `json:"note,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintProjectList prints projects in JSON format.
func (j *JSONPrinter) PrintProjectList(projects []model.Project) error {
	items := make([]projectItem, len(projects))
	for i, p := range projects {
		items[i] = projectItem{
			ID:        p.ID,
			Code:      p.Code,
			Name:      p.Name,
			Active:    p.Active,
			CreatedAt: p.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintTaskTree prints the task hierarchy as nested JSON nodes.
func (j *JSONPrinter) PrintTaskTree(t *tree.Tree) error {
	var convert func(n *tree.Node) treeNode
	convert = func(n *tree.Node) treeNode {
		out := treeNode{
			Kind:         string(n.Kind),
			ID:           n.ID,
			Name:         n.Name,
			Dependencies: n.DependencyNames,
		}
		for _, c := range n.Children {
			out.Children = append(out.Children, convert(c))
		}
		return out
	}

	roots := make([]treeNode, 0, len(t.Roots))
	for _, r := range t.Roots {
		roots = append(roots, convert(r))
	}

	return j.encode(roots)
}

// PrintTakeList prints take names in JSON format.
func (j *JSONPrinter) PrintTakeList(takes []string, selected string) error {
	return j.encode(takeListOutput{Takes: takes, Selected: selected})
}

// PrintVersionList prints versions in JSON format, oldest first.
func (j *JSONPrinter) PrintVersionList(project model.Project, versions []model.Version) error {
	items := make([]versionItem, len(versions))
	for i, v := range versions {
		items[i] = newVersionItem(project, v)
	}

	return j.encode(items)
}

// PrintVersion prints detailed version information in JSON format.
func (j *JSONPrinter) PrintVersion(project model.Project, version model.Version) error {
	return j.encode(newVersionItem(project, version))
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v interface{}) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionItem(project model.Project, v model.Version) versionItem {
	return versionItem{
		ID:            v.ID,
		TaskID:        v.TaskID,
		TakeName:      v.TakeName,
		VersionNumber: v.VersionNumber,
		Status:        v.StatusCode,
		Published:     v.IsPublished,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt.UTC(),
		Path:          conventions.AbsoluteVersionPath(project, v.Path),
		Note:          v.LastNote(),
	}
}
