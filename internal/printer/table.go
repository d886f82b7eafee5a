package printer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/studiokit/vers/internal/conventions"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/tree"
)

// TablePrinter prints version browser information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintProjectList prints projects in a table format.
func (t *TablePrinter) PrintProjectList(projects []model.Project) error {
	if len(projects) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "CODE\tNAME\tACTIVE\tCREATED")

	// Print rows.
	for _, p := range projects {
		active := "no"
		if p.Active {
			active = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Code, p.Name, active, TimeAgo(p.CreatedAt))
	}

	return nil
}

// PrintTaskTree prints the task hierarchy with indentation, dependency names
// in parentheses.
func (t *TablePrinter) PrintTaskTree(tr *tree.Tree) error {
	var print func(n *tree.Node, depth int)
	print = func(n *tree.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		deps := ""
		if len(n.DependencyNames) > 0 {
			deps = fmt.Sprintf(" (%s)", strings.Join(n.DependencyNames, ", "))
		}
		fmt.Fprintf(t.writer, "%s%s%s  [%s]\n", indent, n.Name, deps, n.ID)
		for _, c := range n.Children {
			print(c, depth+1)
		}
	}

	for _, r := range tr.Roots {
		print(r, 0)
	}

	return nil
}

// PrintTakeList prints take names one per line, marking the selected one.
func (t *TablePrinter) PrintTakeList(takes []string, selected string) error {
	for _, take := range takes {
		marker := " "
		if take == selected {
			marker = "*"
		}
		fmt.Fprintf(t.writer, "%s %s\n", marker, take)
	}

	return nil
}

// PrintVersionList prints versions in a table format, oldest first. The file
// size and date columns come from the version file on disk when it exists.
func (t *TablePrinter) PrintVersionList(project model.Project, versions []model.Version) error {
	if len(versions) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "VERSION\tP\tUSER\tSTATUS\tFILE SIZE\tDATE\tNOTE")

	// Print rows.
	for _, v := range versions {
		published := " "
		if v.IsPublished {
			published = "P"
		}

		size, date := fileInfo(conventions.AbsoluteVersionPath(project, v.Path))
		if date == "" {
			date = FormatTimestamp(v.CreatedAt)
		}

		fmt.Fprintf(tw, "v%03d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.VersionNumber,
			published,
			v.CreatedBy,
			v.StatusCode,
			size,
			date,
			v.LastNote(),
		)
	}

	return nil
}

// PrintVersion prints detailed version information.
func (t *TablePrinter) PrintVersion(project model.Project, v model.Version) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", v.ID)
	fmt.Fprintf(t.writer, "Task:       %s\n", v.TaskID)
	fmt.Fprintf(t.writer, "Take:       %s\n", v.TakeName)
	fmt.Fprintf(t.writer, "Version:    v%03d\n", v.VersionNumber)
	fmt.Fprintf(t.writer, "Status:     %s\n", v.StatusCode)
	fmt.Fprintf(t.writer, "Published:  %t\n", v.IsPublished)
	fmt.Fprintf(t.writer, "Created by: %s\n", v.CreatedBy)
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(v.CreatedAt))
	fmt.Fprintf(t.writer, "Path:       %s\n", conventions.AbsoluteVersionPath(project, v.Path))

	if note := v.LastNote(); note != "" {
		fmt.Fprintf(t.writer, "Note:       %s\n", note)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

// fileInfo returns the formatted size and modification time of a version
// file. A missing file falls back to "-" and the record creation date.
func fileInfo(path string) (size, date string) {
	if path == "" {
		return "-", ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return "-", ""
	}
	return FormatBytes(info.Size()), FormatTimestamp(info.ModTime())
}
