package printer_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/printer"
	"github.com/studiokit/vers/internal/tree"
)

func TestTablePrinterPrintVersionList(t *testing.T) {
	repoRoot := t.TempDir()
	project := model.Project{ID: "prj1", Name: "Test", Code: "tp", Active: true, RepositoryRoot: repoRoot}

	// Materialize the file of v1 so the size column is real; v2 stays
	// missing and falls back to "-".
	path := filepath.Join("tp", "task1", "Main", "Modeling_Main_v001.ma")
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(repoRoot, path)), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, path), []byte("scene"), 0644))

	created := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	versions := []model.Version{
		{
			ID: "v1", TaskID: "task1", TakeName: "Main", VersionNumber: 1,
			CreatedBy: "jdoe", StatusCode: "wip", IsPublished: true,
			Path: path, CreatedAt: created,
			Notes: []model.Note{{ID: "n1", VersionID: "v1", Content: "first pass"}},
		},
		{
			ID: "v2", TaskID: "task1", TakeName: "Main", VersionNumber: 2,
			CreatedBy: "jdoe", StatusCode: "prev",
			Path: filepath.Join("tp", "task1", "Main", "Modeling_Main_v002.ma"), CreatedAt: created,
		},
	}

	var b bytes.Buffer
	err := printer.NewTablePrinter(&b).PrintVersionList(project, versions)
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, "VERSION")
	assert.Contains(t, out, "v001")
	assert.Contains(t, out, "v002")
	assert.Contains(t, out, "5 B")
	assert.Contains(t, out, "first pass")
	assert.Contains(t, out, "2026-02-10 12:00:00 UTC")
}

func TestTablePrinterPrintVersionListEmpty(t *testing.T) {
	var b bytes.Buffer
	err := printer.NewTablePrinter(&b).PrintVersionList(model.Project{}, nil)
	require.NoError(t, err)

	assert.Empty(t, b.String())
}

func TestTablePrinterPrintTakeList(t *testing.T) {
	var b bytes.Buffer
	err := printer.NewTablePrinter(&b).PrintTakeList([]string{"Alt", "Main"}, "Main")
	require.NoError(t, err)

	assert.Equal(t, "  Alt\n* Main\n", b.String())
}

func TestTablePrinterPrintTaskTree(t *testing.T) {
	project := &tree.Node{Kind: model.EntityKindProject, ID: "prj1", Name: "Test"}
	task := &tree.Node{Kind: model.EntityKindTask, ID: "task1", Name: "Modeling", Parent: project}
	sub := &tree.Node{
		Kind: model.EntityKindTask, ID: "task2", Name: "Retopo",
		DependencyNames: []string{"Modeling"}, Parent: task,
	}
	task.Children = []*tree.Node{sub}
	project.Children = []*tree.Node{task}

	var b bytes.Buffer
	err := printer.NewTablePrinter(&b).PrintTaskTree(&tree.Tree{Roots: []*tree.Node{project}})
	require.NoError(t, err)

	exp := "Test  [prj1]\n" +
		"  Modeling  [task1]\n" +
		"    Retopo (Modeling)  [task2]\n"
	assert.Equal(t, exp, b.String())
}

func TestJSONPrinterPrintVersionList(t *testing.T) {
	project := model.Project{ID: "prj1", Code: "tp", Name: "Test", RepositoryRoot: "/repo"}
	versions := []model.Version{{
		ID: "v1", TaskID: "task1", TakeName: "Main", VersionNumber: 1,
		CreatedBy: "jdoe", StatusCode: "app", IsPublished: true,
		Path:      filepath.Join("tp", "task1", "Main", "Modeling_Main_v001.ma"),
		CreatedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Notes:     []model.Note{{Content: "final"}},
	}}

	var b bytes.Buffer
	err := printer.NewJSONPrinter(&b).PrintVersionList(project, versions)
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, 1)

	assert.Equal(t, "v1", got[0]["id"])
	assert.Equal(t, float64(1), got[0]["version_number"])
	assert.Equal(t, "app", got[0]["status"])
	assert.Equal(t, true, got[0]["published"])
	assert.Equal(t, "final", got[0]["note"])
	assert.Equal(t, filepath.Join("/repo", "tp", "task1", "Main", "Modeling_Main_v001.ma"), got[0]["path"])
}

func TestJSONPrinterPrintTakeList(t *testing.T) {
	var b bytes.Buffer
	err := printer.NewJSONPrinter(&b).PrintTakeList([]string{"Alt", "Main"}, "Alt")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))

	assert.Equal(t, []interface{}{"Alt", "Main"}, got["takes"])
	assert.Equal(t, "Alt", got["selected"])
}
