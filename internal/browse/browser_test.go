package browse_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiokit/vers/internal/app/takelist"
	"github.com/studiokit/vers/internal/app/versionlist"
	"github.com/studiokit/vers/internal/browse"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage/memory"
	"github.com/studiokit/vers/internal/tree"
)

func getBrowser(t *testing.T, repo *memory.Repository, cfg browse.BrowserConfig) *browse.Browser {
	t.Helper()

	builder, err := tree.NewBuilder(tree.BuilderConfig{Repository: repo})
	require.NoError(t, err)

	lister, err := versionlist.NewService(versionlist.ServiceConfig{Repository: repo})
	require.NoError(t, err)

	takes, err := takelist.NewService(takelist.ServiceConfig{
		Repository:      repo,
		DefaultTakeName: model.DefaultTakeName,
	})
	require.NoError(t, err)

	cfg.Repository = repo
	cfg.TreeBuilder = builder
	cfg.VersionLister = lister
	cfg.TakeLister = takes

	browser, err := browse.NewBrowser(cfg)
	require.NoError(t, err)

	require.NoError(t, browser.Reload(context.TODO(), tree.BuildOptions{}))
	return browser
}

func getRepository(t *testing.T) *memory.Repository {
	t.Helper()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	ctx := context.TODO()
	require.NoError(t, repo.CreateProject(ctx, model.Project{
		ID: "prj1", Name: "Test project", Code: "tp", Active: true, CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.CreateTask(ctx, model.Task{
		ID: "task1", ProjectID: "prj1", Name: "Modeling", CreatedBy: "user1", CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.CreateUser(ctx, model.User{ID: "user1", Login: "jdoe", Name: "John Doe"}))

	return repo
}

func seedVersions(t *testing.T, repo *memory.Repository, taskID, takeName string, statuses []string, published []bool) []model.Version {
	t.Helper()

	versions := make([]model.Version, 0, len(statuses))
	for i, status := range statuses {
		v := model.Version{
			ID:            fmt.Sprintf("%s-%s-v%d", taskID, takeName, i+1),
			TaskID:        taskID,
			TakeName:      takeName,
			VersionNumber: i + 1,
			CreatedBy:     "user1",
			StatusCode:    status,
			IsPublished:   published[i],
			CreatedAt:     time.Now(),
		}
		require.NoError(t, repo.CreateVersion(context.TODO(), v))
		versions = append(versions, v)
	}

	return versions
}

func TestBrowserSelectTask(t *testing.T) {
	repo := getRepository(t)
	seedVersions(t, repo, "task1", "Main", []string{"wip", "wip", "prev"}, []bool{false, true, true})

	b := getBrowser(t, repo, browse.BrowserConfig{})

	err := b.SelectTask(context.TODO(), "task1")
	require.NoError(t, err)

	// The default take gets selected and its window rebuilt, ascending.
	assert.Equal(t, []string{"Main"}, b.Takes())
	numbers := versionNumbers(b.Versions())
	assert.Equal(t, []int{1, 2, 3}, numbers)
	assert.Equal(t, browse.Selection{TaskID: "task1", TakeName: "Main"}, b.Selection())
}

func TestBrowserSelectTaskUnknownIDClearsSelection(t *testing.T) {
	repo := getRepository(t)
	seedVersions(t, repo, "task1", "Main", []string{"wip"}, []bool{false})

	b := getBrowser(t, repo, browse.BrowserConfig{})

	require.NoError(t, b.SelectTask(context.TODO(), "task1"))
	require.NoError(t, b.SelectTask(context.TODO(), "does-not-exist"))

	assert.Empty(t, b.Takes())
	assert.Empty(t, b.Versions())
	assert.Equal(t, browse.Selection{}, b.Selection())
}

func TestBrowserLimitKeepsNewestWindow(t *testing.T) {
	repo := getRepository(t)
	seedVersions(t, repo, "task1", "Main", []string{"wip", "wip", "wip", "wip", "wip"}, []bool{false, false, false, false, false})

	b := getBrowser(t, repo, browse.BrowserConfig{Limit: 3})

	require.NoError(t, b.SelectTask(context.TODO(), "task1"))

	assert.Equal(t, []int{3, 4, 5}, versionNumbers(b.Versions()))
}

func TestBrowserPublishedOnlyFiltersWindow(t *testing.T) {
	repo := getRepository(t)
	seedVersions(t, repo, "task1", "Main", []string{"wip", "prev", "app"}, []bool{true, false, true})

	b := getBrowser(t, repo, browse.BrowserConfig{PublishedOnly: true})

	require.NoError(t, b.SelectTask(context.TODO(), "task1"))

	assert.Equal(t, []int{1, 3}, versionNumbers(b.Versions()))
}

func TestBrowserStatusFollowsNewestListedVersion(t *testing.T) {
	repo := getRepository(t)
	seedVersions(t, repo, "task1", "Main", []string{"wip", "app"}, []bool{false, false})

	b := getBrowser(t, repo, browse.BrowserConfig{})

	require.NoError(t, b.SelectTask(context.TODO(), "task1"))
	assert.Equal(t, "app", b.StatusCode())

	// An empty rebuild leaves the status untouched.
	_, _, err := b.AddTake(context.TODO(), "empty take")
	require.NoError(t, err)
	assert.Empty(t, b.Versions())
	assert.Equal(t, "app", b.StatusCode())
}

func TestBrowserSelectTakeMissLeavesSelection(t *testing.T) {
	repo := getRepository(t)
	seedVersions(t, repo, "task1", "Main", []string{"wip"}, []bool{false})

	b := getBrowser(t, repo, browse.BrowserConfig{})
	require.NoError(t, b.SelectTask(context.TODO(), "task1"))

	found, err := b.SelectTake(context.TODO(), "Nope")
	require.NoError(t, err)

	assert.False(t, found)
	assert.Equal(t, "Main", b.Selection().TakeName)
	assert.Equal(t, []int{1}, versionNumbers(b.Versions()))
}

func TestBrowserAddTake(t *testing.T) {
	tests := map[string]struct {
		raw          string
		expName      string
		expInserted  bool
		expTakes     []string
		expSelection string
	}{
		"Raw input is normalized before insertion.": {
			raw:          "  foo bar ",
			expName:      "Foo_Bar",
			expInserted:  true,
			expTakes:     []string{"Foo_Bar", "Main"},
			expSelection: "Foo_Bar",
		},

		"Input normalizing to empty is rejected and changes nothing.": {
			raw:          "  ---  ",
			expName:      "",
			expInserted:  false,
			expTakes:     []string{"Main"},
			expSelection: "Main",
		},

		"A name equal to an existing take after normalization is deduplicated.": {
			raw:          "main",
			expName:      "Main",
			expInserted:  false,
			expTakes:     []string{"Main"},
			expSelection: "Main",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := getRepository(t)
			seedVersions(t, repo, "task1", "Main", []string{"wip"}, []bool{false})

			b := getBrowser(t, repo, browse.BrowserConfig{})
			require.NoError(t, b.SelectTask(context.TODO(), "task1"))

			gotName, gotInserted, err := b.AddTake(context.TODO(), test.raw)
			require.NoError(t, err)

			assert.Equal(t, test.expName, gotName)
			assert.Equal(t, test.expInserted, gotInserted)
			assert.Equal(t, test.expTakes, b.Takes())
			assert.Equal(t, test.expSelection, b.Selection().TakeName)
		})
	}
}

func TestBrowserRestore(t *testing.T) {
	repo := getRepository(t)
	seedVersions(t, repo, "task1", "Main", []string{"wip", "wip"}, []bool{false, false})
	alts := seedVersions(t, repo, "task1", "Alt", []string{"prev"}, []bool{false})

	b := getBrowser(t, repo, browse.BrowserConfig{})

	sel, err := b.Restore(context.TODO(), &alts[0])
	require.NoError(t, err)

	assert.Equal(t, browse.Selection{TaskID: "task1", TakeName: "Alt", VersionID: alts[0].ID}, sel)
	require.NotNil(t, b.SelectedVersion())
	assert.Equal(t, alts[0].ID, b.SelectedVersion().ID)
}

func TestBrowserRestoreNilReferenceIsNoop(t *testing.T) {
	repo := getRepository(t)
	b := getBrowser(t, repo, browse.BrowserConfig{})

	sel, err := b.Restore(context.TODO(), nil)
	require.NoError(t, err)

	assert.Equal(t, browse.Selection{}, sel)
}

func TestBrowserRestoreInactiveProjectIsNoop(t *testing.T) {
	repo := getRepository(t)

	ctx := context.TODO()
	require.NoError(t, repo.CreateProject(ctx, model.Project{
		ID: "prj2", Name: "Archived", Code: "arc", Active: false, CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.CreateTask(ctx, model.Task{
		ID: "task2", ProjectID: "prj2", Name: "Old modeling", CreatedBy: "user1", CreatedAt: time.Now(),
	}))
	stale := seedVersions(t, repo, "task2", "Main", []string{"wip"}, []bool{false})

	b := getBrowser(t, repo, browse.BrowserConfig{})

	sel, err := b.Restore(ctx, &stale[0])
	require.NoError(t, err)

	assert.Equal(t, browse.Selection{}, sel)
}

func TestBrowserRestoreUnknownTaskIsNoop(t *testing.T) {
	repo := getRepository(t)
	b := getBrowser(t, repo, browse.BrowserConfig{})

	ref := model.Version{ID: "v-gone", TaskID: "task-gone", TakeName: "Main", VersionNumber: 1}
	sel, err := b.Restore(context.TODO(), &ref)
	require.NoError(t, err)

	assert.Equal(t, browse.Selection{}, sel)
}

func TestBrowserRestoreOutsideWindowSelectsNoRow(t *testing.T) {
	repo := getRepository(t)
	versions := seedVersions(t, repo, "task1", "Main", []string{"wip", "wip", "wip", "wip", "wip"}, []bool{false, false, false, false, false})

	b := getBrowser(t, repo, browse.BrowserConfig{Limit: 3})

	// v1 got pushed out of the capped window, so the task and take are
	// selected but no version row.
	sel, err := b.Restore(context.TODO(), &versions[0])
	require.NoError(t, err)

	assert.Equal(t, browse.Selection{TaskID: "task1", TakeName: "Main"}, sel)
	assert.Nil(t, b.SelectedVersion())
	assert.Equal(t, []int{3, 4, 5}, versionNumbers(b.Versions()))
}

func TestBrowserRestoreTakeMissKeepsDefaultTake(t *testing.T) {
	repo := getRepository(t)
	seedVersions(t, repo, "task1", "Main", []string{"wip"}, []bool{false})

	b := getBrowser(t, repo, browse.BrowserConfig{})

	// The reference take no longer exists for the task. The task gets
	// selected with its first take and no version row.
	ref := model.Version{ID: "v-stale", TaskID: "task1", TakeName: "Retired", VersionNumber: 9}
	sel, err := b.Restore(context.TODO(), &ref)
	require.NoError(t, err)

	assert.Equal(t, browse.Selection{TaskID: "task1", TakeName: "Main"}, sel)
	assert.Nil(t, b.SelectedVersion())
}

func TestBrowserSelectRow(t *testing.T) {
	repo := getRepository(t)
	versions := seedVersions(t, repo, "task1", "Main", []string{"wip", "wip"}, []bool{false, false})

	b := getBrowser(t, repo, browse.BrowserConfig{})
	require.NoError(t, b.SelectTask(context.TODO(), "task1"))

	b.SelectRow(1)
	require.NotNil(t, b.SelectedVersion())
	assert.Equal(t, versions[1].ID, b.SelectedVersion().ID)

	b.SelectRow(99)
	assert.Nil(t, b.SelectedVersion())
}

func versionNumbers(versions []model.Version) []int {
	numbers := make([]int, 0, len(versions))
	for _, v := range versions {
		numbers = append(numbers, v.VersionNumber)
	}
	return numbers
}
