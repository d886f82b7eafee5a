package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
	"github.com/studiokit/vers/internal/storage/memory"
)

func newRepo(t *testing.T) *memory.Repository {
	t.Helper()
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	return repo
}

func versionFixture(id, taskID, takeName string, number int) model.Version {
	return model.Version{
		ID:            id,
		TaskID:        taskID,
		TakeName:      takeName,
		VersionNumber: number,
		CreatedBy:     "user-1",
		StatusCode:    "wip",
		CreatedAt:     time.Now().UTC(),
	}
}

func TestRepositoryProjects(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	p := model.Project{ID: "prj-1", Name: "Test", Code: "tp", Active: true, CreatedAt: time.Now()}
	require.NoError(t, repo.CreateProject(ctx, p))

	got, err := repo.GetProject(ctx, "prj-1")
	require.NoError(t, err)
	assert.Equal(t, "tp", got.Code)

	err = repo.CreateProject(ctx, model.Project{ID: "prj-2", Name: "Other", Code: "tp", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	_, err = repo.GetProject(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryVersionListing(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	for i := 1; i <= 5; i++ {
		v := versionFixture(string(rune('a'+i)), "task-1", "Main", i)
		v.IsPublished = i%2 == 0
		require.NoError(t, repo.CreateVersion(ctx, v))
	}

	// Descending with limit.
	versions, err := repo.ListVersions(ctx, storage.VersionFilter{TaskID: "task-1", TakeName: "Main", Limit: 3})
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 5, versions[0].VersionNumber)
	assert.Equal(t, 3, versions[2].VersionNumber)

	// Published only.
	versions, err = repo.ListVersions(ctx, storage.VersionFilter{TaskID: "task-1", TakeName: "Main", PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 4, versions[0].VersionNumber)

	// Duplicate number for the same pair is rejected.
	err = repo.CreateVersion(ctx, versionFixture("dup", "task-1", "Main", 3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))
}

func TestRepositoryTakeNames(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.CreateVersion(ctx, versionFixture("v-1", "task-1", "Main", 1)))
	require.NoError(t, repo.CreateVersion(ctx, versionFixture("v-2", "task-1", "Main", 2)))
	require.NoError(t, repo.CreateVersion(ctx, versionFixture("v-3", "task-1", "Alt", 1)))

	takes, err := repo.ListTakeNames(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alt", "Main"}, takes)
}

func TestRepositorySetVersionNote(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.CreateVersion(ctx, versionFixture("v-1", "task-1", "Main", 1)))

	require.NoError(t, repo.SetVersionNote(ctx, "v-1", model.Note{ID: "n-1", Content: "first", CreatedAt: time.Now()}))
	require.NoError(t, repo.SetVersionNote(ctx, "v-1", model.Note{ID: "n-2", Content: "second", CreatedAt: time.Now()}))

	got, err := repo.GetVersion(ctx, "v-1")
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "second", got.LastNote())

	err = repo.SetVersionNote(ctx, "v-x", model.Note{ID: "n-3", Content: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryStatuses(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	list, err := repo.ListStatuses(ctx, model.StatusTargetVersion)
	require.NoError(t, err)
	require.Len(t, list.Statuses, 4)
	assert.Equal(t, "wip", list.Statuses[0].Code)

	_, err = repo.ListStatuses(ctx, "shot")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}
