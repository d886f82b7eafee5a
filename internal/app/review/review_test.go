package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiokit/vers/internal/app/review"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage/memory"
)

func getService(t *testing.T, readOnly bool) (*review.Service, *memory.Repository) {
	t.Helper()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	require.NoError(t, repo.CreateVersion(context.TODO(), model.Version{
		ID: "v-1", TaskID: "task-1", TakeName: "Main", VersionNumber: 1,
		CreatedBy: "user-1", StatusCode: "wip", CreatedAt: time.Now(),
	}))

	svc, err := review.NewService(review.ServiceConfig{
		Repository: repo,
		ReadOnly:   readOnly,
	})
	require.NoError(t, err)

	return svc, repo
}

var reviewer = model.User{ID: "user-2", Login: "reviewer"}

func TestServiceSetPublished(t *testing.T) {
	svc, repo := getService(t, false)
	ctx := context.TODO()

	got, err := svc.SetPublished(ctx, "v-1", true, reviewer)
	require.NoError(t, err)
	assert.True(t, got.IsPublished)
	assert.Equal(t, "user-2", got.UpdatedBy)

	stored, err := repo.GetVersion(ctx, "v-1")
	require.NoError(t, err)
	assert.True(t, stored.IsPublished)

	got, err = svc.SetPublished(ctx, "v-1", false, reviewer)
	require.NoError(t, err)
	assert.False(t, got.IsPublished)
}

func TestServiceSetStatus(t *testing.T) {
	svc, repo := getService(t, false)
	ctx := context.TODO()

	// By code.
	got, err := svc.SetStatus(ctx, "v-1", "app", reviewer)
	require.NoError(t, err)
	assert.Equal(t, "app", got.StatusCode)

	// By name.
	got, err = svc.SetStatus(ctx, "v-1", "Pending Review", reviewer)
	require.NoError(t, err)
	assert.Equal(t, "prev", got.StatusCode)

	stored, err := repo.GetVersion(ctx, "v-1")
	require.NoError(t, err)
	assert.Equal(t, "prev", stored.StatusCode)

	// Outside the vocabulary.
	_, err = svc.SetStatus(ctx, "v-1", "nope", reviewer)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotValid))
}

func TestServiceSetNote(t *testing.T) {
	svc, _ := getService(t, false)
	ctx := context.TODO()

	got, err := svc.SetNote(ctx, "v-1", "looks good")
	require.NoError(t, err)
	assert.Equal(t, "looks good", got.LastNote())

	// The note is replaced, not appended.
	got, err = svc.SetNote(ctx, "v-1", "fix the rig")
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "fix the rig", got.LastNote())
}

func TestServiceReadOnly(t *testing.T) {
	svc, _ := getService(t, true)
	ctx := context.TODO()

	_, err := svc.SetPublished(ctx, "v-1", true, reviewer)
	assert.True(t, errors.Is(err, model.ErrReadOnly))

	_, err = svc.SetStatus(ctx, "v-1", "app", reviewer)
	assert.True(t, errors.Is(err, model.ErrReadOnly))

	_, err = svc.SetNote(ctx, "v-1", "nope")
	assert.True(t, errors.Is(err, model.ErrReadOnly))
}
