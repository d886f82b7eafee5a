package versionlist_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiokit/vers/internal/app/versionlist"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage/memory"
)

func getService(t *testing.T, versions []model.Version) *versionlist.Service {
	t.Helper()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	for _, v := range versions {
		require.NoError(t, repo.CreateVersion(context.TODO(), v))
	}

	svc, err := versionlist.NewService(versionlist.ServiceConfig{Repository: repo})
	require.NoError(t, err)

	return svc
}

func versionFixtures(taskID, takeName string, published ...bool) []model.Version {
	versions := make([]model.Version, 0, len(published))
	for i, p := range published {
		versions = append(versions, model.Version{
			ID:            fmt.Sprintf("%s-%s-v%d", taskID, takeName, i+1),
			TaskID:        taskID,
			TakeName:      takeName,
			VersionNumber: i + 1,
			CreatedBy:     "user-1",
			StatusCode:    "wip",
			IsPublished:   p,
			CreatedAt:     time.Now().UTC(),
		})
	}
	return versions
}

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		req        versionlist.Request
		published  []bool
		expNumbers []int
	}{
		"Versions come ascending, oldest first.": {
			req:        versionlist.Request{TaskID: "task-1", TakeName: "Main", Limit: 10},
			published:  []bool{false, false, false},
			expNumbers: []int{1, 2, 3},
		},

		"The limit keeps the newest window.": {
			req:        versionlist.Request{TaskID: "task-1", TakeName: "Main", Limit: 3},
			published:  []bool{false, false, false, false, false},
			expNumbers: []int{3, 4, 5},
		},

		"The published filter applies before the limit.": {
			req:        versionlist.Request{TaskID: "task-1", TakeName: "Main", PublishedOnly: true, Limit: 2},
			published:  []bool{true, false, true, true},
			expNumbers: []int{3, 4},
		},

		"Without a task the listing is empty.": {
			req:        versionlist.Request{TakeName: "Main", Limit: 10},
			published:  []bool{false},
			expNumbers: []int{},
		},

		"Without a take the listing is empty.": {
			req:        versionlist.Request{TaskID: "task-1", Limit: 10},
			published:  []bool{false},
			expNumbers: []int{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc := getService(t, versionFixtures("task-1", "Main", test.published...))

			got, err := svc.Run(context.TODO(), test.req)
			require.NoError(t, err)

			numbers := make([]int, 0, len(got))
			for _, v := range got {
				numbers = append(numbers, v.VersionNumber)
			}
			assert.Equal(t, test.expNumbers, numbers)
		})
	}
}

func TestLast(t *testing.T) {
	assert.Nil(t, versionlist.Last(nil))

	versions := versionFixtures("task-1", "Main", false, false, false)
	last := versionlist.Last(versions)
	require.NotNil(t, last)
	assert.Equal(t, 3, last.VersionNumber)
}
