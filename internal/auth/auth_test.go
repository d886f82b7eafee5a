package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiokit/vers/internal/auth"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage/memory"
)

func TestStaticProviderCurrentUser(t *testing.T) {
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(context.TODO(), model.User{ID: "user-1", Login: "jdoe", Name: "John Doe"}))

	tests := map[string]struct {
		login  string
		expID  string
		expErr error
	}{
		"A known login resolves.": {
			login: "jdoe",
			expID: "user-1",
		},

		"An empty login means the login step was cancelled.": {
			login:  "",
			expErr: model.ErrCancelled,
		},

		"An unknown login fails with not found.": {
			login:  "ghost",
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			provider, err := auth.NewStaticProvider(auth.StaticProviderConfig{
				Repository: repo,
				Login:      test.login,
			})
			require.NoError(t, err)

			user, err := provider.CurrentUser(context.TODO())
			if test.expErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, test.expErr))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expID, user.ID)
		})
	}
}
