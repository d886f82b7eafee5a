package io_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageio "github.com/studiokit/vers/internal/storage/io"
)

func TestGetDefaults(t *testing.T) {
	tests := map[string]struct {
		yaml   string
		exp    storageio.Defaults
		expErr bool
	}{
		"A full config should load.": {
			yaml: `
take_name: Alt
version_count: 10
published_only: true
environment: fake
`,
			exp: storageio.Defaults{TakeName: "Alt", VersionCount: 10, PublishedOnly: true, Environment: "fake"},
		},

		"Missing fields fall back to built-in defaults.": {
			yaml: `published_only: false`,
			exp:  storageio.Defaults{TakeName: "Main", VersionCount: 25},
		},

		"A non canonical take name should fail.": {
			yaml:   `take_name: "main take"`,
			expErr: true,
		},

		"A negative version count should fail.": {
			yaml:   `version_count: -3`,
			expErr: true,
		},

		"Invalid YAML should fail.": {
			yaml:   `take_name: [`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"config.yaml": &fstest.MapFile{Data: []byte(test.yaml)}}
			repo := storageio.NewDefaultsYAMLRepository(fsys)

			got, err := repo.GetDefaults(context.TODO(), "config.yaml")
			if test.expErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}

func TestGetDefaultsMissingFile(t *testing.T) {
	repo := storageio.NewDefaultsYAMLRepository(fstest.MapFS{})

	got, err := repo.GetDefaults(context.TODO(), "config.yaml")
	require.NoError(t, err)

	assert.Equal(t, storageio.Defaults{TakeName: "Main", VersionCount: 25}, got)
}
