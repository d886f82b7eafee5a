package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/studiokit/vers/internal/model"
)

func TestNormalizeTakeName(t *testing.T) {
	tests := map[string]struct {
		raw string
		exp string
	}{
		"A canonical name is left unchanged.": {
			raw: "Main",
			exp: "Main",
		},

		"Words are title cased.": {
			raw: "alt lighting",
			exp: "Alt_Lighting",
		},

		"Upper case input is normalized the same way.": {
			raw: "ALT LIGHTING",
			exp: "Alt_Lighting",
		},

		"Whitespace and hyphen runs collapse into one underscore.": {
			raw: "foo -\t- bar",
			exp: "Foo_Bar",
		},

		"Invalid characters are dropped before title casing.": {
			raw: "f!o?o%",
			exp: "Foo",
		},

		"An all upper case word lowers past the first letter.": {
			raw: "FOO",
			exp: "Foo",
		},

		"Leading whitespace does not leave a leading underscore.": {
			raw: "  foo bar ",
			exp: "Foo_Bar",
		},

		"Leading hyphens and underscores are stripped.": {
			raw: "-_foo",
			exp: "Foo",
		},

		"Underscore runs collapse.": {
			raw: "Foo___Bar",
			exp: "Foo_Bar",
		},

		"Trailing underscores are stripped.": {
			raw: "foo--",
			exp: "Foo",
		},

		"Digits split words like the original title casing.": {
			raw: "take2go",
			exp: "Take2Go",
		},

		"Input with nothing salvageable normalizes to empty.": {
			raw: "  ---  ",
			exp: "",
		},

		"Empty input stays empty.": {
			raw: "",
			exp: "",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := model.NormalizeTakeName(test.raw)
			assert.Equal(t, test.exp, got)

			// Normalizing is idempotent.
			assert.Equal(t, got, model.NormalizeTakeName(got))
		})
	}
}

func TestVersionValidate(t *testing.T) {
	validVersion := func() model.Version {
		return model.Version{
			ID:            "v1",
			TaskID:        "task1",
			TakeName:      "Main",
			VersionNumber: 1,
			CreatedBy:     "user1",
			CreatedAt:     time.Now(),
		}
	}

	tests := map[string]struct {
		version func() model.Version
		expErr  bool
	}{
		"A valid version should pass.": {
			version: validVersion,
		},

		"A version without ID should fail.": {
			version: func() model.Version { v := validVersion(); v.ID = ""; return v },
			expErr:  true,
		},

		"A version with a non canonical take name should fail.": {
			version: func() model.Version { v := validVersion(); v.TakeName = "main take"; return v },
			expErr:  true,
		},

		"A version with number zero should fail.": {
			version: func() model.Version { v := validVersion(); v.VersionNumber = 0; return v },
			expErr:  true,
		},

		"A version without author should fail.": {
			version: func() model.Version { v := validVersion(); v.CreatedBy = ""; return v },
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.version().Validate()
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusListLookups(t *testing.T) {
	list := model.StatusList{
		Target: model.StatusTargetVersion,
		Statuses: []model.Status{
			{Code: "wip", Name: "Work In Progress"},
			{Code: "app", Name: "Approved"},
		},
	}

	assert.Equal(t, "Approved", list.ByCode("app").Name)
	assert.Equal(t, "wip", list.ByName("Work In Progress").Code)
	assert.Nil(t, list.ByCode("nope"))
	assert.Nil(t, list.ByName("nope"))
}

func TestVersionLastNote(t *testing.T) {
	v := model.Version{}
	assert.Empty(t, v.LastNote())

	v.Notes = []model.Note{{Content: "first"}, {Content: "second"}}
	assert.Equal(t, "second", v.LastNote())
}
