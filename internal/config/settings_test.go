package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

func planOf(t *testing.T, values map[string]any) resolver.BuildPlan {
	t.Helper()
	plan, err := resolver.Resolve([]resolver.Fragment{
		DefaultsFragment(),
		resolver.MustFragment("test", 1, values),
	}, resolver.PolicyOverwrite)
	require.NoError(t, err)
	return plan
}

func TestDecode_Defaults(t *testing.T) {
	s, err := Decode(planOf(t, map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, Settings{
		InputDirectory:    "src",
		OutputDirectory:   "www",
		DeepMergeData:     true,
		DataDirectory:     "_data",
		IncludesDirectory: "_includes",
		Plugins:           []string{},
		Data:              map[string]any{},
	}, s)
	assert.Equal(t, resolver.PolicyDeepMerge, s.DataPolicy())
	assert.Equal(t, filepath.Join("site", "src", "_data"), s.DataPath("site"))
}

func TestDecode_CollectsEveryProblem(t *testing.T) {
	_, err := Decode(planOf(t, map[string]any{
		KeyInputDirectory: " ",
		KeyDataDirectory:  42,
		KeyPlugins:        "rss",
		KeyData:           []any{"x"},
	}))
	require.Error(t, err)

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryValidation, classified.Category())
	fields, _ := classified.Context().GetString("fields")
	for _, want := range []string{
		"input-directory: must not be empty",
		"data-directory: expected string, got int64",
		"plugins: expected list",
		"data: expected mapping",
	} {
		assert.Contains(t, fields, want)
	}
}

func TestDecode_SameDirectoriesAfterCleaning(t *testing.T) {
	_, err := Decode(planOf(t, map[string]any{KeyInputDirectory: "out/", KeyOutputDirectory: "./out"}))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestDataPolicy_Overwrite(t *testing.T) {
	assert.Equal(t, resolver.PolicyOverwrite, Settings{}.DataPolicy())
}

func TestCoerce(t *testing.T) {
	v, err := Coerce([]string{KeyDeepMergeData}, " false ")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = Coerce([]string{KeyDeepMergeData}, "sometimes")
	require.Error(t, err)

	v, err = Coerce([]string{KeyPlugins}, "rss,, sitemap ")
	require.NoError(t, err)
	assert.Equal(t, []any{"rss", "sitemap"}, v)

	v, err = Coerce([]string{KeyData, KeyDeepMergeData}, "true")
	require.NoError(t, err)
	assert.Equal(t, "true", v)
}
