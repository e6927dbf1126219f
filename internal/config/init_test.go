package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
)

func TestInit_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildplan.yaml")
	require.NoError(t, Init(path, false))

	res, err := NewLoader().Load(isolated(LoadOptions{Files: []string{path}}))
	require.NoError(t, err)
	assert.Equal(t, "src", res.Settings.InputDirectory)
	assert.Equal(t, "www", res.Settings.OutputDirectory)
	assert.True(t, res.Settings.DeepMergeData)
	title, ok := res.Plan.Lookup("data.site.title")
	require.True(t, ok)
	assert.Equal(t, "My Site", title)
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildplan.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	require.NoError(t, Init(path, true))
}
