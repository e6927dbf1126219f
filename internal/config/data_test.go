package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

func dataSettings(deep bool) Settings {
	return Settings{
		InputDirectory: "src",
		DataDirectory:  "_data",
		DeepMergeData:  deep,
		Data:           map[string]any{"site": map[string]any{"title": "Default", "lang": "en"}},
	}
}

func TestDataFragments_NoDirectory(t *testing.T) {
	fragments, err := DataFragments(t.TempDir(), dataSettings(true))
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "config:data", fragments[0].Source())
	assert.Equal(t, resolver.KindData, fragments[0].Kind())
}

func TestDataFragments_NestsByPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/_data/site.yaml", "title: Docs\n")
	writeFile(t, root, "src/_data/menus/main.json", `{"items": ["home", "about"]}`)
	writeFile(t, root, "src/_data/notes.txt", "ignored")

	fragments, err := DataFragments(root, dataSettings(true))
	require.NoError(t, err)
	require.Len(t, fragments, 3)

	assert.Equal(t, "_data/menus/main.json", fragments[1].Source())
	menus, ok := fragments[1].Value("menus")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"main": map[string]any{"items": []any{"home", "about"}}}, menus)

	assert.Equal(t, "_data/site.yaml", fragments[2].Source())
	assert.Equal(t, PriorityDataFile, fragments[2].Priority())
}

func TestResolveData_DeepMerge(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/_data/site.yaml", "title: Docs\n")

	settings := dataSettings(true)
	fragments, err := DataFragments(root, settings)
	require.NoError(t, err)

	plan, err := NewLoader().ResolveData(settings, fragments)
	require.NoError(t, err)

	assert.Equal(t, resolver.PolicyDeepMerge, plan.Policy())
	site, _ := plan.Get("site")
	assert.Equal(t, map[string]any{"title": "Docs", "lang": "en"}, site)
	assert.Equal(t, []string{"_data/site.yaml"}, plan.Explain("site.title"))
	assert.Equal(t, []string{"config:data"}, plan.Explain("site.lang"))
}

func TestResolveData_Overwrite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/_data/site.yaml", "title: Docs\n")

	settings := dataSettings(false)
	fragments, err := DataFragments(root, settings)
	require.NoError(t, err)

	plan, err := NewLoader().ResolveData(settings, fragments)
	require.NoError(t, err)

	assert.Equal(t, resolver.PolicyOverwrite, plan.Policy())
	site, _ := plan.Get("site")
	assert.Equal(t, map[string]any{"title": "Docs"}, site)
}

func TestDataFragments_InvalidFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/_data/broken.yaml", "- just\n- a list\n")

	_, err := DataFragments(root, dataSettings(true))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestDataFragments_NotADirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/_data", "file")

	_, err := DataFragments(root, dataSettings(true))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}
