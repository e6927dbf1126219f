package fragment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFromFile_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.yaml", `
input-directory: src
output-directory: ${OUT_DIR}
deep-merge-data: true
plugins: [rss, sitemap]
data:
  site:
    title: Docs
`)
	lookup := func(name string) (string, bool) {
		if name == "OUT_DIR" {
			return "public", true
		}
		return "", false
	}

	f, err := FromFile(path, 10, WithLookup(lookup))
	require.NoError(t, err)

	assert.Equal(t, path, f.Source())
	assert.Equal(t, 10, f.Priority())
	assert.Equal(t, resolver.KindFile, f.Kind())
	assert.Equal(t, map[string]any{
		"input-directory":  "src",
		"output-directory": "public",
		"deep-merge-data":  true,
		"plugins":          []any{"rss", "sitemap"},
		"data":             map[string]any{"site": map[string]any{"title": "Docs"}},
	}, f.Values())
}

func TestFromFile_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.json", `{"output-directory": "www", "data": {"count": 3}}`)

	f, err := FromFile(path, 1, WithSource("json-config"))
	require.NoError(t, err)

	assert.Equal(t, "json-config", f.Source())
	v, _ := f.Value("data")
	assert.Equal(t, map[string]any{"count": int64(3)}, v)
}

func TestFromFile_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yml", "")

	f, err := FromFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

func TestFromFile_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		path     string
		category ferrors.ErrorCategory
	}{
		{"missing", filepath.Join(dir, "nope.yaml"), ferrors.CategoryConfig},
		{"unsupported extension", writeFile(t, dir, "site.toml", "a = 1"), ferrors.CategoryConfig},
		{"malformed", writeFile(t, dir, "bad.yaml", "a: [1, 2"), ferrors.CategoryConfig},
		{"not a mapping", writeFile(t, dir, "list.yaml", "- a\n- b\n"), ferrors.CategoryConfig},
		{"empty key", writeFile(t, dir, "key.yaml", `"": 1`), ferrors.CategoryStructure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFile(tt.path, 0)
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, tt.category), "got %v", err)
		})
	}
}

func TestFromFile_StructureErrorIsReachable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "key.yaml", "data:\n  \"\": 1\n")

	_, err := FromFile(path, 0)

	var structure *resolver.StructureError
	require.ErrorAs(t, err, &structure)
	assert.ErrorIs(t, err, resolver.ErrEmptyKey)
}

func TestIsConfigFile(t *testing.T) {
	assert.True(t, IsConfigFile("a/b/site.YAML"))
	assert.True(t, IsConfigFile("data.json"))
	assert.False(t, IsConfigFile("notes.md"))
}
