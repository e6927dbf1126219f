package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/metrics"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// isolated keeps tests independent of the process environment and any .env
// files in the working directory.
func isolated(opts LoadOptions) LoadOptions {
	if opts.Environ == nil {
		opts.Environ = []string{}
	}
	if opts.EnvFiles == nil {
		opts.EnvFiles = []string{}
	}
	return opts
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	res, err := NewLoader().Load(isolated(LoadOptions{}))
	require.NoError(t, err)

	assert.Equal(t, "src", res.Settings.InputDirectory)
	assert.Equal(t, "www", res.Settings.OutputDirectory)
	assert.True(t, res.Settings.DeepMergeData)
	assert.Equal(t, "_data", res.Settings.DataDirectory)
	assert.Equal(t, []string{"defaults"}, res.Plan.Provenance(KeyInputDirectory))
	assert.Equal(t, resolver.PolicyOverwrite, res.Plan.Policy())
	assert.Len(t, res.Fragments, 1)
}

func TestLoad_LayerPrecedence(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "input-directory: content\noutput-directory: public\n")
	local := writeFile(t, dir, "local.yaml", "output-directory: dist\n")
	envFile := writeFile(t, dir, ".env", "BUILDPLAN_DEEP_MERGE_DATA=false\nOTHER=1\n")

	res, err := NewLoader().Load(LoadOptions{
		Files:     []string{base, local},
		EnvFiles:  []string{envFile},
		Environ:   []string{"BUILDPLAN_PLUGINS=rss, sitemap", "HOME=/root"},
		Overrides: []string{"input-directory=pages"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pages", res.Settings.InputDirectory)
	assert.Equal(t, "dist", res.Settings.OutputDirectory)
	assert.False(t, res.Settings.DeepMergeData)
	assert.Equal(t, []string{"rss", "sitemap"}, res.Settings.Plugins)

	assert.Equal(t, []string{"overrides"}, res.Plan.Provenance(KeyInputDirectory))
	assert.Equal(t, []string{local}, res.Plan.Provenance(KeyOutputDirectory))
	assert.Equal(t, []string{envFile}, res.Plan.Provenance(KeyDeepMergeData))
	assert.Equal(t, []string{"env:BUILDPLAN_*"}, res.Plan.Provenance(KeyPlugins))
	assert.Len(t, res.Fragments, 6)
}

func TestLoad_OptionalEnvFilesSkipped(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	res, err := NewLoader().Load(LoadOptions{Environ: []string{}})
	require.NoError(t, err)
	assert.Len(t, res.Fragments, 1)

	writeFile(t, dir, ".env.local", "BUILDPLAN_OUTPUT_DIRECTORY=site\n")
	res, err = NewLoader().Load(LoadOptions{Environ: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "site", res.Settings.OutputDirectory)
	assert.Equal(t, []string{".env.local"}, res.Plan.Provenance(KeyOutputDirectory))
}

func TestLoad_ExplicitEnvFileMissing(t *testing.T) {
	_, err := NewLoader().Load(LoadOptions{
		Environ:  []string{},
		EnvFiles: []string{filepath.Join(t.TempDir(), "missing.env")},
	})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := NewLoader().Load(isolated(LoadOptions{Files: []string{filepath.Join(t.TempDir(), "nope.yaml")}}))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad_RejectPolicyConflict(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "site.yaml", "input-directory: content\n")

	_, err := NewLoader().Load(isolated(LoadOptions{Files: []string{path}, Policy: resolver.PolicyReject}))
	require.Error(t, err)

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryConflict, classified.Category())
	assert.True(t, classified.IsFatal())
	assert.Equal(t, ferrors.RetryUserAction, classified.RetryStrategy())
	key, _ := classified.Context().GetString("key")
	assert.Equal(t, KeyInputDirectory, key)

	var conflict *resolver.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "defaults", conflict.First)
	assert.Equal(t, path, conflict.Second)
}

func TestLoad_RejectPolicyAgreeingValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "site.yaml", "input-directory: src\n")

	res, err := NewLoader().Load(isolated(LoadOptions{Files: []string{path}, Policy: resolver.PolicyReject}))
	require.NoError(t, err)
	assert.Equal(t, []string{"defaults", path}, res.Plan.Provenance(KeyInputDirectory))
}

func TestLoad_UnknownPolicy(t *testing.T) {
	_, err := NewLoader().Load(isolated(LoadOptions{Policy: "newest-wins"}))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.ErrorIs(t, err, resolver.ErrUnknownPolicy)
}

func TestLoad_MissingRequiredKey(t *testing.T) {
	_, err := NewLoader().Load(isolated(LoadOptions{Required: []string{KeyInputDirectory, "theme", "data.site.title"}}))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	var validation *resolver.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, []string{"data.site.title", "theme"}, validation.Missing)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "site.yaml", "output-directory: src\ndeep-merge-data: yes please\nplugins: [1]\n")

	_, err := NewLoader().Load(isolated(LoadOptions{Files: []string{path}}))
	require.Error(t, err)

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryValidation, classified.Category())
	fields, _ := classified.Context().GetString("fields")
	assert.Contains(t, fields, "output-directory: must differ")
	assert.Contains(t, fields, "deep-merge-data: expected boolean")
	assert.Contains(t, fields, "plugins[0]")
}

func TestLoad_BadOverride(t *testing.T) {
	_, err := NewLoader().Load(isolated(LoadOptions{Overrides: []string{"deep-merge-data=maybe"}}))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

type countingRecorder struct {
	outcomes  map[string]int
	conflicts []string
	missing   int
	durations int
	fragments []int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: map[string]int{}}
}

func (r *countingRecorder) ObserveResolveDuration(string, time.Duration) { r.durations++ }
func (r *countingRecorder) IncResolveOutcome(_ string, o metrics.OutcomeLabel) {
	r.outcomes[string(o)]++
}
func (r *countingRecorder) ObserveFragments(n int) { r.fragments = append(r.fragments, n) }
func (r *countingRecorder) IncConflict(key string) { r.conflicts = append(r.conflicts, key) }
func (r *countingRecorder) AddMissingKeys(n int)   { r.missing += n }

func TestLoader_RecordsMetrics(t *testing.T) {
	rec := newCountingRecorder()
	l := NewLoader(WithRecorder(rec))

	_, err := l.Load(isolated(LoadOptions{}))
	require.NoError(t, err)
	_, err = l.Load(isolated(LoadOptions{Overrides: []string{"output-directory=x"}, Policy: resolver.PolicyReject}))
	require.Error(t, err)
	_, err = l.Load(isolated(LoadOptions{Required: []string{"a", "b"}}))
	require.Error(t, err)

	assert.Equal(t, 3, rec.durations)
	assert.Equal(t, []int{1, 2, 1}, rec.fragments)
	assert.Equal(t, 2, rec.outcomes["success"])
	assert.Equal(t, 1, rec.outcomes["conflict"])
	assert.Equal(t, 1, rec.outcomes["invalid"])
	assert.Equal(t, []string{KeyOutputDirectory}, rec.conflicts)
	assert.Equal(t, 2, rec.missing)
}
