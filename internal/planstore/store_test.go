package planstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func planWith(t *testing.T, output string) resolver.BuildPlan {
	t.Helper()
	plan, err := resolver.Resolve([]resolver.Fragment{
		resolver.MustFragment("defaults", 0, map[string]any{"input-directory": "src", "output-directory": output}),
	}, resolver.PolicyOverwrite)
	require.NoError(t, err)
	return plan
}

func TestStore_RecordAndLatest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Latest(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	first, err := s.Record(ctx, planWith(t, "www"))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Empty(t, first.Previous)
	assert.False(t, first.Superseded)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)
	assert.Equal(t, first.Fingerprint, latest.Fingerprint)
	assert.Equal(t, "overwrite-by-priority", latest.Policy)
	assert.Equal(t, "www", latest.Document.Values["output-directory"])
	assert.Equal(t, []string{"defaults"}, latest.Document.Provenance["output-directory"])
	assert.True(t, first.CreatedAt.Equal(latest.CreatedAt))
}

func TestStore_Superseded(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.Record(ctx, planWith(t, "www"))
	require.NoError(t, err)

	same, err := s.Record(ctx, planWith(t, "www"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, same.Previous)
	assert.False(t, same.Superseded)
	assert.Equal(t, first.Fingerprint, same.Fingerprint)

	changed, err := s.Record(ctx, planWith(t, "dist"))
	require.NoError(t, err)
	assert.Equal(t, same.ID, changed.Previous)
	assert.True(t, changed.Superseded)
	assert.NotEqual(t, first.Fingerprint, changed.Fingerprint)
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var ids []string
	for _, out := range []string{"a", "b", "c"} {
		rec, err := s.Record(ctx, planWith(t, out))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	all, err := s.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})

	two, err := s.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, ids[2], two[0].ID)

	got, err := s.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "b", got.Document.Values["output-directory"])

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plans.db")

	s, err := Open(path)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	rec, err := s.Record(ctx, planWith(t, "www"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	latest, err := reopened.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, latest.ID)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), latest.CreatedAt)
}

func TestStore_RejectsZeroPlan(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Record(context.Background(), resolver.BuildPlan{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryInternal))
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "plans.db"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryStorage))
	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Error(t, classified.Cause())
}
