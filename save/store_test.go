package save

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jigsaw-local/types"
)

var now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir(), 0, nil)
	s.Now = func() time.Time { return now }
	return s
}

func record(id string, savedAt time.Time) *types.SaveRecord {
	slot, ok := 0, true
	return &types.SaveRecord{
		PuzzleID:  id,
		SessionID: "s-" + id,
		StartTime: savedAt.Add(-time.Minute),
		MoveCount: 3,
		SavedAt:   savedAt,
		Pieces: []types.PieceState{
			{ID: 0, OriginalIndex: 0, IsPlaced: true, GridPosition: &slot, IsCorrect: &ok},
			{ID: 1, OriginalIndex: 1, CurrentX: 250, CurrentY: 40},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := record("builtin-garden", now.Add(-time.Hour))

	require.NoError(t, s.Save(ctx, rec))
	got, err := s.Load(ctx, "builtin-garden")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.SessionID, got.SessionID)
	assert.Equal(t, rec.Pieces, got.Pieces)
	assert.True(t, rec.SavedAt.Equal(got.SavedAt))
}

func TestSaveRejectsMissingID(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Save(context.Background(), nil))
	assert.Error(t, s.Save(context.Background(), &types.SaveRecord{PuzzleID: "  "}))
}

func TestLoadMissingIsNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Load(context.Background(), "nothing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadExpiredIsDiscarded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, record("old", now.Add(-25*time.Hour))))

	got, err := s.Load(ctx, "old")
	assert.NoError(t, err)
	assert.Nil(t, got)
	_, statErr := os.Stat(s.pathFor("old"))
	assert.True(t, os.IsNotExist(statErr), "expired record is removed")
}

func TestLoadCorruptIsDiscarded(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(s.pathFor("broken"), []byte(`{"puzzle_id": "broken", "pieces": [`), 0o644))

	got, err := s.Load(context.Background(), "broken")
	assert.NoError(t, err)
	assert.Nil(t, got)
	_, statErr := os.Stat(s.pathFor("broken"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, record("a", now)))
	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"), "deleting twice is fine")
	got, _ := s.Load(ctx, "a")
	assert.Nil(t, got)
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, record("older", now.Add(-3*time.Hour))))
	require.NoError(t, s.Save(ctx, record("newer", now.Add(-time.Hour))))
	require.NoError(t, s.Save(ctx, record("stale", now.Add(-48*time.Hour))))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "junk.json"), []byte("nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o644))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].PuzzleID)
	assert.Equal(t, "older", list[1].PuzzleID)
	assert.Equal(t, 2, list[0].Total)
	assert.Equal(t, 1, list[0].Placed)
	assert.Equal(t, 1, list[0].Correct)
	assert.Equal(t, 3, list[0].MoveCount)
}

func TestListMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "none"), time.Hour, nil)
	list, err := s.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestPurge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, record("fresh", now)))
	require.NoError(t, s.Save(ctx, record("stale", now.Add(-30*time.Hour))))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "junk.json"), []byte("nope"), 0o644))

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, _ := s.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "fresh", list[0].PuzzleID)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "builtin-sunset_01.json", fileName("builtin-sunset_01"))
	assert.Equal(t, "___etc_passwd.json", fileName("../etc/passwd"))
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, record("x", now)), context.Canceled)
	_, err := s.Load(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
