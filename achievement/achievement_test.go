package achievement

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

var clock = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

func newTracker(t *testing.T) (*Tracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats", "stats.json")
	tr, err := NewTracker(path, nil)
	require.NoError(t, err)
	tr.Now = func() time.Time { return clock }
	return tr, path
}

func ids(us []Unlock) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.ID
	}
	return out
}

func TestApplyCompletion(t *testing.T) {
	s := types.UserStats{BestTimes: map[string]int{"a": 90}}
	got := ApplyCompletion(s, types.CompletionRecord{PuzzleID: "a", Seconds: 120, SuccessMoves: 4})
	got = ApplyCompletion(got, types.CompletionRecord{PuzzleID: "a", Seconds: 45, SuccessMoves: 4})
	got = ApplyCompletion(got, types.CompletionRecord{PuzzleID: "b", Seconds: 300, SuccessMoves: 9})

	assert.Equal(t, 3, got.TotalGamesPlayed)
	assert.Equal(t, 465, got.TotalTimeSpent)
	assert.Equal(t, 17, got.TotalSuccessMovements)
	assert.Equal(t, map[string]int{"a": 45, "b": 300}, got.BestTimes)
	assert.Equal(t, 90, s.BestTimes["a"], "input is left unchanged")
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		stats types.UserStats
		want  []string
	}{
		{"nothing", types.UserStats{}, nil},
		{"one slow game", types.UserStats{TotalGamesPlayed: 1, TotalTimeSpent: 900, BestTimes: map[string]int{"a": 900}}, []string{"first-finish"}},
		{"fast game", types.UserStats{TotalGamesPlayed: 1, BestTimes: map[string]int{"a": 59}}, []string{"first-finish", "speedy", "steady"}},
		{"veteran", types.UserStats{TotalGamesPlayed: 50, TotalTimeSpent: 3600, TotalSuccessMovements: 1000, BestTimes: map[string]int{"a": 200}},
			[]string{"first-finish", "regular", "devotee", "steady", "marathon", "precise", "master"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.stats))
		})
	}
}

func TestRecordUnlocksOnce(t *testing.T) {
	tr, _ := newTracker(t)
	var notified []string
	tr.OnUnlock(func(u Unlock) { notified = append(notified, u.ID) })

	first, err := tr.Record(context.Background(), types.CompletionRecord{PuzzleID: "a", Seconds: 50, SuccessMoves: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"first-finish", "speedy", "steady"}, ids(first))
	assert.Equal(t, ids(first), notified)

	second, err := tr.Record(context.Background(), types.CompletionRecord{PuzzleID: "a", Seconds: 30, SuccessMoves: 4})
	require.NoError(t, err)
	assert.Empty(t, second)

	best, ok := tr.BestTime("a")
	require.True(t, ok)
	assert.Equal(t, 30, best)
	assert.Equal(t, 2, tr.Stats().TotalGamesPlayed)
	assert.Len(t, tr.Unlocked(), 3)
}

func TestStatsPersist(t *testing.T) {
	tr, path := newTracker(t)
	require.NoError(t, tr.RecordCompletion(types.CompletionRecord{PuzzleID: "a", Seconds: 400, SuccessMoves: 120}))

	again, err := NewTracker(path, nil)
	require.NoError(t, err)
	s := again.Stats()
	assert.Equal(t, 1, s.TotalGamesPlayed)
	assert.Equal(t, 400, s.TotalTimeSpent)
	assert.Equal(t, 120, s.TotalSuccessMovements)
	assert.ElementsMatch(t, []string{"first-finish", "precise"}, ids(again.Unlocked()))
	for _, u := range again.Unlocked() {
		assert.True(t, clock.Equal(u.At))
	}
}

func TestCorruptStatsStartFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	tr, err := NewTracker(path, nil)
	require.NoError(t, err)
	assert.Zero(t, tr.Stats().TotalGamesPlayed)

	require.NoError(t, tr.RecordCompletion(types.CompletionRecord{PuzzleID: "a", Seconds: 10}))
	again, err := NewTracker(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Stats().TotalGamesPlayed)
}

func TestStatsReturnsCopy(t *testing.T) {
	tr, _ := newTracker(t)
	require.NoError(t, tr.RecordCompletion(types.CompletionRecord{PuzzleID: "a", Seconds: 10}))
	s := tr.Stats()
	s.BestTimes["a"] = 1
	best, _ := tr.BestTime("a")
	assert.Equal(t, 10, best)
}
