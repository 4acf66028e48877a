// Package achievement keeps lifetime play statistics and the achievements
// they unlock.
package achievement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"jigsaw-local/types"
)

// Achievement is one unlockable goal.
type Achievement struct {
	ID          string
	Name        string
	Description string
	met         func(s types.UserStats, last *types.CompletionRecord) bool
}

// Definitions lists every achievement in display order.
var Definitions = []Achievement{
	{"first-finish", "First Finish", "Complete a puzzle", func(s types.UserStats, _ *types.CompletionRecord) bool {
		return s.TotalGamesPlayed >= 1
	}},
	{"regular", "Regular", "Complete 10 puzzles", func(s types.UserStats, _ *types.CompletionRecord) bool {
		return s.TotalGamesPlayed >= 10
	}},
	{"devotee", "Devotee", "Complete 50 puzzles", func(s types.UserStats, _ *types.CompletionRecord) bool {
		return s.TotalGamesPlayed >= 50
	}},
	{"speedy", "Speedy", "Complete a puzzle in under a minute", func(s types.UserStats, last *types.CompletionRecord) bool {
		return bestUnder(s, last, 60)
	}},
	{"steady", "Steady Hands", "Complete a puzzle in under five minutes", func(s types.UserStats, last *types.CompletionRecord) bool {
		return bestUnder(s, last, 300)
	}},
	{"marathon", "Marathon", "Spend an hour solving puzzles", func(s types.UserStats, _ *types.CompletionRecord) bool {
		return s.TotalTimeSpent >= 3600
	}},
	{"precise", "Precise", "Place 100 pieces correctly", func(s types.UserStats, _ *types.CompletionRecord) bool {
		return s.TotalSuccessMovements >= 100
	}},
	{"master", "Master Builder", "Place 1000 pieces correctly", func(s types.UserStats, _ *types.CompletionRecord) bool {
		return s.TotalSuccessMovements >= 1000
	}},
}

func bestUnder(s types.UserStats, last *types.CompletionRecord, limit int) bool {
	if last != nil && last.Seconds < limit {
		return true
	}
	for _, v := range s.BestTimes {
		if v < limit {
			return true
		}
	}
	return false
}

// Evaluate returns the ids of every achievement stats satisfies.
func Evaluate(stats types.UserStats) []string {
	var ids []string
	for _, a := range Definitions {
		if a.met(stats, nil) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Lookup finds a definition by id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range Definitions {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// ApplyCompletion folds one finished session into stats. Best times keep the
// minimum per puzzle.
func ApplyCompletion(stats types.UserStats, rec types.CompletionRecord) types.UserStats {
	out := stats
	out.BestTimes = make(map[string]int, len(stats.BestTimes)+1)
	for k, v := range stats.BestTimes {
		out.BestTimes[k] = v
	}
	out.TotalGamesPlayed++
	out.TotalTimeSpent += rec.Seconds
	out.TotalSuccessMovements += rec.SuccessMoves
	if best, ok := out.BestTimes[rec.PuzzleID]; !ok || rec.Seconds < best {
		out.BestTimes[rec.PuzzleID] = rec.Seconds
	}
	return out
}

type stored struct {
	Stats    types.UserStats      `json:"stats"`
	Unlocked map[string]time.Time `json:"unlocked"`
}

// Unlock is an achievement together with when it was earned.
type Unlock struct {
	Achievement
	At time.Time
}

// Tracker owns the statistics file and records completions into it.
type Tracker struct {
	mu       sync.Mutex
	path     string
	log      *slog.Logger
	data     stored
	onUnlock []func(Unlock)
	// Now stamps unlocks; tests replace it.
	Now func() time.Time
}

// NewTracker loads statistics from path. A missing file starts from zero;
// a corrupt one is logged and replaced on the next write.
func NewTracker(path string, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t := &Tracker{path: path, log: logger, Now: time.Now}
	t.data = stored{Unlocked: map[string]time.Time{}}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read stats: %w", err)
	default:
		var s stored
		if err := json.Unmarshal(data, &s); err != nil {
			logger.Warn("ignoring corrupt stats file", "path", path, "err", err)
			break
		}
		if s.Unlocked == nil {
			s.Unlocked = map[string]time.Time{}
		}
		t.data = s
	}
	if t.data.Stats.BestTimes == nil {
		t.data.Stats.BestTimes = map[string]int{}
	}
	return t, nil
}

// OnUnlock registers a callback for newly earned achievements.
func (t *Tracker) OnUnlock(fn func(Unlock)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUnlock = append(t.onUnlock, fn)
}

// RecordCompletion updates statistics for a finished session and persists them.
func (t *Tracker) RecordCompletion(rec types.CompletionRecord) error {
	_, err := t.Record(context.Background(), rec)
	return err
}

// Record is RecordCompletion returning the achievements this completion unlocked.
func (t *Tracker) Record(ctx context.Context, rec types.CompletionRecord) ([]Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.data.Stats = ApplyCompletion(t.data.Stats, rec)
	now := t.Now()
	var fresh []Unlock
	for _, a := range Definitions {
		if _, done := t.data.Unlocked[a.ID]; done {
			continue
		}
		if a.met(t.data.Stats, &rec) {
			t.data.Unlocked[a.ID] = now
			fresh = append(fresh, Unlock{Achievement: a, At: now})
		}
	}
	err := t.writeLocked()
	callbacks := append([]func(Unlock){}, t.onUnlock...)
	t.mu.Unlock()

	t.log.Info("completion recorded", "puzzle", rec.PuzzleID, "seconds", rec.Seconds, "moves", rec.Moves, "unlocked", len(fresh))
	for _, u := range fresh {
		for _, fn := range callbacks {
			fn(u)
		}
	}
	return fresh, err
}

// Stats returns a copy of the current statistics.
func (t *Tracker) Stats() types.UserStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.data.Stats
	s.BestTimes = make(map[string]int, len(t.data.Stats.BestTimes))
	for k, v := range t.data.Stats.BestTimes {
		s.BestTimes[k] = v
	}
	return s
}

// BestTime returns the best completion time for a puzzle in seconds.
func (t *Tracker) BestTime(puzzleID string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.data.Stats.BestTimes[puzzleID]
	return v, ok
}

// Unlocked returns earned achievements, oldest first.
func (t *Tracker) Unlocked() []Unlock {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Unlock, 0, len(t.data.Unlocked))
	for id, at := range t.data.Unlocked {
		if a, ok := Lookup(id); ok {
			out = append(out, Unlock{Achievement: a, At: at})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID < out[j].ID
		}
		return out[i].At.Before(out[j].At)
	})
	return out
}

func (t *Tracker) writeLocked() error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}
