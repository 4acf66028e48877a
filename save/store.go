// Package save persists unfinished sessions as JSON records, one file per
// puzzle, and expires them after a configurable age.
package save

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
	"strings"
	"time"

	"jigsaw-local/types"
)

// DefaultTTL is how long a saved session can be resumed.
const DefaultTTL = 24 * time.Hour

// Info is a listing entry for the save browser.
type Info struct {
	FilePath  string
	PuzzleID  string
	SessionID string
	SavedAt   time.Time
	StartTime time.Time
	MoveCount int
	Placed    int
	Correct   int
	Total     int
	Paused    bool
}

// Store reads and writes session records in a directory.
type Store struct {
	dir string
	ttl time.Duration
	log *slog.Logger
	// Now is the clock used for expiry; tests replace it.
	Now func() time.Time
}

// NewStore creates a store rooted at dir. A zero ttl selects DefaultTTL.
func NewStore(dir string, ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{dir: dir, ttl: ttl, log: logger, Now: time.Now}
}

// Dir returns the directory records are stored in.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) pathFor(puzzleID string) string {
	return filepath.Join(s.dir, fileName(puzzleID))
}

// fileName maps a puzzle id onto a safe file name.
func fileName(puzzleID string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(puzzleID) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + ".json"
}

// Save writes rec, replacing any earlier record for the same puzzle.
func (s *Store) Save(ctx context.Context, rec *types.SaveRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil || strings.TrimSpace(rec.PuzzleID) == "" {
		return errors.New("invalid save: missing puzzle id")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	if err := writeFileAtomic(s.pathFor(rec.PuzzleID), data, 0o644); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

// Load returns the record for puzzleID. Missing, unreadable, corrupt and
// expired records all yield nil without an error; corrupt and expired files
// are removed so they are never resumed.
func (s *Store) Load(ctx context.Context, puzzleID string) (*types.SaveRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.pathFor(puzzleID)
	rec, err := readRecord(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("discarding unreadable save", "path", path, "err", err)
			s.remove(path)
		}
		return nil, nil
	}
	if rec.PuzzleID != puzzleID {
		s.log.Warn("save belongs to another puzzle", "path", path, "puzzle", rec.PuzzleID)
		return nil, nil
	}
	if rec.Expired(s.Now(), s.ttl) {
		s.log.Info("discarding expired save", "puzzle", puzzleID, "saved_at", rec.SavedAt)
		s.remove(path)
		return nil, nil
	}
	return rec, nil
}

// Delete removes the record for puzzleID. Deleting a missing record is not an error.
func (s *Store) Delete(ctx context.Context, puzzleID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.pathFor(puzzleID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete save: %w", err)
	}
	return nil
}

// List returns every live record, newest first. Expired and corrupt files
// are skipped.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read save dir: %w", err)
	}

	now := s.Now()
	var out []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		rec, err := readRecord(path)
		if err != nil || rec.PuzzleID == "" || rec.Expired(now, s.ttl) {
			continue
		}
		out = append(out, infoFor(path, rec))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

// Purge removes expired and corrupt records and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read save dir: %w", err)
	}
	now := s.Now()
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		rec, err := readRecord(path)
		if err == nil && !rec.Expired(now, s.ttl) {
			continue
		}
		if s.remove(path) {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) remove(path string) bool {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("remove save", "path", path, "err", err)
		return false
	}
	return true
}

func readRecord(path string) (*types.SaveRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec types.SaveRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}

func infoFor(path string, rec *types.SaveRecord) Info {
	info := Info{
		FilePath:  path,
		PuzzleID:  rec.PuzzleID,
		SessionID: rec.SessionID,
		SavedAt:   rec.SavedAt,
		StartTime: rec.StartTime,
		MoveCount: rec.MoveCount,
		Total:     len(rec.Pieces),
		Paused:    rec.IsPaused,
	}
	for i := range rec.Pieces {
		if rec.Pieces[i].IsPlaced {
			info.Placed++
			if rec.Pieces[i].Correct() {
				info.Correct++
			}
		}
	}
	return info
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over path, so a crash never leaves a half-written record.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
