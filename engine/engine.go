// Package engine holds the runtime side of a jigsaw game: piece placement
// state, completion detection, undo/redo history, the game timer, and the
// Session that binds them to the persistence and statistics collaborators.
package engine

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"jigsaw-local/puzzle"
	"jigsaw-local/types"
)

// DefaultHistoryDepth is the undo stack bound used when none is configured.
const DefaultHistoryDepth = 50

// Persister stores session snapshots. Implementations own the storage medium.
type Persister interface {
	Save(ctx context.Context, rec *types.SaveRecord) error
	Delete(ctx context.Context, puzzleID string) error
}

// StatsRecorder receives exactly one record per completed session.
type StatsRecorder interface {
	RecordCompletion(rec types.CompletionRecord) error
}

// EventKind identifies what changed in a session.
type EventKind int

const (
	EventPieces    EventKind = iota // piece placement or position changed
	EventHistory                    // undo or redo applied
	EventPaused                     // timer paused
	EventResumed                    // timer resumed
	EventCompleted                  // session transitioned to completed
	EventRestarted                  // a fresh session started
	EventTick                       // periodic timer tick, for redrawing elapsed time
)

// Event is published to observers after a session method returns.
// Piece is -1 when the event is not about a single piece.
type Event struct {
	Kind  EventKind
	Piece int
}

// SessionOptions configures a Session. Zero values select defaults.
type SessionOptions struct {
	EnableRotation bool
	EnableFlip     bool
	HistoryDepth   int
	Rand           puzzle.Rand
	Now            func() time.Time
	TickInterval   time.Duration
	Logger         *slog.Logger
	Persister      Persister
	Stats          StatsRecorder
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.HistoryDepth <= 0 {
		o.HistoryDepth = DefaultHistoryDepth
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
