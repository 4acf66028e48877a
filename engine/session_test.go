package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jigsaw-local/puzzle"
	"jigsaw-local/types"
)

type memPersister struct {
	saved   map[string]types.SaveRecord
	deletes int
	err     error
}

func (m *memPersister) Save(_ context.Context, rec *types.SaveRecord) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = map[string]types.SaveRecord{}
	}
	m.saved[rec.PuzzleID] = *rec
	return nil
}

func (m *memPersister) Delete(_ context.Context, id string) error {
	m.deletes++
	delete(m.saved, id)
	return m.err
}

type statsSpy struct {
	records []types.CompletionRecord
}

func (s *statsSpy) RecordCompletion(rec types.CompletionRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func testPuzzle() types.PuzzleData {
	g := types.GridConfig{Rows: 2, Cols: 2, PieceWidth: 100, PieceHeight: 100}
	bs := puzzle.RandomizeBoundaries(puzzle.GenerateInitialBoundaries(g), rand.New(rand.NewSource(9)))
	return types.PuzzleData{ID: "p1", Name: "test", Grid: g, Boundaries: bs, Difficulty: 1}
}

type sessionFixture struct {
	session *Session
	clock   *fakeClock
	store   *memPersister
	stats   *statsSpy
}

func newFixture(t *testing.T, opts SessionOptions) *sessionFixture {
	t.Helper()
	f := &sessionFixture{clock: newFakeClock(), store: &memPersister{}, stats: &statsSpy{}}
	opts.Now = f.clock.Now
	opts.TickInterval = time.Hour
	opts.Rand = rand.New(rand.NewSource(2))
	if opts.Persister == nil {
		opts.Persister = f.store
	}
	opts.Stats = f.stats
	f.session = NewSession(testPuzzle(), opts)
	t.Cleanup(f.session.Close)
	return f
}

func TestSessionStart(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	var events []Event
	f.session.OnChange(func(e Event) { events = append(events, e) })

	f.session.Start()

	assert.NotEmpty(t, f.session.ID())
	assert.Len(t, f.session.Pieces(), 4)
	assert.Equal(t, TimerRunning, f.session.TimerState())
	assert.False(t, f.session.IsCompleted())
	assert.Equal(t, []Event{{Kind: EventRestarted, Piece: -1}}, events)
}

func TestSessionSolve(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	var completions []types.CompletionRecord
	f.session.OnComplete(func(r types.CompletionRecord) { completions = append(completions, r) })
	f.session.Start()

	for i := 0; i < 4; i++ {
		f.clock.Advance(3 * time.Second)
		require.True(t, f.session.PlacePiece(i, i))
		assert.Equal(t, (i+1)*25, f.session.CompletionPercentage())
	}

	assert.True(t, f.session.IsCompleted())
	assert.Equal(t, TimerEnded, f.session.TimerState())
	require.Len(t, f.stats.records, 1)
	rec := f.stats.records[0]
	assert.Equal(t, "p1", rec.PuzzleID)
	assert.Equal(t, 12, rec.Seconds)
	assert.Equal(t, 4, rec.Moves)
	assert.Equal(t, 4, rec.SuccessMoves)
	assert.Equal(t, f.stats.records, completions)
	assert.NotContains(t, f.store.saved, "p1", "finished sessions are not kept")

	assert.False(t, f.session.MovePiece(0, 1, 1), "completed is terminal")
	assert.False(t, f.session.Undo())
	assert.Len(t, f.stats.records, 1)
}

func TestSessionPlaceOnOccupiedSlotSwaps(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()

	require.True(t, f.session.PlacePiece(0, 1))
	require.True(t, f.session.PlacePiece(1, 0))
	require.True(t, f.session.PlacePiece(1, 1))

	a, _ := f.session.Piece(0)
	b, _ := f.session.Piece(1)
	assert.Equal(t, 0, a.Slot())
	assert.Equal(t, 1, b.Slot())
	assert.True(t, a.Correct())
	assert.True(t, b.Correct())
	ops := f.session.History().Operations()
	require.Len(t, ops, 3)
	assert.Equal(t, types.OpSwap, ops[2].Type)

	assert.False(t, f.session.PlacePiece(1, 1), "same slot is a no-op")
	assert.False(t, f.session.PlacePiece(1, 4))
	assert.False(t, f.session.PlacePiece(7, 0))
}

func TestSessionSlotOccupancyInvariant(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 200 && !f.session.IsCompleted(); i++ {
		switch rng.Intn(3) {
		case 0, 1:
			f.session.PlacePiece(rng.Intn(4), rng.Intn(4))
		default:
			f.session.ReturnToTray(rng.Intn(4))
		}
		slots := map[int]int{}
		for _, p := range f.session.Pieces() {
			if p.IsPlaced {
				slots[p.Slot()]++
			}
		}
		for slot, n := range slots {
			require.Equal(t, 1, n, "slot %d held by %d pieces", slot, n)
		}
	}
}

func TestSessionUndoRedoRoundTrip(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()

	require.True(t, f.session.PlacePiece(0, 2))
	require.True(t, f.session.MovePiece(1, 7, 8))
	require.True(t, f.session.PlacePiece(3, 2))
	require.True(t, f.session.Shuffle())
	final := f.session.Pieces()
	n := f.session.History().UndoDepth()
	require.Equal(t, 4, n)

	for i := 0; i < n; i++ {
		require.True(t, f.session.Undo())
	}
	assert.False(t, f.session.Undo())
	for _, p := range f.session.Pieces() {
		assert.False(t, p.IsPlaced)
	}

	for i := 0; i < n; i++ {
		require.True(t, f.session.Redo())
	}
	assert.False(t, f.session.Redo())
	assert.Equal(t, final, f.session.Pieces())
	assert.Equal(t, 4, f.session.MoveCount(), "undo and redo are not moves")
}

func TestSessionUndoThenNewOperationDropsRedo(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()
	f.session.PlacePiece(0, 1)
	f.session.Undo()
	require.True(t, f.session.CanRedo())
	f.session.PlacePiece(2, 3)
	assert.False(t, f.session.CanRedo())
}

func TestSessionHistoryDepth(t *testing.T) {
	f := newFixture(t, SessionOptions{HistoryDepth: 3})
	f.session.Start()
	for i := 0; i < 5; i++ {
		f.session.MovePiece(0, float64(i+1), 0)
	}
	assert.Equal(t, 3, f.session.History().UndoDepth())
}

func TestSessionRotationAndFlip(t *testing.T) {
	f := newFixture(t, SessionOptions{EnableRotation: true, EnableFlip: true})
	f.session.Start()
	require.True(t, f.session.PlacePiece(0, 0))
	p, _ := f.session.Piece(0)
	for p.Rotation != 0 {
		require.True(t, f.session.RotatePiece(0))
		p, _ = f.session.Piece(0)
	}
	if p.Flipped {
		require.True(t, f.session.FlipPiece(0))
		p, _ = f.session.Piece(0)
	}
	assert.True(t, p.Correct())

	f.session.FlipPiece(0)
	p, _ = f.session.Piece(0)
	assert.False(t, p.Correct(), "mirrored piece is wrong even in its own slot")
}

func TestSessionRotationDisabled(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()
	assert.False(t, f.session.RotatePiece(0))
	assert.False(t, f.session.FlipPiece(0))
	assert.Equal(t, 0, f.session.MoveCount())
}

func TestSessionAutosaveAndRestore(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()
	f.clock.Advance(10 * time.Second)
	f.session.PlacePiece(2, 2)
	f.session.PlacePiece(1, 0)
	f.session.Pause()
	f.clock.Advance(time.Minute)

	rec, ok := f.store.saved["p1"]
	require.True(t, ok)
	assert.Equal(t, 2, rec.MoveCount)
	assert.True(t, rec.IsPaused)
	assert.Equal(t, f.session.ID(), rec.SessionID)

	g := newFixture(t, SessionOptions{})
	g.clock.Advance(70 * time.Second)
	require.True(t, g.session.Restore(&rec))

	assert.Equal(t, f.session.ID(), g.session.ID())
	assert.Equal(t, 2, g.session.MoveCount())
	assert.Equal(t, TimerPaused, g.session.TimerState())
	assert.Equal(t, f.session.Pieces(), g.session.Pieces())
	assert.Equal(t, 10*time.Second, g.session.Elapsed())
	assert.Equal(t, 50, g.session.BoardCompletionRate())
	assert.Equal(t, 25, g.session.CompletionPercentage())
}

func TestSessionCloseExcludesTimeAway(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()
	f.clock.Advance(10 * time.Second)
	require.True(t, f.session.PlacePiece(0, 1))
	f.session.Close()
	assert.Equal(t, TimerPaused, f.session.TimerState())

	rec, ok := f.store.saved["p1"]
	require.True(t, ok)
	assert.True(t, rec.IsPaused)
	require.NotNil(t, rec.PauseStartTime)

	g := newFixture(t, SessionOptions{})
	g.clock.Advance(2 * time.Hour)
	require.True(t, g.session.Restore(&rec))
	assert.Equal(t, 10*time.Second, g.session.Elapsed())

	g.session.Resume()
	g.clock.Advance(5 * time.Second)
	assert.Equal(t, 15*time.Second, g.session.Elapsed())
}

func TestSessionShuffleNeedsTwoFreePieces(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()
	require.True(t, f.session.PlacePiece(0, 0))
	require.True(t, f.session.PlacePiece(1, 1))
	require.True(t, f.session.PlacePiece(2, 3))
	require.True(t, f.session.PlacePiece(2, 2))
	require.True(t, f.session.Undo())

	assert.False(t, f.session.Shuffle())
	assert.Equal(t, 4, f.session.MoveCount())
	assert.Equal(t, 3, f.session.History().UndoDepth())
	assert.True(t, f.session.CanRedo(), "a refused shuffle keeps the redo stack")
}

func TestSessionRestoreFallsBackToFreshStart(t *testing.T) {
	f := newFixture(t, SessionOptions{})

	assert.False(t, f.session.Restore(nil))
	assert.Len(t, f.session.Pieces(), 4)
	assert.Equal(t, TimerRunning, f.session.TimerState())

	foreign := types.SaveRecord{PuzzleID: "other", Pieces: make([]types.PieceState, 4)}
	assert.False(t, f.session.Restore(&foreign))

	slot := 0
	clash := f.session.Snapshot()
	clash.Pieces[0].IsPlaced, clash.Pieces[0].GridPosition = true, &slot
	clash.Pieces[1].IsPlaced, clash.Pieces[1].GridPosition = true, &slot
	assert.False(t, f.session.Restore(&clash), "two pieces in one slot is corrupt")

	short := f.session.Snapshot()
	short.Pieces = short.Pieces[:2]
	assert.False(t, f.session.Restore(&short))
}

func TestSessionPersistenceFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, SessionOptions{Persister: &memPersister{err: errors.New("disk full")}})
	f.session.Start()
	assert.True(t, f.session.PlacePiece(0, 0))
	f.session.Pause()
	f.session.Resume()
	assert.Equal(t, TimerRunning, f.session.TimerState())
}

func TestSessionRestartClearsState(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()
	id := f.session.ID()
	f.session.PlacePiece(0, 0)

	f.session.Restart()

	assert.NotEqual(t, id, f.session.ID())
	assert.Equal(t, 0, f.session.MoveCount())
	assert.False(t, f.session.CanUndo())
	assert.Equal(t, 0, f.session.BoardCompletionRate())
	assert.NotContains(t, f.store.saved, "p1")
}

func TestSessionEdgesAndPath(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	p := f.session.Puzzle()
	for i := 0; i < 4; i++ {
		row, col := p.Grid.Cell(i)
		assert.Equal(t, puzzle.GetPieceEdges(row, col, p.Grid, p.Boundaries), f.session.PieceEdges(i))
		assert.Equal(t, puzzle.GeneratePiecePath(row, col, p.Grid, p.Boundaries), f.session.PiecePath(i))
	}
	assert.Equal(t, types.PieceEdges{}, f.session.PieceEdges(9))
}

func TestSessionEvents(t *testing.T) {
	f := newFixture(t, SessionOptions{})
	f.session.Start()
	var kinds []EventKind
	f.session.OnChange(func(e Event) { kinds = append(kinds, e.Kind) })

	f.session.PlacePiece(0, 0)
	f.session.Undo()
	f.session.Pause()
	f.session.Resume()

	assert.Equal(t, []EventKind{EventPieces, EventHistory, EventPaused, EventResumed}, kinds)
}
