package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"jigsaw-local/puzzle"
	"jigsaw-local/types"
)

// Session is one play-through of a puzzle. It owns the piece store, the
// operation history, the completion machine and the timer, and talks to the
// persistence and statistics collaborators.
//
// Session is not safe for concurrent use; drive it from the UI goroutine.
// Observers run synchronously after the mutating call, except EventTick which
// arrives on the timer goroutine.
type Session struct {
	puzzle     types.PuzzleData
	opts       SessionOptions
	log        *slog.Logger
	store      *PieceStore
	history    *History
	completion Completion
	timer      *Timer
	edges      []types.PieceEdges

	id           string
	moves        int
	successMoves int

	onChange   []func(Event)
	onComplete []func(types.CompletionRecord)
}

// NewSession creates a session for p. Call Start or Restore before playing.
// p is treated as read-only.
func NewSession(p types.PuzzleData, opts SessionOptions) *Session {
	opts = opts.withDefaults()
	s := &Session{
		puzzle:  p,
		opts:    opts,
		log:     opts.Logger.With("puzzle", p.ID),
		store:   NewPieceStore(p.Grid, opts.EnableRotation, opts.EnableFlip, opts.Rand),
		history: NewHistory(opts.HistoryDepth),
		edges:   puzzle.AllPieceEdges(p.Grid, p.Boundaries),
	}
	s.timer = NewTimer(opts.Now, opts.TickInterval, func() {
		s.emit(Event{Kind: EventTick, Piece: -1})
	})
	return s
}

// OnChange registers an observer for session events.
func (s *Session) OnChange(fn func(Event)) {
	s.onChange = append(s.onChange, fn)
}

// OnComplete registers an observer called once per completed session.
func (s *Session) OnComplete(fn func(types.CompletionRecord)) {
	s.onComplete = append(s.onComplete, fn)
}

// Start begins a fresh session: new id, all pieces in the tray, empty
// history and a running timer.
func (s *Session) Start() {
	s.id = uuid.NewString()
	s.moves = 0
	s.successMoves = 0
	s.history.Clear()
	s.completion.Reset()
	s.store.InitializePieces(s.puzzle.Grid.TotalPieces())
	s.timer.StartTimer()
	s.log.Info("session started", "session", s.id, "pieces", s.store.Len())
	s.emit(Event{Kind: EventRestarted, Piece: -1})
}

// Restart discards progress and starts over. The saved record, if any, is
// removed.
func (s *Session) Restart() {
	s.deleteSave()
	s.Start()
}

// Restore resumes from a persisted record. A nil, foreign or malformed
// record starts a fresh session instead; the return value reports whether
// the record was used.
func (s *Session) Restore(rec *types.SaveRecord) bool {
	if !s.restorable(rec) {
		if rec != nil {
			s.log.Warn("discarding unusable save", "session", rec.SessionID, "pieces", len(rec.Pieces))
		}
		s.Start()
		return false
	}
	s.id = rec.SessionID
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.moves = rec.MoveCount
	s.successMoves = rec.SuccessMoves
	s.history.Clear()
	s.completion.Reset()
	s.store.Replace(rec.Pieces)
	s.store.RecalculateCorrectness()
	s.timer.RestoreTimerState(rec.StartTime, rec.EndTime,
		time.Duration(rec.TotalPauseTime)*time.Millisecond, rec.PauseStartTime, rec.IsPaused)

	if rec.EndTime != nil {
		// already counted when it finished
		s.completion.Evaluate(s.store.Pieces())
	} else {
		s.checkCompletion()
	}
	s.log.Info("session restored", "session", s.id, "moves", s.moves)
	s.emit(Event{Kind: EventRestarted, Piece: -1})
	return true
}

func (s *Session) restorable(rec *types.SaveRecord) bool {
	if rec == nil || rec.PuzzleID != s.puzzle.ID {
		return false
	}
	total := s.puzzle.Grid.TotalPieces()
	if len(rec.Pieces) != total {
		return false
	}
	seen := make(map[int]bool, total)
	slots := make(map[int]bool, total)
	for _, p := range rec.Pieces {
		if p.OriginalIndex < 0 || p.OriginalIndex >= total || seen[p.OriginalIndex] {
			return false
		}
		seen[p.OriginalIndex] = true
		if p.IsPlaced {
			slot := p.Slot()
			if slot < 0 || slot >= total || slots[slot] {
				return false
			}
			slots[slot] = true
		}
	}
	return true
}

// PlacePiece puts piece index into slot. When another piece occupies the
// slot the two swap. It reports whether anything changed.
func (s *Session) PlacePiece(index, slot int) bool {
	if !s.playable() || slot < 0 || slot >= s.store.Len() {
		return false
	}
	p, ok := s.store.Piece(index)
	if !ok || (p.IsPlaced && p.Slot() == slot) {
		return false
	}
	before := s.store.Pieces()
	occupant := s.store.PieceAtSlot(slot)

	var op types.OperationType
	var desc string
	if occupant >= 0 && occupant != index {
		s.store.SwapPieces(index, occupant)
		op = types.OpSwap
		desc = fmt.Sprintf("swap piece %d with piece %d", index+1, occupant+1)
	} else {
		s.store.SetPiecePlaced(index, true, slot)
		op = types.OpPlace
		desc = fmt.Sprintf("place piece %d in slot %d", index+1, slot+1)
	}
	s.commit(op, before, desc, index)
	return true
}

// MovePiece drops piece index at a free canvas position, taking it off the
// board if it was placed.
func (s *Session) MovePiece(index int, x, y float64) bool {
	if !s.playable() {
		return false
	}
	p, ok := s.store.Piece(index)
	if !ok || (!p.IsPlaced && p.CurrentX == x && p.CurrentY == y) {
		return false
	}
	before := s.store.Pieces()
	if p.IsPlaced {
		s.store.SetPiecePlaced(index, false, -1)
	}
	s.store.MovePiece(index, x, y)
	s.commit(types.OpMove, before, fmt.Sprintf("move piece %d", index+1), index)
	return true
}

// ReturnToTray takes piece index off the board back to its tray position.
func (s *Session) ReturnToTray(index int) bool {
	x, y := s.store.TrayPosition(index)
	return s.MovePiece(index, x, y)
}

// RotatePiece turns piece index 90 degrees clockwise when rotation is enabled.
func (s *Session) RotatePiece(index int) bool {
	if !s.opts.EnableRotation || !s.playable() {
		return false
	}
	p, ok := s.store.Piece(index)
	if !ok {
		return false
	}
	before := s.store.Pieces()
	s.store.SetOrientation(index, puzzle.NextRotation(p.Rotation), p.Flipped)
	s.commit(types.OpMove, before, fmt.Sprintf("rotate piece %d", index+1), index)
	return true
}

// FlipPiece mirrors piece index when flipping is enabled.
func (s *Session) FlipPiece(index int) bool {
	if !s.opts.EnableFlip || !s.playable() {
		return false
	}
	p, ok := s.store.Piece(index)
	if !ok {
		return false
	}
	before := s.store.Pieces()
	s.store.SetOrientation(index, p.Rotation, !p.Flipped)
	s.commit(types.OpMove, before, fmt.Sprintf("flip piece %d", index+1), index)
	return true
}

// Shuffle scatters the free positions of all unplaced pieces. It needs at
// least two unplaced pieces.
func (s *Session) Shuffle() bool {
	if !s.playable() || s.store.Len()-s.store.PlacedCount() < 2 {
		return false
	}
	before := s.store.Pieces()
	s.store.ShufflePositions()
	s.commit(types.OpMove, before, "shuffle tray", -1)
	return true
}

// Undo restores the state before the newest operation.
func (s *Session) Undo() bool {
	if !s.playable() {
		return false
	}
	op := s.history.Undo()
	if op == nil {
		return false
	}
	s.apply(op.BeforeState)
	s.log.Debug("undo", "op", op.Description)
	return true
}

// Redo reapplies the newest undone operation.
func (s *Session) Redo() bool {
	if !s.playable() {
		return false
	}
	op := s.history.Redo()
	if op == nil {
		return false
	}
	s.apply(op.AfterState)
	s.log.Debug("redo", "op", op.Description)
	return true
}

func (s *Session) apply(pieces []types.PieceState) {
	s.store.Replace(pieces)
	s.store.RecalculateCorrectness()
	s.emit(Event{Kind: EventHistory, Piece: -1})
	s.checkCompletion()
	s.autosave()
}

// Pause stops the clock and saves.
func (s *Session) Pause() {
	if s.timer.State() != TimerRunning {
		return
	}
	s.timer.PauseTimer()
	s.autosave()
	s.emit(Event{Kind: EventPaused, Piece: -1})
}

// Resume restarts the clock after Pause.
func (s *Session) Resume() {
	if s.timer.State() != TimerPaused {
		return
	}
	s.timer.ResumeTimer()
	s.emit(Event{Kind: EventResumed, Piece: -1})
}

// Close pauses a running clock, stops the timer tick and saves the session,
// so time away from a closed game is not counted. Safe to call repeatedly.
func (s *Session) Close() {
	if s.timer.State() == TimerRunning {
		s.timer.PauseTimer()
	}
	s.timer.Stop()
	if s.timer.State() != TimerStopped {
		s.autosave()
	}
}

// commit records the operation from before to the current state, updates
// counters, then checks completion and saves.
func (s *Session) commit(typ types.OperationType, before []types.PieceState, desc string, piece int) {
	after := s.store.Pieces()
	s.history.AddOperation(NewOperation(typ, before, after, desc, s.opts.Now()))
	s.moves++
	s.successMoves += newlyCorrect(before, after)
	s.log.Debug("operation", "type", typ, "desc", desc, "moves", s.moves)
	s.emit(Event{Kind: EventPieces, Piece: piece})
	s.checkCompletion()
	s.autosave()
}

func newlyCorrect(before, after []types.PieceState) int {
	n := 0
	for i := range after {
		if i < len(before) && after[i].Correct() && !before[i].Correct() {
			n++
		}
	}
	return n
}

func (s *Session) checkCompletion() {
	if !s.completion.Evaluate(s.store.Pieces()) {
		return
	}
	end := s.opts.Now()
	s.timer.SetEndTime(end)
	snap := s.timer.Snapshot()
	rec := types.CompletionRecord{
		PuzzleID:     s.puzzle.ID,
		SessionID:    s.id,
		Seconds:      s.timer.CalculateElapsedTime(snap.Start, snap.End),
		Moves:        s.moves,
		SuccessMoves: s.successMoves,
	}
	s.log.Info("puzzle completed", "session", s.id, "seconds", rec.Seconds, "moves", rec.Moves)
	if s.opts.Stats != nil {
		if err := s.opts.Stats.RecordCompletion(rec); err != nil {
			s.log.Warn("record completion", "err", err)
		}
	}
	for _, fn := range s.onComplete {
		fn(rec)
	}
	s.emit(Event{Kind: EventCompleted, Piece: -1})
}

func (s *Session) playable() bool {
	return s.completion.State() == InProgress && s.store.Len() > 0
}

// Snapshot returns the persisted form of the session.
func (s *Session) Snapshot() types.SaveRecord {
	t := s.timer.Snapshot()
	return types.SaveRecord{
		PuzzleID:       s.puzzle.ID,
		Pieces:         s.store.Pieces(),
		StartTime:      t.Start,
		EndTime:        t.End,
		MoveCount:      s.moves,
		SuccessMoves:   s.successMoves,
		SessionID:      s.id,
		TotalPauseTime: t.TotalPause.Milliseconds(),
		PauseStartTime: t.PauseStart,
		IsPaused:       t.Paused,
		SavedAt:        s.opts.Now(),
	}
}

func (s *Session) autosave() {
	if s.opts.Persister == nil {
		return
	}
	if s.completion.State() == Completed {
		s.deleteSave()
		return
	}
	rec := s.Snapshot()
	if err := s.opts.Persister.Save(context.Background(), &rec); err != nil {
		s.log.Warn("autosave failed", "err", err)
	}
}

func (s *Session) deleteSave() {
	if s.opts.Persister == nil {
		return
	}
	if err := s.opts.Persister.Delete(context.Background(), s.puzzle.ID); err != nil {
		s.log.Warn("delete save failed", "err", err)
	}
}

func (s *Session) emit(e Event) {
	for _, fn := range s.onChange {
		fn(e)
	}
}

// Puzzle returns the puzzle being played.
func (s *Session) Puzzle() types.PuzzleData { return s.puzzle }

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Pieces returns a copy of every piece state.
func (s *Session) Pieces() []types.PieceState { return s.store.Pieces() }

// Piece returns a copy of piece i.
func (s *Session) Piece(i int) (types.PieceState, bool) { return s.store.Piece(i) }

// PieceAtSlot returns the piece placed in slot, or -1.
func (s *Session) PieceAtSlot(slot int) int { return s.store.PieceAtSlot(slot) }

// IsSlotOccupied reports whether slot holds a piece.
func (s *Session) IsSlotOccupied(slot int) bool { return s.store.IsSlotOccupied(slot) }

// PieceEdges returns the edge shapes of the piece with original index i.
func (s *Session) PieceEdges(i int) types.PieceEdges {
	if i < 0 || i >= len(s.edges) {
		return types.PieceEdges{}
	}
	return s.edges[i]
}

// PiecePath returns the outline of the piece with original index i, drawn at
// its home cell.
func (s *Session) PiecePath(i int) string {
	row, col := s.puzzle.Grid.Cell(i)
	return puzzle.BuildPiecePath(row, col, s.puzzle.Grid, s.PieceEdges(i)).String()
}

func (s *Session) IsCompleted() bool         { return s.completion.State() == Completed }
func (s *Session) CompletionPercentage() int { return CompletionPercentage(s.store.Pieces()) }
func (s *Session) BoardCompletionRate() int  { return BoardCompletionRate(s.store.Pieces()) }
func (s *Session) Elapsed() time.Duration    { return s.timer.Elapsed() }
func (s *Session) TimerState() TimerState    { return s.timer.State() }
func (s *Session) MoveCount() int            { return s.moves }
func (s *Session) SuccessMoves() int         { return s.successMoves }
func (s *Session) CanUndo() bool             { return s.playable() && s.history.CanUndo() }
func (s *Session) CanRedo() bool             { return s.playable() && s.history.CanRedo() }
func (s *Session) History() *History         { return s.history }
func (s *Session) RotationEnabled() bool     { return s.opts.EnableRotation }
func (s *Session) FlipEnabled() bool         { return s.opts.EnableFlip }
