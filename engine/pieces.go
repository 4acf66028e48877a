package engine

import (
	"jigsaw-local/puzzle"
	"jigsaw-local/types"
)

// trayGap is the spacing factor between pieces laid out in the tray.
const trayGap = 1.25

// PieceStore owns the runtime placement state of every piece in a session.
// It is single-writer: all calls must come from the goroutine driving the game.
//
// The store does not reject a placement onto an occupied slot; callers check
// IsSlotOccupied and swap instead.
type PieceStore struct {
	grid   types.GridConfig
	rotate bool
	flip   bool
	rng    puzzle.Rand
	pieces []types.PieceState
}

// NewPieceStore creates an empty store for grid.
func NewPieceStore(grid types.GridConfig, rotate, flip bool, rng puzzle.Rand) *PieceStore {
	return &PieceStore{grid: grid, rotate: rotate, flip: flip, rng: rng}
}

// InitializePieces allocates total unplaced pieces with sequential original
// indices, laid out in the tray, each with a fresh random orientation.
func (s *PieceStore) InitializePieces(total int) {
	if total < 0 {
		total = 0
	}
	s.pieces = make([]types.PieceState, total)
	for i := range s.pieces {
		x, y := s.TrayPosition(i)
		o := puzzle.RandomizePieceOrientation(s.rng, s.rotate, s.flip)
		s.pieces[i] = types.PieceState{
			ID:            i,
			OriginalIndex: i,
			CurrentX:      x,
			CurrentY:      y,
			Rotation:      o.Rotation,
			Flipped:       o.Flipped,
		}
	}
}

// Len returns the number of pieces.
func (s *PieceStore) Len() int {
	return len(s.pieces)
}

// Pieces returns a deep copy of all piece states.
func (s *PieceStore) Pieces() []types.PieceState {
	return types.ClonePieces(s.pieces)
}

// Piece returns a copy of piece i.
func (s *PieceStore) Piece(i int) (types.PieceState, bool) {
	if !s.valid(i) {
		return types.PieceState{}, false
	}
	return s.pieces[i].Clone(), true
}

// Replace swaps in a full piece array, e.g. an undo snapshot.
// The input is copied.
func (s *PieceStore) Replace(pieces []types.PieceState) {
	s.pieces = types.ClonePieces(pieces)
}

// SlotPosition returns the board coordinates of a slot's top-left corner.
func (s *PieceStore) SlotPosition(slot int) (float64, float64) {
	row, col := s.grid.Cell(slot)
	return float64(col) * s.grid.PieceWidth, float64(row) * s.grid.PieceHeight
}

// TrayPosition returns the default free position of piece i, to the right of the board.
func (s *PieceStore) TrayPosition(i int) (float64, float64) {
	cols := s.grid.Cols
	if cols < 1 {
		cols = 1
	}
	left := float64(s.grid.Cols)*s.grid.PieceWidth + s.grid.PieceWidth/2
	return left + float64(i%cols)*s.grid.PieceWidth*trayGap,
		float64(i/cols) * s.grid.PieceHeight * trayGap
}

// IsSlotOccupied reports whether any placed piece holds slot.
func (s *PieceStore) IsSlotOccupied(slot int) bool {
	return s.PieceAtSlot(slot) >= 0
}

// PieceAtSlot returns the index of the placed piece in slot, or -1.
func (s *PieceStore) PieceAtSlot(slot int) int {
	for i := range s.pieces {
		if s.pieces[i].IsPlaced && s.pieces[i].Slot() == slot {
			return i
		}
	}
	return -1
}

// SetPiecePlaced places piece index in gridPosition, deriving correctness,
// or unplaces it when isPlaced is false. A negative gridPosition holds no
// slot, so it unplaces too.
func (s *PieceStore) SetPiecePlaced(index int, isPlaced bool, gridPosition int) {
	if !s.valid(index) {
		return
	}
	p := &s.pieces[index]
	if !isPlaced || gridPosition < 0 {
		p.IsPlaced = false
		p.GridPosition = nil
		p.IsCorrect = nil
		return
	}
	p.IsPlaced = true
	p.GridPosition = intPtr(gridPosition)
	p.CurrentX, p.CurrentY = s.SlotPosition(gridPosition)
	p.IsCorrect = boolPtr(s.correct(p))
}

// SetPiecePlacedAs is SetPiecePlaced with an explicit correctness flag.
func (s *PieceStore) SetPiecePlacedAs(index int, isPlaced bool, gridPosition int, isCorrect bool) {
	s.SetPiecePlaced(index, isPlaced, gridPosition)
	if s.valid(index) && s.pieces[index].IsPlaced {
		s.pieces[index].IsCorrect = boolPtr(isCorrect)
	}
}

// MovePiece sets the free canvas position of piece index.
func (s *PieceStore) MovePiece(index int, x, y float64) {
	if !s.valid(index) {
		return
	}
	s.pieces[index].CurrentX = x
	s.pieces[index].CurrentY = y
}

// SetOrientation sets rotation and flip of piece index and refreshes its
// correctness when placed.
func (s *PieceStore) SetOrientation(index int, rotation int, flipped bool) {
	if !s.valid(index) {
		return
	}
	p := &s.pieces[index]
	p.Rotation = rotation
	p.Flipped = flipped
	if p.IsPlaced && p.GridPosition != nil {
		p.IsCorrect = boolPtr(s.correct(p))
	}
}

// SwapPieces exchanges the placement of pieces i and j: placed flag, slot and
// position travel together, and correctness is recomputed for both.
func (s *PieceStore) SwapPieces(i, j int) {
	if !s.valid(i) || !s.valid(j) || i == j {
		return
	}
	a, b := &s.pieces[i], &s.pieces[j]
	a.IsPlaced, b.IsPlaced = b.IsPlaced, a.IsPlaced
	a.GridPosition, b.GridPosition = b.GridPosition, a.GridPosition
	a.CurrentX, b.CurrentX = b.CurrentX, a.CurrentX
	a.CurrentY, b.CurrentY = b.CurrentY, a.CurrentY
	for _, p := range []*types.PieceState{a, b} {
		if p.IsPlaced && p.GridPosition != nil {
			p.CurrentX, p.CurrentY = s.SlotPosition(*p.GridPosition)
			p.IsCorrect = boolPtr(s.correct(p))
		} else {
			p.GridPosition = nil
			p.IsCorrect = nil
		}
	}
}

// RecalculateCorrectness re-derives IsCorrect for every placed piece.
func (s *PieceStore) RecalculateCorrectness() {
	for i := range s.pieces {
		p := &s.pieces[i]
		if p.IsPlaced && p.GridPosition != nil {
			p.IsCorrect = boolPtr(s.correct(p))
		} else {
			p.IsCorrect = nil
		}
	}
}

// ResetAllStates returns every piece to the tray, unplaced, with a fresh
// orientation when rotation or flip is enabled.
func (s *PieceStore) ResetAllStates() {
	for i := range s.pieces {
		p := &s.pieces[i]
		o := puzzle.RandomizePieceOrientation(s.rng, s.rotate, s.flip)
		p.IsPlaced = false
		p.GridPosition = nil
		p.IsCorrect = nil
		p.Rotation = o.Rotation
		p.Flipped = o.Flipped
		p.CurrentX, p.CurrentY = s.TrayPosition(i)
	}
}

// ShufflePositions Fisher-Yates shuffles the free positions among unplaced
// pieces. Piece identity and placed pieces are untouched.
func (s *PieceStore) ShufflePositions() {
	var idx []int
	for i := range s.pieces {
		if !s.pieces[i].IsPlaced {
			idx = append(idx, i)
		}
	}
	for k := len(idx) - 1; k > 0; k-- {
		m := s.rng.Intn(k + 1)
		a, b := &s.pieces[idx[k]], &s.pieces[idx[m]]
		a.CurrentX, b.CurrentX = b.CurrentX, a.CurrentX
		a.CurrentY, b.CurrentY = b.CurrentY, a.CurrentY
	}
}

// PlacedCount returns the number of placed pieces.
func (s *PieceStore) PlacedCount() int {
	n := 0
	for i := range s.pieces {
		if s.pieces[i].IsPlaced {
			n++
		}
	}
	return n
}

// CorrectCount returns the number of placed and correct pieces.
func (s *PieceStore) CorrectCount() int {
	n := 0
	for i := range s.pieces {
		if s.pieces[i].IsPlaced && s.pieces[i].Correct() {
			n++
		}
	}
	return n
}

// correct is the slot match, narrowed by orientation for enabled features:
// a piece in its own slot still needs rotation 0 and no mirror to count.
func (s *PieceStore) correct(p *types.PieceState) bool {
	if p.GridPosition == nil || *p.GridPosition != p.OriginalIndex {
		return false
	}
	if s.rotate && p.Rotation%360 != 0 {
		return false
	}
	if s.flip && p.Flipped {
		return false
	}
	return true
}

func (s *PieceStore) valid(i int) bool {
	return i >= 0 && i < len(s.pieces)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
