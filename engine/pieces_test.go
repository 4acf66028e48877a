package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jigsaw-local/types"
)

var testGrid = types.GridConfig{Rows: 2, Cols: 3, PieceWidth: 10, PieceHeight: 20}

func newStore(t *testing.T, rotate, flip bool) *PieceStore {
	t.Helper()
	s := NewPieceStore(testGrid, rotate, flip, rand.New(rand.NewSource(1)))
	s.InitializePieces(testGrid.TotalPieces())
	return s
}

func TestInitializePieces(t *testing.T) {
	s := newStore(t, false, false)
	require.Equal(t, 6, s.Len())
	for i, p := range s.Pieces() {
		assert.Equal(t, i, p.ID)
		assert.Equal(t, i, p.OriginalIndex)
		assert.False(t, p.IsPlaced)
		assert.Nil(t, p.GridPosition)
		assert.Nil(t, p.IsCorrect)
		assert.Equal(t, 0, p.Rotation)
		assert.False(t, p.Flipped)
		x, y := s.TrayPosition(i)
		assert.Equal(t, x, p.CurrentX)
		assert.Equal(t, y, p.CurrentY)
	}
}

func TestInitializePiecesWithOrientation(t *testing.T) {
	s := NewPieceStore(types.GridConfig{Rows: 10, Cols: 10, PieceWidth: 1, PieceHeight: 1}, true, true, rand.New(rand.NewSource(5)))
	s.InitializePieces(100)

	rotations := map[int]int{}
	flipped := 0
	for _, p := range s.Pieces() {
		rotations[p.Rotation]++
		if p.Flipped {
			flipped++
		}
	}
	assert.Len(t, rotations, 4)
	for r := range rotations {
		assert.Contains(t, []int{0, 90, 180, 270}, r)
	}
	assert.Greater(t, flipped, 20)
	assert.Less(t, flipped, 80)
}

func TestSetPiecePlaced(t *testing.T) {
	s := newStore(t, false, false)

	s.SetPiecePlaced(4, true, 4)
	p, _ := s.Piece(4)
	assert.True(t, p.IsPlaced)
	assert.Equal(t, 4, p.Slot())
	assert.True(t, p.Correct())
	assert.Equal(t, 10.0, p.CurrentX)
	assert.Equal(t, 20.0, p.CurrentY)
	assert.True(t, s.IsSlotOccupied(4))
	assert.Equal(t, 4, s.PieceAtSlot(4))

	s.SetPiecePlaced(1, true, 2)
	p, _ = s.Piece(1)
	require.NotNil(t, p.IsCorrect)
	assert.False(t, *p.IsCorrect)

	s.SetPiecePlaced(4, false, -1)
	p, _ = s.Piece(4)
	assert.False(t, p.IsPlaced)
	assert.Nil(t, p.GridPosition)
	assert.Nil(t, p.IsCorrect)
	assert.False(t, s.IsSlotOccupied(4))
}

func TestSetPiecePlacedWithoutSlotUnplaces(t *testing.T) {
	s := newStore(t, false, false)
	s.SetPiecePlaced(2, true, 2)
	s.SetPiecePlaced(2, true, -1)
	p, _ := s.Piece(2)
	assert.False(t, p.IsPlaced)
	assert.Nil(t, p.GridPosition)
	assert.Equal(t, 0, s.PlacedCount())
	assert.Equal(t, 0, BoardCompletionRate(s.Pieces()))
}

func TestSetPiecePlacedAs(t *testing.T) {
	s := newStore(t, false, false)
	s.SetPiecePlacedAs(0, true, 5, true)
	p, _ := s.Piece(0)
	assert.True(t, p.Correct())
}

func TestOutOfRangeIsNoop(t *testing.T) {
	s := newStore(t, false, false)
	before := s.Pieces()
	s.SetPiecePlaced(-1, true, 0)
	s.SetPiecePlaced(6, true, 0)
	s.SwapPieces(0, 9)
	s.MovePiece(7, 1, 1)
	s.SetOrientation(8, 90, true)
	assert.Equal(t, before, s.Pieces())
	_, ok := s.Piece(6)
	assert.False(t, ok)
}

func TestSwapPiecesBothPlaced(t *testing.T) {
	s := newStore(t, false, false)
	s.SetPiecePlaced(0, true, 1)
	s.SetPiecePlaced(1, true, 0)

	s.SwapPieces(0, 1)

	a, _ := s.Piece(0)
	b, _ := s.Piece(1)
	assert.Equal(t, 0, a.Slot())
	assert.Equal(t, 1, b.Slot())
	assert.True(t, a.Correct())
	assert.True(t, b.Correct())
	assert.Equal(t, 0.0, a.CurrentX)
	assert.Equal(t, 10.0, b.CurrentX)
}

func TestSwapPiecesWithUnplaced(t *testing.T) {
	s := newStore(t, false, false)
	s.SetPiecePlaced(2, true, 3)
	trayX, trayY := s.TrayPosition(3)

	s.SwapPieces(3, 2)

	mover, _ := s.Piece(3)
	occupant, _ := s.Piece(2)
	assert.True(t, mover.IsPlaced)
	assert.Equal(t, 3, mover.Slot())
	assert.True(t, mover.Correct())
	assert.False(t, occupant.IsPlaced)
	assert.Nil(t, occupant.GridPosition)
	assert.Nil(t, occupant.IsCorrect)
	assert.Equal(t, trayX, occupant.CurrentX)
	assert.Equal(t, trayY, occupant.CurrentY)
}

func TestCorrectnessWithRotation(t *testing.T) {
	s := newStore(t, true, true)
	s.SetOrientation(0, 90, false)
	s.SetPiecePlaced(0, true, 0)
	p, _ := s.Piece(0)
	assert.False(t, p.Correct(), "wrong rotation in the right slot is not correct")

	s.SetOrientation(0, 0, true)
	p, _ = s.Piece(0)
	assert.False(t, p.Correct(), "mirrored piece is not correct")

	s.SetOrientation(0, 0, false)
	p, _ = s.Piece(0)
	assert.True(t, p.Correct())
}

func TestRecalculateCorrectness(t *testing.T) {
	s := newStore(t, false, false)
	s.SetPiecePlacedAs(0, true, 0, false)
	s.SetPiecePlacedAs(1, true, 2, true)

	s.RecalculateCorrectness()

	a, _ := s.Piece(0)
	b, _ := s.Piece(1)
	c, _ := s.Piece(2)
	assert.True(t, a.Correct())
	assert.False(t, b.Correct())
	assert.Nil(t, c.IsCorrect)
}

func TestResetAllStates(t *testing.T) {
	s := newStore(t, false, false)
	s.SetPiecePlaced(0, true, 0)
	s.MovePiece(1, 500, 500)

	s.ResetAllStates()

	for i, p := range s.Pieces() {
		assert.False(t, p.IsPlaced)
		assert.Nil(t, p.GridPosition)
		assert.Nil(t, p.IsCorrect)
		x, y := s.TrayPosition(i)
		assert.Equal(t, x, p.CurrentX)
		assert.Equal(t, y, p.CurrentY)
	}
	assert.Equal(t, 0, s.PlacedCount())
}

func TestShufflePositions(t *testing.T) {
	s := newStore(t, false, false)
	s.SetPiecePlaced(0, true, 0)
	placed, _ := s.Piece(0)

	positions := map[[2]float64]bool{}
	for _, p := range s.Pieces()[1:] {
		positions[[2]float64{p.CurrentX, p.CurrentY}] = true
	}

	s.ShufflePositions()

	after := s.Pieces()
	assert.Equal(t, placed, after[0])
	for i, p := range after[1:] {
		assert.Equal(t, i+1, p.OriginalIndex, "identity is preserved")
		assert.True(t, positions[[2]float64{p.CurrentX, p.CurrentY}], "positions are permuted, not invented")
	}
}

func TestPiecesAreCopies(t *testing.T) {
	s := newStore(t, false, false)
	s.SetPiecePlaced(0, true, 0)

	out := s.Pieces()
	*out[0].GridPosition = 5
	*out[0].IsCorrect = false
	out[0].CurrentX = 99

	p, _ := s.Piece(0)
	assert.Equal(t, 0, p.Slot())
	assert.True(t, p.Correct())
	assert.Equal(t, 0.0, p.CurrentX)
}

func TestCounts(t *testing.T) {
	s := newStore(t, false, false)
	s.SetPiecePlaced(0, true, 0)
	s.SetPiecePlaced(1, true, 2)
	assert.Equal(t, 2, s.PlacedCount())
	assert.Equal(t, 1, s.CorrectCount())
}
