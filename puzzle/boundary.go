// Package puzzle implements the jigsaw geometry model: shared boundaries,
// piece edge resolution, outline paths and difficulty scoring.
// Everything here is a pure function of its inputs.
package puzzle

import (
	"jigsaw-local/types"
)

// Rand is the random source used for edge and orientation randomisation.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// GenerateInitialBoundaries returns every internal boundary of the grid with a
// flat state. Horizontal boundaries come first, row-major, then vertical ones.
func GenerateInitialBoundaries(grid types.GridConfig) []types.Boundary {
	if grid.Rows < 1 || grid.Cols < 1 {
		return nil
	}
	out := make([]types.Boundary, 0, BoundaryCount(grid))
	w, h := grid.PieceWidth, grid.PieceHeight

	for row := 0; row < grid.Rows-1; row++ {
		for col := 0; col < grid.Cols; col++ {
			y := float64(row+1) * h
			out = append(out, types.Boundary{
				ID:        types.BoundaryID(types.Horizontal, row, col),
				Row:       row,
				Col:       col,
				Direction: types.Horizontal,
				State:     types.Flat,
				StartX:    float64(col) * w,
				StartY:    y,
				EndX:      float64(col+1) * w,
				EndY:      y,
			})
		}
	}
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols-1; col++ {
			x := float64(col+1) * w
			out = append(out, types.Boundary{
				ID:        types.BoundaryID(types.Vertical, row, col),
				Row:       row,
				Col:       col,
				Direction: types.Vertical,
				State:     types.Flat,
				StartX:    x,
				StartY:    float64(row) * h,
				EndX:      x,
				EndY:      float64(row+1) * h,
			})
		}
	}
	return out
}

// BoundaryCount is (rows-1)*cols + rows*(cols-1).
func BoundaryCount(grid types.GridConfig) int {
	if grid.Rows < 1 || grid.Cols < 1 {
		return 0
	}
	return (grid.Rows-1)*grid.Cols + grid.Rows*(grid.Cols-1)
}

// UpdateBoundaryState returns a copy of boundaries with the state of id
// replaced. The input slice is returned unchanged when id is not present.
func UpdateBoundaryState(boundaries []types.Boundary, id string, state types.EdgeState) []types.Boundary {
	idx := -1
	for i := range boundaries {
		if boundaries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return boundaries
	}
	out := make([]types.Boundary, len(boundaries))
	copy(out, boundaries)
	out[idx].State = state
	return out
}

// RandomizeBoundaries returns a copy of boundaries where every state is drawn
// uniformly from flat, convex and concave.
func RandomizeBoundaries(boundaries []types.Boundary, rng Rand) []types.Boundary {
	out := make([]types.Boundary, len(boundaries))
	copy(out, boundaries)
	for i := range out {
		out[i].State = types.EdgeState(rng.Intn(3))
	}
	return out
}

// FindBoundary looks up the boundary with the given direction and cell.
func FindBoundary(boundaries []types.Boundary, dir types.Direction, row, col int) (types.Boundary, bool) {
	id := types.BoundaryID(dir, row, col)
	for _, b := range boundaries {
		if b.ID == id {
			return b, true
		}
	}
	return types.Boundary{}, false
}

// GetPieceEdges resolves the four edges of the piece at (row, col).
// Right and bottom edges use the boundary state directly; top and left
// belong to the neighbour above/left and are seen as the opposite state.
// Border edges, and internal edges whose boundary is missing, are flat.
func GetPieceEdges(row, col int, grid types.GridConfig, boundaries []types.Boundary) types.PieceEdges {
	index := indexBoundaries(boundaries)
	return pieceEdges(row, col, grid, index)
}

// AllPieceEdges resolves the edges of every piece, row-major.
func AllPieceEdges(grid types.GridConfig, boundaries []types.Boundary) []types.PieceEdges {
	index := indexBoundaries(boundaries)
	out := make([]types.PieceEdges, 0, grid.TotalPieces())
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			out = append(out, pieceEdges(row, col, grid, index))
		}
	}
	return out
}

func indexBoundaries(boundaries []types.Boundary) map[string]types.EdgeState {
	index := make(map[string]types.EdgeState, len(boundaries))
	for _, b := range boundaries {
		index[b.ID] = b.State
	}
	return index
}

func pieceEdges(row, col int, grid types.GridConfig, index map[string]types.EdgeState) types.PieceEdges {
	var e types.PieceEdges
	if row > 0 {
		e.Top = index[types.BoundaryID(types.Horizontal, row-1, col)].Opposite()
	}
	if col < grid.Cols-1 {
		e.Right = index[types.BoundaryID(types.Vertical, row, col)]
	}
	if row < grid.Rows-1 {
		e.Bottom = index[types.BoundaryID(types.Horizontal, row, col)]
	}
	if col > 0 {
		e.Left = index[types.BoundaryID(types.Vertical, row, col-1)].Opposite()
	}
	return e
}
