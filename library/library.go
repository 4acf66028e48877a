// Package library holds the puzzles a player can choose from: a fixed set of
// built-in puzzles plus the ones created in the editor.
package library

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"jigsaw-local/puzzle"
	"jigsaw-local/types"
)

// Grid size limits for puzzles built in the editor.
const (
	MinGridSize = 2
	MaxGridSize = 50
)

// BuiltinPrefix marks ids of puzzles that ship with the game.
const BuiltinPrefix = "builtin-"

// ValidationError reports an editor field that cannot be accepted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateGrid checks the grid dimensions and piece size.
func ValidateGrid(grid types.GridConfig) error {
	if grid.Rows < MinGridSize || grid.Rows > MaxGridSize {
		return &ValidationError{"rows", fmt.Sprintf("must be between %d and %d", MinGridSize, MaxGridSize)}
	}
	if grid.Cols < MinGridSize || grid.Cols > MaxGridSize {
		return &ValidationError{"cols", fmt.Sprintf("must be between %d and %d", MinGridSize, MaxGridSize)}
	}
	if grid.PieceWidth <= 0 || grid.PieceHeight <= 0 {
		return &ValidationError{"piece size", "must be positive"}
	}
	return nil
}

// ValidateBoundaries checks that boundaries describe exactly the internal
// edges of grid.
func ValidateBoundaries(grid types.GridConfig, boundaries []types.Boundary) error {
	if len(boundaries) != puzzle.BoundaryCount(grid) {
		return &ValidationError{"boundaries", fmt.Sprintf("expected %d, got %d", puzzle.BoundaryCount(grid), len(boundaries))}
	}
	seen := make(map[string]bool, len(boundaries))
	for _, b := range boundaries {
		if b.ID != types.BoundaryID(b.Direction, b.Row, b.Col) {
			return &ValidationError{"boundaries", fmt.Sprintf("id %q does not match its cell", b.ID)}
		}
		inRange := b.Row >= 0 && b.Col >= 0
		switch b.Direction {
		case types.Horizontal:
			inRange = inRange && b.Row < grid.Rows-1 && b.Col < grid.Cols
		case types.Vertical:
			inRange = inRange && b.Row < grid.Rows && b.Col < grid.Cols-1
		default:
			inRange = false
		}
		if !inRange {
			return &ValidationError{"boundaries", fmt.Sprintf("%s lies outside the grid", b.ID)}
		}
		if seen[b.ID] {
			return &ValidationError{"boundaries", fmt.Sprintf("duplicate %s", b.ID)}
		}
		seen[b.ID] = true
	}
	return nil
}

// NewPuzzle builds a validated puzzle with a fresh id and a computed
// difficulty. Nil boundaries mean an all-flat grid.
func NewPuzzle(name, imageURL string, grid types.GridConfig, boundaries []types.Boundary, now time.Time) (types.PuzzleData, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.PuzzleData{}, &ValidationError{"name", "must not be empty"}
	}
	if err := ValidateGrid(grid); err != nil {
		return types.PuzzleData{}, err
	}
	if boundaries == nil {
		boundaries = puzzle.GenerateInitialBoundaries(grid)
	}
	if err := ValidateBoundaries(grid, boundaries); err != nil {
		return types.PuzzleData{}, err
	}
	bs := make([]types.Boundary, len(boundaries))
	copy(bs, boundaries)
	return types.PuzzleData{
		ID:         uuid.NewString(),
		Name:       name,
		ImageURL:   imageURL,
		Grid:       grid,
		Boundaries: bs,
		CreatedAt:  now,
		Difficulty: puzzle.CalculateDifficultyFromConfig(grid, bs),
	}, nil
}

type builtinDef struct {
	slug  string
	name  string
	rows  int
	cols  int
	seed  int64
	image string
}

var builtinDefs = []builtinDef{
	{"first-steps", "First Steps", 2, 2, 1, "builtin/first-steps.png"},
	{"garden", "Garden", 3, 4, 7, "builtin/garden.png"},
	{"harbour", "Harbour", 4, 4, 42, "builtin/harbour.png"},
	{"mountain", "Mountain Lake", 5, 6, 99, "builtin/mountain.png"},
	{"city", "City at Night", 8, 8, 2024, "builtin/city.png"},
	{"mosaic", "Mosaic", 10, 12, 314, "builtin/mosaic.png"},
}

var builtinEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Builtin returns the puzzles that ship with the game. Edge shapes come from
// a fixed seed per puzzle so every install sees the same pieces.
func Builtin() []types.PuzzleData {
	out := make([]types.PuzzleData, 0, len(builtinDefs))
	for _, d := range builtinDefs {
		grid := types.GridConfig{Rows: d.rows, Cols: d.cols, PieceWidth: 100, PieceHeight: 100}
		rng := rand.New(rand.NewSource(d.seed))
		bs := puzzle.RandomizeBoundaries(puzzle.GenerateInitialBoundaries(grid), rng)
		out = append(out, types.PuzzleData{
			ID:         BuiltinPrefix + d.slug,
			Name:       d.name,
			ImageURL:   d.image,
			Grid:       grid,
			Boundaries: bs,
			CreatedAt:  builtinEpoch,
			Difficulty: puzzle.CalculateDifficultyFromConfig(grid, bs),
		})
	}
	return out
}

// IsBuiltin reports whether id names a built-in puzzle.
func IsBuiltin(id string) bool {
	return strings.HasPrefix(id, BuiltinPrefix)
}
