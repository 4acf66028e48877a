// Package types contains shared data structures for jigsaw-local.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// EdgeState is the shape of one piece edge.
type EdgeState int

const (
	Flat    EdgeState = iota // straight edge
	Convex                   // outward tab
	Concave                  // inward blank
)

// Opposite returns the state the neighbouring piece sees across a shared edge.
func (s EdgeState) Opposite() EdgeState {
	switch s {
	case Convex:
		return Concave
	case Concave:
		return Convex
	default:
		return Flat
	}
}

func (s EdgeState) String() string {
	switch s {
	case Convex:
		return "convex"
	case Concave:
		return "concave"
	default:
		return "flat"
	}
}

// MarshalJSON writes the edge state by name so saved puzzles stay readable.
func (s EdgeState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the edge state name; unknown names decode as flat.
func (s *EdgeState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "convex":
		*s = Convex
	case "concave":
		*s = Concave
	default:
		*s = Flat
	}
	return nil
}

// Direction is the orientation of a boundary line.
type Direction string

const (
	Horizontal Direction = "horizontal" // between (row, col) and (row+1, col)
	Vertical   Direction = "vertical"   // between (row, col) and (row, col+1)
)

// GridConfig describes the puzzle grid. It is immutable once a session starts.
type GridConfig struct {
	Rows        int     `json:"rows"`
	Cols        int     `json:"cols"`
	PieceWidth  float64 `json:"piece_width"`
	PieceHeight float64 `json:"piece_height"`
}

// TotalPieces returns rows*cols.
func (g GridConfig) TotalPieces() int {
	return g.Rows * g.Cols
}

// SlotOf returns the row-major slot index for (row, col).
func (g GridConfig) SlotOf(row, col int) int {
	return row*g.Cols + col
}

// Cell returns the (row, col) of a row-major slot index.
func (g GridConfig) Cell(slot int) (row, col int) {
	if g.Cols == 0 {
		return 0, 0
	}
	return slot / g.Cols, slot % g.Cols
}

// Boundary is one internal edge shared by two adjacent cells.
// State is canonical for the piece above (horizontal) or to the left (vertical).
type Boundary struct {
	ID        string    `json:"id"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Direction Direction `json:"direction"`
	State     EdgeState `json:"state"`
	StartX    float64   `json:"start_x"`
	StartY    float64   `json:"start_y"`
	EndX      float64   `json:"end_x"`
	EndY      float64   `json:"end_y"`
}

// BoundaryID derives the unique id of a boundary from its direction and cell.
func BoundaryID(dir Direction, row, col int) string {
	prefix := "h"
	if dir == Vertical {
		prefix = "v"
	}
	return fmt.Sprintf("%s-%d-%d", prefix, row, col)
}

// PieceEdges is the resolved shape of a piece's four edges, as seen by that piece.
type PieceEdges struct {
	Top    EdgeState `json:"top"`
	Right  EdgeState `json:"right"`
	Bottom EdgeState `json:"bottom"`
	Left   EdgeState `json:"left"`
}

// PieceState is the runtime placement state of one piece.
// GridPosition and IsCorrect are nil until the piece is placed.
type PieceState struct {
	ID            int     `json:"id"`
	OriginalIndex int     `json:"original_index"`
	CurrentX      float64 `json:"current_x"`
	CurrentY      float64 `json:"current_y"`
	Rotation      int     `json:"rotation"`
	Flipped       bool    `json:"flipped"`
	IsPlaced      bool    `json:"is_placed"`
	GridPosition  *int    `json:"grid_position,omitempty"`
	IsCorrect     *bool   `json:"is_correct,omitempty"`
}

// Slot returns the placed slot, or -1 when the piece has none.
func (p *PieceState) Slot() int {
	if p.GridPosition == nil {
		return -1
	}
	return *p.GridPosition
}

// Correct reports whether the piece is placed and marked correct.
func (p *PieceState) Correct() bool {
	return p.IsCorrect != nil && *p.IsCorrect
}

// Clone copies every field, including the optional pointers, so the result
// shares nothing with p.
func (p PieceState) Clone() PieceState {
	out := PieceState{
		ID:            p.ID,
		OriginalIndex: p.OriginalIndex,
		CurrentX:      p.CurrentX,
		CurrentY:      p.CurrentY,
		Rotation:      p.Rotation,
		Flipped:       p.Flipped,
		IsPlaced:      p.IsPlaced,
	}
	if p.GridPosition != nil {
		v := *p.GridPosition
		out.GridPosition = &v
	}
	if p.IsCorrect != nil {
		v := *p.IsCorrect
		out.IsCorrect = &v
	}
	return out
}

// ClonePieces deep-copies a piece slice.
func ClonePieces(pieces []PieceState) []PieceState {
	if pieces == nil {
		return nil
	}
	out := make([]PieceState, len(pieces))
	for i := range pieces {
		out[i] = pieces[i].Clone()
	}
	return out
}

// OperationType names the kind of a recorded placement operation.
type OperationType string

const (
	OpSwap  OperationType = "swap"
	OpPlace OperationType = "place"
	OpMove  OperationType = "move"
)

// Operation is one undoable entry in the operation history.
type Operation struct {
	ID          string        `json:"id"`
	Type        OperationType `json:"type"`
	Timestamp   time.Time     `json:"timestamp"`
	BeforeState []PieceState  `json:"before_state"`
	AfterState  []PieceState  `json:"after_state"`
	Description string        `json:"description"`
}

// PuzzleData is a complete puzzle definition from the library or the editor.
type PuzzleData struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	ImageURL   string     `json:"image_url"`
	Grid       GridConfig `json:"grid"`
	Boundaries []Boundary `json:"boundaries"`
	CreatedAt  time.Time  `json:"created_at"`
	Difficulty int        `json:"difficulty"`
}

// UserStats aggregates play statistics across all sessions.
type UserStats struct {
	TotalGamesPlayed      int            `json:"total_games_played"`
	TotalTimeSpent        int            `json:"total_time_spent"`
	BestTimes             map[string]int `json:"best_times"`
	TotalSuccessMovements int            `json:"total_success_movements"`
}

// SaveRecord is the persisted form of an in-progress session.
type SaveRecord struct {
	PuzzleID       string       `json:"puzzle_id"`
	Pieces         []PieceState `json:"pieces"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        *time.Time   `json:"end_time,omitempty"`
	MoveCount      int          `json:"move_count"`
	SuccessMoves   int          `json:"success_moves"`
	SessionID      string       `json:"session_id"`
	TotalPauseTime int64        `json:"total_pause_time"` // milliseconds
	PauseStartTime *time.Time   `json:"pause_start_time,omitempty"`
	IsPaused       bool         `json:"is_paused"`
	SavedAt        time.Time    `json:"saved_at"`
}

// Expired reports whether the record is older than ttl at now.
func (r *SaveRecord) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.SavedAt) > ttl
}

// CompletionRecord describes one finished session for the statistics collaborator.
type CompletionRecord struct {
	PuzzleID     string `json:"puzzle_id"`
	SessionID    string `json:"session_id"`
	Seconds      int    `json:"seconds"`
	Moves        int    `json:"moves"`
	SuccessMoves int    `json:"success_moves"`
}
