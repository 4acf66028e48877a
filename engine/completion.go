package engine

import (
	"math"

	"jigsaw-local/types"
)

// CompletionState is the state of a session's completion machine.
type CompletionState int

const (
	InProgress CompletionState = iota
	Completed
)

func (s CompletionState) String() string {
	if s == Completed {
		return "completed"
	}
	return "in progress"
}

// IsCompleted reports whether there is at least one piece and every piece is
// placed and correct.
func IsCompleted(pieces []types.PieceState) bool {
	if len(pieces) == 0 {
		return false
	}
	for i := range pieces {
		if !pieces[i].IsPlaced || !pieces[i].Correct() {
			return false
		}
	}
	return true
}

// CompletionPercentage is the rounded share of pieces placed correctly.
func CompletionPercentage(pieces []types.PieceState) int {
	if len(pieces) == 0 {
		return 0
	}
	n := 0
	for i := range pieces {
		if pieces[i].IsPlaced && pieces[i].Correct() {
			n++
		}
	}
	return percent(n, len(pieces))
}

// BoardCompletionRate is the rounded share of pieces on the board, correct or not.
func BoardCompletionRate(pieces []types.PieceState) int {
	if len(pieces) == 0 {
		return 0
	}
	n := 0
	for i := range pieces {
		if pieces[i].IsPlaced {
			n++
		}
	}
	return percent(n, len(pieces))
}

func percent(n, total int) int {
	return int(math.Round(100 * float64(n) / float64(total)))
}

// Completion tracks the InProgress -> Completed transition of one session.
// Completed is terminal until Reset.
type Completion struct {
	state CompletionState
}

// State returns the current state.
func (c *Completion) State() CompletionState {
	return c.state
}

// Evaluate checks pieces and returns true only on the call that moves the
// machine into Completed.
func (c *Completion) Evaluate(pieces []types.PieceState) bool {
	if c.state == Completed {
		return false
	}
	if IsCompleted(pieces) {
		c.state = Completed
		return true
	}
	return false
}

// Reset starts a new session in InProgress.
func (c *Completion) Reset() {
	c.state = InProgress
}
