package engine

import (
	"time"

	"github.com/google/uuid"

	"jigsaw-local/types"
)

// History is a bounded undo stack with an unbounded redo stack.
// Pushing a new operation clears redo; the oldest undo entry is evicted
// once the depth is exceeded.
type History struct {
	undo     []types.Operation
	redo     []types.Operation
	maxDepth int
}

// NewHistory creates a history keeping at most maxDepth undo entries.
func NewHistory(maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = DefaultHistoryDepth
	}
	return &History{maxDepth: maxDepth}
}

// NewOperation builds an operation with a fresh id and deep copies of both snapshots.
func NewOperation(typ types.OperationType, before, after []types.PieceState, description string, at time.Time) types.Operation {
	return types.Operation{
		ID:          uuid.NewString(),
		Type:        typ,
		Timestamp:   at,
		BeforeState: types.ClonePieces(before),
		AfterState:  types.ClonePieces(after),
		Description: description,
	}
}

// AddOperation pushes op, clearing the redo stack.
func (h *History) AddOperation(op types.Operation) {
	h.redo = nil
	h.undo = append(h.undo, op)
	if over := len(h.undo) - h.maxDepth; over > 0 {
		h.undo = append([]types.Operation(nil), h.undo[over:]...)
	}
}

// Undo moves the newest operation to the redo stack and returns it so the
// caller can apply its BeforeState. It returns nil when there is nothing to undo.
func (h *History) Undo() *types.Operation {
	if len(h.undo) == 0 {
		return nil
	}
	op := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, op)
	return &op
}

// Redo moves the newest undone operation back to the undo stack and returns
// it so the caller can apply its AfterState. It returns nil when there is
// nothing to redo.
func (h *History) Redo() *types.Operation {
	if len(h.redo) == 0 {
		return nil
	}
	op := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, op)
	return &op
}

func (h *History) CanUndo() bool  { return len(h.undo) > 0 }
func (h *History) CanRedo() bool  { return len(h.redo) > 0 }
func (h *History) UndoDepth() int { return len(h.undo) }
func (h *History) RedoDepth() int { return len(h.redo) }

// Operations returns the undo stack, oldest first.
func (h *History) Operations() []types.Operation {
	return append([]types.Operation(nil), h.undo...)
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
