package ui

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jigsaw-local/config"
	"jigsaw-local/library"
	"jigsaw-local/puzzle"
	"jigsaw-local/types"
)

// Edge styles offered by the editor.
const (
	EdgesFlat = iota
	EdgesRandom
	EdgesTabs
)

// Focusable items in the editor, top to bottom.
const (
	editName = iota
	editRows
	editCols
	editEdges
	editPreview
	editSave
	editCancel
	editItems
)

// EditorUI is the puzzle editor screen: grid size, edge shapes and a live
// preview where single boundaries can be toggled.
type EditorUI struct {
	*tview.Box
	card    *MenuCard
	name    *TextInput
	rows    *LevelSlider
	cols    *LevelSlider
	edges   *RadioSelect
	save    *MenuButton
	cancel  *MenuButton
	focus   int
	cfg     *config.Config
	rng     *rand.Rand
	now     func() time.Time
	onSave  func(types.PuzzleData) error
	onDone  func()
	status  string
	isError bool

	grid       types.GridConfig
	boundaries []types.Boundary
	cursor     int
}

// NewEditor creates the editor. onSave receives a validated puzzle; an error
// from it is shown on the card.
func NewEditor(c *config.Config, onSave func(types.PuzzleData) error, onDone func()) *EditorUI {
	e := &EditorUI{
		Box:    tview.NewBox(),
		card:   NewMenuCard("PUZZLE EDITOR"),
		cfg:    c,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		onSave: onSave,
		onDone: onDone,
	}
	e.grid = types.GridConfig{
		Rows:        c.Game.DefaultRows,
		Cols:        c.Game.DefaultCols,
		PieceWidth:  c.Game.PieceWidth,
		PieceHeight: c.Game.PieceHeight,
	}
	e.name = NewTextInput("Name ", "", 24, nil)
	e.rows = NewLevelSlider("Rows ", library.MinGridSize, library.MaxGridSize, e.grid.Rows, func(v int) {
		e.grid.Rows = v
		e.regenerate()
	})
	e.cols = NewLevelSlider("Cols ", library.MinGridSize, library.MaxGridSize, e.grid.Cols, func(v int) {
		e.grid.Cols = v
		e.regenerate()
	})
	e.edges = NewRadioSelect("Edges", []RadioOption{
		{"Flat", "straight edges only"},
		{"Random", "flat, tabs and blanks"},
		{"Tabs", "every edge interlocks"},
	}, EdgesRandom, func(int) { e.regenerate() })
	e.save = NewMenuButton("Save", true, e.submit)
	e.cancel = NewMenuButton("Cancel", false, func() {
		if e.onDone != nil {
			e.onDone()
		}
	})
	e.card.SetFooter("Tab next · ←→ adjust · space toggles edge in preview · Esc back")
	e.regenerate()
	e.setFocus(editName)
	return e
}

// Reset clears the form for a new puzzle.
func (e *EditorUI) Reset() {
	e.name.SetText("")
	e.status = ""
	e.isError = false
	e.regenerate()
	e.setFocus(editName)
}

// Grid returns the grid being edited.
func (e *EditorUI) Grid() types.GridConfig {
	return e.grid
}

// Boundaries returns a copy of the boundaries being edited.
func (e *EditorUI) Boundaries() []types.Boundary {
	out := make([]types.Boundary, len(e.boundaries))
	copy(out, e.boundaries)
	return out
}

// regenerate rebuilds every boundary for the current size and edge style.
func (e *EditorUI) regenerate() {
	bs := puzzle.GenerateInitialBoundaries(e.grid)
	switch e.edges.Selected() {
	case EdgesRandom:
		bs = puzzle.RandomizeBoundaries(bs, e.rng)
	case EdgesTabs:
		for i := range bs {
			bs[i].State = types.Convex
			if e.rng.Intn(2) == 1 {
				bs[i].State = types.Concave
			}
		}
	}
	e.boundaries = bs
	e.cursor = 0
	e.updateCard()
}

// updateCard shows grid size and difficulty in the card header and marks the
// card while a save error is shown.
func (e *EditorUI) updateCard() {
	level := puzzle.CalculateDifficultyFromConfig(e.grid, e.boundaries)
	e.card.SetBadge(fmt.Sprintf("%d×%d %s", e.grid.Rows, e.grid.Cols, stars(level)))
	e.card.SetAlert(e.isError)
}

// CycleBoundary steps the boundary under the preview cursor through flat,
// convex and concave.
func (e *EditorUI) CycleBoundary() {
	if e.cursor < 0 || e.cursor >= len(e.boundaries) {
		return
	}
	b := e.boundaries[e.cursor]
	e.boundaries = puzzle.UpdateBoundaryState(e.boundaries, b.ID, types.EdgeState((int(b.State)+1)%3))
	e.updateCard()
}

// MoveCursor moves the preview cursor by delta boundaries, wrapping around.
func (e *EditorUI) MoveCursor(delta int) {
	n := len(e.boundaries)
	if n == 0 {
		return
	}
	e.cursor = ((e.cursor+delta)%n + n) % n
}

func (e *EditorUI) submit() {
	p, err := library.NewPuzzle(e.name.Text(), "", e.grid, e.Boundaries(), e.now())
	if err == nil && e.onSave != nil {
		err = e.onSave(p)
	}
	if err != nil {
		var verr *library.ValidationError
		if errors.As(err, &verr) {
			e.status = "✗ " + verr.Error()
		} else {
			e.status = "✗ could not save: " + err.Error()
		}
		e.isError = true
		e.updateCard()
		return
	}
	e.status = fmt.Sprintf("✓ saved %q", p.Name)
	e.isError = false
	e.updateCard()
	if e.onDone != nil {
		e.onDone()
	}
}

func (e *EditorUI) setFocus(i int) {
	e.focus = (i%editItems + editItems) % editItems
	e.name.SetFocused(e.focus == editName)
	e.rows.SetFocused(e.focus == editRows)
	e.cols.SetFocused(e.focus == editCols)
	e.edges.SetFocused(e.focus == editEdges)
	e.save.SetFocused(e.focus == editSave)
	e.cancel.SetFocused(e.focus == editCancel)
}

// HandleKey routes a key to the focused item. Returns true if handled.
func (e *EditorUI) HandleKey(event *tcell.EventKey) bool {
	switch event.Key() {
	case tcell.KeyTab:
		e.setFocus(e.focus + 1)
		return true
	case tcell.KeyBacktab:
		e.setFocus(e.focus - 1)
		return true
	case tcell.KeyEscape:
		if e.onDone != nil {
			e.onDone()
		}
		return true
	}

	switch e.focus {
	case editName:
		return e.name.HandleKey(event)
	case editRows:
		return e.rows.HandleKey(event)
	case editCols:
		return e.cols.HandleKey(event)
	case editEdges:
		return e.edges.HandleKey(event)
	case editPreview:
		switch event.Key() {
		case tcell.KeyLeft:
			e.MoveCursor(-1)
		case tcell.KeyRight:
			e.MoveCursor(1)
		case tcell.KeyUp:
			e.MoveCursor(-e.grid.Cols)
		case tcell.KeyDown:
			e.MoveCursor(e.grid.Cols)
		case tcell.KeyEnter:
			e.CycleBoundary()
		case tcell.KeyRune:
			if event.Rune() != ' ' {
				return false
			}
			e.CycleBoundary()
		default:
			return false
		}
		return true
	case editSave:
		return e.save.HandleKey(event)
	case editCancel:
		return e.cancel.HandleKey(event)
	}
	return false
}

// InputHandler returns the handler for this primitive.
func (e *EditorUI) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return e.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		e.HandleKey(event)
	})
}

// Draw renders the editor card and preview.
func (e *EditorUI) Draw(screen tcell.Screen) {
	e.Box.DrawForSubclass(screen, e)
	x, y, width, height := e.GetInnerRect()
	e.card.SetRect(x, y, width, height)
	e.card.Draw(screen)

	col := x + 3
	row := y + 6
	row += e.name.Draw(screen, col, row, width-6) + 1
	row += e.rows.Draw(screen, col, row, width-6)
	row += e.cols.Draw(screen, col, row, width-6) + 1
	row += e.edges.Draw(screen, col, row, width-6) + 1

	bg := tcell.StyleDefault.Background(MenuColors.CardBG)
	labelStyle := bg.Foreground(MenuColors.Label)
	drawText(screen, col+4, row, fmt.Sprintf("%d pieces  %d%% shaped edges",
		e.grid.TotalPieces(), int(puzzle.ComplexityRatio(e.boundaries)*100)), labelStyle)
	row += 2

	previewRows := e.drawPreview(screen, col, row, x+width-2-col, y+height-4-row)
	row += previewRows
	e.card.DrawDivider(screen, row)
	row += 2

	bx := col + 4
	bx += e.save.Draw(screen, bx, row) + 2
	e.cancel.Draw(screen, bx, row)
	row += 2

	if e.status != "" {
		style := bg.Foreground(MenuColors.Selected)
		if e.isError {
			style = bg.Foreground(MenuColors.Error)
		}
		drawText(screen, col+4, row, e.status, style)
	}
}

// drawPreview draws boundaries as a small grid and returns the rows used.
func (e *EditorUI) drawPreview(screen tcell.Screen, x, y, width, height int) int {
	const cw, ch = 4, 2
	bg := tcell.StyleDefault.Background(MenuColors.CardBG)
	lineStyle := bg.Foreground(MenuColors.Border)
	accent := bg.Foreground(MenuColors.TitleAccent)
	if e.focus == editPreview {
		screen.SetContent(x, y, '▸', nil, bg.Foreground(MenuColors.Selected))
	}
	screen.SetContent(x+2, y, '◈', nil, accent)
	drawText(screen, x+4, y, "Preview", bg.Foreground(MenuColors.Label))
	top, left := y+1, x+4
	if e.grid.Cols*cw+1 > width-4 || e.grid.Rows*ch+1 > height-1 {
		drawText(screen, left, top, "(too large to preview)", bg.Foreground(MenuColors.Hint))
		return 2
	}

	for r := 0; r <= e.grid.Rows; r++ {
		for c := 0; c <= e.grid.Cols; c++ {
			cx, cy := left+c*cw, top+r*ch
			screen.SetContent(cx, cy, gridRune(c, r, e.grid.Cols+1, e.grid.Rows+1, '┼'), nil, lineStyle)
			if c < e.grid.Cols && (r == 0 || r == e.grid.Rows) {
				for i := 1; i < cw; i++ {
					screen.SetContent(cx+i, cy, '─', nil, lineStyle)
				}
			}
			if r < e.grid.Rows && (c == 0 || c == e.grid.Cols) {
				screen.SetContent(cx, cy+1, '│', nil, lineStyle)
			}
		}
	}

	sym := e.cfg.Theme.Symbols
	for i, b := range e.boundaries {
		style := lineStyle
		if b.State != types.Flat {
			style = accent
		}
		if i == e.cursor && e.focus == editPreview {
			style = style.Background(MenuColors.ButtonFocus).Foreground(MenuColors.ButtonText)
		}
		if b.Direction == types.Horizontal {
			cx, cy := left+b.Col*cw, top+(b.Row+1)*ch
			mark := edgeRune(b.State, sym)
			for j := 1; j < cw; j++ {
				r := '─'
				if j == cw/2 && mark != 0 {
					r = mark
				}
				screen.SetContent(cx+j, cy, r, nil, style)
			}
			continue
		}
		cx, cy := left+(b.Col+1)*cw, top+b.Row*ch
		r := '│'
		if mark := edgeRune(b.State, sym); mark != 0 {
			r = mark
		}
		screen.SetContent(cx, cy+1, r, nil, style)
	}
	if e.cursor < len(e.boundaries) && e.focus == editPreview {
		b := e.boundaries[e.cursor]
		drawText(screen, left, top+e.grid.Rows*ch+1,
			fmt.Sprintf("%s  %s", b.ID, strings.ToUpper(b.State.String())), bg.Foreground(MenuColors.Hint))
	}
	return e.grid.Rows*ch + 3
}
