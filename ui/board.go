// Package ui specifies custom controls for tview to assist in solving jigsaw puzzles in the terminal.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jigsaw-local/config"
	"jigsaw-local/engine"
	"jigsaw-local/puzzle"
	"jigsaw-local/types"
)

// Slot cell size on screen, including the shared grid line on the top/left.
const (
	cellW = 8
	cellH = 4
)

type BoardUI struct {
	Box       *tview.Box
	hint      *tview.TextView
	cfg       *config.Config
	app       *tview.Application
	session   *engine.Session
	styles    []tcell.Color
	infoPanel *GameInfoPanel
	tray      *TrayUI
	selSlot   int
	held      int
}

func NewBoard(app *tview.Application, c *config.Config, hint *tview.TextView) *BoardUI {
	board := &BoardUI{
		Box:     tview.NewBox(),
		hint:    hint,
		app:     app,
		selSlot: -1,
		held:    -1,
	}
	board.SetConfig(c)
	board.Box.SetDrawFunc(board.draw)
	return board
}

func (b *BoardUI) grid() types.GridConfig {
	if b.session == nil {
		return types.GridConfig{}
	}
	return b.session.Puzzle().Grid
}

// Session returns the connected session, or nil.
func (b *BoardUI) Session() *engine.Session {
	return b.session
}

// SelectedSlot returns the slot under the cursor, or -1.
func (b *BoardUI) SelectedSlot() int {
	return b.selSlot
}

// HeldPiece returns the piece picked up for placement, or -1.
func (b *BoardUI) HeldPiece() int {
	return b.held
}

func (b *BoardUI) MoveSelection(dc, dr int) {
	g := b.grid()
	if g.TotalPieces() == 0 || b.session.IsCompleted() {
		b.ResetSelection()
		return
	}
	if b.selSlot < 0 {
		b.selSlot = g.SlotOf(g.Rows/2, g.Cols/2)
		b.refreshHint()
		return
	}
	row, col := g.Cell(b.selSlot)
	if row+dr < 0 || row+dr >= g.Rows || col+dc < 0 || col+dc >= g.Cols {
		return
	}
	b.selSlot = g.SlotOf(row+dr, col+dc)
	b.refreshHint()
}

func (b *BoardUI) ResetSelection() {
	b.selSlot = -1
	b.held = -1
	b.refreshHint()
}

// Hold picks up a piece; the next Activate places it under the cursor.
func (b *BoardUI) Hold(piece int) {
	if b.session == nil || b.session.IsCompleted() {
		return
	}
	if _, ok := b.session.Piece(piece); !ok {
		return
	}
	b.held = piece
	if b.selSlot < 0 {
		b.MoveSelection(0, 0)
	}
	b.refreshHint()
}

// Activate places the held piece on the selected slot, or picks up the piece
// already there.
func (b *BoardUI) Activate() {
	if b.session == nil || b.selSlot < 0 {
		return
	}
	if b.held >= 0 {
		held := b.held
		b.held = -1
		b.session.PlacePiece(held, b.selSlot)
		b.refreshHint()
		return
	}
	if p := b.session.PieceAtSlot(b.selSlot); p >= 0 {
		b.held = p
		b.refreshHint()
	}
}

// ReturnSelected sends the piece under the cursor back to the tray.
func (b *BoardUI) ReturnSelected() {
	if b.session == nil || b.selSlot < 0 {
		return
	}
	if p := b.session.PieceAtSlot(b.selSlot); p >= 0 {
		if p == b.held {
			b.held = -1
		}
		b.session.ReturnToTray(p)
	}
}

// target is the piece orientation keys act on: the held piece, else the one
// under the cursor.
func (b *BoardUI) target() int {
	if b.held >= 0 {
		return b.held
	}
	if b.selSlot >= 0 && b.session != nil {
		return b.session.PieceAtSlot(b.selSlot)
	}
	if b.tray != nil {
		return b.tray.Current()
	}
	return -1
}

func (b *BoardUI) Rotate() {
	if b.session == nil {
		return
	}
	if p := b.target(); p >= 0 {
		b.session.RotatePiece(p)
	}
}

func (b *BoardUI) Flip() {
	if b.session == nil {
		return
	}
	if p := b.target(); p >= 0 {
		b.session.FlipPiece(p)
	}
}

func (b *BoardUI) Undo() {
	if b.session != nil {
		b.held = -1
		b.session.Undo()
	}
}

func (b *BoardUI) Redo() {
	if b.session != nil {
		b.held = -1
		b.session.Redo()
	}
}

func (b *BoardUI) Shuffle() {
	if b.session != nil {
		b.session.Shuffle()
	}
}

func (b *BoardUI) TogglePause() {
	if b.session == nil {
		return
	}
	if b.session.TimerState() == engine.TimerPaused {
		b.session.Resume()
	} else {
		b.session.Pause()
	}
}

func (b *BoardUI) Restart() {
	if b.session == nil {
		return
	}
	b.ResetSelection()
	b.session.Restart()
}

// ConnectSession attaches the board, tray and info panel to s.
func (b *BoardUI) ConnectSession(s *engine.Session) {
	b.Close()
	b.session = s
	b.selSlot = -1
	b.held = -1

	s.OnChange(func(e engine.Event) {
		if e.Kind == engine.EventTick {
			// Ticks arrive on the timer goroutine.
			go b.app.QueueUpdateDraw(func() {
				if b.infoPanel != nil {
					b.infoPanel.Refresh()
				}
			})
			return
		}
		if e.Kind == engine.EventCompleted {
			b.selSlot = -1
			b.held = -1
		}
		b.refreshHint()
	})

	if b.infoPanel != nil {
		b.infoPanel.SetSession(s)
	}
	if b.tray != nil {
		b.tray.SetSession(s)
	}
	b.refreshHint()
}

// Close stops the session timer and saves it.
func (b *BoardUI) Close() {
	if b.session == nil {
		return
	}
	b.session.Close()
}

func (b *BoardUI) SetConfig(c *config.Config) {
	b.styles = []tcell.Color{
		tcell.PaletteColor(c.Theme.Colors.BoardColor),     // 0
		tcell.PaletteColor(c.Theme.Colors.BoardColorAlt),  // 1
		tcell.PaletteColor(c.Theme.Colors.EmptySlotColor), // 2
		tcell.PaletteColor(c.Theme.Colors.EdgeColor),      // 3
		tcell.PaletteColor(c.Theme.Colors.CorrectColor),   // 4
		tcell.PaletteColor(c.Theme.Colors.IncorrectColor), // 5
		tcell.PaletteColor(c.Theme.Colors.CursorColorBG),  // 6
		tcell.PaletteColor(c.Theme.Colors.HeldColorBG),    // 7
		tcell.PaletteColor(c.Theme.Colors.TrayColor),      // 8
	}
	b.cfg = c
	if b.tray != nil {
		b.tray.SetConfig(c)
	}
}

func (b *BoardUI) refreshHint() {
	if b.infoPanel != nil {
		b.infoPanel.Refresh()
	}
	if b.tray != nil {
		b.tray.Refresh(b.held)
	}
	if b.session == nil {
		b.hint.SetText("")
		return
	}

	if b.session.IsCompleted() {
		b.hint.SetText(fmt.Sprintf("  ★ Puzzle complete in %s with %d moves   x restart   q menu",
			formatDuration(b.session.Elapsed()), b.session.MoveCount()))
		return
	}

	status := ""
	switch {
	case b.session.TimerState() == engine.TimerPaused:
		status = "  ‖ Paused, p to resume"
	case b.held >= 0:
		status = fmt.Sprintf("  ▸ Holding piece %d, ⏎ to place", b.held+1)
	case b.selSlot >= 0 && b.session.IsSlotOccupied(b.selSlot):
		status = "  ⏎ pick up   ⌫ return to tray"
	default:
		status = "  Select a piece in the tray, then place it with ⏎"
	}
	controls := "\n  hjkl/↑↓←→ move  ⇥ tray  u/U undo/redo  s shuffle  p pause  x restart  q quit"
	if b.session.RotationEnabled() || b.session.FlipEnabled() {
		controls += "  r rotate  f flip"
	}
	b.hint.SetText(status + controls)
}

// edgeRune is the glyph drawn for an edge state, or 0 for flat.
func edgeRune(s types.EdgeState, sym config.ConfigSymbols) rune {
	switch s {
	case types.Convex:
		return sym.Convex
	case types.Concave:
		return sym.Concave
	}
	return 0
}

// rotationRune shows a piece's orientation: an arrow for where its top edge points.
func rotationRune(rotation int, flipped bool) rune {
	arrows := []rune{'↑', '→', '↓', '←'}
	if flipped {
		arrows = []rune{'⇡', '⇢', '⇣', '⇠'}
	}
	return arrows[((rotation/90)%4+4)%4]
}

// BoardSize returns the board's size on screen in cells.
func BoardSize(g types.GridConfig) (int, int) {
	return g.Cols*cellW + 1, g.Rows*cellH + 1
}

func (b *BoardUI) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	g := b.grid()
	if g.TotalPieces() == 0 {
		return x, y, width, height
	}
	boardW, boardH := BoardSize(g)
	left := x + max(0, (width-boardW)/2)
	top := y + max(0, (height-boardH)/2)
	theme := b.cfg.Theme
	lineStyle := tcell.StyleDefault.Foreground(b.styles[3])

	// grid lines
	for r := 0; r <= g.Rows; r++ {
		for c := 0; c <= g.Cols; c++ {
			cx, cy := left+c*cellW, top+r*cellH
			screen.SetContent(cx, cy, gridRune(c, r, g.Cols+1, g.Rows+1, theme.Symbols.Corner), nil, lineStyle)
			if c < g.Cols {
				for i := 1; i < cellW; i++ {
					screen.SetContent(cx+i, cy, '─', nil, lineStyle)
				}
			}
			if r < g.Rows {
				for i := 1; i < cellH; i++ {
					screen.SetContent(cx, cy+i, '│', nil, lineStyle)
				}
			}
		}
	}

	for slot := 0; slot < g.TotalPieces(); slot++ {
		b.drawSlot(screen, left, top, slot)
	}
	return x, y, width, height
}

func (b *BoardUI) drawSlot(screen tcell.Screen, left, top, slot int) {
	g := b.grid()
	theme := b.cfg.Theme
	row, col := g.Cell(slot)
	ix, iy := left+col*cellW+1, top+row*cellH+1
	iw, ih := cellW-1, cellH-1

	bg := b.styles[(row%2+col%2)%2]
	piece := b.session.PieceAtSlot(slot)
	if piece < 0 {
		bg = b.styles[2]
	}
	fg := b.styles[8]
	var p types.PieceState
	if piece >= 0 {
		p, _ = b.session.Piece(piece)
		fg = tcell.ColorBlack
		if p.Correct() {
			fg = b.styles[4]
		} else if theme.HighlightIncorrect {
			fg = b.styles[5]
		}
	}
	switch {
	case piece >= 0 && piece == b.held:
		bg = b.styles[7]
	case slot == b.selSlot:
		bg = b.styles[6]
	}
	style := tcell.StyleDefault.Background(bg).Foreground(fg)

	for dy := 0; dy < ih; dy++ {
		for dx := 0; dx < iw; dx++ {
			screen.SetContent(ix+dx, iy+dy, ' ', nil, style)
		}
	}

	var edges types.PieceEdges
	if piece >= 0 {
		edges = puzzle.OrientEdges(b.session.PieceEdges(piece), p.Rotation, p.Flipped)
		label := fmt.Sprintf("%d", piece+1)
		if !theme.ShowPieceNumbers {
			label = "■"
		}
		drawCentered(screen, ix+1, iy+ih/2, iw-2, label, style.Bold(true))
		if p.Rotation != 0 || p.Flipped {
			screen.SetContent(ix, iy, rotationRune(p.Rotation, p.Flipped), nil, style)
		}
	} else {
		edges = b.session.PieceEdges(slot)
		screen.SetContent(ix+iw/2, iy+ih/2, theme.Symbols.EmptySlot, nil, style)
		style = style.Dim(true)
	}

	if !theme.DrawEdgeGlyphs {
		return
	}
	edgeStyle := style.Foreground(b.styles[3])
	if r := edgeRune(edges.Top, theme.Symbols); r != 0 {
		screen.SetContent(ix+iw/2, iy, r, nil, edgeStyle)
	}
	if r := edgeRune(edges.Bottom, theme.Symbols); r != 0 {
		screen.SetContent(ix+iw/2, iy+ih-1, r, nil, edgeStyle)
	}
	if r := edgeRune(edges.Left, theme.Symbols); r != 0 {
		screen.SetContent(ix, iy+ih/2, r, nil, edgeStyle)
	}
	if r := edgeRune(edges.Right, theme.Symbols); r != 0 {
		screen.SetContent(ix+iw-1, iy+ih/2, r, nil, edgeStyle)
	}
}

func drawCentered(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[:width]
	}
	start := x + (width-len(runes))/2
	for i, ch := range runes {
		screen.SetContent(start+i, y, ch, nil, style)
	}
}

// gridRune returns the box-drawing character for a grid line intersection.
func gridRune(x, y, width, height int, inner rune) rune {
	isTop := y == 0
	isBottom := y == height-1
	isLeft := x == 0
	isRight := x == width-1

	switch {
	case isTop && isLeft:
		return '┌'
	case isTop && isRight:
		return '┐'
	case isBottom && isLeft:
		return '└'
	case isBottom && isRight:
		return '┘'
	case isTop:
		return '┬'
	case isBottom:
		return '┴'
	case isLeft:
		return '├'
	case isRight:
		return '┤'
	default:
		return inner
	}
}
