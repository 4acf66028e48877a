package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jigsaw-local/config"
	"jigsaw-local/engine"
	"jigsaw-local/puzzle"
	"jigsaw-local/types"
)

// GameInfoPanel displays puzzle progress and recent operations alongside the board.
type GameInfoPanel struct {
	box     *tview.TextView
	session *engine.Session
}

// NewGameInfoPanel creates a new game info panel.
func NewGameInfoPanel() *GameInfoPanel {
	panel := &GameInfoPanel{
		box: tview.NewTextView(),
	}

	panel.box.SetDynamicColors(true)
	panel.box.SetBorder(false)
	panel.box.SetTextAlign(tview.AlignLeft)

	return panel
}

// Box returns the underlying tview component.
func (p *GameInfoPanel) Box() *tview.TextView {
	return p.box
}

// SetSession points the panel at a session.
func (p *GameInfoPanel) SetSession(s *engine.Session) {
	p.session = s
	p.Refresh()
}

// Refresh updates the panel text.
func (p *GameInfoPanel) Refresh() {
	if p.session == nil {
		p.box.SetText("")
		return
	}
	s := p.session
	pz := s.Puzzle()

	var text strings.Builder
	text.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(pz.Name)))
	text.WriteString("[dimgray]──────────────────────[-:-:-]\n")
	text.WriteString(fmt.Sprintf("[white]Level:[-:-:-] [yellow]%s[-]\n", stars(pz.Difficulty)))
	text.WriteString(fmt.Sprintf("[white]Pieces:[-:-:-] %d (%dx%d)\n", pz.Grid.TotalPieces(), pz.Grid.Rows, pz.Grid.Cols))

	clock := formatDuration(s.Elapsed())
	if s.TimerState() == engine.TimerPaused {
		clock += " [yellow]paused[-]"
	}
	text.WriteString(fmt.Sprintf("[white]Time:[-:-:-] %s\n", clock))
	text.WriteString(fmt.Sprintf("[white]Correct:[-:-:-] %d%%\n", s.CompletionPercentage()))
	text.WriteString(fmt.Sprintf("[white]Board:[-:-:-] %d%%\n", s.BoardCompletionRate()))
	text.WriteString(fmt.Sprintf("[white]Moves:[-:-:-] %d [dimgray](%d good)[-]\n", s.MoveCount(), s.SuccessMoves()))
	text.WriteString(fmt.Sprintf("[white]Undo/Redo:[-:-:-] %d/%d\n", s.History().UndoDepth(), s.History().RedoDepth()))
	if s.IsCompleted() {
		text.WriteString("\n[green::b]★ Complete[-:-:-]\n")
	}

	ops := s.History().Operations()
	if len(ops) > 0 {
		text.WriteString("\n[white::b]History[-:-:-]\n")
		text.WriteString("[dimgray]──────────────────────[-:-:-]\n")

		maxVisible := 10
		start := 0
		if len(ops) > maxVisible {
			start = len(ops) - maxVisible
		}
		for i := start; i < len(ops); i++ {
			marker := " "
			if i == len(ops)-1 {
				marker = "[white]>[-]"
			}
			text.WriteString(fmt.Sprintf("%s[dimgray]%3d.[-] %s\n", marker, i+1, tview.Escape(ops[i].Description)))
		}
		if start > 0 {
			text.WriteString(fmt.Sprintf("[dimgray]  ··· %d earlier[-]\n", start))
		}
	}

	p.box.SetText(text.String())
}

// stars renders a 1-5 difficulty as filled and empty stars.
func stars(level int) string {
	level = max(0, min(5, level))
	return strings.Repeat("★", level) + strings.Repeat("☆", 5-level)
}

// formatDuration renders m:ss, or h:mm:ss from one hour.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// TrayUI lists the pieces that are not on the board.
type TrayUI struct {
	list    *tview.List
	session *engine.Session
	cfg     *config.Config
	pieces  []int
	onPick  func(piece int)
}

// NewTray creates the tray list. onPick runs when a piece is chosen.
func NewTray(c *config.Config, onPick func(piece int)) *TrayUI {
	t := &TrayUI{
		list:   tview.NewList(),
		cfg:    c,
		onPick: onPick,
	}
	t.list.SetBorder(true)
	t.list.SetTitle(" Tray ")
	t.list.ShowSecondaryText(false)
	t.list.SetHighlightFullLine(true)
	t.list.SetMainTextStyle(tcell.StyleDefault.Foreground(MenuColors.Label))
	t.list.SetSelectedStyle(tcell.StyleDefault.
		Foreground(MenuColors.ButtonText).
		Background(MenuColors.ButtonFocus))
	t.list.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		if index >= 0 && index < len(t.pieces) && t.onPick != nil {
			t.onPick(t.pieces[index])
		}
	})
	return t
}

// List returns the underlying tview component.
func (t *TrayUI) List() *tview.List {
	return t.list
}

func (t *TrayUI) SetConfig(c *config.Config) {
	t.cfg = c
}

func (t *TrayUI) SetSession(s *engine.Session) {
	t.session = s
	t.Refresh(-1)
}

// Current returns the highlighted piece, or -1.
func (t *TrayUI) Current() int {
	i := t.list.GetCurrentItem()
	if i < 0 || i >= len(t.pieces) {
		return -1
	}
	return t.pieces[i]
}

// Refresh rebuilds the list from the session, keeping the highlighted piece
// when it is still in the tray.
func (t *TrayUI) Refresh(held int) {
	current := t.Current()
	t.list.Clear()
	t.pieces = t.pieces[:0]
	if t.session == nil {
		return
	}
	for i, p := range t.session.Pieces() {
		if p.IsPlaced {
			continue
		}
		t.pieces = append(t.pieces, i)
		marker := "  "
		if i == held {
			marker = "▸ "
		}
		edges := puzzle.OrientEdges(t.session.PieceEdges(i), p.Rotation, p.Flipped)
		label := fmt.Sprintf("%s%3d  %s", marker, i+1, edgeSummary(edges, t.cfg.Theme.Symbols))
		if t.session.RotationEnabled() || t.session.FlipEnabled() {
			label += " " + string(rotationRune(p.Rotation, p.Flipped))
		}
		t.list.AddItem(label, "", 0, nil)
	}
	t.list.SetTitle(fmt.Sprintf(" Tray (%d) ", len(t.pieces)))
	if len(t.pieces) == 0 {
		t.list.AddItem("[dimgray]empty[-]", "", 0, nil)
		return
	}
	for idx, p := range t.pieces {
		if p == current {
			t.list.SetCurrentItem(idx)
			break
		}
	}
}

// edgeSummary lists top, right, bottom and left edges, flat ones as a dash.
func edgeSummary(e types.PieceEdges, sym config.ConfigSymbols) string {
	out := make([]rune, 0, 4)
	for _, s := range []types.EdgeState{e.Top, e.Right, e.Bottom, e.Left} {
		r := edgeRune(s, sym)
		if r == 0 {
			r = '-'
		}
		out = append(out, r)
	}
	return string(out)
}

// CreateGameLayout creates the main game layout with tray, board and side panel.
func CreateGameLayout(board *BoardUI, tray *TrayUI, hint *tview.TextView) *tview.Flex {
	infoPanel := NewGameInfoPanel()

	board.infoPanel = infoPanel
	board.tray = tray

	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(tray.List(), 20, 0, false)
	boardRow.AddItem(board.Box, 0, 1, true)
	boardRow.AddItem(infoPanel.Box(), 28, 0, false)

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	mainFlex.AddItem(boardRow, 0, 1, true)
	mainFlex.AddItem(hint, 4, 0, false)

	return mainFlex
}

// CreateCenteredForm creates a centered container for menu screens.
func CreateCenteredForm(form tview.Primitive, maxWidth int) *tview.Flex {
	centered := tview.NewFlex().SetDirection(tview.FlexColumn)
	centered.AddItem(nil, 0, 1, false)
	centered.AddItem(form, maxWidth, 0, true)
	centered.AddItem(nil, 0, 1, false)

	return centered
}
