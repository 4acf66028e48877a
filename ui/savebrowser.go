package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jigsaw-local/save"
	"jigsaw-local/types"
)

// SaveBrowserUI provides a screen for browsing unfinished sessions.
type SaveBrowserUI struct {
	flex     *tview.Flex
	saveList *tview.List
	preview  *tview.Box
	hint     *tview.TextView
	store    *save.Store
	lookup   func(id string) (types.PuzzleData, bool)
	saves    []save.Info
	records  map[string]*types.SaveRecord // cached for the preview
	selected int
	onResume func(puzzleID string)
	onDone   func()
}

// NewSaveBrowser creates a new save browser screen. lookup resolves puzzle
// ids for names and grid sizes.
func NewSaveBrowser(store *save.Store, lookup func(id string) (types.PuzzleData, bool), onResume func(puzzleID string), onDone func()) *SaveBrowserUI {
	sb := &SaveBrowserUI{
		store:    store,
		lookup:   lookup,
		onResume: onResume,
		onDone:   onDone,
		records:  make(map[string]*types.SaveRecord),
	}

	sb.saveList = tview.NewList()
	sb.saveList.SetBorder(true)
	sb.saveList.SetTitle(" Saved Games ")
	sb.saveList.ShowSecondaryText(false)
	sb.saveList.SetHighlightFullLine(true)
	sb.saveList.SetMainTextStyle(tcell.StyleDefault.Foreground(MenuColors.Label))
	sb.saveList.SetSelectedStyle(tcell.StyleDefault.
		Foreground(MenuColors.ButtonText).
		Background(MenuColors.ButtonFocus))

	sb.preview = tview.NewBox()
	sb.preview.SetBorder(true)
	sb.preview.SetTitle(" Preview ")
	sb.preview.SetDrawFunc(sb.drawPreview)

	sb.hint = tview.NewTextView()
	sb.hint.SetDynamicColors(true)
	sb.hint.SetBorder(false)
	sb.hint.SetText("  [dimgray]⏎[-] resume  [dimgray]d[-] delete  [dimgray]q[-] back")

	sb.saveList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		sb.selected = index
	})
	sb.saveList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index >= 0 && index < len(sb.saves) && sb.onResume != nil {
			sb.onResume(sb.saves[index].PuzzleID)
		}
	})
	sb.saveList.SetInputCapture(sb.handleInput)

	topRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(sb.saveList, 44, 0, true).
		AddItem(sb.preview, 0, 1, false)

	sb.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, true).
		AddItem(sb.hint, 1, 0, false)

	sb.loadSaves()
	return sb
}

// Flex returns the flex container for this UI.
func (sb *SaveBrowserUI) Flex() *tview.Flex {
	return sb.flex
}

// Refresh reloads the save list from disk.
func (sb *SaveBrowserUI) Refresh() {
	sb.records = make(map[string]*types.SaveRecord)
	sb.loadSaves()
}

func (sb *SaveBrowserUI) loadSaves() {
	sb.saveList.Clear()
	sb.saves = nil
	sb.selected = 0

	saves, err := sb.store.List(context.Background())
	if err != nil {
		slog.Warn("list saves", "err", err)
	}
	if len(saves) == 0 {
		sb.saveList.AddItem("[dimgray]No saved games[-]", "", 0, nil)
		return
	}

	sb.saves = saves
	for _, s := range saves {
		sb.saveList.AddItem(fmt.Sprintf("%s  %-18s %d/%d",
			s.SavedAt.Local().Format("01-02 15:04"), truncate(sb.puzzleName(s.PuzzleID), 18), s.Placed, s.Total), "", 0, nil)
	}
}

func (sb *SaveBrowserUI) puzzleName(id string) string {
	if p, ok := sb.lookup(id); ok {
		return p.Name
	}
	return id
}

func (sb *SaveBrowserUI) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		if sb.onDone != nil {
			sb.onDone()
		}
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			if sb.onDone != nil {
				sb.onDone()
			}
			return nil
		case 'd':
			sb.deleteSelected()
			return nil
		}
	}
	return event
}

func (sb *SaveBrowserUI) deleteSelected() {
	if sb.selected < 0 || sb.selected >= len(sb.saves) {
		return
	}
	id := sb.saves[sb.selected].PuzzleID
	if err := sb.store.Delete(context.Background(), id); err != nil {
		slog.Warn("delete save", "puzzle", id, "err", err)
	}
	sb.Refresh()
}

// drawPreview renders a mini board of placed pieces and the save metadata.
func (sb *SaveBrowserUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	if sb.selected < 0 || sb.selected >= len(sb.saves) {
		return x, y, width, height
	}
	info := sb.saves[sb.selected]

	rec, ok := sb.records[info.PuzzleID]
	if !ok {
		r, err := sb.store.Load(context.Background(), info.PuzzleID)
		if err == nil {
			rec = r
			sb.records[info.PuzzleID] = rec
		}
	}

	startX := x + 2
	startY := y + 1
	infoStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(250))
	dimStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(245))

	p, known := sb.lookup(info.PuzzleID)
	if rec != nil && known && width >= p.Grid.Cols*2+4 && height >= p.Grid.Rows+7 {
		emptyStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(240))
		okStyle := tcell.StyleDefault.Foreground(MenuColors.Correct).Bold(true)
		wrongStyle := tcell.StyleDefault.Foreground(MenuColors.Error)
		filled := make(map[int]bool)
		for i := range rec.Pieces {
			if slot := rec.Pieces[i].Slot(); rec.Pieces[i].IsPlaced && slot >= 0 {
				filled[slot] = rec.Pieces[i].Correct()
			}
		}
		for r := 0; r < p.Grid.Rows; r++ {
			for c := 0; c < p.Grid.Cols; c++ {
				ch, style := '·', emptyStyle
				if correct, placed := filled[p.Grid.SlotOf(r, c)]; placed {
					ch, style = '□', wrongStyle
					if correct {
						ch, style = '■', okStyle
					}
				}
				screen.SetContent(startX+c*2, startY+r, ch, nil, style)
			}
		}
		startY += p.Grid.Rows + 1
	}

	drawText(screen, startX, startY, sb.puzzleName(info.PuzzleID), infoStyle)
	startY++
	drawText(screen, startX, startY, fmt.Sprintf("%d/%d placed, %d correct", info.Placed, info.Total, info.Correct), dimStyle)
	startY++
	drawText(screen, startX, startY, fmt.Sprintf("%d moves", info.MoveCount), dimStyle)
	startY++
	drawText(screen, startX, startY, "Saved "+info.SavedAt.Local().Format("2006-01-02 15:04"), dimStyle)
	if info.Paused {
		startY++
		drawText(screen, startX, startY, "Paused", tcell.StyleDefault.Foreground(tcell.PaletteColor(109)))
	}

	return x, y, width, height
}

// drawText writes a string to the screen at the given position.
func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	return string(r[:n-1]) + "…"
}
