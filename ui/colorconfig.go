package ui

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jigsaw-local/config"
	"jigsaw-local/types"
)

// ColorConfigUI provides a color configuration screen with live preview.
type ColorConfigUI struct {
	flex      *tview.Flex
	colorList *tview.List
	preview   *tview.Box
	cfg       *config.Config
	onDone    func()

	selectedBoardColor int
	selectedEdgeColor  int
	editingEdge        bool
}

// Board colors to choose from
var boardColors = []struct {
	code int
	name string
}{
	{230, "Light Cream"},
	{229, "Pale Yellow"},
	{228, "Light Gold"},
	{222, "Gold"},
	{220, "Bright Yellow"},
	{214, "Orange Gold"},
	{208, "Dark Orange"},
	{180, "Tan"},
	{179, "Light Brown"},
	{172, "Brown"},
	{136, "Dark Brown"},
	{94, "Saddle Brown"},
	{252, "Light Gray"},
	{250, "Gray"},
	{248, "Medium Gray"},
	{244, "Dark Gray"},
	{188, "Light Beige"},
	{181, "Dusty Rose"},
	{223, "Peach"},
	{216, "Salmon"},
}

// Edge and grid line colors
var edgeColors = []struct {
	code int
	name string
}{
	{94, "Saddle Brown"},
	{130, "Dark Orange"},
	{136, "Dark Brown"},
	{88, "Dark Red"},
	{52, "Dark Maroon"},
	{22, "Dark Green"},
	{23, "Teal"},
	{24, "Dark Cyan"},
	{17, "Navy Blue"},
	{54, "Purple"},
	{232, "Black"},
	{236, "Dark Gray"},
	{240, "Gray"},
	{244, "Medium Gray"},
	{16, "True Black"},
}

// NewColorConfig creates a new color configuration screen.
func NewColorConfig(cfg *config.Config, onDone func()) *ColorConfigUI {
	cc := &ColorConfigUI{
		cfg:                cfg,
		onDone:             onDone,
		selectedBoardColor: cfg.Theme.Colors.BoardColor,
		selectedEdgeColor:  cfg.Theme.Colors.EdgeColor,
	}

	cc.colorList = tview.NewList()
	cc.colorList.SetBorder(true)
	cc.colorList.ShowSecondaryText(false)

	cc.populateColorList()

	cc.colorList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if cc.editingEdge {
			if index >= 0 && index < len(edgeColors) {
				cc.selectedEdgeColor = edgeColors[index].code
			}
		} else if index >= 0 && index < len(boardColors) {
			cc.selectedBoardColor = boardColors[index].code
		}
	})

	cc.colorList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if cc.editingEdge {
			if index >= 0 && index < len(edgeColors) {
				cc.cfg.Theme.Colors.EdgeColor = cc.selectedEdgeColor
				cc.persist()
				cc.editingEdge = false
				cc.populateColorList()
			}
		} else if index >= 0 && index < len(boardColors) {
			cc.cfg.Theme.Colors.BoardColor = cc.selectedBoardColor
			cc.cfg.Theme.Colors.BoardColorAlt = altShade(cc.selectedBoardColor)
			cc.persist()
			onDone()
		}
	})

	cc.preview = tview.NewBox()
	cc.preview.SetBorder(true)
	cc.preview.SetTitle(" Board Preview ")
	cc.preview.SetDrawFunc(cc.drawPreview)

	cc.flex = tview.NewFlex().
		AddItem(cc.colorList, 30, 0, true).
		AddItem(cc.preview, 0, 1, false)

	return cc
}

func (cc *ColorConfigUI) persist() {
	if err := cc.cfg.Save(); err != nil {
		slog.Warn("save config", "err", err)
	}
}

// altShade picks the checkerboard partner of a board color: the next grey
// step for greys, otherwise the same color.
func altShade(code int) int {
	switch {
	case code >= 232 && code < 255:
		return code + 1
	case code == 255:
		return 254
	}
	return code
}

// populateColorList fills the list with appropriate colors based on editing mode.
func (cc *ColorConfigUI) populateColorList() {
	cc.colorList.Clear()

	if cc.editingEdge {
		cc.colorList.SetTitle(" Select Edge Color (Tab: switch to board) ")
		for i, c := range edgeColors {
			cc.colorList.AddItem(fmt.Sprintf("[#%06x]████[-] %s (%d)",
				tcell.PaletteColor(c.code).Hex(), c.name, c.code),
				"", rune('a'+i), nil)
		}
		for i, c := range edgeColors {
			if c.code == cc.selectedEdgeColor {
				cc.colorList.SetCurrentItem(i)
				break
			}
		}
	} else {
		cc.colorList.SetTitle(" Select Board Color (Tab: switch to edges) ")
		for i, c := range boardColors {
			cc.colorList.AddItem(fmt.Sprintf("[#%06x]████[-] %s (%d)",
				tcell.PaletteColor(c.code).Hex(), c.name, c.code),
				"", rune('a'+i), nil)
		}
		for i, c := range boardColors {
			if c.code == cc.selectedBoardColor {
				cc.colorList.SetCurrentItem(i)
				break
			}
		}
	}
}

func (cc *ColorConfigUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	if width < 30 || height < 12 {
		return x, y, width, height
	}
	boardStyle := tcell.StyleDefault.Background(tcell.PaletteColor(cc.selectedBoardColor)).Foreground(tcell.ColorBlack)
	lineStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(cc.selectedEdgeColor))
	edgeStyle := boardStyle.Foreground(tcell.PaletteColor(cc.selectedEdgeColor))
	sym := cc.cfg.Theme.Symbols

	// A 3x3 sample with a few shaped edges.
	const size, w, h = 3, cellW, cellH
	sample := []types.PieceEdges{
		{Right: types.Convex, Bottom: types.Concave},
		{Left: types.Concave, Right: types.Concave, Bottom: types.Convex},
		{Left: types.Convex, Bottom: types.Convex},
		{Top: types.Convex, Right: types.Convex},
		{Top: types.Concave, Left: types.Concave, Right: types.Concave},
		{Top: types.Concave, Left: types.Convex},
	}
	startX, startY := x+2, y+1
	for r := 0; r <= size; r++ {
		for c := 0; c <= size; c++ {
			cx, cy := startX+c*w, startY+r*h
			screen.SetContent(cx, cy, gridRune(c, r, size+1, size+1, sym.Corner), nil, lineStyle)
			for i := 1; c < size && i < w; i++ {
				screen.SetContent(cx+i, cy, '─', nil, lineStyle)
			}
			for i := 1; r < size && i < h; i++ {
				screen.SetContent(cx, cy+i, '│', nil, lineStyle)
			}
		}
	}
	for i := 0; i < size*size; i++ {
		r, c := i/size, i%size
		ix, iy := startX+c*w+1, startY+r*h+1
		for dy := 0; dy < h-1; dy++ {
			for dx := 0; dx < w-1; dx++ {
				screen.SetContent(ix+dx, iy+dy, ' ', nil, boardStyle)
			}
		}
		if i >= len(sample) {
			screen.SetContent(ix+(w-1)/2, iy+(h-1)/2, sym.EmptySlot, nil, boardStyle)
			continue
		}
		drawCentered(screen, ix+1, iy+(h-1)/2, w-3, fmt.Sprintf("%d", i+1), boardStyle.Bold(true))
		e := sample[i]
		for _, g := range []struct {
			s      types.EdgeState
			dx, dy int
		}{{e.Top, (w - 1) / 2, 0}, {e.Bottom, (w - 1) / 2, h - 2}, {e.Left, 0, (h - 1) / 2}, {e.Right, w - 2, (h - 1) / 2}} {
			if rn := edgeRune(g.s, sym); rn != 0 {
				screen.SetContent(ix+g.dx, iy+g.dy, rn, nil, edgeStyle)
			}
		}
	}

	info := fmt.Sprintf("Board: %d  Edges: %d", cc.selectedBoardColor, cc.selectedEdgeColor)
	drawText(screen, startX, startY+size*h+2, info, tcell.StyleDefault)
	return x, y, width, height
}

// Flex returns the flex container for this UI.
func (cc *ColorConfigUI) Flex() *tview.Flex {
	return cc.flex
}

// SetInputCapture sets the input capture for the color list.
func (cc *ColorConfigUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	cc.colorList.SetInputCapture(capture)
}

// ToggleMode switches between board color and edge color editing.
func (cc *ColorConfigUI) ToggleMode() {
	cc.editingEdge = !cc.editingEdge
	cc.populateColorList()
}
