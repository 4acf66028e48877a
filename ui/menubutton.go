package ui

import (
	"github.com/gdamore/tcell/v2"
)

// MenuButton is a single-line button drawn on a menu card.
type MenuButton struct {
	label    string
	primary  bool
	focused  bool
	onSelect func()
}

func NewMenuButton(label string, primary bool, onSelect func()) *MenuButton {
	return &MenuButton{label: label, primary: primary, onSelect: onSelect}
}

// SetFocused sets the focus state.
func (b *MenuButton) SetFocused(focused bool) {
	b.focused = focused
}

// HandleKey fires the button on enter or space. Returns true if handled.
func (b *MenuButton) HandleKey(event *tcell.EventKey) bool {
	if event.Key() != tcell.KeyEnter && !(event.Key() == tcell.KeyRune && event.Rune() == ' ') {
		return false
	}
	if b.onSelect != nil {
		b.onSelect()
	}
	return true
}

func (b *MenuButton) text() string {
	if b.primary {
		return "▶ " + b.label
	}
	return b.label
}

// Draw renders the button at the given position and returns its width.
// Focused buttons are filled, the others are bracketed.
func (b *MenuButton) Draw(screen tcell.Screen, x, y int) int {
	width := b.Width()
	if b.focused {
		style := tcell.StyleDefault.Foreground(MenuColors.ButtonText).Background(MenuColors.ButtonFocus)
		for i := 0; i < width; i++ {
			screen.SetContent(x+i, y, ' ', nil, style)
		}
		drawText(screen, x+1, y, b.text(), style)
		return width
	}
	screen.SetContent(x, y, '[', nil, cardStyle(MenuColors.Border))
	drawText(screen, x+1, y, b.text(), cardStyle(MenuColors.Hint))
	screen.SetContent(x+width-1, y, ']', nil, cardStyle(MenuColors.Border))
	return width
}

// Width returns the button width including its padding or brackets.
func (b *MenuButton) Width() int {
	return len([]rune(b.text())) + 2
}
