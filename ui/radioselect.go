package ui

import (
	"github.com/gdamore/tcell/v2"
)

// RadioOption is one choice in a RadioSelect.
type RadioOption struct {
	Label       string
	Description string
}

// RadioSelect is a vertical group of mutually exclusive options.
type RadioSelect struct {
	label    string
	options  []RadioOption
	selected int
	focused  bool
	onChange func(int)
}

func NewRadioSelect(label string, options []RadioOption, initial int, onChange func(int)) *RadioSelect {
	r := &RadioSelect{label: label, options: options, onChange: onChange}
	if initial >= 0 && initial < len(options) {
		r.selected = initial
	}
	return r
}

// SetFocused sets the focus state.
func (r *RadioSelect) SetFocused(focused bool) {
	r.focused = focused
}

// HandleKey moves the selection with the arrows or j/k. Returns true if handled.
func (r *RadioSelect) HandleKey(event *tcell.EventKey) bool {
	delta := 0
	switch event.Key() {
	case tcell.KeyUp:
		delta = -1
	case tcell.KeyDown:
		delta = 1
	case tcell.KeyRune:
		switch event.Rune() {
		case 'k':
			delta = -1
		case 'j':
			delta = 1
		default:
			return false
		}
	default:
		return false
	}
	r.SetSelected(r.selected + delta)
	return true
}

// Draw renders the label and one row per option.
// Returns the number of rows used.
func (r *RadioSelect) Draw(screen tcell.Screen, x, y, width int) int {
	screen.SetContent(x, y, '◈', nil, cardStyle(MenuColors.TitleAccent))
	drawText(screen, x+2, y, r.label, cardStyle(MenuColors.Label))

	for i, opt := range r.options {
		row := y + 1 + i
		style := cardStyle(MenuColors.Unselected)
		bullet := '○'
		if i == r.selected {
			style = cardStyle(MenuColors.Selected)
			bullet = '●'
		}
		cursor := ' '
		if r.focused && i == r.selected {
			cursor = '▸'
		}
		screen.SetContent(x+2, row, cursor, nil, cardStyle(MenuColors.Selected))
		screen.SetContent(x+4, row, bullet, nil, style)
		drawText(screen, x+6, row, opt.Label, style)
		if opt.Description != "" {
			col := x + 7 + len([]rune(opt.Label))
			drawText(screen, col, row, truncate(opt.Description, width-(col-x)), cardStyle(MenuColors.Hint))
		}
	}
	return len(r.options) + 1
}

// Selected returns the currently selected index.
func (r *RadioSelect) Selected() int {
	return r.selected
}

// SetSelected selects index and reports a change. Out of range indexes are ignored.
func (r *RadioSelect) SetSelected(index int) {
	if index < 0 || index >= len(r.options) || index == r.selected {
		return
	}
	r.selected = index
	if r.onChange != nil {
		r.onChange(r.selected)
	}
}
