package ui

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// TextInput is a single-line text field for menu cards.
type TextInput struct {
	label    string
	text     []rune
	maxLen   int
	focused  bool
	cursor   int
	onChange func(string)
}

// NewTextInput creates a text field holding at most maxLen characters.
func NewTextInput(label, initial string, maxLen int, onChange func(string)) *TextInput {
	t := &TextInput{
		label:    label,
		maxLen:   maxLen,
		onChange: onChange,
	}
	t.text = []rune(initial)
	if len(t.text) > maxLen {
		t.text = t.text[:maxLen]
	}
	t.cursor = len(t.text)
	return t
}

// SetFocused sets the focus state.
func (t *TextInput) SetFocused(focused bool) {
	t.focused = focused
}

// HandleKey processes keyboard input. Returns true if handled.
func (t *TextInput) HandleKey(event *tcell.EventKey) bool {
	switch event.Key() {
	case tcell.KeyLeft:
		if t.cursor > 0 {
			t.cursor--
		}
		return true
	case tcell.KeyRight:
		if t.cursor < len(t.text) {
			t.cursor++
		}
		return true
	case tcell.KeyHome:
		t.cursor = 0
		return true
	case tcell.KeyEnd:
		t.cursor = len(t.text)
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if t.cursor > 0 {
			t.text = append(t.text[:t.cursor-1], t.text[t.cursor:]...)
			t.cursor--
			t.changed()
		}
		return true
	case tcell.KeyDelete:
		if t.cursor < len(t.text) {
			t.text = append(t.text[:t.cursor], t.text[t.cursor+1:]...)
			t.changed()
		}
		return true
	case tcell.KeyRune:
		ch := event.Rune()
		if !unicode.IsPrint(ch) || len(t.text) >= t.maxLen {
			return true
		}
		t.text = append(t.text[:t.cursor], append([]rune{ch}, t.text[t.cursor:]...)...)
		t.cursor++
		t.changed()
		return true
	}
	return false
}

func (t *TextInput) changed() {
	if t.onChange != nil {
		t.onChange(string(t.text))
	}
}

// Draw renders the text field.
// Returns the number of rows used.
func (t *TextInput) Draw(screen tcell.Screen, x, y, width int) int {
	bgStyle := tcell.StyleDefault.Background(MenuColors.CardBG)
	labelStyle := tcell.StyleDefault.Foreground(MenuColors.Label).Background(MenuColors.CardBG)
	accentStyle := tcell.StyleDefault.Foreground(MenuColors.TitleAccent).Background(MenuColors.CardBG)
	selectedStyle := tcell.StyleDefault.Foreground(MenuColors.Selected).Background(MenuColors.CardBG)
	inputStyle := tcell.StyleDefault.Foreground(MenuColors.Label).Background(MenuColors.InputBG)
	cursorStyle := tcell.StyleDefault.Foreground(MenuColors.CardBG).Background(MenuColors.Selected)

	col := x

	if t.focused {
		screen.SetContent(col, y, '▸', nil, selectedStyle)
	} else {
		screen.SetContent(col, y, ' ', nil, bgStyle)
	}
	col += 2

	screen.SetContent(col, y, '◈', nil, accentStyle)
	col += 2

	for _, ch := range t.label {
		screen.SetContent(col, y, ch, nil, labelStyle)
		col++
	}
	col += 3

	screen.SetContent(col, y, '[', nil, labelStyle)
	col++
	screen.SetContent(col, y, ' ', nil, inputStyle)
	col++

	inputStart := col
	for i, ch := range t.text {
		style := inputStyle
		if t.focused && i == t.cursor {
			style = cursorStyle
		}
		screen.SetContent(col, y, ch, nil, style)
		col++
	}
	if t.focused && t.cursor >= len(t.text) {
		screen.SetContent(col, y, ' ', nil, cursorStyle)
		col++
	}
	for col < inputStart+t.maxLen+1 {
		screen.SetContent(col, y, ' ', nil, inputStyle)
		col++
	}
	screen.SetContent(col, y, ']', nil, labelStyle)

	return 1
}

// Text returns the current text.
func (t *TextInput) Text() string {
	return string(t.text)
}

// SetText replaces the text and moves the cursor to the end.
func (t *TextInput) SetText(s string) {
	t.text = []rune(s)
	if len(t.text) > t.maxLen {
		t.text = t.text[:t.maxLen]
	}
	t.cursor = len(t.text)
	t.changed()
}
