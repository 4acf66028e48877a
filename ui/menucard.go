package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// MenuCard is the rounded frame behind the editor. Its header carries the
// title on the left and a badge on the right; the bottom row holds a key hint.
type MenuCard struct {
	*tview.Box
	title  string
	badge  string
	footer string
	alert  bool
}

func NewMenuCard(title string) *MenuCard {
	return &MenuCard{Box: tview.NewBox(), title: title}
}

// SetBadge sets the right-aligned header text, such as grid size and stars.
func (c *MenuCard) SetBadge(badge string) {
	c.badge = badge
}

// SetFooter sets the key hint drawn inside the bottom border.
func (c *MenuCard) SetFooter(footer string) {
	c.footer = footer
}

// SetAlert draws the border in the error color while the card shows a problem.
func (c *MenuCard) SetAlert(alert bool) {
	c.alert = alert
}

func (c *MenuCard) borderStyle() tcell.Style {
	if c.alert {
		return cardStyle(MenuColors.Error)
	}
	return cardStyle(MenuColors.BorderFocus)
}

// rule draws one horizontal border row from left to right corner.
func (c *MenuCard) rule(screen tcell.Screen, y int, left, right rune) {
	x, _, width, _ := c.GetInnerRect()
	style := c.borderStyle()
	screen.SetContent(x, y, left, nil, style)
	for col := x + 1; col < x+width-1; col++ {
		screen.SetContent(col, y, '─', nil, style)
	}
	screen.SetContent(x+width-1, y, right, nil, style)
}

// Draw fills the card, frames it and writes the header and footer.
func (c *MenuCard) Draw(screen tcell.Screen) {
	c.Box.DrawForSubclass(screen, c)
	x, y, width, height := c.GetInnerRect()
	if width < 10 || height < 5 {
		return
	}

	bg := tcell.StyleDefault.Background(MenuColors.CardBG)
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			screen.SetContent(col, row, ' ', nil, bg)
		}
	}
	c.rule(screen, y, '╭', '╮')
	c.rule(screen, y+height-1, '╰', '╯')
	for row := y + 1; row < y+height-1; row++ {
		screen.SetContent(x, row, '│', nil, c.borderStyle())
		screen.SetContent(x+width-1, row, '│', nil, c.borderStyle())
	}

	headerY := y + 2
	screen.SetContent(x+3, headerY, '◩', nil, cardStyle(MenuColors.TitleAccent))
	drawText(screen, x+6, headerY, c.title, cardStyle(MenuColors.Title).Bold(true))
	if c.badge != "" {
		room := width - 10 - len([]rune(c.title))
		badge := truncate(c.badge, room)
		drawText(screen, x+width-3-len([]rune(badge)), headerY, badge, cardStyle(MenuColors.Selected))
	}
	c.rule(screen, y+4, '├', '┤')

	if c.footer != "" {
		drawText(screen, x+3, y+height-2, truncate(c.footer, width-6), cardStyle(MenuColors.Hint))
	}
}

// DrawDivider draws a horizontal divider at row divY.
func (c *MenuCard) DrawDivider(screen tcell.Screen, divY int) {
	c.rule(screen, divY, '├', '┤')
}
