package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jigsaw-local/config"
	"jigsaw-local/types"
)

// SetupChoice is what the player picked on the setup screen.
type SetupChoice struct {
	Puzzle         types.PuzzleData
	EnableRotation bool
	EnableFlip     bool
	Resume         bool
}

// SetupActions are the callbacks behind the setup screen buttons.
type SetupActions struct {
	OnStart  func(SetupChoice)
	OnEditor func()
	OnSaves  func()
	OnStats  func()
	OnColors func()
	OnCancel func()
}

// GameSetupUI provides a form for choosing a puzzle and starting a game.
type GameSetupUI struct {
	form     *tview.Form
	flex     *tview.Flex
	puzzles  []types.PuzzleData
	dropdown *tview.DropDown
	actions  SetupActions

	choice SetupChoice
	index  int
}

// NewGameSetup creates a new game setup form.
func NewGameSetup(puzzles []types.PuzzleData, game config.GameConfig, actions SetupActions) *GameSetupUI {
	setup := &GameSetupUI{
		actions: actions,
		choice: SetupChoice{
			EnableRotation: game.EnableRotation,
			EnableFlip:     game.EnableFlip,
			Resume:         true,
		},
	}

	form := tview.NewForm()

	form.AddDropDown("Puzzle", nil, 0, nil)
	setup.dropdown = form.GetFormItem(0).(*tview.DropDown)

	form.AddCheckbox("Rotation", game.EnableRotation, func(checked bool) {
		setup.choice.EnableRotation = checked
	})
	form.AddCheckbox("Flip", game.EnableFlip, func(checked bool) {
		setup.choice.EnableFlip = checked
	})
	form.AddCheckbox("Continue saved game", true, func(checked bool) {
		setup.choice.Resume = checked
	})

	form.AddButton("Start", func() {
		if setup.index < 0 || setup.index >= len(setup.puzzles) {
			return
		}
		c := setup.choice
		c.Puzzle = setup.puzzles[setup.index]
		actions.OnStart(c)
	})
	form.AddButton("New Puzzle", func() {
		if actions.OnEditor != nil {
			actions.OnEditor()
		}
	})
	form.AddButton("Saved", func() {
		if actions.OnSaves != nil {
			actions.OnSaves()
		}
	})
	form.AddButton("Stats", func() {
		if actions.OnStats != nil {
			actions.OnStats()
		}
	})
	form.AddButton("Colors", func() {
		if actions.OnColors != nil {
			actions.OnColors()
		}
	})
	form.AddButton("Quit", func() {
		actions.OnCancel()
	})

	form.SetBorder(true)
	form.SetTitle(" New Game ")
	form.SetTitleAlign(tview.AlignCenter)
	form.SetButtonBackgroundColor(tcell.ColorDarkCyan)
	form.SetButtonTextColor(tcell.ColorWhite)

	helpText := tview.NewTextView().
		SetText("Tab/Shift+Tab: navigate fields  |  Arrow keys: change dropdown  |  Enter: confirm").
		SetTextAlign(tview.AlignCenter)
	helpText.SetTextColor(tcell.ColorGray)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(helpText, 1, 0, false)

	setup.form = form
	setup.flex = flex
	setup.SetPuzzles(puzzles, "")
	return setup
}

// SetPuzzles replaces the puzzle choices and selects selectID when present.
func (s *GameSetupUI) SetPuzzles(puzzles []types.PuzzleData, selectID string) {
	s.puzzles = puzzles
	options := make([]string, len(puzzles))
	s.index = 0
	for i, p := range puzzles {
		options[i] = fmt.Sprintf("%s  %dx%d  %s", p.Name, p.Grid.Rows, p.Grid.Cols, stars(p.Difficulty))
		if p.ID == selectID {
			s.index = i
		}
	}
	s.dropdown.SetOptions(options, func(option string, index int) {
		s.index = index
	})
	if len(options) > 0 {
		s.dropdown.SetCurrentOption(s.index)
	}
}

// Form returns the flex container with form and help text.
func (s *GameSetupUI) Form() *tview.Flex {
	return s.flex
}

// SetInputCapture sets the input capture function for the form.
func (s *GameSetupUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	s.form.SetInputCapture(capture)
}
