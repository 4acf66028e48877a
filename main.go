// jigsaw-local is a terminal application to solve jigsaw puzzles offline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jigsaw-local/achievement"
	"jigsaw-local/config"
	"jigsaw-local/engine"
	"jigsaw-local/library"
	"jigsaw-local/puzzle"
	"jigsaw-local/save"
	"jigsaw-local/types"
	"jigsaw-local/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

// Command-line flags
var (
	flagRows     = flag.Int("rows", 0, "Rows for a quick random puzzle (2-50)")
	flagCols     = flag.Int("cols", 0, "Columns for a quick random puzzle (2-50)")
	flagPuzzle   = flag.String("puzzle", "", "Puzzle id to play")
	flagRotation = flag.Bool("rotation", false, "Enable piece rotation")
	flagFlip     = flag.Bool("flip", false, "Enable piece flipping")
	flagPlay     = flag.Bool("play", false, "Start a game immediately")
	flagLogLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flagVersion  = flag.Bool("version", false, "Print version and exit")
)

var app *tview.Application
var rootPage *tview.Pages
var board *ui.BoardUI
var tray *ui.TrayUI
var gameHint *tview.TextView
var setupUI *ui.GameSetupUI
var editor *ui.EditorUI
var saveBrowser *ui.SaveBrowserUI
var statsView *ui.StatsUI
var cfg *config.Config
var logger *slog.Logger
var saves *save.Store
var tracker *achievement.Tracker
var catalog *library.Catalog

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("jigsaw-local %s\n", Version)
		return
	}

	closeLog, err := setupLogger(*flagLogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jigsaw-local: %s\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cfg, err = config.InitConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "jigsaw-local: %s\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	ctx := context.Background()
	saves = save.NewStore(config.SavesDir(), cfg.Game.SaveTTL(), logger)
	if n, err := saves.Purge(ctx); err != nil {
		logger.Warn("purge saves", "err", err)
	} else if n > 0 {
		logger.Info("purged stale saves", "count", n)
	}
	tracker, err = achievement.NewTracker(config.StatsFile(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jigsaw-local: %s\n", err)
		os.Exit(1)
	}
	catalog = library.NewCatalog(config.PuzzlesDir())
	puzzles, err := catalog.List(ctx)
	if err != nil {
		logger.Warn("list puzzles", "err", err)
		puzzles = library.Builtin()
	}

	quickStart := *flagPlay || *flagPuzzle != "" || *flagRows > 0 || *flagCols > 0

	app = tview.NewApplication()
	rootPage = tview.NewPages()
	rootPage.SetBorder(true).SetTitle(" ◩ jigsaw ")

	// Game view setup
	gameHint = tview.NewTextView()
	gameHint.SetBorder(true)
	gameHint.SetBorderPadding(0, 0, 1, 1)
	gameHint.SetTitle(" Status ")
	gameHint.SetTitleAlign(tview.AlignLeft)
	board = ui.NewBoard(app, cfg, gameHint)
	tray = ui.NewTray(cfg, func(piece int) {
		board.Hold(piece)
		app.SetFocus(board.Box)
	})
	gameFrame := ui.CreateGameLayout(board, tray, gameHint)

	board.Box.SetInputCapture(boardKeys)
	tray.List().SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyTab:
			app.SetFocus(board.Box)
			return nil
		case event.Key() == tcell.KeyRune && event.Rune() == 'j':
			return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
		case event.Key() == tcell.KeyRune && event.Rune() == 'k':
			return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
		case event.Key() == tcell.KeyRune && strings.ContainsRune("uUrfspxq", event.Rune()):
			return boardKeys(event)
		}
		return event
	})

	setupUI = ui.NewGameSetup(puzzles, cfg.Game, ui.SetupActions{
		OnStart: startGame,
		OnEditor: func() {
			editor.Reset()
			rootPage.SwitchToPage("editor")
		},
		OnSaves: func() {
			saveBrowser.Refresh()
			rootPage.SwitchToPage("saves")
		},
		OnStats: func() {
			statsView.Show(tracker.Stats(), tracker.Unlocked(), puzzleName)
			rootPage.SwitchToPage("stats")
		},
		OnColors: func() {
			rootPage.SwitchToPage("colors")
		},
		OnCancel: func() {
			app.Stop()
		},
	})

	editor = ui.NewEditor(cfg, func(p types.PuzzleData) error {
		if err := catalog.Add(context.Background(), p); err != nil {
			return err
		}
		logger.Info("puzzle created", "puzzle", p.ID, "rows", p.Grid.Rows, "cols", p.Grid.Cols, "difficulty", p.Difficulty)
		refreshPuzzles(p.ID)
		return nil
	}, func() {
		rootPage.SwitchToPage("setup")
	})

	saveBrowser = ui.NewSaveBrowser(saves, lookupPuzzle, func(puzzleID string) {
		p, ok := lookupPuzzle(puzzleID)
		if !ok {
			showMessage("That puzzle no longer exists.")
			return
		}
		startGame(ui.SetupChoice{Puzzle: p, EnableRotation: cfg.Game.EnableRotation, EnableFlip: cfg.Game.EnableFlip, Resume: true})
	}, func() {
		rootPage.SwitchToPage("setup")
	})

	statsView = ui.NewStatsView(func() {
		rootPage.SwitchToPage("setup")
	})

	colorConfig := ui.NewColorConfig(cfg, func() {
		board.SetConfig(cfg)
		rootPage.SwitchToPage("setup")
	})
	colorConfig.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			rootPage.SwitchToPage("setup")
			return nil
		}
		if event.Key() == tcell.KeyTab {
			colorConfig.ToggleMode()
			return nil
		}
		return event
	})

	// Unlocks are recorded before the completion callbacks run, so their
	// modals sit under the completion message.
	tracker.OnUnlock(func(u achievement.Unlock) {
		logger.Info("achievement unlocked", "id", u.ID)
		showMessage(fmt.Sprintf("Achievement unlocked\n\n★ %s\n%s", u.Name, u.Description))
	})

	rootPage.AddPage("setup", ui.CreateCenteredForm(setupUI.Form(), 72), true, !quickStart)
	rootPage.AddPage("gameview", gameFrame, true, quickStart)
	rootPage.AddPage("editor", ui.CreateCenteredForm(editor, 72), true, false)
	rootPage.AddPage("saves", saveBrowser.Flex(), true, false)
	rootPage.AddPage("stats", ui.CreateCenteredForm(statsView.View(), 72), true, false)
	rootPage.AddPage("colors", colorConfig.Flex(), true, false)

	if quickStart {
		if err := quickStartGame(); err != nil {
			logger.Warn("quick start", "err", err)
			rootPage.SwitchToPage("setup")
			showMessage(err.Error())
		}
	}

	err = app.SetRoot(rootPage, true).Run()
	board.Close()
	if err != nil {
		logger.Error("ui stopped", "err", err)
		os.Exit(1)
	}
}

// boardKeys handles game keys for the board and, through the tray, for the whole game view.
func boardKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		board.MoveSelection(0, -1)
	case tcell.KeyDown:
		board.MoveSelection(0, 1)
	case tcell.KeyLeft:
		board.MoveSelection(-1, 0)
	case tcell.KeyRight:
		board.MoveSelection(1, 0)
	case tcell.KeyEnter:
		board.Activate()
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		board.ReturnSelected()
	case tcell.KeyTab:
		app.SetFocus(tray.List())
	case tcell.KeyRune:
		switch event.Rune() {
		case 'h':
			board.MoveSelection(-1, 0)
		case 'j':
			board.MoveSelection(0, 1)
		case 'k':
			board.MoveSelection(0, -1)
		case 'l':
			board.MoveSelection(1, 0)
		case 'u':
			board.Undo()
		case 'U':
			board.Redo()
		case 'r':
			board.Rotate()
		case 'f':
			board.Flip()
		case 's':
			board.Shuffle()
		case 'p':
			board.TogglePause()
		case 'x':
			board.Restart()
		case 'q':
			if board.HeldPiece() >= 0 {
				board.ResetSelection()
			} else {
				board.Close()
				refreshPuzzles("")
				rootPage.SwitchToPage("setup")
			}
		}
	}
	return nil
}

// startGame opens a session for the chosen puzzle and shows the game view.
func startGame(choice ui.SetupChoice) {
	board.Close()

	opts := engine.SessionOptions{
		EnableRotation: choice.EnableRotation,
		EnableFlip:     choice.EnableFlip,
		HistoryDepth:   cfg.Game.HistoryDepth,
		Logger:         logger,
		Stats:          tracker,
	}
	if cfg.Game.Autosave {
		opts.Persister = saves
	}
	session := engine.NewSession(choice.Puzzle, opts)
	session.OnComplete(func(rec types.CompletionRecord) {
		msg := fmt.Sprintf("Puzzle complete!\n\n%s in %s with %d moves.",
			choice.Puzzle.Name, (time.Duration(rec.Seconds) * time.Second).String(), rec.Moves)
		if best, ok := tracker.BestTime(rec.PuzzleID); ok && best == rec.Seconds {
			msg += "\nNew best time!"
		}
		showMessage(msg)
	})

	board.ConnectSession(session)
	restored := false
	if choice.Resume {
		rec, err := saves.Load(context.Background(), choice.Puzzle.ID)
		if err != nil {
			logger.Warn("load save", "puzzle", choice.Puzzle.ID, "err", err)
		}
		if rec != nil {
			restored = session.Restore(rec)
		}
		if restored {
			// closed games are saved paused; the gap is not play time
			session.Resume()
		}
	}
	if !restored {
		session.Start()
	}
	rootPage.SwitchToPage("gameview")
	app.SetFocus(tray.List())
}

// quickStartGame starts the puzzle named by flags, or a random puzzle of the requested size.
func quickStartGame() error {
	choice := ui.SetupChoice{
		EnableRotation: cfg.Game.EnableRotation,
		EnableFlip:     cfg.Game.EnableFlip,
		Resume:         true,
	}
	switch {
	case *flagPuzzle != "":
		p, err := catalog.Get(context.Background(), *flagPuzzle)
		if err != nil {
			return fmt.Errorf("puzzle %q: %w", *flagPuzzle, err)
		}
		choice.Puzzle = p
	default:
		grid := types.GridConfig{
			Rows:        cfg.Game.DefaultRows,
			Cols:        cfg.Game.DefaultCols,
			PieceWidth:  cfg.Game.PieceWidth,
			PieceHeight: cfg.Game.PieceHeight,
		}
		if *flagRows > 0 {
			grid.Rows = *flagRows
		}
		if *flagCols > 0 {
			grid.Cols = *flagCols
		}
		if err := library.ValidateGrid(grid); err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		bs := puzzle.RandomizeBoundaries(puzzle.GenerateInitialBoundaries(grid), rng)
		p, err := library.NewPuzzle(fmt.Sprintf("Quick %dx%d", grid.Rows, grid.Cols), "", grid, bs, time.Now())
		if err != nil {
			return err
		}
		choice.Puzzle = p
		choice.Resume = false
	}
	startGame(choice)
	return nil
}

// applyFlags overrides config values from the command line.
func applyFlags(c *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rotation":
			c.Game.EnableRotation = *flagRotation
		case "flip":
			c.Game.EnableFlip = *flagFlip
		}
	})
}

func setupLogger(level string) (func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	path, err := config.LogFile()
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	logger.Debug("starting", "version", Version)
	return func() { f.Close() }, nil
}

func lookupPuzzle(id string) (types.PuzzleData, bool) {
	p, err := catalog.Get(context.Background(), id)
	if err != nil {
		if !errors.Is(err, library.ErrNotFound) {
			logger.Warn("read puzzle", "puzzle", id, "err", err)
		}
		return types.PuzzleData{}, false
	}
	return p, true
}

func puzzleName(id string) string {
	if p, ok := lookupPuzzle(id); ok {
		return p.Name
	}
	return id
}

func refreshPuzzles(selectID string) {
	puzzles, err := catalog.List(context.Background())
	if err != nil {
		logger.Warn("list puzzles", "err", err)
		return
	}
	setupUI.SetPuzzles(puzzles, selectID)
}

// showMessage stacks a modal over the current page.
func showMessage(text string) {
	name := fmt.Sprintf("message-%d", time.Now().UnixNano())
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			rootPage.RemovePage(name)
		})
	rootPage.AddPage(name, modal, true, true)
}
