package ui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jigsaw-local/achievement"
	"jigsaw-local/config"
	"jigsaw-local/library"
	"jigsaw-local/puzzle"
	"jigsaw-local/types"
)

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "0:00", formatDuration(-time.Second))
	assert.Equal(t, "3:07", formatDuration(3*time.Minute+7*time.Second+900*time.Millisecond))
	assert.Equal(t, "1:02:03", formatDuration(time.Hour+2*time.Minute+3*time.Second))
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★☆☆☆☆", stars(1))
	assert.Equal(t, "★★★★★", stars(5))
	assert.Equal(t, "☆☆☆☆☆", stars(-2))
	assert.Equal(t, "★★★★★", stars(9))
}

func TestEdgeSummary(t *testing.T) {
	sym := config.DefaultTheme.Symbols
	e := types.PieceEdges{Top: types.Convex, Right: types.Flat, Bottom: types.Concave, Left: types.Flat}
	assert.Equal(t, "●-○-", edgeSummary(e, sym))
}

func TestRotationRune(t *testing.T) {
	assert.Equal(t, '↑', rotationRune(0, false))
	assert.Equal(t, '→', rotationRune(90, false))
	assert.Equal(t, '←', rotationRune(270, false))
	assert.Equal(t, '⇣', rotationRune(180, true))
}

func TestGridRune(t *testing.T) {
	assert.Equal(t, '┌', gridRune(0, 0, 3, 3, '+'))
	assert.Equal(t, '┘', gridRune(2, 2, 3, 3, '+'))
	assert.Equal(t, '┬', gridRune(1, 0, 3, 3, '+'))
	assert.Equal(t, '+', gridRune(1, 1, 3, 3, '+'))
}

func TestBoardSize(t *testing.T) {
	w, h := BoardSize(types.GridConfig{Rows: 2, Cols: 3})
	assert.Equal(t, 3*cellW+1, w)
	assert.Equal(t, 2*cellH+1, h)
}

func TestLevelSlider(t *testing.T) {
	var got []int
	s := NewLevelSlider("Rows", 2, 50, 2, func(v int) { got = append(got, v) })
	assert.True(t, s.HandleKey(key(tcell.KeyLeft)))
	assert.Equal(t, 2, s.Value(), "clamped at minimum")
	s.HandleKey(key(tcell.KeyRight))
	s.HandleKey(runeKey('l'))
	assert.Equal(t, 4, s.Value())
	assert.Equal(t, []int{3, 4}, got)

	width, filled := s.bar()
	assert.Equal(t, maxBarWidth, width)
	assert.Equal(t, 1, filled)
	s.SetValue(50)
	_, filled = s.bar()
	assert.Equal(t, maxBarWidth, filled)

	small := NewLevelSlider("x", 1, 5, 3, nil)
	width, filled = small.bar()
	assert.Equal(t, 5, width)
	assert.Equal(t, 3, filled)
}

func TestTextInput(t *testing.T) {
	in := NewTextInput("Name", "ab", 4, nil)
	in.HandleKey(key(tcell.KeyLeft))
	in.HandleKey(runeKey('x'))
	assert.Equal(t, "axb", in.Text())
	in.HandleKey(runeKey('y'))
	in.HandleKey(runeKey('z'))
	assert.Equal(t, "axyb", in.Text(), "limited to max length")
	in.HandleKey(key(tcell.KeyBackspace2))
	assert.Equal(t, "axb", in.Text())
	in.HandleKey(key(tcell.KeyHome))
	in.HandleKey(key(tcell.KeyDelete))
	assert.Equal(t, "xb", in.Text())
	in.HandleKey(runeKey('\x07'))
	assert.Equal(t, "xb", in.Text())
}

func TestEditorBuildsPuzzle(t *testing.T) {
	cfg := config.DefaultConfig
	var saved []types.PuzzleData
	done := 0
	e := NewEditor(&cfg, func(p types.PuzzleData) error {
		saved = append(saved, p)
		return nil
	}, func() { done++ })

	assert.Len(t, e.Boundaries(), puzzle.BoundaryCount(e.Grid()))

	e.HandleKey(key(tcell.KeyTab))
	e.HandleKey(key(tcell.KeyRight))
	assert.Equal(t, cfg.Game.DefaultRows+1, e.Grid().Rows)
	assert.Len(t, e.Boundaries(), puzzle.BoundaryCount(e.Grid()))

	e.HandleKey(key(tcell.KeyTab))
	e.HandleKey(key(tcell.KeyTab))
	e.HandleKey(key(tcell.KeyUp))
	for _, b := range e.Boundaries() {
		assert.Equal(t, types.Flat, b.State)
	}

	e.HandleKey(key(tcell.KeyTab))
	e.HandleKey(key(tcell.KeyRight))
	e.HandleKey(runeKey(' '))
	bs := e.Boundaries()
	assert.Equal(t, types.Convex, bs[1].State)
	e.HandleKey(key(tcell.KeyEnter))
	assert.Equal(t, types.Concave, e.Boundaries()[1].State)

	e.submit()
	assert.Empty(t, saved, "name is required")
	assert.True(t, e.isError)

	e.name.SetText("Lake")
	e.submit()
	require.Len(t, saved, 1)
	assert.Equal(t, "Lake", saved[0].Name)
	assert.Equal(t, types.Concave, saved[0].Boundaries[1].State)
	assert.Equal(t, puzzle.CalculateDifficultyFromConfig(saved[0].Grid, saved[0].Boundaries), saved[0].Difficulty)
	assert.Equal(t, 1, done)
}

func TestEditorShowsSaveFailure(t *testing.T) {
	cfg := config.DefaultConfig
	e := NewEditor(&cfg, func(types.PuzzleData) error { return errors.New("disk full") }, nil)
	e.name.SetText("x")
	e.submit()
	assert.True(t, e.isError)
	assert.Contains(t, e.status, "disk full")
}

func TestFormatStats(t *testing.T) {
	stats := types.UserStats{TotalGamesPlayed: 2, TotalTimeSpent: 125, BestTimes: map[string]int{"a": 50}}
	first, _ := achievement.Lookup("first-finish")
	out := FormatStats(stats, []achievement.Unlock{{Achievement: first, At: time.Now()}}, func(id string) string { return "Garden" })
	assert.Contains(t, out, "Games completed   2")
	assert.Contains(t, out, "2:05")
	assert.Contains(t, out, "Garden")
	assert.Contains(t, out, "[yellow]★[-] First Finish")
	assert.Contains(t, out, "☆ Regular")
}

func TestRadioSelect(t *testing.T) {
	var changes []int
	r := NewRadioSelect("Edges", []RadioOption{{"A", ""}, {"B", ""}, {"C", ""}}, 1, func(i int) { changes = append(changes, i) })
	assert.True(t, r.HandleKey(runeKey('j')))
	assert.True(t, r.HandleKey(key(tcell.KeyDown)))
	assert.Equal(t, 2, r.Selected(), "stays on the last option")
	r.HandleKey(key(tcell.KeyUp))
	r.HandleKey(runeKey('k'))
	assert.Equal(t, 0, r.Selected())
	assert.False(t, r.HandleKey(runeKey('x')))
	assert.Equal(t, []int{2, 1, 0}, changes)
}

func TestMenuButton(t *testing.T) {
	pressed := 0
	b := NewMenuButton("Save", true, func() { pressed++ })
	assert.True(t, b.HandleKey(key(tcell.KeyEnter)))
	assert.True(t, b.HandleKey(runeKey(' ')))
	assert.False(t, b.HandleKey(runeKey('s')))
	assert.Equal(t, 2, pressed)
	assert.Equal(t, len([]rune("▶ Save"))+2, b.Width())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "garden", truncate("garden", 6))
	assert.Equal(t, "gar…", truncate("garden", 4))
	assert.Equal(t, "", truncate("garden", 0))
}

func TestEditorCardReflectsState(t *testing.T) {
	cfg := config.DefaultConfig
	e := NewEditor(&cfg, func(types.PuzzleData) error { return nil }, nil)
	level := puzzle.CalculateDifficultyFromConfig(e.Grid(), e.Boundaries())
	assert.Equal(t, fmt.Sprintf("%d×%d %s", e.Grid().Rows, e.Grid().Cols, stars(level)), e.card.badge)
	assert.NotEmpty(t, e.card.footer)
	assert.False(t, e.card.alert)

	e.submit()
	assert.True(t, e.card.alert, "missing name marks the card")
	e.Reset()
	assert.False(t, e.card.alert)
}

func TestEditorTabsAtMaximumSize(t *testing.T) {
	cfg := config.DefaultConfig
	e := NewEditor(&cfg, nil, nil)
	e.rows.SetValue(library.MaxGridSize)
	e.cols.SetValue(library.MaxGridSize)
	e.edges.SetSelected(EdgesTabs)

	g := e.Grid()
	require.Equal(t, library.MaxGridSize, g.Rows)
	require.Equal(t, library.MaxGridSize, g.Cols)
	bs := e.Boundaries()
	require.Len(t, bs, puzzle.BoundaryCount(g))
	for _, b := range bs {
		require.NotEqual(t, types.Flat, b.State, b.ID)
	}
	assert.Equal(t, "50×50 ★★★★★", e.card.badge)
}
