package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"jigsaw-local/achievement"
	"jigsaw-local/types"
)

// StatsUI shows lifetime statistics and achievements.
type StatsUI struct {
	text   *tview.TextView
	onDone func()
}

func NewStatsView(onDone func()) *StatsUI {
	s := &StatsUI{text: tview.NewTextView(), onDone: onDone}
	s.text.SetDynamicColors(true)
	s.text.SetBorder(true)
	s.text.SetTitle(" Statistics ")
	s.text.SetBorderPadding(1, 1, 2, 2)
	s.text.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			if s.onDone != nil {
				s.onDone()
			}
			return nil
		}
		return event
	})
	return s
}

func (s *StatsUI) View() *tview.TextView {
	return s.text
}

// Show renders stats; names maps puzzle ids to display names.
func (s *StatsUI) Show(stats types.UserStats, unlocked []achievement.Unlock, names func(id string) string) {
	s.text.SetText(FormatStats(stats, unlocked, names))
	s.text.ScrollToBeginning()
}

// FormatStats renders statistics and achievements as tview markup.
func FormatStats(stats types.UserStats, unlocked []achievement.Unlock, names func(id string) string) string {
	var b strings.Builder
	b.WriteString("[white::b]Totals[-:-:-]\n")
	b.WriteString("[dimgray]──────────────────────[-:-:-]\n")
	b.WriteString(fmt.Sprintf("Games completed   %d\n", stats.TotalGamesPlayed))
	b.WriteString(fmt.Sprintf("Time played       %s\n", formatDuration(time.Duration(stats.TotalTimeSpent)*time.Second)))
	b.WriteString(fmt.Sprintf("Correct placements %d\n", stats.TotalSuccessMovements))

	if len(stats.BestTimes) > 0 {
		b.WriteString("\n[white::b]Best times[-:-:-]\n")
		b.WriteString("[dimgray]──────────────────────[-:-:-]\n")
		ids := make([]string, 0, len(stats.BestTimes))
		for id := range stats.BestTimes {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return stats.BestTimes[ids[i]] < stats.BestTimes[ids[j]]
		})
		for _, id := range ids {
			name := id
			if names != nil {
				name = names(id)
			}
			b.WriteString(fmt.Sprintf("%-24s %s\n", tview.Escape(truncate(name, 24)),
				formatDuration(time.Duration(stats.BestTimes[id])*time.Second)))
		}
	}

	b.WriteString("\n[white::b]Achievements[-:-:-]\n")
	b.WriteString("[dimgray]──────────────────────[-:-:-]\n")
	earned := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		earned[u.ID] = u.At
	}
	for _, a := range achievement.Definitions {
		if at, ok := earned[a.ID]; ok {
			b.WriteString(fmt.Sprintf("[yellow]★[-] %-16s [dimgray]%s · %s[-]\n", a.Name, a.Description, at.Local().Format("2006-01-02")))
		} else {
			b.WriteString(fmt.Sprintf("[dimgray]☆ %-16s %s[-]\n", a.Name, a.Description))
		}
	}
	return b.String()
}
