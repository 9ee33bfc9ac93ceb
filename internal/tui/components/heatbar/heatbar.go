// Package heatbar renders the recent heat timeline as a row of colored cells.
package heatbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/topthree/internal/heat"
)

// Palette from cold to hot, indexed by heat level.
var palette = [heat.MaxLevel + 1]lipgloss.Color{"237", "94", "130", "166", "202", "196"}

var (
	missStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Cell glyphs: a full day, a day with some slots done, and a day with none.
const (
	FullCell    = "■"
	PartialCell = "▪"
	MissCell    = "·"
)

// Render draws one cell per day, oldest first. Full days are filled and
// colored by their heat level; partial days do not count toward the streak.
func Render(days []heat.DayHeat) string {
	var b strings.Builder
	for _, d := range days {
		switch {
		case d.Completed <= 0:
			b.WriteString(missStyle.Render(MissCell))
			continue
		case !d.Full():
			b.WriteString(partialStyle.Render(PartialCell))
			continue
		}
		level := d.Level
		if level < 0 {
			level = 0
		}
		if level > heat.MaxLevel {
			level = heat.MaxLevel
		}
		b.WriteString(lipgloss.NewStyle().Foreground(palette[level]).Render(FullCell))
	}
	return b.String()
}

// Flames renders the current heat level as a fixed-width gauge.
func Flames(level int) string {
	if level < 0 {
		level = 0
	}
	if level > heat.MaxLevel {
		level = heat.MaxLevel
	}
	hot := lipgloss.NewStyle().Foreground(palette[level]).Render(strings.Repeat("▮", level))
	cold := missStyle.Render(strings.Repeat("▯", heat.MaxLevel-level))
	return hot + cold
}
