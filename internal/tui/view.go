package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/topthree/internal/constants"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/tui/components/heatbar"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.state == stateConfirmSubmit && m.form != nil {
		return docStyle.Render(m.form.View())
	}

	sections := []string{
		m.viewHeader(),
		m.viewStats(),
		"",
	}
	for i := range m.inputs {
		sections = append(sections, m.viewSlot(i))
	}
	sections = append(sections, m.viewStatus(), m.help.View(m.keys))

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewHeader() string {
	state := m.ctrl.State()
	label := state.String()
	if state == models.DaySubmitted {
		label = doneStyle.Render(label)
	} else {
		label = mutedStyle.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("Top Three"),
		"  ",
		m.clock.View(),
		"  ",
		label,
	)
}

func (m Model) viewStats() string {
	stats := m.ctrl.Stats()
	return fmt.Sprintf("Streak %d  Completions %d  Heat %s  %s",
		stats.Streak,
		stats.TotalCompletions,
		heatbar.Flames(stats.HeatLevel),
		heatbar.Render(m.ctrl.Timeline(TimelineDays)),
	)
}

func (m Model) viewSlot(i int) string {
	slot := m.ctrl.Slots()[i]
	check := "[ ]"
	if slot.Completed {
		check = doneStyle.Render("[x]")
	}

	lines := []string{fmt.Sprintf("%s %s", check, m.inputs[i].View())}
	if msg := m.ctrl.SlotError(i); msg != "" {
		lines = append(lines, dangerStyle.Render(msg))
	}

	style := slotStyle
	if i == m.focus {
		style = focusedSlotStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) viewStatus() string {
	var parts []string
	if m.submitting {
		parts = append(parts, m.spinner.View())
	}
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, dangerStyle.Render(m.status))
		} else {
			parts = append(parts, warningStyle.Render(m.status))
		}
	}
	if len(parts) == 0 {
		return mutedStyle.Render(fmt.Sprintf("%d/%d done", m.completed(), constants.SlotCount))
	}
	return strings.Join(parts, " ")
}
