package clock

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/topthree/internal/constants"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	momentumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// TickMsg carries the wall-clock time once a minute.
type TickMsg time.Time

// Model shows the current time and how long the current streak has been running.
type Model struct {
	Time          time.Time
	MomentumHours int
	Streak        int
}

func New(now time.Time) Model {
	return Model{Time: now}
}

func tick() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(TickMsg); ok {
		m.Time = time.Time(msg)
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	now := timeStyle.Render(m.Time.Format("Mon Jan 2 "+constants.TimeFormat))
	if m.Streak == 0 {
		return now
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		now,
		"  ",
		momentumStyle.Render(fmt.Sprintf("%dh of momentum", m.MomentumHours)),
	)
}
