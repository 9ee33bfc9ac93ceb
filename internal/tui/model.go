// Package tui is the interactive dashboard for today's three slots.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/topthree/internal/constants"
	"github.com/julianstephens/topthree/internal/heat"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/today"
	"github.com/julianstephens/topthree/internal/tui/components/clock"
)

// TimelineDays is how many days the heat bar shows.
const TimelineDays = 14

type sessionState int

const (
	stateSlots sessionState = iota
	stateConfirmSubmit
)

// Controller is the subset of today.Controller the dashboard drives.
type Controller interface {
	Slots() [constants.SlotCount]models.TaskSlot
	SlotError(index int) string
	SetSlotText(index int, text string) error
	ToggleSlot(index int) error
	Submit(ctx context.Context) (today.SubmitOutcome, error)
	Stats() models.DerivedStats
	State() models.DayState
	Pending() bool
	Timeline(days int) []heat.DayHeat
	Now() time.Time
}

type ConfirmFormModel struct {
	Confirmed bool
}

type submitDoneMsg struct {
	outcome today.SubmitOutcome
	err     error
}

type Model struct {
	ctrl       Controller
	ctx        context.Context
	state      sessionState
	keys       KeyMap
	help       help.Model
	inputs     [constants.SlotCount]textinput.Model
	focus      int
	clock      clock.Model
	spinner    spinner.Model
	form       *huh.Form
	confirm    *ConfirmFormModel
	submitting bool
	status     string
	statusErr  bool
	quitting   bool
	width      int
	height     int
}

func NewModel(ctx context.Context, ctrl Controller) Model {
	m := Model{
		ctrl:    ctrl,
		ctx:     ctx,
		state:   stateSlots,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		clock:   clock.New(ctrl.Now()),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}

	slots := ctrl.Slots()
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = fmt.Sprintf("Task %d", i+1)
		ti.CharLimit = 200
		ti.Width = 44
		ti.SetValue(slots[i].Text)
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()
	m.refreshClock()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.clock.Init())
}

func (m *Model) refreshClock() {
	stats := m.ctrl.Stats()
	m.clock.Streak = stats.Streak
	m.clock.MomentumHours = stats.MomentumHours
}

// commit persists the focused input if it differs from what is stored.
func (m *Model) commit() {
	slots := m.ctrl.Slots()
	value := m.inputs[m.focus].Value()
	if value == slots[m.focus].Text {
		return
	}
	if err := m.ctrl.SetSlotText(m.focus, value); err != nil {
		m.setError(err.Error())
	}
}

func (m *Model) setFocus(i int) {
	m.commit()
	m.inputs[m.focus].Blur()
	m.focus = (i + constants.SlotCount) % constants.SlotCount
	m.inputs[m.focus].Focus()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) newConfirmForm() {
	m.confirm = &ConfirmFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Submit today?").
				Description(fmt.Sprintf("%d/%d done. A submitted day cannot be reopened.", m.completed(), constants.SlotCount)).
				Affirmative("Submit").
				Negative("Cancel").
				Value(&m.confirm.Confirmed),
		),
	)
}

func (m Model) completed() int {
	n := 0
	for _, s := range m.ctrl.Slots() {
		if s.Completed {
			n++
		}
	}
	return n
}

func submitCmd(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		outcome, err := ctrl.Submit(ctx)
		return submitDoneMsg{outcome: outcome, err: err}
	}
}
