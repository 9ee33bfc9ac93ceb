package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	cerrors "github.com/julianstephens/topthree/internal/errors"
	"github.com/julianstephens/topthree/internal/models"
	"github.com/julianstephens/topthree/internal/today"
	"github.com/julianstephens/topthree/internal/tui/components/clock"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case clock.TickMsg:
		var cmd tea.Cmd
		m.clock, cmd = m.clock.Update(msg)
		m.refreshClock()
		return m, cmd

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitDoneMsg:
		m.submitting = false
		m.handleSubmitResult(msg)
		m.refreshClock()
		return m, nil
	}

	if m.state == stateConfirmSubmit {
		return m.updateConfirm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if !m.submitting {
			m.commit()
		}
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// Slots are frozen while a submit is in flight
	if m.submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.setFocus(m.focus + 1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus(m.focus - 1)
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		m.commit()
		m.toggle()
		m.refreshClock()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.commit()
		if m.ctrl.State() == models.DaySubmitted {
			m.setStatus("Today is already submitted.")
			return m, nil
		}
		m.newConfirmForm()
		m.state = stateConfirmSubmit
		return m, m.form.Init()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) toggle() {
	err := m.ctrl.ToggleSlot(m.focus)
	if err == nil {
		m.setStatus("")
		return
	}
	// Validation errors are shown inline under the slot
	if errors.Is(err, cerrors.ErrValidation) {
		m.setStatus("")
		return
	}
	m.setError(err.Error())
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = stateSlots
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = stateSlots
		confirmed := m.confirm.Confirmed
		m.form = nil
		m.confirm = nil
		if !confirmed {
			return m, nil
		}
		m.submitting = true
		m.setStatus("Submitting...")
		return m, tea.Batch(submitCmd(m.ctx, m.ctrl), m.spinner.Tick)
	case huh.StateAborted:
		m.state = stateSlots
		m.form = nil
		m.confirm = nil
		return m, nil
	}
	return m, cmd
}

func (m *Model) handleSubmitResult(msg submitDoneMsg) {
	if msg.err != nil {
		if errors.Is(msg.err, cerrors.ErrSubmissionFailure) {
			m.setError(fmt.Sprintf("Submit failed, try again: %v", msg.err))
			return
		}
		m.setError(msg.err.Error())
		return
	}
	if msg.outcome == today.AlreadySubmitted {
		m.setStatus("Today was already submitted.")
		return
	}
	m.setStatus("Day submitted. See you tomorrow.")
}
