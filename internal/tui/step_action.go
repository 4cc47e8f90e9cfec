package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// actionRunMsg is emitted when the user triggers a step's action.
type actionRunMsg struct{}

// actionStepModel is a step with a single action: a description, a spinner
// while the action runs and a status line with its outcome.
type actionStepModel struct {
	description string
	busyText    string
	spinner     spinner.Model
	busy        bool
	status      stepStatus
	details     []string
}

func newActionStepModel(busyText string) actionStepModel {
	return actionStepModel{
		busyText: busyText,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
	}
}

// describe sets the text shown above the action's outcome.
func (m actionStepModel) describe(text string) actionStepModel {
	m.description = text
	return m
}

// begin marks the action as running.
func (m actionStepModel) begin() actionStepModel {
	m.busy = true
	m.status = stepStatus{}
	m.details = nil
	return m
}

// end records the action's outcome.
func (m actionStepModel) end(status stepStatus, details ...string) actionStepModel {
	m.busy = false
	m.status = status
	m.details = details
	return m
}

func (m actionStepModel) Init() tea.Cmd {
	return nil
}

func (m actionStepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.busy {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Enter):
			return m, func() tea.Msg { return actionRunMsg{} }
		case key.Matches(keyMsg, keys.Next):
			return m, func() tea.Msg { return wizardNextMsg{} }
		}
	}
	return m, nil
}

func (m actionStepModel) View() string {
	var b strings.Builder
	b.WriteString(m.description)
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(m.spinner.View() + " " + m.busyText)
		return b.String()
	}
	b.WriteString(m.status.view())
	for _, d := range m.details {
		b.WriteString("\n" + mutedStyle.Render(d))
	}
	return b.String()
}
