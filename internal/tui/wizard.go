package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// wizardNextMsg is emitted by a step model when the user asks to advance.
type wizardNextMsg struct{}

// wizardDoneMsg is emitted by wizardModel when the last step completes.
type wizardDoneMsg struct{}

// wizardBackMsg is emitted by wizardModel when esc is pressed on step 0.
type wizardBackMsg struct{}

// wizardStep defines one step in a wizard flow.
type wizardStep struct {
	name    string    // Displayed in the step indicator.
	content tea.Model // The step's own Bubble Tea model.
	done    bool      // The step's action has succeeded.
}

// wizardModel is a multi-step wrapper with a breadcrumb indicator.
//
// Step content models emit wizardNextMsg to advance. A step can only be
// left forwards once it is marked done, which mirrors a "Next" button that
// stays disabled until the step's action succeeds. While busy, navigation
// is frozen so a running install or spawn cannot be abandoned mid-way.
type wizardModel struct {
	width, height int

	title     string
	steps     []wizardStep
	activeIdx int
	busy      bool
}

func newWizardModel(title string, steps []wizardStep) wizardModel {
	return wizardModel{
		title: title,
		steps: steps,
	}
}

func (m wizardModel) setSize(width, height int) wizardModel {
	m.width = width
	m.height = height
	return m
}

// activeStep returns the currently active step, or nil if out of bounds.
func (m wizardModel) activeStep() *wizardStep {
	if m.activeIdx >= 0 && m.activeIdx < len(m.steps) {
		return &m.steps[m.activeIdx]
	}
	return nil
}

// setDone marks step idx as done or not done.
func (m wizardModel) setDone(idx int, done bool) wizardModel {
	if idx >= 0 && idx < len(m.steps) {
		m.steps[idx].done = done
	}
	return m
}

// canAdvance reports whether the active step may be left forwards.
func (m wizardModel) canAdvance() bool {
	step := m.activeStep()
	return step != nil && step.done && !m.busy
}

// update intercepts wizardNextMsg and esc for navigation and forwards
// everything else to the active step.
func (m wizardModel) update(msg tea.Msg) (wizardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case wizardNextMsg:
		if !m.canAdvance() {
			return m, nil
		}
		if m.activeIdx >= len(m.steps)-1 {
			return m, func() tea.Msg { return wizardDoneMsg{} }
		}
		m.activeIdx++
		return m, m.steps[m.activeIdx].content.Init()

	case tea.KeyMsg:
		if key.Matches(msg, keys.Back) {
			if m.busy {
				return m, nil
			}
			if m.activeIdx > 0 {
				m.activeIdx--
				return m, m.steps[m.activeIdx].content.Init()
			}
			return m, func() tea.Msg { return wizardBackMsg{} }
		}
	}

	if step := m.activeStep(); step != nil {
		var cmd tea.Cmd
		step.content, cmd = step.content.Update(msg)
		return m, cmd
	}
	return m, nil
}

// view renders the step indicator and the active step content.
func (m wizardModel) view() string {
	if len(m.steps) == 0 {
		return ""
	}

	content := m.steps[m.activeIdx].content.View()
	if indicator := m.renderStepIndicator(); indicator != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, indicator, "", content)
	}
	return wizardContentStyle.Render(content)
}

// renderStepIndicator draws the breadcrumb strip with the active step
// underlined:
//
//	✓ Agent folder → Dependencies → Media folder
//	                 ────────────
func (m wizardModel) renderStepIndicator() string {
	if len(m.steps) <= 1 {
		return ""
	}

	sep := wizardStepSeparatorStyle.Render(" → ")
	sepWidth := lipgloss.Width(sep)

	var parts []string
	offset, activeWidth := 0, 0
	for i, step := range m.steps {
		label := step.name
		if step.done {
			label = iconDone + " " + label
		}

		var rendered string
		switch {
		case i == m.activeIdx:
			rendered = wizardStepActiveStyle.Render(label)
			activeWidth = lipgloss.Width(label)
		case step.done:
			rendered = wizardStepDoneStyle.Render(label)
		default:
			rendered = wizardStepInactiveStyle.Render(label)
		}
		if i < m.activeIdx {
			offset += lipgloss.Width(label) + sepWidth
		}
		parts = append(parts, rendered)
	}

	breadcrumb := strings.Join(parts, sep)
	underline := strings.Repeat(" ", offset) + wizardStepActiveStyle.Render(strings.Repeat("─", activeWidth))
	return breadcrumb + "\n" + underline
}
