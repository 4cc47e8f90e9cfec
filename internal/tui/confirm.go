package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmModel is a modal yes/no dialog centered over the content area.
// While active it consumes every key.
//
// left/right/tab move focus, enter activates the focused button and
// y/n/esc are shortcuts. Focus starts on the cancel button.
type confirmModel struct {
	active    bool
	message   string
	yesLabel  string
	noLabel   string
	onConfirm tea.Cmd
	focusYes  bool

	width  int
	height int
}

// confirmResultMsg is sent after the user responds.
type confirmResultMsg struct {
	confirmed bool
}

func newConfirmModel() confirmModel {
	return confirmModel{}
}

// show opens the dialog with Yes/No buttons.
func (m confirmModel) show(message string, onConfirm tea.Cmd) confirmModel {
	return m.showWithLabels(message, "Yes", "No", onConfirm)
}

// showWithLabels opens the dialog with custom button labels.
func (m confirmModel) showWithLabels(message, yes, no string, onConfirm tea.Cmd) confirmModel {
	m.active = true
	m.message = message
	m.yesLabel = yes
	m.noLabel = no
	m.onConfirm = onConfirm
	m.focusYes = false
	return m
}

func (m confirmModel) setSize(width, height int) confirmModel {
	m.width = width
	m.height = height
	return m
}

func (m confirmModel) dismiss() confirmModel {
	m.active = false
	m.message = ""
	m.onConfirm = nil
	m.focusYes = false
	return m
}

func (m confirmModel) resolve(confirmed bool) (confirmModel, tea.Cmd) {
	action := m.onConfirm
	m = m.dismiss()
	result := func() tea.Msg { return confirmResultMsg{confirmed: confirmed} }
	if confirmed && action != nil {
		return m, tea.Batch(action, result)
	}
	return m, result
}

// update handles keys while the dialog is active. The bool reports whether
// msg was consumed.
func (m confirmModel) update(msg tea.Msg) (confirmModel, tea.Cmd, bool) {
	if !m.active {
		return m, nil, false
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}

	switch {
	case key.Matches(keyMsg, confirmYesKey):
		m, cmd := m.resolve(true)
		return m, cmd, true
	case key.Matches(keyMsg, confirmNoKey), key.Matches(keyMsg, keys.Back):
		m, cmd := m.resolve(false)
		return m, cmd, true
	case key.Matches(keyMsg, keys.Enter):
		m, cmd := m.resolve(m.focusYes)
		return m, cmd, true
	case key.Matches(keyMsg, confirmSwitchKey):
		m.focusYes = !m.focusYes
	}
	return m, nil, true
}

func (m confirmModel) view() string {
	if !m.active {
		return ""
	}

	question := lipgloss.NewStyle().
		Width(40).
		Align(lipgloss.Center).
		Render(m.message)

	yesStyle, noStyle := dialogButtonStyle, dialogActiveButtonStyle
	if m.focusYes {
		yesStyle, noStyle = dialogActiveButtonStyle, dialogButtonStyle
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		yesStyle.Render(m.yesLabel), "  ", noStyle.Render(m.noLabel))

	dialog := dialogBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, question, "", buttons))
	if m.width <= 0 || m.height <= 0 {
		return dialog
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

// Key bindings for the confirm dialog (not part of the global keyMap).
var (
	confirmYesKey = key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	)
	confirmNoKey = key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "cancel"),
	)
	confirmSwitchKey = key.NewBinding(
		key.WithKeys("left", "right", "h", "l", "tab", "shift+tab"),
	)
)
