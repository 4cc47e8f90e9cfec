package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// statusKind selects how a step's status line is rendered.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusFailed
	statusWarn
)

// stepStatus is the one-line outcome shown under a step's action.
type stepStatus struct {
	text string
	kind statusKind
}

func (s stepStatus) view() string {
	if s.text == "" {
		return ""
	}
	switch s.kind {
	case statusOK:
		return installedStyle.Render(iconDone + " " + s.text)
	case statusFailed:
		return errorStyle.Render(iconFailed + " " + s.text)
	case statusWarn:
		return warningStyle.Render(iconWarning + " " + s.text)
	default:
		return mutedStyle.Render(s.text)
	}
}

// pathSubmittedMsg is emitted when the user presses enter in a path step.
type pathSubmittedMsg struct {
	value string
}

// pathStepModel asks for a directory. Validation happens in the owning
// flow, which reports back through setResult.
type pathStepModel struct {
	prompt   string
	help     string
	input    textinput.Model
	status   stepStatus
	warnings []string
	checking bool
}

func newPathStepModel(prompt, help, placeholder, value string) pathStepModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	ti.Width = 60
	ti.SetValue(value)
	ti.Focus()
	return pathStepModel{prompt: prompt, help: help, input: ti}
}

// submitting marks the step as waiting for validation.
func (m pathStepModel) submitting() pathStepModel {
	m.checking = true
	m.status = stepStatus{}
	m.warnings = nil
	return m
}

// setResult records the validation outcome.
func (m pathStepModel) setResult(status stepStatus, warnings []string) pathStepModel {
	m.checking = false
	m.status = status
	m.warnings = warnings
	return m
}

func (m pathStepModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pathStepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case m.checking:
			return m, nil
		case key.Matches(keyMsg, keys.Enter):
			value := m.input.Value()
			return m, func() tea.Msg { return pathSubmittedMsg{value: value} }
		case key.Matches(keyMsg, keys.Next):
			return m, func() tea.Msg { return wizardNextMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pathStepModel) View() string {
	var b strings.Builder
	b.WriteString(m.prompt + "\n\n")
	b.WriteString(m.input.View() + "\n")
	if m.help != "" {
		b.WriteString(mutedStyle.Render(m.help) + "\n")
	}
	if m.checking {
		b.WriteString("\n" + mutedStyle.Render("Checking..."))
		return b.String()
	}
	if s := m.status.view(); s != "" {
		b.WriteString("\n" + s)
	}
	for _, w := range m.warnings {
		b.WriteString("\n  " + warningStyle.Render(iconPending+" "+w))
	}
	return b.String()
}

// shortenPath replaces the home directory prefix with ~.
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+string(filepath.Separator)) {
		return "~" + path[len(home):]
	}
	return path
}
