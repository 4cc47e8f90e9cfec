package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/barysiuk/agentlauncher/internal/core"
)

// codeRefreshInterval is how often the pairing code step re-reads the file.
const codeRefreshInterval = 2 * time.Second

type (
	// codeTickMsg triggers a re-read. gen ties it to one polling session so
	// leaving and re-entering the step does not double the tick rate.
	codeTickMsg struct{ gen int }
	codeCopyMsg struct{}
	copyDoneMsg struct {
		code string
		err  error
	}
)

// codeStepModel displays the pairing code and where it was read from.
type codeStepModel struct {
	path   string
	code   string
	exists bool
	read   bool
	status stepStatus
}

func newCodeStepModel() codeStepModel {
	return codeStepModel{}
}

// refresh re-reads the pairing artifact in agentDir.
func (m codeStepModel) refresh(agentDir string) codeStepModel {
	m.path = core.PairingCodePath(agentDir)
	m.code = core.ReadPairingCode(agentDir)
	m.exists = core.FileExists(m.path)
	m.read = true
	if m.code != "" {
		m.status = stepStatus{text: "Pairing code received!", kind: statusOK}
	} else {
		m.status = stepStatus{text: "No pairing code found!", kind: statusFailed}
	}
	return m
}

func (m codeStepModel) Init() tea.Cmd {
	return nil
}

func (m codeStepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Copy):
			return m, func() tea.Msg { return codeCopyMsg{} }
		case key.Matches(keyMsg, keys.Enter):
			return m, func() tea.Msg { return wizardNextMsg{} }
		}
	}
	return m, nil
}

func (m codeStepModel) View() string {
	if !m.read {
		return mutedStyle.Render("Reading pairing code...")
	}

	code := m.code
	if code == "" {
		code = "  ------  "
	}
	exists := "No"
	if m.exists {
		exists = "Yes"
	}

	return "Pairing code:\n\n" +
		codeBoxStyle.Render(code) + "\n\n" +
		m.status.view() + "\n\n" +
		mutedStyle.Render(fmt.Sprintf("Path: %s\nExists: %s", m.path, exists))
}

// codeTick schedules the next re-read for polling session gen.
func codeTick(gen int) tea.Cmd {
	return tea.Tick(codeRefreshInterval, func(time.Time) tea.Msg {
		return codeTickMsg{gen: gen}
	})
}
