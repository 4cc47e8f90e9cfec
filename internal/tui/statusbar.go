package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/barysiuk/agentlauncher/internal/core"
)

// statusBarModel is the bottom line of the TUI.
//
// Layout: [left: help keybindings or toast] [right: agent state]
type statusBarModel struct {
	width int
	state core.State
	pid   int
}

func newStatusBarModel() statusBarModel {
	return statusBarModel{}
}

func (m statusBarModel) setWidth(width int) statusBarModel {
	m.width = width
	return m
}

// setAgent records the supervised process state shown on the right.
func (m statusBarModel) setAgent(state core.State, pid int) statusBarModel {
	m.state = state
	m.pid = pid
	return m
}

// view renders left and the agent indicator right-aligned.
func (m statusBarModel) view(left string) string {
	right := m.renderAgent()
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 2 {
		gap = 2
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}

func (m statusBarModel) renderAgent() string {
	switch m.state {
	case core.StateStarting:
		return warningStyle.Render("◌") + agentBadgeStyle.Render(" agent starting")
	case core.StateRunning:
		label := " agent running"
		if m.pid > 0 {
			label += fmt.Sprintf(" (pid %d)", m.pid)
		}
		return installedStyle.Render("●") + agentBadgeStyle.Render(label)
	case core.StateStopped:
		return errorStyle.Render("○") + agentBadgeStyle.Render(" agent stopped")
	default:
		return agentBadgeStyle.Render("○ agent idle")
	}
}
