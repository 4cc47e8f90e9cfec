package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	colorPrimary   = lipgloss.Color("#0F766E") // Teal
	colorSecondary = lipgloss.Color("#5EEAD4") // Light teal
	colorSuccess   = lipgloss.Color("#22C55E") // Green (installed, running)
	colorDanger    = lipgloss.Color("#F43F5E") // Rose (errors)
	colorMuted     = lipgloss.Color("#71717A") // Zinc
	colorBorder    = lipgloss.Color("#3F3F46") // Dark zinc
	colorWarning   = lipgloss.Color("#EAB308") // Yellow
	colorText      = lipgloss.Color("#F4F4F5")
)

// Shared styles used across TUI views.
var (
	// Header bar: "agentlauncher  ~/agents/local-agent"
	logoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	headerPathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Padding(0, 1)

	headerHintStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Main content area.
	contentStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	// Emphasized value (selected folder, dependency label).
	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	// Muted text (descriptions, secondary info).
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Installed / success indicator.
	installedStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// Error text.
	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	// Warning / banner text.
	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	// Help text at the bottom.
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Spinner style.
	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	// Pairing code box.
	codeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorPrimary).
			Foreground(colorText).
			Bold(true).
			Padding(0, 3)

	// Agent state badge in the status bar.
	agentBadgeStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Confirmation dialog.
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	dialogButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(colorMuted).
				Padding(0, 2)

	dialogActiveButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(colorDanger).
				Padding(0, 2).
				Bold(true)

	// Wizard breadcrumb.
	wizardStepActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	wizardStepDoneStyle = lipgloss.NewStyle().
				Foreground(colorSuccess)

	wizardStepInactiveStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	wizardStepSeparatorStyle = lipgloss.NewStyle().
					Foreground(colorBorder)

	wizardContentStyle = lipgloss.NewStyle().
				PaddingLeft(1)
)

// Status icons shared by the dependency list and the step breadcrumb.
const (
	iconDone    = "✓"
	iconFailed  = "✗"
	iconPending = "•"
	iconWarning = "⚠"
)

// newDependencyDelegate creates a DefaultDelegate for the dependency list:
// label on the first line, last progress message on the second.
func newDependencyDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.Styles.NormalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorText).
		Padding(0, 0, 0, 2)

	d.Styles.NormalDesc = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 0, 0, 2)

	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colorPrimary).
		Foreground(colorSecondary).
		Bold(true).
		Padding(0, 0, 0, 1)

	d.Styles.SelectedDesc = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colorPrimary).
		Foreground(colorMuted).
		Padding(0, 0, 0, 1)

	d.SetSpacing(0)

	return d
}
