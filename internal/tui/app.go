package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/barysiuk/agentlauncher/internal/core"
	"github.com/barysiuk/agentlauncher/internal/core/dependency"
)

// shutdownTimeout bounds port cleanup when the TUI exits.
const shutdownTimeout = 15 * time.Second

// Options are the core services the TUI drives.
type Options struct {
	Config     *core.ConfigManager
	Installer  *dependency.Installer
	Supervisor *core.Supervisor
	Logger     *slog.Logger

	// Clipboard writes the pairing code. Defaults to the system clipboard.
	Clipboard func(string) error
}

// App is the root Bubbletea model for agentlauncher.
type App struct {
	// Core dependencies.
	config     *core.ConfigManager
	installer  *dependency.Installer
	supervisor *core.Supervisor
	logger     *slog.Logger
	clipboard  func(string) error

	width  int
	height int
	ready  bool // Window size known
	loaded bool // Config loaded and steps built

	cfg   *core.Config
	setup setupModel

	// Cached glamour renderer (lazy-initialized on first report).
	glamourRenderer *glamour.TermRenderer

	help      help.Model
	toast     toastModel
	confirm   confirmModel
	statusBar statusBarModel

	quitting bool
}

// NewApp creates a new App model with the given core dependencies.
func NewApp(opts Options) App {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Logger == nil {
		opts.Logger = core.DiscardLogger()
	}

	h := help.New()
	h.ShortSeparator = "  |  "

	return App{
		config:     opts.Config,
		installer:  opts.Installer,
		supervisor: opts.Supervisor,
		logger:     opts.Logger,
		clipboard:  opts.Clipboard,
		setup:      newSetupModel(),
		help:       h,
		toast:      newToastModel(),
		confirm:    newConfirmModel(),
		statusBar:  newStatusBarModel(),
	}
}

// --- Messages ---

type configLoadedMsg struct {
	cfg *core.Config
	err error
}

// notifyMsg asks the app to show a toast.
type notifyMsg struct {
	text string
	kind toastType
}

type (
	quitRequestedMsg struct{}
	shutdownDoneMsg  struct{}
)

func notify(text string, kind toastType) tea.Cmd {
	return func() tea.Msg { return notifyMsg{text: text, kind: kind} }
}

// --- Init / Update / View ---

func (a App) Init() tea.Cmd {
	return a.loadConfigCmd
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a, cmd := a.update(msg)
	if a.supervisor != nil {
		a.statusBar = a.statusBar.setAgent(a.supervisor.State(), a.supervisor.PID())
	}
	return a, cmd
}

// agentActive reports whether the supervised agent is starting or running.
func (a App) agentActive() bool {
	if a.supervisor == nil {
		return false
	}
	st := a.supervisor.State()
	return st == core.StateStarting || st == core.StateRunning
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		a.propagateSize()
		return a, nil

	case configLoadedMsg:
		var cmd tea.Cmd
		a.cfg = msg.cfg
		if a.cfg == nil {
			a.cfg = core.DefaultConfig()
		}
		if msg.err != nil {
			a.logger.Error("config load failed", "err", msg.err)
			a.toast, cmd = a.toast.showError(msg.err)
		}
		w, h := a.innerContentSize()
		a.setup = a.setup.activate(&a, w, h)
		a.loaded = true
		return a, tea.Batch(cmd, a.setup.wizard.activeStep().content.Init())

	case notifyMsg:
		var cmd tea.Cmd
		a.toast, cmd = a.toast.show(msg.text, msg.kind)
		return a, cmd

	case toastDismissMsg:
		var cmd tea.Cmd
		a.toast, cmd = a.toast.update(msg)
		return a, cmd

	case confirmResultMsg:
		return a, nil

	case quitRequestedMsg:
		return a.beginShutdown()

	case shutdownDoneMsg:
		return a, tea.Quit

	case spinner.TickMsg:
		// Ticks carry their spinner's ID, so every consumer can see them.
		var toastCmd, setupCmd tea.Cmd
		a.toast, toastCmd = a.toast.update(msg)
		if a.loaded {
			a.setup, setupCmd = a.setup.update(msg, &a)
		}
		return a, tea.Batch(toastCmd, setupCmd)

	case tea.KeyMsg:
		if a.confirm.active {
			var cmd tea.Cmd
			var consumed bool
			a.confirm, cmd, consumed = a.confirm.update(msg)
			if consumed {
				return a, cmd
			}
		}

		if key.Matches(msg, keys.Quit) {
			if a.quitting {
				return a, tea.Quit
			}
			if a.agentActive() {
				a.confirm = a.confirm.showWithLabels("Stop the agent and quit?", "Quit", "Stay",
					func() tea.Msg { return quitRequestedMsg{} })
				return a, nil
			}
			return a.beginShutdown()
		}

		if a.quitting || !a.loaded {
			return a, nil
		}
	}

	if !a.loaded {
		return a, nil
	}
	var cmd tea.Cmd
	a.setup, cmd = a.setup.update(msg, &a)
	return a, cmd
}

// beginShutdown stops the agent and cleans up before quitting.
func (a App) beginShutdown() (App, tea.Cmd) {
	a.quitting = true
	var toastCmd tea.Cmd
	a.toast, toastCmd = a.toast.show("Stopping local agent...", toastLoading)

	sup := a.supervisor
	agentDir := a.setup.agentDir
	return a, tea.Batch(toastCmd, func() tea.Msg {
		if sup == nil {
			return shutdownDoneMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sup.Shutdown(ctx, agentDir)
		return shutdownDoneMsg{}
	})
}

func (a App) View() string {
	if !a.ready || !a.loaded {
		return "Loading..."
	}

	header := a.renderHeader()
	left := a.renderHelpBar()
	if a.toast.active {
		left = a.toast.view()
	}
	footer := a.statusBar.view(left)

	// JoinVertical adds \n between the three blocks.
	chromeH := lipgloss.Height(header) + lipgloss.Height(footer) + 2

	innerW := max(0, a.width-contentStyle.GetHorizontalBorderSize())
	innerH := max(0, a.height-chromeH-contentStyle.GetVerticalBorderSize())
	textW := max(0, a.width-contentStyle.GetHorizontalFrameSize())
	textH := max(0, a.height-chromeH-contentStyle.GetVerticalFrameSize())

	content := a.setup.view()
	if a.confirm.active {
		content = a.confirm.view()
	}
	content = clampWidth(content, textW)
	content = clampHeight(content, textH)

	styled := contentStyle.
		Width(innerW).
		Height(innerH).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, styled, footer)
}

func (a App) renderHeader() string {
	logo := logoStyle.Render("agentlauncher")

	path := "no agent folder"
	if a.setup.agentDir != "" {
		path = shortenPath(a.setup.agentDir)
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, " ", logo, " ", headerPathStyle.Render(path))
	hints := headerHintStyle.Render(a.setup.title())

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(hints) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + hints
}

func (a App) renderHelpBar() string {
	if a.quitting {
		return ""
	}
	return " " + helpStyle.Render(a.help.View(a.setup.helpKeyMap()))
}

func (a App) loadConfigCmd() tea.Msg {
	cfg, err := a.config.Load()
	if err != nil {
		return configLoadedMsg{err: err}
	}
	return configLoadedMsg{cfg: cfg}
}

func (a *App) propagateSize() {
	w, h := a.innerContentSize()
	a.statusBar = a.statusBar.setWidth(a.width)
	a.confirm = a.confirm.setSize(w, h)
	if a.loaded {
		a.setup = a.setup.setSize(w, h)
	}
}

// innerContentSize computes the text area inside contentStyle after the
// header, footer, border and padding are removed.
func (a App) innerContentSize() (width, height int) {
	// Header and footer are one line each, plus two separators.
	chromeH := 4
	width = max(0, a.width-contentStyle.GetHorizontalFrameSize())
	height = max(0, a.height-chromeH-contentStyle.GetVerticalFrameSize())
	return width, height
}

// clampHeight truncates content to at most maxLines lines.
func clampHeight(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= maxLines {
		return content
	}
	return strings.Join(lines[:maxLines], "\n")
}

// clampWidth truncates each line to at most maxWidth visible characters
// so lipgloss never wraps inside the Width()-constrained box.
func clampWidth(content string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > maxWidth {
			lines[i] = ansi.Truncate(line, maxWidth, "")
		}
	}
	return strings.Join(lines, "\n")
}
