package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/barysiuk/agentlauncher/internal/core/dependency"
)

// depItem is one row of the dependency list.
type depItem struct {
	dep     dependency.Dependency
	phase   dependency.Phase // "" until checked or installed
	present bool
	message string
}

func (i depItem) Title() string {
	icon := iconPending
	switch {
	case i.phase == dependency.PhaseSuccess, i.phase == "" && i.present:
		icon = iconDone
	case i.phase == dependency.PhaseError:
		icon = iconFailed
	}
	return icon + " " + i.dep.DisplayName()
}

func (i depItem) Description() string {
	if i.message != "" {
		return i.message
	}
	return "not checked"
}

func (i depItem) FilterValue() string { return i.dep.DisplayName() }

// Messages driving the dependency step.
type (
	depsStartMsg   struct{}
	depsCheckedMsg struct{ results []dependency.CheckResult }
	depProgressMsg struct {
		run   *depsRun
		event dependency.ProgressEvent
	}
	depsDoneMsg struct {
		report    dependency.Report
		ngrokAuth bool // An ngrok authtoken is configured
	}
	sudoLoginMsg struct{}
	sudoDoneMsg  struct{ err error }
)

// depsRun streams one EnsureAll pass into the update loop.
type depsRun struct {
	events chan dependency.ProgressEvent
	report chan dependency.Report
}

func startDepsRun(inst *dependency.Installer) *depsRun {
	run := &depsRun{
		events: make(chan dependency.ProgressEvent),
		report: make(chan dependency.Report, 1),
	}
	go func() {
		report := inst.EnsureAll(context.Background(), dependency.Channel(run.events))
		close(run.events)
		run.report <- report
	}()
	return run
}

// wait returns the next progress event, or the report once the pass ends.
func (r *depsRun) wait() tea.Msg {
	event, ok := <-r.events
	if !ok {
		home, _ := os.UserHomeDir()
		authed, _ := dependency.NgrokAuthConfigured(home)
		return depsDoneMsg{report: <-r.report, ngrokAuth: authed}
	}
	return depProgressMsg{run: r, event: event}
}

// depsStepModel shows the four dependencies, their install progress and
// the final report.
type depsStepModel struct {
	list      list.Model
	spinner   spinner.Model
	running   bool
	report    *dependency.Report
	ngrokAuth bool

	reportView viewport.Model
	showReport bool
	rendered   bool

	width, height int
}

func newDepsStepModel(deps []dependency.Dependency) depsStepModel {
	items := make([]list.Item, len(deps))
	for i, d := range deps {
		items[i] = depItem{dep: d}
	}

	l := list.New(items, newDependencyDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return depsStepModel{
		list: l,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
		reportView: viewport.New(0, 0),
	}
}

func (m depsStepModel) setSize(width, height int) depsStepModel {
	m.width = width
	m.height = height
	// Two lines per dependency; the rest holds the summary.
	m.list.SetSize(width, min(height, 2*len(m.list.Items())))
	m.reportView.Width = width
	m.reportView.Height = max(0, height-2)
	return m
}

// applyCheck records the presence pass shown before any install.
func (m depsStepModel) applyCheck(results []dependency.CheckResult) depsStepModel {
	byName := make(map[dependency.Name]dependency.CheckResult, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	for idx, it := range m.list.Items() {
		item := it.(depItem)
		if r, ok := byName[item.dep.Name()]; ok && item.phase == "" {
			item.present = r.Installed
			item.message = "installed"
			if !r.Installed {
				item.message = r.ErrorMessage
			}
			m.list.SetItem(idx, item)
		}
	}
	return m
}

// start resets the step for a new install pass.
func (m depsStepModel) start() depsStepModel {
	m.running = true
	m.report = nil
	m.showReport = false
	m.rendered = false
	return m
}

// applyEvent updates the row the event refers to.
func (m depsStepModel) applyEvent(e dependency.ProgressEvent) depsStepModel {
	for idx, it := range m.list.Items() {
		item := it.(depItem)
		if item.dep.Name() == e.Name {
			item.phase = e.Phase
			item.message = e.Message
			m.list.SetItem(idx, item)
			m.list.Select(idx)
			break
		}
	}
	return m
}

// finish records the report of a completed pass.
func (m depsStepModel) finish(report dependency.Report, ngrokAuth bool) depsStepModel {
	m.running = false
	m.report = &report
	m.ngrokAuth = ngrokAuth
	return m
}

// setRendered stores the rendered report for the viewport.
func (m depsStepModel) setRendered(content string) depsStepModel {
	m.reportView.SetContent(content)
	m.reportView.GotoTop()
	m.rendered = true
	return m
}

func (m depsStepModel) failed() bool {
	return m.report != nil && !m.report.OK()
}

func (m depsStepModel) denied() bool {
	return m.report != nil && m.report.ElevationDenied()
}

func (m depsStepModel) Init() tea.Cmd {
	return nil
}

func (m depsStepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.running {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.showReport {
		var cmd tea.Cmd
		m.reportView, cmd = m.reportView.Update(keyMsg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, keys.Enter) && m.report == nil,
		key.Matches(keyMsg, keys.Retry) && m.failed():
		return m, func() tea.Msg { return depsStartMsg{} }
	case key.Matches(keyMsg, keys.Sudo) && m.denied():
		return m, func() tea.Msg { return sudoLoginMsg{} }
	case key.Matches(keyMsg, keys.Report) && m.rendered:
		m.showReport = true
		return m, nil
	case key.Matches(keyMsg, keys.Next):
		return m, func() tea.Msg { return wizardNextMsg{} }
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(keyMsg)
	return m, cmd
}

func (m depsStepModel) View() string {
	if m.showReport {
		pct := fmt.Sprintf(" %3.0f%% ", m.reportView.ScrollPercent()*100)
		return m.reportView.View() + "\n" + mutedStyle.Render(pct)
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n\n")

	switch {
	case m.running:
		b.WriteString(m.spinner.View() + " Checking/installing dependencies...")
	case m.report == nil:
		b.WriteString(mutedStyle.Render("Press enter to check and install missing dependencies."))
	case m.report.OK():
		b.WriteString(stepStatus{text: m.report.Summary(), kind: statusOK}.view())
		if !m.ngrokAuth {
			b.WriteString("\n\n" + stepStatus{text: ngrokAuthHint, kind: statusWarn}.view())
		}
	default:
		b.WriteString(stepStatus{text: m.report.Summary(), kind: statusFailed}.view())
		if details := m.report.Details(); details != "" {
			b.WriteString("\n" + mutedStyle.Render(details))
		}
		if m.denied() {
			b.WriteString("\n\n" + warningStyle.Render("Administrator access was refused. Press s to authenticate with sudo, then r to retry."))
		}
	}
	return b.String()
}

const ngrokAuthHint = "ngrok has no authtoken yet. Run: ngrok config add-authtoken <token>"

var tableEscaper = strings.NewReplacer("|", "\\|", "\n", " ")

// reportMarkdown renders an install report as a markdown table.
func reportMarkdown(report dependency.Report, deps []dependency.Dependency) string {
	var b strings.Builder
	b.WriteString("## Dependency report\n\n")
	b.WriteString("| Dependency | Command | Status | Details |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, d := range deps {
		status, details := "installed", ""
		if !report.Results[d.Name()] {
			status = "failed"
			details = report.ErrorDetails[d.Name()]
			if details == "" {
				details = "Unknown error"
			}
		}
		fmt.Fprintf(&b, "| %s | `%s` | %s | %s |\n",
			d.DisplayName(), d.Command(), status, tableEscaper.Replace(details))
	}
	fmt.Fprintf(&b, "\n**%s**\n", report.Summary())
	if details := report.Details(); details != "" {
		b.WriteString("\n```\n" + details + "\n```\n")
	}
	return b.String()
}
