package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/barysiuk/agentlauncher/internal/core"
)

// Setup steps, in order.
const (
	stepAgentFolder = iota
	stepDependencies
	stepMediaFolder
	stepWriteEnv
	stepStartAgent
	stepPairingCode
)

const (
	msgNoAgentFolder = "No agent folder selected!"
	msgNoMediaFolder = "Select a folder first!"
)

// Messages produced by the setup flow's commands.
type (
	agentFolderMsg struct {
		dir     string
		check   core.FolderCheck
		problem string
		err     error
	}
	mediaFolderMsg struct {
		dir string
		err error
	}
	envWrittenMsg   struct{ err error }
	agentStartedMsg struct {
		code string
		err  error
	}
	agentExitedMsg    struct{ err error }
	reportRenderedMsg struct {
		content  string
		renderer *glamour.TermRenderer
	}
)

// setupModel drives the six-step launcher flow on top of a wizardModel:
// Agent → Deps → Media → .env → Start → Code.
type setupModel struct {
	wizard wizardModel

	agentDir string
	mediaDir string
	codeGen  int

	app *App
}

func newSetupModel() setupModel {
	return setupModel{}
}

// activate builds fresh steps, prefilled from the saved config.
func (m setupModel) activate(app *App, width, height int) setupModel {
	m.app = app
	m.agentDir = app.cfg.AgentDir
	m.mediaDir = app.cfg.MediaDir

	agentStep := newPathStepModel(
		"Select your local agent folder:",
		"The folder must contain package.json, src/index.js and pairing-code.txt.",
		"Path to the agent folder...",
		m.agentDir,
	)
	mediaStep := newPathStepModel(
		"Select the media folder the agent should watch:",
		"Written to VIDEO_ROOT_DIR and WATCH_PATH in the agent's .env.",
		"Path to the media folder...",
		m.mediaDir,
	)

	m.wizard = newWizardModel("Local Agent Setup", []wizardStep{
		{name: "Agent", content: agentStep},
		{name: "Deps", content: newDepsStepModel(app.installer.Dependencies())},
		{name: "Media", content: mediaStep},
		{name: ".env", content: newActionStepModel("Updating .env...")},
		{name: "Start", content: newActionStepModel("Starting local agent...")},
		{name: "Code", content: newCodeStepModel()},
	})
	return m.setSize(width, height)
}

// setSize updates the layout dimensions.
func (m setupModel) setSize(width, height int) setupModel {
	m.wizard = m.wizard.setSize(width, height)
	if len(m.wizard.steps) > stepDependencies {
		// Breadcrumb, underline and a blank line sit above the step.
		deps := m.wizard.steps[stepDependencies].content.(depsStepModel)
		m.wizard.steps[stepDependencies].content = deps.setSize(width-1, max(0, height-3))
	}
	return m
}

func (m setupModel) update(msg tea.Msg, app *App) (setupModel, tea.Cmd) {
	m.app = app

	switch msg := msg.(type) {
	case wizardBackMsg:
		// Nothing precedes the first step.
		return m, nil

	case wizardDoneMsg:
		return m, notify("Setup complete!", toastSuccess)

	case wizardNextMsg:
		prev := m.wizard.activeIdx
		var cmd tea.Cmd
		m.wizard, cmd = m.wizard.update(msg)
		if m.wizard.activeIdx != prev {
			var enter tea.Cmd
			m, enter = m.enterStep()
			return m, tea.Batch(cmd, enter)
		}
		return m, cmd

	case pathSubmittedMsg:
		idx := m.wizard.activeIdx
		step, ok := m.wizard.steps[idx].content.(pathStepModel)
		if !ok {
			return m, nil
		}
		m.wizard.steps[idx].content = step.submitting()
		if idx == stepAgentFolder {
			return m, selectAgentFolderCmd(app.config, msg.value)
		}
		return m, selectMediaFolderCmd(app.config, msg.value)

	case agentFolderMsg:
		return m.handleAgentFolder(msg), nil

	case mediaFolderMsg:
		return m.handleMediaFolder(msg), nil

	case depsStartMsg:
		step := m.wizard.steps[stepDependencies].content.(depsStepModel)
		if step.running {
			return m, nil
		}
		step = step.start()
		m.wizard.steps[stepDependencies].content = step
		m.wizard.busy = true
		inst := app.installer
		return m, tea.Batch(step.spinner.Tick, func() tea.Msg {
			return startDepsRun(inst).wait()
		})

	case depsCheckedMsg:
		step := m.wizard.steps[stepDependencies].content.(depsStepModel)
		m.wizard.steps[stepDependencies].content = step.applyCheck(msg.results)
		return m, nil

	case depProgressMsg:
		step := m.wizard.steps[stepDependencies].content.(depsStepModel)
		m.wizard.steps[stepDependencies].content = step.applyEvent(msg.event)
		return m, msg.run.wait

	case depsDoneMsg:
		step := m.wizard.steps[stepDependencies].content.(depsStepModel)
		m.wizard.steps[stepDependencies].content = step.finish(msg.report, msg.ngrokAuth)
		m.wizard.busy = false
		m.wizard = m.wizard.setDone(stepDependencies, msg.report.OK())

		kind := toastSuccess
		if !msg.report.OK() {
			kind = toastError
		}
		md := reportMarkdown(msg.report, app.installer.Dependencies())
		return m, tea.Batch(
			notify(msg.report.Summary(), kind),
			renderReportCmd(md, m.wizard.width, app.glamourRenderer),
		)

	case reportRenderedMsg:
		if msg.renderer != nil {
			app.glamourRenderer = msg.renderer
		}
		step := m.wizard.steps[stepDependencies].content.(depsStepModel)
		m.wizard.steps[stepDependencies].content = step.setRendered(msg.content)
		return m, nil

	case sudoLoginMsg:
		return m, tea.ExecProcess(exec.Command("sudo", "-v"), func(err error) tea.Msg {
			return sudoDoneMsg{err: err}
		})

	case sudoDoneMsg:
		if msg.err != nil {
			return m, notify("sudo: "+msg.err.Error(), toastError)
		}
		return m, func() tea.Msg { return depsStartMsg{} }

	case actionRunMsg:
		return m.runAction()

	case envWrittenMsg:
		step := m.wizard.steps[stepWriteEnv].content.(actionStepModel)
		m.wizard.busy = false
		if msg.err != nil {
			m.wizard.steps[stepWriteEnv].content = step.end(stepStatus{text: "Failed to update .env: " + errorText(msg.err), kind: statusFailed})
			m.wizard = m.wizard.setDone(stepWriteEnv, false)
			return m, nil
		}
		m.wizard.steps[stepWriteEnv].content = step.end(stepStatus{text: ".env updated!", kind: statusOK})
		m.wizard = m.wizard.setDone(stepWriteEnv, true)
		return m, nil

	case agentStartedMsg:
		return m.handleAgentStarted(msg)

	case agentExitedMsg:
		if st := app.supervisor.State(); st == core.StateStarting || st == core.StateRunning {
			// A newer run replaced the one that exited.
			return m, nil
		}
		m.wizard = m.wizard.setDone(stepStartAgent, false)
		text := "Local agent exited"
		if msg.err != nil {
			text += ": " + msg.err.Error()
		}
		return m, notify(text, toastWarning)

	case codeTickMsg:
		if msg.gen != m.codeGen || m.wizard.activeIdx != stepPairingCode {
			return m, nil
		}
		m = m.refreshCode()
		return m, codeTick(msg.gen)

	case codeCopyMsg:
		return m, copyCodeCmd(m.agentDir, app.clipboard)

	case copyDoneMsg:
		switch {
		case msg.code == "":
			return m, notify("No pairing code found to copy!", toastWarning)
		case msg.err != nil:
			return m, notify("Failed to copy!", toastError)
		default:
			return m, notify("Copied to clipboard!", toastSuccess)
		}

	case tea.KeyMsg:
		// The report viewport closes on esc instead of leaving the step.
		if key.Matches(msg, keys.Back) && m.wizard.activeIdx == stepDependencies {
			step := m.wizard.steps[stepDependencies].content.(depsStepModel)
			if step.showReport {
				step.showReport = false
				m.wizard.steps[stepDependencies].content = step
				return m, nil
			}
		}

	case spinner.TickMsg:
		// Ticks are tagged with their spinner's ID; forward to every step
		// that may be animating, not only the active one.
		var cmds []tea.Cmd
		for i, s := range m.wizard.steps {
			var cmd tea.Cmd
			m.wizard.steps[i].content, cmd = s.content.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.wizard, cmd = m.wizard.update(msg)
	return m, cmd
}

// enterStep runs the work a step needs when it becomes active.
func (m setupModel) enterStep() (setupModel, tea.Cmd) {
	app := m.app
	switch m.wizard.activeIdx {
	case stepDependencies:
		step := m.wizard.steps[stepDependencies].content.(depsStepModel)
		if step.running || step.report != nil {
			return m, nil
		}
		inst := app.installer
		return m, func() tea.Msg {
			return depsCheckedMsg{results: inst.Check(context.Background())}
		}

	case stepWriteEnv:
		step := m.wizard.steps[stepWriteEnv].content.(actionStepModel)
		m.wizard.steps[stepWriteEnv].content = step.describe(fmt.Sprintf(
			"Write the media folder into %s:\n\n  %s\n  %s",
			selectedItemStyle.Render(shortenPath(core.AgentEnvPath(m.agentDir))),
			strings.Join(core.MediaPathKeys, "\n  "),
			mutedStyle.Render("= "+m.mediaDirOrPlaceholder()),
		))

	case stepStartAgent:
		step := m.wizard.steps[stepStartAgent].content.(actionStepModel)
		m.wizard.steps[stepStartAgent].content = step.describe(fmt.Sprintf(
			"Run %s in %s.\n%s",
			selectedItemStyle.Render("npm run prod"),
			selectedItemStyle.Render(shortenPath(m.agentDir)),
			mutedStyle.Render("Dependencies are installed with npm install first if node_modules is missing."),
		))

	case stepPairingCode:
		m.codeGen++
		m = m.refreshCode()
		return m, codeTick(m.codeGen)
	}
	return m, nil
}

func (m setupModel) mediaDirOrPlaceholder() string {
	if m.mediaDir == "" {
		return "(no media folder selected)"
	}
	return m.mediaDir
}

func (m setupModel) handleAgentFolder(msg agentFolderMsg) setupModel {
	step := m.wizard.steps[stepAgentFolder].content.(pathStepModel)

	switch {
	case msg.err != nil:
		step = step.setResult(stepStatus{text: errorText(msg.err), kind: statusFailed}, nil)
		m.wizard = m.wizard.setDone(stepAgentFolder, false)
	case msg.problem != "":
		step = step.setResult(stepStatus{text: msg.problem, kind: statusFailed}, nil)
		m.wizard = m.wizard.setDone(stepAgentFolder, false)
	default:
		if msg.dir != m.agentDir {
			// Later steps act on the agent folder and must be redone.
			for _, idx := range []int{stepWriteEnv, stepStartAgent, stepPairingCode} {
				m.wizard = m.wizard.setDone(idx, false)
			}
		}
		m.agentDir = msg.dir
		m.app.cfg.AgentDir = msg.dir
		step = step.setResult(stepStatus{text: "Agent folder selected: " + msg.dir, kind: statusOK}, msg.check.Warnings())
		m.wizard = m.wizard.setDone(stepAgentFolder, true)
	}

	m.wizard.steps[stepAgentFolder].content = step
	return m
}

func (m setupModel) handleMediaFolder(msg mediaFolderMsg) setupModel {
	step := m.wizard.steps[stepMediaFolder].content.(pathStepModel)
	if msg.err != nil {
		step = step.setResult(stepStatus{text: errorText(msg.err), kind: statusFailed}, nil)
		m.wizard = m.wizard.setDone(stepMediaFolder, false)
	} else {
		if msg.dir != m.mediaDir {
			m.wizard = m.wizard.setDone(stepWriteEnv, false)
		}
		m.mediaDir = msg.dir
		m.app.cfg.MediaDir = msg.dir
		step = step.setResult(stepStatus{text: "Folder selected.", kind: statusOK}, nil)
		m.wizard = m.wizard.setDone(stepMediaFolder, true)
	}
	m.wizard.steps[stepMediaFolder].content = step
	return m
}

// runAction starts the active step's action.
func (m setupModel) runAction() (setupModel, tea.Cmd) {
	idx := m.wizard.activeIdx
	step, ok := m.wizard.steps[idx].content.(actionStepModel)
	if !ok || step.busy {
		return m, nil
	}

	switch idx {
	case stepWriteEnv:
		if m.mediaDir == "" {
			m.wizard.steps[idx].content = step.end(stepStatus{text: msgNoMediaFolder, kind: statusFailed})
			return m, nil
		}
		step = step.begin()
		m.wizard.steps[idx].content = step
		m.wizard.busy = true
		return m, tea.Batch(step.spinner.Tick, writeEnvCmd(m.agentDir, m.mediaDir))

	case stepStartAgent:
		step = step.begin()
		m.wizard.steps[idx].content = step
		m.wizard.busy = true
		return m, tea.Batch(step.spinner.Tick, startAgentCmd(m.app.supervisor, m.agentDir))
	}
	return m, nil
}

func (m setupModel) handleAgentStarted(msg agentStartedMsg) (setupModel, tea.Cmd) {
	step := m.wizard.steps[stepStartAgent].content.(actionStepModel)
	m.wizard.busy = false

	if msg.err != nil {
		m.wizard.steps[stepStartAgent].content = step.end(stepStatus{text: errorText(msg.err), kind: statusFailed})
		m.wizard = m.wizard.setDone(stepStartAgent, false)
		return m, nil
	}

	detail := "Pairing code received."
	if msg.code == "" {
		detail = "No pairing code yet. The next step keeps checking for it."
	}
	m.wizard.steps[stepStartAgent].content = step.end(stepStatus{text: "Local agent started!", kind: statusOK}, detail)
	m.wizard = m.wizard.setDone(stepStartAgent, true)
	return m, waitForExitCmd(m.app.supervisor)
}

func (m setupModel) refreshCode() setupModel {
	step := m.wizard.steps[stepPairingCode].content.(codeStepModel)
	step = step.refresh(m.agentDir)
	m.wizard.steps[stepPairingCode].content = step
	m.wizard = m.wizard.setDone(stepPairingCode, step.code != "")
	return m
}

func (m setupModel) view() string {
	return m.wizard.view()
}

// title is the header hint for the active step.
func (m setupModel) title() string {
	step := m.wizard.activeStep()
	if step == nil {
		return m.wizard.title
	}
	return fmt.Sprintf("Step %d/%d  %s", m.wizard.activeIdx+1, len(m.wizard.steps), step.name)
}

// helpKeyMap returns the bindings relevant to the active step.
func (m setupModel) helpKeyMap() help.KeyMap {
	active := m.wizard.activeStep()
	if active == nil {
		return pathHelpKeyMap{}
	}
	canAdvance := m.wizard.canAdvance()
	switch step := active.content.(type) {
	case pathStepModel:
		return pathHelpKeyMap{canAdvance: canAdvance, canGoBack: m.wizard.activeIdx > 0}
	case depsStepModel:
		if step.showReport {
			return reportHelpKeyMap{}
		}
		return depsHelpKeyMap{
			running:    step.running,
			failed:     step.failed(),
			denied:     step.denied(),
			canAdvance: canAdvance,
			hasReport:  step.rendered,
		}
	case actionStepModel:
		return actionHelpKeyMap{busy: step.busy, canAdvance: canAdvance}
	case codeStepModel:
		return codeHelpKeyMap{hasCode: step.code != ""}
	}
	return pathHelpKeyMap{}
}

// --- Commands ---

func selectAgentFolderCmd(config *core.ConfigManager, input string) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(input) == "" {
			return agentFolderMsg{err: errors.New(msgNoAgentFolder)}
		}
		dir, err := core.ResolveDir(input)
		if err != nil {
			return agentFolderMsg{err: err}
		}
		check := core.ValidateAgentFolder(dir)
		if problem := check.Problem(); problem != "" {
			return agentFolderMsg{dir: dir, check: check, problem: problem}
		}
		if _, err := config.Update(func(cfg *core.Config) { cfg.AgentDir = dir }); err != nil {
			return agentFolderMsg{dir: dir, err: err}
		}
		return agentFolderMsg{dir: dir, check: check}
	}
}

func selectMediaFolderCmd(config *core.ConfigManager, input string) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(input) == "" {
			return mediaFolderMsg{err: errors.New(msgNoMediaFolder)}
		}
		dir, err := core.ResolveDir(input)
		if err != nil {
			return mediaFolderMsg{err: err}
		}
		if _, err := config.Update(func(cfg *core.Config) { cfg.MediaDir = dir }); err != nil {
			return mediaFolderMsg{err: err}
		}
		return mediaFolderMsg{dir: dir}
	}
}

func writeEnvCmd(agentDir, mediaDir string) tea.Cmd {
	return func() tea.Msg {
		return envWrittenMsg{err: core.WriteMediaPaths(agentDir, mediaDir)}
	}
}

func startAgentCmd(sup *core.Supervisor, agentDir string) tea.Cmd {
	return func() tea.Msg {
		code, err := sup.Start(context.Background(), agentDir)
		return agentStartedMsg{code: code, err: err}
	}
}

func waitForExitCmd(sup *core.Supervisor) tea.Cmd {
	exited := sup.Exited()
	return func() tea.Msg {
		<-exited
		return agentExitedMsg{err: sup.ExitErr()}
	}
}

func copyCodeCmd(agentDir string, write func(string) error) tea.Cmd {
	return func() tea.Msg {
		code := core.ReadPairingCode(agentDir)
		if code == "" {
			return copyDoneMsg{}
		}
		return copyDoneMsg{code: code, err: write(code)}
	}
}

// renderReportCmd renders the install report markdown in the background.
func renderReportCmd(md string, width int, cached *glamour.TermRenderer) tea.Cmd {
	if width <= 0 {
		width = 80
	}
	return func() tea.Msg {
		r := cached
		if r == nil {
			var err error
			r, err = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return reportRenderedMsg{content: md}
			}
		}
		rendered, err := r.Render(md)
		if err != nil {
			rendered = md
		}
		return reportRenderedMsg{
			content:  strings.TrimRight(rendered, "\n"),
			renderer: r,
		}
	}
}

// errorText returns err's message, or "Unknown error" if it has none.
func errorText(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown error"
	}
	return err.Error()
}
