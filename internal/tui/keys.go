package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keybindings for the TUI.
type keyMap struct {
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Back   key.Binding
	Next   key.Binding
	Retry  key.Binding
	Copy   key.Binding
	Sudo   key.Binding
	Report key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("k/up", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/down", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run step"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c", "y"),
		key.WithHelp("c", "copy code"),
	),
	Sudo: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sudo login"),
	),
	Report: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "details"),
	),
}

// ---------------------------------------------------------------------------
// Per-step help keymaps for the help.Model component.
// Each implements help.KeyMap (ShortHelp + FullHelp).
// ---------------------------------------------------------------------------

// pathHelpKeyMap is shown on the folder entry steps.
type pathHelpKeyMap struct {
	canAdvance bool
	canGoBack  bool
}

func (k pathHelpKeyMap) ShortHelp() []key.Binding {
	bindings := []key.Binding{keys.Enter}
	if k.canAdvance {
		bindings = append(bindings, keys.Next)
	}
	if k.canGoBack {
		bindings = append(bindings, keys.Back)
	}
	return append(bindings, keys.Quit)
}

func (k pathHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// depsHelpKeyMap is shown on the dependency step.
type depsHelpKeyMap struct {
	running    bool
	failed     bool
	denied     bool // Last failure was an elevation denial
	canAdvance bool
	hasReport  bool
}

func (k depsHelpKeyMap) ShortHelp() []key.Binding {
	if k.running {
		return []key.Binding{keys.Quit}
	}
	bindings := []key.Binding{keys.Up, keys.Down}
	if k.failed {
		bindings = append(bindings, keys.Retry)
	} else if !k.canAdvance {
		bindings = append(bindings, keys.Enter)
	}
	if k.denied {
		bindings = append(bindings, keys.Sudo)
	}
	if k.hasReport {
		bindings = append(bindings, keys.Report)
	}
	if k.canAdvance {
		bindings = append(bindings, keys.Next)
	}
	return append(bindings, keys.Back, keys.Quit)
}

func (k depsHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// reportHelpKeyMap is shown while the install report is open.
type reportHelpKeyMap struct{}

func (k reportHelpKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Up, keys.Down, keys.Back}
}

func (k reportHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// actionHelpKeyMap is shown on single-action steps (write .env, start agent).
type actionHelpKeyMap struct {
	busy       bool
	canAdvance bool
}

func (k actionHelpKeyMap) ShortHelp() []key.Binding {
	if k.busy {
		return []key.Binding{keys.Quit}
	}
	bindings := []key.Binding{keys.Enter}
	if k.canAdvance {
		bindings = append(bindings, keys.Next)
	}
	return append(bindings, keys.Back, keys.Quit)
}

func (k actionHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// codeHelpKeyMap is shown on the pairing code step.
type codeHelpKeyMap struct {
	hasCode bool
}

func (k codeHelpKeyMap) ShortHelp() []key.Binding {
	bindings := []key.Binding{}
	if k.hasCode {
		bindings = append(bindings, keys.Copy)
	}
	finish := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "finish"))
	return append(bindings, finish, keys.Back, keys.Quit)
}

func (k codeHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
