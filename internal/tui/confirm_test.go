package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// runCmd executes cmd and flattens batches into the resulting messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

type quitRequested struct{}

func confirmResult(t *testing.T, msgs []tea.Msg) confirmResultMsg {
	t.Helper()
	for _, msg := range msgs {
		if r, ok := msg.(confirmResultMsg); ok {
			return r
		}
	}
	t.Fatalf("no confirmResultMsg in %v", msgs)
	return confirmResultMsg{}
}

func TestConfirmShow(t *testing.T) {
	m := newConfirmModel()
	m = m.show("Stop the agent and quit?", func() tea.Msg { return quitRequested{} })

	if !m.active {
		t.Error("confirm should be active after show")
	}
	if m.focusYes {
		t.Error("focus should default to the cancel button")
	}
	if m.yesLabel != "Yes" || m.noLabel != "No" {
		t.Errorf("labels = %q/%q, want Yes/No", m.yesLabel, m.noLabel)
	}
}

func TestConfirmKeys(t *testing.T) {
	tests := []struct {
		name      string
		key       tea.KeyMsg
		confirmed bool
	}{
		{"y", keyRune('y'), true},
		{"Y", keyRune('Y'), true},
		{"n", keyRune('n'), false},
		{"N", keyRune('N'), false},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, false},
		{"enter on default focus", tea.KeyMsg{Type: tea.KeyEnter}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newConfirmModel().show("Quit?", func() tea.Msg { return quitRequested{} })

			m, cmd, consumed := m.update(tt.key)
			if !consumed {
				t.Error("key should be consumed")
			}
			if m.active {
				t.Error("dialog should close")
			}

			msgs := runCmd(cmd)
			if got := confirmResult(t, msgs); got.confirmed != tt.confirmed {
				t.Errorf("confirmed = %v, want %v", got.confirmed, tt.confirmed)
			}
			ran := false
			for _, msg := range msgs {
				if _, ok := msg.(quitRequested); ok {
					ran = true
				}
			}
			if ran != tt.confirmed {
				t.Errorf("onConfirm ran = %v, want %v", ran, tt.confirmed)
			}
		})
	}
}

func TestConfirmFocusSwitch(t *testing.T) {
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyTab},
		{Type: tea.KeyShiftTab},
		{Type: tea.KeyLeft},
		{Type: tea.KeyRight},
		keyRune('h'),
		keyRune('l'),
	} {
		m := newConfirmModel().show("Quit?", nil)
		m, _, _ = m.update(k)
		if !m.focusYes {
			t.Errorf("%s should move focus to Yes", k)
		}
		m, _, _ = m.update(k)
		if m.focusYes {
			t.Errorf("%s twice should move focus back to No", k)
		}
	}
}

func TestConfirmEnterOnYes(t *testing.T) {
	m := newConfirmModel().show("Quit?", func() tea.Msg { return quitRequested{} })
	m, _, _ = m.update(tea.KeyMsg{Type: tea.KeyTab})

	_, cmd, _ := m.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !confirmResult(t, runCmd(cmd)).confirmed {
		t.Error("enter on Yes should confirm")
	}
}

func TestConfirmConsumesOtherKeys(t *testing.T) {
	m := newConfirmModel().show("Quit?", nil)
	m, cmd, consumed := m.update(keyRune('c'))
	if !consumed {
		t.Error("other keys should be consumed while active")
	}
	if cmd != nil {
		t.Error("other keys should not produce commands")
	}
	if !m.active {
		t.Error("dialog should stay open")
	}
}

func TestConfirmInactive(t *testing.T) {
	m := newConfirmModel()
	if _, _, consumed := m.update(keyRune('y')); consumed {
		t.Error("inactive dialog should not consume keys")
	}
	if m.view() != "" {
		t.Error("inactive dialog should render nothing")
	}
}

func TestConfirmView(t *testing.T) {
	m := newConfirmModel().showWithLabels("Stop the agent and quit?", "Quit", "Stay", nil)
	m = m.setSize(80, 20)

	v := m.view()
	for _, want := range []string{"Stop the agent and quit?", "Quit", "Stay"} {
		if !strings.Contains(v, want) {
			t.Errorf("view() missing %q", want)
		}
	}
	if got := strings.Count(v, "\n") + 1; got != 20 {
		t.Errorf("view() height = %d, want 20 (placed in area)", got)
	}
}
