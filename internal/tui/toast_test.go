package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

func TestToastShow(t *testing.T) {
	tests := []struct {
		name string
		kind toastType
	}{
		{"success", toastSuccess},
		{"error", toastError},
		{"warning", toastWarning},
		{"loading", toastLoading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newToastModel()
			m, cmd := m.show(".env updated!", tt.kind)

			if !m.active {
				t.Error("toast should be active after show")
			}
			if m.kind != tt.kind {
				t.Errorf("kind = %d, want %d", m.kind, tt.kind)
			}
			if cmd == nil {
				t.Error("show should return a timer or spinner cmd")
			}
			if !strings.Contains(m.view(), ".env updated!") {
				t.Errorf("view() = %q, should contain message", m.view())
			}
			if !strings.HasPrefix(m.view(), " ") {
				t.Errorf("view() = %q, should start with space indent", m.view())
			}
		})
	}
}

func TestToastShowError(t *testing.T) {
	m := newToastModel()
	m, _ = m.showError(errors.New("Agent folder not selected"))

	if m.kind != toastError {
		t.Errorf("kind = %d, want toastError", m.kind)
	}
	if m.message != "Error: Agent folder not selected" {
		t.Errorf("message = %q", m.message)
	}
}

func TestToastDismissMatchingID(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("Copied to clipboard!", toastSuccess)

	m, _ = m.update(toastDismissMsg{id: m.id})
	if m.active {
		t.Error("toast should be dismissed when ID matches")
	}
	if m.view() != "" {
		t.Errorf("view() = %q, want empty after dismiss", m.view())
	}
}

func TestToastDismissStaleID(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("first", toastSuccess)
	staleID := m.id
	m, _ = m.show("second", toastSuccess)

	m, _ = m.update(toastDismissMsg{id: staleID})
	if !m.active {
		t.Error("toast should still be active when dismiss ID is stale")
	}
	if m.message != "second" {
		t.Errorf("message = %q, want %q", m.message, "second")
	}
}

func TestToastMonotonicIDs(t *testing.T) {
	m := newToastModel()
	last := -1
	for i := 0; i < 5; i++ {
		m, _ = m.show("msg", toastSuccess)
		if m.id <= last {
			t.Fatalf("id %d not greater than %d", m.id, last)
		}
		last = m.id
	}
}

func TestToastSpinnerTick(t *testing.T) {
	tick := spinner.TickMsg{Time: time.Now()}

	m := newToastModel()
	m, _ = m.show("done", toastSuccess)
	if _, cmd := m.update(tick); cmd != nil {
		t.Error("spinner tick on non-loading toast should return nil cmd")
	}

	m, _ = m.show("Starting local agent...", toastLoading)
	if !m.loading() {
		t.Fatal("loading() = false for loading toast")
	}
	m, _ = m.update(tick)
	if !m.active || m.kind != toastLoading {
		t.Error("loading toast should survive spinner ticks")
	}
}

func TestToastLoadingReplacedBySuccess(t *testing.T) {
	m := newToastModel()
	m, _ = m.show("Starting local agent...", toastLoading)
	m, _ = m.show("Local agent started!", toastSuccess)

	if m.loading() {
		t.Error("success toast should replace the spinner")
	}
	if m.message != "Local agent started!" {
		t.Errorf("message = %q", m.message)
	}
}
