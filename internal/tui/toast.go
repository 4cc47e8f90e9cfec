package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// toastType defines the visual style and behavior of a toast notification.
type toastType int

const (
	toastSuccess toastType = iota
	toastError
	toastWarning
	toastLoading // Shows a spinner; persists until replaced or dismissed.
)

// toastAutoDismiss is how long success/error/warning toasts stay visible.
const toastAutoDismiss = 3 * time.Second

// toastModel is a one-line notification that replaces the help bar while
// active. Showing a new toast replaces the previous one.
type toastModel struct {
	active  bool
	message string
	kind    toastType
	id      int // Monotonic ID to ignore stale dismiss messages.
	nextID  int

	spinner spinner.Model
}

// toastDismissMsg is sent by the auto-dismiss timer.
type toastDismissMsg struct {
	id int
}

func newToastModel() toastModel {
	return toastModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
	}
}

// show displays a new toast. Loading toasts start the spinner; every other
// kind schedules its own dismissal.
func (m toastModel) show(message string, kind toastType) (toastModel, tea.Cmd) {
	m.active = true
	m.message = message
	m.kind = kind
	m.id = m.nextID
	m.nextID++

	if kind == toastLoading {
		return m, m.spinner.Tick
	}

	id := m.id
	return m, tea.Tick(toastAutoDismiss, func(time.Time) tea.Msg {
		return toastDismissMsg{id: id}
	})
}

// showError displays err as an error toast.
func (m toastModel) showError(err error) (toastModel, tea.Cmd) {
	return m.show("Error: "+err.Error(), toastError)
}

// dismiss hides the toast immediately.
func (m toastModel) dismiss() toastModel {
	m.active = false
	m.message = ""
	return m
}

// loading reports whether a spinner toast is visible.
func (m toastModel) loading() bool {
	return m.active && m.kind == toastLoading
}

// update handles spinner ticks and auto-dismiss messages.
func (m toastModel) update(msg tea.Msg) (toastModel, tea.Cmd) {
	switch msg := msg.(type) {
	case toastDismissMsg:
		if msg.id == m.id {
			m = m.dismiss()
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// view renders the toast with a 1 char indent, or "" when inactive.
func (m toastModel) view() string {
	if !m.active {
		return ""
	}

	switch m.kind {
	case toastSuccess:
		return " " + installedStyle.Render(iconDone+" "+m.message)
	case toastError:
		return " " + errorStyle.Render(iconFailed+" "+m.message)
	case toastWarning:
		return " " + warningStyle.Render(iconWarning+" "+m.message)
	default:
		return " " + m.spinner.View() + mutedStyle.Render(m.message)
	}
}
