package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAllAttemptsFailed is matched by every *ResolutionError.
	ErrAllAttemptsFailed = errors.New("all spawn attempts failed")

	// ErrAgentDirNotSelected is returned when an operation needs the agent
	// working directory before one has been selected.
	ErrAgentDirNotSelected = errors.New("Agent folder not selected")

	// ErrElevationDenied is returned when the user cancels or fails an
	// elevation prompt. It is distinct from the privileged command failing.
	ErrElevationDenied = errors.New("elevation denied")
)

// Attempt records one candidate tried by the command resolver.
type Attempt struct {
	Candidate string
	Err       error
}

// ResolutionError is returned when no candidate executable could be started.
type ResolutionError struct {
	Command  string
	Attempts []Attempt
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ErrAllAttemptsFailed, e.Command)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; %s: %v", a.Candidate, a.Err)
	}
	return b.String()
}

// Is reports ErrAllAttemptsFailed so callers can use errors.Is.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrAllAttemptsFailed
}

// PreconditionError is returned when the agent's own package dependencies
// could not be materialized before launch.
type PreconditionError struct {
	Dir string
	Err error
}

func (e *PreconditionError) Error() string {
	return "Failed to install dependencies for local agent: " + e.Err.Error()
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// ConfigWriteError is returned when the agent's .env could not be rewritten.
type ConfigWriteError struct {
	Path string
	Err  error
}

func (e *ConfigWriteError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("updating %s: %v", e.Path, e.Err)
}

func (e *ConfigWriteError) Unwrap() error { return e.Err }

// CommandError carries the output of a failed external command.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if msg := strings.TrimSpace(e.Output); msg != "" {
		return msg
	}
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsResolutionError checks whether an error is a *ResolutionError and returns it.
func IsResolutionError(err error) (*ResolutionError, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsPreconditionError checks whether an error is a *PreconditionError and returns it.
func IsPreconditionError(err error) (*PreconditionError, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// InstallError is returned when a dependency could not be installed.
// Message is the human-readable reason shown in the install report.
type InstallError struct {
	Dependency string
	Message    string
	Err        error
}

func (e *InstallError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("installing %s: %s", e.Dependency, msg)
}

func (e *InstallError) Unwrap() error { return e.Err }
