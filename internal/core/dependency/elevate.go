package dependency

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/barysiuk/agentlauncher/internal/core"
)

// Elevator runs a shell script with administrator privileges.
// A cancelled or failed authentication is reported as core.ErrElevationDenied.
type Elevator interface {
	Elevate(ctx context.Context, script string) error
}

// OSAScriptElevator asks for credentials with the macOS authorization
// dialog.
type OSAScriptElevator struct {
	Runner core.Runner
	Env    []string
	Prompt string // Shown in the dialog
}

func (e OSAScriptElevator) Elevate(ctx context.Context, script string) error {
	prompt := e.Prompt
	if prompt == "" {
		prompt = "Local Agent Launcher wants to install software."
	}
	as := fmt.Sprintf("do shell script %s with prompt %s with administrator privileges",
		appleScriptQuote(script), appleScriptQuote(prompt))

	_, err := e.Runner.Run(ctx, e.Env, "", "osascript", "-e", as)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "User canceled") || strings.Contains(msg, "(-128)") {
			return fmt.Errorf("%w: %s", core.ErrElevationDenied, msg)
		}
		return err
	}
	return nil
}

// SudoElevator runs the script through sudo -n. In interactive mode the
// user is first asked to authenticate on the terminal, so a refused or
// failed password is reported as core.ErrElevationDenied and the script
// itself always runs with captured output.
type SudoElevator struct {
	Runner      core.Runner
	Env         []string
	Interactive bool

	// Authenticate prompts for the password. Defaults to sudo -v on the
	// controlling terminal.
	Authenticate func(ctx context.Context) error
}

func (e SudoElevator) Elevate(ctx context.Context, script string) error {
	if e.Interactive {
		auth := e.Authenticate
		if auth == nil {
			auth = e.validateOnTerminal
		}
		if err := auth(ctx); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return &core.CommandError{Command: "sudo -v", Err: err}
			}
			return fmt.Errorf("%w: %v", core.ErrElevationDenied, err)
		}
	}

	_, err := e.Runner.Run(ctx, e.Env, "", "sudo", "-n", "sh", "-c", script)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "password is required") || strings.Contains(msg, "a terminal is required") {
			return fmt.Errorf("%w: administrator password required, run `sudo -v` first", core.ErrElevationDenied)
		}
		return err
	}
	return nil
}

// validateOnTerminal refreshes sudo's cached credentials, prompting on the
// terminal if needed.
func (e SudoElevator) validateOnTerminal(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "sudo", "-v")
	cmd.Env = e.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// shellQuote quotes s for sh.
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`*?[]{}()<>|&;#~!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
