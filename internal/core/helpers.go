package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Runner executes an external command to completion and returns its
// combined output. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, env []string, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit is returned as a *CommandError
// carrying the command's output.
func (ExecRunner) Run(ctx context.Context, env []string, dir, name string, args ...string) (string, error) {
	path := name
	if !strings.ContainsRune(name, filepath.Separator) {
		if found, err := lookPathIn(name, pathFromEnv(env)); err == nil {
			path = found
		}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = env
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), &CommandError{
			Command: strings.TrimSpace(name + " " + strings.Join(args, " ")),
			Output:  out.String(),
			Err:     err,
		}
	}
	return out.String(), nil
}

// FileExists reports whether path exists. Errors other than "not found"
// are treated as absent.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// dirExists returns true if the path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isExecutable returns true if path is a regular file with an execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// ExpandPath expands a leading ~ to the home directory and $VAR references.
func ExpandPath(p string) string {
	if strings.Contains(p, "$") {
		p = os.ExpandEnv(p)
	}

	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		p = filepath.Join(home, p[2:])
	} else if p == "~" {
		home, _ := os.UserHomeDir()
		p = home
	}

	return p
}

// ResolveDir expands and absolutizes path and checks that it is a directory.
func ResolveDir(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	absPath, err := filepath.Abs(ExpandPath(path))
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", absPath)
		}
		return "", fmt.Errorf("checking path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", absPath)
	}
	return absPath, nil
}
