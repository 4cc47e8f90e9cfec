package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

type runCall struct {
	Env  []string
	Dir  string
	Name string
	Args []string
}

// fakeRunner records calls and answers them with fn.
type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall
	fn    func(name string, args []string) (string, error)
}

func (f *fakeRunner) Run(_ context.Context, env []string, dir, name string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{Env: env, Dir: dir, Name: name, Args: args})
	f.mu.Unlock()
	if f.fn == nil {
		return "", nil
	}
	return f.fn(name, args)
}

func (f *fakeRunner) Calls() []runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runCall(nil), f.calls...)
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func envWithPath(path string) func() []string {
	return func() []string { return []string{"HOME=/home/test", "PATH=" + path} }
}

func TestAugmentedEnv_PrependsMissingDirs(t *testing.T) {
	sep := string(os.PathListSeparator)
	environ := []string{"HOME=/h", "PATH=" + strings.Join([]string{"/usr/bin", "/usr/local/bin"}, sep)}

	got := AugmentedEnv(environ)

	want := "PATH=" + strings.Join([]string{"/opt/homebrew/bin", "/usr/bin", "/usr/local/bin"}, sep)
	if pathEntry(got) != want {
		t.Errorf("got %q, want %q", pathEntry(got), want)
	}
	if got[0] != "HOME=/h" {
		t.Errorf("other variables should be kept, got %v", got)
	}
	if environ[1] != "PATH="+strings.Join([]string{"/usr/bin", "/usr/local/bin"}, sep) {
		t.Error("input slice must not be modified")
	}
}

func TestAugmentedEnv_AlreadyPresent(t *testing.T) {
	sep := string(os.PathListSeparator)
	path := strings.Join([]string{"/opt/homebrew/bin", "/usr/local/bin", "/bin"}, sep)

	got := AugmentedEnv([]string{"PATH=" + path})
	if pathEntry(got) != "PATH="+path {
		t.Errorf("got %q, want unchanged", pathEntry(got))
	}
}

func TestAugmentedEnv_NoPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	got := AugmentedEnv([]string{"HOME=/h"})
	want := "PATH=" + strings.Join(ExtraPaths, sep)
	if pathEntry(got) != want {
		t.Errorf("got %q, want %q", pathEntry(got), want)
	}
}

func pathEntry(env []string) string {
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			return kv
		}
	}
	return ""
}

func TestResolveAndRun_AllAttemptsFail(t *testing.T) {
	r := NewResolver(ResolverOptions{Environ: envWithPath(t.TempDir()), ExtraPaths: []string{}})

	cmd, err := r.ResolveAndRun(Launch{
		Name:      "agentlauncher-no-such-command",
		Fallbacks: []string{"/nonexistent/one", "/nonexistent/two"},
	})
	if cmd != nil {
		t.Error("expected no process on failure")
	}
	if !errors.Is(err, ErrAllAttemptsFailed) {
		t.Fatalf("expected ErrAllAttemptsFailed, got %v", err)
	}
	re, ok := IsResolutionError(err)
	if !ok {
		t.Fatalf("expected *ResolutionError, got %T", err)
	}
	if len(re.Attempts) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(re.Attempts))
	}
	if re.Attempts[2].Candidate != "/nonexistent/two" {
		t.Errorf("last attempt = %q", re.Attempts[2].Candidate)
	}
}

func TestResolveAndRun_FallsBackToAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "fake-npm", "exit 0")

	r := NewResolver(ResolverOptions{Environ: envWithPath(t.TempDir()), ExtraPaths: []string{}})
	cmd, err := r.ResolveAndRun(Launch{
		Name:      "agentlauncher-no-such-command",
		Fallbacks: []string{"/nonexistent/npm", script},
		Dir:       dir,
	})
	if err != nil {
		t.Fatalf("ResolveAndRun() error: %v", err)
	}
	if cmd.Path != script {
		t.Errorf("started %q, want %q", cmd.Path, script)
	}
	if err := cmd.Wait(); err != nil {
		t.Errorf("Wait() error: %v", err)
	}
}

func TestResolveAndRun_UsesExtraPaths(t *testing.T) {
	extra := t.TempDir()
	script := writeScript(t, extra, "mytool", `echo "$PATH"`)

	r := NewResolver(ResolverOptions{
		Environ:    envWithPath("/nonexistent"),
		ExtraPaths: []string{extra},
	})

	var out strings.Builder
	cmd, err := r.ResolveAndRun(Launch{Name: "mytool", Stdout: &out})
	if err != nil {
		t.Fatalf("ResolveAndRun() error: %v", err)
	}
	if err := cmd.Wait(); err != nil {
		t.Fatal(err)
	}
	if cmd.Path != script {
		t.Errorf("started %q, want %q", cmd.Path, script)
	}
	if !strings.HasPrefix(strings.TrimSpace(out.String()), extra) {
		t.Errorf("child PATH = %q, want augmented PATH", out.String())
	}
}

func TestResolver_IsInstalled(t *testing.T) {
	known := t.TempDir()
	knownBin := writeScript(t, known, "ffmpeg", "exit 0")

	runner := &fakeRunner{fn: func(name string, args []string) (string, error) {
		if args[0] == "node" {
			return "/usr/bin/node\n", nil
		}
		return "", errors.New("exit status 1")
	}}
	r := NewResolver(ResolverOptions{
		Runner:         runner,
		Environ:        envWithPath("/usr/bin"),
		ExtraPaths:     []string{"/extra"},
		KnownLocations: map[string][]string{"ffmpeg": {"/nonexistent/ffmpeg", knownBin}},
	})

	if !r.IsInstalled(context.Background(), "node") {
		t.Error("node should be found by the locator")
	}
	if !r.IsInstalled(context.Background(), "ffmpeg") {
		t.Error("ffmpeg should be found at its known location")
	}
	if r.IsInstalled(context.Background(), "ngrok") {
		t.Error("ngrok should not be installed")
	}

	calls := runner.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 locator calls, got %d", len(calls))
	}
	if calls[0].Name != "which" {
		t.Errorf("locator = %q, want which", calls[0].Name)
	}
	if !strings.HasPrefix(pathEntry(calls[0].Env), "PATH=/extra") {
		t.Errorf("locator env PATH = %q, want augmented", pathEntry(calls[0].Env))
	}
}

func TestResolver_RunTriesFallbacksOnlyWhenNotFound(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "npm", "exit 0")

	runner := &fakeRunner{fn: func(name string, args []string) (string, error) {
		return "npm ERR! boom", &CommandError{Output: "npm ERR! boom", Err: errors.New("exit status 1")}
	}}
	r := NewResolver(ResolverOptions{Runner: runner, Environ: envWithPath(t.TempDir()), ExtraPaths: []string{}})

	_, err := r.Run(context.Background(), dir, "npm", []string{"/nonexistent/npm", script, "/never/tried"}, "install")
	if err == nil || err.Error() != "npm ERR! boom" {
		t.Fatalf("Run() error = %v, want command output", err)
	}

	calls := runner.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected a single run, got %d", len(calls))
	}
	if calls[0].Name != script || calls[0].Dir != dir {
		t.Errorf("ran %q in %q", calls[0].Name, calls[0].Dir)
	}
}

func TestResolver_RunNothingFound(t *testing.T) {
	runner := &fakeRunner{}
	r := NewResolver(ResolverOptions{Runner: runner, Environ: envWithPath(t.TempDir()), ExtraPaths: []string{}})

	_, err := r.Run(context.Background(), "", "agentlauncher-no-such-command", nil)
	if !errors.Is(err, ErrAllAttemptsFailed) {
		t.Errorf("expected ErrAllAttemptsFailed, got %v", err)
	}
	if len(runner.Calls()) != 0 {
		t.Error("runner should not be called when nothing resolves")
	}
}
