package core

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ExtraPaths are install directories prepended to the search path of every
// command the launcher runs. Package managers put binaries here, and a
// launcher started from a desktop session often inherits a PATH without them.
var ExtraPaths = []string{"/usr/local/bin", "/opt/homebrew/bin"}

// KnownLocations lists absolute install locations checked when a command
// cannot be found on the augmented search path. Installers that do not
// update the current session's PATH leave binaries here.
var KnownLocations = map[string][]string{
	"node":    {"/usr/local/bin/node"},
	"npm":     {"/usr/local/bin/npm", "/opt/homebrew/bin/npm"},
	"ffmpeg":  {"/usr/local/bin/ffmpeg"},
	"ffprobe": {"/usr/local/bin/ffprobe"},
	"ngrok":   {"/usr/local/bin/ngrok"},
	"brew":    {"/opt/homebrew/bin/brew"},
}

// ResolverOptions configures a Resolver. Zero values select the defaults.
type ResolverOptions struct {
	Runner         Runner              // Defaults to ExecRunner
	Environ        func() []string     // Defaults to os.Environ
	ExtraPaths     []string            // Defaults to ExtraPaths
	KnownLocations map[string][]string // Defaults to KnownLocations
	Logger         *slog.Logger
}

// Resolver locates and launches executables on the host, trying a primary
// name and then a list of fallbacks against an augmented search path.
type Resolver struct {
	runner  Runner
	environ func() []string
	extra   []string
	known   map[string][]string
	logger  *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	r := &Resolver{
		runner:  opts.Runner,
		environ: opts.Environ,
		extra:   opts.ExtraPaths,
		known:   opts.KnownLocations,
		logger:  opts.Logger,
	}
	if r.runner == nil {
		r.runner = ExecRunner{}
	}
	if r.environ == nil {
		r.environ = os.Environ
	}
	if r.extra == nil {
		r.extra = ExtraPaths
	}
	if r.known == nil {
		r.known = KnownLocations
	}
	if r.logger == nil {
		r.logger = DiscardLogger()
	}
	return r
}

// Launch describes a long-running command to start.
type Launch struct {
	Name      string   // Primary command name or path
	Args      []string // Arguments passed to every candidate
	Dir       string   // Working directory
	Fallbacks []string // Absolute paths tried in order after Name
	Stdout    io.Writer
	Stderr    io.Writer

	// Configure is applied to each candidate before Start, e.g. to set
	// process attributes.
	Configure func(cmd *exec.Cmd)
}

// Env returns the augmented environment used for every command.
func (r *Resolver) Env() []string {
	return augmentEnv(r.environ(), r.extra)
}

// ResolveAndRun starts the first candidate that spawns successfully: the
// primary name first, then each fallback in order. If every candidate fails
// to start it returns a *ResolutionError and no process.
func (r *Resolver) ResolveAndRun(l Launch) (*exec.Cmd, error) {
	env := r.Env()
	searchPath := pathFromEnv(env)

	candidates := append([]string{l.Name}, l.Fallbacks...)
	resErr := &ResolutionError{Command: l.Name}

	for _, candidate := range candidates {
		path, err := resolveCandidate(candidate, searchPath)
		if err != nil {
			resErr.Attempts = append(resErr.Attempts, Attempt{Candidate: candidate, Err: err})
			continue
		}

		cmd := exec.Command(path, l.Args...)
		cmd.Dir = l.Dir
		cmd.Env = env
		cmd.Stdout = l.Stdout
		cmd.Stderr = l.Stderr
		if l.Configure != nil {
			l.Configure(cmd)
		}

		if err := cmd.Start(); err != nil {
			r.logger.Debug("spawn attempt failed", "candidate", candidate, "err", err)
			resErr.Attempts = append(resErr.Attempts, Attempt{Candidate: candidate, Err: err})
			continue
		}

		r.logger.Info("spawned", "candidate", path, "pid", cmd.Process.Pid, "dir", l.Dir)
		return cmd, nil
	}

	return nil, resErr
}

// Run executes a short-lived command to completion through the augmented
// environment. Fallbacks are tried only when the previous candidate could
// not be found; a candidate that runs and fails ends the attempt.
func (r *Resolver) Run(ctx context.Context, dir, name string, fallbacks []string, args ...string) (string, error) {
	env := r.Env()
	searchPath := pathFromEnv(env)

	candidates := append([]string{name}, fallbacks...)
	resErr := &ResolutionError{Command: name}

	for _, candidate := range candidates {
		path, err := resolveCandidate(candidate, searchPath)
		if err != nil {
			resErr.Attempts = append(resErr.Attempts, Attempt{Candidate: candidate, Err: err})
			continue
		}
		out, err := r.runner.Run(ctx, env, dir, path, args...)
		if err != nil && isNotFound(err) {
			resErr.Attempts = append(resErr.Attempts, Attempt{Candidate: candidate, Err: err})
			continue
		}
		return out, err
	}

	return "", resErr
}

// IsInstalled reports whether name is available: first by running the
// platform's locate utility through the augmented environment, then by
// checking the known absolute install locations for name.
func (r *Resolver) IsInstalled(ctx context.Context, name string) bool {
	locator := "which"
	if runtime.GOOS == "windows" {
		locator = "where"
	}

	if _, err := r.runner.Run(ctx, r.Env(), "", locator, name); err == nil {
		return true
	}

	for _, p := range r.known[name] {
		if isExecutable(p) {
			r.logger.Debug("found at known location", "command", name, "path", p)
			return true
		}
	}
	return false
}

// LookPath returns the path name resolves to on the augmented search path,
// falling back to the known install locations.
func (r *Resolver) LookPath(name string) (string, error) {
	if path, err := lookPathIn(name, pathFromEnv(r.Env())); err == nil {
		return path, nil
	}
	for _, p := range r.known[name] {
		if isExecutable(p) {
			return p, nil
		}
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// AugmentedEnv returns a copy of environ whose PATH has every ExtraPaths
// entry not already present prepended to it.
func AugmentedEnv(environ []string) []string {
	return augmentEnv(environ, ExtraPaths)
}

func augmentEnv(environ []string, extra []string) []string {
	sep := string(os.PathListSeparator)
	current := pathFromEnv(environ)

	present := make(map[string]bool)
	for _, dir := range filepath.SplitList(current) {
		present[dir] = true
	}

	var prepend []string
	for _, dir := range extra {
		if !present[dir] {
			prepend = append(prepend, dir)
			present[dir] = true
		}
	}

	path := current
	if len(prepend) > 0 {
		path = strings.Join(prepend, sep)
		if current != "" {
			path += sep + current
		}
	}

	out := make([]string, 0, len(environ)+1)
	replaced := false
	for _, kv := range environ {
		if isPathVar(kv) {
			if !replaced {
				out = append(out, kv[:strings.IndexByte(kv, '=')]+"="+path)
				replaced = true
			}
			continue
		}
		out = append(out, kv)
	}
	if !replaced {
		out = append(out, "PATH="+path)
	}
	return out
}

// pathFromEnv returns the PATH value from an environment slice.
func pathFromEnv(environ []string) string {
	for _, kv := range environ {
		if isPathVar(kv) {
			return kv[strings.IndexByte(kv, '=')+1:]
		}
	}
	return ""
}

func isPathVar(kv string) bool {
	idx := strings.IndexByte(kv, '=')
	if idx < 0 {
		return false
	}
	if runtime.GOOS == "windows" {
		return strings.EqualFold(kv[:idx], "PATH")
	}
	return kv[:idx] == "PATH"
}

// resolveCandidate returns candidate itself when it is a path, or its
// location on searchPath otherwise.
func resolveCandidate(candidate, searchPath string) (string, error) {
	if strings.ContainsRune(candidate, filepath.Separator) || strings.ContainsRune(candidate, '/') {
		if _, err := os.Stat(candidate); err != nil {
			return "", err
		}
		return candidate, nil
	}
	return lookPathIn(candidate, searchPath)
}

// lookPathIn searches the directories of pathList for an executable name.
// Unlike exec.LookPath it does not consult the launcher's own PATH.
func lookPathIn(name, pathList string) (string, error) {
	exts := []string{""}
	if runtime.GOOS == "windows" {
		exts = windowsExts()
	}
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		for _, ext := range exts {
			p := filepath.Join(dir, name+ext)
			if isExecutable(p) {
				return p, nil
			}
		}
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func windowsExts() []string {
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		return []string{".com", ".exe", ".bat", ".cmd"}
	}
	var exts []string
	for _, e := range strings.Split(strings.ToLower(pathext), ";") {
		if e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
