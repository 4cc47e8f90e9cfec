package dependency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/barysiuk/agentlauncher/internal/core"
)

// Phase is the stage of one dependency's install.
type Phase string

const (
	PhaseInstalling Phase = "installing"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// ProgressEvent reports a phase change for one dependency.
type ProgressEvent struct {
	Name    Name
	Phase   Phase
	Message string
}

// ProgressFunc receives progress events. It is called synchronously from
// the installing goroutine.
type ProgressFunc func(ProgressEvent)

// Channel returns a ProgressFunc that sends every event on ch.
func Channel(ch chan<- ProgressEvent) ProgressFunc {
	return func(e ProgressEvent) { ch <- e }
}

// CheckResult is the presence of one dependency.
type CheckResult struct {
	Name         Name
	Installed    bool
	ErrorMessage string
}

// Checker reports whether a command is available on the host.
// *core.Resolver implements it.
type Checker interface {
	IsInstalled(ctx context.Context, name string) bool
}

// InstallerOptions configures an Installer.
type InstallerOptions struct {
	Dependencies []Dependency // Defaults to All()
	Checker      Checker
	Strategy     Strategy
	Logger       *slog.Logger
}

// Installer checks for and installs the dependencies, one at a time.
type Installer struct {
	deps     []Dependency
	checker  Checker
	strategy Strategy
	logger   *slog.Logger

	mu sync.Mutex
}

// NewInstaller creates an Installer.
func NewInstaller(opts InstallerOptions) *Installer {
	if opts.Dependencies == nil {
		opts.Dependencies = All()
	}
	if opts.Logger == nil {
		opts.Logger = core.DiscardLogger()
	}
	return &Installer{
		deps:     opts.Dependencies,
		checker:  opts.Checker,
		strategy: opts.Strategy,
		logger:   opts.Logger,
	}
}

// Dependencies returns the managed dependencies in declared order.
func (i *Installer) Dependencies() []Dependency {
	return i.deps
}

// Check reports which dependencies are present without installing any.
func (i *Installer) Check(ctx context.Context) []CheckResult {
	results := make([]CheckResult, 0, len(i.deps))
	for _, d := range i.deps {
		r := CheckResult{Name: d.Name(), Installed: i.checker.IsInstalled(ctx, d.Command())}
		if !r.Installed {
			r.ErrorMessage = d.Command() + " not found"
		}
		results = append(results, r)
	}
	return results
}

// EnsureAll installs every missing dependency in declared order. A failure
// never stops the remaining dependencies; each outcome is recorded in the
// report. Present dependencies are not reinstalled. Only one pass runs at
// a time.
func (i *Installer) EnsureAll(ctx context.Context, progress ProgressFunc) Report {
	i.mu.Lock()
	defer i.mu.Unlock()

	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	report := newReport(i.deps)
	for _, d := range i.deps {
		label := d.DisplayName()
		progress(ProgressEvent{Name: d.Name(), Phase: PhaseInstalling, Message: fmt.Sprintf("Installing %s...", label)})

		if err := i.ensure(ctx, d); err != nil {
			msg := installMessage(err)
			report.Results[d.Name()] = false
			report.ErrorDetails[d.Name()] = msg
			if errors.Is(err, core.ErrElevationDenied) {
				report.Denied = append(report.Denied, d.Name())
			}
			i.logger.Error("dependency install failed", "dependency", d.Name(), "err", err)
			shown := msg
			if shown == "" {
				shown = "Unknown error"
			}
			progress(ProgressEvent{Name: d.Name(), Phase: PhaseError, Message: fmt.Sprintf("Failed to install %s: %s", label, shown)})
			continue
		}

		report.Results[d.Name()] = true
		progress(ProgressEvent{Name: d.Name(), Phase: PhaseSuccess, Message: fmt.Sprintf("%s installed successfully.", label)})
	}
	return report
}

func (i *Installer) ensure(ctx context.Context, d Dependency) error {
	if i.checker.IsInstalled(ctx, d.Command()) {
		i.logger.Debug("dependency present", "dependency", d.Name())
		return nil
	}

	i.logger.Info("installing dependency", "dependency", d.Name(), "strategy", i.strategy.Name())
	if err := i.strategy.Install(ctx, d); err != nil {
		return &core.InstallError{Dependency: string(d.Name()), Err: err}
	}
	return nil
}

// installMessage returns the user-facing reason carried by err.
func installMessage(err error) string {
	if ie, ok := err.(*core.InstallError); ok {
		if ie.Message != "" {
			return ie.Message
		}
		if ie.Err != nil {
			return strings.TrimSpace(ie.Err.Error())
		}
		return ""
	}
	return strings.TrimSpace(err.Error())
}

// Report aggregates the outcome of an install pass.
type Report struct {
	Order        []Name
	Results      map[Name]bool
	ErrorDetails map[Name]string

	// Denied lists the dependencies whose privileged step was refused.
	// Retrying after the user authenticates may succeed.
	Denied []Name
}

func newReport(deps []Dependency) Report {
	r := Report{
		Results:      make(map[Name]bool, len(deps)),
		ErrorDetails: make(map[Name]string, len(deps)),
	}
	for _, d := range deps {
		r.Order = append(r.Order, d.Name())
		r.Results[d.Name()] = false
	}
	return r
}

// OK reports whether every dependency is installed.
func (r Report) OK() bool {
	return len(r.Failed()) == 0
}

// Failed returns the dependencies that are not installed, in declared order.
func (r Report) Failed() []Name {
	var failed []Name
	for _, n := range r.Order {
		if !r.Results[n] {
			failed = append(failed, n)
		}
	}
	return failed
}

// ElevationDenied reports whether any failure was an elevation denial.
func (r Report) ElevationDenied() bool {
	return len(r.Denied) > 0
}

// Summary returns the one-line outcome.
func (r Report) Summary() string {
	failed := r.Failed()
	if len(failed) == 0 {
		return "All dependencies installed."
	}
	names := make([]string, len(failed))
	for i, n := range failed {
		names[i] = string(n)
	}
	return "Some dependencies failed to install: " + strings.Join(names, ", ")
}

// Details returns one "name: message" line per failed dependency, or "" if
// none failed.
func (r Report) Details() string {
	var lines []string
	for _, n := range r.Failed() {
		msg := r.ErrorDetails[n]
		if msg == "" {
			msg = "Unknown error"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", n, msg))
	}
	return strings.Join(lines, "\n")
}
