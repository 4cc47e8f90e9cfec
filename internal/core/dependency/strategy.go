package dependency

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/barysiuk/agentlauncher/internal/core"
)

// Strategy installs a dependency on one family of platforms.
type Strategy interface {
	Name() string
	Install(ctx context.Context, d Dependency) error
}

// StrategyOptions carries what the strategies need from the host.
type StrategyOptions struct {
	Runner      core.Runner
	Env         []string
	HTTP        *retryablehttp.Client
	Interactive bool // Allow sudo to prompt on the terminal
	Logger      *slog.Logger
}

// StrategyFor returns the install strategy for goos: direct download on
// macOS, Chocolatey on Windows, apt-get elsewhere.
func StrategyFor(goos string, opts StrategyOptions) Strategy {
	if opts.Runner == nil {
		opts.Runner = core.ExecRunner{}
	}
	if opts.Env == nil {
		opts.Env = core.AugmentedEnv(os.Environ())
	}

	switch goos {
	case "darwin":
		client := opts.HTTP
		if client == nil {
			client = NewHTTPClient(opts.Logger)
		}
		return &DirectDownload{
			GOOS:       goos,
			HTTP:       client,
			TempDir:    os.TempDir(),
			InstallDir: "/usr/local/bin",
			Elevator:   OSAScriptElevator{Runner: opts.Runner, Env: opts.Env},
		}
	case "windows":
		return &PackageManager{Manager: "choco", Runner: opts.Runner, Env: opts.Env}
	default:
		return &PackageManager{
			Manager:  "apt-get",
			Runner:   opts.Runner,
			Env:      opts.Env,
			Elevator: SudoElevator{Runner: opts.Runner, Env: opts.Env, Interactive: opts.Interactive},
		}
	}
}

// DirectDownload fetches a fixed asset and installs it with elevated
// privileges.
type DirectDownload struct {
	GOOS       string
	HTTP       *retryablehttp.Client
	TempDir    string
	InstallDir string
	Elevator   Elevator
}

func (s *DirectDownload) Name() string { return "download" }

func (s *DirectDownload) Install(ctx context.Context, d Dependency) error {
	dl, ok := d.Download(s.GOOS)
	if !ok {
		return fmt.Errorf("no download available for %s on %s", d.DisplayName(), s.GOOS)
	}

	dest := filepath.Join(s.TempDir, dl.FileName)
	if err := downloadFile(ctx, s.HTTP, dl.URL, dest); err != nil {
		return fmt.Errorf("downloading %s: %w", d.DisplayName(), err)
	}

	var script string
	switch dl.Kind {
	case ArchivePkg:
		script = fmt.Sprintf("installer -pkg %s -target /", shellQuote(dest))
	case ArchiveZip:
		bin, err := extractBinary(dest, dl.Binary, s.TempDir)
		if err != nil {
			return fmt.Errorf("unzipping %s: %w", d.DisplayName(), err)
		}
		target := filepath.Join(s.InstallDir, dl.Binary)
		script = fmt.Sprintf("mkdir -p %s && chmod +x %s && mv %s %s",
			shellQuote(s.InstallDir), shellQuote(bin), shellQuote(bin), shellQuote(target))
	default:
		return fmt.Errorf("unsupported archive kind %d", dl.Kind)
	}

	return s.Elevator.Elevate(ctx, script)
}

// PackageManager installs through the system package manager. A non-nil
// Elevator marks the manager as privileged.
type PackageManager struct {
	Manager  string // "choco" or "apt-get"
	Runner   core.Runner
	Env      []string
	Elevator Elevator
}

func (s *PackageManager) Name() string { return s.Manager }

func (s *PackageManager) Install(ctx context.Context, d Dependency) error {
	args := s.args(d.Package(s.Manager))

	if s.Elevator != nil {
		quoted := make([]string, 0, len(args)+1)
		quoted = append(quoted, s.Manager)
		for _, a := range args {
			quoted = append(quoted, shellQuote(a))
		}
		return s.Elevator.Elevate(ctx, strings.Join(quoted, " "))
	}

	_, err := s.Runner.Run(ctx, s.Env, "", s.Manager, args...)
	return err
}

func (s *PackageManager) args(pkg string) []string {
	if s.Manager == "choco" {
		return []string{"install", pkg, "-y"}
	}
	return []string{"install", "-y", pkg}
}
