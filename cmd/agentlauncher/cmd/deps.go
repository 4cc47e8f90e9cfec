package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/barysiuk/agentlauncher/internal/core"
	"github.com/barysiuk/agentlauncher/internal/core/dependency"
)

// deps holds shared dependencies for CLI commands.
type deps struct {
	config   *core.ConfigManager
	logger   *slog.Logger
	resolver *core.Resolver
	closeLog func()
}

// newDeps creates shared dependencies. Called lazily by commands that need them.
// With mirror set, --verbose also copies log records to stderr.
func newDeps(cmd *cobra.Command, mirror bool) (*deps, error) {
	config, err := core.NewConfigManager()
	if err != nil {
		return nil, fmt.Errorf("initializing config: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	opts := core.LogOptions{Dir: config.LogsDir(), Debug: verbose}
	if verbose && mirror {
		opts.Mirror = os.Stderr
	}
	logger, closeLog, err := core.NewLogger(opts)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	return &deps{
		config:   config,
		logger:   logger,
		resolver: core.NewResolver(core.ResolverOptions{Logger: logger}),
		closeLog: closeLog,
	}, nil
}

func (d *deps) close() {
	if d.closeLog != nil {
		d.closeLog()
	}
}

// installer builds the dependency installer for this platform. interactive
// lets sudo prompt on the terminal.
func (d *deps) installer(interactive bool) *dependency.Installer {
	return dependency.NewInstaller(dependency.InstallerOptions{
		Checker: d.resolver,
		Strategy: dependency.StrategyFor(runtime.GOOS, dependency.StrategyOptions{
			Env:         d.resolver.Env(),
			Interactive: interactive,
			Logger:      d.logger,
		}),
		Logger: d.logger,
	})
}

// supervisor builds the agent supervisor from the saved settings. A nil
// cfg selects the defaults.
func (d *deps) supervisor(cfg *core.Config) *core.Supervisor {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	return core.NewSupervisor(core.SupervisorOptions{
		Resolver:        d.resolver,
		Port:            cfg.Settings.AgentPort,
		ClearCodeOnExit: cfg.Settings.ClearCodeOnExit,
		LogPath:         core.AgentLogPath(d.config.LogsDir()),
		Logger:          d.logger,
	})
}

// agentDir returns the saved agent folder, or ErrAgentDirNotSelected.
func (d *deps) agentDir() (string, *core.Config, error) {
	cfg, err := d.config.Load()
	if err != nil {
		return "", nil, err
	}
	if cfg.AgentDir == "" {
		return "", cfg, fmt.Errorf("%w; run 'agentlauncher use <dir>' first", core.ErrAgentDirNotSelected)
	}
	return cfg.AgentDir, cfg, nil
}
