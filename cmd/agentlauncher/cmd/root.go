package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/barysiuk/agentlauncher/internal/tui"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "agentlauncher",
	Short: "Set up and run a local agent",
	Long: `agentlauncher walks you through running a local agent on this machine:
select the agent folder, install node, ffmpeg, ffprobe and ngrok, point the
agent's .env at your media folder, start the agent and read its pairing code.

Run without arguments for the interactive wizard, or use the subcommands to
script each step.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal; logs only go to the log file.
		d, err := newDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.close()

		// A load error is reported by the TUI itself.
		cfg, _ := d.config.Load()

		app := tui.NewApp(tui.Options{
			Config:     d.config,
			Installer:  d.installer(false),
			Supervisor: d.supervisor(cfg),
			Logger:     d.logger,
		})

		d.logger.Info("starting tui", "version", Version)
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running tui: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "agentlauncher %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
