package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/agentlauncher/internal/core"
	"github.com/barysiuk/agentlauncher/internal/core/dependency"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the launcher setup",
	Long: `Show the selected agent and media folders, the agent folder check,
the media paths in the agent's .env and which dependencies are installed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.close()

		cfg, err := d.config.Load()
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Config: %s\n", d.config.ConfigPath())
		fmt.Fprintf(os.Stdout, "Agent port: %d\n", cfg.Settings.AgentPort)
		fmt.Fprintf(os.Stdout, "Media folder: %s\n", valueOr(cfg.MediaDir, "(not selected)"))

		if cfg.AgentDir == "" {
			fmt.Fprintln(os.Stdout, "Agent folder: (not selected)")
		} else {
			fmt.Fprintf(os.Stdout, "Agent folder: %s\n", cfg.AgentDir)
			printFolderCheck(os.Stdout, core.ValidateAgentFolder(cfg.AgentDir))
			showAgentEnv(cfg.AgentDir)
		}

		fmt.Fprintln(os.Stdout, "Dependencies:")
		printCheckResults(os.Stdout, d.installer(false).Check(cmd.Context()))

		home, _ := os.UserHomeDir()
		if ok, path := dependency.NgrokAuthConfigured(home); ok {
			fmt.Fprintf(os.Stdout, "ngrok authtoken: configured (%s)\n", path)
		} else {
			fmt.Fprintln(os.Stdout, "ngrok authtoken: not configured; run 'ngrok config add-authtoken <token>'")
		}
		return nil
	},
}

// showAgentEnv prints the media path keys of the agent's .env.
func showAgentEnv(agentDir string) {
	env, err := core.ReadAgentEnv(agentDir)
	if err != nil {
		fmt.Fprintln(os.Stdout, "  .env: not found")
		return
	}
	for _, k := range core.MediaPathKeys {
		fmt.Fprintf(os.Stdout, "  %-18s %s\n", k, valueOr(env[k], "(not set)"))
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
