package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/agentlauncher/internal/core"
)

var useCmd = &cobra.Command{
	Use:   "use <dir>",
	Short: "Select the local agent folder",
	Long: `Select the folder the local agent runs from.

The folder must contain package.json, src/index.js and pairing-code.txt.
The selection is saved and used by the other commands.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.close()

		dir, err := core.ResolveDir(args[0])
		if err != nil {
			return err
		}

		check := core.ValidateAgentFolder(dir)
		if problem := check.Problem(); problem != "" {
			d.logger.Warn("agent folder rejected", "dir", dir, "problem", problem)
			return errors.New(problem)
		}

		if _, err := d.config.Update(func(cfg *core.Config) { cfg.AgentDir = dir }); err != nil {
			return err
		}
		d.logger.Info("agent folder selected", "dir", dir)

		fmt.Fprintf(os.Stdout, "Agent folder selected: %s\n", dir)
		for _, w := range check.Warnings() {
			fmt.Fprintf(os.Stdout, "  warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}
