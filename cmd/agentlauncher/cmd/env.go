package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/agentlauncher/internal/core"
)

var envCmd = &cobra.Command{
	Use:   "env <media-dir>",
	Short: "Point the agent's .env at a media folder",
	Long: `Rewrite VIDEO_ROOT_DIR and WATCH_PATH in the selected agent folder's .env
to the given media folder. Other lines are left untouched and keys missing
from the file are not added.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.close()

		agentDir, _, err := d.agentDir()
		if err != nil {
			return err
		}
		mediaDir, err := core.ResolveDir(args[0])
		if err != nil {
			return err
		}

		if err := core.WriteMediaPaths(agentDir, mediaDir); err != nil {
			d.logger.Error("env update failed", "dir", agentDir, "err", err)
			return fmt.Errorf("failed to update .env: %w", err)
		}
		if _, err := d.config.Update(func(cfg *core.Config) { cfg.MediaDir = mediaDir }); err != nil {
			return err
		}
		d.logger.Info("env updated", "dir", agentDir, "media", mediaDir)

		fmt.Fprintln(os.Stdout, ".env updated!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
