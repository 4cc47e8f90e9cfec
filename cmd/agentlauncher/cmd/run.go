package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// shutdownTimeout bounds port and pairing code cleanup after the agent stops.
const shutdownTimeout = 15 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the local agent and wait",
	Long: `Start the local agent in the selected folder and print its pairing code.

npm install runs first if node_modules is missing. The agent keeps running
until you press Ctrl+C or it exits on its own; then its port is freed and the
pairing code is cleared.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.close()

		agentDir, cfg, err := d.agentDir()
		if err != nil {
			return err
		}
		sup := d.supervisor(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintln(os.Stdout, "Starting local agent...")
		code, err := sup.Start(ctx, agentDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "Local agent started!")
		if code != "" {
			fmt.Fprintf(os.Stdout, "Pairing code: %s\n", code)
		} else {
			fmt.Fprintln(os.Stdout, "No pairing code found! Run 'agentlauncher code' to check again.")
		}

		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stdout, "Stopping local agent...")
		case <-sup.Exited():
			if exitErr := sup.ExitErr(); exitErr != nil {
				fmt.Fprintf(os.Stdout, "Local agent exited: %v\n", exitErr)
			} else {
				fmt.Fprintln(os.Stdout, "Local agent exited.")
			}
		}

		cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		sup.Shutdown(cleanupCtx, agentDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
