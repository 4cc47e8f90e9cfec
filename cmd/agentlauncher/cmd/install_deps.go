package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/agentlauncher/internal/core/dependency"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check and install node, ffmpeg, ffprobe and ngrok",
	Long: `Check for the local agent's runtime dependencies and install the missing ones.

Dependencies are handled one at a time in a fixed order. A failure does not
stop the rest; the summary lists every dependency that could not be installed.
Installs may ask for administrator access.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.close()

		inst := d.installer(true)

		checkOnly, _ := cmd.Flags().GetBool("check")
		if checkOnly {
			missing := printCheckResults(os.Stdout, inst.Check(cmd.Context()))
			if missing > 0 {
				return fmt.Errorf("%d of %d dependencies missing", missing, len(inst.Dependencies()))
			}
			fmt.Fprintln(os.Stdout, "All dependencies installed.")
			return nil
		}

		report := inst.EnsureAll(cmd.Context(), func(e dependency.ProgressEvent) {
			switch e.Phase {
			case dependency.PhaseInstalling:
				fmt.Fprintf(os.Stdout, "  … %s\n", e.Message)
			case dependency.PhaseSuccess:
				fmt.Fprintf(os.Stdout, "  ✓ %s\n", e.Message)
			case dependency.PhaseError:
				fmt.Fprintf(os.Stdout, "  ✗ %s\n", e.Message)
			}
		})

		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, report.Summary())
		if report.OK() {
			return nil
		}
		if details := report.Details(); details != "" {
			fmt.Fprintln(os.Stdout, details)
		}
		if report.ElevationDenied() {
			fmt.Fprintln(os.Stdout, "Administrator access was refused; run again and approve the prompt.")
		}
		return errors.New("dependency installation incomplete")
	},
}

func init() {
	depsCmd.Flags().Bool("check", false, "Only report which dependencies are installed")
	rootCmd.AddCommand(depsCmd)
}
