package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/agentlauncher/internal/core"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Check an agent folder",
	Long: `Check that a folder looks like a local agent: package.json, src/index.js
and pairing-code.txt present. Without an argument the selected agent folder
is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.close()

		var dir string
		if len(args) > 0 {
			if dir, err = core.ResolveDir(args[0]); err != nil {
				return err
			}
		} else if dir, _, err = d.agentDir(); err != nil {
			return err
		}

		check := core.ValidateAgentFolder(dir)
		fmt.Fprintf(os.Stdout, "Folder: %s\n", dir)
		printFolderCheck(os.Stdout, check)

		if problem := check.Problem(); problem != "" {
			return errors.New(problem)
		}
		fmt.Fprintln(os.Stdout, "Folder is a valid agent folder.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
