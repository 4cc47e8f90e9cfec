package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/barysiuk/agentlauncher/internal/core"
)

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Print the agent's pairing code",
	Long:  `Print the pairing code the agent wrote to pairing-code.txt in the selected agent folder.`,
	Args:  cobra.NoArgs,
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

		if showPath, _ := cmd.Flags().GetBool("path"); showPath {
			path := core.PairingCodePath(agentDir)
			exists := "No"
			if core.FileExists(path) {
				exists = "Yes"
			}
			fmt.Fprintf(os.Stdout, "Path: %s\nExists: %s\n", path, exists)
			return nil
		}

		code := core.ReadPairingCode(agentDir)
		if code == "" {
			return errors.New("no pairing code found")
		}
		fmt.Fprintln(os.Stdout, code)

		if copyCode, _ := cmd.Flags().GetBool("copy"); copyCode {
			if err := clipboard.WriteAll(code); err != nil {
				return fmt.Errorf("failed to copy: %w", err)
			}
			fmt.Fprintln(os.Stderr, "Copied to clipboard!")
		}
		return nil
	},
}

var clearCodeCmd = &cobra.Command{
	Use:   "clear-code",
	Short: "Clear the agent's pairing code",
	Long:  `Empty pairing-code.txt in the selected agent folder. The file itself is kept.`,
	Args:  cobra.NoArgs,
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
		if err := core.ClearPairingCode(agentDir); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "Pairing code cleared.")
		return nil
	},
}

func init() {
	codeCmd.Flags().Bool("copy", false, "Also copy the code to the clipboard")
	codeCmd.Flags().Bool("path", false, "Show where the code is read from instead")
	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(clearCodeCmd)
}
