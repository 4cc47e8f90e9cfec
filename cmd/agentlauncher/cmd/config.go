package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barysiuk/agentlauncher/internal/core"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change launcher settings",
	Long: fmt.Sprintf(`Read and change launcher settings stored in ~/.agentlauncher/config.json.

Keys: %s`, strings.Join(core.ConfigKeys, ", ")),
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.close()

		value, err := d.config.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.close()

		if _, err := d.config.Set(args[0], args[1]); err != nil {
			return err
		}
		d.logger.Info("config updated", "key", args[0], "value", args[1])
		fmt.Fprintf(os.Stdout, "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
