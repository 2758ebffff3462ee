package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/brogergvhs/lntracker/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var flagInitYes bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Default config",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		def := config.DefaultConfig()

		fmt.Fprintln(out, "Configuration will be saved in:")
		fmt.Fprintln(out, "  ", config.ConfigsDir())
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Default configuration:")
		def.Print(out)
		fmt.Fprintln(out)

		if !flagInitYes {
			prompt := promptui.Prompt{Label: "Create Default config", IsConfirm: true}
			if _, err := prompt.Run(); err != nil {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		path, err := config.InitDefaultConfig(def)
		if errors.Is(err, os.ErrExist) {
			fmt.Fprintln(out, "Configuration already exists at:")
			fmt.Fprintln(out, "  ", path)
			fmt.Fprintln(out, "It is now active. Remove it with `lntrack config remove` first to recreate it.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Fprintln(out, "Config created at:", path)
		fmt.Fprintln(out, "This config is now active (label: Default).")

		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&flagInitYes, "yes", "y", false, "do not ask for confirmation")

	configCmd.AddCommand(configInitCmd)
}
