package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var flagDeleteYes bool

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a novel from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openLibrary(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id := args[0]
		if !flagDeleteYes {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Delete %s", id),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		if err := a.lib.Delete(ctx, id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
		return nil
	},
}

func init() {
	libraryDeleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "do not ask for confirmation")

	libraryCmd.AddCommand(libraryDeleteCmd)
}
