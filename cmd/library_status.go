package cmd

import (
	"fmt"

	"github.com/brogergvhs/lntracker/internal/library"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var libraryStatusCmd = &cobra.Command{
	Use:   "status <id> [status]",
	Short: "Change the reading status of a novel",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openLibrary(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var status string
		if len(args) == 2 {
			status = args[1]
			if !library.IsKnownStatus(status) {
				a.log.Warnf("unknown status %q, using %q", status, library.Reading)
			}
		} else {
			items := make([]string, len(library.Statuses))
			for i, s := range library.Statuses {
				items[i] = string(s)
			}

			prompt := promptui.Select{
				Label: "Status for " + args[0],
				Items: items,
			}
			_, picked, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("selection cancelled")
			}
			status = picked
		}

		e, err := a.lib.SetStatus(ctx, args[0], status)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", e.Title(), e.Status)
		return nil
	},
}

func init() {
	libraryCmd.AddCommand(libraryStatusCmd)
}
