package cmd

import (
	"fmt"

	"github.com/brogergvhs/lntracker/internal/library"

	"github.com/spf13/cobra"
)

var (
	flagListStatus string
	flagListQuery  string
	flagListSort   string
	flagListFollow bool
)

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked novels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		order, err := library.ParseSort(flagListSort)
		if err != nil {
			return err
		}
		q := library.Query{Text: flagListQuery, Status: flagListStatus, Sort: order}

		ctx := cmd.Context()
		a, err := openLibrary(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		show := func() error {
			lib, err := a.lib.Library(ctx)
			if err != nil {
				return err
			}
			printCounts(cmd.OutOrStdout(), lib.Counts())
			return printEntries(cmd.OutOrStdout(), lib.Select(q))
		}

		if err := show(); err != nil {
			return err
		}
		if !flagListFollow {
			return nil
		}

		changes, ok, err := a.lib.Watch(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s store cannot report changes", a.cfg.StoreBackend)
		}
		for range changes {
			fmt.Fprintln(cmd.OutOrStdout())
			if err := show(); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	libraryListCmd.Flags().StringVar(&flagListStatus, "status", library.AllStatuses, "all, reading, on-hold, dropped or finished")
	libraryListCmd.Flags().StringVarP(&flagListQuery, "query", "q", "", "match title, key, site, chapter or genre")
	libraryListCmd.Flags().StringVar(&flagListSort, "sort", string(library.UpdatedDesc), "updated_desc, updated_asc, title_asc or title_desc")
	libraryListCmd.Flags().BoolVarP(&flagListFollow, "follow", "f", false, "keep printing as the library changes")

	libraryCmd.AddCommand(libraryListCmd)
}
