package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/brogergvhs/lntracker/internal/library"

	"github.com/spf13/cobra"
)

var flagImportReplace bool

var libraryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge an export file (or raw library map) into the library",
	Long:  "Entries in both libraries keep the most recently updated copy. --replace discards the current library instead. Use - to read stdin.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload []byte
		var err error
		if args[0] == "-" {
			payload, err = io.ReadAll(cmd.InOrStdin())
		} else {
			payload, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		mode := library.MergeMode
		if flagImportReplace {
			mode = library.ReplaceMode
		}

		ctx := cmd.Context()
		a, err := openLibrary(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		lib, err := a.lib.Import(ctx, payload, mode)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Import (%s) done, library has %d entries\n", mode, len(lib))
		return nil
	},
}

func init() {
	libraryImportCmd.Flags().BoolVar(&flagImportReplace, "replace", false, "replace the library instead of merging")

	libraryCmd.AddCommand(libraryImportCmd)
}
