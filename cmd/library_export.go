package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brogergvhs/lntracker/internal/library"
	"github.com/brogergvhs/lntracker/internal/util"

	"github.com/spf13/cobra"
)

var flagExportOutput string

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the library to an export file",
	Long:  "Writes lnTracker-export-YYYY-MM-DD.json in the current directory unless --output is given. Use --output - for stdout.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := openLibrary(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		file, err := a.lib.Export(ctx)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return err
		}

		if flagExportOutput == "-" {
			_, err := cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}

		path := flagExportOutput
		if path == "" {
			path = library.ExportFilename(time.Now())
		}

		n, err := util.WriteFileAtomic(path, data)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s (%s)\n", len(file.Data), path, util.Human(n))
		return nil
	},
}

func init() {
	libraryExportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "output file")

	libraryCmd.AddCommand(libraryExportCmd)
}
