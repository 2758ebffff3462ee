package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/brogergvhs/lntracker/internal/library"

	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Browse and edit the tracked library",
}

func init() {
	rootCmd.AddCommand(libraryCmd)
}

func printEntries(w io.Writer, entries []library.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tCHAPTER\tSTATUS\tUPDATED")

	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Title(), chapterText(e), library.NormalizeStatus(e.Status), updatedText(e))
	}

	return tw.Flush()
}

func chapterText(e library.Entry) string {
	var parts []string
	if e.ChapterLabel != nil {
		parts = append(parts, *e.ChapterLabel)
	}
	if e.ChapterTitle != nil {
		parts = append(parts, *e.ChapterTitle)
	}
	if len(parts) == 0 {
		return "-"
	}

	return strings.Join(parts, ": ")
}

func updatedText(e library.Entry) string {
	t, ok := e.Updated()
	if !ok {
		return "-"
	}

	return t.Local().Format("2006-01-02 15:04")
}

func printCounts(w io.Writer, counts map[string]int) {
	parts := []string{fmt.Sprintf("all %d", counts[library.AllStatuses])}
	for _, s := range library.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", s, counts[string(s)]))
	}

	_, _ = fmt.Fprintln(w, strings.Join(parts, " | "))
}
