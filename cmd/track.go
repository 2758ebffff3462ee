package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/brogergvhs/lntracker/internal/batch"
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/ui"
	"github.com/brogergvhs/lntracker/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagHTML    string
	flagFile    string
	flagWorkers int
)

func init() {
	trackCmd := &cobra.Command{
		Use:   "track [url...]",
		Short: "Record chapter pages as visited. Pages are fetched unless --html or --file supplies them",
		RunE:  runTrack,
	}

	trackCmd.Flags().StringVar(&flagHTML, "html", "", "saved HTML of the page (single url only, - for stdin)")
	trackCmd.Flags().StringVar(&flagFile, "file", "", "file with one \"url\" or \"url<TAB>html-file\" per line (- for stdin)")
	trackCmd.Flags().IntVar(&flagWorkers, "workers", 4, "parallel page visits for --file")

	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && flagFile == "" {
		return fmt.Errorf("give at least one url or --file")
	}
	if flagHTML != "" && len(args) != 1 {
		return fmt.Errorf("--html needs exactly one url")
	}

	ctx, stop := util.SignalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if flagHTML != "" {
		return trackHTML(ctx, cmd, a, args[0])
	}

	targets := make([]batch.Target, 0, len(args))
	for _, u := range args {
		t, ok, err := batch.ParseLine(u)
		if err != nil {
			return err
		}
		if ok {
			targets = append(targets, t)
		}
	}
	if flagFile != "" {
		more, err := readTargets(cmd, flagFile)
		if err != nil {
			return err
		}
		targets = append(targets, more...)
	}

	return trackBatch(ctx, cmd, a, targets)
}

func trackHTML(ctx context.Context, cmd *cobra.Command, a *app, rawURL string) error {
	var body []byte
	var err error
	if flagHTML == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(flagHTML)
	}
	if err != nil {
		return err
	}

	page, err := providers.NewPage(rawURL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	site, handled := a.router.Dispatch(ctx, page)
	if !handled {
		return fmt.Errorf("no site handles %s", page.URL.Host)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", site, rawURL)

	return nil
}

func readTargets(cmd *cobra.Command, path string) ([]batch.Target, error) {
	if path == "-" {
		return batch.ParseTargets(cmd.InOrStdin())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return batch.ParseTargets(f)
}

func trackBatch(ctx context.Context, cmd *cobra.Command, a *app, targets []batch.Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("nothing to track")
	}

	pm := ui.NewProgressManager(cmd.ErrOrStderr())
	handle := pm.Register("Visits", len(targets))

	stats := &ui.Stats{}
	runner := batch.NewRunner(a.router, a.fetcher, a.log, a.cfg.Workers)
	start := time.Now()

	err := runner.Run(ctx, targets, handle, stats)
	pm.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Track Summary:")
	fmt.Fprintf(out, "Pages: %s\n", stats)
	fmt.Fprintf(out, "Data:  %s\n", util.Human(stats.Bytes.Load()))
	fmt.Fprintf(out, "Time:  %s\n", time.Since(start).Round(time.Second))

	return err
}
