package cmd

import (
	"bufio"
	"context"
	"strings"

	"github.com/brogergvhs/lntracker/internal/batch"
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/util"

	"github.com/spf13/cobra"
)

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Read navigation events from stdin, one \"url\" or \"url<TAB>html-file\" per line",
		Long: "Each line is a location change. A line repeating the previous URL is ignored.\n" +
			"Pages without an html file are fetched.",
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := util.SignalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	runner := batch.NewRunner(a.router, a.fetcher, a.log, 1)
	events := make(chan providers.Page)

	go func() {
		defer close(events)
		sc := bufio.NewScanner(cmd.InOrStdin())
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		last := ""
		for sc.Scan() {
			t, ok, err := batch.ParseLine(sc.Text())
			if err != nil {
				a.log.Warnf("skip line %q: %v", strings.TrimSpace(sc.Text()), err)
				continue
			}
			if !ok || t.URL == last {
				continue
			}
			sent, more := sendPage(ctx, a, runner, t, events)
			if sent {
				last = t.URL
			}
			if !more {
				return
			}
		}
		if err := sc.Err(); err != nil {
			a.log.Errorf("read stdin: %v", err)
		}
	}()

	a.router.Listen(ctx, events)

	return nil
}

// sendPage loads t and hands it to the listener. sent is false when the
// page could not be loaded, so a retry of the same URL is not skipped.
func sendPage(ctx context.Context, a *app, runner *batch.Runner, t batch.Target, events chan<- providers.Page) (sent, more bool) {
	page, _, err := runner.Load(ctx, t)
	if err != nil {
		a.log.With("url", t.URL, "stage", "load").Errorf("%v", err)
		return false, ctx.Err() == nil
	}

	select {
	case events <- page:
		return true, true
	case <-ctx.Done():
		return false, false
	}
}
