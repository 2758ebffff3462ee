package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/brogergvhs/lntracker/internal/api"
	"github.com/brogergvhs/lntracker/internal/providers/sites"
	"github.com/brogergvhs/lntracker/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagListen  string
	flagNoFetch bool
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library over HTTP and accept visits from a browser userscript",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	serveCmd.Flags().StringVar(&flagListen, "listen", "127.0.0.1:8765", "address to listen on")
	serveCmd.Flags().BoolVar(&flagNoFetch, "no-fetch", false, "never fetch pages; visits must include html")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := util.SignalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := api.Options{
		Library:        a.lib,
		Router:         a.router,
		Fetcher:        a.fetcher,
		Log:            a.log,
		AllowedOrigins: a.cfg.AllowedOrigins,
	}
	if flagNoFetch {
		opts.Fetcher = nil
	}

	server := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           api.New(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go followChanges(ctx, a)

	errc := make(chan error, 1)
	go func() {
		a.log.Infof("listening on http://%s (sites: %v)", a.cfg.ListenAddr, sites.IDs(a.router.Sites()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// followChanges logs library writes made by other processes.
func followChanges(ctx context.Context, a *app) {
	changes, ok, err := a.lib.Watch(ctx)
	if err != nil {
		a.log.Warnf("watch library: %v", err)
		return
	}
	if !ok {
		a.log.Debugf("%s store does not report changes", a.cfg.StoreBackend)
		return
	}

	for range changes {
		lib, err := a.lib.Library(ctx)
		if err != nil {
			a.log.Warnf("reload library: %v", err)
			continue
		}
		a.log.Infof("library changed, %d entries", len(lib))
	}
}
