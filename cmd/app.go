package cmd

import (
	"context"
	"fmt"

	"github.com/brogergvhs/lntracker/internal/config"
	"github.com/brogergvhs/lntracker/internal/library"
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/providers/generic"
	"github.com/brogergvhs/lntracker/internal/providers/sites"
	"github.com/brogergvhs/lntracker/internal/store"
	"github.com/brogergvhs/lntracker/internal/ui"
	"github.com/brogergvhs/lntracker/internal/util"

	"github.com/spf13/cobra"
)

// app is everything a command needs, built from the merged config.
type app struct {
	cfg     *config.Config
	used    string
	log     *ui.Logger
	store   store.Store
	lib     *library.Accessor
	fetcher *generic.HTTPFetcher
	router  *providers.Router
}

func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	opts := config.Options{
		IgnoreConfig:     flagIgnoreConfig,
		Debug:            flagDebug,
		StoreBackend:     flagStore,
		StorePath:        flagStorePath,
		UserAgent:        flagUserAgent,
		Cookie:           flagCookie,
		CookieFile:       flagCookieFile,
		CloudflareBypass: flagCloudflare,
	}
	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		opts.Workers = flagWorkers
	}
	if f := cmd.Flags().Lookup("listen"); f != nil && f.Changed {
		opts.ListenAddr = flagListen
	}

	return config.LoadMerged(opts)
}

// openLibrary opens only the store and accessor, for commands that never
// touch the network.
func openLibrary(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, used, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := ui.NewLogger(cfg.Debug)
	log.Debugf("config: %s", used)

	st, err := store.Open(ctx, store.Options{
		Backend:      cfg.StoreBackend,
		Path:         cfg.StorePath,
		SQLitePath:   cfg.SQLitePath,
		RedisAddr:    cfg.RedisAddr,
		RedisChannel: cfg.RedisChannel,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}

	lib := library.NewAccessor(st, log)
	if changed, err := lib.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	} else if changed {
		log.Infof("normalized stored statuses")
	}

	return &app{cfg: cfg, used: used, log: log, store: st, lib: lib}, nil
}

// newApp opens the library and wires the fetcher and site router on top.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	a, err := openLibrary(ctx, cmd)
	if err != nil {
		return nil, err
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          a.cfg.Timeout(),
		UserAgent:        util.PickUserAgent(a.cfg.UserAgent),
		Cookie:           a.cfg.Cookie,
		CookieFile:       a.cfg.CookieFile,
		CloudflareBypass: a.cfg.CloudflareBypass,
		DebugLogger:      a.log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.fetcher = generic.NewFetcher(client, a.cfg.Retries)
	deps := providers.Deps{Library: a.lib, Fetcher: a.fetcher, Log: a.log}
	a.router = providers.NewRouter(sites.Default(deps), a.log)

	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warnf("close store: %v", err)
	}
}
