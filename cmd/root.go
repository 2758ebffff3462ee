package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool

	// storage
	flagStore     string
	flagStorePath string

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
	flagCloudflare bool
)

var rootCmd = &cobra.Command{
	Use:           "lntrack",
	Short:         "Track light novel reading progress across novel sites",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")

	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "store backend: file, sqlite, redis or memory")
	rootCmd.PersistentFlags().StringVar(&flagStorePath, "store-path", "", "library file (file) or database (sqlite) path")

	rootCmd.PersistentFlags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	rootCmd.PersistentFlags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	rootCmd.PersistentFlags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	rootCmd.PersistentFlags().BoolVar(&flagCloudflare, "cloudflare", false, "use browser-like TLS to get past Cloudflare checks")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
