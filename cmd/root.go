// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/provider"
	"folio/internal/resolver"
	"folio/internal/works"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagDebug    bool
	flagWorksDir string
	flagConfig   string
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// logger is configured by loadConfig before any command runs.
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Resolve oEmbed snippets and browse the portfolio catalog",
	Long: `Folio resolves Twitter/X, Niconico, Bilibili and Instagram links into
sanitized embed HTML, and serves the portfolio works catalog over HTTP.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagWorksDir, "works-dir", "", "Directory of work markdown files")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/folio/config.toml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(worksCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagWorksDir != "" {
		cfg.WorksDir = flagWorksDir
	}
	if flagDebug {
		cfg.Debug = true
	}
	if cmd.Flags().Changed("listen") {
		cfg.Listen = flagListen
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...any) {
	if cfg != nil && cfg.Debug {
		logger.Debug(fmt.Sprintf(format, args...))
	}
}

// newResolver builds the cache, providers and resolver from cfg.
func newResolver() (*resolver.Resolver, *cache.Cache) {
	c := cache.New(cfg.CacheOptions())
	return resolver.New(c, provider.NewSet(cfg.ProviderOptions()), logger), c
}

// newCatalog opens the works catalog from cfg.
func newCatalog() (*works.Catalog, error) {
	dir, err := cfg.ExpandWorksDir()
	if err != nil {
		return nil, fmt.Errorf("resolving works dir: %w", err)
	}
	debugf("works dir: %s", dir)
	return works.New(dir, logger), nil
}
