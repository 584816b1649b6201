package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"folio/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the embed and works API",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default from config, :8080)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, c := newResolver()
	catalog, err := newCatalog()
	if err != nil {
		return err
	}

	if cfg.CacheSweepInterval > 0 {
		go c.Run(ctx, cfg.CacheSweepInterval)
		debugf("cache sweep every %s", cfg.CacheSweepInterval)
	}

	srv := server.New(r, catalog, logger)
	if err := srv.Run(ctx, cfg.Listen); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
