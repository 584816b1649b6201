// Package server exposes the embed resolver and works catalog over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"folio/internal/cache"
	"folio/internal/media"
)

const shutdownTimeout = 10 * time.Second

// EmbedResolver is the part of the resolver the API depends on.
type EmbedResolver interface {
	Resolve(ctx context.Context, rawURL string) (media.Embed, error)
	CacheStats() cache.Stats
}

// Catalog is the part of the works catalog the API depends on.
type Catalog interface {
	All() ([]media.Work, error)
	Get(slug string) (*media.Work, error)
}

// Server wires handlers onto an echo instance.
type Server struct {
	echo     *echo.Echo
	resolver EmbedResolver
	catalog  Catalog
	logger   *slog.Logger
}

// New builds the HTTP API. A nil logger uses slog.Default().
func New(r EmbedResolver, c Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, resolver: r, catalog: c, logger: logger}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
				logger.Warn("request failed", attrs...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/api/oembed", s.handleOEmbed)
	s.echo.GET("/api/works", s.handleWorks)
	s.echo.GET("/api/works/:slug", s.handleWork)
	s.echo.GET("/healthz", s.handleHealth)
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
