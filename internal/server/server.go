// Package server exposes search results as an HTML dashboard and a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"lootradar/internal/currency"
	"lootradar/internal/links"
	"lootradar/internal/metrics"
	"lootradar/internal/service"
	"lootradar/internal/stores"
)

// Searcher produces search results and storefront links.
type Searcher interface {
	Search(ctx context.Context, query string, limit int, cur currency.Currency) service.SearchResult
	Links(query string) links.Links
}

// Options configures the HTTP server.
type Options struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	DefaultLimit      int
	DefaultCurrency   currency.Currency
}

// Server serves the dashboard, the JSON API and operational endpoints.
type Server struct {
	opts      Options
	search    Searcher
	directory *stores.Directory
	recorder  *metrics.Recorder
	logger    zerolog.Logger
}

// New constructs a Server. recorder may be nil.
func New(opts Options, search Searcher, directory *stores.Directory, recorder *metrics.Recorder, logger zerolog.Logger) *Server {
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = 5 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 12
	}
	if opts.DefaultCurrency.Code == "" {
		opts.DefaultCurrency = currency.Euro()
	}
	return &Server{
		opts:      opts,
		search:    search,
		directory: directory,
		recorder:  recorder,
		logger:    logger.With().Str("component", "server").Logger(),
	}
}

// Handler builds the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.middleware()...)

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.recorder.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", handler(s.handleAPISearch))
		r.Get("/links", handler(s.handleAPILinks))
		r.Get("/stores", handler(s.handleAPIStores))
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("dashboard server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.logger.Info().Msg("dashboard server stopped")
		return nil
	})
	return g.Wait()
}
