// Package api serves bookplot over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/fit                          fit a prior to posted counts
//	GET    /v1/density?alpha=a,b,c          density plot of a known prior
//	POST   /v1/analyses                     analyze an uploaded PGN and store it
//	GET    /v1/analyses                     list stored analyses
//	GET    /v1/analyses/{id}                one analysis with its opening rows
//	DELETE /v1/analyses/{id}
//	GET    /v1/analyses/{id}/{kind}.{fmt}   scatter or density plot
//	GET    /metrics                         when a metrics handler is set
//
// Errors are JSON objects {"code": ..., "message": ...} whose status follows
// the error code.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/bookplot/pkg/pipeline"
	"github.com/matzehuels/bookplot/pkg/store"
)

// Defaults for [Options].
const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxUploadBytes = 64 << 20
)

// Options configures a [Server].
type Options struct {
	// Plot holds the plot and fit defaults applied to every request.
	Plot pipeline.Options

	RequestTimeout time.Duration
	MaxUploadBytes int64

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// Ping checks backing services for /healthz.
	Ping func(context.Context) error
}

// Server holds the dependencies of the handlers.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
	opts   Options
}

// New creates a server. The runner's logger is used for request logs.
func New(runner *pipeline.Runner, st store.Store, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Server{runner: runner, store: st, logger: runner.Logger, opts: opts}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
		r.Post("/fit", s.handleFit)
		r.Get("/density", s.handleDensity)
		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", s.handleCreateAnalysis)
			r.Get("/", s.handleListAnalyses)
			r.Get("/{id}", s.handleGetAnalysis)
			r.Delete("/{id}", s.handleDeleteAnalysis)
			r.Get("/{id}/{plot}", s.handleAnalysisPlot)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
