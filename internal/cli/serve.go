package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookplot/pkg/api"
	"github.com/matzehuels/bookplot/pkg/cache"
	"github.com/matzehuels/bookplot/pkg/config"
	"github.com/matzehuels/bookplot/pkg/observability"
	"github.com/matzehuels/bookplot/pkg/observability/prom"
	"github.com/matzehuels/bookplot/pkg/pipeline"
	"github.com/matzehuels/bookplot/pkg/store"
)

// pinger is implemented by backends that can report their health.
type pinger interface {
	Ping(context.Context) error
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Serves fits, plots and stored analyses over HTTP, with Prometheus metrics at
/metrics. Analyses are stored on disk or in MongoDB ([server] store), and
fits and plots share the cache configured for the CLI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.ServerConfig, noCache bool) error {
	cacheCfg := c.Config.Cache
	if noCache {
		cacheCfg.Backend = config.CacheNone
	}
	raw, keyer, err := newCache(ctx, cacheCfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cache.Instrumented(raw), keyer, c.Logger)
	defer runner.Close()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom.New(reg).Register()
	defer observability.Reset()

	srv := api.New(runner, st, api.Options{
		Plot:           c.pipelineOptions(),
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Ping:           pingAll(raw, st),
	})

	printInfo("Serving on %s", cfg.Addr)
	printDetail("store: %s · cache: %s", cfg.Store, cacheCfg.Backend)
	return srv.ListenAndServe(ctx, cfg.Addr)
}

// openStore opens the configured analysis store.
func openStore(ctx context.Context, cfg config.ServerConfig) (store.Store, error) {
	switch cfg.Store {
	case config.StoreMongo:
		st, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return st, nil
	default:
		st, err := store.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return st, nil
	}
}

// pingAll checks every backend that supports it.
func pingAll(backends ...any) func(context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		for _, b := range backends {
			if p, ok := b.(pinger); ok {
				errs = append(errs, p.Ping(ctx))
			}
		}
		return errors.Join(errs...)
	}
}
