package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bookplot/pkg/cache"
	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
	"github.com/matzehuels/bookplot/pkg/observability"
	"github.com/matzehuels/bookplot/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete aggregate → fit → render pipeline with caching.
//
// When only the fit fails, Execute returns a partial result along with the
// error: the book, and as artifacts the CSV tables and scatter plots, which do
// not depend on the prior.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Aggregate
	aggStart := time.Now()
	book, stats, err := r.Aggregate(ctx, opts)
	result.Stats.Aggregate = stats
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	result.Book = book
	result.Stats.AggregateTime = time.Since(aggStart)

	r.Logger.Info("aggregated games",
		"games", book.Games(),
		"openings", book.Len(),
		"duration", result.Stats.AggregateTime)

	// Stage 2: Fit
	fitStart := time.Now()
	fit, fitHit, err := r.FitWithCacheInfo(ctx, book.Samples(), opts)
	if err != nil {
		artifacts, rErr := r.renderFitFree(ctx, book, opts)
		if rErr != nil {
			r.Logger.Warn("could not render count artifacts", "err", rErr)
		}
		result.Artifacts = artifacts
		return result, fmt.Errorf("fit: %w", err)
	}
	result.Fit = fit
	result.Stats.FitTime = time.Since(fitStart)
	result.CacheInfo.FitHit = fitHit
	result.Analysis = opening.NewAnalysis(book, fit, fit.Converged(opts.Tolerance))

	r.Logger.Info("fitted dirichlet",
		"alpha", fit.Alpha.String(),
		"iterations", fit.Iterations,
		"cached", fitHit,
		"duration", result.Stats.FitTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Analysis, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"files", len(artifacts),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Aggregate reads the input games into a book.
func (r *Runner) Aggregate(ctx context.Context, opts Options) (*opening.Book, opening.Stats, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnAggregateStart(ctx, opts.Input)

	start := time.Now()
	book, stats, err := Aggregate(ctx, opts)
	hooks.OnAggregateComplete(ctx, opts.Input, stats.Games, stats.Openings, time.Since(start), err)
	return book, stats, err
}

// AggregateReader reads games from r into a book; source labels the hooks.
func (r *Runner) AggregateReader(ctx context.Context, in io.Reader, source string, opts Options) (*opening.Book, opening.Stats, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnAggregateStart(ctx, source)

	start := time.Now()
	book, stats, err := AggregateReader(ctx, in, opts)
	hooks.OnAggregateComplete(ctx, source, stats.Games, stats.Openings, time.Since(start), err)
	return book, stats, err
}

// FitWithCacheInfo fits the prior with caching and returns cache hit info.
// The cache key covers the samples and every fit setting.
func (r *Runner) FitWithCacheInfo(ctx context.Context, samples []dirichlet.Counts, opts Options) (dirichlet.FitResult, bool, error) {
	r.applyLogger(&opts)
	opts.SetFitDefaults()

	hooks := observability.Pipeline()
	hooks.OnFitStart(ctx, len(samples))
	start := time.Now()

	cacheKey := r.Keyer.FitKey(cache.HashJSON(samples), opts.FitKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var entry fitEntry
			if err := json.Unmarshal(data, &entry); err == nil && entry.Alpha.Validate() == nil {
				res := entry.result()
				err := checkConvergence(res, entry.outcome(opts), opts)
				hooks.OnFitComplete(ctx, res.Iterations, res.Converged(opts.Tolerance), time.Since(start), err)
				return res, true, err
			}
		}
	}

	res, fitErr := dirichlet.FitDetailed(samples, opts.FitOptions()...)
	err := checkConvergence(res, fitErr, opts)
	hooks.OnFitComplete(ctx, res.Iterations, res.Converged(opts.Tolerance), time.Since(start), err)

	// Only estimates are cached; invalid input is rejected again next time.
	if fitErr == nil || errors.Is(fitErr, dirichlet.ErrNotConverged) {
		entry := fitEntry{Alpha: res.Alpha, Iterations: res.Iterations, Distance: res.Distance}
		if data, mErr := json.Marshal(entry); mErr == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.FitTTL)
		}
	}
	return res, false, err
}

// Fit is a convenience wrapper that calls FitWithCacheInfo and discards the cache hit info.
func (r *Runner) Fit(ctx context.Context, samples []dirichlet.Counts, opts Options) (dirichlet.FitResult, error) {
	res, _, err := r.FitWithCacheInfo(ctx, samples, opts)
	return res, err
}

// RenderWithCacheInfo generates the requested artifacts and returns whether
// every plot came from cache. Plots are rendered concurrently; tables are
// always regenerated.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, a opening.Analysis, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, allCached, err := r.renderPlots(ctx, a, opts)
	if err == nil {
		var tables map[string][]byte
		tables, err = RenderTables(a, opts)
		for name, data := range tables {
			artifacts[name] = data
		}
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return artifacts, allCached, nil
}

// renderFitFree renders the artifacts of book that need no fitted prior.
func (r *Runner) renderFitFree(ctx context.Context, book *opening.Book, opts Options) (map[string][]byte, error) {
	a := opening.Analysis{Games: book.Games(), Openings: book.Openings()}
	artifacts := make(map[string][]byte)
	if opts.Wants(FormatCSV) {
		tables, err := RenderTables(a, Options{Formats: []string{FormatCSV}})
		if err != nil {
			return artifacts, err
		}
		maps.Copy(artifacts, tables)
	}
	for _, format := range opts.ImageFormats() {
		data, _, err := r.PlotWithCacheInfo(ctx, a, KindScatter, format, opts)
		if err != nil {
			return artifacts, err
		}
		artifacts[ArtifactName(KindScatter, format)] = data
	}
	return artifacts, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, a opening.Analysis, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, a, opts)
	return artifacts, err
}

func (r *Runner) renderPlots(ctx context.Context, a opening.Analysis, opts Options) (map[string][]byte, bool, error) {
	formats := opts.ImageFormats()
	artifacts := make(map[string][]byte)
	if len(formats) == 0 {
		return artifacts, false, nil
	}

	// Each kind is rendered to SVG at most once and shared by its conversions.
	svgs := map[string]func() ([]byte, error){
		KindScatter: sync.OnceValues(func() ([]byte, error) { return RenderSVG(a, KindScatter, opts) }),
		KindDensity: sync.OnceValues(func() ([]byte, error) { return RenderSVG(a, KindDensity, opts) }),
	}

	var (
		mu     sync.Mutex
		misses int
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range []string{KindScatter, KindDensity} {
		for _, format := range formats {
			g.Go(func() error {
				data, hit, err := r.plot(gctx, plotHash(a, kind), kind, format, opts, svgs[kind])
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				artifacts[ArtifactName(kind, format)] = data
				if !hit {
					misses++
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	return artifacts, misses == 0, nil
}

// PlotWithCacheInfo renders one plot of the analysis with caching.
func (r *Runner) PlotWithCacheInfo(ctx context.Context, a opening.Analysis, kind, format string, opts Options) ([]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if !render.IsImageFormat(format) {
		return nil, false, fmt.Errorf("%w: %q", render.ErrUnsupportedFormat, format)
	}
	if kind != KindScatter && kind != KindDensity {
		return nil, false, fmt.Errorf("unknown plot kind: %q", kind)
	}
	svg := func() ([]byte, error) { return RenderSVG(a, kind, opts) }
	return r.plot(ctx, plotHash(a, kind), kind, format, opts, svg)
}

// DensityWithCacheInfo renders the density plot of alpha with caching. It
// shares cache entries with the density plots of analyses fitted to alpha.
func (r *Runner) DensityWithCacheInfo(ctx context.Context, alpha dirichlet.Alpha, format string, opts Options) ([]byte, bool, error) {
	if err := alpha.Validate(); err != nil {
		return nil, false, err
	}
	return r.PlotWithCacheInfo(ctx, opening.Analysis{Alpha: alpha}, KindDensity, format, opts)
}

// plotHash hashes only what a plot kind depends on.
func plotHash(a opening.Analysis, kind string) string {
	if kind == KindDensity {
		return cache.HashJSON(a.Alpha)
	}
	return cache.HashJSON(a.Book().Distribution())
}

func (r *Runner) plot(ctx context.Context, dataHash, kind, format string, opts Options, svg func() ([]byte, error)) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(dataHash, opts.ArtifactKeyOpts(kind, format))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			return data, true, nil
		}
	}

	src, err := svg()
	if err != nil {
		return nil, false, fmt.Errorf("%s plot: %w", kind, err)
	}
	data, err := render.Convert(ctx, src, format)
	if err != nil {
		return nil, false, fmt.Errorf("%s %s: %w", kind, format, err)
	}
	_ = r.Cache.Set(ctx, key, data, cache.ArtifactTTL)
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
