// Package pipeline provides the core analysis pipeline for bookplot.
//
// This package implements the complete aggregate → fit → render pipeline that
// is used by the CLI and the API server. By centralizing this logic, both entry
// points produce identical files for identical input.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Aggregate: Read self-play games and count outcomes per opening
//  2. Fit: Estimate the Dirichlet prior of the per-opening outcome rates
//  3. Render: Produce the scatter and density plots plus CSV/JSON tables
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "selfplay.pgn",
//	    Formats: []string{"svg", "csv"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["dirichlet_contour_plot.svg"]
//
// Run individual stages:
//
//	book, stats, err := runner.Aggregate(ctx, opts)
//	fit, hit, err := runner.FitWithCacheInfo(ctx, book.Samples(), opts)
//	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, analysis, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bookplot/pkg/cache"
	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
	"github.com/matzehuels/bookplot/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSide is the side length of the plot triangle in pixels.
	DefaultSide = 400.0

	// DefaultMargin is the blank space around the triangle in pixels.
	DefaultMargin = 80.0

	// DefaultTicks is the number of intervals along each axis.
	DefaultTicks = 10

	// DefaultDivisions is the density mesh resolution.
	DefaultDivisions = 25

	// DefaultMaxIterations bounds the fixed-point loop of the fit.
	DefaultMaxIterations = dirichlet.DefaultMaxIterations
)

// Format constants for output formats.
const (
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatPDF  = render.FormatPDF
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// DefaultFormats reproduces the files of a classic analysis run.
var DefaultFormats = []string{FormatSVG, FormatCSV}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatCSV:  true,
}

// Plot kinds.
const (
	KindScatter = "scatter"
	KindDensity = "density"
)

// Artifact base names, without extension for the plots.
const (
	ScatterName = "scatter_plot"
	DensityName = "dirichlet_contour_plot"
)

// ArtifactName returns the file name of a plot of kind in format.
func ArtifactName(kind, format string) string {
	if kind == KindScatter {
		return ScatterName + "." + format
	}
	return DensityName + "." + format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the analysis pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Aggregate options
	Input   string `json:"input,omitempty"` // PGN file
	Lenient bool   `json:"lenient,omitempty"`

	// Fit options
	MaxIterations    int     `json:"max_iterations,omitempty"`
	Tolerance        float64 `json:"tolerance,omitempty"`
	AllowUnconverged bool    `json:"allow_unconverged,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Side      float64  `json:"side,omitempty"`
	Margin    float64  `json:"margin,omitempty"`
	Ticks     int      `json:"ticks,omitempty"`
	Divisions int      `json:"divisions,omitempty"`
	Title     string   `json:"title,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Book holds the per-opening counts.
	Book *opening.Book

	// Fit is the estimated prior, possibly unconverged when allowed.
	Fit dirichlet.FitResult

	// Analysis combines Book and Fit for export and storage.
	Analysis opening.Analysis

	// Artifacts contains the output files keyed by file name.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Aggregate     opening.Stats
	AggregateTime time.Duration
	FitTime       time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FitHit    bool // Whether the fit came from cache
	RenderHit bool // Whether all plots came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, csv)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated flag value.
func ParseFormats(s string) ([]string, error) {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(formats, f) {
			continue
		}
		formats = append(formats, f)
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return fmt.Errorf("input is required")
	}
	o.SetFitDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetFitDefaults sets default values for the fit.
func (o *Options) SetFitDefaults() {
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = dirichlet.Epsilon
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if o.Side == 0 {
		o.Side = DefaultSide
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Ticks == 0 {
		o.Ticks = DefaultTicks
	}
	if o.Divisions == 0 {
		o.Divisions = DefaultDivisions
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Side < 0 || o.Margin < 0 {
		return fmt.Errorf("side and margin must not be negative")
	}
	if o.Ticks < 1 {
		return fmt.Errorf("ticks must be positive, got %d", o.Ticks)
	}
	if o.Divisions < 1 {
		return fmt.Errorf("divisions must be positive, got %d", o.Divisions)
	}
	return nil
}

// ImageFormats returns the requested plot formats in request order.
func (o *Options) ImageFormats() []string {
	var out []string
	for _, f := range o.Formats {
		if render.IsImageFormat(f) {
			out = append(out, f)
		}
	}
	return out
}

// Wants reports whether format was requested.
func (o *Options) Wants(format string) bool {
	return slices.Contains(o.Formats, format)
}

// FitOptions returns the estimator options.
func (o *Options) FitOptions() []dirichlet.FitOption {
	return []dirichlet.FitOption{
		dirichlet.WithMaxIterations(o.MaxIterations),
		dirichlet.WithTolerance(o.Tolerance),
	}
}

// FitKeyOpts returns cache key options for the fit.
func (o *Options) FitKeyOpts() cache.FitKeyOpts {
	return cache.FitKeyOpts{
		MaxIterations: o.MaxIterations,
		Tolerance:     o.Tolerance,
	}
}

// ArtifactKeyOpts returns cache key options for one plot.
func (o *Options) ArtifactKeyOpts(kind, format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Kind:   kind,
		Format: format,
		Side:   o.Side,
		Margin: o.Margin,
		Ticks:  o.Ticks,
		Title:  o.Title,
	}
	if kind == KindDensity {
		opts.Divisions = o.Divisions
	}
	return opts
}
