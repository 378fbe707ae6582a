package cli

import (
	"github.com/spf13/pflag"

	"github.com/matzehuels/bookplot/pkg/pipeline"
)

// Flags override the config file only when given on the command line, so
// their registered defaults are for help output.

// fitFlags holds the estimator flags shared by analyze, fit and browse.
type fitFlags struct {
	maxIterations    int
	tolerance        float64
	allowUnconverged bool
}

func (f *fitFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.maxIterations, "max-iterations", pipeline.DefaultMaxIterations, "fixed-point iteration limit")
	fs.Float64Var(&f.tolerance, "tolerance", 0, "squared-distance stopping tolerance (default machine epsilon)")
	fs.BoolVar(&f.allowUnconverged, "allow-unconverged", false, "keep the last estimate when the fit hits the iteration limit")
}

func (f *fitFlags) apply(fs *pflag.FlagSet, opts *pipeline.Options) {
	if fs.Changed("max-iterations") {
		opts.MaxIterations = f.maxIterations
	}
	if fs.Changed("tolerance") {
		opts.Tolerance = f.tolerance
	}
	if fs.Changed("allow-unconverged") {
		opts.AllowUnconverged = f.allowUnconverged
	}
}

// plotFlags holds the rendering flags shared by analyze and plot.
type plotFlags struct {
	side      float64
	margin    float64
	ticks     int
	divisions int
	title     string
	formats   string
}

func (f *plotFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.side, "side", pipeline.DefaultSide, "triangle side length in pixels")
	fs.Float64Var(&f.margin, "margin", pipeline.DefaultMargin, "blank space around the triangle in pixels")
	fs.IntVar(&f.ticks, "ticks", pipeline.DefaultTicks, "intervals along each axis")
	fs.IntVar(&f.divisions, "divisions", pipeline.DefaultDivisions, "density mesh resolution")
	fs.StringVar(&f.title, "title", "", "plot title")
}

// registerFormats adds --format; only commands that write several artifacts take it.
func (f *plotFlags) registerFormats(fs *pflag.FlagSet, usage string) {
	fs.StringVarP(&f.formats, "format", "f", "", usage)
}

func (f *plotFlags) apply(fs *pflag.FlagSet, opts *pipeline.Options) error {
	if fs.Changed("side") {
		opts.Side = f.side
	}
	if fs.Changed("margin") {
		opts.Margin = f.margin
	}
	if fs.Changed("ticks") {
		opts.Ticks = f.ticks
	}
	if fs.Changed("divisions") {
		opts.Divisions = f.divisions
	}
	if fs.Changed("title") {
		opts.Title = f.title
	}
	if fs.Lookup("format") != nil && fs.Changed("format") {
		formats, err := pipeline.ParseFormats(f.formats)
		if err != nil {
			return err
		}
		opts.Formats = formats
	}
	return opts.ValidateForRender()
}
