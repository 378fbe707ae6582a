package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/bookplot/pkg/core/opening"
	pkgio "github.com/matzehuels/bookplot/pkg/io"
	"github.com/matzehuels/bookplot/pkg/render"
	"github.com/matzehuels/bookplot/pkg/render/ternary"
)

// RenderPlot generates one plot of the analysis in the given image format.
func RenderPlot(ctx context.Context, a opening.Analysis, kind, format string, opts Options) ([]byte, error) {
	svg, err := RenderSVG(a, kind, opts)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, format)
}

// RenderSVG generates the SVG of one plot.
func RenderSVG(a opening.Analysis, kind string, opts Options) ([]byte, error) {
	plotOpts := buildPlotOptions(opts)
	switch kind {
	case KindScatter:
		return ternary.RenderScatterSVG(a.Book().Distribution(), plotOpts...), nil
	case KindDensity:
		return ternary.RenderDensitySVG(a.Alpha, plotOpts...)
	default:
		return nil, fmt.Errorf("unknown plot kind: %q", kind)
	}
}

// RenderTables generates the CSV and JSON artifacts requested by opts.
func RenderTables(a opening.Analysis, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if opts.Wants(FormatCSV) {
		var stats, dist bytes.Buffer
		if err := pkgio.WriteOpeningStats(&stats, a.Openings); err != nil {
			return nil, fmt.Errorf("opening stats: %w", err)
		}
		if err := pkgio.WriteDistribution(&dist, a.Book().Distribution()); err != nil {
			return nil, fmt.Errorf("distribution: %w", err)
		}
		out[pkgio.OpeningStatsFile] = stats.Bytes()
		out[pkgio.DistributionFile] = dist.Bytes()
	}
	if opts.Wants(FormatJSON) {
		var buf bytes.Buffer
		if err := pkgio.WriteAnalysisJSON(&buf, a); err != nil {
			return nil, fmt.Errorf("analysis: %w", err)
		}
		out[pkgio.AnalysisFile] = buf.Bytes()
	}
	return out, nil
}

func buildPlotOptions(opts Options) []ternary.Option {
	plotOpts := []ternary.Option{
		ternary.WithSide(opts.Side),
		ternary.WithMargin(opts.Margin),
		ternary.WithTicks(opts.Ticks),
		ternary.WithDivisions(opts.Divisions),
	}
	if opts.Title != "" {
		plotOpts = append(plotOpts, ternary.WithTitle(opts.Title))
	}
	return plotOpts
}
