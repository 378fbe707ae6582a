package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	pkgio "github.com/matzehuels/bookplot/pkg/io"
	"github.com/matzehuels/bookplot/pkg/pipeline"
	"github.com/matzehuels/bookplot/pkg/render"
)

// plotCommand creates the plot command, which renders a single plot either
// from a known alpha or from an analysis.json written by analyze.
func (c *CLI) plotCommand() *cobra.Command {
	var (
		pf       plotFlags
		alphaStr string
		analysis string
		kind     string
		output   string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "plot --alpha a,b,c -o density.svg",
		Short: "Render a density or scatter plot",
		Long: `Render a density or scatter plot.

With --alpha, plots the Dirichlet density of the given parameters. With
--analysis, replots an analysis.json written by 'analyze --format json'; use
--kind to choose between its density and scatter plots.

The output format follows the extension of --output (svg, png or pdf).`,
		Example: `  bookplot plot --alpha 2.5,4.1,1.8 -o density.svg
  bookplot plot --analysis out/analysis.json --kind scatter --side 800 -o scatter.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (alphaStr == "") == (analysis == "") {
				return fmt.Errorf("exactly one of --alpha or --analysis is required")
			}
			format, err := formatFromPath(output)
			if err != nil {
				return err
			}
			opts := c.pipelineOptions()
			if err := pf.apply(cmd.Flags(), &opts); err != nil {
				return err
			}
			return c.runPlot(cmd.Context(), plotRequest{
				alpha:    alphaStr,
				analysis: analysis,
				kind:     kind,
				format:   format,
				output:   output,
			}, opts, noCache)
		},
	}

	pf.register(cmd.Flags())
	cmd.Flags().StringVar(&alphaStr, "alpha", "", "Dirichlet parameters as a,b,c")
	cmd.Flags().StringVar(&analysis, "analysis", "", "analysis.json to replot")
	cmd.Flags().StringVar(&kind, "kind", pipeline.KindDensity, "plot kind for --analysis: density, scatter")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

type plotRequest struct {
	alpha    string
	analysis string
	kind     string
	format   string
	output   string
}

func (c *CLI) runPlot(ctx context.Context, req plotRequest, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		data   []byte
		cached bool
	)
	if req.alpha != "" {
		alpha, err := dirichlet.ParseAlpha(req.alpha)
		if err != nil {
			return err
		}
		data, cached, err = runner.DensityWithCacheInfo(ctx, alpha, req.format, opts)
		if err != nil {
			return err
		}
		printKeyValue("Alpha", alpha.String())
	} else {
		a, err := pkgio.ImportAnalysisJSON(req.analysis)
		if err != nil {
			return err
		}
		data, cached, err = runner.PlotWithCacheInfo(ctx, a, req.kind, req.format, opts)
		if err != nil {
			return err
		}
		printKeyValue("Openings", fmt.Sprint(len(a.Openings)))
	}

	if err := os.WriteFile(req.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", req.output, err)
	}
	printStats(0, 0, cached)
	printFile(req.output)
	return nil
}

// formatFromPath maps an output file extension to a plot format.
func formatFromPath(path string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !render.IsImageFormat(format) {
		return "", fmt.Errorf("cannot infer plot format from %q (use .svg, .png or .pdf)", path)
	}
	return format, nil
}
