package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	bperrors "github.com/matzehuels/bookplot/pkg/errors"
	"github.com/matzehuels/bookplot/pkg/pipeline"
)

// analyzeCommand creates the analyze command, which runs the whole pipeline
// and writes every artifact into a fresh directory.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		pf      plotFlags
		ff      fitFlags
		lenient bool
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "analyze GAMES.pgn OUTDIR",
		Short: "Analyze an opening book from self-play games",
		Long: `Analyze an opening book from self-play games.

Every game must carry exactly one FEN tag naming its start position and end
with a result. Games are grouped by start position, a Dirichlet prior is
fitted to the per-opening white/draw/black counts, and the results are
written to OUTDIR, which must not exist yet:

  opening_stats.csv            one row per opening
  wdb_counts.csv               distinct outcome shares and their frequency
  scatter_plot.svg             openings on the ternary diagram
  dirichlet_contour_plot.svg   density of the fitted prior

Fits and plots are cached, so rerunning on the same games is fast.`,
		Example: `  bookplot analyze selfplay.pgn out/
  bookplot analyze --format svg,png,csv,json --divisions 50 selfplay.pgn out/`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			opts.Input = args[0]
			opts.Lenient = lenient
			opts.Refresh = refresh
			ff.apply(cmd.Flags(), &opts)
			if err := pf.apply(cmd.Flags(), &opts); err != nil {
				return err
			}
			return c.runAnalyze(cmd.Context(), args[1], opts, noCache)
		},
	}

	pf.register(cmd.Flags())
	pf.registerFormats(cmd.Flags(), "output format(s): svg, png, pdf, json, csv (default svg,csv)")
	ff.register(cmd.Flags())
	cmd.Flags().BoolVar(&lenient, "lenient", false, "skip malformed games instead of failing")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached results")

	return cmd
}

// runAnalyze runs the pipeline and writes the artifacts to outDir.
func (c *CLI) runAnalyze(ctx context.Context, outDir string, opts pipeline.Options, noCache bool) error {
	logger := loggerFromContext(ctx)

	if err := bperrors.ValidateInputFile(opts.Input); err != nil {
		return err
	}
	if err := bperrors.ValidateOutputDir(outDir); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %s...", filepath.Base(opts.Input)))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Analysis failed")
		// A failed fit still leaves the counts and scatter plots.
		if result != nil && len(result.Artifacts) > 0 {
			if wErr := writeArtifacts(outDir, result.Artifacts); wErr != nil {
				logger.Warn("could not write partial results", "err", wErr)
			} else {
				printWarning("fit failed; wrote the results that do not need it")
				for _, name := range slices.Sorted(maps.Keys(result.Artifacts)) {
					printFile(filepath.Join(outDir, name))
				}
			}
		}
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Analyzed %s", filepath.Base(opts.Input)))
	prog.done("analysis complete", "openings", result.Book.Len())

	if err := writeArtifacts(outDir, result.Artifacts); err != nil {
		return err
	}

	printSummary(result.Book.Games(), result.Book.Len(), result.Fit.Alpha)
	printStats(result.Fit.Iterations, result.Stats.Aggregate.Skipped, result.CacheInfo.FitHit && result.CacheInfo.RenderHit)
	if !result.Analysis.Converged {
		printWarning("fit stopped at the iteration limit; alpha is the last estimate")
	}
	for _, name := range slices.Sorted(maps.Keys(result.Artifacts)) {
		printFile(filepath.Join(outDir, name))
	}
	return nil
}

// writeArtifacts creates dir, failing if it exists, and writes every artifact into it.
func writeArtifacts(dir string, artifacts map[string][]byte) error {
	if err := os.Mkdir(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for name, data := range artifacts {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
