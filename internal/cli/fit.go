package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
	pkgio "github.com/matzehuels/bookplot/pkg/io"
	"github.com/matzehuels/bookplot/pkg/pipeline"
)

// fitOutput is the --json form of a fit.
type fitOutput struct {
	Alpha      dirichlet.Alpha               `json:"alpha"`
	Mean       [dirichlet.Categories]float64 `json:"mean"`
	Elo        float64                       `json:"elo"`
	DrawElo    float64                       `json:"draw_elo"`
	Iterations int                           `json:"iterations"`
	Converged  bool                          `json:"converged"`
	Samples    int                           `json:"samples"`
	Cached     bool                          `json:"cached"`
}

// fitCommand creates the fit command, which estimates alpha from a counts file.
func (c *CLI) fitCommand() *cobra.Command {
	var (
		ff      fitFlags
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "fit COUNTS.csv",
		Short: "Fit a Dirichlet prior to white/draw/black counts",
		Long: `Fit a Dirichlet prior to white/draw/black counts.

COUNTS.csv holds one opening per row, either as three integer columns
(white wins, draws, black wins) or in the opening_stats.csv layout written
by analyze. Use "-" to read from standard input.`,
		Example: `  bookplot fit counts.csv
  bookplot fit --json out/opening_stats.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			ff.apply(cmd.Flags(), &opts)
			return c.runFit(cmd.Context(), args[0], opts, noCache, asJSON)
		},
	}

	ff.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runFit(ctx context.Context, input string, opts pipeline.Options, noCache, asJSON bool) error {
	samples, err := readSamples(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, cached, err := runner.FitWithCacheInfo(ctx, samples, opts)
	if err != nil {
		return err
	}
	converged := res.Converged(opts.Tolerance)
	mean := res.Alpha.Mean()
	elo, drawElo := opening.BayesElo(mean[0], mean[2])

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fitOutput{
			Alpha:      res.Alpha,
			Mean:       mean,
			Elo:        elo,
			DrawElo:    drawElo,
			Iterations: res.Iterations,
			Converged:  converged,
			Samples:    len(samples),
			Cached:     cached,
		})
	}

	printKeyValue("Samples", fmt.Sprint(len(samples)))
	printKeyValue("Alpha", res.Alpha.String())
	printKeyValue("Mean W/D/B", formatMean(res.Alpha))
	printKeyValue("BayesElo", fmt.Sprintf("%+.1f (draw elo %.1f)", elo, drawElo))
	printStats(res.Iterations, 0, cached)
	if !converged {
		printWarning("fit stopped at the iteration limit; alpha is the last estimate")
	}
	printNextStep("Plot the density", fmt.Sprintf("%s plot --alpha %g,%g,%g -o density.svg", appName, res.Alpha[0], res.Alpha[1], res.Alpha[2]))
	return nil
}

func readSamples(path string) ([]dirichlet.Counts, error) {
	if path == "-" {
		samples, err := pkgio.ReadSamples(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return samples, nil
	}
	return pkgio.ReadSamplesFile(path)
}
