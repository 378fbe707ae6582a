package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
	"github.com/matzehuels/bookplot/pkg/pipeline"
)

// browseCommand creates the browse command, an interactive table of openings.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		ff      fitFlags
		lenient bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "browse GAMES.pgn",
		Short: "Browse the openings of a book interactively",
		Long: `Browse the openings of a book interactively.

Shows one row per start position with its game count and result shares.
The surprise column is the negative log density of those shares under the
Dirichlet prior fitted to the whole book; sort by it (s) to find openings
that play unlike the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			opts.Input = args[0]
			opts.Lenient = lenient
			ff.apply(cmd.Flags(), &opts)
			return c.runBrowse(cmd.Context(), opts, noCache)
		},
	}

	ff.register(cmd.Flags())
	cmd.Flags().BoolVar(&lenient, "lenient", false, "skip malformed games instead of failing")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Reading games...")
	spinner.Start()
	book, _, err := runner.Aggregate(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	if book.Len() == 0 {
		printInfo("No openings in %s", opts.Input)
		return nil
	}

	a, hasAlpha := c.browseFit(ctx, runner, book, opts)
	model := NewBookModel(fmt.Sprintf("%s · %d games · %d openings", filepath.Base(opts.Input), book.Games(), book.Len()), a, hasAlpha)

	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// browseFit fits the book for the surprise column. A failed fit only
// hides the column; the table is still worth showing.
func (c *CLI) browseFit(ctx context.Context, runner *pipeline.Runner, book *opening.Book, opts pipeline.Options) (opening.Analysis, bool) {
	res, err := runner.Fit(ctx, book.Samples(), opts)
	if err != nil && !errors.Is(err, dirichlet.ErrNotConverged) {
		c.Logger.Warn("fit failed, surprise column disabled", "err", err)
		return opening.NewAnalysis(book, dirichlet.FitResult{}, false), false
	}
	return opening.NewAnalysis(book, res, res.Converged(opts.Tolerance)), true
}
