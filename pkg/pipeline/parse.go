package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/matzehuels/bookplot/pkg/core/opening"
)

// Aggregate reads the games of opts.Input into a book.
func Aggregate(ctx context.Context, opts Options) (*opening.Book, opening.Stats, error) {
	if opts.Input == "" {
		return nil, opening.Stats{}, fmt.Errorf("input is required")
	}
	book, stats, err := opening.AggregateFile(ctx, opts.Input, opening.WithLenient(opts.Lenient))
	if err != nil {
		return nil, stats, err
	}
	logSkipped(stats, opts)
	return book, stats, nil
}

// AggregateReader reads games from r, for uploads that never touch disk.
func AggregateReader(ctx context.Context, r io.Reader, opts Options) (*opening.Book, opening.Stats, error) {
	book, stats, err := opening.Aggregate(ctx, r, opening.WithLenient(opts.Lenient))
	if err != nil {
		return nil, stats, err
	}
	logSkipped(stats, opts)
	return book, stats, nil
}

func logSkipped(stats opening.Stats, opts Options) {
	if stats.Skipped > 0 && opts.Logger != nil {
		opts.Logger.Warn("skipped games",
			"count", stats.Skipped,
			"missing_fen", stats.MissingFEN,
			"duplicate_fen", stats.DuplicateFEN,
			"bad_termination", stats.BadTermination)
	}
}
