package opening

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/bookplot/pkg/pgn"
)

var (
	// ErrMissingFEN is returned for a game without a FEN tag.
	ErrMissingFEN = errors.New("FEN tag not found")

	// ErrDuplicateFEN is returned for a game with more than one FEN tag.
	ErrDuplicateFEN = errors.New("too many FEN tags found")

	// ErrBadTermination is returned for a game that did not end in a win, draw or loss.
	ErrBadTermination = errors.New("bad game termination found")
)

// Stats summarizes an aggregation run.
type Stats struct {
	Games          int // games read
	Openings       int // distinct start positions
	Skipped        int // games dropped in lenient mode
	MissingFEN     int
	DuplicateFEN   int
	BadTermination int
}

// Option configures an [Aggregator].
type Option func(*Aggregator)

// WithLenient makes the aggregator skip unusable games instead of failing.
func WithLenient(lenient bool) Option {
	return func(a *Aggregator) { a.lenient = lenient }
}

// Aggregator scores games into a [Book].
type Aggregator struct {
	lenient bool
	book    *Book
	stats   Stats
}

// NewAggregator returns an aggregator with an empty book.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{book: NewBook()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add scores one game. In strict mode the first unusable game is an error;
// in lenient mode it is counted and skipped.
func (a *Aggregator) Add(g pgn.Game) error {
	a.stats.Games++

	err := a.add(g)
	switch {
	case err == nil:
		return nil
	case !a.lenient:
		return fmt.Errorf("game at line %d: %w", g.Line, err)
	case errors.Is(err, ErrMissingFEN):
		a.stats.MissingFEN++
	case errors.Is(err, ErrDuplicateFEN):
		a.stats.DuplicateFEN++
	default:
		a.stats.BadTermination++
	}
	a.stats.Skipped++
	return nil
}

func (a *Aggregator) add(g pgn.Game) error {
	fens := g.TagValues("FEN")
	switch len(fens) {
	case 0:
		return ErrMissingFEN
	case 1:
	default:
		return ErrDuplicateFEN
	}
	return a.book.Add(fens[0], g.Termination)
}

// Book returns the book built so far.
func (a *Aggregator) Book() *Book { return a.book }

// Stats returns the counters of the run so far.
func (a *Aggregator) Stats() Stats {
	s := a.stats
	s.Openings = a.book.Len()
	return s
}

// Aggregate reads every game from r into a new book.
func Aggregate(ctx context.Context, r io.Reader, opts ...Option) (*Book, Stats, error) {
	a := NewAggregator(opts...)
	err := pgn.Walk(r, func(g pgn.Game) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return a.Add(g)
	})
	if err != nil {
		return nil, a.Stats(), err
	}
	return a.Book(), a.Stats(), nil
}

// AggregateFile is [Aggregate] over the file at path.
func AggregateFile(ctx context.Context, path string, opts ...Option) (*Book, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()
	return Aggregate(ctx, f, opts...)
}
