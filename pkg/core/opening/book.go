package opening

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/pgn"
)

// Opening is a start position together with the results played from it.
type Opening struct {
	FEN    string `json:"fen" bson:"fen"`
	Result `bson:",inline"`
}

// Frequency is a distinct outcome triple and the number of openings that produced it.
type Frequency struct {
	Result `bson:",inline"`
	Count  int `json:"count" bson:"count"`
}

// Book maps start positions to their results. The zero value is not usable;
// create books with [NewBook].
type Book struct {
	results map[string]*Result
	games   int
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{results: make(map[string]*Result)}
}

// Add scores one game played from fen.
func (b *Book) Add(fen string, t pgn.Termination) error {
	r, ok := b.results[fen]
	if !ok {
		r = &Result{}
	}
	if !r.add(t) {
		return fmt.Errorf("%w: %v", ErrBadTermination, t)
	}
	b.results[fen] = r
	b.games++
	return nil
}

// Len returns the number of distinct openings.
func (b *Book) Len() int { return len(b.results) }

// Games returns the number of scored games.
func (b *Book) Games() int { return b.games }

// Get returns the result for fen.
func (b *Book) Get(fen string) (Result, bool) {
	r, ok := b.results[fen]
	if !ok {
		return Result{}, false
	}
	return *r, true
}

// Openings returns every opening sorted by FEN.
func (b *Book) Openings() []Opening {
	out := make([]Opening, 0, len(b.results))
	for fen, r := range b.results {
		out = append(out, Opening{FEN: fen, Result: *r})
	}
	slices.SortFunc(out, func(a, b Opening) int { return strings.Compare(a.FEN, b.FEN) })
	return out
}

// Samples returns one Dirichlet sample per opening, in [Book.Openings] order.
func (b *Book) Samples() []dirichlet.Counts {
	openings := b.Openings()
	out := make([]dirichlet.Counts, len(openings))
	for i, o := range openings {
		out[i] = o.Counts()
	}
	return out
}

// Distribution counts how many openings share each outcome triple, most common first.
func (b *Book) Distribution() []Frequency {
	counts := make(map[Result]int)
	for _, r := range b.results {
		counts[*r]++
	}
	out := make([]Frequency, 0, len(counts))
	for r, n := range counts {
		out = append(out, Frequency{Result: r, Count: n})
	}
	slices.SortFunc(out, func(a, b Frequency) int {
		return cmp.Or(
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(b.WhiteWins, a.WhiteWins),
			cmp.Compare(b.Draws, a.Draws),
			cmp.Compare(b.BlackWins, a.BlackWins),
		)
	})
	return out
}

// MaxCount returns the largest Count in freqs, or 0.
func MaxCount(freqs []Frequency) int {
	m := 0
	for _, f := range freqs {
		m = max(m, f.Count)
	}
	return m
}

// ShortFEN returns the piece placement field of a FEN string.
func ShortFEN(fen string) string {
	placement, _, _ := strings.Cut(fen, " ")
	return placement
}

// FromOpenings rebuilds a book from stored openings.
func FromOpenings(openings []Opening) *Book {
	b := NewBook()
	for _, o := range openings {
		r := o.Result
		b.results[o.FEN] = &r
		b.games += r.Total()
	}
	return b
}
