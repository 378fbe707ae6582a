package opening

import "github.com/matzehuels/bookplot/pkg/core/dirichlet"

// Analysis is a book together with the Dirichlet prior fitted to its openings.
type Analysis struct {
	Alpha      dirichlet.Alpha `json:"alpha" bson:"alpha"`
	Iterations int             `json:"iterations" bson:"iterations"`
	Converged  bool            `json:"converged" bson:"converged"`
	Games      int             `json:"games" bson:"games"`
	Openings   []Opening       `json:"openings" bson:"openings"`
}

// NewAnalysis combines a book with a fit of its samples.
func NewAnalysis(b *Book, fit dirichlet.FitResult, converged bool) Analysis {
	return Analysis{
		Alpha:      fit.Alpha,
		Iterations: fit.Iterations,
		Converged:  converged,
		Games:      b.Games(),
		Openings:   b.Openings(),
	}
}

// Book rebuilds the book the analysis was computed from.
func (a Analysis) Book() *Book { return FromOpenings(a.Openings) }
