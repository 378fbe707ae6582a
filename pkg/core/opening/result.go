package opening

import (
	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/ternary"
	"github.com/matzehuels/bookplot/pkg/pgn"
)

// Result holds the outcome counts of all games played from one opening.
type Result struct {
	WhiteWins int `json:"white_wins" bson:"white_wins"`
	Draws     int `json:"draws" bson:"draws"`
	BlackWins int `json:"black_wins" bson:"black_wins"`
}

// Total returns the number of games.
func (r Result) Total() int { return r.WhiteWins + r.Draws + r.BlackWins }

// WhiteWinProportion returns the share of games won by white, 0 for an empty result.
func (r Result) WhiteWinProportion() float64 { return r.proportion(r.WhiteWins) }

// DrawProportion returns the share of drawn games.
func (r Result) DrawProportion() float64 { return r.proportion(r.Draws) }

// BlackWinProportion returns the share of games won by black.
func (r Result) BlackWinProportion() float64 { return r.proportion(r.BlackWins) }

func (r Result) proportion(n int) float64 {
	total := r.Total()
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// Counts returns the result as a Dirichlet sample in white, draw, black order.
func (r Result) Counts() dirichlet.Counts {
	return dirichlet.Counts{r.WhiteWins, r.Draws, r.BlackWins}
}

// Point places the result on the simplex as (white-win share, draw share).
func (r Result) Point() ternary.Point {
	return ternary.Point{P1: r.WhiteWinProportion(), P2: r.DrawProportion()}
}

func (r *Result) add(t pgn.Termination) bool {
	switch t {
	case pgn.WhiteWins:
		r.WhiteWins++
	case pgn.Draw:
		r.Draws++
	case pgn.BlackWins:
		r.BlackWins++
	default:
		return false
	}
	return true
}
