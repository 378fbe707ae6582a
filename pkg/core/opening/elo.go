package opening

import "math"

// Score returns white's expected score, counting a draw as half a point.
func (r Result) Score() float64 {
	return r.WhiteWinProportion() + r.DrawProportion()/2
}

// EloDifference converts the score into the logistic rating difference that
// would produce it. Scores of 0 or 1 have no finite difference and yield 0.
func (r Result) EloDifference() float64 {
	return scoreToElo(r.Score())
}

func scoreToElo(s float64) float64 {
	if s <= 0 || s >= 1 {
		return 0
	}
	return -400 * math.Log10(1/s-1)
}

// BayesElo returns the BayesElo rating advantage and draw parameter that
// reproduce the given win, draw and loss probabilities. Both are NaN unless
// the win and loss probabilities lie strictly between 0 and 1.
func BayesElo(win, loss float64) (elo, drawElo float64) {
	if win <= 0 || win >= 1 || loss <= 0 || loss >= 1 {
		return math.NaN(), math.NaN()
	}
	elo = 200 * math.Log10((win/loss)*((1-loss)/(1-win)))
	drawElo = 200 * math.Log10(((1-loss)/loss)*((1-win)/win))
	return elo, drawElo
}

// ExpectedWDL is the inverse of [BayesElo].
func ExpectedWDL(elo, drawElo float64) (win, draw, loss float64) {
	win = 1 / (1 + math.Pow(10, (-elo+drawElo)/400))
	loss = 1 / (1 + math.Pow(10, (elo+drawElo)/400))
	return win, 1 - win - loss, loss
}
