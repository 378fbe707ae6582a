// Package opening groups game results by starting position.
//
// An opening book used for engine testing assigns each game a start position,
// recorded in the FEN tag. [Aggregator] scores every game against its position
// and builds a [Book]: per-opening white-win / draw / black-win counts, the
// samples handed to the Dirichlet fit, and the distribution of distinct
// outcome triples drawn by the scatter plot.
//
// By default the aggregator is strict: a game without exactly one FEN tag or
// without a decisive result aborts the run. [WithLenient] skips such games and
// counts them in [Stats].
package opening
