// Package dirichlet fits and evaluates three-category Dirichlet distributions.
//
// # Overview
//
// Each opening in a book produces a triple of outcome counts (white wins, draws,
// black wins). Treating every opening as a draw from a Dirichlet prior followed by
// multinomial sampling gives the Dirichlet-multinomial (Polya) model. This package
// estimates the prior's concentration parameters from the count triples and
// evaluates the resulting density on the 2-simplex:
//
//   - [Fit] and [FitDetailed]: Minka's fixed-point maximum-likelihood estimator
//   - [Density]: the Dirichlet probability density at a simplex point
//
// # Fitting
//
// The estimator starts from [InitialAlpha] and repeats the fixed-point update until
// the squared distance between successive estimates drops below machine epsilon:
//
//	alpha, err := dirichlet.Fit(samples)
//	if errors.Is(err, dirichlet.ErrNotConverged) {
//	    // alpha holds the last estimate
//	}
//
// Some data sets have no finite maximum: when openings vary less than multinomial
// noise alone would predict, the precision grows without bound and the update never
// settles. [WithMaxIterations] bounds the loop (default [DefaultMaxIterations]) and the
// fitter reports [ErrNotConverged] together with the last iterate.
//
// # Density
//
// [Density] takes the first two coordinates of a simplex point; the third is implied:
//
//	v, err := dirichlet.Density(dirichlet.Alpha{2, 2, 2}, 0.2, 0.3)
//
// Negative coordinates and points outside the simplex are rejected rather than
// producing a meaningless value.
//
// All functions are pure and safe for concurrent use.
//
// See "Estimating a Dirichlet distribution", Thomas P. Minka:
// https://tminka.github.io/papers/dirichlet/minka-dirichlet.pdf
package dirichlet
