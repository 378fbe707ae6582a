package dirichlet

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
)

const (
	// Epsilon is the default convergence threshold on the squared distance between
	// successive estimates: the machine epsilon of float64.
	Epsilon = 2.220446049250313e-16

	// DefaultMaxIterations bounds the fixed-point loop.
	DefaultMaxIterations = 10000
)

var (
	// ErrNoSamples is returned when Fit is called with an empty sample set.
	ErrNoSamples = errors.New("no samples")

	// ErrNegativeCount is returned when a sample holds a negative count.
	ErrNegativeCount = errors.New("negative count")

	// ErrDegenerateSamples is returned when the samples carry no usable information:
	// every sample is empty, or a category was never observed.
	ErrDegenerateSamples = errors.New("degenerate samples")

	// ErrNotConverged is returned when the iteration limit is reached.
	ErrNotConverged = errors.New("fixed-point iteration did not converge")
)

// NotConvergedError reports the state of the estimator when the iteration limit was hit.
type NotConvergedError struct {
	Iterations int
	Distance   float64 // squared distance of the last update
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("%v after %d iterations (last squared step %g)", ErrNotConverged, e.Iterations, e.Distance)
}

// Is lets errors.Is match ErrNotConverged.
func (e *NotConvergedError) Is(target error) bool { return target == ErrNotConverged }

// FitResult is the outcome of [FitDetailed].
type FitResult struct {
	Alpha      Alpha
	Iterations int
	Distance   float64 // squared distance of the last update
}

// Converged reports whether the last update was below tol.
func (r FitResult) Converged(tol float64) bool { return r.Distance < tol }

// FitOption configures [Fit].
type FitOption func(*fitConfig)

type fitConfig struct {
	maxIterations int
	tolerance     float64
}

// WithMaxIterations sets the iteration limit. A value <= 0 removes the limit.
func WithMaxIterations(n int) FitOption {
	return func(c *fitConfig) { c.maxIterations = n }
}

// WithTolerance sets the convergence threshold on the squared step length.
// Values <= 0 keep the default [Epsilon].
func WithTolerance(tol float64) FitOption {
	return func(c *fitConfig) {
		if tol > 0 {
			c.tolerance = tol
		}
	}
}

// Fit estimates the Dirichlet concentration parameters of the Polya model that
// generated samples. See [FitDetailed].
func Fit(samples []Counts, opts ...FitOption) (Alpha, error) {
	r, err := FitDetailed(samples, opts...)
	return r.Alpha, err
}

// FitDetailed runs Minka's fixed-point iteration
//
//	α'_k = α_k · Σ_s[ψ(s_k+α_k) - ψ(α_k)] / Σ_s[ψ(|s|+S) - ψ(S)],  S = Σ_k α_k
//
// starting from [InitialAlpha] until the squared distance between successive
// estimates is below the tolerance. All categories of a round are updated from
// the same previous estimate.
//
// When the iteration limit is reached the result holds the last estimate and the
// error is a *[NotConvergedError].
func FitDetailed(samples []Counts, opts ...FitOption) (FitResult, error) {
	cfg := fitConfig{maxIterations: DefaultMaxIterations, tolerance: Epsilon}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateSamples(samples); err != nil {
		return FitResult{}, err
	}

	res := FitResult{Alpha: InitialAlpha, Distance: math.Inf(1)}
	for cfg.maxIterations <= 0 || res.Iterations < cfg.maxIterations {
		next, err := update(samples, res.Alpha)
		if err != nil {
			return res, err
		}
		res.Distance = squaredDistance(res.Alpha, next)
		res.Alpha = next
		res.Iterations++

		if res.Distance < cfg.tolerance {
			return res, nil
		}
	}
	return res, &NotConvergedError{Iterations: res.Iterations, Distance: res.Distance}
}

func validateSamples(samples []Counts) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}

	var totals Counts
	for i, s := range samples {
		for k, n := range s {
			if n < 0 {
				return fmt.Errorf("%w: sample %d category %d = %d", ErrNegativeCount, i, k, n)
			}
			totals[k] += n
		}
	}
	if totals.Total() == 0 {
		return fmt.Errorf("%w: all samples are empty", ErrDegenerateSamples)
	}
	for k, n := range totals {
		if n == 0 {
			return fmt.Errorf("%w: category %d never observed", ErrDegenerateSamples, k)
		}
	}
	return nil
}

// update performs one round of the fixed-point iteration.
func update(samples []Counts, alpha Alpha) (Alpha, error) {
	sum := alpha.Sum()
	psiSum := mathext.Digamma(sum)

	var denominator float64
	for _, s := range samples {
		denominator += mathext.Digamma(float64(s.Total())+sum) - psiSum
	}
	if denominator == 0 {
		return alpha, fmt.Errorf("%w: zero denominator", ErrDegenerateSamples)
	}

	var next Alpha
	for k, a := range alpha {
		psiA := mathext.Digamma(a)
		var numerator float64
		for _, s := range samples {
			numerator += mathext.Digamma(float64(s[k])+a) - psiA
		}
		next[k] = a * numerator / denominator
	}

	if err := next.Validate(); err != nil {
		return alpha, fmt.Errorf("%w: %v", ErrDegenerateSamples, err)
	}
	return next, nil
}

func squaredDistance(a, b Alpha) float64 {
	var d float64
	for k := range a {
		diff := a[k] - b[k]
		d += diff * diff
	}
	return d
}
