package pipeline

import (
	"errors"
	"fmt"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
)

// Fit estimates the prior of samples. An unconverged estimate is returned with
// its *dirichlet.NotConvergedError unless opts.AllowUnconverged is set, in which
// case the error is logged and dropped.
func Fit(samples []dirichlet.Counts, opts Options) (dirichlet.FitResult, error) {
	opts.SetFitDefaults()
	res, err := dirichlet.FitDetailed(samples, opts.FitOptions()...)
	return res, checkConvergence(res, err, opts)
}

// checkConvergence applies the AllowUnconverged policy to a fit outcome.
func checkConvergence(res dirichlet.FitResult, err error, opts Options) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, dirichlet.ErrNotConverged) {
		return err
	}
	if !opts.AllowUnconverged {
		return fmt.Errorf("%w (use --allow-unconverged to keep the last estimate)", err)
	}
	opts.Logger.Warn("fit did not converge, keeping last estimate",
		"alpha", res.Alpha.String(),
		"iterations", res.Iterations,
		"step", res.Distance)
	return nil
}

// fitEntry is the cached form of a fit.
type fitEntry struct {
	Alpha      dirichlet.Alpha `json:"alpha"`
	Iterations int             `json:"iterations"`
	Distance   float64         `json:"distance"`
}

func (e fitEntry) result() dirichlet.FitResult {
	return dirichlet.FitResult{Alpha: e.Alpha, Iterations: e.Iterations, Distance: e.Distance}
}

// outcome rebuilds the error FitDetailed returned for this entry.
func (e fitEntry) outcome(opts Options) error {
	if e.Distance < opts.Tolerance {
		return nil
	}
	if opts.MaxIterations > 0 && e.Iterations >= opts.MaxIterations {
		return &dirichlet.NotConvergedError{Iterations: e.Iterations, Distance: e.Distance}
	}
	return nil
}
