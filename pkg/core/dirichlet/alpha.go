package dirichlet

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Categories is the number of outcome categories handled by this package.
const Categories = 3

// Counts holds the observed outcome counts of a single sample, e.g. one opening.
// The category order must be the same across all samples passed to [Fit].
type Counts [Categories]int

// Total returns the number of observations in the sample.
func (c Counts) Total() int { return c[0] + c[1] + c[2] }

// UnmarshalJSON decodes a JSON array of exactly [Categories] counts. The
// default array decoding would zero-fill short arrays and drop extra values.
func (c *Counts) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != Categories {
		return fmt.Errorf("counts: got %d values, want %d", len(v), Categories)
	}
	copy(c[:], v)
	return nil
}

// Alpha holds the concentration parameters of a Dirichlet distribution.
type Alpha [Categories]float64

// InitialAlpha is the starting point of the fixed-point iteration.
var InitialAlpha = Alpha{10, 10, 10}

// ErrInvalidAlpha is returned when a concentration parameter is not a positive finite number.
var ErrInvalidAlpha = errors.New("invalid concentration parameters")

// Sum returns the precision of the distribution (the sum of the parameters).
func (a Alpha) Sum() float64 {
	var s float64
	for _, v := range a {
		s += v
	}
	return s
}

// Mean returns the expected outcome probabilities alpha / sum(alpha).
func (a Alpha) Mean() [Categories]float64 {
	var m [Categories]float64
	floats.ScaleTo(m[:], 1/a.Sum(), a[:])
	return m
}

// Validate reports whether every parameter is positive and finite.
func (a Alpha) Validate() error {
	for i, v := range a {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: alpha[%d] = %g", ErrInvalidAlpha, i, v)
		}
	}
	return nil
}

// String formats the parameters with three decimals, e.g. "(5.063, 3.042, 2.125)".
func (a Alpha) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", a[0], a[1], a[2])
}

// ParseAlpha parses three comma-separated parameters such as "5,3,2" or
// "(5.06, 3.04, 2.12)".
func ParseAlpha(s string) (Alpha, error) {
	var a Alpha
	fields := strings.Split(strings.Trim(strings.TrimSpace(s), "()"), ",")
	if len(fields) != Categories {
		return a, fmt.Errorf("%w: want %d values, got %q", ErrInvalidAlpha, Categories, s)
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return a, fmt.Errorf("%w: %v", ErrInvalidAlpha, err)
		}
		a[i] = v
	}
	return a, a.Validate()
}
