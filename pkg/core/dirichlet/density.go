package dirichlet

import (
	"errors"
	"fmt"
	"math"
)

// simplexTolerance absorbs rounding when p1+p2 lands a hair above 1.
const simplexTolerance = 1e-12

var (
	// ErrNegativeCoordinate is returned when p1 or p2 is negative.
	ErrNegativeCoordinate = errors.New("negative simplex coordinate")

	// ErrOutsideSimplex is returned when p1+p2 exceeds 1.
	ErrOutsideSimplex = errors.New("point outside the simplex")
)

// Density evaluates the Dirichlet probability density at the simplex point
// (p1, p2, 1-p1-p2):
//
//	Γ(α1+α2+α3) · p1^(α1-1)/Γ(α1) · p2^(α2-1)/Γ(α2) · p3^(α3-1)/Γ(α3)
//
// Coordinates on an edge with a parameter below 1 yield +Inf.
func Density(alpha Alpha, p1, p2 float64) (float64, error) {
	p3, err := checkPoint(alpha, p1, p2)
	if err != nil {
		return 0, err
	}
	return math.Gamma(alpha.Sum()) *
		(math.Pow(p1, alpha[0]-1) / math.Gamma(alpha[0])) *
		(math.Pow(p2, alpha[1]-1) / math.Gamma(alpha[1])) *
		(math.Pow(p3, alpha[2]-1) / math.Gamma(alpha[2])), nil
}

// LogDensity returns the natural logarithm of [Density]. It stays finite for
// large parameters, where the gamma function overflows.
func LogDensity(alpha Alpha, p1, p2 float64) (float64, error) {
	p3, err := checkPoint(alpha, p1, p2)
	if err != nil {
		return 0, err
	}
	l := lgamma(alpha.Sum())
	for k, p := range [Categories]float64{p1, p2, p3} {
		l += xlogy(alpha[k]-1, p) - lgamma(alpha[k])
	}
	return l, nil
}

// checkPoint validates the arguments of a density evaluation and returns p3,
// clamped to 0 when rounding pushed it slightly negative.
func checkPoint(alpha Alpha, p1, p2 float64) (float64, error) {
	if p1 < 0 || p2 < 0 {
		return 0, fmt.Errorf("%w: (%g, %g)", ErrNegativeCoordinate, p1, p2)
	}
	if err := alpha.Validate(); err != nil {
		return 0, err
	}
	p3 := 1 - p1 - p2
	if p3 < 0 {
		if p3 < -simplexTolerance {
			return 0, fmt.Errorf("%w: p1+p2 = %g", ErrOutsideSimplex, p1+p2)
		}
		p3 = 0
	}
	return p3, nil
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// xlogy returns x·log(y) with 0·log(0) = 0.
func xlogy(x, y float64) float64 {
	if x == 0 {
		return 0
	}
	return x * math.Log(y)
}

// MustDensity is like [Density] but panics on invalid input.
// It is meant for loops over mesh centroids, which are always inside the simplex.
func MustDensity(alpha Alpha, p1, p2 float64) float64 {
	v, err := Density(alpha, p1, p2)
	if err != nil {
		panic(err)
	}
	return v
}
