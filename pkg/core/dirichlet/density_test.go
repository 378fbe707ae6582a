package dirichlet

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distmv"
)

func TestDensityUniformCentroid(t *testing.T) {
	got, err := Density(Alpha{1, 1, 1}, 1.0/3, 1.0/3)
	if err != nil {
		t.Fatalf("Density() error: %v", err)
	}
	if got != 2 {
		t.Errorf("Density((1,1,1), 1/3, 1/3) = %v, want exactly 2", got)
	}
}

func TestDensityUniformIsConstant(t *testing.T) {
	points := [][2]float64{{0.1, 0.1}, {0.5, 0.25}, {0, 0}, {0.9, 0.05}, {0, 1}}
	for _, p := range points {
		got, err := Density(Alpha{1, 1, 1}, p[0], p[1])
		if err != nil {
			t.Fatalf("Density(%v) error: %v", p, err)
		}
		if got != 2 {
			t.Errorf("Density(%v) = %v, want 2", p, got)
		}
	}
}

func TestDensityMatchesGonum(t *testing.T) {
	alphas := []Alpha{{2, 3, 4}, {5, 3, 2}, {0.5, 1.5, 7}, {10, 10, 10}}
	points := [][2]float64{{0.2, 0.3}, {0.6, 0.1}, {0.05, 0.9}, {1.0 / 3, 1.0 / 3}}

	for _, a := range alphas {
		ref := distmv.NewDirichlet(a[:], nil)
		for _, p := range points {
			got, err := Density(a, p[0], p[1])
			if err != nil {
				t.Fatalf("Density(%v, %v) error: %v", a, p, err)
			}
			want := ref.Prob([]float64{p[0], p[1], 1 - p[0] - p[1]})
			if math.Abs(got-want) > 1e-9*math.Max(1, want) {
				t.Errorf("Density(%v, %v) = %v, want %v", a, p, got, want)
			}
		}
	}
}

func TestDensityErrors(t *testing.T) {
	tests := []struct {
		name   string
		alpha  Alpha
		p1, p2 float64
		want   error
	}{
		{"negative p1", Alpha{2, 2, 2}, -0.1, 0.5, ErrNegativeCoordinate},
		{"negative p2", Alpha{2, 2, 2}, 0.5, -1e-9, ErrNegativeCoordinate},
		{"outside simplex", Alpha{2, 2, 2}, 0.7, 0.4, ErrOutsideSimplex},
		{"zero alpha", Alpha{0, 2, 2}, 0.2, 0.2, ErrInvalidAlpha},
		{"negative alpha", Alpha{2, -1, 2}, 0.2, 0.2, ErrInvalidAlpha},
		{"nan alpha", Alpha{2, 2, math.NaN()}, 0.2, 0.2, ErrInvalidAlpha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Density(tt.alpha, tt.p1, tt.p2)
			if !errors.Is(err, tt.want) {
				t.Errorf("Density() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDensityRoundingAtEdge(t *testing.T) {
	// 0.1+0.2 is slightly above 0.3, so p3 comes out a few ulps negative.
	got, err := Density(Alpha{2, 2, 1}, 0.7, 0.1+0.2)
	if err != nil {
		t.Fatalf("Density() error: %v", err)
	}
	if got < 0 || math.IsNaN(got) {
		t.Errorf("Density() = %v, want non-negative", got)
	}
}

func TestDensityEdgeWithSmallAlpha(t *testing.T) {
	got, err := Density(Alpha{0.5, 2, 2}, 0, 0.5)
	if err != nil {
		t.Fatalf("Density() error: %v", err)
	}
	if !math.IsInf(got, 1) {
		t.Errorf("Density() on edge with alpha < 1 = %v, want +Inf", got)
	}
}

func TestMustDensityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustDensity() should panic on negative coordinate")
		}
	}()
	MustDensity(Alpha{1, 1, 1}, -1, 0)
}

func TestLogDensityMatchesDensity(t *testing.T) {
	alphas := []Alpha{{1, 1, 1}, {2, 3, 4}, {0.5, 1.5, 7}}
	points := [][2]float64{{0.2, 0.3}, {0.6, 0.1}, {0, 0.5}, {1.0 / 3, 1.0 / 3}}
	for _, a := range alphas {
		for _, p := range points {
			d, err := Density(a, p[0], p[1])
			if err != nil {
				t.Fatal(err)
			}
			l, err := LogDensity(a, p[0], p[1])
			if err != nil {
				t.Fatal(err)
			}
			if math.IsInf(d, 1) {
				if !math.IsInf(l, 1) {
					t.Errorf("LogDensity(%v, %v) = %v, want +Inf", a, p, l)
				}
				continue
			}
			if math.Abs(math.Exp(l)-d) > 1e-9*math.Max(1, d) {
				t.Errorf("exp(LogDensity(%v, %v)) = %v, want %v", a, p, math.Exp(l), d)
			}
		}
	}
}

func TestLogDensityLargeAlpha(t *testing.T) {
	a := Alpha{7339, 3670, 3670}
	l, err := LogDensity(a, 0.5, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsInf(l, 0) || math.IsNaN(l) {
		t.Errorf("LogDensity(%v) = %v, want finite", a, l)
	}
}
