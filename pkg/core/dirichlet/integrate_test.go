package dirichlet_test

import (
	"math"
	"testing"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/ternary"
)

func TestDensityIntegratesToOne(t *testing.T) {
	tests := []struct {
		alpha dirichlet.Alpha
		tol   float64
	}{
		{dirichlet.Alpha{2, 2, 2}, 1e-2},
		{dirichlet.Alpha{1, 1, 1}, 1e-12},
		{dirichlet.Alpha{5, 3, 2}, 2e-2},
	}

	mesh, err := ternary.NewMesh(50)
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		var sum float64
		for tri := range mesh.All() {
			c := tri.Centroid()
			v := dirichlet.MustDensity(tt.alpha, c.P1, c.P2)
			if v < 0 || math.IsNaN(v) {
				t.Fatalf("density%v at %v = %v", tt.alpha, c, v)
			}
			sum += v * tri.Area()
		}
		if math.Abs(sum-1) > tt.tol {
			t.Errorf("integral of density%v = %v, want 1", tt.alpha, sum)
		}
	}
}
