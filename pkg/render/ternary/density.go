package ternary

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	tern "github.com/matzehuels/bookplot/pkg/core/ternary"
)

// RenderDensitySVG shades the simplex by the Dirichlet density with parameters
// alpha. Each mesh cell gets hue 240·(1 - v/max), where v is the density at its
// centroid and max the largest such value, so the mode is red.
func RenderDensitySVG(alpha dirichlet.Alpha, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	if err := alpha.Validate(); err != nil {
		return nil, err
	}
	mesh, err := tern.NewMesh(r.divisions)
	if err != nil {
		return nil, err
	}

	// Log densities keep large precisions from overflowing; only ratios matter.
	logMax := math.Inf(-1)
	for tri := range mesh.All() {
		logMax = max(logMax, logDensityAt(alpha, tri))
	}

	f := tern.Frame{Side: r.side}
	var buf bytes.Buffer
	r.start(&buf, densityCSS)
	for tri := range mesh.All() {
		hue := 240 * (1 - math.Exp(logDensityAt(alpha, tri)-logMax))
		a, b, c := f.ToPlot(tri[0]), f.ToPlot(tri[1]), f.ToPlot(tri[2])
		fmt.Fprintf(&buf, `    <polygon class="shading" fill="hsl(%.3f,100%%,50%%)" points="%.3f,%.3f %.3f,%.3f %.3f,%.3f" />`+"\n",
			hue, a.X, a.Y, b.X, b.Y, c.X, c.Y)
	}
	r.frame(&buf)
	r.end(&buf)
	return buf.Bytes(), nil
}

func logDensityAt(alpha dirichlet.Alpha, tri tern.Triangle) float64 {
	c := tri.Centroid()
	l, err := dirichlet.LogDensity(alpha, c.P1, c.P2)
	if err != nil {
		// Centroids are interior points and alpha was validated.
		panic(err)
	}
	return l
}
