// Package ternary maps outcome proportions onto an equilateral triangle and
// partitions the 2-simplex into a regular triangular mesh.
//
// # Coordinates
//
// A [Point] holds the first two proportions (p1, p2) of a three-way outcome;
// the third is implied as 1-p1-p2. [Frame.ToPlot] places a point inside an
// equilateral triangle of the given side length, in screen coordinates (y grows
// downward):
//
//	p1 = 1  → bottom-left corner  (0, side)
//	p2 = 1  → top corner          (side/2, side·(1-√3/2))
//	p3 = 1  → bottom-right corner (side, side)
//
// # Mesh
//
// [NewMesh] divides the simplex into resolution² congruent triangles, produced
// lazily row by row by [Mesh.All]:
//
//	m, _ := ternary.NewMesh(25)
//	for tri := range m.All() {
//	    c := tri.Centroid()
//	    v := dirichlet.MustDensity(alpha, c.P1, c.P2)
//	    ...
//	}
//
// Iteration uses constant memory and can be restarted any number of times.
package ternary
