// Package ternary draws outcome proportions and Dirichlet densities as SVG
// ternary plots.
//
// Both plots share a frame: an equilateral triangle with white wins at the
// bottom-left corner, draws at the top and black wins at the bottom-right, a
// tick grid for each axis labelled in percent, and an arrow per axis.
//
// [RenderScatterSVG] draws one circle per distinct outcome triple, its area
// proportional to the number of openings that produced it. [RenderDensitySVG]
// shades a triangular mesh by the density at each cell's centroid, from blue
// (low) to red (the maximum).
//
//	svg, err := ternary.RenderDensitySVG(alpha, ternary.WithDivisions(50))
package ternary
