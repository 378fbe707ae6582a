// Package render turns analysis results into images.
//
// # Overview
//
// The ternary plots themselves live in the [ternary] subpackage and are
// produced as SVG. This package converts any SVG into raster or print formats
// using the external rsvg-convert tool (from librsvg):
//
//	svg, _ := ternary.RenderDensitySVG(alpha)
//	pdf, err := render.Convert(ctx, svg, render.FormatPDF)
//	png, err := render.Convert(ctx, svg, render.FormatPNG)  // 2x scale
//
// # Formats
//
// [Formats] lists the output formats understood by [Convert]. SVG passes
// through untouched; PNG and PDF require rsvg-convert on the PATH.
package render
