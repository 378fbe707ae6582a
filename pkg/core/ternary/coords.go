package ternary

// AltitudeRatio is the height of an equilateral triangle divided by its side, √3/2.
const AltitudeRatio = 0.8660254037844386

// pointTolerance absorbs rounding in mesh vertices such as (1/3, 2/3).
const pointTolerance = 1e-12

// Point is a location on the 2-simplex given by its first two barycentric coordinates.
type Point struct {
	P1, P2 float64
}

// P3 returns the implied third coordinate 1-P1-P2.
func (p Point) P3() float64 { return 1 - p.P1 - p.P2 }

// Valid reports whether all three coordinates are non-negative, up to rounding.
func (p Point) Valid() bool {
	return p.P1 >= -pointTolerance && p.P2 >= -pointTolerance && p.P3() >= -pointTolerance
}

// PlotPoint is a position in screen space.
type PlotPoint struct {
	X, Y float64
}

// Frame is an equilateral plotting triangle whose bounding box starts at the origin.
type Frame struct {
	Side float64
}

// ToPlot maps a simplex point into the frame.
func (f Frame) ToPlot(p Point) PlotPoint {
	return PlotPoint{
		X: f.Side * (1 - p.P1 - p.P2/2),
		Y: f.Side * (1 - AltitudeRatio*p.P2),
	}
}

// Corners returns the images of the three pure outcomes, in category order:
// bottom-left, top, bottom-right.
func (f Frame) Corners() [3]PlotPoint {
	return [3]PlotPoint{
		f.ToPlot(Point{P1: 1}),
		f.ToPlot(Point{P2: 1}),
		f.ToPlot(Point{}),
	}
}

// Top returns the y coordinate of the top corner, the smallest y inside the frame.
func (f Frame) Top() float64 { return f.Side * (1 - AltitudeRatio) }
