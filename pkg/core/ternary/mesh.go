package ternary

import (
	"errors"
	"fmt"
	"iter"
)

// SimplexArea is the area of the 2-simplex in (p1, p2) coordinates.
const SimplexArea = 0.5

// ErrNegativeResolution is returned by [NewMesh] for a negative resolution.
var ErrNegativeResolution = errors.New("negative mesh resolution")

// Triangle is a mesh cell given by its three vertices.
type Triangle [3]Point

// Centroid returns the mean of the three vertices.
func (t Triangle) Centroid() Point {
	return Point{
		P1: (t[0].P1 + t[1].P1 + t[2].P1) / 3,
		P2: (t[0].P2 + t[1].P2 + t[2].P2) / 3,
	}
}

// Area returns the planar area of the triangle in (p1, p2) coordinates.
func (t Triangle) Area() float64 {
	cross := (t[1].P1-t[0].P1)*(t[2].P2-t[0].P2) - (t[2].P1-t[0].P1)*(t[1].P2-t[0].P2)
	if cross < 0 {
		cross = -cross
	}
	return cross / 2
}

// Mesh is a regular subdivision of the simplex into Resolution² triangles.
type Mesh struct {
	resolution int
}

// NewMesh returns a mesh that splits every edge of the simplex into resolution
// segments. A resolution of 0 gives an empty mesh.
func NewMesh(resolution int) (Mesh, error) {
	if resolution < 0 {
		return Mesh{}, fmt.Errorf("%w: %d", ErrNegativeResolution, resolution)
	}
	return Mesh{resolution: resolution}, nil
}

// Resolution returns the number of segments per edge.
func (m Mesh) Resolution() int { return m.resolution }

// Len returns the number of triangles, Resolution².
func (m Mesh) Len() int { return m.resolution * m.resolution }

// All yields the triangles row by row, starting at the p2 = 1 corner.
// Row r covers the strip 1-r/n <= p2 <= 1-(r-1)/n and holds 2r-1 triangles
// of alternating orientation; consecutive triangles share an edge.
func (m Mesh) All() iter.Seq[Triangle] {
	return func(yield func(Triangle) bool) {
		w := walker{n: m.resolution}
		for {
			t, ok := w.next()
			if !ok || !yield(t) {
				return
			}
		}
	}
}

// Triangles materializes [Mesh.All].
func (m Mesh) Triangles() []Triangle {
	out := make([]Triangle, 0, m.Len())
	for t := range m.All() {
		out = append(out, t)
	}
	return out
}

// walker is the iteration state of a mesh: the current row, the position inside
// the row and the last emitted triangle, whose trailing two vertices seed the next.
type walker struct {
	n     int
	row   int
	index int
	tri   Triangle
}

func (w *walker) next() (Triangle, bool) {
	if w.n == 0 {
		return Triangle{}, false
	}
	n := float64(w.n)

	w.index++
	if w.index >= 2*w.row {
		w.row++
		if w.row > w.n {
			return Triangle{}, false
		}
		r := float64(w.row)
		top, bottom := 1-(r-1)/n, 1-r/n
		left, right := r/n, (r-1)/n
		w.tri = Triangle{{left, bottom}, {right, top}, {right, bottom}}
		w.index = 1
		return w.tri, true
	}

	// Slide the window: the new vertex alternates between the upper and the
	// lower edge of the strip while p1 decreases.
	w.tri[0], w.tri[1] = w.tri[1], w.tri[2]
	w.tri[2] = Point{
		P1: float64(w.row-1-w.index/2) / n,
		P2: 1 - float64(w.row-(w.index-1)%2)/n,
	}
	return w.tri, true
}
