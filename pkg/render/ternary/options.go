package ternary

// Defaults reproduce a 400px plot with a 10% tick grid.
const (
	DefaultSide      = 400.0
	DefaultMargin    = 80.0
	DefaultTicks     = 10
	DefaultDivisions = 25
)

// Option configures a plot.
type Option func(*renderer)

type renderer struct {
	side      float64
	margin    float64
	ticks     int
	divisions int
	title     string
}

// WithSide sets the side length of the triangle in pixels.
func WithSide(side float64) Option {
	return func(r *renderer) {
		if side > 0 {
			r.side = side
		}
	}
}

// WithMargin sets the space around the triangle reserved for ticks and labels.
func WithMargin(margin float64) Option {
	return func(r *renderer) {
		if margin >= 0 {
			r.margin = margin
		}
	}
}

// WithTicks sets the number of intervals per axis.
func WithTicks(n int) Option {
	return func(r *renderer) {
		if n > 0 {
			r.ticks = n
		}
	}
}

// WithDivisions sets the mesh resolution of the density plot.
func WithDivisions(n int) Option { return func(r *renderer) { r.divisions = n } }

// WithTitle adds a caption above the plot.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		side:      DefaultSide,
		margin:    DefaultMargin,
		ticks:     DefaultTicks,
		divisions: DefaultDivisions,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Lengths below scale with the side; at 400px they are 40, 60 and -6.
func (r renderer) tickLength() float64 { return r.side / 10 }
func (r renderer) arrowSpace() float64 { return r.side * 0.15 }
