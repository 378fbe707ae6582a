package ternary

import (
	"bytes"
	"fmt"
	"html"

	tern "github.com/matzehuels/bookplot/pkg/core/ternary"
)

const (
	tickTextDY        = -2.0
	axisLabelDY       = -6.0
	axisLabelFontSize = 16.0 // must match .axis-label in frameCSS
	titleFontSize     = 18.0
)

const frameCSS = `
    text { font-family: Helvetica, Arial, sans-serif; fill: #222; }
    .main { fill: none; stroke: #000; stroke-width: 2; }
    .tick-line { stroke: #999; stroke-width: 0.5; }
    .tick { font-size: 10px; }
    .axis-arrow { stroke: #000; stroke-width: 1.5; }
    .axis-label { font-size: 16px; }
    .title { font-size: 18px; font-weight: bold; }`

const scatterCSS = `
    circle { fill: #1f77b4; fill-opacity: 0.6; stroke: #0b3c61; stroke-width: 0.5; }`

const densityCSS = `
    .shading { stroke: none; }`

// start writes the document header and opens the translated main group.
func (r renderer) start(buf *bytes.Buffer, css string) {
	f := tern.Frame{Side: r.side}
	height := r.side*tern.AltitudeRatio + 2*r.margin
	width := r.side + 2*r.margin

	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(buf, "  <style>%s%s\n  </style>\n", frameCSS, css)
	buf.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" /></marker></defs>` + "\n")
	if r.title != "" {
		fmt.Fprintf(buf, `  <text class="title" x="%.3f" y="%.3f" text-anchor="middle">%s</text>`+"\n",
			width/2, titleFontSize+4, html.EscapeString(r.title))
	}
	fmt.Fprintf(buf, `  <g transform="translate(%.3f, %.3f)">`+"\n", r.margin, r.margin-f.Top())
}

func (r renderer) end(buf *bytes.Buffer) {
	buf.WriteString("  </g>\n</svg>\n")
}

type line struct{ from, to tern.PlotPoint }

// frame draws the triangle outline, the tick grid and the axis arrows.
func (r renderer) frame(buf *bytes.Buffer) {
	f := tern.Frame{Side: r.side}
	c := f.Corners()
	fmt.Fprintf(buf, `    <polygon class="main" points="%.3f,%.3f %.3f,%.3f %.3f,%.3f" />`+"\n",
		c[0].X, c[0].Y, c[2].X, c[2].Y, c[1].X, c[1].Y)

	ticks := tern.Ticks(r.ticks)
	n := len(ticks)
	right := make([]tern.PlotPoint, n)  // black-win / draw edge, p1 = 0
	bottom := make([]tern.PlotPoint, n) // white-win / black-win edge, p2 = 0
	left := make([]tern.PlotPoint, n)   // white-win / draw edge, p3 = 0
	for i, p := range ticks {
		right[i] = f.ToPlot(tern.Point{P1: 0, P2: 1 - p})
		bottom[i] = f.ToPlot(tern.Point{P1: p, P2: 0})
		left[i] = f.ToPlot(tern.Point{P1: 1 - p, P2: p})
	}

	tl := r.tickLength()
	draw := make([]line, n)
	black := make([]line, n)
	white := make([]line, n)
	for i := range ticks {
		start := left[i]
		start.X -= tl
		draw[i] = line{start, right[n-1-i]}

		end := right[i]
		black[i] = line{bottom[n-1-i], tern.PlotPoint{X: end.X + tl/2, Y: end.Y - tl*tern.AltitudeRatio}}

		end = bottom[i]
		white[i] = line{left[n-1-i], tern.PlotPoint{X: end.X + tl/2, Y: end.Y + tl*tern.AltitudeRatio}}
	}

	buf.WriteString("    <defs>\n")
	writeLines(buf, "draw-line", draw)
	writeLines(buf, "black-line", black)
	writeLines(buf, "white-line", white)
	r.arrows(buf, c)
	buf.WriteString("    </defs>\n")

	for i, p := range ticks {
		fmt.Fprintf(buf, `    <use class="tick-line" href="#draw-line-%d" />`+"\n", i+1)
		fmt.Fprintf(buf, `    <text dy="%.3f" class="tick"><textPath xlink:href="#draw-line-%d">%.0f</textPath></text>`+"\n",
			tickTextDY, i+1, 100*p)
	}
	for _, axis := range []string{"black-line", "white-line"} {
		for i, p := range ticks {
			fmt.Fprintf(buf, `    <use class="tick-line" href="#%s-%d" />`+"\n", axis, i+1)
			fmt.Fprintf(buf, `    <text text-anchor="end" dy="%.3f" class="tick"><textPath xlink:href="#%s-%d" startOffset="%.3f">%.0f</textPath></text>`+"\n",
				tickTextDY, axis, i+1, r.side*(1-p)+tl, 100*p)
		}
	}

	labels := []struct {
		use, path, text string
		dy              float64
	}{
		{"left-arrow", "left-arrow", "Draw", axisLabelDY},
		{"right-arrow", "right-arrow", "Black Win", axisLabelDY},
		{"bottom-arrow", "bottom-arrow-reverse", "White Win", axisLabelFontSize - axisLabelDY - 2},
	}
	for _, l := range labels {
		fmt.Fprintf(buf, `    <use class="axis-arrow" href="#%s" />`+"\n", l.use)
		fmt.Fprintf(buf, `    <text text-anchor="middle" dy="%.3f" class="axis-label"><textPath xlink:href="#%s" startOffset="%.3f">%s</textPath></text>`+"\n",
			l.dy, l.path, r.side/4, l.text)
	}
}

// arrows defines one arrow parallel to each edge, offset outward from its midpoint.
func (r renderer) arrows(buf *bytes.Buffer, c [3]tern.PlotPoint) {
	w, d, b := c[0], c[1], c[2]
	space := r.arrowSpace()
	dx, dy := r.side/8, r.side/4*tern.AltitudeRatio

	lc := tern.PlotPoint{X: (w.X+d.X)/2 - space*tern.AltitudeRatio, Y: (w.Y+d.Y)/2 - space/2}
	writePath(buf, "left-arrow", line{tern.PlotPoint{X: lc.X - dx, Y: lc.Y + dy}, tern.PlotPoint{X: lc.X + dx, Y: lc.Y - dy}}, true)

	rc := tern.PlotPoint{X: (d.X+b.X)/2 + space*tern.AltitudeRatio, Y: (d.Y+b.Y)/2 - space/2}
	writePath(buf, "right-arrow", line{tern.PlotPoint{X: rc.X - dx, Y: rc.Y - dy}, tern.PlotPoint{X: rc.X + dx, Y: rc.Y + dy}}, true)

	bc := tern.PlotPoint{X: (b.X + w.X) / 2, Y: (b.Y+w.Y)/2 + space}
	writePath(buf, "bottom-arrow", line{tern.PlotPoint{X: bc.X + r.side/4, Y: bc.Y}, tern.PlotPoint{X: bc.X - r.side/4, Y: bc.Y}}, true)
	writePath(buf, "bottom-arrow-reverse", line{tern.PlotPoint{X: bc.X - r.side/4, Y: bc.Y}, tern.PlotPoint{X: bc.X + r.side/4, Y: bc.Y}}, false)
}

func writeLines(buf *bytes.Buffer, prefix string, lines []line) {
	for i, l := range lines {
		writePath(buf, fmt.Sprintf("%s-%d", prefix, i+1), l, false)
	}
}

func writePath(buf *bytes.Buffer, id string, l line, marker bool) {
	fmt.Fprintf(buf, `      <path id="%s" d="M %.3f %.3f L %.3f %.3f"`, id, l.from.X, l.from.Y, l.to.X, l.to.Y)
	if marker {
		buf.WriteString(` marker-end="url(#arrow)"`)
	}
	buf.WriteString(" />\n")
}
