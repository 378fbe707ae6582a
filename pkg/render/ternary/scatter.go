package ternary

import (
	"bytes"
	"fmt"
	"math"

	"github.com/matzehuels/bookplot/pkg/core/opening"
	tern "github.com/matzehuels/bookplot/pkg/core/ternary"
)

// RenderScatterSVG draws one circle per outcome triple at its white-win and
// draw proportions. The largest count gets a radius of half a tick interval.
func RenderScatterSVG(freqs []opening.Frequency, opts ...Option) []byte {
	r := newRenderer(opts...)
	f := tern.Frame{Side: r.side}

	var buf bytes.Buffer
	r.start(&buf, scatterCSS)
	r.frame(&buf)

	maxCount := float64(max(opening.MaxCount(freqs), 1))
	for _, fr := range freqs {
		if fr.Total() == 0 {
			continue
		}
		p := f.ToPlot(fr.Point())
		radius := r.side / 2 / float64(r.ticks) * math.Sqrt(float64(fr.Count)/maxCount)
		fmt.Fprintf(&buf, `    <circle cx="%.3f" cy="%.3f" r="%.3f" />`+"\n", p.X, p.Y, radius)
	}

	r.end(&buf)
	return buf.Bytes()
}
