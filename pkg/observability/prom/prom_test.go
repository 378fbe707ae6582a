package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/bookplot/pkg/observability"
)

func TestMetricsRecordHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Register()
	defer observability.Reset()

	ctx := context.Background()
	observability.Pipeline().OnAggregateComplete(ctx, "games.pgn", 120, 4, time.Millisecond, nil)
	observability.Pipeline().OnFitComplete(ctx, 10000, false, time.Millisecond, errors.New("not converged"))
	observability.Cache().OnCacheHit(ctx, "fit")
	observability.Cache().OnCacheMiss(ctx, "fit")
	observability.Cache().OnCacheSet(ctx, "artifact", 2048)
	observability.HTTP().OnResponse(ctx, "POST", "/v1/fit", 200, time.Millisecond)
	observability.HTTP().OnError(ctx, "POST", "/v1/fit", errors.New("boom"))

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"games", m.gamesTotal, 120},
		{"unconverged", m.fitUnconverged, 1},
		{"fit errors", m.stageErrors.WithLabelValues("fit"), 1},
		{"cache hits", m.cacheEvents.WithLabelValues("fit", "hit"), 1},
		{"cache bytes", m.cacheBytes.WithLabelValues("artifact"), 2048},
		{"http 200", m.httpRequests.WithLabelValues("POST", "/v1/fit", "200"), 1},
		{"http errors", m.httpErrors.WithLabelValues("POST", "/v1/fit"), 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.stageDuration); n != 2 {
		t.Errorf("stage duration series = %d, want 2", n)
	}
}
