package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("fitted dirichlet", "iterations", 42)

	line := strings.TrimSpace(buf.String())
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("line %q does not start with a 15:04:05.00 timestamp", line)
	}
	for _, want := range []string{appName, "fitted dirichlet", "iterations=42"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestNewLoggerLevel(t *testing.T) {
	tests := []struct {
		level     log.Level
		wantDebug bool
	}{
		{LogInfo, false},
		{LogDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			newLogger(&buf, tt.level).Debug("cache lookup")
			if got := buf.Len() > 0; got != tt.wantDebug {
				t.Errorf("debug output = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.start = time.Now().Add(-1500 * time.Millisecond)

	prog.done("analysis complete", "openings", 8)

	out := buf.String()
	for _, want := range []string{"analysis complete", "openings=8", "elapsed=1.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Index(out, "openings=") > strings.Index(out, "elapsed=") {
		t.Errorf("elapsed should follow the caller's keyvals: %q", out)
	}
}

func TestProgressDoneRoundsElapsed(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.start = time.Now().Add(-(2*time.Second + 345678*time.Microsecond))

	prog.done("done")

	// Rounded to whole milliseconds, so no microsecond digits survive.
	m := regexp.MustCompile(`elapsed=(\S+)`).FindStringSubmatch(buf.String())
	if m == nil {
		t.Fatalf("no elapsed key in %q", buf.String())
	}
	d, err := time.ParseDuration(m[1])
	if err != nil {
		t.Fatalf("elapsed %q: %v", m[1], err)
	}
	if d%time.Millisecond != 0 {
		t.Errorf("elapsed = %v, want whole milliseconds", d)
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	tests := []struct {
		name string
		ctx  context.Context
		want *log.Logger
	}{
		{"attached", withLogger(context.Background(), custom), custom},
		{"missing", context.Background(), log.Default()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("loggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}
