package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
)

const fenA = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"

func TestWriteOpeningStats(t *testing.T) {
	var buf bytes.Buffer
	openings := []opening.Opening{
		{FEN: fenA, Result: opening.Result{WhiteWins: 2, Draws: 1}},
		{FEN: "8/8/8/8/8/8/8/8 w - - 0 1", Result: opening.Result{BlackWins: 4}},
	}
	if err := WriteOpeningStats(&buf, openings); err != nil {
		t.Fatalf("WriteOpeningStats() error: %v", err)
	}
	want := "FEN,total,white_win,draw,black_win\n" +
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR,3,0.6666666666666666,0.3333333333333333,0\n" +
		"8/8/8/8/8/8/8/8,4,0,0,1\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteOpeningStats() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteDistribution(t *testing.T) {
	var buf bytes.Buffer
	freqs := []opening.Frequency{
		{Result: opening.Result{WhiteWins: 1, Draws: 1}, Count: 12},
		{Result: opening.Result{WhiteWins: 1, Draws: 2, BlackWins: 1}, Count: 3},
	}
	if err := WriteDistribution(&buf, freqs); err != nil {
		t.Fatalf("WriteDistribution() error: %v", err)
	}
	want := "WDB,Count\n0.5-0.5-0,12\n0.25-0.5-0.25,3\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteDistribution() = %q, want %q", got, want)
	}
}

func TestOpeningStatsRoundTrip(t *testing.T) {
	openings := []opening.Opening{
		{FEN: "a b", Result: opening.Result{WhiteWins: 7, Draws: 2, BlackWins: 3}},
		{FEN: "c d", Result: opening.Result{WhiteWins: 1, Draws: 5, BlackWins: 0}},
	}
	path := filepath.Join(t.TempDir(), OpeningStatsFile)
	if err := ExportOpeningStats(path, openings); err != nil {
		t.Fatalf("ExportOpeningStats() error: %v", err)
	}
	samples, err := ReadSamplesFile(path)
	if err != nil {
		t.Fatalf("ReadSamplesFile() error: %v", err)
	}
	want := []dirichlet.Counts{{7, 2, 3}, {1, 5, 0}}
	if len(samples) != len(want) {
		t.Fatalf("ReadSamplesFile() = %v", samples)
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestAnalysisJSONRoundTrip(t *testing.T) {
	a := opening.Analysis{
		Alpha:      dirichlet.Alpha{5.1, 3.2, 2.05},
		Iterations: 42,
		Converged:  true,
		Games:      9,
		Openings:   []opening.Opening{{FEN: fenA, Result: opening.Result{WhiteWins: 4, Draws: 3, BlackWins: 2}}},
	}
	var buf bytes.Buffer
	if err := WriteAnalysisJSON(&buf, a); err != nil {
		t.Fatalf("WriteAnalysisJSON() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"white_wins": 4`) {
		t.Errorf("JSON missing flattened result: %s", buf.String())
	}
	got, err := ReadAnalysisJSON(&buf)
	if err != nil {
		t.Fatalf("ReadAnalysisJSON() error: %v", err)
	}
	if got.Alpha != a.Alpha || got.Iterations != 42 || !got.Converged || got.Openings[0] != a.Openings[0] {
		t.Errorf("ReadAnalysisJSON() = %+v, want %+v", got, a)
	}
}

func TestReadAnalysisJSONInvalidAlpha(t *testing.T) {
	_, err := ReadAnalysisJSON(strings.NewReader(`{"alpha":[1,0,2]}`))
	if err == nil {
		t.Error("ReadAnalysisJSON() accepted a zero alpha")
	}
}
