package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/bookplot/pkg/cache"
	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
	pkgio "github.com/matzehuels/bookplot/pkg/io"
	"github.com/matzehuels/bookplot/pkg/render"
)

// writeGames writes a PGN with one opening per entry of counts.
func writeGames(t *testing.T, counts []dirichlet.Counts) string {
	t.Helper()
	var sb strings.Builder
	results := []string{"1-0", "1/2-1/2", "0-1"}
	for i, c := range counts {
		fen := fmt.Sprintf("rnbqkbnr/pppppppp/8/8/8/%d/PPPPPPPP/RNBQKBNR b KQkq - 0 1", i+1)
		for k, n := range c {
			for range n {
				fmt.Fprintf(&sb, "[FEN \"%s\"]\n[Result \"%s\"]\n\n1... e5 %s\n\n", fen, results[k], results[k])
			}
		}
	}
	path := filepath.Join(t.TempDir(), "games.pgn")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

var spreadCounts = []dirichlet.Counts{
	{9, 1, 0}, {1, 2, 7}, {4, 4, 2}, {0, 9, 1}, {6, 0, 4}, {2, 7, 1}, {5, 5, 0}, {1, 1, 8},
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"csv", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" SVG, csv,svg,,json")
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	if strings.Join(got, ",") != "svg,csv,json" {
		t.Errorf("ParseFormats = %v", got)
	}
	if _, err := ParseFormats("svg,gif"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: "games.pgn"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Side != DefaultSide || opts.Margin != DefaultMargin || opts.Ticks != DefaultTicks || opts.Divisions != DefaultDivisions {
		t.Errorf("plot defaults = %+v", opts)
	}
	if opts.MaxIterations != DefaultMaxIterations || opts.Tolerance != dirichlet.Epsilon {
		t.Errorf("fit defaults = %d, %g", opts.MaxIterations, opts.Tolerance)
	}
	if strings.Join(opts.Formats, ",") != "svg,csv" {
		t.Errorf("formats = %v", opts.Formats)
	}

	// Idempotent
	opts.Formats = []string{"bogus"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op: %v", err)
	}

	if err := (&Options{}).ValidateAndSetDefaults(); err == nil {
		t.Error("missing input should fail")
	}
	if err := (&Options{Input: "x", Ticks: -1}).ValidateAndSetDefaults(); err == nil {
		t.Error("negative ticks should fail")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if opts.ArtifactKeyOpts(KindScatter, "svg").Divisions != 0 {
		t.Error("scatter keys should not depend on the mesh resolution")
	}
	if opts.ArtifactKeyOpts(KindDensity, "svg").Divisions != DefaultDivisions {
		t.Error("density keys should include the mesh resolution")
	}
}

func TestExecute(t *testing.T) {
	input := writeGames(t, spreadCounts)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := Options{
		Input:            input,
		Formats:          []string{FormatSVG, FormatCSV, FormatJSON},
		AllowUnconverged: true,
	}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Book.Len() != len(spreadCounts) || res.Book.Games() != 80 {
		t.Errorf("book = %d openings, %d games", res.Book.Len(), res.Book.Games())
	}
	if err := res.Fit.Alpha.Validate(); err != nil {
		t.Errorf("alpha invalid: %v", err)
	}
	if res.CacheInfo.FitHit || res.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", res.CacheInfo)
	}

	for _, name := range []string{
		"scatter_plot.svg", "dirichlet_contour_plot.svg",
		pkgio.OpeningStatsFile, pkgio.DistributionFile, pkgio.AnalysisFile,
	} {
		if len(res.Artifacts[name]) == 0 {
			t.Errorf("missing artifact %s", name)
		}
	}
	if !strings.HasPrefix(string(res.Artifacts[pkgio.OpeningStatsFile]), "FEN,total,white_win,draw,black_win\n") {
		t.Errorf("opening stats header: %q", res.Artifacts[pkgio.OpeningStatsFile][:40])
	}

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.FitHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", again.CacheInfo)
	}
	if again.Fit.Alpha != res.Fit.Alpha {
		t.Errorf("cached alpha %v != %v", again.Fit.Alpha, res.Fit.Alpha)
	}
	if string(again.Artifacts["dirichlet_contour_plot.svg"]) != string(res.Artifacts["dirichlet_contour_plot.svg"]) {
		t.Error("cached density plot differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.FitHit || fresh.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", fresh.CacheInfo)
	}
}

func TestExecuteMissingInput(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Input: filepath.Join(t.TempDir(), "none.pgn")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Execute error = %v, want not-exist", err)
	}
}

func TestExecuteFitFailureKeepsCountArtifacts(t *testing.T) {
	// Underdispersed openings never converge within five iterations.
	input := writeGames(t, []dirichlet.Counts{{10, 5, 5}, {8, 6, 6}, {12, 4, 4}})
	r := NewRunner(nil, nil, nil)

	tests := []struct {
		name    string
		formats []string
		want    []string
	}{
		{"svg and csv", []string{FormatSVG, FormatCSV},
			[]string{"scatter_plot.svg", pkgio.OpeningStatsFile, pkgio.DistributionFile}},
		{"csv only", []string{FormatCSV},
			[]string{pkgio.OpeningStatsFile, pkgio.DistributionFile}},
		{"json only", []string{FormatJSON}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Execute(context.Background(), Options{Input: input, Formats: tt.formats, MaxIterations: 5})
			if !errors.Is(err, dirichlet.ErrNotConverged) {
				t.Fatalf("Execute error = %v, want ErrNotConverged", err)
			}
			if res == nil || res.Book == nil || res.Book.Games() != 60 {
				t.Fatalf("partial result = %+v", res)
			}
			if len(res.Artifacts) != len(tt.want) {
				t.Errorf("artifacts = %d, want %d", len(res.Artifacts), len(tt.want))
			}
			for _, name := range tt.want {
				if len(res.Artifacts[name]) == 0 {
					t.Errorf("missing artifact %s", name)
				}
			}
			if _, ok := res.Artifacts["dirichlet_contour_plot.svg"]; ok {
				t.Error("density plot rendered without a fit")
			}
		})
	}
}

func TestFitUnconvergedPolicy(t *testing.T) {
	samples := []dirichlet.Counts{{10, 5, 5}, {8, 6, 6}, {12, 4, 4}}
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	strict := Options{MaxIterations: 5}
	res, hit, err := r.FitWithCacheInfo(ctx, samples, strict)
	if !errors.Is(err, dirichlet.ErrNotConverged) {
		t.Fatalf("strict fit error = %v, want ErrNotConverged", err)
	}
	if hit || res.Iterations != 5 {
		t.Errorf("hit=%v iterations=%d", hit, res.Iterations)
	}

	// The unconverged estimate is cached and keeps failing strict callers.
	_, hit, err = r.FitWithCacheInfo(ctx, samples, strict)
	if !hit || !errors.Is(err, dirichlet.ErrNotConverged) {
		t.Errorf("cached strict fit: hit=%v err=%v", hit, err)
	}

	lenient := Options{MaxIterations: 5, AllowUnconverged: true}
	res2, hit, err := r.FitWithCacheInfo(ctx, samples, lenient)
	if err != nil {
		t.Errorf("lenient fit error: %v", err)
	}
	if !hit || res2.Alpha != res.Alpha {
		t.Errorf("lenient fit should reuse the cached estimate: hit=%v", hit)
	}
}

func TestFitInvalidSamples(t *testing.T) {
	_, err := Fit(nil, Options{})
	if !errors.Is(err, dirichlet.ErrNoSamples) {
		t.Errorf("Fit(nil) error = %v", err)
	}
}

func TestRenderTablesOnly(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	book, _, err := Aggregate(context.Background(), Options{Input: writeGames(t, spreadCounts)})
	if err != nil {
		t.Fatal(err)
	}
	fit, err := Fit(book.Samples(), Options{MaxIterations: 100, AllowUnconverged: true})
	if err != nil {
		t.Fatal(err)
	}
	a := analysisOf(book, fit)

	artifacts, hit, err := r.RenderWithCacheInfo(context.Background(), a, Options{Formats: []string{FormatCSV}})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("no plots were requested, so nothing came from cache")
	}
	if len(artifacts) != 2 {
		t.Errorf("artifacts = %d, want the two CSV tables", len(artifacts))
	}
}

func TestRenderPNG(t *testing.T) {
	if !render.Available() {
		t.Skip("rsvg-convert not installed")
	}
	book, _, err := Aggregate(context.Background(), Options{Input: writeGames(t, spreadCounts)})
	if err != nil {
		t.Fatal(err)
	}
	a := analysisOf(book, dirichlet.FitResult{Alpha: dirichlet.Alpha{2, 2, 2}})
	data, err := RenderPlot(context.Background(), a, KindDensity, FormatPNG, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "\x89PNG") {
		t.Error("not a PNG")
	}
}

func TestRenderSVGUnknownKind(t *testing.T) {
	if _, err := RenderSVG(analysisOf(nil, dirichlet.FitResult{Alpha: dirichlet.InitialAlpha}), "pie", Options{}); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestArtifactName(t *testing.T) {
	if got := ArtifactName(KindScatter, "png"); got != "scatter_plot.png" {
		t.Errorf("ArtifactName = %s", got)
	}
	if got := ArtifactName(KindDensity, "svg"); got != "dirichlet_contour_plot.svg" {
		t.Errorf("ArtifactName = %s", got)
	}
}

func analysisOf(book *opening.Book, fit dirichlet.FitResult) opening.Analysis {
	if book == nil {
		book = opening.NewBook()
	}
	return opening.NewAnalysis(book, fit, true)
}

func TestDensitySharesCacheWithAnalyses(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()
	alpha := dirichlet.Alpha{5, 3, 2}

	a := analysisOf(nil, dirichlet.FitResult{Alpha: alpha})
	first, hit, err := r.PlotWithCacheInfo(ctx, a, KindDensity, FormatSVG, Options{})
	if err != nil || hit {
		t.Fatalf("PlotWithCacheInfo: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.DensityWithCacheInfo(ctx, alpha, FormatSVG, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hit || string(first) != string(second) {
		t.Errorf("density by alpha should reuse the analysis plot: hit=%v", hit)
	}

	// A different resolution is a different plot.
	if _, hit, _ := r.DensityWithCacheInfo(ctx, alpha, FormatSVG, Options{Divisions: 10}); hit {
		t.Error("divisions should be part of the key")
	}
}

func TestPlotWithCacheInfoErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	a := analysisOf(nil, dirichlet.FitResult{Alpha: dirichlet.Alpha{1, 1, 1}})

	if _, _, err := r.PlotWithCacheInfo(ctx, a, KindDensity, "gif", Options{}); !errors.Is(err, render.ErrUnsupportedFormat) {
		t.Errorf("bad format error = %v", err)
	}
	if _, _, err := r.PlotWithCacheInfo(ctx, a, "pie", FormatSVG, Options{}); err == nil {
		t.Error("bad kind should fail")
	}
	if _, _, err := r.DensityWithCacheInfo(ctx, dirichlet.Alpha{0, 1, 1}, FormatSVG, Options{}); !errors.Is(err, dirichlet.ErrInvalidAlpha) {
		t.Errorf("bad alpha error = %v", err)
	}
}

func TestAggregateReader(t *testing.T) {
	pgn := "[FEN \"a\"]\n\n1. e4 1-0\n\n[FEN \"b\"]\n\n1. d4 *\n\n"
	r := NewRunner(nil, nil, nil)

	if _, _, err := r.AggregateReader(context.Background(), strings.NewReader(pgn), "upload", Options{}); err == nil {
		t.Error("strict aggregation should reject the unterminated game")
	}
	book, stats, err := r.AggregateReader(context.Background(), strings.NewReader(pgn), "upload", Options{Lenient: true})
	if err != nil {
		t.Fatal(err)
	}
	if book.Games() != 1 || stats.Skipped != 1 {
		t.Errorf("games=%d skipped=%d", book.Games(), stats.Skipped)
	}
}
