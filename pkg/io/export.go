package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/bookplot/pkg/core/opening"
)

// File names written by an analysis run.
const (
	OpeningStatsFile = "opening_stats.csv"
	DistributionFile = "wdb_counts.csv"
	AnalysisFile     = "analysis.json"
)

var (
	openingStatsHeader = []string{"FEN", "total", "white_win", "draw", "black_win"}
	distributionHeader = []string{"WDB", "Count"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteOpeningStats writes one CSV row per opening.
func WriteOpeningStats(w io.Writer, openings []opening.Opening) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(openingStatsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range openings {
		row := []string{
			opening.ShortFEN(o.FEN),
			strconv.Itoa(o.Total()),
			formatFloat(o.WhiteWinProportion()),
			formatFloat(o.DrawProportion()),
			formatFloat(o.BlackWinProportion()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", o.FEN, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDistribution writes the outcome-triple frequencies.
func WriteDistribution(w io.Writer, freqs []opening.Frequency) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(distributionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, f := range freqs {
		key := formatFloat(f.WhiteWinProportion()) + "-" +
			formatFloat(f.DrawProportion()) + "-" +
			formatFloat(f.BlackWinProportion())
		if err := cw.Write([]string{key, strconv.Itoa(f.Count)}); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAnalysisJSON encodes a as indented JSON.
func WriteAnalysisJSON(w io.Writer, a opening.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportOpeningStats writes [WriteOpeningStats] output to path.
func ExportOpeningStats(path string, openings []opening.Opening) error {
	return exportFile(path, func(w io.Writer) error { return WriteOpeningStats(w, openings) })
}

// ExportDistribution writes [WriteDistribution] output to path.
func ExportDistribution(path string, freqs []opening.Frequency) error {
	return exportFile(path, func(w io.Writer) error { return WriteDistribution(w, freqs) })
}

// ExportAnalysisJSON writes [WriteAnalysisJSON] output to path.
func ExportAnalysisJSON(path string, a opening.Analysis) error {
	return exportFile(path, func(w io.Writer) error { return WriteAnalysisJSON(w, a) })
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
