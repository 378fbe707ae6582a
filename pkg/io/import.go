package io

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
)

// ErrInvalidCSV is returned when a samples file cannot be interpreted.
var ErrInvalidCSV = errors.New("invalid samples csv")

// ReadSamples reads Dirichlet samples from CSV.
//
// Rows are either three integer counts (white wins, draws, black wins), or
// the five columns written by [WriteOpeningStats]. A header row is optional
// for counts and required for opening stats, which are recognized by it.
// Blank lines are skipped; ReadSamples does not close r.
func ReadSamples(r io.Reader) ([]dirichlet.Counts, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	parse := parseCountsRow
	start := 0
	if isHeader(records[0]) {
		start = 1
		if strings.EqualFold(records[0][0], openingStatsHeader[0]) {
			parse = parseStatsRow
		}
	}

	samples := make([]dirichlet.Counts, 0, len(records)-start)
	for i, rec := range records[start:] {
		c, err := parse(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidCSV, start+i+1, err)
		}
		samples = append(samples, c)
	}
	return samples, nil
}

// ReadSamplesFile reads samples from the CSV file at path.
func ReadSamplesFile(path string) ([]dirichlet.Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSamples(f)
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	return err != nil
}

func parseCountsRow(rec []string) (dirichlet.Counts, error) {
	var c dirichlet.Counts
	if len(rec) != dirichlet.Categories {
		return c, fmt.Errorf("want %d columns, got %d", dirichlet.Categories, len(rec))
	}
	for k, field := range rec {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return c, err
		}
		if n < 0 {
			return c, fmt.Errorf("negative count %d", n)
		}
		c[k] = n
	}
	return c, nil
}

func parseStatsRow(rec []string) (dirichlet.Counts, error) {
	var c dirichlet.Counts
	if len(rec) != len(openingStatsHeader) {
		return c, fmt.Errorf("want %d columns, got %d", len(openingStatsHeader), len(rec))
	}
	total, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	if err != nil {
		return c, err
	}
	for k := range c {
		p, err := strconv.ParseFloat(strings.TrimSpace(rec[2+k]), 64)
		if err != nil {
			return c, err
		}
		c[k] = int(math.Round(p * float64(total)))
	}
	if c.Total() != total {
		return c, fmt.Errorf("proportions do not add up to %d games", total)
	}
	return c, nil
}

// ReadAnalysisJSON decodes an analysis written by [WriteAnalysisJSON].
func ReadAnalysisJSON(r io.Reader) (opening.Analysis, error) {
	var a opening.Analysis
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return opening.Analysis{}, fmt.Errorf("decode: %w", err)
	}
	if err := a.Alpha.Validate(); err != nil {
		return opening.Analysis{}, err
	}
	return a, nil
}

// ImportAnalysisJSON reads an analysis from the JSON file at path.
func ImportAnalysisJSON(path string) (opening.Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return opening.Analysis{}, err
	}
	defer f.Close()
	return ReadAnalysisJSON(f)
}
