package io

import (
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
)

func TestReadSamples(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []dirichlet.Counts
	}{
		{"counts with header", "white_win,draw,black_win\n10,5,5\n8,6,6\n", []dirichlet.Counts{{10, 5, 5}, {8, 6, 6}}},
		{"counts without header", "10, 5, 5\n\n12,4,4\n", []dirichlet.Counts{{10, 5, 5}, {12, 4, 4}}},
		{"opening stats", "FEN,total,white_win,draw,black_win\nx,4,0.5,0.25,0.25\n", []dirichlet.Counts{{2, 1, 1}}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadSamples(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadSamples() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ReadSamples() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ReadSamples()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadSamplesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few columns", "1,2\n"},
		{"not a number", "w,d,b\n1,x,3\n"},
		{"negative", "1,-2,3\n"},
		{"inconsistent stats", "FEN,total,white_win,draw,black_win\nx,4,0.5,0.5,0.5\n"},
		{"bad quoting", "\"1,2,3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSamples(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidCSV) {
				t.Errorf("ReadSamples() error = %v, want ErrInvalidCSV", err)
			}
		})
	}
}
