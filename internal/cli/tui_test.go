package cli

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
)

func testAnalysis() opening.Analysis {
	return opening.Analysis{
		Alpha: dirichlet.Alpha{4, 4, 2},
		Openings: []opening.Opening{
			{FEN: "a w - - 0 1", Result: opening.Result{WhiteWins: 1, Draws: 1, BlackWins: 1}},
			{FEN: "b w - - 0 1", Result: opening.Result{WhiteWins: 8, Draws: 1, BlackWins: 1}},
			{FEN: "c w - - 0 1", Result: opening.Result{Draws: 4, BlackWins: 1}},
		},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m BookModel, msgs ...tea.Msg) BookModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(BookModel)
	}
	return m
}

func fens(m BookModel) string {
	var out []string
	for _, r := range m.rows {
		out = append(out, opening.ShortFEN(r.FEN))
	}
	return strings.Join(out, "")
}

func TestBookModelSort(t *testing.T) {
	m := NewBookModel("book", testAnalysis(), true)
	if got := fens(m); got != "bca" {
		t.Errorf("by games = %q, want bca", got)
	}

	m = update(m, key("s")) // white %
	if got := fens(m); got != "bac" {
		t.Errorf("by white = %q, want bac", got)
	}

	m = update(m, key("r"))
	if got := fens(m); got != "cab" {
		t.Errorf("reversed = %q, want cab", got)
	}
}

func TestBookModelSkipsSurpriseWithoutAlpha(t *testing.T) {
	m := NewBookModel("book", testAnalysis(), false)
	for range int(sortSurprise) {
		m = update(m, key("s"))
	}
	if m.sortBy != sortFEN {
		t.Errorf("sortBy = %v, want fen", m.sortBy)
	}
	for _, r := range m.rows {
		if !math.IsNaN(r.surprise) {
			t.Errorf("surprise computed without alpha: %v", r.surprise)
		}
	}
}

func TestBookModelNavigation(t *testing.T) {
	m := NewBookModel("book", testAnalysis(), true)
	m.Height = 2

	m = update(m, key("j"), key("j"), key("j"))
	if m.Cursor != 2 || m.Offset != 1 {
		t.Errorf("cursor=%d offset=%d, want 2 1", m.Cursor, m.Offset)
	}
	m = update(m, key("g"))
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("after home: cursor=%d offset=%d", m.Cursor, m.Offset)
	}

	sel, ok := m.Selected()
	if !ok || sel.FEN != "b w - - 0 1" {
		t.Errorf("Selected() = %v, %v", sel, ok)
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestBookModelView(t *testing.T) {
	view := NewBookModel("selfplay.pgn", testAnalysis(), true).View()
	for _, want := range []string{"selfplay.pgn", "(4.000, 4.000, 2.000)", "Surprise", "80.0%", "+301", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
