package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
)

func sampleAnalysis(name string) *Analysis {
	a := New(name, opening.Analysis{
		Alpha:      dirichlet.Alpha{5, 3, 2},
		Iterations: 42,
		Converged:  true,
		Games:      6,
		Openings: []opening.Opening{
			{FEN: "8/8/8/8/8/8/8/K6k w - - 0 1", Result: opening.Result{WhiteWins: 2, Draws: 1}},
			{FEN: "8/8/8/8/8/8/8/k6K w - - 0 1", Result: opening.Result{Draws: 2, BlackWins: 1}},
		},
	})
	return a
}

func TestNew(t *testing.T) {
	a := sampleAnalysis("run")
	if err := ValidateID(a.ID); err != nil {
		t.Errorf("New() id %q: %v", a.ID, err)
	}
	if a.CreatedAt.IsZero() || a.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt = %v", a.CreatedAt)
	}
	if b := sampleAnalysis("run"); b.ID == a.ID {
		t.Error("ids should be unique")
	}
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"", "../etc/passwd", "abc", "123e4567-e89b-12d3-a456-42661417400"} {
		if err := ValidateID(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("ValidateID(%q) = %v, want ErrInvalidID", id, err)
		}
	}
	if err := ValidateID("123e4567-e89b-12d3-a456-426614174000"); err != nil {
		t.Errorf("ValidateID(valid) = %v", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "analyses"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	a := sampleAnalysis("first")
	if err := s.Put(ctx, a); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "first" || got.Alpha != a.Alpha || len(got.Openings) != 2 || !got.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("Get = %+v", got)
	}
	if got.Openings[0].Result != a.Openings[0].Result {
		t.Errorf("opening rows not preserved: %+v", got.Openings[0])
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	a := sampleAnalysis("x")
	a.ID = "../escape"
	if err := s.Put(ctx, a); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Put = %v, want ErrInvalidID", err)
	}
	if _, err := s.Get(ctx, "../escape"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Get = %v, want ErrInvalidID", err)
	}
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "new", "middle"} {
		a := sampleAnalysis(name)
		a.CreatedAt = base.Add(time.Duration([]int{0, 2, 1}[i]) * time.Hour)
		if err := s.Put(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	// Stray files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List = %d entries, want 3", len(list))
	}
	for i, want := range []string{"new", "middle", "old"} {
		if list[i].Name != want {
			t.Errorf("List[%d] = %s, want %s", i, list[i].Name, want)
		}
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].Name != "new" {
		t.Errorf("List(2) = %+v", limited)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("BOOKPLOT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BOOKPLOT_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, uri, "bookplot_test")
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer s.Close()

	a := sampleAnalysis("mongo")
	if err := s.Put(ctx, a); err != nil {
		t.Fatalf("Put: %v", err)
	}
	defer s.Delete(ctx, a.ID)

	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Alpha != a.Alpha || len(got.Openings) != 2 || got.Openings[1].Result != a.Openings[1].Result {
		t.Errorf("Get = %+v", got)
	}

	list, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, sum := range list {
		found = found || sum.ID == a.ID
	}
	if !found {
		t.Error("List did not include the stored analysis")
	}
}
