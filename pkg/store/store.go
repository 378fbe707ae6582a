// Package store persists fitted analyses for the API server.
//
// Two backends implement [Store]:
//   - [FileStore]: one JSON file per analysis, for single-host deployments
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// # Usage
//
//	st, err := store.NewFileStore("")
//	a := store.New("engine-v3 vs v2", analysis)
//	if err := st.Put(ctx, a); err != nil {
//	    return err
//	}
//	got, err := st.Get(ctx, a.ID)
//	if errors.Is(err, store.ErrNotFound) {
//	    // unknown id
//	}
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when an analysis does not exist.
	ErrNotFound = errors.New("analysis not found")

	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid analysis id")
)

// DefaultListLimit caps List when the caller passes no limit.
const DefaultListLimit = 100

// Analysis is a stored fit with its identity.
type Analysis struct {
	ID               string    `json:"id" bson:"_id"`
	Name             string    `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	opening.Analysis `bson:",inline"`
}

// Summary is the listing form of an analysis, without per-opening rows.
type Summary struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Alpha     dirichlet.Alpha `json:"alpha" bson:"alpha"`
	Converged bool            `json:"converged" bson:"converged"`
	Games     int             `json:"games" bson:"games"`
}

// New wraps a with a fresh random id and the current time.
func New(name string, a opening.Analysis) *Analysis {
	return &Analysis{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Analysis:  a,
	}
}

// Summary drops the opening rows.
func (a *Analysis) Summary() Summary {
	return Summary{
		ID:        a.ID,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
		Alpha:     a.Alpha,
		Converged: a.Converged,
		Games:     a.Games,
	}
}

// ValidateID checks that id is a UUID, which also keeps it safe as a file name.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Store persists analyses.
type Store interface {
	// Put inserts or replaces a.
	Put(ctx context.Context, a *Analysis) error

	// Get returns the analysis with id or ErrNotFound.
	Get(ctx context.Context, id string) (*Analysis, error)

	// List returns up to limit summaries, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes id; deleting a missing analysis returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
