// Package view persists named snapshots of concept maps.
//
// A [View] carries only the committed graph, never layout coordinates or
// the expansion set; loading one into a session resets both.
//
// Backends implement [Store]:
//
//   - [MemoryStore]: process-local, for tests and `conceptmap serve` without persistence
//   - [FileStore]: one JSON file per view, for the CLI
//   - [RedisStore]: shared storage keyed by view id
//   - [MongoStore]: a document collection
//
// All backends return [ErrNotFound] (wrapped) for unknown ids.
package view

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
)

// Sentinel errors for view operations.
var (
	// ErrNotFound is returned when a view does not exist.
	ErrNotFound = errors.New("view not found")
)

// View is a named, saved concept map.
type View struct {
	ID        string      `json:"id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	Prompt    string      `json:"prompt" bson:"prompt"`
	Graph     graph.Graph `json:"graph" bson:"graph"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// Summary is the listing form of a view.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	Nodes     int       `json:"nodes"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a view with a fresh id. The graph is validated and copied.
func New(name, prompt string, g graph.Graph) (*View, error) {
	name = strings.TrimSpace(name)
	if err := errs.ValidateViewName(name); err != nil {
		return nil, err
	}
	if err := graph.Validate(g); err != nil {
		return nil, err
	}
	return &View{
		ID:        uuid.NewString(),
		Name:      name,
		Prompt:    prompt,
		Graph:     g.Clone(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Summary returns the listing form of v.
func (v *View) Summary() Summary {
	return Summary{
		ID:        v.ID,
		Name:      v.Name,
		Prompt:    v.Prompt,
		Nodes:     len(v.Graph.Nodes),
		CreatedAt: v.CreatedAt,
	}
}

// Store is the interface for view storage backends.
type Store interface {
	// Save inserts or replaces a view.
	Save(ctx context.Context, v *View) error

	// Get retrieves a view by id. Unknown ids yield ErrNotFound.
	Get(ctx context.Context, id string) (*View, error)

	// List returns summaries, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a view. Unknown ids yield ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// IsNotFound reports whether err means the view does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// notFound wraps ErrNotFound with the id.
func notFound(id string) error {
	return &notFoundError{id: id}
}

type notFoundError struct{ id string }

func (e *notFoundError) Error() string { return "view " + e.id + ": not found" }
func (e *notFoundError) Unwrap() error { return ErrNotFound }

// validID rejects ids that could escape a key namespace or a directory.
func validID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return notFound(id)
	}
	return nil
}

// sortSummaries orders newest first, with id as tiebreak.
func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
