// Package library persists named axiom collections.
//
// A library entry is the axiom part of a diagram document: a category name
// and a list of diagrams asserted commutative. The CLI and the HTTP API load
// entries by name and pass their axioms to the commutativity engine.
//
// Two backends are provided:
//   - [FileLibrary]: one JSON file per entry, for the CLI
//   - [MongoLibrary]: a MongoDB collection, for shared deployments
//
// # Usage
//
//	lib, err := library.NewFileLibrary("")  // ~/.config/catdiagram/library
//	err = lib.Put(ctx, library.NewEntry("sets", doc))
//	entry, err := lib.Get(ctx, "sets")
//	axioms, err := entry.Build()
package library

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/matzehuels/catdiagram/pkg/category"
	"github.com/matzehuels/catdiagram/pkg/io"
)

// Sentinel errors for library operations.
var (
	// ErrNotFound is returned when no entry has the requested name.
	ErrNotFound = errors.New("not found")

	// ErrInvalidName is returned for names that are empty or contain
	// characters other than letters, digits, '-', '_' and '.'.
	ErrInvalidName = errors.New("invalid library name")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName reports whether name can be used as an entry name.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Entry is one stored axiom collection.
type Entry struct {
	Name      string           `json:"name" bson:"_id"`
	Category  string           `json:"category,omitempty" bson:"category,omitempty"`
	Axioms    []io.DiagramSpec `json:"axioms" bson:"axioms"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}

// NewEntry takes the axioms of doc under name.
func NewEntry(name string, doc *io.Document) *Entry {
	return &Entry{Name: name, Category: doc.Category, Axioms: doc.Axioms}
}

// Build constructs the stored axioms.
func (e *Entry) Build() (*category.Category, error) {
	doc := io.Document{Category: e.Category, Axioms: e.Axioms}
	cat, err := doc.BuildAxioms()
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", e.Name, err)
	}
	return cat, nil
}

// Summary describes an entry without its axioms.
type Summary struct {
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Axioms    int       `json:"axioms"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Library stores entries by name.
type Library interface {
	// Put stores e, replacing any entry with the same name. UpdatedAt is
	// set by the library.
	Put(ctx context.Context, e *Entry) error

	// Get returns the entry named name, or ErrNotFound.
	Get(ctx context.Context, name string) (*Entry, error)

	// List returns all entries sorted by name.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes an entry. Deleting a missing entry returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Axioms loads the named entries and returns their axioms in order.
func Axioms(ctx context.Context, lib Library, names ...string) ([]*category.Diagram, error) {
	var out []*category.Diagram
	for _, name := range names {
		e, err := lib.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", name, err)
		}
		cat, err := e.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, cat.Axioms()...)
	}
	return out, nil
}

func summarize(e *Entry) Summary {
	return Summary{Name: e.Name, Category: e.Category, Axioms: len(e.Axioms), UpdatedAt: e.UpdatedAt}
}
