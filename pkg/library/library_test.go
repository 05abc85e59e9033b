package library

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/catdiagram/pkg/io"
)

func triangleDoc() *io.Document {
	return &io.Document{
		Category: "sets",
		Axioms: []io.DiagramSpec{{
			Name: "triangle",
			Premises: []io.Arrow{
				{Name: "f", From: "A", To: "B"},
				{Name: "g", From: "B", To: "C"},
			},
		}},
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"sets", false},
		{"abelian-groups_v2.1", false},
		{"", true},
		{"../etc", true},
		{".hidden", true},
		{"a/b", true},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(%q) error = %v, want %v", tt.name, err, ErrInvalidName)
		}
	}
}

func TestFileLibrary(t *testing.T) {
	ctx := context.Background()
	lib, err := NewFileLibrary(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileLibrary error: %v", err)
	}
	defer lib.Close(ctx)

	if _, err := lib.Get(ctx, "sets"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want %v", err, ErrNotFound)
	}

	e := NewEntry("sets", triangleDoc())
	if err := lib.Put(ctx, e); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if e.UpdatedAt.IsZero() {
		t.Error("Put should set UpdatedAt")
	}
	if err := lib.Put(ctx, NewEntry("groups", &io.Document{})); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := lib.Get(ctx, "sets")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Category != "sets" || len(got.Axioms) != 1 || got.Axioms[0].Name != "triangle" {
		t.Errorf("Get = %+v", got)
	}
	cat, err := got.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if cat.Len() != 1 || cat.Name() != "sets" {
		t.Errorf("Build() = %s with %d axioms", cat.Name(), cat.Len())
	}

	list, err := lib.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "groups" || list[1].Name != "sets" || list[1].Axioms != 1 {
		t.Errorf("List = %+v", list)
	}

	if err := lib.Delete(ctx, "sets"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := lib.Delete(ctx, "sets"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want %v", err, ErrNotFound)
	}
	if err := lib.Put(ctx, NewEntry("../x", triangleDoc())); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Put(bad name) error = %v, want %v", err, ErrInvalidName)
	}
}

func TestEntry_BuildError(t *testing.T) {
	e := &Entry{Name: "broken", Axioms: []io.DiagramSpec{{
		Premises: []io.Arrow{{Compose: []string{"missing"}}},
	}}}
	if _, err := e.Build(); !errors.Is(err, io.ErrUnknownArrow) {
		t.Errorf("Build() error = %v, want %v", err, io.ErrUnknownArrow)
	}
}

func TestEntry_BSON(t *testing.T) {
	raw, err := bson.Marshal(NewEntry("sets", triangleDoc()))
	if err != nil {
		t.Fatalf("bson.Marshal error: %v", err)
	}
	doc := bson.Raw(raw)

	if id, ok := doc.Lookup("_id").StringValueOK(); !ok || id != "sets" {
		t.Errorf("_id = %q, want %q", id, "sets")
	}
	premise := doc.Lookup("axioms", "0", "premises", "0", "name")
	if name, ok := premise.StringValueOK(); !ok || name != "f" {
		t.Errorf("axioms.0.premises.0.name = %v, want f", premise)
	}

	var back Entry
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("bson.Unmarshal error: %v", err)
	}
	if _, err := back.Build(); err != nil {
		t.Errorf("decoded entry does not build: %v", err)
	}
}

func TestAxioms(t *testing.T) {
	ctx := context.Background()
	lib, err := NewFileLibrary(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := lib.Put(ctx, NewEntry("sets", triangleDoc())); err != nil {
		t.Fatal(err)
	}

	axioms, err := Axioms(ctx, lib, "sets", "sets")
	if err != nil {
		t.Fatalf("Axioms error: %v", err)
	}
	if len(axioms) != 2 {
		t.Errorf("Axioms() returned %d diagrams, want 2", len(axioms))
	}
	if _, err := Axioms(ctx, lib, "groups"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Axioms(missing) error = %v, want %v", err, ErrNotFound)
	}
}

func TestOpen_File(t *testing.T) {
	dir := t.TempDir()
	lib, err := Open(context.Background(), Config{Dir: dir})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	fl, ok := lib.(*FileLibrary)
	if !ok || fl.Path() != dir {
		t.Errorf("Open() = %T, want *FileLibrary in %s", lib, dir)
	}
}
