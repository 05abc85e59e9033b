package io

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/catdiagram/pkg/category"
	"github.com/matzehuels/catdiagram/pkg/commute"
	"github.com/matzehuels/catdiagram/pkg/layout"
)

const squareTOML = `
category = "sets"

[diagram]
name = "square"
groups = [["A", "C"]]

[[diagram.premise]]
name = "f"
from = "A"
to = "B"
tags = ["mono"]

[[diagram.premise]]
name = "g"
from = "B"
to = "C"

[[diagram.conclusion]]
name = "h"
from = "A"
to = "C"

[[axiom]]
name = "triangle"

[[axiom.premise]]
name = "p"
from = "X"
to = "Y"

[[axiom.premise]]
name = "q"
from = "Y"
to = "Z"
`

const squareJSON = `{
  "category": "sets",
  "diagram": {
    "name": "square",
    "groups": [["A", "C"]],
    "premises": [
      {"name": "f", "from": "A", "to": "B", "tags": ["mono"]},
      {"name": "g", "from": "B", "to": "C"}
    ],
    "conclusions": [{"name": "h", "from": "A", "to": "C"}]
  },
  "axioms": [
    {"name": "triangle", "premises": [
      {"name": "p", "from": "X", "to": "Y"},
      {"name": "q", "from": "Y", "to": "Z"}
    ]}
  ]
}`

var (
	objA, objB, objC = category.NewObject("A"), category.NewObject("B"), category.NewObject("C")
	arrF             = category.MustMorphism("f", objA, objB)
	arrG             = category.MustMorphism("g", objB, objC)
	arrH             = category.MustMorphism("h", objA, objC)
)

func checkSquare(t *testing.T, p *Problem) {
	t.Helper()
	if p.Name != "sets" {
		t.Errorf("Name = %q, want %q", p.Name, "sets")
	}
	d := p.Target
	if got := len(d.Objects()); got != 3 {
		t.Errorf("objects = %d, want 3", got)
	}
	if !d.IsPremise(category.MustCompose(arrF, arrG)) {
		t.Error("composite g∘f missing from premises")
	}
	if !d.IsConclusion(arrH) {
		t.Error("h is not a conclusion")
	}
	if got := d.Tags(arrF).String(); got != "{mono}" {
		t.Errorf("Tags(f) = %s, want {mono}", got)
	}
	if p.Axioms.Len() != 1 {
		t.Errorf("axioms = %d, want 1", p.Axioms.Len())
	}
	if len(p.Groups) != 1 || len(p.Groups[0]) != 2 || p.Groups[0][0] != objA || p.Groups[0][1] != objC {
		t.Errorf("Groups = %v, want [[A C]]", p.Groups)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"toml", squareTOML, FormatTOML},
		{"json", squareJSON, FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			p, err := doc.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			checkSquare(t, p)
		})
	}
}

func TestDecode_UnknownKeys(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"toml", "[diagram]\nname = \"x\"\n[[diagram.premsie]]\nname = \"f\"\n", FormatTOML},
		{"json", `{"diagram": {"premsie": []}}`, FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.input), tt.format); err == nil {
				t.Error("Decode() expected error for misspelt key")
			}
		})
	}

	if _, err := Decode(strings.NewReader("{}"), Format("yaml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Decode() error = %v, want %v", err, ErrUnknownFormat)
	}
}

func TestDiagramSpec_Build(t *testing.T) {
	no := false
	fg := []Arrow{{Name: "f", From: "A", To: "B"}, {Name: "g", From: "B", To: "C"}}

	t.Run("compose", func(t *testing.T) {
		spec := DiagramSpec{
			Expand:      &no,
			Premises:    fg,
			Conclusions: []Arrow{{Compose: []string{"f", "g"}, Tags: []string{"unique"}}},
		}
		d, err := spec.Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		gf := category.MustCompose(arrF, arrG)
		if d.IsPremise(gf) {
			t.Error("expand = false still closed premises")
		}
		if !d.IsConclusion(gf) {
			t.Error("g∘f is not a conclusion")
		}
	})

	t.Run("named composite", func(t *testing.T) {
		spec := DiagramSpec{Premises: append(fg,
			Arrow{Name: "k", From: "C", To: "D"},
			Arrow{Name: "gf", Compose: []string{"f", "g"}},
		), Conclusions: []Arrow{{Compose: []string{"gf", "k"}}}}
		d, err := spec.Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		k := category.MustMorphism("k", objC, category.NewObject("D"))
		if !d.IsConclusion(category.MustCompose(arrF, arrG, k)) {
			t.Error("k∘g∘f is not a conclusion")
		}
	})

	t.Run("objects", func(t *testing.T) {
		d, err := (&DiagramSpec{Objects: []string{"X"}}).Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !d.HasObject(category.NewObject("X")) {
			t.Error("isolated object X missing")
		}
	})
}

func TestDiagramSpec_BuildErrors(t *testing.T) {
	tests := []struct {
		name string
		spec DiagramSpec
		want error
	}{
		{
			name: "unknown arrow",
			spec: DiagramSpec{Premises: []Arrow{{Compose: []string{"f"}}}},
			want: ErrUnknownArrow,
		},
		{
			name: "missing endpoint",
			spec: DiagramSpec{Premises: []Arrow{{Name: "f", From: "A"}}},
			want: ErrInvalidArrow,
		},
		{
			name: "duplicate",
			spec: DiagramSpec{Premises: []Arrow{{Name: "f", From: "A", To: "B"}, {Name: "f", From: "B", To: "C"}}},
			want: ErrDuplicateArrow,
		},
		{
			name: "broken chain",
			spec: DiagramSpec{Premises: []Arrow{
				{Name: "f", From: "A", To: "B"},
				{Name: "g", From: "B", To: "C"},
				{Compose: []string{"g", "f"}},
			}},
			want: category.ErrBrokenChain,
		},
		{
			name: "conclusion on unknown object",
			spec: DiagramSpec{
				Premises:    []Arrow{{Name: "f", From: "A", To: "B"}},
				Conclusions: []Arrow{{Name: "h", From: "A", To: "Z"}},
			},
			want: category.ErrUnknownObject,
		},
		{
			name: "empty object",
			spec: DiagramSpec{Objects: []string{""}},
			want: category.ErrEmptyName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Build()
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := (&Document{}).Build(); !errors.Is(err, ErrNoDiagram) {
		t.Errorf("Document.Build() error = %v, want %v", err, ErrNoDiagram)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"square.toml", FormatTOML, false},
		{"dir/square.JSON", FormatJSON, false},
		{"square.yaml", "", true},
		{"square", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestEncode_TOML(t *testing.T) {
	doc, err := Decode(strings.NewReader(squareJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc, FormatTOML); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	again, err := Decode(&buf, FormatTOML)
	if err != nil {
		t.Fatalf("Decode() of encoded TOML error = %v\n%s", err, buf.String())
	}
	p, err := again.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	checkSquare(t, p)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "square.toml")
	if err := os.WriteFile(path, []byte(squareTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if doc.Diagram == nil || doc.Diagram.Name != "square" {
		t.Errorf("ReadFile() diagram = %+v", doc.Diagram)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("ReadFile() expected error for missing file")
	}
}

func TestGridExport(t *testing.T) {
	doc, err := Decode(strings.NewReader(squareTOML), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	p, err := doc.Build()
	if err != nil {
		t.Fatal(err)
	}
	g, err := layout.Layout(p.Target, layout.WithGroups(p.Groups...))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "grid.json")
	if err := ExportFile(path, func(w io.Writer) error { return WriteGrid(w, g) }); err != nil {
		t.Fatalf("ExportFile() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	back, err := ReadGrid(f)
	if err != nil {
		t.Fatalf("ReadGrid() error = %v", err)
	}
	if back.String() != g.String() {
		t.Errorf("ReadGrid() = %q, want %q", back.String(), g.String())
	}
}

func TestResultExport(t *testing.T) {
	doc, err := Decode(strings.NewReader(squareTOML), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	p, err := doc.Build()
	if err != nil {
		t.Fatal(err)
	}
	res := commute.Check(context.Background(), p.Target, p.Axioms.Axioms())

	var buf bytes.Buffer
	if err := WriteResult(&buf, res); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}
	back, err := ReadResult(&buf)
	if err != nil {
		t.Fatalf("ReadResult() error = %v", err)
	}
	if back.Status != res.Status || back.Reason != res.Reason {
		t.Errorf("ReadResult() = %v, want %v", back, res)
	}
}
