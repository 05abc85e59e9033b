package io

import (
	"errors"
	"fmt"

	"github.com/matzehuels/catdiagram/pkg/category"
)

var (
	// ErrUnknownArrow is returned when a compose list names an arrow that has
	// not been declared earlier in the same diagram.
	ErrUnknownArrow = errors.New("unknown arrow")

	// ErrInvalidArrow is returned when an arrow has neither a name with
	// endpoints nor a compose list.
	ErrInvalidArrow = errors.New("invalid arrow")

	// ErrDuplicateArrow is returned when one name is declared twice with
	// different endpoints.
	ErrDuplicateArrow = errors.New("duplicate arrow")

	// ErrNoDiagram is returned by [Document.Build] when the document has no
	// target diagram.
	ErrNoDiagram = errors.New("document has no diagram")
)

// Arrow declares one morphism. A named arrow has Name, From and To. A
// composite arrow lists previously declared arrow names in Compose, first
// applied first; it may carry a Name that later compose lists can refer to.
type Arrow struct {
	Name    string   `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	From    string   `json:"from,omitempty" toml:"from,omitempty" bson:"from,omitempty"`
	To      string   `json:"to,omitempty" toml:"to,omitempty" bson:"to,omitempty"`
	Compose []string `json:"compose,omitempty" toml:"compose,omitempty" bson:"compose,omitempty"`
	Tags    []string `json:"tags,omitempty" toml:"tags,omitempty" bson:"tags,omitempty"`
}

// DiagramSpec is the serialized form of a diagram.
type DiagramSpec struct {
	Name string `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`

	// Expand controls composite closure. Nil means true.
	Expand *bool `json:"expand,omitempty" toml:"expand,omitempty" bson:"expand,omitempty"`

	// Objects lists objects that no arrow touches.
	Objects []string `json:"objects,omitempty" toml:"objects,omitempty" bson:"objects,omitempty"`

	Premises    []Arrow `json:"premises,omitempty" toml:"premise,omitempty" bson:"premises,omitempty"`
	Conclusions []Arrow `json:"conclusions,omitempty" toml:"conclusion,omitempty" bson:"conclusions,omitempty"`

	// Groups are sets of objects the layout engine keeps in one cell.
	Groups [][]string `json:"groups,omitempty" toml:"groups,omitempty" bson:"groups,omitempty"`
}

// Document is a diagram file: an optional target diagram and the axioms it
// is checked against.
type Document struct {
	Category string        `json:"category,omitempty" toml:"category,omitempty" bson:"category,omitempty"`
	Diagram  *DiagramSpec  `json:"diagram,omitempty" toml:"diagram,omitempty" bson:"diagram,omitempty"`
	Axioms   []DiagramSpec `json:"axioms,omitempty" toml:"axiom,omitempty" bson:"axioms,omitempty"`
}

// Problem is a built document.
type Problem struct {
	Name   string
	Target *category.Diagram
	Axioms *category.Category
	Groups [][]category.Object
}

// Build constructs the target diagram, the axiom category and the layout
// groups. Errors name the diagram and arrow that caused them.
func (doc *Document) Build() (*Problem, error) {
	if doc.Diagram == nil {
		return nil, ErrNoDiagram
	}
	target, err := doc.Diagram.Build()
	if err != nil {
		return nil, fmt.Errorf("diagram %s: %w", nameOr(doc.Diagram.Name, "target"), err)
	}
	axioms, err := doc.BuildAxioms()
	if err != nil {
		return nil, err
	}

	name := doc.Category
	if name == "" {
		name = doc.Diagram.Name
	}
	return &Problem{
		Name:   name,
		Target: target,
		Axioms: axioms,
		Groups: doc.Diagram.groups(),
	}, nil
}

// BuildAxioms constructs the axiom category alone. Documents that only
// carry axioms, such as library files, have no target diagram.
func (doc *Document) BuildAxioms() (*category.Category, error) {
	cat := category.NewCategory(doc.Category)
	for i, spec := range doc.Axioms {
		d, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("axiom %s: %w", nameOr(spec.Name, fmt.Sprint(i)), err)
		}
		cat.Add(d)
	}
	return cat, nil
}

// Build constructs the diagram. Premises are added in order, then
// conclusions, so a compose list may only refer to arrows declared above it.
func (s *DiagramSpec) Build() (*category.Diagram, error) {
	var opts []category.DiagramOption
	if s.Expand != nil && !*s.Expand {
		opts = append(opts, category.WithoutExpansion())
	}
	d := category.NewDiagram(opts...)

	for _, name := range s.Objects {
		if name == "" {
			return nil, category.ErrEmptyName
		}
		if err := d.AddPremise(category.NewIdentity(category.NewObject(name))); err != nil {
			return nil, err
		}
	}

	named := make(map[string]category.Morphism)
	for i, a := range s.Premises {
		m, err := a.resolve(named)
		if err != nil {
			return nil, fmt.Errorf("premise %d: %w", i, err)
		}
		if err := d.AddPremise(m, toTags(a.Tags)...); err != nil {
			return nil, fmt.Errorf("premise %d: %w", i, err)
		}
	}
	for i, a := range s.Conclusions {
		m, err := a.resolve(named)
		if err != nil {
			return nil, fmt.Errorf("conclusion %d: %w", i, err)
		}
		if err := d.AddConclusion(m, toTags(a.Tags)...); err != nil {
			return nil, fmt.Errorf("conclusion %d: %w", i, err)
		}
	}
	return d, nil
}

// resolve builds the morphism of a and records its name in named.
func (a Arrow) resolve(named map[string]category.Morphism) (category.Morphism, error) {
	var (
		m   category.Morphism
		err error
	)
	switch {
	case len(a.Compose) > 0:
		parts := make([]category.Morphism, len(a.Compose))
		for i, n := range a.Compose {
			p, ok := named[n]
			if !ok {
				return category.Morphism{}, fmt.Errorf("%w: %q", ErrUnknownArrow, n)
			}
			parts[i] = p
		}
		if m, err = category.Compose(parts...); err != nil {
			return category.Morphism{}, err
		}
	case a.Name != "" && a.From != "" && a.To != "":
		if m, err = category.NewMorphism(a.Name, category.NewObject(a.From), category.NewObject(a.To)); err != nil {
			return category.Morphism{}, err
		}
	default:
		return category.Morphism{}, fmt.Errorf("%w: need name, from and to, or compose", ErrInvalidArrow)
	}

	if a.Name != "" {
		if prev, ok := named[a.Name]; ok && !prev.Equal(m) {
			return category.Morphism{}, fmt.Errorf("%w: %q", ErrDuplicateArrow, a.Name)
		}
		named[a.Name] = m
	}
	return m, nil
}

func (s *DiagramSpec) groups() [][]category.Object {
	if len(s.Groups) == 0 {
		return nil
	}
	out := make([][]category.Object, len(s.Groups))
	for i, g := range s.Groups {
		out[i] = category.Objects(g...)
	}
	return out
}

func toTags(names []string) []category.Tag {
	tags := make([]category.Tag, 0, len(names))
	for _, n := range names {
		if n != "" {
			tags = append(tags, category.Tag(n))
		}
	}
	return tags
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
