package category

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrEmptyName is returned by [NewMorphism] when the morphism name or one
	// of its object labels is empty.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrZeroMorphism is returned when the zero Morphism value is used where a
	// constructed morphism is required.
	ErrZeroMorphism = errors.New("zero morphism")

	// ErrEmptyComposite is returned by [Compose] when called without arguments.
	ErrEmptyComposite = errors.New("composite needs at least one morphism")

	// ErrBrokenChain is returned by [Compose] when the codomain of one
	// morphism differs from the domain of the next one.
	ErrBrokenChain = errors.New("morphisms do not chain")
)

// Object is an opaque node of a diagram. Two objects are equal when their
// names are equal; the zero value is not a valid object.
type Object struct {
	name string
}

// NewObject returns the object labeled name.
func NewObject(name string) Object { return Object{name: name} }

// Objects is a shorthand for creating several objects at once.
func Objects(names ...string) []Object {
	out := make([]Object, len(names))
	for i, n := range names {
		out[i] = NewObject(n)
	}
	return out
}

// Name returns the object label.
func (o Object) Name() string { return o.name }

// String implements fmt.Stringer.
func (o Object) String() string { return o.name }

// IsZero reports whether o is the zero Object.
func (o Object) IsZero() bool { return o.name == "" }

// SortObjects sorts objects by name in place.
func SortObjects(objs []Object) {
	slices.SortFunc(objs, func(a, b Object) int { return strings.Compare(a.name, b.name) })
}

// Kind distinguishes the three morphism variants.
type Kind int

const (
	// KindIdentity is the identity morphism of an object.
	KindIdentity Kind = iota
	// KindNamed is an atomic morphism with a label.
	KindNamed
	// KindComposite is a chain of named morphisms.
	KindComposite
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindNamed:
		return "named"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Morphism is an immutable arrow between two objects.
//
// Named morphisms are equal when name, domain and codomain agree. Composites
// are equal when their flattened component sequences agree. Use [Morphism.Key]
// for map keys and [Morphism.Equal] for comparisons; the struct itself is not
// comparable.
type Morphism struct {
	kind       Kind
	name       string
	dom, cod   Object
	components []Morphism // named morphisms in application order (composites only)
	key        string
}

// NewIdentity returns the identity morphism of o.
func NewIdentity(o Object) Morphism {
	return Morphism{
		kind: KindIdentity,
		dom:  o,
		cod:  o,
		key:  "id(" + strconv.Quote(o.name) + ")",
	}
}

// NewMorphism returns the named morphism name: dom → cod.
// Returns ErrEmptyName if name or either object label is empty.
func NewMorphism(name string, dom, cod Object) (Morphism, error) {
	if name == "" || dom.IsZero() || cod.IsZero() {
		return Morphism{}, ErrEmptyName
	}
	return Morphism{
		kind: KindNamed,
		name: name,
		dom:  dom,
		cod:  cod,
		key:  strconv.Quote(name) + ":" + strconv.Quote(dom.name) + "->" + strconv.Quote(cod.name),
	}, nil
}

// MustMorphism is like [NewMorphism] but panics on error.
// It is intended for tests and static diagram definitions.
func MustMorphism(name string, dom, cod Object) Morphism {
	m, err := NewMorphism(name, dom, cod)
	if err != nil {
		panic(fmt.Sprintf("category: morphism %q: %v", name, err))
	}
	return m
}

// Compose chains ms in application order: Compose(f, g) is g∘f.
//
// Nested composites are flattened and identities dropped. If nothing remains
// the identity of the first domain is returned; if a single named morphism
// remains it is returned unchanged. Returns ErrBrokenChain when a codomain
// does not match the following domain.
func Compose(ms ...Morphism) (Morphism, error) {
	if len(ms) == 0 {
		return Morphism{}, ErrEmptyComposite
	}
	var flat []Morphism
	for i, m := range ms {
		if m.IsZero() {
			return Morphism{}, ErrZeroMorphism
		}
		if i > 0 && ms[i-1].cod != m.dom {
			return Morphism{}, fmt.Errorf("%w: %s ends at %s, %s starts at %s",
				ErrBrokenChain, ms[i-1], ms[i-1].cod, m, m.dom)
		}
		flat = append(flat, m.Flatten()...)
	}
	switch len(flat) {
	case 0:
		return NewIdentity(ms[0].dom), nil
	case 1:
		return flat[0], nil
	}
	return newComposite(flat), nil
}

// MustCompose is like [Compose] but panics on error.
func MustCompose(ms ...Morphism) Morphism {
	m, err := Compose(ms...)
	if err != nil {
		panic(fmt.Sprintf("category: compose: %v", err))
	}
	return m
}

// newComposite builds a composite from an already validated, flattened chain
// of at least two named morphisms.
func newComposite(flat []Morphism) Morphism {
	keys := make([]string, len(flat))
	for i, c := range flat {
		keys[i] = c.key
	}
	return Morphism{
		kind:       KindComposite,
		dom:        flat[0].dom,
		cod:        flat[len(flat)-1].cod,
		components: flat,
		key:        "[" + strings.Join(keys, ";") + "]",
	}
}

// Kind returns the morphism variant.
func (m Morphism) Kind() Kind { return m.kind }

// Domain returns the source object.
func (m Morphism) Domain() Object { return m.dom }

// Codomain returns the target object.
func (m Morphism) Codomain() Object { return m.cod }

// Name returns the label of a named morphism, or "" for other kinds.
func (m Morphism) Name() string { return m.name }

// Key returns the canonical identity of m, suitable as a map key.
func (m Morphism) Key() string { return m.key }

// IsZero reports whether m is the zero Morphism.
func (m Morphism) IsZero() bool { return m.key == "" }

// IsIdentity reports whether m is an identity.
func (m Morphism) IsIdentity() bool { return m.kind == KindIdentity && !m.IsZero() }

// IsNamed reports whether m is an atomic named morphism.
func (m Morphism) IsNamed() bool { return m.kind == KindNamed && !m.IsZero() }

// IsComposite reports whether m is a composite.
func (m Morphism) IsComposite() bool { return m.kind == KindComposite }

// IsLoop reports whether domain and codomain coincide.
func (m Morphism) IsLoop() bool { return m.dom == m.cod }

// Components returns a copy of the components of a composite in application
// order, or nil for identities and named morphisms.
func (m Morphism) Components() []Morphism {
	if m.kind != KindComposite {
		return nil
	}
	return slices.Clone(m.components)
}

// Flatten returns the named morphisms m is made of: none for an identity,
// m itself for a named morphism, the components for a composite.
func (m Morphism) Flatten() []Morphism {
	switch m.kind {
	case KindNamed:
		if m.IsZero() {
			return nil
		}
		return []Morphism{m}
	case KindComposite:
		return slices.Clone(m.components)
	default:
		return nil
	}
}

// Length returns the number of named morphisms in m.
func (m Morphism) Length() int {
	switch m.kind {
	case KindNamed:
		return 1
	case KindComposite:
		return len(m.components)
	default:
		return 0
	}
}

// Equal reports whether m and o denote the same morphism.
func (m Morphism) Equal(o Morphism) bool { return m.key == o.key }

// Label returns a human-readable name: the name of a named morphism,
// "id_X" for identities and "h∘g∘f" for composites.
func (m Morphism) Label() string {
	switch m.kind {
	case KindIdentity:
		return "id_" + m.dom.name
	case KindNamed:
		return m.name
	default:
		names := make([]string, len(m.components))
		for i, c := range m.components {
			names[len(m.components)-1-i] = c.name
		}
		return strings.Join(names, "∘")
	}
}

// String returns "label: dom → cod".
func (m Morphism) String() string {
	if m.IsZero() {
		return "<zero>"
	}
	return fmt.Sprintf("%s: %s → %s", m.Label(), m.dom.name, m.cod.name)
}

// SortMorphisms sorts morphisms by key in place.
func SortMorphisms(ms []Morphism) {
	slices.SortFunc(ms, func(a, b Morphism) int { return strings.Compare(a.key, b.key) })
}

// isSimplePath reports whether the chain visits no object twice, except that
// the last codomain may equal the first domain.
func isSimplePath(flat []Morphism) bool {
	if len(flat) == 0 {
		return true
	}
	seen := map[Object]bool{flat[0].dom: true}
	for i, c := range flat {
		if seen[c.cod] {
			if i == len(flat)-1 && c.cod == flat[0].dom {
				continue
			}
			return false
		}
		seen[c.cod] = true
	}
	return true
}
