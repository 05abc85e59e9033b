package category

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrIdentityTags is returned when tags are attached to an identity.
	// Identities carry no properties.
	ErrIdentityTags = errors.New("identity morphisms cannot have tags")

	// ErrUnknownObject is returned by [Diagram.AddConclusion] when an endpoint
	// of the conclusion is not an object of the diagram, and by
	// [Diagram.SubdiagramFromObjects] for objects outside the diagram.
	ErrUnknownObject = errors.New("unknown object")
)

// DiagramOption configures a Diagram at construction.
type DiagramOption func(*Diagram)

// WithoutExpansion disables the composite closure of premises.
func WithoutExpansion() DiagramOption {
	return func(d *Diagram) { d.expand = false }
}

// WithoutIdentities disables the automatic identities of premise endpoints.
func WithoutIdentities() DiagramOption {
	return func(d *Diagram) { d.identities = false }
}

// Diagram maps morphisms to tag sets, split into premises and conclusions.
//
// The zero value is not usable - use [NewDiagram]. A Diagram is not safe for
// concurrent mutation; once populated it is read-only and may be shared
// freely between goroutines.
type Diagram struct {
	order       []string // morphism keys in insertion order
	morphisms   map[string]Morphism
	premises    map[string]Tags
	conclusions map[string]Tags
	objects     map[Object]struct{}
	expand      bool
	identities  bool
}

// NewDiagram creates an empty diagram. By default premises are closed under
// composition and their endpoints receive identities.
func NewDiagram(opts ...DiagramOption) *Diagram {
	d := &Diagram{
		morphisms:   make(map[string]Morphism),
		premises:    make(map[string]Tags),
		conclusions: make(map[string]Tags),
		objects:     make(map[Object]struct{}),
		expand:      true,
		identities:  true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDiagramFrom builds a diagram from untagged premises and conclusions.
func NewDiagramFrom(premises, conclusions []Morphism, opts ...DiagramOption) (*Diagram, error) {
	d := NewDiagram(opts...)
	for _, m := range premises {
		if err := d.AddPremise(m); err != nil {
			return nil, fmt.Errorf("premise %s: %w", m, err)
		}
	}
	for _, m := range conclusions {
		if err := d.AddConclusion(m); err != nil {
			return nil, fmt.Errorf("conclusion %s: %w", m, err)
		}
	}
	return d, nil
}

// AddPremise adds m with the given tags to the premises, together with its
// closure (see the package documentation). Re-adding an existing premise
// merges the tags. Returns ErrIdentityTags when tagging an identity.
func (d *Diagram) AddPremise(m Morphism, tags ...Tag) error {
	if m.IsZero() {
		return ErrZeroMorphism
	}
	ts := NewTags(tags...)
	if m.IsIdentity() && len(ts) > 0 {
		return ErrIdentityTags
	}
	d.addPremise(m, ts)
	return nil
}

func (d *Diagram) addPremise(m Morphism, tags Tags) {
	if old, ok := d.premises[m.key]; ok {
		d.premises[m.key] = old.Union(tags)
		return
	}
	d.insert(m)
	d.premises[m.key] = tags
	d.objects[m.dom] = struct{}{}
	d.objects[m.cod] = struct{}{}
	if m.IsIdentity() {
		return
	}
	if d.identities {
		d.addPremise(NewIdentity(m.dom), nil)
		d.addPremise(NewIdentity(m.cod), nil)
	}
	for _, c := range m.Components() {
		d.addPremise(c, nil)
	}
	if !d.expand {
		return
	}
	for _, k := range slices.Clone(d.order) {
		other := d.morphisms[k]
		otherTags, isPremise := d.premises[k]
		if !isPremise || other.IsIdentity() {
			continue
		}
		shared := tags.Intersect(otherTags)
		if other.cod == m.dom {
			if c, ok := composeSimple(other, m); ok {
				d.addPremise(c, shared)
			}
		}
		if m.cod == other.dom {
			if c, ok := composeSimple(m, other); ok {
				d.addPremise(c, shared)
			}
		}
	}
}

// composeSimple composes first then second if the result is a simple path.
func composeSimple(first, second Morphism) (Morphism, bool) {
	flat := append(first.Flatten(), second.Flatten()...)
	if len(flat) < 2 || !isSimplePath(flat) {
		return Morphism{}, false
	}
	return newComposite(flat), true
}

// AddConclusion adds m with the given tags to the conclusions. Both endpoints
// must already be objects of the diagram. Conclusions are not closed under
// composition.
func (d *Diagram) AddConclusion(m Morphism, tags ...Tag) error {
	if m.IsZero() {
		return ErrZeroMorphism
	}
	ts := NewTags(tags...)
	if m.IsIdentity() && len(ts) > 0 {
		return ErrIdentityTags
	}
	for _, o := range []Object{m.dom, m.cod} {
		if _, ok := d.objects[o]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownObject, o)
		}
	}
	d.insert(m)
	d.conclusions[m.key] = d.conclusions[m.key].Union(ts)
	return nil
}

func (d *Diagram) insert(m Morphism) {
	if _, ok := d.morphisms[m.key]; ok {
		return
	}
	d.morphisms[m.key] = m
	d.order = append(d.order, m.key)
}

// Objects returns the objects of the diagram sorted by name.
func (d *Diagram) Objects() []Object {
	out := make([]Object, 0, len(d.objects))
	for o := range d.objects {
		out = append(out, o)
	}
	SortObjects(out)
	return out
}

// HasObject reports whether o is an object of the diagram.
func (d *Diagram) HasObject(o Object) bool {
	_, ok := d.objects[o]
	return ok
}

// Morphisms returns every morphism, premises and conclusions, in insertion order.
func (d *Diagram) Morphisms() []Morphism {
	out := make([]Morphism, len(d.order))
	for i, k := range d.order {
		out[i] = d.morphisms[k]
	}
	return out
}

// NonIdentity returns the morphisms that are not identities, in insertion order.
func (d *Diagram) NonIdentity() []Morphism {
	var out []Morphism
	for _, k := range d.order {
		if m := d.morphisms[k]; !m.IsIdentity() {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the number of morphisms.
func (d *Diagram) Len() int { return len(d.order) }

// Premises returns the premises in insertion order.
func (d *Diagram) Premises() []Morphism { return d.filter(d.premises) }

// Conclusions returns the conclusions in insertion order.
func (d *Diagram) Conclusions() []Morphism { return d.filter(d.conclusions) }

func (d *Diagram) filter(set map[string]Tags) []Morphism {
	var out []Morphism
	for _, k := range d.order {
		if _, ok := set[k]; ok {
			out = append(out, d.morphisms[k])
		}
	}
	return out
}

// Has reports whether m belongs to the diagram.
func (d *Diagram) Has(m Morphism) bool {
	_, ok := d.morphisms[m.key]
	return ok
}

// Lookup returns the morphism stored under key.
func (d *Diagram) Lookup(key string) (Morphism, bool) {
	m, ok := d.morphisms[key]
	return m, ok
}

// IsPremise reports whether m is a premise.
func (d *Diagram) IsPremise(m Morphism) bool {
	_, ok := d.premises[m.key]
	return ok
}

// IsConclusion reports whether m is a conclusion.
func (d *Diagram) IsConclusion(m Morphism) bool {
	_, ok := d.conclusions[m.key]
	return ok
}

// PremiseTags returns the tags of m as a premise.
func (d *Diagram) PremiseTags(m Morphism) Tags { return d.premises[m.key] }

// ConclusionTags returns the tags of m as a conclusion.
func (d *Diagram) ConclusionTags(m Morphism) Tags { return d.conclusions[m.key] }

// Tags returns the tags of m as a premise or a conclusion.
func (d *Diagram) Tags(m Morphism) Tags {
	return d.premises[m.key].Union(d.conclusions[m.key])
}

// Hom returns the premises and conclusions going from a to b.
func (d *Diagram) Hom(a, b Object) (premises, conclusions []Morphism) {
	for _, k := range d.order {
		m := d.morphisms[k]
		if m.dom != a || m.cod != b {
			continue
		}
		if _, ok := d.premises[k]; ok {
			premises = append(premises, m)
		}
		if _, ok := d.conclusions[k]; ok {
			conclusions = append(conclusions, m)
		}
	}
	return premises, conclusions
}

// IsSubdiagram reports whether every premise and conclusion of o appears in
// d with identical tags.
func (d *Diagram) IsSubdiagram(o *Diagram) bool {
	for k, tags := range o.premises {
		mine, ok := d.premises[k]
		if !ok || !mine.Equal(tags) {
			return false
		}
	}
	for k, tags := range o.conclusions {
		mine, ok := d.conclusions[k]
		if !ok || !mine.Equal(tags) {
			return false
		}
	}
	return true
}

// SubdiagramFromObjects returns the diagram formed by the premises and
// conclusions whose endpoints are all in objs. Returns ErrUnknownObject if
// objs contains an object outside d.
func (d *Diagram) SubdiagramFromObjects(objs []Object) (*Diagram, error) {
	keep := make(map[Object]struct{}, len(objs))
	for _, o := range objs {
		if !d.HasObject(o) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownObject, o)
		}
		keep[o] = struct{}{}
	}
	sub := NewDiagram()
	sub.expand, sub.identities = d.expand, d.identities
	for _, k := range d.order {
		m := d.morphisms[k]
		_, okDom := keep[m.dom]
		_, okCod := keep[m.cod]
		if !okDom || !okCod {
			continue
		}
		sub.insert(m)
		if tags, ok := d.premises[k]; ok {
			sub.premises[k] = tags
			sub.objects[m.dom] = struct{}{}
			sub.objects[m.cod] = struct{}{}
		}
		if tags, ok := d.conclusions[k]; ok {
			sub.conclusions[k] = tags
		}
	}
	return sub, nil
}

// Equal reports whether both diagrams have the same premises and conclusions
// with the same tags.
func (d *Diagram) Equal(o *Diagram) bool {
	if len(d.premises) != len(o.premises) || len(d.conclusions) != len(o.conclusions) {
		return false
	}
	return d.IsSubdiagram(o)
}

// Fingerprint returns a canonical description of the diagram content. Equal
// diagrams have equal fingerprints regardless of insertion order.
func (d *Diagram) Fingerprint() string {
	lines := make([]string, 0, len(d.premises)+len(d.conclusions))
	for k, tags := range d.premises {
		lines = append(lines, "P "+k+" "+tags.String())
	}
	for k, tags := range d.conclusions {
		lines = append(lines, "C "+k+" "+tags.String())
	}
	slices.Sort(lines)
	return strings.Join(lines, "\n")
}

// String returns a short summary such as "Diagram(3 objects, 7 morphisms)".
func (d *Diagram) String() string {
	return fmt.Sprintf("Diagram(%d objects, %d morphisms)", len(d.objects), len(d.order))
}
