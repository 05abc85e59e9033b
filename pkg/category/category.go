package category

import "slices"

// Category is a named pool of diagrams asserted to be commutative. It is the
// axiom set consumed by the commutativity engine and is never validated: the
// caller vouches for every diagram it adds.
type Category struct {
	name   string
	axioms []*Diagram
	seen   map[string]bool
}

// NewCategory creates a category with the given commutative diagrams.
// Diagrams with identical content are kept once.
func NewCategory(name string, axioms ...*Diagram) *Category {
	c := &Category{name: name, seen: make(map[string]bool)}
	for _, d := range axioms {
		c.Add(d)
	}
	return c
}

// Name returns the category name.
func (c *Category) Name() string { return c.name }

// Add asserts d commutative. It reports false if an equal diagram is
// already present or d is nil.
func (c *Category) Add(d *Diagram) bool {
	if d == nil {
		return false
	}
	fp := d.Fingerprint()
	if c.seen[fp] {
		return false
	}
	c.seen[fp] = true
	c.axioms = append(c.axioms, d)
	return true
}

// Axioms returns the commutative diagrams in insertion order.
func (c *Category) Axioms() []*Diagram { return slices.Clone(c.axioms) }

// Len returns the number of axioms.
func (c *Category) Len() int { return len(c.axioms) }
