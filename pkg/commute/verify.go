package commute

import (
	"errors"
	"fmt"

	"github.com/matzehuels/catdiagram/pkg/category"
)

// ErrInvalidCover is returned by [Verify] for a cover that does not certify
// commutativity.
var ErrInvalidCover = errors.New("invalid cover")

// Verify re-checks a cover independently of the search that produced it.
//
// Each embedding must be total on the axiom's objects and non-identity
// morphisms, injective on both, preserve incidence, tags and composite
// structure, and land inside target; the non-derived images together must
// contain every non-identity morphism of target. The returned error wraps
// ErrInvalidCover and lists every violation found.
func Verify(target *category.Diagram, axioms []*category.Diagram, cover *Cover) error {
	if cover == nil {
		return fmt.Errorf("%w: no cover", ErrInvalidCover)
	}
	var errs []error
	covered := make(map[string]bool)
	for i, e := range cover.Embeddings {
		for _, err := range verifyEmbedding(target, axioms, e) {
			errs = append(errs, fmt.Errorf("embedding %d: %w", i, err))
		}
		for _, m := range e.Image() {
			covered[m.Key()] = true
		}
	}
	for _, m := range target.NonIdentity() {
		if !covered[m.Key()] {
			errs = append(errs, fmt.Errorf("%s is not covered", m))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCover, errors.Join(errs...))
	}
	return nil
}

func verifyEmbedding(target *category.Diagram, axioms []*category.Diagram, e Embedding) []error {
	if e.Axiom < 0 || e.Axiom >= len(axioms) || axioms[e.Axiom] == nil {
		return []error{fmt.Errorf("axiom %d does not exist", e.Axiom)}
	}
	ax := axioms[e.Axiom]
	var errs []error

	imgObj := make(map[category.Object]category.Object, len(e.Objects))
	for a, t := range e.Objects {
		if !ax.HasObject(a) {
			errs = append(errs, fmt.Errorf("object %s is not in the axiom", a))
		}
		imgObj[a] = t
	}
	usedObj := make(map[category.Object]category.Object)
	for _, a := range ax.Objects() {
		t, ok := imgObj[a]
		if !ok {
			errs = append(errs, fmt.Errorf("object %s is not mapped", a))
			continue
		}
		if !target.HasObject(t) {
			errs = append(errs, fmt.Errorf("object %s maps to %s outside the target", a, t))
		}
		if prev, dup := usedObj[t]; dup {
			errs = append(errs, fmt.Errorf("objects %s and %s both map to %s", prev, a, t))
		}
		usedObj[t] = a
	}

	img := make(map[string]Mapping, len(e.Morphisms))
	for _, mp := range e.Morphisms {
		if !ax.Has(mp.From) || mp.From.IsIdentity() {
			errs = append(errs, fmt.Errorf("%s is not a non-identity axiom morphism", mp.From))
			continue
		}
		if _, dup := img[mp.From.Key()]; dup {
			errs = append(errs, fmt.Errorf("%s is mapped twice", mp.From))
			continue
		}
		img[mp.From.Key()] = mp
	}

	usedMor := make(map[string]category.Morphism)
	for _, m := range ax.NonIdentity() {
		mp, ok := img[m.Key()]
		if !ok {
			errs = append(errs, fmt.Errorf("%s is not mapped", m))
			continue
		}
		t := mp.To
		if t.IsZero() || t.IsIdentity() {
			errs = append(errs, fmt.Errorf("%s maps to an identity", m))
			continue
		}
		if other, dup := usedMor[t.Key()]; dup {
			errs = append(errs, fmt.Errorf("%s and %s both map to %s", other, m, t))
		}
		usedMor[t.Key()] = m
		if t.Domain() != imgObj[m.Domain()] || t.Codomain() != imgObj[m.Codomain()] {
			errs = append(errs, fmt.Errorf("%s maps to %s, breaking incidence", m, t))
		}
		if mp.Derived {
			for _, c := range t.Flatten() {
				if !target.Has(c) {
					errs = append(errs, fmt.Errorf("derived image of %s uses %s outside the target", m, c))
				}
			}
			if !m.IsComposite() && len(ax.Tags(m)) > 0 {
				errs = append(errs, fmt.Errorf("tagged %s maps to a derived path", m))
			}
		} else {
			if !target.Has(t) {
				errs = append(errs, fmt.Errorf("%s maps to %s outside the target", m, t))
			} else if !target.Tags(t).Contains(ax.Tags(m)) {
				errs = append(errs, fmt.Errorf("%s maps to %s, losing tags %s", m, t, ax.Tags(m)))
			}
		}
		if m.IsComposite() {
			parts := m.Components()
			imgs := make([]category.Morphism, len(parts))
			for i, p := range parts {
				imgs[i] = img[p.Key()].To
			}
			want, err := category.Compose(imgs...)
			if err != nil || !want.Equal(t) {
				errs = append(errs, fmt.Errorf("%s maps to %s, not the composite of its parts", m, t))
			}
		}
	}
	return errs
}
