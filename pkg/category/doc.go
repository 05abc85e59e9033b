// Package category models objects, morphisms and diagrams of a category.
//
// # Overview
//
// The types in this package are the shared vocabulary of the layout and
// commutativity engines:
//
//   - [Object]: an opaque node identified by its name
//   - [Morphism]: an identity, named or composite arrow between objects
//   - [Diagram]: morphisms tagged with properties, split into premises and
//     conclusions
//   - [Category]: a pool of diagrams asserted to be commutative
//   - [Graph]: a read-only adjacency view of a diagram
//
// Objects and morphisms are immutable values. A diagram is populated once
// with [Diagram.AddPremise] and [Diagram.AddConclusion] and treated as
// read-only afterwards; both engines rely on that.
//
// # Composition
//
// [Compose] takes morphisms in application order (the first one is applied
// first) and rejects sequences whose adjacent morphisms do not chain:
//
//	f := category.MustMorphism("f", a, b)
//	g := category.MustMorphism("g", b, c)
//	gf, err := category.Compose(f, g) // g∘f : a → c
//
// Composites are flattened on construction, so a composite never contains
// another composite or an identity.
//
// # Diagram Closure
//
// Adding a premise also adds the identities of its endpoints and every
// composite it forms with existing premises along simple paths (no object
// is visited twice, except that a path may end where it started). The
// composite carries the tags its parts have in common. Use
// [WithoutExpansion] and [WithoutIdentities] to turn either behavior off.
//
// # Tags
//
// Morphism properties are opaque [Tag] values. Nothing in this module
// interprets a tag; engines only compare tag sets by inclusion.
package category
