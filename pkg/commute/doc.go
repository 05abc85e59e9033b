// Package commute decides, soundly but incompletely, whether a diagram
// commutes.
//
// # Overview
//
// [Check] takes a target diagram and a list of axiom diagrams that the
// caller asserts to be commutative. It searches for embeddings of the axioms
// into the target and combines them into a [Cover]: a set of embeddings
// whose images contain every non-identity morphism of the target. A cover is
// a certificate. [Verify] re-checks one without repeating the search.
//
// When no cover is found the result is [Undetermined]. That is a routine
// outcome, not an error, and it does not mean the diagram fails to commute.
//
// # Embeddings
//
// An embedding maps axiom objects injectively to target objects and axiom
// non-identity morphisms injectively to target morphisms, preserving
// endpoints, tags (the image carries at least the tags of the source) and
// composite structure. Atomic axiom morphisms are matched one at a time,
// always taking the one with the most endpoints already mapped; composites
// then map to the composite of their parts' images. If the target lacks that
// composite the image is derived: it is recorded but covers nothing.
//
// [WithPaths] also lets an atomic axiom morphism match a path of target
// morphisms. Walking those paths is charged to the same budget as the
// search itself.
//
// # Cover Selection
//
// All embeddings are collected and a cover is picked greedily: each step
// takes the embedding that covers the most uncovered target morphisms,
// preferring smaller images and then axiom order. This is not a minimum
// cover.
//
// # Budget
//
// The search is exponential in the worst case. [WithMaxExpansions] bounds the
// number of search nodes shared by all axioms and [WithTimeout] bounds the
// wall-clock time; exceeding either, or cancelling the context, stops every
// worker and yields Undetermined. A partial cover is never returned.
//
// # Concurrency
//
// Axioms are searched in parallel (see [WithWorkers]) and merged in axiom
// order, so a check that stays within its budget always returns the same
// cover. Diagrams are only read; concurrent checks on shared diagrams are
// safe.
package commute
