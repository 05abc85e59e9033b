// Package pkg provides the core libraries for catdiagram.
//
// # Overview
//
// catdiagram works on diagrams of a category: finite sets of objects and
// named morphisms, split into premises (the arrows a diagram is built from)
// and conclusions (the arrows it claims to exist). The pkg directory holds
// two engines and the plumbing around them:
//
//  1. [category] - Objects, morphisms, composites and diagrams
//  2. [layout] - The layout engine (diagram → grid)
//  3. [commute] - The commutativity engine (diagram + axioms → cover)
//  4. [render] - Xy-pic and Graphviz output for laid-out diagrams
//  5. [pipeline] - Orchestration (load → layout/check → render) with caching
//
// # Architecture
//
// The typical data flow:
//
//	TOML/JSON document
//	         ↓
//	    [io] package (decode, build diagrams)
//	         ↓
//	    [layout] package            [commute] package
//	    (place objects on a grid)   (cover with axiom embeddings)
//	         ↓                           ↓
//	    [render] package            commutative / undetermined
//	         ↓
//	    Xy-pic/DOT/SVG/PDF/PNG/JSON output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/catdiagram/pkg/commute"
//	    "github.com/matzehuels/catdiagram/pkg/io"
//	    "github.com/matzehuels/catdiagram/pkg/layout"
//	    "github.com/matzehuels/catdiagram/pkg/render/xypic"
//	)
//
//	doc, _ := io.ReadFile("square.toml")
//	p, _ := doc.Build()
//
//	// Lay out and render
//	grid, _ := layout.Layout(p.Target)
//	tex, _ := xypic.Draw(p.Target, grid)
//
//	// Check commutativity against the document's axioms
//	res := commute.Check(context.Background(), p.Target, p.Axioms.Axioms())
//
// # Supporting Packages
//
// [cache] - Result cache with file, Redis and no-op backends.
//
// [library] - Named axiom collections stored as files or in MongoDB.
//
// [metrics] and [observability] - Prometheus collectors behind engine hooks.
//
// [errors] - Error codes and input validation shared by the CLI and the
// HTTP API.
//
// [buildinfo] - Version information injected at build time.
//
// [category]: github.com/matzehuels/catdiagram/pkg/category
// [layout]: github.com/matzehuels/catdiagram/pkg/layout
// [commute]: github.com/matzehuels/catdiagram/pkg/commute
// [render]: github.com/matzehuels/catdiagram/pkg/render
// [pipeline]: github.com/matzehuels/catdiagram/pkg/pipeline
// [io]: github.com/matzehuels/catdiagram/pkg/io
// [cache]: github.com/matzehuels/catdiagram/pkg/cache
// [library]: github.com/matzehuels/catdiagram/pkg/library
// [metrics]: github.com/matzehuels/catdiagram/pkg/metrics
// [observability]: github.com/matzehuels/catdiagram/pkg/observability
// [errors]: github.com/matzehuels/catdiagram/pkg/errors
// [buildinfo]: github.com/matzehuels/catdiagram/pkg/buildinfo
package pkg
