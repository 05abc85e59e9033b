// Package pipeline provides the layout, check and render pipeline for
// catdiagram.
//
// This package joins the engines, the renderers and the result cache so the
// CLI and the HTTP API behave the same way. By centralizing this logic, both
// entry points share one set of defaults and one cache key scheme.
//
// # Architecture
//
// The pipeline has three independent stages:
//
//  1. Layout: place the objects of a diagram on a grid
//  2. Check: search for a cover of a target diagram by axiom embeddings
//  3. Render: produce Xy-pic, DOT, SVG, PDF, PNG or JSON from a grid
//
// # Usage
//
// Create a Runner and run the stages:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Mode: "triangle", Formats: []string{"xypic"}}
//
//	grid, hit, err := runner.Layout(ctx, diagram, opts)
//	artifacts, err := runner.Render(ctx, diagram, grid, opts)
//	fmt.Print(string(artifacts["xypic"]))
//
//	res, hit, err := runner.Check(ctx, target, axioms, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catdiagram/pkg/cache"
	"github.com/matzehuels/catdiagram/pkg/category"
	"github.com/matzehuels/catdiagram/pkg/commute"
	errs "github.com/matzehuels/catdiagram/pkg/errors"
	"github.com/matzehuels/catdiagram/pkg/layout"
	"github.com/matzehuels/catdiagram/pkg/render/nodelink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMode is the default layout algorithm.
	DefaultMode = "triangle"

	// DefaultMaxExpansions bounds the search nodes expanded by one check.
	DefaultMaxExpansions = commute.DefaultMaxExpansions

	// DefaultTimeout bounds the wall-clock time of one check.
	DefaultTimeout = commute.DefaultTimeout

	// DefaultSpacing is the distance between grid cells in DOT output.
	DefaultSpacing = nodelink.DefaultSpacing

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// MaxPaths is the longest target path an axiom arrow may map to.
	MaxPaths = 8

	// MaxWorkers caps the number of axioms searched concurrently.
	MaxWorkers = 256
)

// Format constants for output formats.
const (
	FormatXypic = "xypic"
	FormatDOT   = "dot"
	FormatSVG   = "svg"
	FormatPDF   = "pdf"
	FormatPNG   = "png"
	FormatJSON  = "json"
)

// DefaultFormats is the output of a render call that names no format.
var DefaultFormats = []string{FormatXypic}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline stages.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Mode      string     `json:"mode,omitempty"`
	Vertical  bool       `json:"vertical,omitempty"` // linear mode only
	Transpose bool       `json:"transpose,omitempty"`
	Groups    [][]string `json:"groups,omitempty"`

	// Check options
	MaxExpansions int64         `json:"max_expansions,omitempty"`
	Timeout       time.Duration `json:"-"`
	MaxCandidates int           `json:"max_candidates,omitempty"`
	Paths         int           `json:"paths,omitempty"`
	Workers       int           `json:"workers,omitempty"`
	Refresh       bool          `json:"refresh,omitempty"` // skip cache reads

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Spacing    float64  `json:"spacing,omitempty"`
	Identities bool     `json:"identities,omitempty"`
	Composites bool     `json:"composites,omitempty"`
	Scale      float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if _, err := layout.ParseMode(o.Mode); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidMode, err, "invalid layout mode %q", o.Mode)
	}
	for i, g := range o.Groups {
		if len(g) == 0 {
			return errs.New(errs.ErrCodeInvalidGroups, "group %d is empty", i)
		}
		for _, name := range g {
			if err := errs.ValidateName("object", name); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetCheckDefaults sets default values for the commutativity check.
// A zero Timeout selects DefaultTimeout; a negative one disables it.
func (o *Options) SetCheckDefaults() {
	if o.MaxExpansions == 0 {
		o.MaxExpansions = DefaultMaxExpansions
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	o.setLogger()
}

// ValidateForCheck validates and sets defaults for the commutativity check.
func (o *Options) ValidateForCheck() error {
	o.SetCheckDefaults()
	if err := errs.ValidateLimit("max_expansions", o.MaxExpansions, 1, 1<<40); err != nil {
		return err
	}
	if err := errs.ValidateLimit("max_candidates", int64(o.MaxCandidates), 0, 1<<20); err != nil {
		return err
	}
	if o.Paths != 0 {
		if err := errs.ValidateLimit("paths", int64(o.Paths), 2, MaxPaths); err != nil {
			return err
		}
	}
	return errs.ValidateLimit("workers", int64(o.Workers), 0, MaxWorkers)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	if o.Spacing == 0 {
		o.Spacing = DefaultSpacing
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := errs.ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Spacing < 0 || o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "spacing and scale must be positive")
	}
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions converts the layout fields into engine options.
func (o *Options) LayoutOptions() []layout.Option {
	mode, _ := layout.ParseMode(o.Mode)
	opts := []layout.Option{layout.WithMode(mode), layout.WithLogger(o.Logger)}
	if o.Vertical {
		opts = append(opts, layout.WithOrientation(layout.Vertical))
	}
	if o.Transpose {
		opts = append(opts, layout.WithTranspose())
	}
	for _, g := range o.Groups {
		opts = append(opts, layout.WithGroups(category.Objects(g...)))
	}
	return opts
}

// CheckOptions converts the check fields into engine options.
func (o *Options) CheckOptions() []commute.Option {
	timeout := o.Timeout
	if timeout < 0 {
		timeout = 0
	}
	opts := []commute.Option{
		commute.WithMaxExpansions(o.MaxExpansions),
		commute.WithTimeout(timeout),
		commute.WithMaxCandidates(o.MaxCandidates),
		commute.WithLogger(o.Logger),
	}
	if o.Paths > 0 {
		opts = append(opts, commute.WithPaths(o.Paths))
	}
	if o.Workers > 0 {
		opts = append(opts, commute.WithWorkers(o.Workers))
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Mode:      o.Mode,
		Vertical:  o.Vertical,
		Transpose: o.Transpose,
		Groups:    o.Groups,
	}
}

// CheckKeyOpts returns cache key options for the commutativity check.
func (o *Options) CheckKeyOpts() cache.CheckKeyOpts {
	return cache.CheckKeyOpts{
		MaxCandidates: o.MaxCandidates,
		Paths:         o.Paths,
	}
}

// RenderKeyOpts returns cache key options for one rendered format.
// Only the fields a format depends on are set, so changing the PNG scale
// does not invalidate cached Xy-pic output.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	k := cache.RenderKeyOpts{
		Format:     format,
		Identities: o.Identities,
		Composites: o.Composites,
	}
	switch format {
	case FormatDOT, FormatSVG, FormatPDF:
		k.Spacing = o.Spacing
	case FormatPNG:
		k.Spacing = o.Spacing
		k.Scale = o.Scale
	case FormatJSON:
		k.Identities, k.Composites = false, false
	}
	return k
}

// Merge returns over with every zero field taken from base. Boolean
// switches are combined with OR, so over can turn a switch on but not off.
func Merge(base, over Options) Options {
	out := over
	if out.Mode == "" {
		out.Mode = base.Mode
	}
	out.Vertical = out.Vertical || base.Vertical
	out.Transpose = out.Transpose || base.Transpose
	if len(out.Groups) == 0 {
		out.Groups = base.Groups
	}
	if out.MaxExpansions == 0 {
		out.MaxExpansions = base.MaxExpansions
	}
	if out.Timeout == 0 {
		out.Timeout = base.Timeout
	}
	if out.MaxCandidates == 0 {
		out.MaxCandidates = base.MaxCandidates
	}
	if out.Paths == 0 {
		out.Paths = base.Paths
	}
	if out.Workers == 0 {
		out.Workers = base.Workers
	}
	out.Refresh = out.Refresh || base.Refresh
	if len(out.Formats) == 0 {
		out.Formats = base.Formats
	}
	if out.Spacing == 0 {
		out.Spacing = base.Spacing
	}
	if out.Scale == 0 {
		out.Scale = base.Scale
	}
	out.Identities = out.Identities || base.Identities
	out.Composites = out.Composites || base.Composites
	if out.Logger == nil {
		out.Logger = base.Logger
	}
	return out
}
