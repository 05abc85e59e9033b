package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catdiagram/pkg/cache"
	"github.com/matzehuels/catdiagram/pkg/category"
	"github.com/matzehuels/catdiagram/pkg/commute"
	dio "github.com/matzehuels/catdiagram/pkg/io"
	"github.com/matzehuels/catdiagram/pkg/layout"
	"github.com/matzehuels/catdiagram/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeLayout = "layout"
	keyTypeCheck  = "check"
	keyTypeRender = "render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// =============================================================================
// Layout
// =============================================================================

// Layout places the objects of d on a grid, reusing a cached grid for the
// same diagram content and layout options. The boolean reports a cache hit.
func (r *Runner) Layout(ctx context.Context, d *category.Diagram, opts Options) (*layout.Grid, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Mode, len(d.Objects()))

	key := r.Keyer.LayoutKey(DiagramHash(d), opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, ok := r.lookup(ctx, key, keyTypeLayout); ok {
			if grid, err := dio.ReadGrid(bytes.NewReader(data)); err == nil {
				observability.Pipeline().OnLayoutComplete(ctx, opts.Mode, time.Since(start), nil)
				return grid, true, nil
			}
		}
	}

	grid, err := layout.Layout(d, opts.LayoutOptions()...)
	observability.Pipeline().OnLayoutComplete(ctx, opts.Mode, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(grid); err == nil {
		r.store(ctx, key, keyTypeLayout, data, cache.TTLLayout)
	}
	r.Logger.Debug("computed layout",
		"mode", opts.Mode,
		"cells", grid.Len(),
		"width", grid.Width(),
		"height", grid.Height(),
		"duration", time.Since(start))
	return grid, false, nil
}

// =============================================================================
// Check
// =============================================================================

// Check searches for a cover of target by embeddings of axioms. The boolean
// reports a cache hit.
//
// Only searches that ran to completion are cached. A cached cover is passed
// to [commute.Verify] before it is returned; a cover that fails verification
// is discarded and the search runs again.
func (r *Runner) Check(ctx context.Context, target *category.Diagram, axioms []*category.Diagram, opts Options) (*commute.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCheck(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Pipeline().OnCheckStart(ctx, len(target.NonIdentity()), len(axioms))

	hashes := make([]string, len(axioms))
	for i, a := range axioms {
		if a != nil {
			hashes[i] = DiagramHash(a)
		}
	}
	key := r.Keyer.CheckKey(DiagramHash(target), hashes, opts.CheckKeyOpts())

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, key, keyTypeCheck); ok {
			if res, ok := r.trustCached(target, axioms, data); ok {
				observability.Pipeline().OnCheckComplete(ctx, res.Status.String(), res.Reason.String(),
					res.Stats.Expansions, time.Since(start), nil)
				return res, true, nil
			}
		}
	}

	checkOpts := append(opts.CheckOptions(), commute.WithHooks(observability.Search()))
	res := commute.Check(ctx, target, axioms, checkOpts...)
	observability.Pipeline().OnCheckComplete(ctx, res.Status.String(), res.Reason.String(),
		res.Stats.Expansions, res.Stats.Duration, nil)

	if completed(res) {
		var buf bytes.Buffer
		if err := dio.WriteResult(&buf, res); err == nil {
			r.store(ctx, key, keyTypeCheck, buf.Bytes(), cache.TTLCheck)
		}
	}
	r.Logger.Debug("checked diagram",
		"status", res.Status,
		"reason", res.Reason,
		"expansions", res.Stats.Expansions,
		"duration", res.Stats.Duration)
	return res, false, nil
}

// trustCached decodes a cached result and re-verifies its cover.
func (r *Runner) trustCached(target *category.Diagram, axioms []*category.Diagram, data []byte) (*commute.Result, bool) {
	res, err := dio.ReadResult(bytes.NewReader(data))
	if err != nil {
		r.Logger.Debug("discarding unreadable cached result", "error", err)
		return nil, false
	}
	if !completed(res) {
		return nil, false
	}
	if res.Commutative() {
		if err := commute.Verify(target, axioms, res.Cover); err != nil {
			r.Logger.Warn("discarding cached cover", "error", err)
			return nil, false
		}
	}
	return res, true
}

// completed reports whether res does not depend on budget, time or
// cancellation.
func completed(res *commute.Result) bool {
	switch res.Reason {
	case commute.ReasonNone, commute.ReasonNoCover, commute.ReasonNoAxioms:
		return true
	default:
		return false
	}
}

// =============================================================================
// Render
// =============================================================================

// RenderWithCacheInfo renders grid in every requested format and reports
// whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *category.Diagram, grid *layout.Grid, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	layoutHash, err := gridHash(d, grid)
	if err != nil {
		return nil, false, fmt.Errorf("serialize grid for cache key: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		if !opts.Refresh {
			if data, ok := r.lookup(ctx, key, keyTypeRender); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil
	}

	sub := opts
	sub.Formats = missing
	rendered, err := RenderFormats(ctx, d, grid, sub)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.RenderKey(layoutHash, opts.RenderKeyOpts(format))
		r.store(ctx, key, keyTypeRender, data, cache.TTLRender)
		artifacts[format] = data
	}

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", len(opts.Formats)-len(missing),
		"duration", time.Since(start))
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d *category.Diagram, grid *layout.Grid, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, grid, opts)
	return artifacts, err
}

// =============================================================================
// Helpers
// =============================================================================

// DiagramHash is the content hash used in cache keys. Diagrams with the
// same premises, conclusions and tags hash alike.
func DiagramHash(d *category.Diagram) string {
	return cache.Hash([]byte(d.Fingerprint()))
}

func gridHash(d *category.Diagram, grid *layout.Grid) (string, error) {
	data, err := json.Marshal(grid)
	if err != nil {
		return "", err
	}
	return cache.Hash(append([]byte(d.Fingerprint()+"\n"), data...)), nil
}

func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
