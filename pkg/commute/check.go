package commute

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/catdiagram/pkg/category"
)

// Check searches for a cover of target by embeddings of axioms.
//
// Every diagram in axioms is trusted to commute; nothing about it is
// validated. Check never fails: running out of budget, time or context
// yields an Undetermined result, and so does a finished search that leaves
// morphisms uncovered. A Commutative result always carries a cover that
// passes [Verify].
func Check(ctx context.Context, target *category.Diagram, axioms []*category.Diagram, opts ...Option) *Result {
	cfg := newConfig(opts)
	start := time.Now()
	res := &Result{}
	defer func() { res.Stats.Duration = time.Since(start) }()

	targets := target.NonIdentity()
	category.SortMorphisms(targets)
	res.Stats.Targets = len(targets)
	if len(targets) == 0 {
		res.Status = Commutative
		res.Cover = NewCover(nil)
		return res
	}
	if len(axioms) == 0 {
		res.Reason = ReasonNoAxioms
		res.Uncovered = targets
		return res
	}

	searchCtx := ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	found, err := search(searchCtx, target, axioms, cfg, &res.Stats)
	if err != nil {
		res.Reason = abortReason(ctx, err)
		res.Uncovered = targets
		cfg.hooks.OnSearchAborted(ctx, res.Reason.String())
		cfg.logger.Debug("search aborted",
			"reason", res.Reason,
			"expansions", res.Stats.Expansions)
		return res
	}

	chosen, uncovered := greedyCover(targets, found)
	if len(uncovered) > 0 {
		res.Reason = ReasonNoCover
		res.Uncovered = uncovered
		cfg.logger.Debug("no cover", "uncovered", len(uncovered), "embeddings", res.Stats.Embeddings)
		return res
	}
	res.Status = Commutative
	res.Cover = NewCover(chosen)
	cfg.logger.Debug("found cover",
		"id", res.Cover.ID,
		"embeddings", res.Cover.Len(),
		"expansions", res.Stats.Expansions)
	return res
}

func abortReason(parent context.Context, err error) Reason {
	switch {
	case errors.Is(err, errBudget):
		return ReasonBudget
	case errors.Is(parent.Err(), context.Canceled):
		return ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonCanceled
	}
}

// search finds the embeddings of every distinct axiom, concurrently. The
// result is indexed like axioms; duplicates and nil entries stay empty.
func search(ctx context.Context, target *category.Diagram, axioms []*category.Diagram, cfg *config, stats *Stats) ([][]Embedding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tg := category.NewGraph(target)
	b := &budget{max: cfg.maxExpansions}
	results := make([][]Embedding, len(axioms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	first := make(map[string]bool, len(axioms))
	for i, ax := range axioms {
		if ax == nil {
			continue
		}
		fp := ax.Fingerprint()
		if first[fp] {
			cfg.logger.Debug("skipping duplicate axiom", "axiom", i)
			continue
		}
		first[fp] = true
		stats.Axioms++
		g.Go(func() error {
			s := newSearcher(gctx, i, ax, target, tg, cfg, b)
			if err := s.run(); err != nil {
				return err
			}
			results[i] = s.found
			cfg.hooks.OnAxiomSearched(gctx, i, len(s.found), s.expansions)
			cfg.logger.Debug("searched axiom",
				"axiom", i,
				"embeddings", len(s.found),
				"expansions", s.expansions)
			return nil
		})
	}
	err := g.Wait()
	stats.Expansions = min(b.used.Load(), b.max)
	for _, r := range results {
		stats.Embeddings += len(r)
	}
	return results, err
}

// greedyCover repeatedly takes the embedding covering the most uncovered
// targets. Ties go to the smaller image, then to the earlier embedding in
// axiom order. It stops when everything is covered or nothing helps.
func greedyCover(targets []category.Morphism, found [][]Embedding) ([]Embedding, []category.Morphism) {
	var pool []Embedding
	var images [][]string
	for _, embs := range found {
		for _, e := range embs {
			pool = append(pool, e)
			img := e.Image()
			keys := make([]string, len(img))
			for i, m := range img {
				keys[i] = m.Key()
			}
			images = append(images, keys)
		}
	}

	uncovered := make(map[string]bool, len(targets))
	for _, m := range targets {
		uncovered[m.Key()] = true
	}
	var chosen []Embedding
	for len(uncovered) > 0 {
		best, bestGain := -1, 0
		for i, keys := range images {
			gain := 0
			for _, k := range keys {
				if uncovered[k] {
					gain++
				}
			}
			if gain > bestGain || (gain == bestGain && gain > 0 && len(keys) < len(images[best])) {
				best, bestGain = i, gain
			}
		}
		if best < 0 {
			break
		}
		chosen = append(chosen, pool[best])
		for _, k := range images[best] {
			delete(uncovered, k)
		}
	}

	var rest []category.Morphism
	for _, m := range targets {
		if uncovered[m.Key()] {
			rest = append(rest, m)
		}
	}
	return chosen, rest
}
