package xypic

import "github.com/matzehuels/catdiagram/pkg/category"

// Formatter adjusts the arrow of a morphism carrying a given tag.
type Formatter func(*Arrow)

// Option configures [Draw].
type Option func(*config)

type config struct {
	identities bool
	composites bool
	formatters map[category.Tag]Formatter
}

func newConfig(opts []Option) *config {
	cfg := &config{formatters: make(map[category.Tag]Formatter)}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// drawn reports whether m gets an arrow. Composites are implied by their
// parts and are drawn only when asserted as conclusions.
func (c *config) drawn(d *category.Diagram, m category.Morphism) bool {
	switch {
	case m.IsIdentity():
		return c.identities
	case m.IsComposite():
		return c.composites || d.IsConclusion(m)
	default:
		return true
	}
}

// WithIdentities draws identity morphisms as loops.
func WithIdentities() Option {
	return func(c *config) { c.identities = true }
}

// WithComposites draws every composite, not only conclusions.
func WithComposites() Option {
	return func(c *config) { c.composites = true }
}

// WithFormatter registers f for morphisms tagged t. Formatters run in tag
// order after the default styling.
func WithFormatter(t category.Tag, f Formatter) Option {
	return func(c *config) { c.formatters[t] = f }
}

// Mono draws a hooked tail, the usual mark of a monomorphism.
func Mono(a *Arrow) { a.Style = "^{(}->" }

// Epi draws a double head, the usual mark of an epimorphism.
func Epi(a *Arrow) { a.Style = "->>" }
