package layout

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catdiagram/pkg/category"
)

// Mode selects the placement algorithm.
type Mode int

const (
	// Triangle grows a compact two-dimensional arrangement greedily.
	Triangle Mode = iota
	// Linear places all units in a single row or column.
	Linear
)

// String returns "triangle" or "linear".
func (m Mode) String() string {
	switch m {
	case Triangle:
		return "triangle"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "triangle" or "linear" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "triangle":
		return Triangle, nil
	case "linear":
		return Linear, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Orientation is the direction of a linear layout.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Option configures a call to [Layout].
type Option func(*config)

type config struct {
	groups      [][]category.Object
	mode        Mode
	orientation Orientation
	transpose   bool
	logger      *log.Logger
}

func newConfig(opts []Option) *config {
	cfg := &config{mode: Triangle, orientation: Horizontal}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	return cfg
}

// WithGroups bundles objects into atomic placement units. Groups must be
// non-empty, disjoint and made of diagram objects.
func WithGroups(groups ...[]category.Object) Option {
	return func(c *config) { c.groups = append(c.groups, groups...) }
}

// WithMode selects the placement algorithm. The default is [Triangle].
func WithMode(m Mode) Option {
	return func(c *config) { c.mode = m }
}

// WithOrientation sets the direction of a [Linear] layout. The default is
// [Horizontal].
func WithOrientation(o Orientation) Option {
	return func(c *config) { c.orientation = o }
}

// WithTranspose swaps rows and columns of the final grid.
func WithTranspose() Option {
	return func(c *config) { c.transpose = true }
}

// WithLogger traces placement decisions at debug level.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}
