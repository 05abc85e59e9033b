package layout

import (
	"fmt"

	"github.com/matzehuels/catdiagram/pkg/category"
)

// Layout places the objects of d on a grid.
//
// It returns a *LayoutError when the groups are malformed and an error
// wrapping ErrInvalidMode for an unknown mode. Disconnected diagrams,
// self-loops and composites never cause an error. Layout does not modify d.
func Layout(d *category.Diagram, opts ...Option) (*Grid, error) {
	cfg := newConfig(opts)
	ug, err := buildUnits(d, cfg.groups)
	if err != nil {
		return nil, err
	}

	var placement map[*Unit]Cell
	switch cfg.mode {
	case Triangle:
		placement = triangleLayout(ug, cfg.logger)
	case Linear:
		placement = linearLayout(ug, cfg.orientation, cfg.logger)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, cfg.mode)
	}

	grid := newGrid(placement)
	if cfg.transpose {
		grid = grid.Transpose()
	}
	cfg.logger.Debug("layout complete",
		"mode", cfg.mode,
		"units", grid.Len(),
		"width", grid.Width(),
		"height", grid.Height(),
		"cost", grid.Cost(d))
	return grid, nil
}
