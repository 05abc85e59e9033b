package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/catdiagram/pkg/category"
)

var (
	// ErrOverlappingGroups is returned when an object belongs to more than
	// one group.
	ErrOverlappingGroups = errors.New("overlapping groups")

	// ErrEmptyGroup is returned when a group has no members.
	ErrEmptyGroup = errors.New("empty group")

	// ErrUnknownObject is returned when a group names an object that is not
	// in the diagram.
	ErrUnknownObject = errors.New("unknown object")

	// ErrInvalidMode is returned for an unrecognized layout mode.
	ErrInvalidMode = errors.New("invalid layout mode")
)

// LayoutError reports malformed grouping input. It wraps one of the
// sentinel errors above so callers can test it with errors.Is.
type LayoutError struct {
	Err     error             // ErrOverlappingGroups, ErrEmptyGroup or ErrUnknownObject
	Group   int               // index of the offending group
	Objects []category.Object // offending objects, if any
}

func (e *LayoutError) Error() string {
	if len(e.Objects) == 0 {
		return fmt.Sprintf("layout: group %d: %v", e.Group, e.Err)
	}
	names := make([]string, len(e.Objects))
	for i, o := range e.Objects {
		names[i] = o.Name()
	}
	return fmt.Sprintf("layout: group %d: %v: %s", e.Group, e.Err, strings.Join(names, ", "))
}

func (e *LayoutError) Unwrap() error { return e.Err }
