package category

import (
	"slices"
	"strings"
)

// Tag is an opaque morphism property such as "mono" or "unique".
// The engines never interpret tag values.
type Tag string

// Tags is a sorted set of tags without duplicates. The zero value is the
// empty set.
type Tags []Tag

// NewTags returns the set of the given tags.
func NewTags(tags ...Tag) Tags {
	if len(tags) == 0 {
		return nil
	}
	out := slices.Clone(tags)
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// TagsOf converts plain strings into a tag set.
func TagsOf(names ...string) Tags {
	tags := make([]Tag, 0, len(names))
	for _, n := range names {
		if n != "" {
			tags = append(tags, Tag(n))
		}
	}
	return NewTags(tags...)
}

// Has reports whether t contains tag.
func (t Tags) Has(tag Tag) bool {
	_, ok := slices.BinarySearch(t, tag)
	return ok
}

// Contains reports whether every tag of o is in t.
func (t Tags) Contains(o Tags) bool {
	for _, tag := range o {
		if !t.Has(tag) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same tags.
func (t Tags) Equal(o Tags) bool { return slices.Equal(t, o) }

// Union returns the tags in t or o.
func (t Tags) Union(o Tags) Tags {
	if len(o) == 0 {
		return t
	}
	return NewTags(append(slices.Clone(t), o...)...)
}

// Intersect returns the tags in both t and o.
func (t Tags) Intersect(o Tags) Tags {
	var out []Tag
	for _, tag := range t {
		if o.Has(tag) {
			out = append(out, tag)
		}
	}
	return NewTags(out...)
}

// Strings returns the tags as plain strings.
func (t Tags) Strings() []string {
	out := make([]string, len(t))
	for i, tag := range t {
		out[i] = string(tag)
	}
	return out
}

// String returns "{a,b}".
func (t Tags) String() string { return "{" + strings.Join(t.Strings(), ",") + "}" }
