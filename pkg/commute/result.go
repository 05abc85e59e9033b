package commute

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/catdiagram/pkg/category"
)

// Status is the outcome of a check.
type Status int

const (
	// Undetermined means no cover was found. It is not a proof that the
	// diagram fails to commute.
	Undetermined Status = iota
	// Commutative means a cover was found and the diagram commutes.
	Commutative
)

func (s Status) String() string {
	if s == Commutative {
		return "commutative"
	}
	return "undetermined"
}

// MarshalText encodes the status as its name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "commutative":
		*s = Commutative
	case "undetermined":
		*s = Undetermined
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// Reason explains an Undetermined result.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonNoCover means the search finished but no embedding covers the
	// remaining morphisms.
	ReasonNoCover
	// ReasonBudget means the expansion budget ran out.
	ReasonBudget
	// ReasonTimeout means the timeout or the context deadline expired.
	ReasonTimeout
	// ReasonCanceled means the context was canceled.
	ReasonCanceled
	// ReasonNoAxioms means there was something to cover but no axiom.
	ReasonNoAxioms
)

var reasonNames = [...]string{"", "no_cover", "budget", "timeout", "canceled", "no_axioms"}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// MarshalText encodes the reason as its name.
func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText decodes a reason name.
func (r *Reason) UnmarshalText(b []byte) error {
	i := slices.Index(reasonNames[:], string(b))
	if i < 0 {
		return fmt.Errorf("unknown reason %q", b)
	}
	*r = Reason(i)
	return nil
}

// Mapping sends one axiom morphism to its image in the target.
type Mapping struct {
	From category.Morphism `json:"from"`
	To   category.Morphism `json:"to"`
	// Derived marks an image the target does not contain: a composite the
	// target never listed. Derived images cover nothing.
	Derived bool `json:"derived,omitempty"`
}

// Embedding is an injective, structure-preserving map from an axiom into the
// target. Identities are implied by the object map and not listed.
type Embedding struct {
	Axiom     int                                 `json:"axiom"`
	Objects   map[category.Object]category.Object `json:"objects"`
	Morphisms []Mapping                           `json:"morphisms"`
}

// Image returns the target morphisms covered by the embedding, sorted by key.
func (e Embedding) Image() []category.Morphism {
	var out []category.Morphism
	for _, mp := range e.Morphisms {
		if !mp.Derived {
			out = append(out, mp.To)
		}
	}
	category.SortMorphisms(out)
	return out
}

func (e Embedding) canonical(sb *strings.Builder) {
	fmt.Fprintf(sb, "axiom %d\n", e.Axiom)
	objs := make([]category.Object, 0, len(e.Objects))
	for o := range e.Objects {
		objs = append(objs, o)
	}
	category.SortObjects(objs)
	for _, o := range objs {
		fmt.Fprintf(sb, "o %q=>%q\n", o.Name(), e.Objects[o].Name())
	}
	maps := slices.Clone(e.Morphisms)
	slices.SortFunc(maps, func(a, b Mapping) int { return strings.Compare(a.From.Key(), b.From.Key()) })
	for _, mp := range maps {
		fmt.Fprintf(sb, "m %s=>%s %t\n", mp.From.Key(), mp.To.Key(), mp.Derived)
	}
}

var coverNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/catdiagram/cover"))

// Cover is a certificate of commutativity: embeddings whose images jointly
// contain every non-identity morphism of the target.
type Cover struct {
	// ID is derived from the content, so equal covers share an ID.
	ID         uuid.UUID   `json:"id"`
	Embeddings []Embedding `json:"embeddings"`
}

// NewCover builds a cover and derives its ID.
func NewCover(embeddings []Embedding) *Cover {
	if embeddings == nil {
		embeddings = []Embedding{}
	}
	c := &Cover{Embeddings: embeddings}
	c.ID = c.ContentID()
	return c
}

// ContentID recomputes the content-derived ID.
func (c *Cover) ContentID() uuid.UUID {
	var sb strings.Builder
	for _, e := range c.Embeddings {
		e.canonical(&sb)
	}
	return uuid.NewSHA1(coverNamespace, []byte(sb.String()))
}

// Len returns the number of embeddings.
func (c *Cover) Len() int { return len(c.Embeddings) }

// Stats describes the work done by a check.
type Stats struct {
	Targets    int           `json:"targets"`
	Axioms     int           `json:"axioms"`
	Expansions int64         `json:"expansions"`
	Embeddings int           `json:"embeddings"`
	Duration   time.Duration `json:"duration"`
}

// Result is the outcome of [Check]. Cover is set only when Status is
// Commutative; Reason and Uncovered only when it is Undetermined.
type Result struct {
	Status    Status              `json:"status"`
	Cover     *Cover              `json:"cover,omitempty"`
	Reason    Reason              `json:"reason,omitempty"`
	Uncovered []category.Morphism `json:"uncovered,omitempty"`
	Stats     Stats               `json:"stats"`
}

// Commutative reports whether a cover was found.
func (r *Result) Commutative() bool { return r.Status == Commutative }

func (r *Result) String() string {
	if r.Status == Commutative {
		return fmt.Sprintf("commutative (%d embeddings)", r.Cover.Len())
	}
	return fmt.Sprintf("undetermined (%s)", r.Reason)
}
