package category

import "slices"

// Graph is a read-only adjacency view of a diagram over its non-identity
// morphisms. Both engines build one per invocation; it is safe for concurrent
// reads.
type Graph struct {
	objects []Object
	out     map[Object][]Morphism
	in      map[Object][]Morphism
	named   map[Object][]Morphism // outgoing named morphisms, for path search
	nbrs    map[Object][]Object
}

// NewGraph indexes the non-identity morphisms of d.
func NewGraph(d *Diagram) *Graph {
	g := &Graph{
		objects: d.Objects(),
		out:     make(map[Object][]Morphism),
		in:      make(map[Object][]Morphism),
		named:   make(map[Object][]Morphism),
		nbrs:    make(map[Object][]Object),
	}
	adj := make(map[Object]map[Object]bool)
	for _, m := range d.NonIdentity() {
		g.out[m.dom] = append(g.out[m.dom], m)
		g.in[m.cod] = append(g.in[m.cod], m)
		if m.IsNamed() {
			g.named[m.dom] = append(g.named[m.dom], m)
		}
		if m.IsLoop() {
			continue
		}
		for _, pair := range [][2]Object{{m.dom, m.cod}, {m.cod, m.dom}} {
			if adj[pair[0]] == nil {
				adj[pair[0]] = make(map[Object]bool)
			}
			adj[pair[0]][pair[1]] = true
		}
	}
	for o, set := range adj {
		list := make([]Object, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		SortObjects(list)
		g.nbrs[o] = list
	}
	return g
}

// Objects returns all objects sorted by name.
func (g *Graph) Objects() []Object { return slices.Clone(g.objects) }

// Out returns the non-identity morphisms leaving o.
func (g *Graph) Out(o Object) []Morphism { return g.out[o] }

// In returns the non-identity morphisms entering o.
func (g *Graph) In(o Object) []Morphism { return g.in[o] }

// OutDegree returns the number of non-identity morphisms leaving o.
func (g *Graph) OutDegree(o Object) int { return len(g.out[o]) }

// InDegree returns the number of non-identity morphisms entering o.
func (g *Graph) InDegree(o Object) int { return len(g.in[o]) }

// Neighbors returns the objects joined to o by a morphism in either
// direction, excluding o itself, sorted by name.
func (g *Graph) Neighbors(o Object) []Object { return g.nbrs[o] }

// Between returns the non-identity morphisms from a to b.
func (g *Graph) Between(a, b Object) []Morphism {
	var out []Morphism
	for _, m := range g.out[a] {
		if m.cod == b {
			out = append(out, m)
		}
	}
	return out
}

// Components returns the connected components of the undirected object
// graph. Objects inside a component and the components themselves are
// ordered by name.
func (g *Graph) Components() [][]Object {
	seen := make(map[Object]bool, len(g.objects))
	var comps [][]Object
	for _, start := range g.objects {
		if seen[start] {
			continue
		}
		var comp []Object
		stack := []Object{start}
		seen[start] = true
		for len(stack) > 0 {
			o := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, o)
			for _, n := range g.nbrs[o] {
				if !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
		SortObjects(comp)
		comps = append(comps, comp)
	}
	return comps
}

// Paths returns the composites of at least two and at most maxLen named
// morphisms that form simple paths from a to b, sorted by key.
func (g *Graph) Paths(a, b Object, maxLen int) []Morphism {
	out, _ := g.PathsFunc(a, b, maxLen, nil)
	return out
}

// PathsFunc is Paths with a work bound. A zero b matches any endpoint, and
// a path may end where it started.
//
// step runs once per morphism the walk examines. A non-nil error from step
// stops the walk; the paths found so far are returned with it. The number
// of paths grows exponentially with maxLen, so callers with a budget pass
// it here.
func (g *Graph) PathsFunc(a, b Object, maxLen int, step func() error) ([]Morphism, error) {
	if maxLen < 2 {
		return nil, nil
	}
	var out []Morphism
	var chain []Morphism
	visited := map[Object]bool{a: true}

	var walk func(at Object) error
	walk = func(at Object) error {
		for _, m := range g.named[at] {
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			if visited[m.cod] && m.cod != a {
				continue
			}
			if len(chain) >= 1 && (b.IsZero() || m.cod == b) {
				out = append(out, newComposite(append(slices.Clone(chain), m)))
			}
			if m.cod == a || m.cod == b || len(chain)+1 >= maxLen {
				continue
			}
			visited[m.cod] = true
			chain = append(chain, m)
			err := walk(m.cod)
			chain = chain[:len(chain)-1]
			visited[m.cod] = false
			if err != nil {
				return err
			}
		}
		return nil
	}
	err := walk(a)
	SortMorphisms(out)
	return out, err
}
