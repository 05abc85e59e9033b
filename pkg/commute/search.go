package commute

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/matzehuels/catdiagram/pkg/category"
)

var errBudget = errors.New("expansion budget exhausted")

// budget is shared by every searcher of one check.
type budget struct {
	max  int64
	used atomic.Int64
}

func (b *budget) spend() bool { return b.used.Add(1) <= b.max }

// candidate is a possible image of an atomic axiom morphism.
type candidate struct {
	m       category.Morphism
	derived bool
}

// searcher enumerates the embeddings of one axiom into the target by
// depth-first backtracking.
type searcher struct {
	ctx    context.Context
	index  int
	axiom  *category.Diagram
	target *category.Diagram
	tg     *category.Graph
	cfg    *config
	budget *budget

	atoms      []category.Morphism // named axiom morphisms, by key
	composites []category.Morphism
	isolated   []category.Object // axiom objects without atoms
	outDeg     map[category.Object]int
	inDeg      map[category.Object]int
	all        []category.Morphism // non-identity target morphisms, by key
	objects    []category.Object   // target objects, by name

	objMap  map[category.Object]category.Object
	usedObj map[category.Object]bool
	images  []candidate // per atom, valid while mapped
	mapped  []bool
	usedMor map[string]bool

	found      []Embedding
	seen       map[string]bool
	expansions int64
}

func newSearcher(ctx context.Context, index int, axiom, target *category.Diagram, tg *category.Graph, cfg *config, b *budget) *searcher {
	s := &searcher{
		ctx:     ctx,
		index:   index,
		axiom:   axiom,
		target:  target,
		tg:      tg,
		cfg:     cfg,
		budget:  b,
		outDeg:  make(map[category.Object]int),
		inDeg:   make(map[category.Object]int),
		objects: tg.Objects(),
		objMap:  make(map[category.Object]category.Object),
		usedObj: make(map[category.Object]bool),
		usedMor: make(map[string]bool),
		seen:    make(map[string]bool),
	}
	touched := make(map[category.Object]bool)
	for _, m := range axiom.NonIdentity() {
		switch {
		case m.IsNamed():
			s.atoms = append(s.atoms, m)
			s.outDeg[m.Domain()]++
			s.inDeg[m.Codomain()]++
			touched[m.Domain()] = true
			touched[m.Codomain()] = true
		case m.IsComposite():
			s.composites = append(s.composites, m)
		}
	}
	category.SortMorphisms(s.atoms)
	for _, o := range axiom.Objects() {
		if !touched[o] {
			s.isolated = append(s.isolated, o)
		}
	}
	s.all = target.NonIdentity()
	category.SortMorphisms(s.all)
	s.images = make([]candidate, len(s.atoms))
	s.mapped = make([]bool, len(s.atoms))
	return s
}

func (s *searcher) run() error { return s.extend(0) }

// charge spends one unit of the shared budget and polls the context.
func (s *searcher) charge() error {
	s.expansions++
	if !s.budget.spend() {
		return errBudget
	}
	if s.expansions%64 == 1 {
		return s.ctx.Err()
	}
	return nil
}

func (s *searcher) extend(depth int) error {
	if depth == len(s.atoms) {
		return s.complete()
	}
	i := s.nextAtom()
	m := s.atoms[i]
	s.mapped[i] = true
	defer func() { s.mapped[i] = false }()

	cands, err := s.candidates(m)
	if err != nil {
		return err
	}
	for _, c := range cands {
		if err := s.charge(); err != nil {
			return err
		}
		bound := s.bind(m, c)
		s.images[i] = c
		s.usedMor[c.m.Key()] = true
		err := s.extend(depth + 1)
		delete(s.usedMor, c.m.Key())
		s.unbind(bound)
		if err != nil {
			return err
		}
	}
	return nil
}

// nextAtom picks the unmapped atom with the most endpoints already bound.
// Ties go to the smallest key.
func (s *searcher) nextAtom() int {
	best, bestFixed := -1, -1
	for i, m := range s.atoms {
		if s.mapped[i] {
			continue
		}
		fixed := 0
		if _, ok := s.objMap[m.Domain()]; ok {
			fixed++
		}
		if _, ok := s.objMap[m.Codomain()]; ok {
			fixed++
		}
		if fixed > bestFixed {
			best, bestFixed = i, fixed
		}
	}
	return best
}

func (s *searcher) bind(m category.Morphism, c candidate) []category.Object {
	var bound []category.Object
	for _, pair := range [2][2]category.Object{
		{m.Domain(), c.m.Domain()},
		{m.Codomain(), c.m.Codomain()},
	} {
		if _, ok := s.objMap[pair[0]]; ok {
			continue
		}
		s.objMap[pair[0]] = pair[1]
		s.usedObj[pair[1]] = true
		bound = append(bound, pair[0])
	}
	return bound
}

func (s *searcher) unbind(bound []category.Object) {
	for _, o := range bound {
		delete(s.usedObj, s.objMap[o])
		delete(s.objMap, o)
	}
}

// fits reports whether the axiom object a can be sent to the target object
// t given the current partial map.
func (s *searcher) fits(a, t category.Object) bool {
	if img, ok := s.objMap[a]; ok {
		return img == t
	}
	if s.usedObj[t] {
		return false
	}
	if s.cfg.pathLen >= 2 {
		return true
	}
	return s.tg.OutDegree(t) >= s.outDeg[a] && s.tg.InDegree(t) >= s.inDeg[a]
}

// candidates lists the admissible images of the atom m, sorted by key and
// truncated to the configured bound. Path enumeration is charged to the
// budget one step per morphism examined.
func (s *searcher) candidates(m category.Morphism) ([]candidate, error) {
	dom, cod := m.Domain(), m.Codomain()
	domImg, domFixed := s.objMap[dom]
	codImg, codFixed := s.objMap[cod]

	var pool []category.Morphism
	switch {
	case domFixed:
		pool = s.tg.Out(domImg)
	case codFixed:
		pool = s.tg.In(codImg)
	default:
		pool = s.all
	}

	want := s.axiom.Tags(m)
	var out []candidate
	seen := make(map[string]bool)
	accept := func(t category.Morphism, derived bool) {
		if seen[t.Key()] || s.usedMor[t.Key()] {
			return
		}
		if m.IsLoop() != t.IsLoop() {
			return
		}
		if !s.fits(dom, t.Domain()) || !s.fits(cod, t.Codomain()) {
			return
		}
		if derived {
			if len(want) > 0 {
				return
			}
		} else if !s.target.Tags(t).Contains(want) {
			return
		}
		seen[t.Key()] = true
		out = append(out, candidate{m: t, derived: derived})
	}

	for _, t := range pool {
		accept(t, false)
	}
	if s.cfg.pathLen >= 2 {
		starts := []category.Object{domImg}
		if !domFixed {
			starts = s.objects
		}
		for _, a := range starts {
			var end category.Object
			if codFixed {
				end = codImg
			}
			paths, err := s.tg.PathsFunc(a, end, s.cfg.pathLen, s.charge)
			if err != nil {
				return nil, err
			}
			for _, p := range paths {
				accept(p, !s.target.Has(p))
			}
		}
	}

	slices.SortFunc(out, func(a, b candidate) int { return strings.Compare(a.m.Key(), b.m.Key()) })
	if s.cfg.maxCandidates > 0 && len(out) > s.cfg.maxCandidates {
		out = out[:s.cfg.maxCandidates]
	}
	return out, nil
}

// complete finishes an embedding once every atom is mapped: isolated
// objects take the first free target objects and composites map to the
// composite of their components' images.
func (s *searcher) complete() error {
	var bound []category.Object
	defer func() { s.unbind(bound) }()
	for _, o := range s.isolated {
		free := -1
		for i, t := range s.objects {
			if !s.usedObj[t] {
				free = i
				break
			}
		}
		if free < 0 {
			return nil
		}
		s.objMap[o] = s.objects[free]
		s.usedObj[s.objects[free]] = true
		bound = append(bound, o)
	}

	maps := make([]Mapping, 0, len(s.atoms)+len(s.composites))
	atomImage := make(map[string]category.Morphism, len(s.atoms))
	taken := make(map[string]bool, len(s.atoms)+len(s.composites))
	for i, m := range s.atoms {
		c := s.images[i]
		atomImage[m.Key()] = c.m
		taken[c.m.Key()] = true
		maps = append(maps, Mapping{From: m, To: c.m, Derived: c.derived})
	}
	for _, m := range s.composites {
		parts := m.Components()
		imgs := make([]category.Morphism, len(parts))
		for i, p := range parts {
			imgs[i] = atomImage[p.Key()]
		}
		img, err := category.Compose(imgs...)
		if err != nil || taken[img.Key()] {
			return nil
		}
		derived := !s.target.Has(img)
		if !derived && !s.target.Tags(img).Contains(s.axiom.Tags(m)) {
			return nil
		}
		taken[img.Key()] = true
		maps = append(maps, Mapping{From: m, To: img, Derived: derived})
	}

	// Automorphisms of the axiom give the same image; keep the first.
	var covered []string
	for _, mp := range maps {
		if !mp.Derived {
			covered = append(covered, mp.To.Key())
		}
	}
	slices.Sort(covered)
	key := strconv.Itoa(s.index) + "|" + strings.Join(covered, "|")
	if s.seen[key] {
		return nil
	}
	s.seen[key] = true
	objs := make(map[category.Object]category.Object, len(s.objMap))
	for a, t := range s.objMap {
		objs[a] = t
	}
	s.found = append(s.found, Embedding{Axiom: s.index, Objects: objs, Morphisms: maps})
	return nil
}
