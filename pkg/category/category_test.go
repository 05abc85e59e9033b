package category

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(t *testing.T, opts ...DiagramOption) (*Diagram, Morphism, Morphism) {
	t.Helper()
	a, b, c := NewObject("A"), NewObject("B"), NewObject("C")
	f := MustMorphism("f", a, b)
	g := MustMorphism("g", b, c)
	d := NewDiagram(opts...)
	require.NoError(t, d.AddPremise(f, "mono"))
	require.NoError(t, d.AddPremise(g, "mono", "epi"))
	return d, f, g
}

func TestNewMorphism_Validation(t *testing.T) {
	_, err := NewMorphism("", NewObject("A"), NewObject("B"))
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NewMorphism("f", Object{}, NewObject("B"))
	assert.ErrorIs(t, err, ErrEmptyName)

	f, err := NewMorphism("f", NewObject("A"), NewObject("B"))
	require.NoError(t, err)
	assert.Equal(t, KindNamed, f.Kind())
	assert.Equal(t, "f: A → B", f.String())
}

func TestMorphism_Equality(t *testing.T) {
	a, b := NewObject("A"), NewObject("B")
	assert.True(t, MustMorphism("f", a, b).Equal(MustMorphism("f", a, b)))
	assert.False(t, MustMorphism("f", a, b).Equal(MustMorphism("f", b, a)))
	assert.False(t, MustMorphism("f", a, b).Equal(MustMorphism("g", a, b)))
	assert.True(t, NewIdentity(a).Equal(NewIdentity(a)))
	assert.False(t, NewIdentity(a).Equal(NewIdentity(b)))
}

func TestCompose(t *testing.T) {
	a, b, c, d := NewObject("A"), NewObject("B"), NewObject("C"), NewObject("D")
	f := MustMorphism("f", a, b)
	g := MustMorphism("g", b, c)
	h := MustMorphism("h", c, d)

	t.Run("chain", func(t *testing.T) {
		gf, err := Compose(f, g)
		require.NoError(t, err)
		assert.Equal(t, KindComposite, gf.Kind())
		assert.Equal(t, a, gf.Domain())
		assert.Equal(t, c, gf.Codomain())
		assert.Equal(t, "g∘f", gf.Label())
		assert.Equal(t, 2, gf.Length())
	})

	t.Run("flattens nested composites", func(t *testing.T) {
		nested := MustCompose(MustCompose(f, g), h)
		flat := MustCompose(f, MustCompose(g, h))
		assert.True(t, nested.Equal(flat))
		assert.Len(t, nested.Components(), 3)
	})

	t.Run("drops identities", func(t *testing.T) {
		m, err := Compose(NewIdentity(a), f, NewIdentity(b))
		require.NoError(t, err)
		assert.True(t, m.Equal(f))
	})

	t.Run("only identities", func(t *testing.T) {
		m, err := Compose(NewIdentity(a), NewIdentity(a))
		require.NoError(t, err)
		assert.True(t, m.IsIdentity())
	})

	t.Run("broken chain", func(t *testing.T) {
		_, err := Compose(f, h)
		assert.ErrorIs(t, err, ErrBrokenChain)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Compose()
		assert.ErrorIs(t, err, ErrEmptyComposite)
	})
}

func TestTags(t *testing.T) {
	ts := NewTags("b", "a", "b")
	assert.Equal(t, Tags{"a", "b"}, ts)
	assert.True(t, ts.Has("a"))
	assert.True(t, ts.Contains(NewTags("b")))
	assert.False(t, ts.Contains(NewTags("c")))
	assert.Equal(t, Tags{"b"}, ts.Intersect(NewTags("b", "c")))
	assert.Equal(t, Tags{"a", "b", "c"}, ts.Union(NewTags("c")))
	assert.Nil(t, NewTags())
	assert.Equal(t, "{a,b}", ts.String())
}

func TestDiagram_Closure(t *testing.T) {
	d, f, g := triangle(t)
	gf := MustCompose(f, g)

	assert.Equal(t, 6, d.Len(), "f, g, g∘f and three identities")
	assert.True(t, d.Has(gf))
	assert.True(t, d.IsPremise(gf))
	assert.Equal(t, Tags{"mono"}, d.Tags(gf), "composite keeps the shared tags")
	assert.Len(t, d.NonIdentity(), 3)
	assert.Equal(t, Objects("A", "B", "C"), d.Objects())
}

func TestDiagram_WithoutExpansion(t *testing.T) {
	d, _, _ := triangle(t, WithoutExpansion(), WithoutIdentities())
	assert.Equal(t, 2, d.Len())
}

func TestDiagram_CycleClosureTerminates(t *testing.T) {
	a, b := NewObject("A"), NewObject("B")
	f := MustMorphism("f", a, b)
	g := MustMorphism("g", b, a)
	d, err := NewDiagramFrom([]Morphism{f, g}, nil)
	require.NoError(t, err)

	assert.True(t, d.Has(MustCompose(f, g)))
	assert.True(t, d.Has(MustCompose(g, f)))
	assert.False(t, d.Has(MustCompose(f, g, f)), "paths never revisit an object")
	assert.Len(t, d.NonIdentity(), 4)
}

func TestDiagram_IdentityTags(t *testing.T) {
	d := NewDiagram()
	assert.ErrorIs(t, d.AddPremise(NewIdentity(NewObject("A")), "mono"), ErrIdentityTags)
	assert.NoError(t, d.AddPremise(NewIdentity(NewObject("A"))))
}

func TestDiagram_Conclusions(t *testing.T) {
	d, f, g := triangle(t)
	a, c := NewObject("A"), NewObject("C")
	h := MustMorphism("h", a, c)

	require.NoError(t, d.AddConclusion(h, "unique"))
	assert.True(t, d.IsConclusion(h))
	assert.False(t, d.IsPremise(h))
	assert.Equal(t, Tags{"unique"}, d.ConclusionTags(h))

	premises, conclusions := d.Hom(a, c)
	assert.Len(t, premises, 1)
	assert.True(t, premises[0].Equal(MustCompose(f, g)))
	assert.Len(t, conclusions, 1)

	err := d.AddConclusion(MustMorphism("k", a, NewObject("Z")))
	assert.ErrorIs(t, err, ErrUnknownObject)
}

func TestDiagram_Subdiagrams(t *testing.T) {
	d, f, _ := triangle(t)

	sub, err := d.SubdiagramFromObjects(Objects("A", "B"))
	require.NoError(t, err)
	assert.True(t, sub.Has(f))
	assert.Equal(t, 3, sub.Len(), "f and two identities")
	assert.True(t, d.IsSubdiagram(sub))
	assert.False(t, sub.IsSubdiagram(d))

	_, err = d.SubdiagramFromObjects(Objects("A", "Q"))
	assert.ErrorIs(t, err, ErrUnknownObject)
}

func TestDiagram_EqualAndFingerprint(t *testing.T) {
	d1, _, _ := triangle(t)

	a, b, c := NewObject("A"), NewObject("B"), NewObject("C")
	d2 := NewDiagram()
	require.NoError(t, d2.AddPremise(MustMorphism("g", b, c), "epi", "mono"))
	require.NoError(t, d2.AddPremise(MustMorphism("f", a, b), "mono"))

	assert.True(t, d1.Equal(d2))
	assert.Equal(t, d1.Fingerprint(), d2.Fingerprint())

	require.NoError(t, d2.AddConclusion(MustMorphism("h", a, c)))
	assert.False(t, d1.Equal(d2))
	assert.NotEqual(t, d1.Fingerprint(), d2.Fingerprint())
}

func TestCategory_Dedup(t *testing.T) {
	d1, _, _ := triangle(t)
	d2, _, _ := triangle(t)
	c := NewCategory("Set", d1, d2, nil)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "Set", c.Name())
}

func TestGraph(t *testing.T) {
	a, b, c, x := NewObject("A"), NewObject("B"), NewObject("C"), NewObject("X")
	f := MustMorphism("f", a, b)
	g := MustMorphism("g", b, c)
	h := MustMorphism("h", a, c)
	loop := MustMorphism("l", x, x)
	d, err := NewDiagramFrom([]Morphism{f, g, h, loop}, nil, WithoutExpansion())
	require.NoError(t, err)

	gr := NewGraph(d)
	assert.Equal(t, 2, gr.OutDegree(a))
	assert.Equal(t, 2, gr.InDegree(c))
	assert.Equal(t, Objects("B", "C"), gr.Neighbors(a))
	assert.Empty(t, gr.Neighbors(x), "loops do not make neighbours")
	assert.Equal(t, [][]Object{Objects("A", "B", "C"), Objects("X")}, gr.Components())
	assert.Len(t, gr.Between(a, c), 1)

	paths := gr.Paths(a, c, 3)
	require.Len(t, paths, 1)
	assert.True(t, paths[0].Equal(MustCompose(f, g)))
	assert.Empty(t, gr.Paths(a, c, 1))
}

func TestGraph_PathsAnyEnd(t *testing.T) {
	a, b, c := NewObject("A"), NewObject("B"), NewObject("C")
	f := MustMorphism("f", a, b)
	g := MustMorphism("g", b, c)
	k := MustMorphism("k", c, a)
	d, err := NewDiagramFrom([]Morphism{f, g, k}, nil, WithoutExpansion())
	require.NoError(t, err)
	gr := NewGraph(d)

	paths, err := gr.PathsFunc(a, Object{}, 3, nil)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.True(t, paths[0].Equal(MustCompose(f, g)) || paths[1].Equal(MustCompose(f, g)))
	assert.True(t, paths[0].Equal(MustCompose(f, g, k)) || paths[1].Equal(MustCompose(f, g, k)),
		"a path may return to its start")

	loops := gr.Paths(a, a, 3)
	require.Len(t, loops, 1)
	assert.True(t, loops[0].Equal(MustCompose(f, g, k)))
}

func TestGraph_PathsStep(t *testing.T) {
	// Complete digraph on eight objects: the number of simple paths is
	// far beyond the step limit.
	objs := Objects("A", "B", "C", "D", "E", "F", "G", "H")
	var ms []Morphism
	for _, x := range objs {
		for _, y := range objs {
			if x != y {
				ms = append(ms, MustMorphism(x.Name()+y.Name(), x, y))
			}
		}
	}
	d, err := NewDiagramFrom(ms, nil, WithoutExpansion())
	require.NoError(t, err)
	gr := NewGraph(d)

	stop := errors.New("stop")
	steps := 0
	_, err = gr.PathsFunc(objs[0], Object{}, 8, func() error {
		steps++
		if steps > 100 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 101, steps, "the walk stops at the first error")
}

func TestMorphism_JSON(t *testing.T) {
	a, b, c := NewObject("A"), NewObject("B"), NewObject("C")
	f := MustMorphism("f", a, b)
	g := MustMorphism("g", b, c)

	for _, m := range []Morphism{f, NewIdentity(a), MustCompose(f, g)} {
		data, err := json.Marshal(m)
		require.NoError(t, err)
		var back Morphism
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, m.Equal(back), "%s survives a round trip as %s", m, data)
	}

	var broken Morphism
	err := json.Unmarshal([]byte(`{"from":"A","to":"C","compose":[
		{"name":"g","from":"B","to":"C"},{"name":"f","from":"A","to":"B"}]}`), &broken)
	assert.ErrorIs(t, err, ErrBrokenChain)

	objs := map[Object]Object{a: b}
	data, err := json.Marshal(objs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":"B"}`, string(data))
}
