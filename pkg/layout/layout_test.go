package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/catdiagram/pkg/category"
)

var (
	objA = category.NewObject("A")
	objB = category.NewObject("B")
	objC = category.NewObject("C")
	objD = category.NewObject("D")
	objX = category.NewObject("X")
)

func diagram(t *testing.T, opts []category.DiagramOption, ms ...category.Morphism) *category.Diagram {
	t.Helper()
	d, err := category.NewDiagramFrom(ms, nil, opts...)
	require.NoError(t, err)
	return d
}

func chain(t *testing.T) *category.Diagram {
	return diagram(t, nil,
		category.MustMorphism("f", objA, objB),
		category.MustMorphism("g", objB, objC),
	)
}

func requireComplete(t *testing.T, d *category.Diagram, g *Grid) {
	t.Helper()
	seen := make(map[category.Object]bool)
	for _, c := range g.Cells() {
		u := g.At(c.Row, c.Col)
		require.NotNil(t, u)
		for _, o := range u.Objects() {
			assert.False(t, seen[o], "object %s placed twice", o)
			seen[o] = true
			pos, ok := g.Position(o)
			require.True(t, ok)
			assert.Equal(t, c, pos)
		}
	}
	for _, o := range d.Objects() {
		assert.True(t, seen[o], "object %s not placed", o)
	}
}

func TestLayout_ChainTriangle(t *testing.T) {
	d := chain(t)
	g, err := Layout(d)
	require.NoError(t, err)
	requireComplete(t, d, g)

	assert.Equal(t, 3, g.Len())
	a, _ := g.Position(objA)
	b, _ := g.Position(objB)
	c, _ := g.Position(objC)
	assert.Equal(t, 1, manhattan(a, b), "B adjacent to A")
	assert.Equal(t, 1, manhattan(b, c), "B adjacent to C")

	assert.Equal(t, Cell{0, 0}, a)
	assert.Equal(t, Cell{0, 1}, b)
	assert.Equal(t, Cell{1, 1}, c)
	assert.Equal(t, 4, g.Cost(d), "f and g have length 1, g∘f length 2")
}

func TestLayout_GroupedChain(t *testing.T) {
	d := chain(t)
	g, err := Layout(d, WithGroups([]category.Object{objA, objC}))
	require.NoError(t, err)
	requireComplete(t, d, g)

	assert.Equal(t, 2, g.Len())
	a, _ := g.Position(objA)
	b, _ := g.Position(objB)
	c, _ := g.Position(objC)
	assert.Equal(t, a, c)
	assert.NotEqual(t, a, b)

	u := g.At(a.Row, a.Col)
	assert.True(t, u.IsGroup())
	assert.Equal(t, "{A,C}", u.Label())
}

func TestLayout_LinearChain(t *testing.T) {
	d := diagram(t, nil,
		category.MustMorphism("f", objA, objB),
		category.MustMorphism("g", objB, objC),
		category.MustMorphism("h", objC, objD),
	)

	tests := []struct {
		name string
		opts []Option
		want []Cell
	}{
		{
			name: "horizontal",
			opts: []Option{WithMode(Linear)},
			want: []Cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
		},
		{
			name: "vertical",
			opts: []Option{WithMode(Linear), WithOrientation(Vertical)},
			want: []Cell{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		},
		{
			name: "transposed",
			opts: []Option{WithMode(Linear), WithTranspose()},
			want: []Cell{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Layout(d, tt.opts...)
			require.NoError(t, err)
			for i, o := range []category.Object{objA, objB, objC, objD} {
				pos, ok := g.Position(o)
				require.True(t, ok)
				assert.Equal(t, tt.want[i], pos, "object %s", o)
			}
		})
	}
}

func TestLayout_LinearCycle(t *testing.T) {
	d := diagram(t, []category.DiagramOption{category.WithoutExpansion()},
		category.MustMorphism("f", objB, objC),
		category.MustMorphism("g", objC, objA),
		category.MustMorphism("h", objA, objB),
	)
	g, err := Layout(d, WithMode(Linear))
	require.NoError(t, err)
	assert.Equal(t, "A | B | C\n", g.String())
}

func TestLayout_Square(t *testing.T) {
	d := diagram(t, []category.DiagramOption{category.WithoutExpansion()},
		category.MustMorphism("f", objA, objB),
		category.MustMorphism("g", objB, objD),
		category.MustMorphism("h", objA, objC),
		category.MustMorphism("k", objC, objD),
	)
	g, err := Layout(d)
	require.NoError(t, err)
	assert.Equal(t, "A | B\nC | D\n", g.String())
	assert.Equal(t, 4, g.Cost(d))
}

func TestLayout_DisconnectedAndLoops(t *testing.T) {
	d := diagram(t, nil,
		category.MustMorphism("f", objA, objB),
		category.MustMorphism("loop", objX, objX),
	)
	g, err := Layout(d)
	require.NoError(t, err)
	requireComplete(t, d, g)
	assert.Equal(t, "A | B | X\n", g.String())
	assert.Equal(t, 1, g.Cost(d), "loops add nothing")
}

func star(t *testing.T, leaves int) *category.Diagram {
	hub := category.NewObject("H")
	ms := make([]category.Morphism, leaves)
	for i := range ms {
		ms[i] = category.MustMorphism(fmt.Sprintf("f%d", i), hub, category.NewObject(fmt.Sprintf("L%d", i)))
	}
	return diagram(t, nil, ms...)
}

func TestLayout_CrowdedHub(t *testing.T) {
	for _, leaves := range []int{8, 9, 12, 25, 30} {
		t.Run(fmt.Sprint(leaves), func(t *testing.T) {
			d := star(t, leaves)
			g, err := Layout(d)
			require.NoError(t, err)
			requireComplete(t, d, g)
			assert.Len(t, g.Cells(), leaves+1, "one cell per unit")
			assert.Equal(t, leaves+1, g.Len())
		})
	}
}

func TestLayout_CrowdedHubNearest(t *testing.T) {
	// The ninth leaf cannot touch the hub; it lands on the ring around
	// the 8-neighbourhood, two steps away.
	d := star(t, 9)
	g, err := Layout(d)
	require.NoError(t, err)
	hub, ok := g.Position(category.NewObject("H"))
	require.True(t, ok)
	far := 0
	for i := range 9 {
		pos, ok := g.Position(category.NewObject(fmt.Sprintf("L%d", i)))
		require.True(t, ok)
		dist := max(abs(pos.Row-hub.Row), abs(pos.Col-hub.Col))
		assert.LessOrEqual(t, dist, 2)
		if dist == 2 {
			far++
		}
	}
	assert.Equal(t, 1, far)
}

func TestLayout_Deterministic(t *testing.T) {
	d := diagram(t, nil,
		category.MustMorphism("f", objA, objB),
		category.MustMorphism("g", objB, objC),
		category.MustMorphism("h", objA, objD),
		category.MustMorphism("k", objD, objC),
		category.MustMorphism("l", objC, objX),
	)
	first, err := Layout(d)
	require.NoError(t, err)
	want, err := json.Marshal(first)
	require.NoError(t, err)

	for range 20 {
		g, err := Layout(d)
		require.NoError(t, err)
		got, err := json.Marshal(g)
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
	}
	requireComplete(t, d, first)
}

func TestLayout_GroupErrors(t *testing.T) {
	d := chain(t)

	tests := []struct {
		name      string
		groups    [][]category.Object
		want      error
		wantGroup int
	}{
		{"overlap", [][]category.Object{{objA, objB}, {objB, objC}}, ErrOverlappingGroups, 1},
		{"empty", [][]category.Object{{objA}, {}}, ErrEmptyGroup, 1},
		{"unknown", [][]category.Object{{objA, objX}}, ErrUnknownObject, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Layout(d, WithGroups(tt.groups...))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var le *LayoutError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.wantGroup, le.Group)
		})
	}
}

func TestLayout_InvalidMode(t *testing.T) {
	_, err := Layout(chain(t), WithMode(Mode(9)))
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = ParseMode("spiral")
	assert.ErrorIs(t, err, ErrInvalidMode)

	m, err := ParseMode("linear")
	require.NoError(t, err)
	assert.Equal(t, Linear, m)
}

func TestGrid_JSON(t *testing.T) {
	g, err := Layout(chain(t))
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"width":2,"height":2,"cells":[
		{"row":0,"col":0,"objects":["A"]},
		{"row":0,"col":1,"objects":["B"]},
		{"row":1,"col":1,"objects":["C"]}]}`, string(data))

	var back Grid
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g.String(), back.String())

	err = json.Unmarshal([]byte(`{"cells":[{"row":0,"col":0,"objects":["A"]},{"row":0,"col":1,"objects":["A"]}]}`), &back)
	assert.Error(t, err)
}
