package facet_test

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/facet"
	"github.com/soypat/facet/form3"
	"github.com/soypat/glgl/math/ms3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-3

func TestHSL(t *testing.T) {
	for _, test := range []struct {
		h, s, l float32
		want    facet.Color
	}{
		{h: 0, s: 0.8, l: 0.5, want: facet.Color{R: 0.9, G: 0.1, B: 0.1}},
		{h: 0.6, s: 0.8, l: 0.5, want: facet.Color{R: 0.1, G: 0.42, B: 0.9}},
		{h: 1.6, s: 0.8, l: 0.5, want: facet.Color{R: 0.1, G: 0.42, B: 0.9}},
		{h: 0.3, s: 0, l: 0.8, want: facet.Gray},
	} {
		got := facet.HSL(test.h, test.s, test.l)
		assert.InDelta(t, test.want.R, got.R, tol, "hsl(%g,%g,%g)", test.h, test.s, test.l)
		assert.InDelta(t, test.want.G, got.G, tol, "hsl(%g,%g,%g)", test.h, test.s, test.l)
		assert.InDelta(t, test.want.B, got.B, tol, "hsl(%g,%g,%g)", test.h, test.s, test.l)
	}
}

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, facet.StrategyRandom, facet.ParseStrategy("random"))
	assert.Equal(t, facet.StrategyByHeight, facet.ParseStrategy("byHeight"))
	for _, name := range []string{"BYHEIGHT", "byheight", "height", "Random", " random", "sparkles", ""} {
		assert.Equal(t, facet.StrategyGray, facet.ParseStrategy(name), "%q", name)
	}
	assert.Equal(t, "byHeight", facet.StrategyByHeight.String())
}

func TestParseAxis(t *testing.T) {
	a, err := facet.ParseAxis("Y")
	require.NoError(t, err)
	assert.Equal(t, facet.AxisY, a)
	a, err = facet.ParseAxis("")
	require.NoError(t, err)
	assert.Equal(t, facet.AxisZ, a)
	_, err = facet.ParseAxis("w")
	assert.Error(t, err)
}

// assertFlat checks the three vertices of every triangle share one color.
func assertFlat(t *testing.T, m *facet.Mesh) {
	t.Helper()
	require.Len(t, m.Colors, len(m.Positions))
	require.Zero(t, len(m.Positions)%3)
	for i := 0; i < len(m.Colors); i += 3 {
		assert.Equal(t, m.Colors[i], m.Colors[i+1], "triangle %d", i/3)
		assert.Equal(t, m.Colors[i], m.Colors[i+2], "triangle %d", i/3)
	}
}

func TestColorizeByHeightBox(t *testing.T) {
	box, err := form3.Box(ms3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	form3.Translate(box, ms3.Vec{Z: 0.5}) // bottom at 0, top at 1
	m, err := facet.ColorizeStrategy(box, facet.Options{Strategy: facet.StrategyByHeight})
	require.NoError(t, err)
	require.Len(t, m.Positions, 36)
	assertFlat(t, m)
	assert.True(t, box.IsIndexed(), "input modified")
	assert.Nil(t, box.Colors, "input modified")

	hue := func(tri int) float32 {
		h := m.Colors[3*tri].Hue()
		if h > 0.9 {
			h-- // red wraps around
		}
		return h
	}
	// Bottom face is blue, top face is red.
	assert.InDelta(t, 0.6, hue(0), tol)
	assert.InDelta(t, 0.6, hue(1), tol)
	assert.InDelta(t, 0, hue(2), tol)
	assert.InDelta(t, 0, hue(3), tol)
	for tri := 4; tri < 12; tri++ {
		h := hue(tri)
		if math32.Abs(h-0.2) > tol && math32.Abs(h-0.4) > tol {
			t.Errorf("side triangle %d: hue %g not in {0.2, 0.4}", tri, h)
		}
	}
}

func TestHeightHueMonotonic(t *testing.T) {
	minZ, maxZ := facet.HeightRange([]ms3.Vec{{Z: -2}, {Z: 3}}, facet.AxisZ)
	require.Equal(t, float32(-2), minZ)
	require.Equal(t, float32(3), maxZ)
	prev := float32(1)
	for z := float32(-2); z <= 3; z += 0.25 {
		h := facet.HeightHue(z, minZ, maxZ)
		want := (1 - (z-minZ)/(maxZ-minZ)) * 0.6
		assert.InDelta(t, want, h, 1e-5)
		assert.LessOrEqual(t, h, prev)
		prev = h
	}
	assert.Equal(t, float32(0.6), facet.HeightHue(-10, minZ, maxZ))
	assert.Equal(t, float32(0), facet.HeightHue(10, minZ, maxZ))
}

func TestColorizeFlatMesh(t *testing.T) {
	flat := &facet.Mesh{Positions: []ms3.Vec{{X: 0}, {X: 1}, {Y: 1}}}
	minZ, maxZ := facet.HeightRange(flat.Positions, facet.AxisZ)
	assert.Equal(t, float32(-0.5), minZ)
	assert.Equal(t, float32(0.5), maxZ)

	m, err := facet.ColorizeStrategy(flat, facet.Options{Strategy: facet.StrategyByHeight})
	require.NoError(t, err)
	assertFlat(t, m)
	c := m.Colors[0]
	for _, v := range []float32{c.R, c.G, c.B} {
		assert.False(t, math32.IsNaN(v) || math32.IsInf(v, 0))
	}
	assert.InDelta(t, 0.3, c.Hue(), tol)
}

func TestColorizeUpAxis(t *testing.T) {
	// Rising along Y only: with Y up the top triangle is red.
	m := &facet.Mesh{Positions: []ms3.Vec{
		{Y: 0}, {X: 1}, {Z: 1},
		{Y: 5}, {X: 1, Y: 5}, {Y: 5, Z: 1},
	}}
	out, err := facet.ColorizeStrategy(m, facet.Options{Strategy: facet.StrategyByHeight, Up: facet.AxisY})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, out.Colors[0].Hue(), tol)
	assert.InDelta(t, 0, out.Colors[3].Hue(), tol)
}

func TestColorizeRandom(t *testing.T) {
	sphere, err := form3.UVSphere(1, 6, 8)
	require.NoError(t, err)
	opts := facet.Options{Strategy: facet.StrategyRandom, Rand: rand.New(rand.NewSource(1))}
	m, err := facet.ColorizeStrategy(sphere, opts)
	require.NoError(t, err)
	assertFlat(t, m)
	distinct := make(map[facet.Color]bool)
	for i := 0; i < len(m.Colors); i += 3 {
		c := m.Colors[i]
		hi := math32.Max(c.R, math32.Max(c.G, c.B))
		lo := math32.Min(c.R, math32.Min(c.G, c.B))
		assert.InDelta(t, 0.5, (hi+lo)/2, tol, "lightness")
		assert.InDelta(t, 0.7, hi-lo, tol, "chroma")
		distinct[c] = true
	}
	assert.Greater(t, len(distinct), 1)

	opts.Rand = rand.New(rand.NewSource(1))
	again, err := facet.ColorizeStrategy(sphere, opts)
	require.NoError(t, err)
	assert.Equal(t, m.Colors, again.Colors, "same seed gave different colors")
}

func TestColorizeUnknownStrategy(t *testing.T) {
	for _, name := range []string{"plaid", "height", "Random", " random", "BYHEIGHT"} {
		m, err := facet.ColorizeStrategy(&quad, facet.Options{Strategy: facet.ParseStrategy(name)})
		require.NoError(t, err)
		require.Len(t, m.Colors, 6)
		for _, c := range m.Colors {
			assert.Equal(t, facet.Gray, c, "strategy %q", name)
		}
	}
}

func TestColorizeTriangleIndex(t *testing.T) {
	var seen []int
	m, err := facet.Colorize(&quad, func(tri int, _ ms3.Triangle) facet.Color {
		seen = append(seen, tri)
		return facet.Color{R: float32(tri)}
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, seen)
	assert.Equal(t, float32(1), m.Colors[5].R)
}

func TestColorizeRejectsLines(t *testing.T) {
	_, err := facet.ColorizeStrategy(&facet.Mesh{Positions: make([]ms3.Vec, 4), Topology: facet.Lines}, facet.Options{})
	assert.Error(t, err)
}

func TestWriteTriangleColor(t *testing.T) {
	colors := make([]facet.Color, 6)
	facet.WriteTriangleColor(colors, 3, facet.Gray)
	assert.Equal(t, facet.Color{}, colors[2])
	assert.Equal(t, []facet.Color{facet.Gray, facet.Gray, facet.Gray}, colors[3:])
	assert.Panics(t, func() { facet.WriteTriangleColor(colors, 4, facet.Gray) })
}
