package facet

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// ColorFunc computes the flat color of the triangle at index tri.
type ColorFunc func(tri int, t ms3.Triangle) Color

// Strategy selects how triangle colors are chosen. The zero value paints
// every triangle [Gray].
type Strategy uint8

const (
	StrategyGray Strategy = iota
	StrategyRandom
	StrategyByHeight
)

// ParseStrategy maps the exact names "random" and "byHeight" to their
// Strategy. Any other name maps to StrategyGray.
func ParseStrategy(name string) Strategy {
	switch name {
	case "random":
		return StrategyRandom
	case "byHeight":
		return StrategyByHeight
	}
	return StrategyGray
}

func (s Strategy) String() string {
	switch s {
	case StrategyGray:
		return "gray"
	case StrategyRandom:
		return "random"
	case StrategyByHeight:
		return "byHeight"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// Axis selects a coordinate of a position.
type Axis uint8

const (
	AxisZ Axis = iota
	AxisX
	AxisY
)

// ParseAxis parses "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z", "":
		return AxisZ, nil
	}
	return AxisZ, fmt.Errorf("invalid axis %q", s)
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	}
	return "z"
}

// Of returns the component of v along a.
func (a Axis) Of(v ms3.Vec) float32 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	}
	return v.Z
}

// Options configures a colorization pass.
type Options struct {
	Strategy Strategy
	// Up is the height axis used by StrategyByHeight.
	Up Axis
	// Rand is the source for StrategyRandom. If nil a time seeded source is used.
	Rand *rand.Rand
}

const (
	randomSaturation  = 0.7
	randomLightness   = 0.5
	heightSaturation  = 0.8
	heightLightness   = 0.5
	heightHueRange    = 0.6
	flatHeightPadding = 0.5
)

// ColorFunc returns the strategy's color function for mesh m, which must
// be unindexed. StrategyByHeight scans m once to find its height range.
func (s Strategy) ColorFunc(m *Mesh, opts Options) ColorFunc {
	switch s {
	case StrategyRandom:
		rng := opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return RandomColors(rng)
	case StrategyByHeight:
		minZ, maxZ := HeightRange(m.Positions, opts.Up)
		return HeightColors(opts.Up, minZ, maxZ)
	}
	return func(int, ms3.Triangle) Color { return Gray }
}

// RandomColors returns a ColorFunc assigning each triangle a uniformly random hue.
func RandomColors(rng *rand.Rand) ColorFunc {
	return func(int, ms3.Triangle) Color {
		return HSL(rng.Float32(), randomSaturation, randomLightness)
	}
}

// HeightRange returns the minimum and maximum of positions along up.
// A flat or empty range is widened by 0.5 on each side.
func HeightRange(positions []ms3.Vec, up Axis) (minZ, maxZ float32) {
	minZ, maxZ = math32.Inf(1), math32.Inf(-1)
	for _, p := range positions {
		z := up.Of(p)
		minZ = math32.Min(minZ, z)
		maxZ = math32.Max(maxZ, z)
	}
	if len(positions) == 0 {
		minZ, maxZ = 0, 0
	}
	if minZ == maxZ {
		minZ -= flatHeightPadding
		maxZ += flatHeightPadding
	}
	return minZ, maxZ
}

// HeightHue maps a triangle's average height to a hue in [0, 0.6]:
// 0.6 at minZ, 0 at maxZ.
func HeightHue(avgZ, minZ, maxZ float32) float32 {
	t := clamp01((avgZ - minZ) / (maxZ - minZ))
	return (1 - t) * heightHueRange
}

// HeightColors returns a ColorFunc grading triangles from blue at minZ to red at maxZ.
func HeightColors(up Axis, minZ, maxZ float32) ColorFunc {
	return func(_ int, t ms3.Triangle) Color {
		avgZ := (up.Of(t[0]) + up.Of(t[1]) + up.Of(t[2])) / 3
		return HSL(HeightHue(avgZ, minZ, maxZ), heightSaturation, heightLightness)
	}
}
