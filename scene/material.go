package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/facet"
)

// Side selects which faces of a surface are drawn.
type Side uint8

const (
	SideFront Side = iota // front faces only; back faces are culled
	SideBack
	SideDouble
)

func (s Side) String() string {
	switch s {
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	case SideDouble:
		return "double"
	}
	return fmt.Sprintf("Side(%d)", uint8(s))
}

// DefaultShininess is the specular exponent of [DefaultMaterial].
const DefaultShininess = 30

// Material describes how a solid's surface is shaded.
type Material struct {
	// Side selects the drawn faces.
	Side Side

	// Shininess is the specular exponent: 0 is a very broad reflection,
	// larger values give a smaller, more focal highlight.
	Shininess float32

	// VertexColors enables per-vertex colors from the mesh's color buffer,
	// replacing Color.
	VertexColors bool

	// FlatShading shades each triangle with its face normal.
	FlatShading bool

	// Color is the uniform surface color used when VertexColors is off.
	Color facet.Color
}

// DefaultMaterial returns a smooth shaded gray material drawing front faces.
func DefaultMaterial() *Material {
	return &Material{
		Side:      SideFront,
		Shininess: DefaultShininess,
		Color:     facet.Gray,
	}
}

// Validate reports whether the material can be used to derive another one.
func (mt *Material) Validate() error {
	if mt.Side > SideDouble {
		return fmt.Errorf("invalid material side %d", mt.Side)
	}
	if math32.IsNaN(mt.Shininess) || math32.IsInf(mt.Shininess, 0) || mt.Shininess < 0 {
		return fmt.Errorf("invalid material shininess %g", mt.Shininess)
	}
	return nil
}

// Rebind derives a flat shaded, vertex colored material from src, copying
// its side and shininess. A nil or invalid src is replaced by
// [DefaultMaterial]. src is not modified.
func Rebind(src *Material) *Material {
	base := DefaultMaterial()
	if src != nil && src.Validate() == nil {
		base.Side = src.Side
		base.Shininess = src.Shininess
	}
	return &Material{
		Side:         base.Side,
		Shininess:    base.Shininess,
		VertexColors: true,
		FlatShading:  true,
		Color:        facet.Color{R: 1, G: 1, B: 1},
	}
}
