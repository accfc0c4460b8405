// Package facet paints every triangle of a mesh a single flat color.
// Indexed meshes are deindexed first so no vertex is shared between
// triangles, then a color strategy assigns each triangle its color.
package facet

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Topology is the primitive type a mesh's vertex sequence describes.
type Topology uint8

const (
	Triangles Topology = iota
	Lines
	Points
)

func (t Topology) String() string {
	switch t {
	case Triangles:
		return "triangles"
	case Lines:
		return "lines"
	case Points:
		return "points"
	}
	return fmt.Sprintf("Topology(%d)", uint8(t))
}

var (
	ErrIndexOutOfRange = errors.New("mesh index out of range")
	errNonFinite       = errors.New("inf/NaN mesh vertex")
)

// Mesh is a surface mesh. When Indices is nil the mesh is unindexed and
// every three consecutive positions form a triangle. Colors, when present,
// runs parallel to Positions with one RGB triple per vertex.
type Mesh struct {
	Positions []ms3.Vec
	Indices   []uint32
	Colors    []Color
	Topology  Topology
}

// IsIndexed reports whether triangles reference shared vertices through Indices.
func (m *Mesh) IsIndexed() bool { return m.Indices != nil }

// NumTriangles returns the number of whole triangles described by the mesh.
func (m *Mesh) NumTriangles() int {
	if m.Topology != Triangles {
		return 0
	}
	if m.IsIndexed() {
		return len(m.Indices) / 3
	}
	return len(m.Positions) / 3
}

// Validate checks indices are in range and all positions are finite.
func (m *Mesh) Validate() error {
	for i, p := range m.Positions {
		if badVec(p) {
			return fmt.Errorf("vertex %d: %w", i, errNonFinite)
		}
	}
	if m.Colors != nil && len(m.Colors) != len(m.Positions) {
		return fmt.Errorf("got %d colors for %d vertices", len(m.Colors), len(m.Positions))
	}
	n := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("index %d references vertex %d of %d: %w", i, idx, n, ErrIndexOutOfRange)
		}
	}
	return nil
}

// Deindexed returns a copy of the mesh in which every triangle owns three
// private vertices. For an indexed mesh the k'th output vertex is a copy of
// the vertex referenced by the k'th index. An unindexed mesh is copied as is.
// A trailing partial triangle is dropped in both cases so the returned vertex
// count is always a multiple of 3. Colors are not carried over.
func (m *Mesh) Deindexed() (*Mesh, error) {
	if !m.IsIndexed() {
		n := aligndown3(len(m.Positions))
		pos := make([]ms3.Vec, n)
		copy(pos, m.Positions)
		return &Mesh{Positions: pos, Topology: m.Topology}, nil
	}
	n := aligndown3(len(m.Indices))
	pos := make([]ms3.Vec, n)
	nv := uint32(len(m.Positions))
	for k, idx := range m.Indices[:n] {
		if idx >= nv {
			return nil, fmt.Errorf("index %d references vertex %d of %d: %w", k, idx, nv, ErrIndexOutOfRange)
		}
		pos[k] = m.Positions[idx]
	}
	return &Mesh{Positions: pos, Topology: m.Topology}, nil
}

// Bounds returns the axis aligned bounding box of the mesh positions.
func (m *Mesh) Bounds() ms3.Box {
	if len(m.Positions) == 0 {
		return ms3.Box{}
	}
	bb := ms3.Box{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		bb.Min = ms3.Vec{X: math32.Min(bb.Min.X, p.X), Y: math32.Min(bb.Min.Y, p.Y), Z: math32.Min(bb.Min.Z, p.Z)}
		bb.Max = ms3.Vec{X: math32.Max(bb.Max.X, p.X), Y: math32.Max(bb.Max.Y, p.Y), Z: math32.Max(bb.Max.Z, p.Z)}
	}
	return bb
}

func aligndown3(n int) int { return n - n%3 }

func badVec(v ms3.Vec) bool {
	return math32.IsNaN(v.X) || math32.IsInf(v.X, 0) ||
		math32.IsNaN(v.Y) || math32.IsInf(v.Y, 0) ||
		math32.IsNaN(v.Z) || math32.IsInf(v.Z, 0)
}
