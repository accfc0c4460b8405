// Package form3 builds indexed triangle meshes of basic shapes. Vertices
// are shared between adjacent triangles and faces wind counter-clockwise
// when seen from outside.
package form3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/facet"
	"github.com/soypat/glgl/math/ms3"
)

// boxFaces indexes the 8 box corners, where corner i has x, y and z set
// from bits 0, 1 and 2 of i. Bottom, top, then the four sides.
var boxFaces = [36]uint32{
	0, 2, 3, 0, 3, 1, // z-
	4, 5, 7, 4, 7, 6, // z+
	0, 1, 5, 0, 5, 4, // y-
	2, 6, 7, 2, 7, 3, // y+
	0, 4, 6, 0, 6, 2, // x-
	1, 3, 7, 1, 7, 5, // x+
}

// Box returns a box of the given dimensions centered at the origin:
// 8 shared vertices and 12 triangles.
func Box(dims ms3.Vec) (*facet.Mesh, error) {
	if dims.X <= 0 || dims.Y <= 0 || dims.Z <= 0 {
		return nil, ErrMsg("box dimensions must be positive")
	}
	h := ms3.Scale(0.5, dims)
	pos := make([]ms3.Vec, 8)
	for i := range pos {
		pos[i] = ms3.Vec{
			X: sel(i&1 != 0, h.X, -h.X),
			Y: sel(i&2 != 0, h.Y, -h.Y),
			Z: sel(i&4 != 0, h.Z, -h.Z),
		}
	}
	idx := make([]uint32, len(boxFaces))
	copy(idx, boxFaces[:])
	return &facet.Mesh{Positions: pos, Indices: idx}, nil
}

// Grid returns a height field of nx by ny cells spanning [0,dx*nx] by
// [0,dy*ny] in the XY plane, with each vertex raised along Z by height.
// A nil height gives a flat grid.
func Grid(nx, ny int, dx, dy float32, height func(x, y float32) float32) (*facet.Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, ErrMsg("grid needs at least one cell per direction")
	} else if dx <= 0 || dy <= 0 {
		return nil, ErrMsg("grid cell size must be positive")
	}
	if height == nil {
		height = func(x, y float32) float32 { return 0 }
	}
	row := nx + 1
	pos := make([]ms3.Vec, 0, row*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			x, y := float32(i)*dx, float32(j)*dy
			pos = append(pos, ms3.Vec{X: x, Y: y, Z: height(x, y)})
		}
	}
	idx := make([]uint32, 0, 6*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := uint32(j*row + i)
			b := a + 1
			c := a + uint32(row)
			d := c + 1
			idx = append(idx, a, b, d, a, d, c)
		}
	}
	return &facet.Mesh{Positions: pos, Indices: idx}, nil
}

// UVSphere returns a sphere centered at the origin with poles on the Z axis.
func UVSphere(radius float32, rings, slices int) (*facet.Mesh, error) {
	if radius <= 0 {
		return nil, ErrMsg("sphere radius must be positive")
	} else if rings < 2 || slices < 3 {
		return nil, ErrMsg("sphere needs at least 2 rings and 3 slices")
	}
	nring := rings - 1
	pos := make([]ms3.Vec, 0, 2+nring*slices)
	pos = append(pos, ms3.Vec{Z: radius})
	for k := 1; k <= nring; k++ {
		theta := math32.Pi * float32(k) / float32(rings)
		z, rho := radius*math32.Cos(theta), radius*math32.Sin(theta)
		for s := 0; s < slices; s++ {
			phi := 2 * math32.Pi * float32(s) / float32(slices)
			pos = append(pos, ms3.Vec{X: rho * math32.Cos(phi), Y: rho * math32.Sin(phi), Z: z})
		}
	}
	pos = append(pos, ms3.Vec{Z: -radius})
	south := uint32(len(pos) - 1)
	ring := func(k, s int) uint32 { return uint32(1 + (k-1)*slices + s%slices) }

	idx := make([]uint32, 0, 6*slices*rings)
	for s := 0; s < slices; s++ {
		idx = append(idx, 0, ring(1, s), ring(1, s+1))
	}
	for k := 1; k < nring; k++ {
		for s := 0; s < slices; s++ {
			a, b := ring(k, s), ring(k, s+1)
			c, d := ring(k+1, s), ring(k+1, s+1)
			idx = append(idx, a, c, d, a, d, b)
		}
	}
	for s := 0; s < slices; s++ {
		idx = append(idx, south, ring(nring, s+1), ring(nring, s))
	}
	return &facet.Mesh{Positions: pos, Indices: idx}, nil
}

// Translate moves every vertex of m by d in place.
func Translate(m *facet.Mesh, d ms3.Vec) {
	for i := range m.Positions {
		m.Positions[i] = ms3.Add(m.Positions[i], d)
	}
}

func sel(cond bool, a, b float32) float32 {
	if cond {
		return a
	}
	return b
}
