package facet

import (
	"errors"

	"github.com/soypat/glgl/math/ms3"
)

// WriteTriangleColor writes c to the three vertex slots starting at tri.
func WriteTriangleColor(colors []Color, tri int, c Color) {
	_ = colors[tri+2] // early bounds check
	colors[tri] = c
	colors[tri+1] = c
	colors[tri+2] = c
}

// Colorize deindexes m and returns a copy carrying one flat color per
// triangle as computed by fn. m itself is not modified.
func Colorize(m *Mesh, fn ColorFunc) (*Mesh, error) {
	return colorize(m, func(*Mesh) ColorFunc { return fn })
}

// ColorizeStrategy is like [Colorize] with the color function built from opts
// over the deindexed mesh.
func ColorizeStrategy(m *Mesh, opts Options) (*Mesh, error) {
	return colorize(m, func(d *Mesh) ColorFunc { return opts.Strategy.ColorFunc(d, opts) })
}

func colorize(m *Mesh, colorFunc func(deindexed *Mesh) ColorFunc) (*Mesh, error) {
	if m.Topology != Triangles {
		return nil, errors.New("colorize requires a triangle mesh")
	}
	out, err := m.Deindexed()
	if err != nil {
		return nil, err
	}
	out.Colors = make([]Color, len(out.Positions))
	paintTriangles(out, colorFunc(out))
	return out, nil
}

func paintTriangles(m *Mesh, fn ColorFunc) {
	var buf [256]ms3.Triangle
	it := m.Triangles()
	for {
		first := it.Vertex()
		n, err := it.ReadTriangles(buf[:])
		for i, t := range buf[:n] {
			slot := first + 3*i
			WriteTriangleColor(m.Colors, slot, fn(slot/3, t))
		}
		if err != nil {
			return // io.EOF is the only error for a non-empty buffer.
		}
	}
}
