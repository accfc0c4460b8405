package facet

import (
	"io"

	"github.com/soypat/glgl/math/ms3"
)

// TriangleReader reads triangles into dst. Implementations return io.EOF
// once all triangles have been read.
type TriangleReader interface {
	ReadTriangles(dst []ms3.Triangle) (n int, err error)
}

// TriangleIter walks an unindexed vertex sequence three vertices at a time.
type TriangleIter struct {
	pos  []ms3.Vec
	next int
}

// Triangles returns an iterator over the mesh's triangles. The mesh must be
// unindexed (see [Mesh.Deindexed]); a trailing partial triangle is never read.
func (m *Mesh) Triangles() *TriangleIter {
	if m.IsIndexed() {
		panic("facet: Triangles called on indexed mesh")
	}
	return &TriangleIter{pos: m.Positions[:aligndown3(len(m.Positions))]}
}

// Vertex returns the vertex slot at which the next triangle read starts.
func (it *TriangleIter) Vertex() int { return it.next }

// ReadTriangles implements [TriangleReader].
func (it *TriangleIter) ReadTriangles(dst []ms3.Triangle) (n int, err error) {
	if len(dst) == 0 {
		return 0, io.ErrShortBuffer
	}
	for n < len(dst) && it.next < len(it.pos) {
		dst[n] = ms3.Triangle{it.pos[it.next], it.pos[it.next+1], it.pos[it.next+2]}
		it.next += 3
		n++
	}
	if it.next >= len(it.pos) {
		return n, io.EOF
	}
	return n, nil
}

// ReadAllTriangles reads the full contents of a TriangleReader.
// It does not return error on io.EOF.
func ReadAllTriangles(r TriangleReader) ([]ms3.Triangle, error) {
	var err error
	var nt int
	result := make([]ms3.Triangle, 0, 1024)
	buf := make([]ms3.Triangle, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}
