package render

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/hschendel/stl"
	"github.com/soypat/facet"
	"github.com/soypat/glgl/math/ms3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
	// stlColorValid is set in the attribute word of triangles carrying a
	// 15-bit color: blue in bits 0..4, green 5..9, red 10..14.
	stlColorValid = 1 << 15
	// maxSTLPrealloc bounds the triangles allocated up front from the header count.
	maxSTLPrealloc = 1 << 16
)

// WriteBinarySTL writes the mesh's triangles to w in binary STL format.
// Indexed meshes are deindexed first, dropping their colors. If an
// unindexed mesh has colors each triangle's attribute word carries the
// color of its first vertex.
func WriteBinarySTL(w io.Writer, m *facet.Mesh) (int, error) {
	if m.IsIndexed() {
		var err error
		m, err = m.Deindexed()
		if err != nil {
			return 0, err
		}
	}
	nt := int64(m.NumTriangles()) // int64 cast so that next line works correctly on 32bit machines.
	if nt == 0 {
		return 0, errors.New("empty triangle mesh")
	} else if nt > math.MaxUint32 {
		return 0, errors.New("amount of triangles in model exceeds STL design limits")
	}
	header := stlHeader{
		Count: uint32(nt),
	}

	var buf [stlHeaderSize]byte
	header.put(buf[:])
	n, err := w.Write(buf[:stlHeaderSize])
	if err != nil {
		return n, err
	} else if n != len(buf) {
		return n, io.ErrShortWrite
	}
	var d stlTriangle
	hasColor := len(m.Colors) == len(m.Positions)
	triangles, _ := facet.ReadAllTriangles(m.Triangles())
	for i, triangle := range triangles {
		d = stlTriangleFrom(triangle)
		if hasColor {
			d.Attributes = packSTLColor(m.Colors[3*i])
		}
		d.put(buf[:])
		ngot, err := w.Write(buf[:stlTriangleSize])
		n += ngot
		if err != nil {
			return n, err
		} else if ngot != stlTriangleSize {
			return n, io.ErrShortWrite
		}
	}
	return n, nil
}

// ReadSTL reads a binary or ASCII STL model into an unindexed mesh.
// Binary triangles with a valid 15-bit color attribute produce a color buffer.
func ReadSTL(r io.Reader) (*facet.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if isBinarySTL(data) {
		return ReadBinarySTL(bytes.NewReader(data))
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return nil, errors.New("unrecognized STL data")
	}
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ascii STL: %w", err)
	}
	m := &facet.Mesh{Positions: make([]ms3.Vec, 0, 3*len(solid.Triangles))}
	for _, t := range solid.Triangles {
		for _, v := range t.Vertices {
			m.Positions = append(m.Positions, vecFromArray([3]float32(v)))
		}
	}
	return m, nil
}

func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize {
		return false
	}
	count := binary.LittleEndian.Uint32(data[80:])
	return int64(len(data)) == stlHeaderSize+int64(count)*stlTriangleSize
}

// ReadBinarySTL reads a binary STL model into an unindexed mesh.
func ReadBinarySTL(r io.Reader) (output *facet.Mesh, readErr error) {
	var hbuf [stlHeaderSize]byte
	if _, err := io.ReadFull(r, hbuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	var header stlHeader
	header.get(hbuf[:])
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf            [stlTriangleSize]byte
		d              stlTriangle
		i              int
		normMismatches int
		colored        bool
	)
	// The header count is untrusted so the initial allocation is bounded.
	capacity := 3 * int(min(header.Count, maxSTLPrealloc))
	output = &facet.Mesh{Positions: make([]ms3.Vec, 0, capacity)}
	colors := make([]facet.Color, 0, capacity)
	defer func() {
		if readErr != nil && !errors.Is(readErr, ErrNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if errors.Is(err, ErrNormalMismatch) {
				normMismatches++
				if normMismatches > 10_000 {
					// This may be valid output, so we return the triangles.
					return output, fmt.Errorf("got too many normal vector mismatches (%d)", normMismatches)
				}
				readErr = err
			} else {
				return nil, err
			}
		}
		t := d.Triangle()
		output.Positions = append(output.Positions, t[:]...)
		c, ok := unpackSTLColor(d.Attributes)
		colored = colored || ok
		colors = append(colors, c, c, c)
	}
	if colored {
		output.Colors = colors
	}
	// NormalMismatch error validation may be returned.
	// For high resolution models this error may be incorrectly returned.
	return output, readErr
}

func packSTLColor(c facet.Color) uint16 {
	q := func(v float32) uint16 { return uint16(math32.Max(0, math32.Min(1, v))*31 + 0.5) }
	return stlColorValid | q(c.R)<<10 | q(c.G)<<5 | q(c.B)
}

func unpackSTLColor(attr uint16) (facet.Color, bool) {
	if attr&stlColorValid == 0 {
		return facet.Color{}, false
	}
	f := func(shift uint) float32 { return float32(attr>>shift&0x1f) / 31 }
	return facet.Color{R: f(10), G: f(5), B: f(0)}, true
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

func (h stlHeader) put(b []byte) {
	_ = b[83] //early bounds check
	binary.LittleEndian.PutUint32(b[80:], h.Count)
}

func (h *stlHeader) get(b []byte) {
	_ = b[83] //early bounds check
	h.Count = binary.LittleEndian.Uint32(b[80:])
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal     [3]float32
	Vertex1    [3]float32
	Vertex2    [3]float32
	Vertex3    [3]float32
	Attributes uint16
}

func stlTriangleFrom(t ms3.Triangle) stlTriangle {
	var d stlTriangle
	norm := ms3.Unit(t.Normal())
	d.Normal = [3]float32{norm.X, norm.Y, norm.Z}
	d.Vertex1 = [3]float32{t[0].X, t[0].Y, t[0].Z}
	d.Vertex2 = [3]float32{t[1].X, t[1].Y, t[1].Z}
	d.Vertex3 = [3]float32{t[2].X, t[2].Y, t[2].Z}
	return d
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], t.Attributes)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	t.Attributes = binary.LittleEndian.Uint16(b[48:])
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

// ErrNormalMismatch is returned alongside the triangles read when a stored
// STL normal does not match the one computed from the triangle's vertices.
// The model is usually fine.
var ErrNormalMismatch = errors.New("mismatch normal")

func (t stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if t.Triangle().IsDegenerate(epsilon) {
		return errors.New("triangle is degenerate")
	}
	gotNormal := vecFromArray(t.Normal)
	calcNormal := t.normalFromVertices()
	calcNormalNeg := ms3.Scale(-1, calcNormal)

	if !vecWithin(calcNormal, gotNormal, normTol) && !vecWithin(calcNormalNeg, gotNormal, normTol) {
		return ErrNormalMismatch // sometimes may fail
	}
	return nil
}

// vecWithin reports whether every component of a and b differs by at most tol.
func vecWithin(a, b ms3.Vec, tol float32) bool {
	return math32.Abs(a.X-b.X) <= tol && math32.Abs(a.Y-b.Y) <= tol && math32.Abs(a.Z-b.Z) <= tol
}

func vecFromArray(f [3]float32) ms3.Vec {
	return ms3.Vec{X: f[0], Y: f[1], Z: f[2]}
}

func (t stlTriangle) normalFromVertices() ms3.Vec {
	v1 := ms3.Scale(10, vecFromArray(t.Vertex1))
	v2 := ms3.Scale(10, vecFromArray(t.Vertex2))
	v3 := ms3.Scale(10, vecFromArray(t.Vertex3))
	e1 := ms3.Sub(v2, v1)
	e2 := ms3.Sub(v3, v1)
	return ms3.Unit(ms3.Cross(e1, e2))
}

func (t stlTriangle) Triangle() ms3.Triangle {
	return ms3.Triangle{vecFromArray(t.Vertex1), vecFromArray(t.Vertex2), vecFromArray(t.Vertex3)}
}
