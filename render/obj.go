package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/facet"
	"github.com/soypat/glgl/math/ms3"
)

// ReadOBJ reads a Wavefront OBJ or OBJA model into an indexed mesh.
//
// Supported commands are v (with optional r g b vertex color), f (polygons
// are fan triangulated), l and p, plus the OBJA commands ev, ef, df and fc.
// Other commands are ignored. A model without faces results in a Lines or
// Points mesh. Face colors given by fc produce an unindexed mesh so each
// face owns its vertices' colors.
func ReadOBJ(r io.Reader) (*facet.Mesh, error) {
	var (
		p      objParser
		lineNo int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := p.command(fields[0], fields[1:]); err != nil {
			return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p.mesh(), nil
}

type objParser struct {
	pos        []ms3.Vec
	colors     []facet.Color
	ncolor     int // vertices with an explicit color
	faces      [][3]uint32
	deleted    []bool
	faceColors map[int]facet.Color
	lines      []uint32
	points     []uint32
}

func (p *objParser) command(cmd string, args []string) error {
	switch cmd {
	case "v":
		if len(args) < 3 {
			return errors.New("vertex command requires 3 arguments")
		}
		v, err := parseVec(args[:3])
		if err != nil {
			return err
		}
		p.pos = append(p.pos, v)
		var c facet.Color
		if len(args) >= 6 {
			rgb, err := parseVec(args[3:6])
			if err != nil {
				return err
			}
			c = facet.Color{R: rgb.X, G: rgb.Y, B: rgb.Z}
			p.ncolor++
		}
		p.colors = append(p.colors, c)

	case "f":
		if len(args) < 3 {
			return errors.New("face command requires at least 3 arguments")
		}
		idx, err := p.vertexRefs(args)
		if err != nil {
			return err
		}
		for i := 1; i+1 < len(idx); i++ {
			p.faces = append(p.faces, [3]uint32{idx[0], idx[i], idx[i+1]})
			p.deleted = append(p.deleted, false)
		}

	case "l":
		if len(args) < 2 {
			return errors.New("line command requires at least 2 arguments")
		}
		idx, err := p.vertexRefs(args)
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(idx); i++ {
			p.lines = append(p.lines, idx[i], idx[i+1])
		}

	case "p":
		idx, err := p.vertexRefs(args)
		if err != nil {
			return err
		}
		p.points = append(p.points, idx...)

	case "ev":
		if len(args) != 4 {
			return errors.New("edit vertex command requires 4 arguments")
		}
		i, err := p.vertexRef(args[0])
		if err != nil {
			return err
		}
		v, err := parseVec(args[1:])
		if err != nil {
			return err
		}
		p.pos[i] = v

	case "ef":
		if len(args) != 4 {
			return errors.New("edit face command requires 4 arguments")
		}
		fi, err := p.faceRef(args[0])
		if err != nil {
			return err
		}
		idx, err := p.vertexRefs(args[1:])
		if err != nil {
			return err
		}
		p.faces[fi] = [3]uint32{idx[0], idx[1], idx[2]}

	case "df":
		if len(args) != 1 {
			return errors.New("delete face command requires 1 argument")
		}
		fi, err := p.faceRef(args[0])
		if err != nil {
			return err
		}
		p.deleted[fi] = true

	case "fc":
		if len(args) != 4 {
			return errors.New("face color command requires 4 arguments")
		}
		fi, err := p.faceRef(args[0])
		if err != nil {
			return err
		}
		rgb, err := parseVec(args[1:])
		if err != nil {
			return err
		}
		if p.faceColors == nil {
			p.faceColors = make(map[int]facet.Color)
		}
		p.faceColors[fi] = facet.Color{R: rgb.X, G: rgb.Y, B: rgb.Z}
	}
	return nil
}

func (p *objParser) mesh() *facet.Mesh {
	m := &facet.Mesh{Positions: p.pos}
	if p.ncolor > 0 && p.ncolor == len(p.pos) {
		m.Colors = p.colors
	}
	switch {
	case len(p.faces) > 0 && len(p.faceColors) > 0:
		m.Colors = make([]facet.Color, 0, 3*len(p.faces))
		m.Positions = make([]ms3.Vec, 0, 3*len(p.faces))
		for i, f := range p.faces {
			if p.deleted[i] {
				continue
			}
			c, ok := p.faceColors[i]
			if !ok {
				c = facet.Gray
			}
			m.Positions = append(m.Positions, p.pos[f[0]], p.pos[f[1]], p.pos[f[2]])
			m.Colors = append(m.Colors, c, c, c)
		}
	case len(p.faces) > 0:
		m.Indices = make([]uint32, 0, 3*len(p.faces))
		for i, f := range p.faces {
			if !p.deleted[i] {
				m.Indices = append(m.Indices, f[:]...)
			}
		}
	case len(p.lines) > 0:
		m.Topology = facet.Lines
		m.Indices = p.lines
	case len(p.points) > 0:
		m.Topology = facet.Points
		m.Indices = p.points
	case len(p.pos) > 0:
		m.Topology = facet.Points
	}
	return m
}

func (p *objParser) vertexRefs(args []string) ([]uint32, error) {
	idx := make([]uint32, len(args))
	for i, arg := range args {
		v, err := p.vertexRef(arg)
		if err != nil {
			return nil, err
		}
		idx[i] = v
	}
	return idx, nil
}

// vertexRef resolves a 1-based or negative (relative) vertex reference.
// Texture and normal references after a slash are ignored.
func (p *objParser) vertexRef(arg string) (uint32, error) {
	if i := strings.IndexByte(arg, '/'); i >= 0 {
		arg = arg[:i]
	}
	return resolveRef(arg, len(p.pos), "vertex")
}

func (p *objParser) faceRef(arg string) (int, error) {
	i, err := resolveRef(arg, len(p.faces), "face")
	return int(i), err
}

func resolveRef(arg string, n int, what string) (uint32, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("bad %s reference %q", what, arg)
	}
	if i < 0 {
		i += n
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%s reference %s out of range [1,%d]: %w", what, arg, n, facet.ErrIndexOutOfRange)
	}
	return uint32(i), nil
}

func parseVec(args []string) (ms3.Vec, error) {
	var f [3]float32
	for i := range f {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return ms3.Vec{}, fmt.Errorf("bad coordinate %q", args[i])
		}
		f[i] = float32(v)
	}
	return vecFromArray(f), nil
}

// WriteOBJ writes the mesh in OBJ format. Vertex colors, when present, are
// appended to each vertex line as "v x y z r g b".
func WriteOBJ(w io.Writer, m *facet.Mesh) error {
	bw := bufio.NewWriter(w)
	hasColor := len(m.Colors) == len(m.Positions)
	for i, v := range m.Positions {
		bw.WriteString("v ")
		writeFloats(bw, v.X, v.Y, v.Z)
		if hasColor {
			c := m.Colors[i]
			bw.WriteByte(' ')
			writeFloats(bw, c.R, c.G, c.B)
		}
		bw.WriteByte('\n')
	}
	cmd, stride := "f", 3
	switch m.Topology {
	case facet.Lines:
		cmd, stride = "l", 2
	case facet.Points:
		cmd, stride = "p", 1
	}
	idx := elementIndices(m, stride)
	for i := 0; i+stride <= len(idx); i += stride {
		bw.WriteString(cmd)
		for _, k := range idx[i : i+stride] {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatUint(uint64(k)+1, 10))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteOBJA writes a triangle mesh in OBJA format: vertices, faces, then
// one "fc" face color line per face taken from the face's first vertex.
func WriteOBJA(w io.Writer, m *facet.Mesh) error {
	if m.Topology != facet.Triangles {
		return errors.New("OBJA output requires a triangle mesh")
	}
	bw := bufio.NewWriter(w)
	for _, v := range m.Positions {
		bw.WriteString("v ")
		writeFloats(bw, v.X, v.Y, v.Z)
		bw.WriteByte('\n')
	}
	idx := elementIndices(m, 3)
	nf := len(idx) / 3
	for i := 0; i < nf; i++ {
		fmt.Fprintf(bw, "f %d %d %d\n", idx[3*i]+1, idx[3*i+1]+1, idx[3*i+2]+1)
	}
	if len(m.Colors) == len(m.Positions) {
		for i := 0; i < nf; i++ {
			c := m.Colors[idx[3*i]]
			fmt.Fprintf(bw, "fc %d ", i+1)
			writeFloats(bw, c.R, c.G, c.B)
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// elementIndices returns the mesh's indices, or the implicit 0..n-1
// sequence of an unindexed mesh, truncated to whole elements.
func elementIndices(m *facet.Mesh, stride int) []uint32 {
	idx := m.Indices
	if !m.IsIndexed() {
		idx = make([]uint32, len(m.Positions))
		for i := range idx {
			idx[i] = uint32(i)
		}
	}
	return idx[:len(idx)-len(idx)%stride]
}

func writeFloats(bw *bufio.Writer, f ...float32) {
	for i, v := range f {
		if i > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
}
