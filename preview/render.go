// Package preview rasterizes a colorized scene on the CPU and plots the
// distribution of triangle heights.
package preview

import (
	"errors"
	"image"

	"github.com/chewxy/math32"
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/facet"
	"github.com/soypat/facet/scene"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera and output image of [Render].
// The scene is fitted into a bi-unit cube centered at the origin first.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye       r3.Vec
	Fovy      float64 // vertical field of view in degrees
	Near, Far float64

	Width, Height int
	// Supersample renders at this multiple of the output size and
	// downsamples for antialiasing. Values below 1 mean 1.
	Supersample int

	Background facet.Color
	// Light is the direction towards the light.
	Light r3.Vec
}

// DefaultView looks at the origin from (3,3,3) with Z up.
func DefaultView() View {
	return View{
		Up:          r3.Vec{Z: 1},
		Eye:         r3.Vec{X: 3, Y: 3, Z: 3},
		Fovy:        30,
		Near:        1,
		Far:         10,
		Width:       800,
		Height:      600,
		Supersample: 2,
		Background:  facet.Color{R: 1, G: 0.973, B: 0.89},
		Light:       r3.Vec{X: -0.75, Y: 1, Z: 0.25},
	}
}

var errNoSurfaces = errors.New("scene has no triangle surfaces")

// Render draws every surface solid under root as seen from v.
func Render(root scene.Node, v View) (image.Image, error) {
	if v.Width <= 0 || v.Height <= 0 {
		return nil, errors.New("invalid preview image size")
	}
	solids := surfaces(root)
	if len(solids) == 0 {
		return nil, errNoSurfaces
	}
	scale := v.Supersample
	if scale < 1 {
		scale = 1
	}
	fit := fitTransform(solids)

	var (
		eye    = fauxgl.V(v.Eye.X, v.Eye.Y, v.Eye.Z)
		center = fauxgl.V(v.LookAt.X, v.LookAt.Y, v.LookAt.Z)
		up     = fauxgl.V(v.Up.X, v.Up.Y, v.Up.Z)
		light  = fauxgl.V(v.Light.X, v.Light.Y, v.Light.Z).Normalize()
		bg     = fauxgl.Color{R: float64(v.Background.R), G: float64(v.Background.G), B: float64(v.Background.B), A: 1}
	)
	context := fauxgl.NewContext(v.Width*scale, v.Height*scale)
	context.ClearColorBufferWith(bg)
	aspect := float64(v.Width) / float64(v.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(v.Fovy, aspect, v.Near, v.Far)
	for _, s := range solids {
		mat := s.Material
		if mat == nil {
			mat = scene.DefaultMaterial()
		}
		mesh, err := fauxMesh(s.Mesh, fit, mat.FlatShading)
		if err != nil {
			return nil, err
		}
		context.Cull = cullFor(mat.Side)
		context.Shader = NewShader(matrix, light, eye, mat)
		context.DrawMesh(mesh)
	}
	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(v.Width), uint(v.Height), img, resize.Bilinear)
	}
	return img, nil
}

// SavePNG writes img to path as a PNG file.
func SavePNG(path string, img image.Image) error {
	return fauxgl.SavePNG(path, img)
}

func cullFor(side scene.Side) fauxgl.Cull {
	switch side {
	case scene.SideBack:
		return fauxgl.CullFront
	case scene.SideDouble:
		return fauxgl.CullNone
	}
	return fauxgl.CullBack
}

func surfaces(root scene.Node) []*scene.Solid {
	var solids []*scene.Solid
	for _, s := range scene.Solids(root) {
		if s != nil && s.IsSurface() && s.Mesh.Validate() == nil && s.Mesh.NumTriangles() > 0 {
			solids = append(solids, s)
		}
	}
	return solids
}

// fitTransform returns the function mapping scene positions into the
// bi-unit cube centered at the origin.
func fitTransform(solids []*scene.Solid) func(ms3.Vec) fauxgl.Vector {
	bb := solids[0].Mesh.Bounds()
	for _, s := range solids[1:] {
		b := s.Mesh.Bounds()
		bb.Min = ms3.MinElem(bb.Min, b.Min)
		bb.Max = ms3.MaxElem(bb.Max, b.Max)
	}
	center := ms3.Scale(0.5, ms3.Add(bb.Min, bb.Max))
	d := ms3.Sub(bb.Max, bb.Min)
	size := math32.Max(d.X, math32.Max(d.Y, d.Z))
	if size == 0 {
		size = 1
	}
	k := float64(2 / size)
	return func(p ms3.Vec) fauxgl.Vector {
		d := ms3.Sub(p, center)
		return fauxgl.V(float64(d.X)*k, float64(d.Y)*k, float64(d.Z)*k)
	}
}

// fauxMesh converts m to a fauxgl mesh carrying its vertex colors. Flat
// meshes get face normals on every vertex, others get smoothed normals.
func fauxMesh(m *facet.Mesh, fit func(ms3.Vec) fauxgl.Vector, flat bool) (*fauxgl.Mesh, error) {
	colors := m.Colors
	if m.IsIndexed() && len(colors) == len(m.Positions) {
		colors = make([]facet.Color, 0, len(m.Indices))
		for _, idx := range m.Indices[:len(m.Indices)-len(m.Indices)%3] {
			colors = append(colors, m.Colors[idx])
		}
	}
	d, err := m.Deindexed()
	if err != nil {
		return nil, err
	}
	hasColor := len(colors) == len(d.Positions)
	triangles := make([]*fauxgl.Triangle, 0, d.NumTriangles())
	for i := 0; i+2 < len(d.Positions); i += 3 {
		t := fauxgl.NewTriangleForPoints(fit(d.Positions[i]), fit(d.Positions[i+1]), fit(d.Positions[i+2]))
		if hasColor {
			t.V1.Color = fauxColor(colors[i])
			t.V2.Color = fauxColor(colors[i+1])
			t.V3.Color = fauxColor(colors[i+2])
		}
		triangles = append(triangles, t)
	}
	mesh := fauxgl.NewTriangleMesh(triangles)
	if !flat {
		mesh.SmoothNormals()
	}
	return mesh, nil
}

func fauxColor(c facet.Color) fauxgl.Color {
	return fauxgl.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: 1}
}
