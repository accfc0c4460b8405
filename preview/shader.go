package preview

import (
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/facet/scene"
)

// Shader is a Phong fauxgl shader driven by a [scene.Material].
// With VertexColors the interpolated vertex color replaces the material
// color. Flat shading is obtained by feeding triangles whose three vertex
// normals equal the face normal, see [Render].
type Shader struct {
	Matrix         fauxgl.Matrix
	LightDirection fauxgl.Vector
	CameraPosition fauxgl.Vector
	AmbientColor   fauxgl.Color
	DiffuseColor   fauxgl.Color
	SpecularColor  fauxgl.Color
	Material       *scene.Material
}

var _ fauxgl.Shader = (*Shader)(nil)

// NewShader returns a shader with a white light coming from lightDir.
func NewShader(matrix fauxgl.Matrix, lightDir, eye fauxgl.Vector, mat *scene.Material) *Shader {
	return &Shader{
		Matrix:         matrix,
		LightDirection: lightDir,
		CameraPosition: eye,
		AmbientColor:   fauxgl.Gray(0.2),
		DiffuseColor:   fauxgl.Gray(0.8),
		SpecularColor:  fauxgl.Gray(1),
		Material:       mat,
	}
}

func (sh *Shader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = sh.Matrix.MulPositionW(v.Position)
	return v
}

func (sh *Shader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	mat := sh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	color := fauxgl.Color{R: float64(mat.Color.R), G: float64(mat.Color.G), B: float64(mat.Color.B), A: 1}
	if mat.VertexColors {
		color = v.Color
		color.A = 1
	}
	normal := v.Normal
	if mat.Side != scene.SideFront && normal.Dot(sh.CameraPosition.Sub(v.Position)) < 0 {
		// Back face is visible: light it from its own side.
		normal = normal.Negate()
	}
	light := sh.AmbientColor
	diffuse := math.Max(normal.Dot(sh.LightDirection), 0)
	light = light.Add(sh.DiffuseColor.MulScalar(diffuse))
	if diffuse > 0 && mat.Shininess > 0 {
		camera := sh.CameraPosition.Sub(v.Position).Normalize()
		reflected := sh.LightDirection.Negate().Reflect(normal)
		specular := math.Max(camera.Dot(reflected), 0)
		if specular > 0 {
			specular = math.Pow(specular, float64(mat.Shininess))
			light = light.Add(sh.SpecularColor.MulScalar(specular * 0.5))
		}
	}
	return color.Mul(light).Min(fauxgl.White).Alpha(1)
}
