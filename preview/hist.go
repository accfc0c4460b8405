package preview

import (
	"errors"

	"github.com/soypat/facet"
	"github.com/soypat/facet/scene"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// TriangleHeights returns the mean height along up of every triangle of
// every surface under root, the quantity the byHeight strategy maps to hue.
func TriangleHeights(root scene.Node, up facet.Axis) ([]float64, error) {
	var heights []float64
	for _, s := range surfaces(root) {
		d, err := s.Mesh.Deindexed()
		if err != nil {
			return nil, err
		}
		tris, err := facet.ReadAllTriangles(d.Triangles())
		if err != nil {
			return nil, err
		}
		for _, t := range tris {
			avg := (up.Of(t[0]) + up.Of(t[1]) + up.Of(t[2])) / 3
			heights = append(heights, float64(avg))
		}
	}
	return heights, nil
}

// HeightHistogram plots the distribution of triangle heights under root
// using the given number of bins.
func HeightHistogram(root scene.Node, up facet.Axis, bins int) (*plot.Plot, error) {
	if bins <= 0 {
		return nil, errors.New("histogram needs a positive bin count")
	}
	heights, err := TriangleHeights(root, up)
	if err != nil {
		return nil, err
	}
	if len(heights) == 0 {
		return nil, errNoSurfaces
	}
	h, err := plotter.NewHist(plotter.Values(heights), bins)
	if err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = "Triangle heights"
	p.X.Label.Text = "mean " + up.String()
	p.Y.Label.Text = "triangles"
	p.Add(h)
	return p, nil
}

// SaveHistogram writes p to path; the image format follows the extension.
func SaveHistogram(p *plot.Plot, path string) error {
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
