package loader_test

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"testing"
	"testing/fstest"

	"github.com/soypat/facet"
	"github.com/soypat/facet/loader"
	"github.com/soypat/facet/scene"
	"github.com/soypat/glgl/math/ms3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tetraOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
f 1 3 2
f 1 2 4
f 1 4 3
f 2 3 4
`

const triSTL = `solid tri
 facet normal 0 0 1
  outer loop
   vertex 0 0 0
   vertex 1 0 0
   vertex 0 1 0
  endloop
 endfacet
endsolid tri
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"models/tetra.obj": {Data: []byte(tetraOBJ)},
		"models/tri.stl":   {Data: []byte(triSTL)},
		"models/notes.txt": {Data: []byte("not a mesh")},
		"models/empty.obj": {Data: []byte("# nothing here\n")},
		"models/bad.obj":   {Data: []byte("v 0 0 0\nf 1 2 3\n")},
	}
}

func TestLoaderStart(t *testing.T) {
	l := &loader.Loader{
		Paths: []string{"models/tetra.obj", "models/notes.txt", "models/tri.stl"},
		FS:    testFS(),
	}
	elems, err := l.Start(context.Background()).Wait(context.Background())
	require.NoError(t, err)
	require.Len(t, elems, 3)
	assert.Nil(t, elems[1])
	assert.Equal(t, "tetra", elems[0].NodeName())
	tri, ok := elems[2].(*scene.Solid)
	require.True(t, ok)
	assert.Equal(t, 1, tri.Mesh.NumTriangles())
	assert.Equal(t, 1.0, l.Progress())
}

func TestLoaderParseError(t *testing.T) {
	l := &loader.Loader{Paths: []string{"models/tetra.obj", "models/bad.obj"}, FS: testFS()}
	_, err := l.Start(context.Background()).Wait(context.Background())
	assert.ErrorIs(t, err, facet.ErrIndexOutOfRange)
	assert.ErrorContains(t, err, "models/bad.obj")

	l = &loader.Loader{Paths: []string{"models/missing.obj"}, FS: testFS()}
	_, err = l.Start(context.Background()).Wait(context.Background())
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := &loader.Loader{Paths: []string{"models/tetra.obj"}, FS: testFS()}
	_, err := l.Start(ctx).Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// gateFS blocks every Open until release is closed.
type gateFS struct {
	fs.FS
	release chan struct{}
}

func (g gateFS) Open(name string) (fs.File, error) {
	<-g.release
	return g.FS.Open(name)
}

func TestLoaderProgressNotStarted(t *testing.T) {
	l := &loader.Loader{Paths: []string{"models/tetra.obj"}, FS: testFS()}
	p := l.Progress()
	assert.True(t, math.IsNaN(p), "progress before Start: %v", p)
	assert.Zero(t, loader.Fraction(p))

	var zero loader.Loader
	assert.True(t, math.IsNaN(zero.Progress()))
}

func TestLoaderProgress(t *testing.T) {
	gate := gateFS{FS: testFS(), release: make(chan struct{})}
	l := &loader.Loader{Paths: []string{"models/tetra.obj", "models/tri.stl"}, FS: gate}
	fut := l.Start(context.Background())
	p := l.Progress()
	assert.True(t, math.IsNaN(p), "progress before sizing: %v", p)
	assert.Zero(t, loader.Fraction(p))
	select {
	case <-fut.Done():
		t.Fatal("loader finished while blocked")
	default:
	}
	close(gate.release)
	_, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, l.Progress())
	assert.Equal(t, 1.0, loader.Fraction(l.Progress()))
}

func TestFraction(t *testing.T) {
	assert.Equal(t, 0.0, loader.Fraction(math.NaN()))
	assert.Equal(t, 0.0, loader.Fraction(-1))
	assert.Equal(t, 0.25, loader.Fraction(0.25))
	assert.Equal(t, 1.0, loader.Fraction(3))
}

func TestContainerAccept(t *testing.T) {
	c := loader.NewContainer("root")
	require.NoError(t, c.Accept(nil))

	good := scene.NewSolid("good", &facet.Mesh{Positions: make([]ms3.Vec, 3)})
	require.NoError(t, c.Accept(good))
	assert.Len(t, c.Root.Children, 1)

	for _, bad := range []scene.Node{
		&scene.Solid{Name: "nomesh"},
		scene.NewSolid("novertex", &facet.Mesh{}),
		scene.NewGroup("group", scene.NewSolid("nan", &facet.Mesh{Positions: []ms3.Vec{{X: float32(math.NaN())}}})),
	} {
		err := c.Accept(bad)
		var elemErr *loader.ElementError
		require.True(t, errors.As(err, &elemErr), "%s: %v", bad.NodeName(), err)
		assert.NotEmpty(t, elemErr.Message())
	}
	assert.Len(t, c.Root.Children, 1)

	cyclic := scene.NewGroup("cyclic", c.Root)
	err := c.Accept(cyclic)
	require.Error(t, err)
	var elemErr *loader.ElementError
	assert.False(t, errors.As(err, &elemErr))

	loop := scene.NewGroup("loop", scene.NewSolid("tri", &facet.Mesh{Positions: make([]ms3.Vec, 3)}))
	loop.Children = append(loop.Children, loop)
	require.NoError(t, c.Accept(loop))
	assert.Len(t, scene.Solids(c.Root), 2)

	var noRoot loader.Container
	assert.Error(t, noRoot.Accept(good))
}

func TestContainerAssemble(t *testing.T) {
	c := loader.NewContainer("root")
	var reports []string
	err := c.Assemble([]scene.Node{
		scene.NewSolid("a", &facet.Mesh{Positions: make([]ms3.Vec, 3)}),
		nil,
		scene.NewSolid("empty", &facet.Mesh{}),
		scene.NewSolid("b", &facet.Mesh{Positions: make([]ms3.Vec, 3)}),
	}, func(msg string) { reports = append(reports, msg) })
	require.NoError(t, err)
	assert.Len(t, c.Root.Children, 2)
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0], "empty")

	err = c.Assemble([]scene.Node{scene.NewGroup("cyclic", c.Root)}, nil)
	assert.Error(t, err)
}

func TestLoadAndColorize(t *testing.T) {
	l := &loader.Loader{
		Paths: []string{"models/tetra.obj", "models/notes.txt", "models/empty.obj", "models/tri.stl"},
		FS:    testFS(),
	}
	var reports []string
	col := &scene.Colorizer{Options: facet.Options{Strategy: facet.StrategyByHeight}}
	root, stats, err := loader.LoadAndColorize(context.Background(), l, col, func(msg string) {
		reports = append(reports, msg)
	})
	require.NoError(t, err)
	assert.Equal(t, scene.Stats{Colored: 2, Triangles: 5}, stats)
	assert.Len(t, reports, 1)
	solids := scene.Solids(root)
	require.Len(t, solids, 2)
	for _, s := range solids {
		assert.Len(t, s.Mesh.Colors, len(s.Mesh.Positions))
		assert.True(t, s.Material.VertexColors)
		assert.True(t, s.Material.FlatShading)
	}
}
