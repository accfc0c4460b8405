// Package loader loads mesh files asynchronously into scene elements and
// assembles them into a scene graph that is colorized once every element
// is known.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/soypat/facet/render"
	"github.com/soypat/facet/scene"
)

// Loader parses a list of mesh files in the background.
type Loader struct {
	// Paths lists the files to load, in order.
	Paths []string
	// FS is the file system Paths are opened from. Nil means the host file system.
	FS fs.FS
	// Logger receives warnings for skipped files. Nil means slog.Default().
	Logger *slog.Logger

	sized atomic.Bool  // set once total holds the size of every file
	total atomic.Int64 // bytes to parse
	done  atomic.Int64 // bytes parsed
}

// Future is the pending result of [Loader.Start].
type Future struct {
	done  chan struct{}
	elems []scene.Node
	err   error
}

// Done returns a channel closed once loading finishes.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until loading finishes or ctx is done. The returned elements
// parallel the loader's Paths; files that could not be turned into an
// element are nil.
func (f *Future) Wait(ctx context.Context) ([]scene.Node, error) {
	select {
	case <-f.done:
		return f.elems, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start begins loading in a new goroutine. Start must be called at most once.
func (l *Loader) Start(ctx context.Context) *Future {
	l.sized.Store(false)
	l.total.Store(0)
	l.done.Store(0)
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.elems, f.err = l.load(ctx)
	}()
	return f
}

// Progress returns the fraction of bytes parsed in [0,1], or NaN before
// Start or while the loader is still sizing its input. Use [Fraction] to
// treat NaN as no progress.
func (l *Loader) Progress() float64 {
	if !l.sized.Load() {
		return math.NaN()
	}
	total := l.total.Load()
	if total == 0 {
		return 1
	}
	return math.Min(1, float64(l.done.Load())/float64(total))
}

// Fraction maps a progress value to [0,1], treating NaN as 0.
func Fraction(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	return math.Min(p, 1)
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l *Loader) load(ctx context.Context) ([]scene.Node, error) {
	var total int64
	for _, path := range l.Paths {
		info, err := l.stat(path)
		if err != nil {
			return nil, err
		}
		total += info.Size()
	}
	l.total.Store(total)
	l.sized.Store(true)

	elems := make([]scene.Node, len(l.Paths))
	for i, path := range l.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		elem, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		elems[i] = elem
	}
	return elems, nil
}

func (l *Loader) loadFile(path string) (scene.Node, error) {
	format := render.FormatOf(path)
	fp, err := l.open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	if format == render.FormatUnknown {
		info, err := fp.Stat()
		if err == nil {
			l.done.Add(info.Size())
		}
		l.logger().Warn("skip file with unknown mesh format", slog.String("path", path))
		return nil, nil
	}
	mesh, err := render.Read(&countingReader{r: fp, n: &l.done}, format)
	if errors.Is(err, render.ErrNormalMismatch) {
		l.logger().Debug("STL normals do not match vertices", slog.String("path", path))
	} else if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return scene.NewSolid(name, mesh), nil
}

func (l *Loader) open(path string) (fs.File, error) {
	if l.FS == nil {
		return os.Open(path)
	}
	return l.FS.Open(path)
}

func (l *Loader) stat(path string) (fs.FileInfo, error) {
	if l.FS == nil {
		return os.Stat(path)
	}
	return fs.Stat(l.FS, path)
}

type countingReader struct {
	r io.Reader
	n *atomic.Int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n.Add(int64(n))
	return n, err
}
