package scene

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/soypat/facet"
)

// Stats summarizes a colorization pass.
type Stats struct {
	Colored   int // solids colorized
	Skipped   int // solids without triangle geometry or with malformed meshes
	Triangles int // triangles painted
}

// Colorizer applies flat per-triangle coloring to every surface solid of a
// scene graph. The strategy is chosen once per pass.
type Colorizer struct {
	facet.Options
	// Logger receives debug records for skipped solids. Nil means slog.Default().
	Logger *slog.Logger
}

// Colorize runs the colorization pass with the named strategy, the Z axis
// as height and a time seeded random source. Unknown names paint every
// triangle [facet.Gray].
func Colorize(root Node, strategy string) {
	c := Colorizer{Options: facet.Options{Strategy: facet.ParseStrategy(strategy)}}
	c.Colorize(root)
}

// Colorize mutates every surface solid under root in place: its mesh is
// replaced by a deindexed, colored copy and its material by one derived
// with [Rebind]. Other nodes are left untouched.
func (c *Colorizer) Colorize(root Node) Stats {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}
	opts := c.Options
	if opts.Rand == nil && opts.Strategy == facet.StrategyRandom {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var stats Stats
	Walk(root, func(n Node) bool {
		s, ok := n.(*Solid)
		if !ok || s == nil {
			return true
		}
		if !s.IsSurface() {
			log.Debug("skip non-surface solid", slog.String("solid", s.Name))
			stats.Skipped++
			return true
		}
		if err := s.Mesh.Validate(); err != nil {
			log.Debug("skip malformed solid", slog.String("solid", s.Name), slog.String("err", err.Error()))
			stats.Skipped++
			return true
		}
		colored, err := facet.ColorizeStrategy(s.Mesh, opts)
		if err != nil {
			log.Debug("skip solid", slog.String("solid", s.Name), slog.String("err", err.Error()))
			stats.Skipped++
			return true
		}
		s.Mesh = colored
		s.Material = Rebind(s.Material)
		stats.Colored++
		stats.Triangles += colored.NumTriangles()
		return true
	})
	log.Debug("colorized scene",
		slog.String("strategy", c.Strategy.String()),
		slog.Int("colored", stats.Colored),
		slog.Int("skipped", stats.Skipped),
		slog.Int("triangles", stats.Triangles))
	return stats
}
