// Package config holds the settings of the facet command, read from a TOML
// file and overridden by command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/facet"
)

// Config is the file representation of a colorization run.
type Config struct {
	// Strategy names the color strategy. Unknown names color gray.
	Strategy string `toml:"strategy"`
	// Up is the height axis used by the byHeight strategy: "x", "y" or "z".
	Up string `toml:"up"`
	// Seed seeds the random strategy. Zero means seeded from the clock.
	Seed int64 `toml:"seed"`
	// Output is the path the colorized mesh is written to. Its extension
	// selects the format.
	Output  string  `toml:"output"`
	Preview Preview `toml:"preview"`
}

// Preview configures the optional PNG render and height histogram.
type Preview struct {
	Path        string     `toml:"path"`
	Histogram   string     `toml:"histogram"`
	Bins        int        `toml:"bins"`
	Width       int        `toml:"width"`
	Height      int        `toml:"height"`
	Supersample int        `toml:"supersample"`
	Eye         [3]float64 `toml:"eye"`
	Background  string     `toml:"background"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Strategy: "byHeight",
		Up:       "z",
		Output:   "out.obj",
		Preview: Preview{
			Bins:        20,
			Width:       800,
			Height:      600,
			Supersample: 2,
			Eye:         [3]float64{3, 3, 3},
			Background:  "#FFF8E3",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error and yields [Default].
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, err
	}
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return cfg, fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	if _, err := facet.ParseAxis(c.Up); err != nil {
		return err
	}
	p := c.Preview
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("invalid preview size %dx%d", p.Width, p.Height)
	case p.Supersample < 1:
		return fmt.Errorf("invalid preview supersample %d", p.Supersample)
	case p.Bins <= 0:
		return fmt.Errorf("invalid histogram bin count %d", p.Bins)
	}
	if _, err := ParseHexColor(p.Background); err != nil {
		return err
	}
	return nil
}

// Axis returns the parsed height axis.
func (c Config) Axis() facet.Axis {
	a, _ := facet.ParseAxis(c.Up)
	return a
}

// ParseHexColor parses colors of the form "#RRGGBB", "#RGB" or either
// without the leading '#'.
func ParseHexColor(s string) (facet.Color, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return facet.Color{}, fmt.Errorf("invalid background color %q: %w", s, err)
	}
	return facet.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}, nil
}
