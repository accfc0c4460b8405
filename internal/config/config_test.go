package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/facet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facet.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
strategy = "random"
up = "y"
seed = 7

[preview]
path = "out.png"
width = 320
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "random", cfg.Strategy)
	assert.Equal(t, facet.AxisY, cfg.Axis())
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "out.png", cfg.Preview.Path)
	assert.Equal(t, 320, cfg.Preview.Width)
	assert.Equal(t, Default().Preview.Height, cfg.Preview.Height, "unset field lost its default")
	assert.Equal(t, Default().Output, cfg.Output)
}

func TestLoadInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"malformed":  "strategy = \n",
		"unknown":    "colour = \"red\"\n",
		"axis":       "up = \"w\"\n",
		"size":       "[preview]\nwidth = -1\n",
		"bins":       "[preview]\nbins = 0\n",
		"background": "[preview]\nbackground = \"#12\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#FF0000")
	require.NoError(t, err)
	assert.Equal(t, facet.Color{R: 1}, c)
	c, err = ParseHexColor("00ff00")
	require.NoError(t, err)
	assert.Equal(t, facet.Color{G: 1}, c)
	_, err = ParseHexColor("zz")
	assert.Error(t, err)
}
