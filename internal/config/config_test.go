package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/woozymasta/agroglobe/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Globe.Radius)
	assert.Equal(t, 6.0, cfg.Globe.CameraDistance)
	assert.Equal(t, geo.Color{R: 255, G: 255, B: 255, A: 1}, cfg.Globe.Style.LineColor)
	assert.Equal(t, geo.Color{G: 255, B: 255, A: 0.3}, cfg.Globe.Style.FillColor)
	assert.Equal(t, 3.0, cfg.Globe.Style.LineWidth)
	assert.Equal(t, 4*time.Second, cfg.Analysis.Delay)
	assert.Len(t, cfg.Drones, 2)
	assert.Nil(t, cfg.Globe.Focus)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
globe:
  radius: 1
  focus: {lat: 48.1, lon: 16.3}
  style:
    fill_color: "rgba(255, 0, 0, 0.5)"
    line_color: "#00ff00"
storage:
  path: data/fields.json
analysis:
  delay: 250ms
drones:
  - {id: alpha, name: Alpha, online: true, battery: 12}
sources:
  - url: https://example.com/fields.geojson
    crop: Wheat
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Globe.Radius)
	require.NotNil(t, cfg.Globe.Focus)
	assert.Equal(t, geo.Coordinate{Lat: 48.1, Lon: 16.3}, *cfg.Globe.Focus)
	assert.Equal(t, geo.Color{R: 255, A: 0.5}, cfg.Globe.Style.FillColor)
	assert.Equal(t, geo.Color{G: 255, A: 1}, cfg.Globe.Style.LineColor)
	assert.Equal(t, "data/fields.json", cfg.Storage.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Analysis.Delay)
	require.Len(t, cfg.Drones, 1)
	assert.Equal(t, "Alpha", cfg.Drones[0].Name)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "Wheat", cfg.Sources[0].Crop)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "globe: [",
		"bad color":     "globe: {style: {fill_color: cyan}}",
		"opacity":       "globe: {style: {opacity: 3}}",
		"duplicate":     "drones: [{id: a, battery: 1}, {id: a, battery: 2}]",
		"battery range": "drones: [{id: a, battery: 101}]",
		"missing id":    "drones: [{name: x}]",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadExampleMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)

	def := Defaults()
	assert.Equal(t, def.Globe, cfg.Globe)
	assert.Equal(t, def.Analysis, cfg.Analysis)
	assert.Equal(t, def.Drones, cfg.Drones)
	assert.Equal(t, "fields.json", cfg.Storage.Path)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "Wheat", cfg.Sources[0].Crop)
}
