// Package config handles configuration loading and shared defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/woozymasta/agroglobe/internal/geo"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Globe    Globe    `yaml:"globe" json:"globe"`
	Storage  Storage  `yaml:"storage" json:"-"`
	Analysis Analysis `yaml:"analysis" json:"analysis"`
	Drones   []Drone  `yaml:"drones,omitempty" json:"drones,omitempty"`
	Sources  []Source `yaml:"sources,omitempty" json:"-"`
}

// Globe configures the 3D scene.
type Globe struct {
	// Focus overrides the camera target; nil means the first field's centroid.
	Focus          *geo.Coordinate `yaml:"focus,omitempty" json:"focus,omitempty"`
	Radius         float64         `yaml:"radius" json:"radius"`
	CameraDistance float64         `yaml:"camera_distance" json:"camera_distance"`
	Style          Style           `yaml:"style" json:"style"`
	SnapshotSize   int             `yaml:"snapshot_size" json:"-"`
}

// Style holds the colors used for field overlays.
type Style struct {
	LineColor geo.Color `yaml:"line_color" json:"line_color"`
	FillColor geo.Color `yaml:"fill_color" json:"fill_color"`
	LineWidth float64   `yaml:"line_width" json:"line_width"`
	Opacity   float64   `yaml:"opacity" json:"opacity"`
}

// Storage points at the field store file. An empty path keeps fields in memory.
type Storage struct {
	Path string `yaml:"path"`
}

// Analysis tunes the mocked crop-health analysis.
type Analysis struct {
	Delay time.Duration `yaml:"delay" json:"delay"`
	Seed  uint64        `yaml:"seed,omitempty" json:"-"`
}

// Drone is one entry of the configured fleet.
type Drone struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Online  bool   `yaml:"online" json:"online"`
	Battery int    `yaml:"battery" json:"battery"`
}

// Source is a GeoJSON location the importer pulls fields from.
type Source struct {
	URL  string `yaml:"url"`
	Crop string `yaml:"crop,omitempty"`
}

// Default camera target used by the dashboard when nothing else is known.
var DefaultFocus = geo.Coordinate{Lat: 42, Lon: 11}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
// A missing file is not an error: defaults are returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Globe.Radius <= 0 {
		c.Globe.Radius = 2
	}
	if c.Globe.CameraDistance <= 0 {
		c.Globe.CameraDistance = 6
	}
	if c.Globe.SnapshotSize <= 0 {
		c.Globe.SnapshotSize = 512
	}

	s := &c.Globe.Style
	if s.LineColor == (geo.Color{}) {
		s.LineColor = geo.MustParseColor("#FFFFFF")
	}
	if s.FillColor == (geo.Color{}) {
		s.FillColor = geo.MustParseColor("rgba(0, 255, 255, 0.3)")
	}
	if s.LineWidth <= 0 {
		s.LineWidth = 3
	}
	if s.Opacity <= 0 {
		s.Opacity = 1
	}

	if c.Analysis.Delay <= 0 {
		c.Analysis.Delay = 4 * time.Second
	}

	if len(c.Drones) == 0 {
		c.Drones = []Drone{
			{ID: "droneOne", Name: "Drone 1", Online: true, Battery: 87},
			{ID: "droneTwo", Name: "Drone 2", Online: false, Battery: 65},
		}
	}
}

// Validate reports values defaults cannot repair.
func (c *Config) Validate() error {
	if c.Globe.Style.Opacity > 1 {
		return fmt.Errorf("globe.style.opacity must be within (0, 1], got %v", c.Globe.Style.Opacity)
	}

	seen := make(map[string]bool, len(c.Drones))
	for _, d := range c.Drones {
		if d.ID == "" {
			return errors.New("drone without id")
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate drone id %q", d.ID)
		}
		seen[d.ID] = true

		if d.Battery < 0 || d.Battery > 100 {
			return fmt.Errorf("drone %q: battery %d out of range", d.ID, d.Battery)
		}
	}

	return nil
}
