// Package config handles configuration loading and shared data structures.
package config

import (
	"os"
	"time"

	"github.com/woozymasta/lakemap/internal/source"

	"gopkg.in/yaml.v3"
)

// Defaults of the map viewport.
const (
	DefaultLat         = 39.0968
	DefaultLon         = -120.0324
	DefaultZoom        = 5
	DefaultTiles       = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	DefaultHeight      = "100vh"
	DefaultWidth       = "100%"
	DefaultTileZoom    = 8
	DefaultTilePadding = 0.5
)

// Config represents the root configuration file structure.
type Config struct {
	Dataset     string          `yaml:"dataset,omitempty"`
	LoadTimeout time.Duration   `yaml:"load_timeout,omitempty"`
	Map         Map             `yaml:"map"`
	Tiles       Tiles           `yaml:"tiles"`
	S3          source.S3Config `yaml:"s3"`
}

// Map holds the viewport and tile layer settings passed to the page.
type Map struct {
	Center      []float64 `yaml:"center,omitempty" json:"center"` // [lat, lon]
	Zoom        int       `yaml:"zoom,omitempty" json:"zoom"`
	TileURL     string    `yaml:"tiles,omitempty" json:"tiles"`
	Attribution string    `yaml:"attribution,omitempty" json:"attribution"`
	Height      string    `yaml:"height,omitempty" json:"height"`
	Width       string    `yaml:"width,omitempty" json:"width"`
}

// Tiles configures the local tile mirror. With Dir set the server serves
// /tiles/{z}/{x}/{y}.webp from it and points the map there.
type Tiles struct {
	Dir     string  `yaml:"dir,omitempty"`
	Source  string  `yaml:"source,omitempty"` // upstream template, defaults to map.tiles
	MaxZoom int     `yaml:"max_zoom,omitempty"`
	Padding float64 `yaml:"padding,omitempty"` // degrees around the lakes bbox
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Dataset == "" {
		c.Dataset = source.DefaultLocation
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = 30 * time.Second
	}

	if len(c.Map.Center) != 2 {
		c.Map.Center = []float64{DefaultLat, DefaultLon}
	}
	if c.Map.Zoom <= 0 {
		c.Map.Zoom = DefaultZoom
	}
	if c.Map.TileURL == "" {
		c.Map.TileURL = DefaultTiles
	}
	if c.Map.Attribution == "" {
		c.Map.Attribution = DefaultAttribution
	}
	if c.Map.Height == "" {
		c.Map.Height = DefaultHeight
	}
	if c.Map.Width == "" {
		c.Map.Width = DefaultWidth
	}

	if c.Tiles.Source == "" {
		c.Tiles.Source = c.Map.TileURL
	}
	if c.Tiles.MaxZoom <= 0 {
		c.Tiles.MaxZoom = DefaultTileZoom
	}
	if c.Tiles.Padding <= 0 {
		c.Tiles.Padding = DefaultTilePadding
	}
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}
