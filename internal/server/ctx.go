package server

import (
	"os"

	"github.com/woozymasta/lakemap/internal/catalog"
	"github.com/woozymasta/lakemap/internal/config"
	"github.com/woozymasta/lakemap/internal/metrics"
	"github.com/woozymasta/lakemap/internal/tiles"
	"github.com/woozymasta/lakemap/internal/view"
	"github.com/woozymasta/lakemap/internal/web"

	"github.com/rs/zerolog/log"
)

// LocalTileURL is the tile template used when a mirrored tile directory exists.
const LocalTileURL = "/tiles/{z}/{x}/{y}.webp"

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config          *config.Config
	Catalog         *catalog.Catalog
	Display         view.MapDisplay
	Bundle          *web.Bundle
	Metrics         *metrics.Metrics
	TileDir         string
	TransparentTile []byte
}

// NewServerContext wires the handlers to the catalog. When the configured
// tile mirror directory exists, the map is pointed at the local tiles.
func NewServerContext(cfg *config.Config, cat *catalog.Catalog, bundle *web.Bundle, m *metrics.Metrics) *ServerContext {
	mapCfg := cfg.Map
	tileDir := ""

	if cfg.Tiles.Dir != "" {
		if info, err := os.Stat(cfg.Tiles.Dir); err != nil || !info.IsDir() {
			log.Warn().
				Str("path", cfg.Tiles.Dir).
				Msg("Tile mirror skipped: directory not found, using upstream tiles")
		} else {
			tileDir = cfg.Tiles.Dir
			mapCfg.TileURL = LocalTileURL
			log.Info().
				Str("path", tileDir).
				Msg("Serving mirrored tiles")
		}
	}

	log.Debug().
		Str("tiles", mapCfg.TileURL).
		Floats64("center", mapCfg.Center).
		Int("zoom", mapCfg.Zoom).
		Msg("Server context initialized")

	return &ServerContext{
		Config:          cfg,
		Catalog:         cat,
		Display:         view.MapDisplay{Catalog: cat, Map: mapCfg},
		Bundle:          bundle,
		Metrics:         m,
		TileDir:         tileDir,
		TransparentTile: tiles.TransparentTile(),
	}
}
