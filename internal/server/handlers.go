// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/woozymasta/lakemap/internal/catalog"
	"github.com/woozymasta/lakemap/internal/geo"
	"github.com/woozymasta/lakemap/internal/lake"
	"github.com/woozymasta/lakemap/internal/tiles"
	"github.com/woozymasta/lakemap/internal/view"
	"github.com/woozymasta/lakemap/internal/web"

	"github.com/rs/zerolog/log"
)

const etagCap = 64

// Routes registers all handlers on a new mux wrapped in the request logger.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/view", s.HandleView)
	mux.HandleFunc("/lakes.json", s.HandleLakes)
	mux.HandleFunc("/healthz", s.HandleHealth)
	mux.HandleFunc("/favicon.svg", s.HandleFavicon)
	mux.HandleFunc("/tiles/", s.HandleTile)
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics.Handler())
	}
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(s.Metrics, mux)
}

// rootFor builds the query owner for a request from the q parameter.
func rootFor(r *http.Request) *view.Root {
	root := &view.Root{}
	root.SetQuery(r.URL.Query().Get(view.QueryParam))
	return root
}

// HandleIndex serves the map page with markers for the requested query.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	root := rootFor(r)
	page := web.Page{
		View:   s.Display.Render(root.Query()),
		Search: root.SearchInput(),
	}

	var buf bytes.Buffer
	if err := s.Bundle.Render(&buf, page); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// HandleView serves the map view for the q parameter as JSON.
func (s *ServerContext) HandleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Display.Render(rootFor(r).Query()))
}

// HandleLakes serves the validated dataset.
func (s *ServerContext) HandleLakes(w http.ResponseWriter, r *http.Request) {
	switch st := s.Catalog.State().(type) {
	case catalog.NotLoaded:
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "dataset not loaded yet"})
	case catalog.LoadError:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": st.Reason.Error()})
	case catalog.Loaded:
		lakes := st.Dataset.Lakes
		if lakes == nil {
			lakes = []lake.Lake{}
		}
		writeJSON(w, http.StatusOK, lakes)
	}
}

type health struct {
	Status  view.Status `json:"status"`
	Lakes   int         `json:"lakes"`
	Skipped int         `json:"skipped,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HandleHealth reports the dataset state.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	v := s.Display.Render("")
	writeJSON(w, http.StatusOK, health{
		Status:  v.Status,
		Lakes:   v.Total,
		Skipped: v.Skipped,
		Error:   v.Error,
	})
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Bundle.Favicon())
}

// HandleTile serves mirrored webp tiles: /tiles/{z}/{x}/{y}.webp
func (s *ServerContext) HandleTile(w http.ResponseWriter, r *http.Request) {
	if s.TileDir == "" {
		http.NotFound(w, r)
		return
	}

	tile, ok := parseTilePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if s.serveFile(w, r, tiles.Path(s.TileDir, tile), "image/webp") {
		return
	}

	// cache transparent tile
	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(s.TransparentTile)
}

// parseTilePath accepts only numeric in-range coordinates to prevent path probing.
func parseTilePath(path string) (geo.Tile, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 || parts[0] != "tiles" || !strings.HasSuffix(parts[3], ".webp") {
		return geo.Tile{}, false
	}

	z, err1 := strconv.Atoi(parts[1])
	x, err2 := strconv.Atoi(parts[2])
	y, err3 := strconv.Atoi(strings.TrimSuffix(parts[3], ".webp"))
	if err1 != nil || err2 != nil || err3 != nil {
		return geo.Tile{}, false
	}

	if z < 0 || z > 22 || x < 0 || y < 0 || x >= 1<<z || y >= 1<<z {
		return geo.Tile{}, false
	}

	return geo.Tile{Z: z, X: x, Y: y}, true
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, filepath.Clean(path))
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}
