// Package tiles mirrors upstream map tiles covering the lakes into a local
// webp tile tree.
package tiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/woozymasta/lakemap/internal/geo"
	"github.com/woozymasta/lakemap/internal/metrics"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

// Size is the edge length of a tile in pixels.
const Size = 256

// Options controls a mirror run.
type Options struct {
	URLTemplate string // {z} {x} {y} {s} {tms_y}
	Dir         string
	BBox        geo.BBox
	MinZoom     int
	MaxZoom     int
	Concurrency int
	Quality     float32
	Force       bool
	Metrics     *metrics.Metrics
}

// Stats summarizes a mirror run.
type Stats struct {
	Written int
	Cached  int
	Missing int
	Failed  int
}

type result int

const (
	resultWritten result = iota
	resultCached
	resultMissing
	resultFailed
)

func (r result) String() string {
	return [...]string{"written", "cached", "missing", "failed"}[r]
}

var subdomains = []string{"a", "b", "c"}

// Path returns the on-disk location of a tile below dir.
func Path(dir string, t geo.Tile) string {
	return filepath.Join(dir, strconv.Itoa(t.Z), strconv.Itoa(t.X), strconv.Itoa(t.Y)+".webp")
}

// Mirror downloads every tile covering opts.BBox between MinZoom and MaxZoom
// and stores it as webp. Cancelling ctx stops scheduling new tiles.
func Mirror(ctx context.Context, client *http.Client, opts Options) (Stats, error) {
	if opts.URLTemplate == "" || opts.Dir == "" {
		return Stats{}, errors.New("tile url template and directory are required")
	}
	if opts.BBox.IsEmpty() {
		return Stats{}, errors.New("empty bounding box, nothing to mirror")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Quality <= 0 {
		opts.Quality = 80
	}

	var total Stats
	for z := opts.MinZoom; z <= opts.MaxZoom; z++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		level := geo.TileRange(opts.BBox, z)
		log.Debug().Int("zoom", z).Int("count", len(level)).Msg("Processing zoom level")

		st := processBatch(ctx, client, opts, level)
		total.Written += st.Written
		total.Cached += st.Cached
		total.Missing += st.Missing
		total.Failed += st.Failed
	}

	log.Info().
		Str("dir", opts.Dir).
		Int("written", total.Written).
		Int("cached", total.Cached).
		Int("missing", total.Missing).
		Int("failed", total.Failed).
		Msg("Tile mirror finished")

	return total, ctx.Err()
}

func processBatch(ctx context.Context, client *http.Client, opts Options, level []geo.Tile) Stats {
	jobs := make(chan geo.Tile, len(level))
	results := make(chan result, len(level))

	go func() {
		defer close(jobs)
		for _, t := range level {
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				res, err := downloadAndConvert(ctx, client, opts, t)
				if err != nil {
					log.Trace().
						Err(err).
						Str("url", BuildURL(opts.URLTemplate, t)).
						Msg("Failed to download tile")
				}
				if opts.Metrics != nil {
					opts.Metrics.Tiles.WithLabelValues(res.String()).Inc()
				}
				results <- res
			}
		}()
	}
	wg.Wait()
	close(results)

	var st Stats
	for res := range results {
		switch res {
		case resultWritten:
			st.Written++
		case resultCached:
			st.Cached++
		case resultMissing:
			st.Missing++
		case resultFailed:
			st.Failed++
		}
	}

	return st
}

func downloadAndConvert(ctx context.Context, client *http.Client, opts Options, t geo.Tile) (result, error) {
	outPath := Path(opts.Dir, t)

	// Check existence if not forcing overwrite
	if !opts.Force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return resultCached, nil
		}
	}

	url := BuildURL(opts.URLTemplate, t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resultFailed, err
	}
	// tile servers reject anonymous clients
	req.Header.Set("User-Agent", "lakemap-tile-mirror/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return resultFailed, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		log.Trace().Str("url", url).Msg("Tile not found (404)")
		return resultMissing, nil
	}
	if resp.StatusCode != http.StatusOK {
		return resultFailed, fmt.Errorf("status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resultFailed, err
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return resultFailed, fmt.Errorf("decode tile: %w", err)
	}

	// Filter out empty/1px tiles often returned by map servers for OOB areas
	if img.Bounds().Dx() <= 1 {
		return resultMissing, nil
	}

	if err := writeWebP(outPath, img, opts.Quality); err != nil {
		return resultFailed, err
	}

	return resultWritten, nil
}

func writeWebP(path string, img image.Image, quality float32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := webp.Encode(f, img, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}

	return f.Close()
}

// BuildURL expands a tile URL template for t.
func BuildURL(tpl string, t geo.Tile) string {
	s := strings.ReplaceAll(tpl, "{z}", strconv.Itoa(t.Z))
	s = strings.ReplaceAll(s, "{x}", strconv.Itoa(t.X))
	s = strings.ReplaceAll(s, "{y}", strconv.Itoa(t.Y))

	if strings.Contains(s, "{s}") {
		s = strings.ReplaceAll(s, "{s}", subdomains[(t.X+t.Y)%len(subdomains)])
	}

	if strings.Contains(s, "{tms_y}") {
		maxCoord := (1 << t.Z) - 1
		s = strings.ReplaceAll(s, "{tms_y}", strconv.Itoa(maxCoord-t.Y))
	}

	return s
}

var (
	transparentOnce sync.Once
	transparentTile []byte
)

// TransparentTile returns an empty webp tile served where no mirrored tile exists.
func TransparentTile() []byte {
	transparentOnce.Do(func() {
		var buf bytes.Buffer
		img := image.NewNRGBA(image.Rect(0, 0, Size, Size))
		if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
			log.Error().Err(err).Msg("Failed to encode transparent tile")
			return
		}
		transparentTile = buf.Bytes()
	})

	return transparentTile
}
