package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/woozymasta/lakemap/internal/config"
	"github.com/woozymasta/lakemap/internal/ilec"
	"github.com/woozymasta/lakemap/internal/lake"
	"github.com/woozymasta/lakemap/internal/logger"
	"github.com/woozymasta/lakemap/internal/source"
	"github.com/woozymasta/lakemap/internal/tiles"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"      env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	Listing     string `short:"u" long:"listing"     env:"LISTING_URL"  description:"Lake listing URL" default:"https://wldb.ilec.or.jp/Search/listdataitem/199"`
	Pages       int    `short:"n" long:"pages"       env:"LISTING_PAGES" description:"Number of listing pages" default:"4"`
	Output      string `short:"o" long:"out"         env:"DATASET"      description:"Dataset file to write and mirror tiles for (defaults to config dataset)"`
	Concurrency int    `short:"p" long:"concurrency" env:"CONCURRENCY"  description:"Concurrency" default:"8"`
	ZoomLimit   int    `short:"z" long:"zoom-limit"  env:"ZOOM_LIMIT"   description:"Tiles zoom limit (overrides config)"`
	TilesDir    string `short:"t" long:"tiles-dir"   env:"TILES_DIR"    description:"Tile mirror directory (overrides config)"`
	TilesOnly   bool   `short:"T" long:"tiles-only"  description:"Mirror tiles only"`
	LakesOnly   bool   `short:"L" long:"lakes-only"  description:"Scrape lakes only"`
	Force       bool   `short:"f" long:"force"       description:"Force overwrite of existing files"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", opts.ConfigFile).Msg("Configuration file not found, using defaults")
		cfg = config.Default()
	} else if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	processTiles := true
	processLakes := true
	if opts.TilesOnly && !opts.LakesOnly {
		processLakes = false
	} else if opts.LakesOnly && !opts.TilesOnly {
		processTiles = false
	}

	if opts.Output != "" {
		cfg.Dataset = opts.Output
	}
	if opts.TilesDir != "" {
		cfg.Tiles.Dir = opts.TilesDir
	}
	if cfg.Tiles.Dir == "" {
		cfg.Tiles.Dir = "tiles"
	}
	if opts.ZoomLimit > 0 {
		cfg.Tiles.MaxZoom = opts.ZoomLimit
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 30 * time.Second,
	}

	log.Info().
		Str("dataset", cfg.Dataset).
		Bool("lakes", processLakes).
		Bool("tiles", processTiles).
		Msg("Starting loader")

	var lakes []lake.Lake
	if processLakes {
		if _, err := localPath(cfg.Dataset); err != nil {
			log.Fatal().Err(err).Msg("Invalid dataset output")
		}

		lakes, err = ilec.Crawl(ctx, client, ilec.CrawlOptions{
			ListingURL:  opts.Listing,
			Pages:       opts.Pages,
			Concurrency: opts.Concurrency,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to scrape lakes")
		}

		if err := writeDataset(cfg.Dataset, lakes, opts.Force); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Dataset).Msg("Failed to write dataset")
		}
		log.Info().Str("path", cfg.Dataset).Int("lakes", len(lakes)).Msg("Dataset written")
	}

	if !processTiles {
		log.Info().Msg("Loader finished successfully")
		return
	}

	if !processLakes {
		lakes, err = readDataset(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Str("dataset", cfg.Dataset).Msg("Failed to read dataset")
		}
	}

	bbox := lake.Bounds(lakes).Pad(cfg.Tiles.Padding)
	if _, err := tiles.Mirror(ctx, client, tiles.Options{
		URLTemplate: cfg.Tiles.Source,
		Dir:         cfg.Tiles.Dir,
		BBox:        bbox,
		MaxZoom:     cfg.Tiles.MaxZoom,
		Concurrency: opts.Concurrency,
		Force:       opts.Force,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to mirror tiles")
	}

	log.Info().Msg("Loader finished successfully")
}

func readDataset(ctx context.Context, cfg *config.Config) ([]lake.Lake, error) {
	src, err := source.Open(ctx, cfg.Dataset, source.Options{S3: cfg.S3})
	if err != nil {
		return nil, err
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	ds, err := lake.Decode(rc)
	if err != nil {
		return nil, err
	}
	for _, issue := range ds.Issues {
		log.Warn().Int("index", issue.Index).Str("id", string(issue.ID)).Str("reason", string(issue.Reason)).Msg("Dataset record issue")
	}

	return ds.Lakes, nil
}

// localPath resolves a dataset location to a file path. Remote locations
// cannot be written by the loader.
func localPath(location string) (string, error) {
	if rest, ok := strings.CutPrefix(location, "file://"); ok {
		return rest, nil
	}
	if strings.Contains(location, "://") {
		return "", fmt.Errorf("cannot write remote dataset %s, use --out with a local path", location)
	}
	return location, nil
}

func writeDataset(location string, lakes []lake.Lake, force bool) error {
	path, err := localPath(location)
	if err != nil {
		return err
	}

	if !force {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return errors.New("file exists, use --force to overwrite")
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(lakes, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}
