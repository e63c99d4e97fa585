package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/woozymasta/lakemap/internal/catalog"
	"github.com/woozymasta/lakemap/internal/config"
	"github.com/woozymasta/lakemap/internal/logger"
	"github.com/woozymasta/lakemap/internal/metrics"
	"github.com/woozymasta/lakemap/internal/source"
	"github.com/woozymasta/lakemap/internal/view"
	"github.com/woozymasta/lakemap/internal/web"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Dataset    string `short:"d" long:"dataset" env:"DATASET"     description:"Lake dataset: file path, http(s):// or s3:// URL (overrides config)"`
	Query      string `short:"q" long:"query"                     description:"Filter the exported markers by name or species"`
	Output     string `short:"o" long:"out"                       description:"Output HTML file" default:"index.html"`
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
	if opts.Dataset != "" {
		cfg.Dataset = opts.Dataset
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LoadTimeout)
	defer cancel()

	src, err := source.Open(ctx, cfg.Dataset, source.Options{S3: cfg.S3})
	if err != nil {
		log.Fatal().Err(err).Str("dataset", cfg.Dataset).Msg("Invalid dataset location")
	}

	cat := catalog.New(metrics.New())
	if st, ok := cat.Load(ctx, src).(catalog.LoadError); ok {
		log.Fatal().Err(st.Reason).Str("dataset", src.String()).Msg("Failed to load dataset")
	}

	bundle, err := web.NewBundle()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bundle page assets")
	}

	display := view.MapDisplay{Catalog: cat, Map: cfg.Map}
	mv := display.Render(opts.Query)

	f, err := os.Create(opts.Output)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output file")
	}

	start := time.Now()
	if err := bundle.RenderMinified(f, web.Page{View: mv, Static: true}); err != nil {
		_ = f.Close()
		log.Fatal().Err(err).Msg("Failed to render page")
	}
	if err := f.Close(); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output file")
	}

	log.Info().
		Str("path", opts.Output).
		Int("markers", len(mv.Markers)).
		Str("status", string(mv.Status)).
		Dur("took", time.Since(start)).
		Str("query", opts.Query).
		Msg("Static map exported")
}
