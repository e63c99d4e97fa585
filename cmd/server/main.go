package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/lakemap/internal/catalog"
	"github.com/woozymasta/lakemap/internal/config"
	"github.com/woozymasta/lakemap/internal/logger"
	"github.com/woozymasta/lakemap/internal/metrics"
	"github.com/woozymasta/lakemap/internal/server"
	"github.com/woozymasta/lakemap/internal/source"
	"github.com/woozymasta/lakemap/internal/web"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"    env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"      env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"      env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	Dataset    string `short:"d" long:"dataset"   env:"DATASET"        description:"Lake dataset: file path, http(s):// or s3:// URL (overrides config)"`
	TilesDir   string `short:"t" long:"tiles-dir" env:"TILES_DIR"      description:"Directory of mirrored webp tiles (overrides config)"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
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
	if opts.TilesDir != "" {
		cfg.Tiles.Dir = opts.TilesDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := source.Open(ctx, cfg.Dataset, source.Options{S3: cfg.S3})
	if err != nil {
		log.Fatal().Err(err).Str("dataset", cfg.Dataset).Msg("Invalid dataset location")
	}

	bundle, err := web.NewBundle()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bundle page assets")
	}

	m := metrics.New()
	cat := catalog.New(m)
	srvCtx := server.NewServerContext(cfg, cat, bundle, m)

	// The page renders with zero markers until this finishes.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
		defer cancel()
		cat.Load(loadCtx, src)
	}()

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Str("dataset", src.String()).
		Msg("Web server started")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
