package main

import (
	"os"

	"github.com/woozymasta/agroglobe/internal/config"
	"github.com/woozymasta/agroglobe/internal/fields"
	"github.com/woozymasta/agroglobe/internal/logger"
	"github.com/woozymasta/agroglobe/internal/render"
	"github.com/woozymasta/agroglobe/internal/scene"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string  `short:"c" long:"config"  env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	Storage    string  `short:"s" long:"storage" env:"STORAGE_PATH" description:"Field store file, overrides storage.path"`
	Output     string  `short:"o" long:"out"     description:"Output WebP file" default:"globe.webp"`
	Size       int     `short:"S" long:"size"    description:"Image size in pixels, overrides globe.snapshot_size"`
	Quality    float32 `short:"q" long:"quality" description:"WebP quality (0-100)" default:"85"`
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
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.Storage != "" {
		cfg.Storage.Path = opts.Storage
	}
	if opts.Size > 0 {
		cfg.Globe.SnapshotSize = opts.Size
	}

	store := fields.Open(cfg.Storage.Path)
	sc := scene.Build(store.Geometries(), cfg.Globe)
	if sc.Message != "" {
		log.Warn().Msg(sc.Message)
	}

	img := render.Snapshot(sc, render.DefaultOptions(cfg.Globe.SnapshotSize))

	f, err := os.Create(opts.Output)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to create output file")
	}

	if err := render.EncodeWebP(f, img, opts.Quality); err != nil {
		f.Close()
		log.Fatal().Err(err).Msg("Failed to encode snapshot")
	}
	if err := f.Close(); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output file")
	}

	log.Info().
		Str("path", opts.Output).
		Int("shapes", len(sc.Shapes)).
		Int("triangles", sc.TriangleCount()).
		Int("size", cfg.Globe.SnapshotSize).
		Msg("Snapshot written")
}
