package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/woozymasta/agroglobe/internal/config"
	"github.com/woozymasta/agroglobe/internal/fields"
	"github.com/woozymasta/agroglobe/internal/geo"
	"github.com/woozymasta/agroglobe/internal/logger"
	"github.com/woozymasta/agroglobe/internal/scene"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string  `short:"c" long:"config" env:"CONFIG_FILE" description:"Configuration file for globe style and focus" default:"config.yaml"`
	Input      string  `short:"i" long:"in"     description:"Input GeoJSON file. Reads from stdin if empty"`
	Output     string  `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format     string  `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Radius     float64 `short:"r" long:"radius" description:"Globe radius, overrides globe.radius"`
	Name       string  `short:"n" long:"name"   description:"Shape name" default:"Field"`
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
	if opts.Radius < 0 {
		log.Fatal().Float64("radius", opts.Radius).Msg("Radius must be positive")
	}
	if opts.Radius > 0 {
		cfg.Globe.Radius = opts.Radius
	}

	polygons, err := readPolygons(opts.Input)
	if err != nil {
		log.Fatal().Err(err).Str("in", opts.Input).Msg("Failed to read GeoJSON")
	}

	sc := scene.Build([]fields.Geometry{{Name: opts.Name, Polygons: polygons}}, cfg.Globe)
	if sc.Message != "" {
		log.Warn().Msg(sc.Message)
	}

	data, err := encode(sc, opts.Format)
	if err != nil {
		log.Fatal().Err(err).Str("format", opts.Format).Msg("Failed to encode scene")
	}

	if opts.Output == "" {
		if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
			log.Fatal().Err(err).Msg("Failed to write scene")
		}
		return
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write scene")
	}

	log.Info().
		Str("path", opts.Output).
		Str("format", opts.Format).
		Int("polygons", len(polygons)).
		Int("triangles", sc.TriangleCount()).
		Float64("radius", cfg.Globe.Radius).
		Msg("Scene written")
}

func readPolygons(path string) ([]geo.Polygon, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	return geo.ParseGeoJSON(data)
}

func encode(sc scene.Scene, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(sc)
	}
	return json.MarshalIndent(sc, "", "  ")
}
