package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/woozymasta/agroglobe/internal/config"
	"github.com/woozymasta/agroglobe/internal/fields"
	"github.com/woozymasta/agroglobe/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Storage     string   `short:"s" long:"storage"     env:"STORAGE_PATH"   description:"Field store file, overrides storage.path"`
	Sources     []string `short:"u" long:"source"      description:"GeoJSON URL or file to import, replaces configured sources"`
	Crop        string   `short:"C" long:"crop"        description:"Crop for features without a crop property"`
	Timeout     int      `short:"t" long:"timeout"     env:"IMPORT_TIMEOUT" description:"HTTP timeout in seconds" default:"15"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY"    description:"Sources imported in parallel" default:"4"`
	Force       bool     `short:"f" long:"force"       description:"Replace fields that already exist"`
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
	if cfg.Storage.Path == "" {
		log.Fatal().Msg("No storage path configured, imported fields would be lost")
	}

	// Flag sources replace configured ones
	sources := make([]fields.ImportSource, 0, len(cfg.Sources))
	if len(opts.Sources) > 0 {
		for _, u := range opts.Sources {
			sources = append(sources, fields.ImportSource{URL: u, Crop: opts.Crop})
		}
	} else {
		for _, s := range cfg.Sources {
			crop := s.Crop
			if opts.Crop != "" {
				crop = opts.Crop
			}
			sources = append(sources, fields.ImportSource{URL: s.URL, Crop: crop})
		}
	}

	if len(sources) == 0 {
		log.Warn().Msg("No sources to import")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: time.Duration(opts.Timeout) * time.Second}
	store := fields.Open(cfg.Storage.Path)

	log.Info().
		Int("sources", len(sources)).
		Int("fields_existing", len(store.List())).
		Bool("force", opts.Force).
		Msg("Starting importer")

	results, errs := fields.ImportAll(ctx, client, store, sources, opts.Concurrency, opts.Force)

	var total fields.ImportResult
	failed := 0
	for i, res := range results {
		if errs[i] != nil {
			log.Error().Err(errs[i]).Str("source", sources[i].URL).Msg("Failed to import source")
			failed++
			continue
		}
		total.Added += res.Added
		total.Replaced += res.Replaced
		total.Skipped += res.Skipped
	}

	log.Info().
		Int("added", total.Added).
		Int("replaced", total.Replaced).
		Int("skipped", total.Skipped).
		Int("failed_sources", failed).
		Msg("Importer finished")

	if failed > 0 {
		os.Exit(1)
	}
}
