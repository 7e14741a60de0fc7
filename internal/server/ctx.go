package server

import (
	"context"
	"time"

	"github.com/woozymasta/agroglobe/assets"
	"github.com/woozymasta/agroglobe/internal/analysis"
	"github.com/woozymasta/agroglobe/internal/config"
	"github.com/woozymasta/agroglobe/internal/drones"
	"github.com/woozymasta/agroglobe/internal/fields"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	// baseCtx outlives single requests; background analyses run under it.
	baseCtx  context.Context
	now      func() time.Time
	Config   *config.Config
	Store    *fields.Store
	Analyzer *analysis.Analyzer
	Fleet    *drones.Fleet
	Index    []byte
	Favicon  []byte
}

// NewServerContext wires the field store, analyzer and drone fleet from cfg.
// Background work started by handlers is cancelled together with ctx.
func NewServerContext(ctx context.Context, cfg *config.Config, store *fields.Store) *ServerContext {
	log.Info().
		Str("storage", store.Path()).
		Int("fields", len(store.List())).
		Int("drones", len(cfg.Drones)).
		Dur("analysis_delay", cfg.Analysis.Delay).
		Msg("Initializing server context")

	return &ServerContext{
		baseCtx:  ctx,
		now:      time.Now,
		Config:   cfg,
		Store:    store,
		Analyzer: analysis.New(store, cfg.Analysis.Delay, cfg.Analysis.Seed),
		Fleet:    drones.NewFleet(cfg.Drones),
		Index:    assets.Index,
		Favicon:  assets.Favicon,
	}
}
