// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"slices"
	"strings"

	"github.com/woozymasta/agroglobe/internal/analysis"
	"github.com/woozymasta/agroglobe/internal/drones"
	"github.com/woozymasta/agroglobe/internal/fields"
	"github.com/woozymasta/agroglobe/internal/render"
	"github.com/woozymasta/agroglobe/internal/reports"
	"github.com/woozymasta/agroglobe/internal/scene"
	"github.com/woozymasta/agroglobe/internal/timefmt"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// fieldView decorates a field with display state for the dashboard.
type fieldView struct {
	fields.Field
	LastUpdatedText string `json:"lastUpdatedText"`
	Risk            string `json:"risk,omitempty"`
}

func (s *ServerContext) view(f fields.Field) fieldView {
	v := fieldView{Field: f, LastUpdatedText: timefmt.Relative(s.now(), f.LastUpdated)}
	if f.Data != nil {
		v.Risk = string(analysis.RiskLevel(f.Data.InfectionChance))
	}
	return v
}

// HandleFieldsList serves every stored field.
func (s *ServerContext) HandleFieldsList(w http.ResponseWriter, r *http.Request) {
	list := s.Store.List()
	out := make([]fieldView, 0, len(list))
	for _, f := range list {
		out = append(out, s.view(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleFieldCreate validates and stores a new field.
func (s *ServerContext) HandleFieldCreate(w http.ResponseWriter, r *http.Request) {
	var nf fields.NewField
	if err := decodeBody(w, r, &nf); err != nil {
		writeError(w, err)
		return
	}

	f, err := s.Store.Add(nf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view(f))
}

// HandleFieldGet serves one field by name.
func (s *ServerContext) HandleFieldGet(w http.ResponseWriter, r *http.Request) {
	f, err := s.Store.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(f))
}

// HandleFieldUpdate applies a partial update to a field.
func (s *ServerContext) HandleFieldUpdate(w http.ResponseWriter, r *http.Request) {
	var p fields.Patch
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, err)
		return
	}

	f, err := s.Store.Update(r.PathValue("name"), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(f))
}

// HandleFieldDelete removes a field. Deleting an unknown name succeeds.
func (s *ServerContext) HandleFieldDelete(w http.ResponseWriter, r *http.Request) {
	s.Store.Remove(r.PathValue("name"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleFieldAnalyze starts a background analysis and returns the field in
// its loading state.
func (s *ServerContext) HandleFieldAnalyze(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.Analyzer.Start(s.baseCtx, name); err != nil {
		writeError(w, err)
		return
	}

	f, err := s.Store.Get(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.view(f))
}

// HandleFieldExport downloads one field in the requested format.
func (s *ServerContext) HandleFieldExport(w http.ResponseWriter, r *http.Request) {
	f, err := s.Store.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.export(w, r, f.Name, []fields.Field{f})
}

// HandleExport downloads every field in the requested format.
func (s *ServerContext) HandleExport(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "fields", s.Store.List())
}

func (s *ServerContext) export(w http.ResponseWriter, r *http.Request, name string, list []fields.Field) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if !slices.Contains(reports.Formats, format) {
		writeError(w, fmt.Errorf("%w: unsupported export format %q", errBadRequest, format))
		return
	}

	var buf bytes.Buffer
	if err := reports.Export(&buf, format, list); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", reports.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", safeFilename(name)+"."+format))
	_, _ = w.Write(buf.Bytes())
}

func (s *ServerContext) scene() scene.Scene {
	return scene.Build(s.Store.Geometries(), s.Config.Globe)
}

// HandleScene serves the projected globe geometry.
func (s *ServerContext) HandleScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scene())
}

// HandleSceneImage serves a WebP preview of the globe. The ETag is derived
// from the scene geometry so unchanged scenes answer 304.
func (s *ServerContext) HandleSceneImage(w http.ResponseWriter, r *http.Request) {
	sc := s.scene()

	data, err := json.Marshal(sc)
	if err != nil {
		writeError(w, err)
		return
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	etag := fmt.Sprintf(`"%x"`, h.Sum64())

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	img := render.Snapshot(sc, render.DefaultOptions(s.Config.Globe.SnapshotSize))

	var buf bytes.Buffer
	if err := render.EncodeWebP(&buf, img, 85); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(buf.Bytes())
}

// HandleDrones serves the fleet status.
func (s *ServerContext) HandleDrones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Fleet.List())
}

// HandleBattery serves the battery history for range=1d|3d|7d.
func (s *ServerContext) HandleBattery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Fleet.BatteryHistory(r.URL.Query().Get("range"), drones.ReferenceDate))
}

// HandleFlightLogs serves a drone's flight log as plain text.
func (s *ServerContext) HandleFlightLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.Fleet.Logs(r.PathValue("drone"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", errNotFound, err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(logs))
}

// HandleReportsHealth serves the field health radar.
func (s *ServerContext) HandleReportsHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reports.HealthRadar())
}

// HandleReportsHistory serves the field history for range=7d|30d|90d.
func (s *ServerContext) HandleReportsHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reports.History(r.URL.Query().Get("range"), drones.ReferenceDate))
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, fmt.Errorf("%w: %s", errNotFound, r.URL.Path))
		return
	}
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.Index))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.Index)
}

var (
	errBadRequest = errors.New("bad request")
	errNotFound   = errors.New("not found")
)

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, fields.ErrInvalid), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, fields.ErrNotFound), errors.Is(err, errNotFound):
		status = http.StatusNotFound
	case errors.Is(err, fields.ErrDuplicate), errors.Is(err, analysis.ErrBusy):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func safeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
