package server

import "net/http"

// Routes registers every endpoint and wraps the mux with request logging.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/fields", s.HandleFieldsList)
	mux.HandleFunc("POST /api/fields", s.HandleFieldCreate)
	mux.HandleFunc("GET /api/fields/{name}", s.HandleFieldGet)
	mux.HandleFunc("PATCH /api/fields/{name}", s.HandleFieldUpdate)
	mux.HandleFunc("DELETE /api/fields/{name}", s.HandleFieldDelete)
	mux.HandleFunc("POST /api/fields/{name}/analyze", s.HandleFieldAnalyze)
	mux.HandleFunc("GET /api/fields/{name}/export", s.HandleFieldExport)
	mux.HandleFunc("GET /api/export", s.HandleExport)

	mux.HandleFunc("GET /api/scene", s.HandleScene)
	mux.HandleFunc("GET /api/scene.webp", s.HandleSceneImage)

	mux.HandleFunc("GET /api/drones", s.HandleDrones)
	mux.HandleFunc("GET /api/drones/battery", s.HandleBattery)
	mux.HandleFunc("GET /api/flights/{drone}/logs", s.HandleFlightLogs)

	mux.HandleFunc("GET /api/reports/health", s.HandleReportsHealth)
	mux.HandleFunc("GET /api/reports/history", s.HandleReportsHistory)

	mux.HandleFunc("GET /favicon.svg", s.HandleFavicon)
	mux.HandleFunc("GET /", s.HandleIndex)

	return RequestLogger(mux)
}
