package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", app.HealthzHandler)

	r.Post("/session/start", app.StartSessionHandler)
	r.Post("/session/stop", app.StopSessionHandler)
	r.Get("/session/status", app.SessionStatusHandler)

	r.Get("/attempts", app.ListAttemptsHandler)
	r.Get("/attempts/{id}/clip", app.AttemptClipHandler)
	r.Get("/attempts/{id}/thumbnail", app.AttemptThumbnailHandler)

	r.Get("/ingest", app.IngestHandler)
	r.Get("/events", app.EventsHandler)

	return r
}
