package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dkarpov/runcatch/internal/capture"
	"github.com/dkarpov/runcatch/internal/history"
	"github.com/dkarpov/runcatch/internal/recording"
	"github.com/dkarpov/runcatch/internal/session"
	"github.com/dkarpov/runcatch/internal/storage"
)

type App struct {
	Controller  *session.Controller
	History     *history.Store
	Recorder    *recording.Recorder
	Storage     storage.Storage
	Hub         *Hub
	DefaultMode session.Mode

	mu     sync.Mutex
	source *capture.IngestSource
}

func (app *App) currentSource() *capture.IngestSource {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.source
}

func (app *App) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (app *App) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	mode := app.DefaultMode
	switch r.URL.Query().Get("mode") {
	case "local":
		mode = session.ModeLocal
	case "remote":
		mode = session.ModeRemote
	case "":
	default:
		respondError(w, http.StatusBadRequest, "mode must be local or remote")
		return
	}

	src := app.currentSource()
	if src == nil {
		respondError(w, http.StatusConflict, "no capture client connected")
		return
	}

	if err := app.Controller.Start(src, mode); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	app.respondStatus(w)
}

func (app *App) StopSessionHandler(w http.ResponseWriter, r *http.Request) {
	app.Controller.Stop()
	app.respondStatus(w)
}

func (app *App) SessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	app.respondStatus(w)
}

type statusResponse struct {
	State            string `json:"state"`
	Mode             string `json:"mode"`
	RateLimited      bool   `json:"rate_limited"`
	CaptureConnected bool   `json:"capture_connected"`
	Attempts         int    `json:"attempts"`
}

func (app *App) respondStatus(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, statusResponse{
		State:            app.Controller.State().String(),
		Mode:             app.Controller.Mode().String(),
		RateLimited:      app.Controller.RateLimited(),
		CaptureConnected: app.currentSource() != nil,
		Attempts:         app.History.Len(),
	})
}

type attemptResponse struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Score        *int      `json:"score"`
	Status       string    `json:"status"`
	HasClip      bool      `json:"has_clip"`
	HasThumbnail bool      `json:"has_thumbnail"`
}

func (app *App) ListAttemptsHandler(w http.ResponseWriter, r *http.Request) {
	entries := app.History.List()
	attempts := make([]attemptResponse, 0, len(entries))
	for _, e := range entries {
		attempts = append(attempts, attemptResponse{
			ID:           e.ID,
			Timestamp:    e.Timestamp,
			Score:        e.Score,
			Status:       string(e.Status),
			HasClip:      e.ClipFile != "" || len(e.Media) > 0,
			HasThumbnail: e.ThumbFile != "" || len(e.Thumbnail) > 0,
		})
	}
	respondJSON(w, http.StatusOK, attempts)
}

func (app *App) AttemptClipHandler(w http.ResponseWriter, r *http.Request) {
	entry, ok := app.History.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	app.serveMedia(w, r, entry.ClipFile, entry.Media, "video/webm")
}

func (app *App) AttemptThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	entry, ok := app.History.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	app.serveMedia(w, r, entry.ThumbFile, entry.Thumbnail, "image/png")
}

func (app *App) serveMedia(w http.ResponseWriter, r *http.Request, filename string, data []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)

	if filename != "" && app.Storage != nil {
		file, err := app.Storage.OpenFile(filename)
		if err != nil {
			http.Error(w, "media file not found", http.StatusNotFound)
			return
		}
		defer file.Close()
		http.ServeContent(w, r, filename, time.Time{}, file)
		return
	}

	if len(data) == 0 {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, filename, time.Time{}, bytes.NewReader(data))
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
