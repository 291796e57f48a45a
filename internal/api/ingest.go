package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dkarpov/runcatch/internal/capture"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Capture clients are native apps, not browsers.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// IngestHandler accepts one capture client at a time. Binary messages
// are encoded frames; they become the live video source for the
// session controller. Closing the socket ends the source.
func (app *App) IngestHandler(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	if app.source != nil {
		app.mu.Unlock()
		respondError(w, http.StatusConflict, "a capture client is already connected")
		return
	}
	src := capture.NewIngestSource(app.Recorder)
	app.source = src
	app.mu.Unlock()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[INGEST] upgrade failed: %v", err)
		app.clearSource(src)
		src.End()
		return
	}
	defer conn.Close()

	log.Printf("[INGEST] capture client connected from %s", r.RemoteAddr)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		if err := src.Push(data); err != nil {
			log.Printf("[INGEST] dropping bad frame: %v", err)
		}
	}

	log.Printf("[INGEST] capture client disconnected")
	src.End()
	app.clearSource(src)
}

func (app *App) clearSource(src *capture.IngestSource) {
	app.mu.Lock()
	if app.source == src {
		app.source = nil
	}
	app.mu.Unlock()
}

// EventsHandler streams controller events to a UI client.
func (app *App) EventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[EVENTS] upgrade failed: %v", err)
		return
	}

	app.Hub.Register(conn)
	defer app.Hub.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
