package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dkarpov/runcatch/internal/api"
	"github.com/dkarpov/runcatch/internal/config"
	"github.com/dkarpov/runcatch/internal/history"
	"github.com/dkarpov/runcatch/internal/recording"
	"github.com/dkarpov/runcatch/internal/session"
	"github.com/dkarpov/runcatch/internal/storage"
	"github.com/dkarpov/runcatch/internal/vision"
)

func main() {
	cfg := config.Load()

	clipStorage, err := storage.NewLocalStorage(cfg.ClipDir)
	if err != nil {
		log.Fatal("Failed to initialize clip storage:", err)
	}

	var remote vision.Classifier
	if cfg.OpenAIAPIKey != "" {
		remote = vision.NewOpenAIClassifier(cfg.OpenAIAPIKey)
		log.Printf("Remote classifier enabled")
	} else {
		log.Printf("Remote classifier disabled (no OPENAI_API_KEY); only local mode available")
	}

	hub := api.NewHub()
	go hub.Run()

	recorder := recording.NewRecorder(cfg.ChunkDuration)
	attempts := history.NewStore(clipStorage)

	controller := session.NewController(
		vision.NewLocalClassifier(),
		remote,
		recorder,
		attempts,
		session.Config{
			ScoreThreshold: cfg.ScoreThreshold,
			RemoteInterval: cfg.RemoteInterval,
			LocalInterval:  cfg.LocalInterval,
			QuotaBackoff:   cfg.QuotaBackoff,
			Visible:        func() bool { return hub.ClientCount() > 0 },
			Notify:         hub.BroadcastEvent,
		},
	)

	defaultMode := session.ModeLocal
	if cfg.DefaultMode == "remote" {
		defaultMode = session.ModeRemote
	}

	app := &api.App{
		Controller:  controller,
		History:     attempts,
		Recorder:    recorder,
		Storage:     clipStorage,
		Hub:         hub,
		DefaultMode: defaultMode,
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on port %d", cfg.Port)
	log.Printf("Clip directory: %s", cfg.ClipDir)
	log.Printf("Default detection mode: %s", defaultMode)
	log.Printf("Score threshold: %d", cfg.ScoreThreshold)

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), router); err != nil {
		log.Fatal(err)
	}
}
