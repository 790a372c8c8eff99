package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/tale-engine/internal/config"
	"github.com/jwebster45206/tale-engine/internal/handlers"
	"github.com/jwebster45206/tale-engine/internal/logger"
	"github.com/jwebster45206/tale-engine/internal/middleware"
	"github.com/jwebster45206/tale-engine/internal/services"
	"github.com/jwebster45206/tale-engine/internal/storage"
	"github.com/jwebster45206/tale-engine/pkg/content"
	"github.com/jwebster45206/tale-engine/pkg/narrator"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Tale Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	tables, err := content.Load(cfg.DataDir)
	if err != nil {
		log.Error("Failed to load content", "error", err, "dir", cfg.DataDir)
		os.Exit(1)
	}
	if err := tables.Validate(); err != nil {
		log.Error("Content validation failed", "error", err)
		os.Exit(1)
	}
	log.Info("Content loaded",
		"locations", len(tables.Locations),
		"characters", len(tables.Characters),
		"items", len(tables.Items),
		"events", len(tables.Events))

	store := storage.NewRedisStorage(cfg.RedisURL, 0, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Embellishment is optional flavor. Without an API key the engine
	// serves canned lines verbatim.
	var embellisher narrator.Embellisher
	if cfg.VeniceAPIKey != "" {
		embellisher = services.NewVeniceService(cfg.VeniceAPIKey, cfg.ModelName)
		log.Info("Narrator embellishment enabled", "model", cfg.ModelName)
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	sessionHandler := handlers.NewSessionHandler(tables, store, embellisher, cfg.StartLocation, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
