package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/banshee-data/training.report/internal/api"
	"github.com/banshee-data/training.report/internal/config"
	"github.com/banshee-data/training.report/internal/db"
)

// runServer serves the API and admin routes until ctx is cancelled, then
// shuts down gracefully.
func runServer(ctx context.Context, listen string, database *db.DB, cfg *config.StudyConfig) error {
	mux := http.NewServeMux()

	// admin debugging routes (accessible only in dev mode or over Tailscale)
	database.AttachAdminRoutes(mux)

	apiMux := api.NewServer(database, cfg, nil).ServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))

	server := &http.Server{
		Addr:    listen,
		Handler: api.LoggingMiddleware(mux),
	}

	go func() {
		log.Printf("Starting HTTP server on %s", listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
