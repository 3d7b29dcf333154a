package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	user "Wellpulse_V0.1/internal/User"
	"Wellpulse_V0.1/internal/auth"
	"Wellpulse_V0.1/internal/config"
	"Wellpulse_V0.1/internal/database"
	"Wellpulse_V0.1/internal/geminiservice"
	"Wellpulse_V0.1/internal/server"
	"Wellpulse_V0.1/internal/utility"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	log.Info().Msg("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load configuration")
	}

	ctx := context.Background()
	dbService, err := database.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	defer dbService.Close()

	hub := utility.NewHub()
	gemini := geminiservice.NewClient(cfg)
	advisor := geminiservice.NewAdvisor(dbService.Store(), gemini, hub, cfg)
	handlers := user.NewHandlers(dbService.Store(), advisor, hub, cfg)

	apiServer := server.NewServer(cfg, dbService, handlers, auth.New(cfg.SessionSecret))

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, done)

	log.Info().Int("port", cfg.HTTPPort).Msg("Starting server")
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
