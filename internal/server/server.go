/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and manages
core service dependencies like the database and router.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	user "Wellpulse_V0.1/internal/User"
	"Wellpulse_V0.1/internal/auth"
	"Wellpulse_V0.1/internal/config"
	"Wellpulse_V0.1/internal/database"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// db provides access to the database service and connection pool.
	db database.Service

	// handlers holds the user-facing route handlers.
	handlers *user.Handlers

	// auth verifies bearer tokens on the protected group.
	auth *auth.Auth
}

// NewServer wires the router into a configured *http.Server with
// production-ready network timeouts.
func NewServer(cfg *config.Config, db database.Service, handlers *user.Handlers, a *auth.Auth) *http.Server {
	app := &Server{
		port:     cfg.HTTPPort,
		db:       db,
		handlers: handlers,
		auth:     a,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", app.port),
		Handler:      app.RegisterRoutes(), // Injected from routes.go
		IdleTimeout:  time.Minute,          // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second,     // Maximum duration for reading the entire request.
		WriteTimeout: 30 * time.Second,     // Maximum duration before timing out writes of the response.
	}
}
