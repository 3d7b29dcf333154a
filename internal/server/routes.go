package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Platform"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(LoggerMiddleware)

	// Open routes
	e.GET("/health", s.healthHandler)
	e.GET("/ops/system", s.systemStatsHandler)

	// Protected routes
	protected := e.Group("")
	protected.Use(s.auth.Middleware)

	// Profile
	protected.GET("/profile", s.handlers.GetProfileHandler)
	protected.PUT("/profile", s.handlers.UpdateProfileHandler)

	// Health snapshots
	protected.POST("/health/snapshot", s.handlers.IngestSnapshotHandler)
	protected.GET("/health/snapshot", s.handlers.GetLatestSnapshotHandler)

	// Daily advice
	protected.POST("/advice/daily", s.handlers.DailyAdviceHandler)
	protected.GET("/advice/tries", s.handlers.GetTriesHandler)
	protected.GET("/advice/ws", s.handlers.AdviceSocketHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.Health())
}

// LoggerMiddleware assigns each request an ID and a request-scoped logger.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}
