// Package user holds the HTTP handlers for the app-facing surface: profile
// management, daily snapshot ingestion, and the daily advice flow.
package user

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"Wellpulse_V0.1/internal/advice"
	"Wellpulse_V0.1/internal/config"
	"Wellpulse_V0.1/internal/database"
	"Wellpulse_V0.1/internal/geminiservice"
	"Wellpulse_V0.1/internal/utility"
)

// Handlers bundles the dependencies of the user-facing routes. Everything is
// injected; the package keeps no global state.
type Handlers struct {
	store   database.Store
	advisor *geminiservice.Advisor
	hub     *utility.Hub
	cfg     *config.Config
}

func NewHandlers(store database.Store, advisor *geminiservice.Advisor, hub *utility.Hub, cfg *config.Config) *Handlers {
	return &Handlers{store: store, advisor: advisor, hub: hub, cfg: cfg}
}

// respondError maps the error taxonomy onto HTTP statuses. Validation
// problems carry their code and field so the app can highlight the input.
func respondError(c echo.Context, err error) error {
	var ve *advice.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": ve.Message,
			"code":  ve.Code,
			"field": ve.Field,
		})
	}
	if errors.Is(err, database.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	if advice.IsPreconditionError(err) {
		// A precondition violation is a caller bug, not a user problem.
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Your data is not ready for advice yet. Complete your profile and sync today's health data first.",
		})
	}
	if advice.IsProviderError(err) {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "Advice service temporarily unavailable. Please try again later.",
		})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}
