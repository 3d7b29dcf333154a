package user

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"Wellpulse_V0.1/internal/advice"
	"Wellpulse_V0.1/internal/utility"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// DailyAdviceRequest carries the client-side facts the server cannot know:
// where the user is and what their local clock reads. LocalTime is the
// already-localized wall time; the server never converts time zones.
type DailyAdviceRequest struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	City      string     `json:"city,omitempty"`
	LocalTime *time.Time `json:"local_time,omitempty"`
}

// TriesResponse lists the recent daily tries inside the look-back window.
type TriesResponse struct {
	Tries      advice.TryHistory `json:"tries"`
	WindowDays int               `json:"window_days"`
}

/* =================================================================================
									HANDLERS
=================================================================================*/

// DailyAdviceHandler runs the full advice flow and returns the validated
// message. Generation is expensive, so requests are rate limited per IP.
func (h *Handlers) DailyAdviceHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.GetLoggerFromContext(c)

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	if err := utility.CheckIPRateLimit(utility.GetRealIP(c)); err != nil {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
	}

	var req DailyAdviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	now := time.Now()
	if req.LocalTime != nil {
		now = *req.LocalTime
	}
	loc := advice.Location{Latitude: req.Latitude, Longitude: req.Longitude, City: req.City}

	result, err := h.advisor.DailyAdvice(ctx, userID, loc, now)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Daily advice failed")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// GetTriesHandler returns the rolling try history the selector works from.
func (h *Handlers) GetTriesHandler(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	tries, err := h.store.RecentDailyTries(ctx, userID, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	if tries == nil {
		tries = advice.TryHistory{}
	}
	return c.JSON(http.StatusOK, TriesResponse{Tries: tries, WindowDays: advice.TryWindowDays})
}

// AdviceSocketHandler upgrades the connection and keeps it registered until
// the client disconnects. The hub pushes an ADVICE_READY event when a new
// message is generated.
func (h *Handlers) AdviceSocketHandler(c echo.Context) error {
	logger := utility.GetLoggerFromContext(c)

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	conn, err := utility.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	h.hub.RegisterClient(userID, conn)
	defer h.hub.UnregisterClient(userID)

	// Drain the connection; the server only pushes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	return nil
}
