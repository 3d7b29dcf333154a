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

// IngestSnapshotRequest carries one day of raw health data from the
// collaborator. Optional sections are pointers; nil means no data arrived
// for that dimension and the scorer degrades it to neutral.
type IngestSnapshotRequest struct {
	Date     time.Time               `json:"date"`
	Sleep    *advice.SleepSummary    `json:"sleep,omitempty"`
	Vitals   *advice.MorningVitals   `json:"morning_vitals,omitempty"`
	Activity *advice.DayActivity     `json:"yesterday_activity,omitempty"`
	Trends   *advice.WeekTrends      `json:"week_trends,omitempty"`
	Rhythm   *advice.RhythmStability `json:"rhythm,omitempty"`
	Factors  []advice.Factor         `json:"factors,omitempty"`
}

// SnapshotResponse returns the stored snapshot including its derived scores.
type SnapshotResponse struct {
	Snapshot advice.HealthSnapshot `json:"snapshot"`
}

/* =================================================================================
									HANDLERS
=================================================================================*/

// IngestSnapshotHandler scores and persists the day's health data. Snapshots
// are immutable per day: re-sending the same day keeps the first write.
func (h *Handlers) IngestSnapshotHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.GetLoggerFromContext(c)

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req IngestSnapshotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Date.IsZero() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date is required"})
	}

	scores := advice.ScoreDay(advice.DayInput{
		Sleep:    req.Sleep,
		Vitals:   req.Vitals,
		Activity: req.Activity,
		Trends:   req.Trends,
		Rhythm:   req.Rhythm,
	})

	snapshot := advice.HealthSnapshot{
		Date:       req.Date,
		Sleep:      req.Sleep,
		Vitals:     req.Vitals,
		Activity:   req.Activity,
		WeekTrends: req.Trends,
		Scores:     &scores,
		Rhythm:     req.Rhythm,
		Factors:    req.Factors,
	}

	if err := h.store.PutSnapshot(ctx, userID, snapshot); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Str("day", utility.DateKey(req.Date)).
			Msg("Failed to persist snapshot")
		return respondError(c, err)
	}

	logger.Info().Str("user_id", userID).Str("day", utility.DateKey(req.Date)).
		Int("sleep", scores.Sleep).Int("hrv", scores.HRV).
		Int("rhythm", scores.Rhythm).Int("activity", scores.Activity).
		Msg("Snapshot ingested")

	return c.JSON(http.StatusOK, SnapshotResponse{Snapshot: snapshot})
}

// GetLatestSnapshotHandler returns the most recent stored snapshot.
func (h *Handlers) GetLatestSnapshotHandler(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	snapshot, err := h.store.LatestSnapshot(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, SnapshotResponse{Snapshot: *snapshot})
}
