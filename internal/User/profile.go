package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"Wellpulse_V0.1/internal/advice"
	"Wellpulse_V0.1/internal/utility"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// UpdateProfileRequest defines the payload expected from the client.
type UpdateProfileRequest struct {
	Nickname          string   `json:"nickname"`
	Age               int      `json:"age"`
	WeightKg          float64  `json:"weight_kg"`
	HeightCm          float64  `json:"height_cm"`
	Gender            string   `json:"gender"`
	Occupation        string   `json:"occupation,omitempty"`
	LifestyleRhythm   string   `json:"lifestyle_rhythm,omitempty"`
	ExerciseFrequency string   `json:"exercise_frequency,omitempty"`
	AlcoholFrequency  string   `json:"alcohol_frequency,omitempty"`
	Interests         []string `json:"interests"`
}

// ProfileResponse is the profile plus its derived reads. BMI and completion
// rate are computed on every read, never stored.
type ProfileResponse struct {
	Profile        advice.UserProfile `json:"profile"`
	BMI            float64            `json:"bmi"`
	CompletionRate float64            `json:"completion_rate"`
}

func (r UpdateProfileRequest) toProfile() advice.UserProfile {
	gender := advice.Gender(r.Gender)
	if gender == "" {
		gender = advice.GenderUnspecified
	}
	interests := make([]advice.Domain, 0, len(r.Interests))
	for _, tag := range r.Interests {
		interests = append(interests, advice.Domain(tag))
	}
	return advice.UserProfile{
		Nickname:          r.Nickname,
		Age:               r.Age,
		WeightKg:          r.WeightKg,
		HeightCm:          r.HeightCm,
		Gender:            gender,
		Occupation:        advice.Occupation(r.Occupation),
		LifestyleRhythm:   advice.LifestyleRhythm(r.LifestyleRhythm),
		ExerciseFrequency: advice.ExerciseFrequency(r.ExerciseFrequency),
		AlcoholFrequency:  advice.AlcoholFrequency(r.AlcoholFrequency),
		Interests:         interests,
	}
}

/* =================================================================================
									HANDLERS
=================================================================================*/

// GetProfileHandler returns the stored profile with its derived reads.
func (h *Handlers) GetProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.GetLoggerFromContext(c)

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	profile, err := h.store.GetProfile(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("Profile lookup failed")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, ProfileResponse{
		Profile:        profile,
		BMI:            profile.BMI(),
		CompletionRate: profile.CompletionRate(),
	})
}

// UpdateProfileHandler validates and persists a profile edit. Invalid
// profiles are rejected with the first violated rule; nothing is silently
// corrected.
func (h *Handlers) UpdateProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.GetLoggerFromContext(c)

	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	profile := req.toProfile()
	if err := profile.Validate(); err != nil {
		logger.Info().Err(err).Str("user_id", userID).Msg("Profile rejected")
		return respondError(c, err)
	}

	if err := h.store.PutProfile(ctx, userID, profile); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Failed to persist profile")
		return respondError(c, err)
	}

	logger.Info().Str("user_id", userID).Msg("Profile updated")
	return c.JSON(http.StatusOK, ProfileResponse{
		Profile:        profile,
		BMI:            profile.BMI(),
		CompletionRate: profile.CompletionRate(),
	})
}
