package utility

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	IPRateLimiter = sync.Map{}
)

// GetRealIP is a helper function to get the user's real IP address.
// It checks proxy headers first.
func GetRealIP(c echo.Context) string {
	// X-Forwarded-For can be a list: "client, proxy1, proxy2"
	xForwardedFor := c.Request().Header.Get("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	xRealIP := c.Request().Header.Get("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	return c.RealIP()
}

// GetUserIDFromContext safely retrieves the user ID the auth middleware put
// into the Echo context.
func GetUserIDFromContext(c echo.Context) (string, error) {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetLoggerFromContext returns the request-scoped logger installed by the
// logging middleware, falling back to the global logger.
func GetLoggerFromContext(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get("logger").(*zerolog.Logger); ok {
		return logger
	}
	return &log.Logger
}

// ParseIntParam parses a query parameter, returning the fallback on empty or
// malformed input.
func ParseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// ParseFloatParam parses a float query parameter with a fallback.
func ParseFloatParam(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// DateKey formats a timestamp as the calendar-day key used for snapshots and
// tries.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// CheckIPRateLimit allows at most 10 requests per IP per 15-minute window.
// Advice generation is expensive; this keeps a misbehaving client from
// burning the provider quota.
func CheckIPRateLimit(ip string) error {
	now := time.Now()
	window := 15 * time.Minute
	maxAttempts := 10

	val, _ := IPRateLimiter.LoadOrStore(ip, []time.Time{})
	attempts := val.([]time.Time)

	// Remove old attempts
	var recent []time.Time
	for _, t := range attempts {
		if now.Sub(t) < window {
			recent = append(recent, t)
		}
	}

	if len(recent) >= maxAttempts {
		return fmt.Errorf("too many attempts, please try again later")
	}

	recent = append(recent, now)
	IPRateLimiter.Store(ip, recent)
	return nil
}
