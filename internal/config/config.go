package config

import (
	"fmt"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds every tunable of the advice service. Values come from
// environment variables prefixed with WELLPULSE_ (a local .env file is
// loaded automatically); an explicit Config value is threaded through the
// constructors instead of packages reading globals, so concurrent requests
// can never observe half-updated settings.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres connection pieces, assembled by DSN().
	DBUsername string `envconfig:"DB_USERNAME" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBDatabase string `envconfig:"DB_DATABASE" default:"wellpulse"`
	DBSchema   string `envconfig:"DB_SCHEMA" default:"public"`

	// SessionSecret signs and verifies the HMAC access tokens issued by
	// the app gateway.
	SessionSecret string `envconfig:"SESSION_SECRET" default:""`

	// Gemini generation call tuning.
	GeminiAPIKey     string        `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel      string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	GeminiTimeout    time.Duration `envconfig:"GEMINI_TIMEOUT" default:"15s"`
	GeminiMaxRetries int           `envconfig:"GEMINI_MAX_RETRIES" default:"3"`
	GeminiBackoff    time.Duration `envconfig:"GEMINI_BACKOFF" default:"1s"`

	// SchemaRetries bounds how often generation is re-attempted when the
	// provider returns a structurally invalid payload before the static
	// fallback message is served.
	SchemaRetries int `envconfig:"SCHEMA_RETRIES" default:"2"`

	// DefaultLanguage is used when a request carries no language
	// preference of its own.
	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"en"`

	// ForbidEmoji switches the no-emoji response constraint on.
	ForbidEmoji bool `envconfig:"FORBID_EMOJI" default:"false"`

	// SnapshotCacheSize caps the in-process latest-snapshot cache.
	SnapshotCacheSize int `envconfig:"SNAPSHOT_CACHE_SIZE" default:"512"`
}

// DSN assembles the Postgres connection string from the individual pieces.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s",
		c.DBUsername, c.DBPassword, c.DBHost, c.DBPort, c.DBDatabase, c.DBSchema)
}

// New parses the WELLPULSE_-prefixed environment into a Config.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("WELLPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("db_host", cfg.DBHost).
		Str("db_database", cfg.DBDatabase).
		Str("gemini_model", cfg.GeminiModel).
		Dur("gemini_timeout", cfg.GeminiTimeout).
		Int("gemini_max_retries", cfg.GeminiMaxRetries).
		Int("schema_retries", cfg.SchemaRetries).
		Str("default_language", cfg.DefaultLanguage).
		Bool("forbid_emoji", cfg.ForbidEmoji).
		Msg("Configuration loaded")

	return &cfg, nil
}
