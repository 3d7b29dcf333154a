// Package database owns the narrow persistence surface of the advice
// service: the user profile record, the most recent daily snapshot, and the
// 14-day rolling try history. Everything else about the user lives with the
// external app gateway.
package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"Wellpulse_V0.1/internal/config"
)

// Service represents a service that interacts with the database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	Close()

	// Store exposes the narrow read/write interface the advice flow uses.
	Store() Store
}

type service struct {
	dbpool *pgxpool.Pool
	store  Store
	dbname string
}

// New creates the connection pool from the supplied configuration and wraps
// it in the Service. The pool is shared; New is called once at startup.
func New(ctx context.Context, cfg *config.Config) (Service, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	store, err := NewStore(pool, cfg.SnapshotCacheSize)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &service{
		dbpool: pool,
		store:  store,
		dbname: cfg.DBDatabase,
	}, nil
}

// Store implements Service.
func (s *service) Store() Store {
	return s.store
}

// Health checks the health of the database connection.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.dbpool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("db down")
		return stats
	}

	poolStats := s.dbpool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_conns"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_conns"] = strconv.Itoa(int(poolStats.MaxConns()))
	stats["acquire_count"] = strconv.FormatInt(poolStats.AcquireCount(), 10)
	stats["acquire_duration_ms"] = strconv.FormatInt(poolStats.AcquireDuration().Milliseconds(), 10)
	stats["empty_acquire_count"] = strconv.FormatInt(poolStats.EmptyAcquireCount(), 10)
	stats["canceled_acquire_count"] = strconv.FormatInt(poolStats.CanceledAcquireCount(), 10)

	if poolStats.AcquiredConns() > (poolStats.MaxConns() * 8 / 10) { // 80% capacity
		stats["message"] = "The database connection pool is experiencing heavy load."
	}
	if poolStats.EmptyAcquireCount() > 0 {
		stats["message"] = "The application has tried to acquire a connection from an empty pool. Consider increasing max connections."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() {
	log.Info().Str("database", s.dbname).Msg("Disconnected from database")
	s.dbpool.Close()
}
