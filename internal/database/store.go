package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"Wellpulse_V0.1/internal/advice"
)

// ErrNotFound signals that the requested record does not exist. Callers
// decide whether that is an error (missing profile) or just an empty read
// (no weekly try yet).
var ErrNotFound = errors.New("database: record not found")

// Try kinds persisted in the tries table.
const (
	TryKindDaily  = "daily"
	TryKindWeekly = "weekly"
)

// Store is the narrow read/write interface the advice flow depends on.
// Concurrent requests for the same user are assumed to be serialized by the
// caller per the single-writer-per-user model; the store only guarantees the
// 14-day window invariant within each AppendTry.
type Store interface {
	GetProfile(ctx context.Context, userID string) (advice.UserProfile, error)
	PutProfile(ctx context.Context, userID string, p advice.UserProfile) error

	// LatestSnapshot returns the most recent per-day snapshot, or
	// ErrNotFound when the user has none yet.
	LatestSnapshot(ctx context.Context, userID string) (*advice.HealthSnapshot, error)
	// PutSnapshot stores the snapshot for its day. Snapshots are immutable
	// once written; writing the same day twice is a silent no-op.
	PutSnapshot(ctx context.Context, userID string, snap advice.HealthSnapshot) error

	// RecentDailyTries returns the daily tries inside the look-back window
	// ending on asOf, oldest first.
	RecentDailyTries(ctx context.Context, userID string, asOf time.Time) (advice.TryHistory, error)
	// LastWeeklyTry returns the most recent weekly try, or ErrNotFound.
	LastWeeklyTry(ctx context.Context, userID string) (*advice.TryRecord, error)
	// AppendTry records a delivered suggestion and evicts daily rows that
	// fell out of the look-back window, in one transaction.
	AppendTry(ctx context.Context, userID, kind string, rec advice.TryRecord) error
}

type pgStore struct {
	pool *pgxpool.Pool
}

// NewStore wraps the pool in the Postgres store and layers the snapshot
// read cache on top. cacheSize <= 0 disables caching.
func NewStore(pool *pgxpool.Pool, cacheSize int) (Store, error) {
	base := &pgStore{pool: pool}
	if cacheSize <= 0 {
		return base, nil
	}
	return newCachedStore(base, cacheSize)
}

func (s *pgStore) GetProfile(ctx context.Context, userID string) (advice.UserProfile, error) {
	const q = `SELECT nickname, age, weight_kg, height_cm, gender,
		occupation, lifestyle_rhythm, exercise_frequency, alcohol_frequency, interests
		FROM profiles WHERE user_id = $1`

	var p advice.UserProfile
	var interests []string
	err := s.pool.QueryRow(ctx, q, userID).Scan(
		&p.Nickname, &p.Age, &p.WeightKg, &p.HeightCm, &p.Gender,
		&p.Occupation, &p.LifestyleRhythm, &p.ExerciseFrequency, &p.AlcoholFrequency,
		&interests,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return advice.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return advice.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	p.Interests = make([]advice.Domain, 0, len(interests))
	for _, tag := range interests {
		p.Interests = append(p.Interests, advice.Domain(tag))
	}
	return p, nil
}

func (s *pgStore) PutProfile(ctx context.Context, userID string, p advice.UserProfile) error {
	const q = `INSERT INTO profiles
		(user_id, nickname, age, weight_kg, height_cm, gender,
		 occupation, lifestyle_rhythm, exercise_frequency, alcohol_frequency, interests, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now())
		ON CONFLICT (user_id) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			age = EXCLUDED.age,
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			gender = EXCLUDED.gender,
			occupation = EXCLUDED.occupation,
			lifestyle_rhythm = EXCLUDED.lifestyle_rhythm,
			exercise_frequency = EXCLUDED.exercise_frequency,
			alcohol_frequency = EXCLUDED.alcohol_frequency,
			interests = EXCLUDED.interests,
			updated_at = now()`

	interests := make([]string, 0, len(p.Interests))
	for _, d := range p.Interests {
		interests = append(interests, string(d))
	}
	_, err := s.pool.Exec(ctx, q, userID,
		p.Nickname, p.Age, p.WeightKg, p.HeightCm, string(p.Gender),
		string(p.Occupation), string(p.LifestyleRhythm),
		string(p.ExerciseFrequency), string(p.AlcoholFrequency), interests)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

func (s *pgStore) LatestSnapshot(ctx context.Context, userID string) (*advice.HealthSnapshot, error) {
	const q = `SELECT payload FROM snapshots
		WHERE user_id = $1 ORDER BY snapshot_date DESC LIMIT 1`

	var payload []byte
	err := s.pool.QueryRow(ctx, q, userID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	var snap advice.HealthSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("latest snapshot: decode payload: %w", err)
	}
	return &snap, nil
}

func (s *pgStore) PutSnapshot(ctx context.Context, userID string, snap advice.HealthSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("put snapshot: encode payload: %w", err)
	}

	// DO NOTHING keeps the first write of a day authoritative.
	const q = `INSERT INTO snapshots (user_id, snapshot_date, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, snapshot_date) DO NOTHING`
	if _, err := s.pool.Exec(ctx, q, userID, snap.Date, payload); err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

func (s *pgStore) RecentDailyTries(ctx context.Context, userID string, asOf time.Time) (advice.TryHistory, error) {
	const q = `SELECT try_date, domain FROM tries
		WHERE user_id = $1 AND kind = $2
		  AND try_date > $3::date - $4::int AND try_date <= $3::date
		ORDER BY try_date ASC`

	rows, err := s.pool.Query(ctx, q, userID, TryKindDaily, asOf, advice.TryWindowDays)
	if err != nil {
		return nil, fmt.Errorf("recent daily tries: %w", err)
	}
	defer rows.Close()

	var history advice.TryHistory
	for rows.Next() {
		var rec advice.TryRecord
		var domain string
		if err := rows.Scan(&rec.Date, &domain); err != nil {
			return nil, fmt.Errorf("recent daily tries: %w", err)
		}
		rec.Domain = advice.Domain(domain)
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent daily tries: %w", err)
	}
	return history, nil
}

func (s *pgStore) LastWeeklyTry(ctx context.Context, userID string) (*advice.TryRecord, error) {
	const q = `SELECT try_date, domain FROM tries
		WHERE user_id = $1 AND kind = $2
		ORDER BY try_date DESC LIMIT 1`

	var rec advice.TryRecord
	var domain string
	err := s.pool.QueryRow(ctx, q, userID, TryKindWeekly).Scan(&rec.Date, &domain)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("last weekly try: %w", err)
	}
	rec.Domain = advice.Domain(domain)
	return &rec, nil
}

func (s *pgStore) AppendTry(ctx context.Context, userID, kind string, rec advice.TryRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("append try: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `INSERT INTO tries (user_id, try_date, domain, kind)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, try_date, kind) DO UPDATE SET domain = EXCLUDED.domain`
	if _, err := tx.Exec(ctx, insert, userID, rec.Date, string(rec.Domain), kind); err != nil {
		return fmt.Errorf("append try: %w", err)
	}

	// Evict daily rows past the look-back window so the history read can
	// never exceed it. Weekly rows stay; only the latest is ever surfaced.
	const evict = `DELETE FROM tries
		WHERE user_id = $1 AND kind = $2 AND try_date <= $3::date - $4::int`
	if _, err := tx.Exec(ctx, evict, userID, TryKindDaily, rec.Date, advice.TryWindowDays); err != nil {
		return fmt.Errorf("append try: evict: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("append try: %w", err)
	}
	return nil
}
