package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Wellpulse_V0.1/internal/advice"
)

// fakeStore counts snapshot reads so the tests can observe cache behaviour.
type fakeStore struct {
	Store
	snapshot *advice.HealthSnapshot
	reads    int
	puts     int
}

func (f *fakeStore) LatestSnapshot(ctx context.Context, userID string) (*advice.HealthSnapshot, error) {
	f.reads++
	if f.snapshot == nil {
		return nil, ErrNotFound
	}
	return f.snapshot, nil
}

func (f *fakeStore) PutSnapshot(ctx context.Context, userID string, snap advice.HealthSnapshot) error {
	f.puts++
	f.snapshot = &snap
	return nil
}

func testSnapshot(day time.Time) *advice.HealthSnapshot {
	return &advice.HealthSnapshot{
		Date:   day,
		Scores: &advice.Scores{Sleep: 70, HRV: 65, Rhythm: 80, Activity: 55},
	}
}

func TestCachedStoreServesRepeatReadsFromCache(t *testing.T) {
	ctx := context.Background()
	base := &fakeStore{snapshot: testSnapshot(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))}
	cached, err := newCachedStore(base, 8)
	require.NoError(t, err)

	first, err := cached.LatestSnapshot(ctx, "u1")
	require.NoError(t, err)
	second, err := cached.LatestSnapshot(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, base.reads, "second read must come from the cache")
}

func TestCachedStoreDoesNotCacheMisses(t *testing.T) {
	ctx := context.Background()
	base := &fakeStore{}
	cached, err := newCachedStore(base, 8)
	require.NoError(t, err)

	_, err = cached.LatestSnapshot(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cached.LatestSnapshot(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, base.reads)
}

func TestCachedStoreInvalidatesOnPut(t *testing.T) {
	ctx := context.Background()
	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	base := &fakeStore{snapshot: testSnapshot(day1)}
	cached, err := newCachedStore(base, 8)
	require.NoError(t, err)

	got, err := cached.LatestSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, day1, got.Date)

	require.NoError(t, cached.PutSnapshot(ctx, "u1", *testSnapshot(day2)))
	assert.Equal(t, 1, base.puts)

	got, err = cached.LatestSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, day2, got.Date, "stale cached snapshot must not survive a write")
}

func TestCachedStoreIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	base := &fakeStore{snapshot: testSnapshot(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))}
	cached, err := newCachedStore(base, 8)
	require.NoError(t, err)

	_, err = cached.LatestSnapshot(ctx, "u1")
	require.NoError(t, err)
	_, err = cached.LatestSnapshot(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 2, base.reads, "each user fills its own cache slot")
}
