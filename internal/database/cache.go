package database

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"Wellpulse_V0.1/internal/advice"
)

// cachedStore layers an in-process LRU over LatestSnapshot. Snapshot reads
// dominate the daily flow (every advice request needs one) while writes
// arrive once a day, so a small read-through cache removes most of the
// per-request database traffic. All other methods pass through.
type cachedStore struct {
	Store
	snapshots *lru.Cache[string, *advice.HealthSnapshot]
}

func newCachedStore(base Store, size int) (*cachedStore, error) {
	c, err := lru.New[string, *advice.HealthSnapshot](size)
	if err != nil {
		return nil, err
	}
	return &cachedStore{Store: base, snapshots: c}, nil
}

func (c *cachedStore) LatestSnapshot(ctx context.Context, userID string) (*advice.HealthSnapshot, error) {
	if snap, ok := c.snapshots.Get(userID); ok {
		return snap, nil
	}
	snap, err := c.Store.LatestSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.snapshots.Add(userID, snap)
	return snap, nil
}

func (c *cachedStore) PutSnapshot(ctx context.Context, userID string, snap advice.HealthSnapshot) error {
	if err := c.Store.PutSnapshot(ctx, userID, snap); err != nil {
		return err
	}
	// The write may or may not have landed (same-day writes are no-ops),
	// so drop the entry and let the next read repopulate it.
	c.snapshots.Remove(userID)
	return nil
}
