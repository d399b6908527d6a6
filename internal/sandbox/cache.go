package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsKey = "sandbox:stats"

// StatsCache keeps the per-table row counts in Redis for a short window so
// repeated stats polling does not hammer Postgres. A nil cache (or nil
// client) degrades to always loading.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Fetch returns cached stats or populates the cache via the loader.
func (c *StatsCache) Fetch(ctx context.Context, loader func(context.Context) (Stats, error)) (Stats, error) {
	if loader == nil {
		return Stats{}, errors.New("sandbox: stats loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	payload, err := c.client.Get(ctx, statsKey).Bytes()
	if err == nil {
		var s Stats
		if err := json.Unmarshal(payload, &s); err == nil {
			return s, nil
		}
		// Corrupt entry, fall through and rebuild it.
	} else if !errors.Is(err, redis.Nil) {
		return Stats{}, err
	}

	s, err := loader(ctx)
	if err != nil {
		return Stats{}, err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return Stats{}, err
	}
	if err := c.client.Set(ctx, statsKey, raw, c.ttl).Err(); err != nil {
		return Stats{}, err
	}
	return s, nil
}

// Invalidate drops the cached stats. Called after a reset so the next stats
// read reflects the reseeded tables.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, statsKey).Err()
}
