package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
	"github.com/teamboard/schedule-engine/internal/core/domain"
)

var _ domain.LayoutCache = (*RedisLayoutCache)(nil)

const DefaultLayoutTTL = 30 * time.Minute

type cachedLayout struct {
	Fingerprint uint64                `json:"fingerprint"`
	Layout      *calendar.MonthLayout `json:"layout"`
}

// RedisLayoutCache stores one month layout per team and month, tagged with
// the fingerprint of the events it was built from.
type RedisLayoutCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLayoutCache(client *redis.Client, ttl time.Duration) *RedisLayoutCache {
	if ttl <= 0 {
		ttl = DefaultLayoutTTL
	}
	return &RedisLayoutCache{client: client, ttl: ttl}
}

func layoutKey(teamID string, ym calendar.YearMonth) string {
	return fmt.Sprintf("layout:%s:%s", teamID, ym)
}

func (c *RedisLayoutCache) Get(ctx context.Context, teamID string, ym calendar.YearMonth, fingerprint uint64) (*calendar.MonthLayout, error) {
	key := layoutKey(teamID, ym)

	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry cachedLayout
	if err := json.Unmarshal(val, &entry); err != nil || entry.Layout == nil {
		log.Printf("[CACHE] Corrupted layout for %s, cleaning up key", key)
		c.client.Del(ctx, key)
		return nil, domain.ErrCacheMiss
	}

	if entry.Fingerprint != fingerprint {
		return nil, domain.ErrCacheMiss
	}
	return entry.Layout, nil
}

func (c *RedisLayoutCache) Set(ctx context.Context, teamID string, ym calendar.YearMonth, fingerprint uint64, layout *calendar.MonthLayout) error {
	data, err := json.Marshal(cachedLayout{Fingerprint: fingerprint, Layout: layout})
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return c.client.Set(ctx, layoutKey(teamID, ym), data, c.ttl).Err()
}

func (c *RedisLayoutCache) Invalidate(ctx context.Context, teamID string, months ...calendar.YearMonth) error {
	if len(months) == 0 {
		return nil
	}

	keys := make([]string, 0, len(months))
	for _, ym := range months {
		keys = append(keys, layoutKey(teamID, ym))
	}
	return c.client.Del(ctx, keys...).Err()
}
