package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	ucCertificate "bonafide-backend/internal/usecase/certificate"
)

const generationKey = "querycache:gen"

// QueryCache keeps listing pages in redis. Entries live under the current
// generation; Invalidate bumps it so older entries are never read again and
// expire on their own.
type QueryCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

var _ ucCertificate.QueryCache = (*QueryCache)(nil)

func NewQueryCache(rdb redis.UniversalClient, ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &QueryCache{rdb: rdb, ttl: ttl}
}

func (c *QueryCache) generation(ctx context.Context) (string, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func entryKey(gen, key string) string { return "querycache:" + gen + ":" + key }

// Get looks key up under the current generation and returns that generation
// so a page loaded after a miss is stored against it.
func (c *QueryCache) Get(ctx context.Context, key string, dst *ucCertificate.Page) (string, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", false, err
	}
	k := entryKey(gen, key)
	raw, err := c.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return gen, false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// unreadable entry counts as a miss
		_ = c.rdb.Del(ctx, k).Err()
		return gen, false, nil
	}
	return gen, true, nil
}

// Set stores p under gen. A page read before an Invalidate lands in the old
// generation and is never served.
func (c *QueryCache) Set(ctx context.Context, gen, key string, p *ucCertificate.Page) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, entryKey(gen, key), payload, c.ttl).Err()
}

func (c *QueryCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, generationKey).Err()
}
