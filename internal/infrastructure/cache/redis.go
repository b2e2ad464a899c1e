package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// OpenRedis connects and pings. The client backs idempotency, the listing
// cache, server-side selections and the change feed.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := Ping(context.Background(), r); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// Ping is used at startup and by the health endpoint.
func Ping(ctx context.Context, r redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return r.Ping(ctx).Err()
}
