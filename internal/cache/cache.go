package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache: miss")

// Cache is the fast-cache boundary: GET/SET-with-expiry/DEL. It is backed
// by Redis when reachable and by an in-process map otherwise; the choice is
// made once at startup, never per call.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Connect probes the Redis server and returns a Redis-backed cache on
// success. When Redis is unreachable it degrades to the in-memory cache,
// which is process-local and lost on restart.
func Connect(addr string) (Cache, bool) {
	r := NewRedis(addr)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		return NewMemory(), false
	}
	return r, true
}
