// Package cache stores JSON-encoded values by key.
//
// Store is implemented by the Redis driver, an in-process Memory driver
// (local development and tests) and Nop (caching disabled). A Redis server
// that fails its startup ping degrades to Nop so reads fall through to the
// database.
//
// Read-through fills use Add, which never overwrites. Writers call
// Invalidate after committing: it leaves a stale marker for hold, so a
// reader that loaded the row before the commit cannot put it back.
package cache

import (
	"context"
	"io"
	"time"
)

// Store is the cache contract used by repositories.
type Store interface {
	// Get unmarshals the value under key into dest and reports a hit.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Add stores value only when key holds nothing, not even a stale marker.
	Add(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	// Invalidate replaces key with a stale marker that lives for hold.
	Invalidate(ctx context.Context, key string, hold time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// staleMarker is not valid JSON, so Get on an invalidated key is a miss.
var staleMarker = []byte("\x00stale")

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) bool                 { return false }
func (Nop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Nop) Add(context.Context, string, interface{}, time.Duration) (bool, error) {
	return false, nil
}
func (Nop) Invalidate(context.Context, string, time.Duration) error { return nil }
func (Nop) Del(context.Context, ...string) error                    { return nil }

// Close releases s when its driver holds connections.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Options selects and configures a driver.
type Options struct {
	Driver        string // "redis", "memory" or "none"
	RedisAddr     string
	RedisPassword string
}

// Open returns the configured Store. The error is non-nil only when Redis
// was requested and unreachable; the returned Store is then Nop.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "memory":
		return NewMemory(), nil
	case "none", "":
		return Nop{}, nil
	default:
		r, err := ConnectRedis(ctx, opts.RedisAddr, opts.RedisPassword)
		if err != nil {
			return Nop{}, err
		}
		return r, nil
	}
}
