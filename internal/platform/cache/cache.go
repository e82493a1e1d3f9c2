// Package cache holds per-user dashboard stats in Redis using the
// cache-aside pattern. Entries expire after a TTL and are invalidated on
// every task mutation.
//
// Every invalidation bumps a per-user version. Writers read the version
// before they read tasks and pass it to Set, which only stores the entry
// if no invalidation happened in between.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/taskboard-api/internal/domain/analytics"
)

// DefaultTTL applies when a non-positive TTL is configured.
const DefaultTTL = 5 * time.Minute

const (
	keyPrefix        = "taskboard:stats:"
	versionKeyPrefix = "taskboard:stats:ver:"
)

// StatsCache stores computed stats per user.
type StatsCache interface {
	// Get returns the cached stats. A miss returns (nil, false, nil).
	Get(ctx context.Context, userID uuid.UUID) (*analytics.Stats, bool, error)

	// Version returns the user's current invalidation version.
	Version(ctx context.Context, userID uuid.UUID) (int64, error)

	// Set stores stats computed from data read after Version returned
	// version. The write is dropped if the user was invalidated since.
	Set(ctx context.Context, userID uuid.UUID, version int64, stats analytics.Stats) error

	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Counters tracks cache effectiveness.
type Counters struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
	Stale  uint64 `json:"stale"`
}

// setIfVersion writes the entry only while the version key still holds the
// expected value. A missing version key counts as 0.
var setIfVersion = redis.NewScript(`
local current = redis.call("GET", KEYS[1]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisStatsCache implements StatsCache on Redis.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
	errs   atomic.Uint64
	stale  atomic.Uint64
}

var _ StatsCache = (*RedisStatsCache)(nil)

// NewRedisStatsCache creates a cache on an existing client.
func NewRedisStatsCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStatsCache {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStatsCache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "stats_cache")),
	}
}

// Connect parses a redis:// URL, checks the server is reachable and
// returns a cache on it.
func Connect(ctx context.Context, url string, ttl time.Duration, logger *slog.Logger) (*RedisStatsCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStatsCache(client, ttl, logger), nil
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

func versionKey(userID uuid.UUID) string {
	return versionKeyPrefix + userID.String()
}

// Get implements StatsCache.
func (c *RedisStatsCache) Get(ctx context.Context, userID uuid.UUID) (*analytics.Stats, bool, error) {
	data, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.misses.Add(1)
			return nil, false, nil
		}
		c.errs.Add(1)
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var stats analytics.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		c.errs.Add(1)
		c.logger.Warn("dropping undecodable cache entry",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		_ = c.client.Del(ctx, key(userID)).Err()
		return nil, false, nil
	}

	c.hits.Add(1)
	return &stats, true, nil
}

// Version implements StatsCache.
func (c *RedisStatsCache) Version(ctx context.Context, userID uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		c.errs.Add(1)
		return 0, fmt.Errorf("cache version error: %w", err)
	}
	return v, nil
}

// Set implements StatsCache.
func (c *RedisStatsCache) Set(ctx context.Context, userID uuid.UUID, version int64, stats analytics.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	stored, err := setIfVersion.Run(ctx, c.client,
		[]string{versionKey(userID), key(userID)},
		strconv.FormatInt(version, 10), data, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}
	if stored == 0 {
		c.stale.Add(1)
		c.logger.Debug("skipped stale cache write",
			slog.String("user_id", userID.String()),
			slog.Int64("version", version))
	}
	return nil
}

// Invalidate implements StatsCache. The entry is deleted and the version
// bumped in one transaction.
func (c *RedisStatsCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Del(ctx, key(userID))
		return nil
	})
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// Counters returns a snapshot of the hit, miss, error and stale write counts.
func (c *RedisStatsCache) Counters() Counters {
	return Counters{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errs.Load(),
		Stale:  c.stale.Load(),
	}
}

// Ping checks the Redis connection.
func (c *RedisStatsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}

// Noop is a StatsCache that never stores anything. It is used when no
// Redis URL is configured.
type Noop struct{}

var _ StatsCache = Noop{}

// Get implements StatsCache.
func (Noop) Get(context.Context, uuid.UUID) (*analytics.Stats, bool, error) { return nil, false, nil }

// Version implements StatsCache.
func (Noop) Version(context.Context, uuid.UUID) (int64, error) { return 0, nil }

// Set implements StatsCache.
func (Noop) Set(context.Context, uuid.UUID, int64, analytics.Stats) error { return nil }

// Invalidate implements StatsCache.
func (Noop) Invalidate(context.Context, uuid.UUID) error { return nil }
