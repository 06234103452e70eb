package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/utils"
)

const revisionKey = "touchbase:contacts:rev"

// NewClient connects using REDIS_ADDR. A missing address is not an error:
// the caller gets a nil client and caching is disabled.
func NewClient(logg *logger.Logger) (*goredis.Client, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", logg))
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    utils.GetEnv("REDIS_PASSWORD", "", logg),
		DB:          utils.GetEnvAsInt("REDIS_DB", 0, logg),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Cache wraps the client with JSON value helpers and the contacts revision
// counter that keys duplicate-scan results. All methods are nil-receiver
// safe so callers can hold a nil *Cache when Redis is not configured.
type Cache struct {
	rdb *goredis.Client
	log *logger.Logger
}

func NewCache(rdb *goredis.Client, baseLog *logger.Logger) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb, log: baseLog.With("client", "RedisCache")}
}

// GetJSON loads key into out. Returns false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Revision returns the current contacts revision (0 when unset).
func (c *Cache) Revision(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	n, err := c.rdb.Get(ctx, revisionKey).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// IncrRevision bumps the contacts revision, invalidating any cached scan.
func (c *Cache) IncrRevision(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Incr(ctx, revisionKey).Err()
}
