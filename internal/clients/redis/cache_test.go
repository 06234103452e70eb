package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	logg, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewCache(rdb, logg), s
}

func TestCacheJSONRoundTrip(t *testing.T) {
	cache, s := setupTestCache(t)
	defer s.Close()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var out payload
	if hit, err := cache.GetJSON(ctx, "k", &out); err != nil || hit {
		t.Fatalf("expected miss: hit=%v err=%v", hit, err)
	}

	if err := cache.SetJSON(ctx, "k", payload{Name: "scan", Count: 3}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	hit, err := cache.GetJSON(ctx, "k", &out)
	if err != nil || !hit || out.Name != "scan" || out.Count != 3 {
		t.Fatalf("GetJSON: hit=%v out=%+v err=%v", hit, out, err)
	}

	// Expiry turns the hit back into a miss.
	s.FastForward(2 * time.Minute)
	if hit, err := cache.GetJSON(ctx, "k", &out); err != nil || hit {
		t.Fatalf("expected expiry miss: hit=%v err=%v", hit, err)
	}
}

func TestCacheRevision(t *testing.T) {
	cache, s := setupTestCache(t)
	defer s.Close()
	ctx := context.Background()

	if n, err := cache.Revision(ctx); err != nil || n != 0 {
		t.Fatalf("initial revision: n=%d err=%v", n, err)
	}
	if err := cache.IncrRevision(ctx); err != nil {
		t.Fatalf("IncrRevision: %v", err)
	}
	if err := cache.IncrRevision(ctx); err != nil {
		t.Fatalf("IncrRevision: %v", err)
	}
	if n, err := cache.Revision(ctx); err != nil || n != 2 {
		t.Fatalf("revision after incr: n=%d err=%v", n, err)
	}
}

func TestNilCacheIsInert(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	if hit, err := cache.GetJSON(ctx, "k", &struct{}{}); err != nil || hit {
		t.Fatalf("nil GetJSON: hit=%v err=%v", hit, err)
	}
	if err := cache.SetJSON(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("nil SetJSON: %v", err)
	}
	if n, err := cache.Revision(ctx); err != nil || n != 0 {
		t.Fatalf("nil Revision: n=%d err=%v", n, err)
	}
	if err := cache.IncrRevision(ctx); err != nil {
		t.Fatalf("nil IncrRevision: %v", err)
	}
}
