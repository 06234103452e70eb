package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/touchbasehq/touchbase-backend/internal/clients/openai"
	redisclient "github.com/touchbasehq/touchbase-backend/internal/clients/redis"
	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

// Clients holds the optional external collaborators. Both are env-gated:
// a missing REDIS_ADDR or OPENAI_API_KEY leaves the field nil and the
// dependent features degrade (uncached scans, no AI query route).
type Clients struct {
	Redis  *goredis.Client
	Cache  *redisclient.Cache
	OpenAI openai.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redisclient.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis client: %w", err)
	}
	if rdb == nil {
		log.Info("Redis not configured; duplicate scans run uncached")
	}
	cache := redisclient.NewCache(rdb, log)

	ai, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	if ai == nil {
		log.Info("OpenAI not configured; AI query disabled")
	}

	return Clients{Redis: rdb, Cache: cache, OpenAI: ai}, nil
}
