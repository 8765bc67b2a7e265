package cache

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// CacheModule owns the Redis connection and exposes the Cache to other
// modules. When Redis cannot be reached at startup the module logs a
// warning and runs disabled; callers treat a nil Cache as cache-off.
type CacheModule struct {
	client *redis.Client
	cache  *Cache
	addr   string
	prefix string
	ttl    time.Duration
}

// NewModule creates a cache module configured from the environment.
func NewModule() *CacheModule {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	return &CacheModule{
		addr:   addr,
		prefix: "taskboard:",
		ttl:    5 * time.Minute,
	}
}

func (m *CacheModule) Name() string {
	return "cache"
}

// Start connects to Redis. An unreachable Redis is not fatal: task reads
// simply skip the cache.
func (m *CacheModule) Start(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         m.addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[cache] Redis unreachable at %s, caching disabled: %v", m.addr, err)
		_ = client.Close()
		return nil
	}

	m.client = client
	m.cache = New(client, m.prefix, m.ttl)
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, ttl: %s)", m.addr, m.prefix, m.ttl)
	return nil
}

func (m *CacheModule) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[cache] Error closing Redis connection: %v", err)
			return err
		}
	}
	log.Println("[cache] Module stopped")
	return nil
}

// Health reports the Redis connection state. A disabled cache is reported
// healthy since the system runs without it.
func (m *CacheModule) Health(ctx context.Context) mono.HealthStatus {
	if m.cache == nil {
		return mono.HealthStatus{
			Healthy: true,
			Message: "caching disabled",
		}
	}
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}
	stats := m.cache.GetStats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"hits":    stats.Hits,
			"misses":  stats.Misses,
			"hitRate": stats.HitRate,
		},
	}
}

// GetCache returns the cache, or nil when caching is disabled.
func (m *CacheModule) GetCache() *Cache {
	return m.cache
}
