package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quitrk/stock-checker-sub001/metrics"
)

// RedisStore implements Store on top of go-redis. All values are stored as
// JSON. Backend errors are swallowed: a failed read counts as a miss, a failed
// write is logged and dropped.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection. Returns nil if
// Redis is unreachable so the caller can fall back to the in-memory store.
func NewRedisStore(host, port, password string) *RedisStore {
	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Failed to connect to Redis at %s: %v", addr, err)
		return nil
	}

	log.Printf("✅ Connected to Redis at %s", addr)
	return &RedisStore{client: client}
}

// Get retrieves and unmarshals a value. Any failure degrades to a miss.
func (r *RedisStore) Get(ctx context.Context, key string, dest interface{}) bool {
	if r == nil || r.client == nil {
		metrics.CacheMisses.WithLabelValues(categoryOf(key)).Inc()
		return false
	}

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️  Cache read failed for %s: %v", key, err)
		}
		metrics.CacheMisses.WithLabelValues(categoryOf(key)).Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		log.Printf("⚠️  Cache payload corrupt for %s: %v", key, err)
		metrics.CacheMisses.WithLabelValues(categoryOf(key)).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(categoryOf(key)).Inc()
	return true
}

// Set stores a value with expiration, best effort.
func (r *RedisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r == nil || r.client == nil {
		return
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		log.Printf("⚠️  Cache marshal failed for %s: %v", key, err)
		return
	}

	if err := r.client.Set(ctx, key, jsonBytes, ttl).Err(); err != nil {
		log.Printf("⚠️  Cache write failed for %s: %v", key, err)
	}
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	if r != nil && r.client != nil {
		return r.client.Close()
	}
	return nil
}

func categoryOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
