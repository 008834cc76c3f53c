package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/observability"
)

// CacheInvalidator drops cached views derived from a student's course state.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, studentID, courseID uint)
}

func dashboardCacheKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

func gradeCacheKey(studentID, courseID uint) string {
	return fmt.Sprintf("grade:course:%d:student:%d", courseID, studentID)
}

type redisCacheInvalidator struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewCacheInvalidator returns an invalidator over client. A nil client disables it.
func NewCacheInvalidator(client *redis.Client, logger zerolog.Logger) CacheInvalidator {
	return &redisCacheInvalidator{
		client: client,
		logger: logger.With().Str("component", "cache_invalidator").Logger(),
	}
}

func (c *redisCacheInvalidator) Invalidate(ctx context.Context, studentID, courseID uint) {
	if c.client == nil {
		return
	}

	keys := []string{dashboardCacheKey(studentID)}
	if courseID != 0 {
		keys = append(keys, gradeCacheKey(studentID, courseID))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate cache")
	}
}

// jsonCache reads and writes JSON blobs with a TTL. Every failure degrades to a miss.
type jsonCache struct {
	name   string
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func (c jsonCache) get(ctx context.Context, key string, target interface{}) bool {
	if c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to read cache")
		}
		observability.CacheLookups().WithLabelValues(c.name, "miss").Inc()
		return false
	}

	if err := json.Unmarshal(raw, target); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		observability.CacheLookups().WithLabelValues(c.name, "miss").Inc()
		return false
	}

	observability.CacheLookups().WithLabelValues(c.name, "hit").Inc()
	return true
}

func (c jsonCache) set(ctx context.Context, key string, value interface{}) {
	if c.client == nil || c.ttl <= 0 {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to store cache entry")
	}
}
