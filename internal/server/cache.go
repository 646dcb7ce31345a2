package server

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lexforge/word-discovery-platform/pkg/config"
	"github.com/lexforge/word-discovery-platform/pkg/metrics"
	pkgredis "github.com/lexforge/word-discovery-platform/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "tokenize:"

// TokenizeCache caches tokenization results in Redis, deduplicating
// concurrent misses for the same sentence with singleflight.
type TokenizeCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewTokenizeCache creates a cache over the given Redis client. metrics may
// be nil.
func NewTokenizeCache(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *TokenizeCache {
	return &TokenizeCache{
		client:  client,
		cfg:     cfg,
		logger:  slog.Default().With("component", "tokenize-cache"),
		metrics: m,
	}
}

// Get returns the cached fragments for a sentence, if present.
func (c *TokenizeCache) Get(ctx context.Context, sentence string) ([]string, bool) {
	key := c.buildKey(sentence)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var fragments []string
	if err := json.Unmarshal([]byte(data), &fragments); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	return fragments, true
}

// Set stores the fragments for a sentence with the configured TTL.
func (c *TokenizeCache) Set(ctx context.Context, sentence string, fragments []string) {
	key := c.buildKey(sentence)
	data, err := json.Marshal(fragments)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached fragments or computes and caches them,
// collapsing concurrent computations for the same sentence. The second
// return value reports whether the result came from the cache.
func (c *TokenizeCache) GetOrCompute(
	ctx context.Context,
	sentence string,
	computeFn func() []string,
) ([]string, bool) {
	if fragments, ok := c.Get(ctx, sentence); ok {
		return fragments, true
	}
	key := c.buildKey(sentence)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if fragments, ok := c.Get(ctx, sentence); ok {
			return fragments, nil
		}
		fragments := computeFn()
		c.Set(ctx, sentence, fragments)
		return fragments, nil
	})
	return val.([]string), false
}

// Invalidate drops every cached tokenization, e.g. after a vocabulary
// reload.
func (c *TokenizeCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating tokenize cache: %w", err)
	}
	c.logger.Info("tokenize cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *TokenizeCache) buildKey(sentence string) string {
	hash := sha256.Sum256([]byte(sentence))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func (c *TokenizeCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *TokenizeCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
