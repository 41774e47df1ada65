package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.AnalysisResultStore = (*ResultCache)(nil)

const resultPrefix = "lexcore:result:"

// ResultCache is a read-through cache in front of a durable
// AnalysisResultStore. Reads hit Redis first and fall back to the
// backing store, repopulating the cache on the way out. Writes go to the
// backing store first so the durable copy always wins; cache entries are
// invalidated on supersede and delete. Cache failures never fail the
// operation, only the speedup.
type ResultCache struct {
	client  *redis.Client
	backing driven.AnalysisResultStore
	ttl     time.Duration
	logger  *slog.Logger
}

// NewResultCache creates a ResultCache over the given backing store.
func NewResultCache(client *redis.Client, backing driven.AnalysisResultStore, ttl time.Duration, logger *slog.Logger) *ResultCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResultCache{client: client, backing: backing, ttl: ttl, logger: logger}
}

func resultKey(documentID string, kind domain.AnalysisKind) string {
	return resultPrefix + documentID + ":" + string(kind)
}

// Store writes through to the backing store and caches the winner.
func (c *ResultCache) Store(ctx context.Context, res *domain.AnalysisResult) (*domain.AnalysisResult, bool, error) {
	winner, committed, err := c.backing.Store(ctx, res)
	if err != nil {
		return nil, false, err
	}
	c.put(ctx, winner)
	return winner, committed, nil
}

// GetCached reads from Redis first, then the backing store.
func (c *ResultCache) GetCached(ctx context.Context, documentID string, kind domain.AnalysisKind) (*domain.AnalysisResult, error) {
	data, err := c.client.Get(ctx, resultKey(documentID, kind)).Bytes()
	if err == nil {
		var res domain.AnalysisResult
		if err := json.Unmarshal(data, &res); err == nil {
			return &res, nil
		}
		c.logger.Warn("corrupt cache entry dropped", "document_id", documentID, "kind", kind)
		c.invalidate(ctx, documentID, kind)
	} else if err != redis.Nil {
		c.logger.Warn("result cache read failed", "document_id", documentID, "kind", kind, "error", err)
	}

	res, err := c.backing.GetCached(ctx, documentID, kind)
	if err != nil {
		return nil, err
	}
	c.put(ctx, res)
	return res, nil
}

// Supersede clears both the durable copy and the cache entry.
func (c *ResultCache) Supersede(ctx context.Context, documentID string, kind domain.AnalysisKind) error {
	if err := c.backing.Supersede(ctx, documentID, kind); err != nil {
		return err
	}
	c.invalidate(ctx, documentID, kind)
	return nil
}

// DeleteByDocument clears the durable copies and all cache entries.
func (c *ResultCache) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := c.backing.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	for _, kind := range domain.AllKinds() {
		c.invalidate(ctx, documentID, kind)
	}
	return nil
}

func (c *ResultCache) put(ctx context.Context, res *domain.AnalysisResult) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("failed to marshal result for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, resultKey(res.DocumentID, res.Kind), data, c.ttl).Err(); err != nil {
		c.logger.Warn("result cache write failed", "document_id", res.DocumentID, "kind", res.Kind, "error", err)
	}
}

func (c *ResultCache) invalidate(ctx context.Context, documentID string, kind domain.AnalysisKind) {
	if err := c.client.Del(ctx, resultKey(documentID, kind)).Err(); err != nil {
		c.logger.Warn("result cache invalidation failed",
			"document_id", documentID, "kind", kind, "error", err)
	}
}

// Ping checks if the Redis backend is healthy.
func (c *ResultCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("result cache ping: %w", err)
	}
	return nil
}
