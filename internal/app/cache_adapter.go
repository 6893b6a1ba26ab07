package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deusflow/ainews/internal/cache"
	"github.com/deusflow/ainews/internal/news"
)

// cachedResponse is what the response cache stores.
type cachedResponse struct {
	StoredAt time.Time      `json:"storedAt"`
	Response *news.Response `json:"response"`
}

// responseCache adapts a byte-oriented cache.Store to aggregated responses.
type responseCache struct {
	store  cache.Store
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

func newResponseCache(store cache.Store, key string, ttl time.Duration, log *slog.Logger) *responseCache {
	return &responseCache{store: store, key: key, ttl: ttl, logger: log}
}

// Load reports a miss for absent, unreadable or corrupt entries.
func (c *responseCache) Load(ctx context.Context) (*cachedResponse, bool) {
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("Cache read failed", "key", c.key, "error", err)
		}
		return nil, false
	}

	entry, err := decodeEntry(data)
	if err != nil {
		c.logger.Warn("Discarding corrupt cache entry", "key", c.key, "error", err)
		return nil, false
	}
	return entry, true
}

func (c *responseCache) Save(ctx context.Context, resp *news.Response, storedAt time.Time) error {
	data, err := encodeEntry(resp, storedAt)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.key, data, c.ttl); err != nil {
		return fmt.Errorf("cache write %s: %w", c.key, err)
	}
	return nil
}

func encodeEntry(resp *news.Response, storedAt time.Time) ([]byte, error) {
	data, err := json.Marshal(cachedResponse{StoredAt: storedAt.UTC(), Response: resp})
	if err != nil {
		return nil, fmt.Errorf("encode cached response: %w", err)
	}
	return data, nil
}

func decodeEntry(data []byte) (*cachedResponse, error) {
	var entry cachedResponse
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	if entry.Response == nil {
		return nil, errors.New("decode cached response: empty entry")
	}
	return &entry, nil
}
