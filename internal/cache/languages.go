package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/bhasha-cms/bhasha/internal/store"
)

// languagesKey is the cache key for the published-language list.
const languagesKey = "languages:published"

// LanguageCache serves the list of languages that currently have at
// least one published post. The list backs the public languages endpoint
// and is invalidated whenever a post is created, retagged or deleted.
type LanguageCache struct {
	cache   Cacher
	queries *store.Queries
	ttl     time.Duration
}

// NewLanguageCache creates a language cache on top of the given backend.
func NewLanguageCache(c Cacher, queries *store.Queries) *LanguageCache {
	return &LanguageCache{
		cache:   c,
		queries: queries,
		ttl:     5 * time.Minute,
	}
}

// Published returns the language codes with published posts, in the
// fixed language order. On a cache miss the list is loaded from the
// database and cached; cache backend failures fall through to the
// database.
func (c *LanguageCache) Published(ctx context.Context) ([]string, error) {
	if data, err := c.cache.Get(ctx, languagesKey); err == nil {
		var codes []string
		if err := json.Unmarshal(data, &codes); err == nil {
			return codes, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		slog.Warn("language cache read failed", "error", err)
	}

	codes, err := c.queries.DistinctLanguages(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(codes); err == nil {
		if err := c.cache.Set(ctx, languagesKey, data, c.ttl); err != nil {
			slog.Warn("language cache write failed", "error", err)
		}
	}
	return codes, nil
}

// Invalidate drops the cached list. Called after post mutations.
func (c *LanguageCache) Invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, languagesKey); err != nil {
		slog.Warn("language cache invalidation failed", "error", err)
	}
}
