package celebrity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/necrobingo/api/internal/bingo"
)

// CachedResolver caches resolved result lists in redis, keyed by the
// normalized query and limit. Redis being down only costs the cache:
// lookups fall through to the inner resolver.
type CachedResolver struct {
	inner  PersonResolver
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedResolver(inner PersonResolver, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedResolver {
	return &CachedResolver{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedResolver) Resolve(ctx context.Context, query string, limit int) ([]bingo.Person, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	key := fmt.Sprintf("necrobingo:search:%d:%s", limit, strings.ToLower(q))

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var people []bingo.Person
		if json.Unmarshal(data, &people) == nil {
			return people, nil
		}
	}

	people, err := c.inner.Resolve(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(people); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Debug("search cache write failed", "error", err)
		}
	}
	return people, nil
}
