package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"inkwell/internal/middleware"
)

// Aside implements the cache-aside pattern: look the key up in Redis, and on
// a miss run fill (which must populate dest) and store the result under key
// for ttl. Redis failures are treated as misses so the database remains the
// source of truth; only fill errors propagate.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fill func() error) error {
	if client == nil {
		return fill()
	}

	prefix := keyPrefix(key)

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			middleware.CacheHits.WithLabelValues(prefix, "hit").Inc()
			return nil
		}
		// Corrupt entry; drop it and fall through to the database.
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	middleware.CacheHits.WithLabelValues(prefix, "miss").Inc()

	if err := fill(); err != nil {
		return err
	}

	if raw, err := json.Marshal(dest); err == nil {
		if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

// keyPrefix reduces a cache key to its leading segment for metric labels,
// keeping label cardinality bounded.
func keyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
