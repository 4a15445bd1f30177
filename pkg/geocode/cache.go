package geocode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"
)

// Cache stores lookup results keyed by CacheKey.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Put(ctx context.Context, key string, r *Result) error
}

// CacheKey returns the SHA-256 hex digest of the lower-cased,
// whitespace-normalized one-line address.
func CacheKey(addr AddressInput) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(addr.OneLine())), " ")
	h := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(h[:])
}

// CachedClient serves repeat lookups from a Cache. Matches and non-matches
// are cached; errors are not.
type CachedClient struct {
	next  Client
	cache Cache
}

// NewCachedClient wraps next with cache.
func NewCachedClient(next Client, cache Cache) *CachedClient {
	return &CachedClient{next: next, cache: cache}
}

// Geocode implements Client. Cache failures are logged and treated as misses.
func (c *CachedClient) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	key := CacheKey(addr)

	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		zap.L().Warn("geocode: cache lookup failed", zap.String("key", key[:12]), zap.Error(err))
	} else if ok {
		zap.L().Debug("geocode cache hit", zap.String("key", key[:12]), zap.Bool("matched", cached.Matched))
		return cached, nil
	}

	res, err := c.next.Geocode(ctx, addr)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, res); err != nil {
		zap.L().Warn("geocode: cache store failed", zap.String("key", key[:12]), zap.Error(err))
	}
	return res, nil
}
