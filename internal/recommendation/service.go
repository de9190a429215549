package recommendation

import (
	"context"
	"log/slog"
	"time"

	"github.com/aevon-lab/storefront-signals/internal/metrics"
)

// Service serves recommendations, reading through the cache when one is
// configured. Cache failures are logged and never fail a request.
type Service struct {
	upstream Fetcher
	cache    Cache
	ttl      time.Duration
}

// NewService creates a recommendation service. cache may be nil; a zero
// ttl disables caching as well.
func NewService(upstream Fetcher, cache Cache, ttl time.Duration) *Service {
	if upstream == nil {
		panic("recommendation: upstream must not be nil")
	}
	if ttl <= 0 {
		cache = nil
	}
	return &Service{upstream: upstream, cache: cache, ttl: ttl}
}

// cacheKey separates the ids with NUL, which cannot appear in either id,
// so ("a:b", "") and ("a", "b") never share an entry.
func cacheKey(userID, productID string) string {
	return userID + "\x00" + productID
}

// Recommendations returns the ranked list for a user, or for a user viewing
// productID when productID is non-empty.
func (s *Service) Recommendations(ctx context.Context, userID, productID string) (List, error) {
	key := cacheKey(userID, productID)

	if s.cache != nil {
		list, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.RecordCacheLookup("error")
			slog.Warn("[Recommendations] Cache read failed", "key", key, "error", err)
		case ok:
			metrics.RecordCacheLookup("hit")
			return list, nil
		default:
			metrics.RecordCacheLookup("miss")
		}
	}

	list, err := s.upstream.Fetch(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, list, s.ttl); err != nil {
			slog.Warn("[Recommendations] Cache write failed", "key", key, "error", err)
		}
	}
	return list, nil
}
