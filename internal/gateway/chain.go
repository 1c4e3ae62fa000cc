package gateway

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// step is one provider attempt in an ordered fallback chain.
type step[T any] struct {
	name   string
	usable bool
	fetch  func(context.Context) (T, error)
}

// resolve walks an ordered chain of provider steps and returns the
// first success. Unusable steps (missing credentials) are skipped
// without counting as failures. When every usable step has failed, or
// none exists, the synthetic fallback answers; it cannot fail, so
// resolve never returns an error.
func resolve[T any](ctx context.Context, s *Service, category string, steps []step[T], fallback func(context.Context) (T, error)) T {
	attempted := false
	for _, st := range steps {
		if !st.usable {
			continue
		}
		attempted = true
		s.metrics.ProviderRequests.WithLabelValues(st.name, category).Inc()
		v, err := st.fetch(ctx)
		if err != nil {
			s.metrics.ProviderFailures.WithLabelValues(st.name, category).Inc()
			s.log.Warn("provider failed, trying next",
				zap.String("provider", st.name),
				zap.String("category", category),
				zap.Error(err))
			continue
		}
		return v
	}

	if attempted {
		s.metrics.ChainExhausted.WithLabelValues(category).Inc()
	}
	s.metrics.FallbackTotal.WithLabelValues(category).Inc()
	v, _ := fallback(ctx)
	return v
}

// lookup is the cache-aside read path: serve from cache when present,
// otherwise run fetch, store the result under key for ttl and serve
// it. The bool reports whether the response came from cache. Entries
// that no longer unmarshal are dropped and refetched.
func lookup[T any](ctx context.Context, s *Service, category, key string, ttl time.Duration, fetch func(context.Context) T) (T, bool) {
	start := time.Now()
	defer func() {
		s.metrics.RequestDur.WithLabelValues(category).Observe(time.Since(start).Seconds())
	}()

	if b, ok := s.store.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			s.metrics.CacheHits.WithLabelValues(category).Inc()
			return v, true
		}
		s.log.Warn("dropping undecodable cache entry", zap.String("key", key))
		s.store.Delete(ctx, key)
	}
	s.metrics.CacheMisses.WithLabelValues(category).Inc()

	v := fetch(ctx)
	if b, err := json.Marshal(v); err == nil {
		s.store.Set(ctx, key, b, ttl)
	}
	return v, false
}
