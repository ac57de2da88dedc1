package similarity

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/quotescan/internal/cache"
)

// Cached memoizes verdicts of an underlying comparator
type Cached struct {
	inner     Comparator
	cache     cache.Cache
	namespace string
	logger    *zap.Logger
}

// NewCached wraps inner with c. namespace separates verdicts of
// differently configured comparators. A nil logger discards write failures.
func NewCached(inner Comparator, c cache.Cache, namespace string, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{inner: inner, cache: c, namespace: namespace, logger: logger}
}

// Similar returns a cached verdict or asks the underlying comparator
func (c *Cached) Similar(ctx context.Context, a, b []string) (bool, error) {
	key := cache.CacheKey(c.namespace, strings.Join(a, "\x1f"), strings.Join(b, "\x1f"))
	if val, ok := c.cache.Get(key); ok && len(val) == 1 {
		return val[0] == '1', nil
	}

	similar, err := c.inner.Similar(ctx, a, b)
	if err != nil {
		return false, err
	}

	val := []byte{'0'}
	if similar {
		val[0] = '1'
	}
	if err := c.cache.Set(key, val, 0); err != nil {
		c.logger.Warn("cache write failed",
			zap.String("namespace", c.namespace),
			zap.Error(err))
	}
	return similar, nil
}
