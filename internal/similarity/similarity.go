// Package similarity decides whether two adjacent sentences of a news item
// belong to the same quoted statement.
//
// Comparators:
//   - Cosine: bag-of-words cosine similarity against a threshold
//   - LLM: asks an LLM provider for a yes/no verdict
//   - Fixed: always or never similar, for debugging
//   - Cached: memoizes another comparator's verdicts
package similarity

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/quotescan/internal/cache"
	"github.com/ppiankov/quotescan/internal/llm"
	"github.com/ppiankov/quotescan/internal/model"
)

// Comparator decides whether two word sequences belong together
type Comparator interface {
	Similar(ctx context.Context, a, b []string) (bool, error)
}

// Fixed returns the same verdict for every pair
type Fixed bool

// Similar returns the fixed verdict
func (f Fixed) Similar(ctx context.Context, a, b []string) (bool, error) {
	return bool(f), nil
}

// Method names accepted by New
const (
	MethodCosine = "cosine"
	MethodLLM    = "llm"
	MethodAlways = "always"
	MethodNever  = "never"
)

// Option configures New
type Option func(*options)

type options struct {
	limiter Waiter
	host    string
	logger  *zap.Logger
}

// WithLimiter makes LLM comparisons wait on limiter under host
func WithLimiter(limiter Waiter, host string) Option {
	return func(o *options) {
		o.limiter = limiter
		o.host = host
	}
}

// WithLogger sets the logger for cache write failures
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New builds the comparator selected by cfg. The llm method needs a
// provider; c may be nil to disable caching.
func New(cfg model.SimilarityConfig, provider llm.Provider, c cache.Cache, opts ...Option) (Comparator, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var cmp Comparator
	switch strings.ToLower(cfg.Method) {
	case "", MethodCosine:
		cos, err := NewCosine(cfg.Threshold)
		if err != nil {
			return nil, err
		}
		cmp = cos
	case MethodLLM:
		if provider == nil {
			return nil, fmt.Errorf("similarity method %q requires an LLM provider", cfg.Method)
		}
		cmp = NewLLM(provider, o.limiter, o.host)
	case MethodAlways:
		return Fixed(true), nil
	case MethodNever:
		return Fixed(false), nil
	default:
		return nil, fmt.Errorf("unknown similarity method: %s (supported: cosine, llm, always, never)", cfg.Method)
	}

	if c != nil {
		cmp = NewCached(cmp, c, cacheNamespace(cfg), o.logger)
	}
	return cmp, nil
}

func cacheNamespace(cfg model.SimilarityConfig) string {
	method := strings.ToLower(cfg.Method)
	if method == "" || method == MethodCosine {
		return fmt.Sprintf("similarity-cosine-%.4f", cfg.Threshold)
	}
	return "similarity-" + method
}
