// Package annotate turns raw news text into annotated tokens: words,
// part-of-speech tags, named-entity tags and dependency arcs. The heavy
// lifting is done by an external engine (an LTP-style sidecar) or read from
// a pre-annotated file.
package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/quotescan/internal/cache"
	"github.com/ppiankov/quotescan/internal/model"
)

var (
	// ErrInconsistent is returned when the engine's parallel outputs disagree
	ErrInconsistent = errors.New("inconsistent annotation")

	// ErrNotFound is returned by file-backed annotators for unknown text
	ErrNotFound = errors.New("text not annotated")
)

// Annotator produces tokens for a piece of text
type Annotator interface {
	Annotate(ctx context.Context, text string) ([]model.Token, error)
}

// Arc is one dependency arc: the 1-based head (0 for root) and relation label
type Arc struct {
	Head     int    `json:"head"`
	Relation string `json:"relation"`
}

// Assemble zips the engine's parallel outputs into tokens
func Assemble(words, postags, netags []string, arcs []Arc) ([]model.Token, error) {
	n := len(words)
	if len(postags) != n || len(netags) != n || len(arcs) != n {
		return nil, fmt.Errorf("%w: %d words, %d POS tags, %d entity tags, %d arcs",
			ErrInconsistent, n, len(postags), len(netags), len(arcs))
	}

	tokens := make([]model.Token, n)
	for i := range words {
		tokens[i] = model.Token{
			Index:    i,
			Text:     words[i],
			POS:      postags[i],
			Entity:   model.ParseEntityTag(netags[i]),
			Relation: arcs[i].Relation,
			Head:     arcs[i].Head,
		}
	}
	return tokens, nil
}

// Cached stores annotations of an underlying annotator
type Cached struct {
	inner  Annotator
	cache  cache.Cache
	logger *zap.Logger
}

// NewCached wraps inner with c. A nil logger discards write failures.
func NewCached(inner Annotator, c cache.Cache, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{inner: inner, cache: c, logger: logger}
}

// Annotate returns cached tokens or asks the underlying annotator
func (c *Cached) Annotate(ctx context.Context, text string) ([]model.Token, error) {
	key := cache.CacheKey("annotate", text)
	if data, ok := c.cache.Get(key); ok {
		var tokens []model.Token
		if err := json.Unmarshal(data, &tokens); err == nil {
			return tokens, nil
		}
	}

	tokens, err := c.inner.Annotate(ctx, text)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(tokens)
	if err == nil {
		err = c.cache.Set(key, data, 0)
	}
	if err != nil {
		c.logger.Warn("cache write failed", zap.Int("tokens", len(tokens)), zap.Error(err))
	}
	return tokens, nil
}
