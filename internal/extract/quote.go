package extract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/quotescan/internal/model"
	"github.com/ppiankov/quotescan/internal/verbs"
	"go.uber.org/zap"
)

// ErrMalformed is returned when the annotations are structurally inconsistent
var ErrMalformed = errors.New("malformed annotation")

// SentenceEnd is the sentence-final punctuation mark
const SentenceEnd = "。"

const (
	defaultMinSpanTokens   = 5
	defaultMinFollowTokens = 3
)

// clauseSeparators may sit between a reporting verb and the quoted clause
var clauseSeparators = map[string]bool{
	",": true, "，": true,
	":": true, "：": true,
	"?": true, "？": true,
	"!": true, "！": true,
}

// Comparator decides whether two adjacent sentences belong to the same statement
type Comparator interface {
	Similar(ctx context.Context, a, b []string) (bool, error)
}

// QuoteExtractor finds "X said Y" statements in annotated news text
type QuoteExtractor struct {
	comparator      Comparator
	logger          *zap.Logger
	minSpanTokens   int
	minFollowTokens int
}

// Option configures a QuoteExtractor
type Option func(*QuoteExtractor)

// WithLogger sets the progress log sink
func WithLogger(logger *zap.Logger) Option {
	return func(e *QuoteExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMinSpanTokens sets the shortest initial span that is kept
func WithMinSpanTokens(n int) Option {
	return func(e *QuoteExtractor) {
		if n > 0 {
			e.minSpanTokens = n
		}
	}
}

// WithMinFollowTokens sets the shortest lone trailing sentence that is appended
func WithMinFollowTokens(n int) Option {
	return func(e *QuoteExtractor) {
		if n > 0 {
			e.minFollowTokens = n
		}
	}
}

// NewQuoteExtractor creates an extractor. A nil comparator treats every
// sentence pair as dissimilar.
func NewQuoteExtractor(comparator Comparator, opts ...Option) *QuoteExtractor {
	e := &QuoteExtractor{
		comparator:      comparator,
		logger:          zap.NewNop(),
		minSpanTokens:   defaultMinSpanTokens,
		minFollowTokens: defaultMinFollowTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the quotes found in one news item, in the order of their
// speaker tokens
func (e *QuoteExtractor) Extract(ctx context.Context, tokens []model.Token, reporting verbs.Set) ([]model.Quote, error) {
	if err := Validate(tokens); err != nil {
		return nil, err
	}

	words := model.Words(tokens)
	bounds := Boundaries(words)

	var quotes []model.Quote
	for i, t := range tokens {
		if !t.Entity.IsSingleName() {
			continue
		}
		if t.Relation != model.RelationSubject || t.Head == model.RootHead {
			continue
		}

		verb := words[t.HeadIndex()]
		if !reporting.Contains(verb) {
			continue
		}
		e.logger.Debug("reporting structure found",
			zap.Int("token", i),
			zap.String("speaker", t.Text),
			zap.String("verb", verb))

		span, err := e.span(ctx, words, bounds, t.Head)
		if err != nil {
			return nil, fmt.Errorf("extend span of %q: %w", t.Text, err)
		}
		if len(span) == 0 {
			continue
		}

		quotes = append(quotes, model.Quote{
			Speaker: t.Text,
			Verb:    verb,
			Text:    strings.Join(span, ""),
		})
	}

	return quotes, nil
}

// span assembles the quoted words that follow the verb. start is the
// position right after the verb.
func (e *QuoteExtractor) span(ctx context.Context, words []string, bounds []int, start int) ([]string, error) {
	last := len(words) - 1

	// First boundary at or after start; the final boundary is always last
	k := sort.SearchInts(bounds, start)
	endPoint := last
	if k < len(bounds) {
		endPoint = bounds[k]
	} else {
		k = len(bounds) - 1
	}

	if start < len(words) && clauseSeparators[words[start]] {
		start++
	}

	var span []string
	if endPoint+1-start >= e.minSpanTokens {
		span = append(span, words[start:endPoint+1]...)
	}

	switch remaining := len(bounds) - 1 - k; {
	case remaining == 0:
	case remaining == 1:
		next := words[endPoint+1 : last+1]
		if len(next) >= e.minFollowTokens {
			span = append(span, next...)
		}
	default:
		for ; k < len(bounds)-1; k++ {
			current := Sentence(words, bounds, k)
			next := Sentence(words, bounds, k+1)

			similar, err := e.similar(ctx, current, next)
			if err != nil {
				return nil, err
			}
			if !similar {
				break
			}
			span = append(span, next...)
		}
	}

	return span, nil
}

func (e *QuoteExtractor) similar(ctx context.Context, a, b []string) (bool, error) {
	if e.comparator == nil {
		return false, nil
	}
	return e.comparator.Similar(ctx, a, b)
}

// Validate checks that tokens are non-empty and every head is the root or
// a valid 1-based position
func Validate(tokens []model.Token) error {
	if len(tokens) == 0 {
		return fmt.Errorf("%w: no tokens", ErrMalformed)
	}
	for i, t := range tokens {
		if t.Head < model.RootHead || t.Head > len(tokens) {
			return fmt.Errorf("%w: token %d (%q) has head %d outside [0, %d]",
				ErrMalformed, i, t.Text, t.Head, len(tokens))
		}
	}
	return nil
}
