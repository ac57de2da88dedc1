package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/quotescan/internal/annotate"
	"github.com/ppiankov/quotescan/internal/cache"
	"github.com/ppiankov/quotescan/internal/extract"
	"github.com/ppiankov/quotescan/internal/llm"
	"github.com/ppiankov/quotescan/internal/model"
	"github.com/ppiankov/quotescan/internal/similarity"
	"github.com/ppiankov/quotescan/internal/verbs"
	"github.com/ppiankov/quotescan/internal/worker"
	"go.uber.org/zap"
)

// Pipeline annotates news items and extracts their quotes
type Pipeline struct {
	annotator annotate.Annotator
	extractor *extract.QuoteExtractor
	verbs     verbs.Set
	cache     cache.Cache
	logger    *zap.Logger
}

// New creates a pipeline from ready components
func New(annotator annotate.Annotator, extractor *extract.QuoteExtractor, reporting verbs.Set, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		annotator: annotator,
		extractor: extractor,
		verbs:     reporting,
		logger:    logger,
	}
}

// NewFromConfig wires the annotator, comparator and extractor described by cfg
func NewFromConfig(ctx context.Context, cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reporting, err := verbs.Load(cfg.Extract.VerbsFile)
	if err != nil {
		return nil, fmt.Errorf("load reporting verbs: %w", err)
	}
	logger.Info("loaded reporting verbs", zap.Int("count", reporting.Len()))
	logger.Debug("reporting verbs", zap.Strings("verbs", reporting.Sorted()))

	c := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL)

	// One limiter for every remote host: the sidecar and the LLM provider
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	annotator, err := newAnnotator(cfg, c, limiter, logger)
	if err != nil {
		return nil, err
	}

	comparator, err := newComparator(ctx, cfg, c, limiter, logger)
	if err != nil {
		return nil, err
	}

	extractor := extract.NewQuoteExtractor(comparator,
		extract.WithLogger(logger.Named("extract")),
		extract.WithMinSpanTokens(cfg.Extract.MinSpanTokens),
		extract.WithMinFollowTokens(cfg.Extract.MinFollowTokens),
	)

	p := New(annotator, extractor, reporting, logger)
	p.cache = c
	return p, nil
}

// CacheStats reports annotation and similarity cache lookups, when caching
// is enabled
func (p *Pipeline) CacheStats() (cache.Stats, bool) {
	if p.cache == nil {
		return cache.Stats{}, false
	}
	return cache.StatsOf(p.cache)
}

func newAnnotator(cfg *model.Config, c cache.Cache, limiter *worker.Limiter, logger *zap.Logger) (annotate.Annotator, error) {
	// A pre-annotated file is already local; caching it buys nothing
	if cfg.Annotator.ConllFile != "" {
		a, err := annotate.LoadConll(cfg.Annotator.ConllFile)
		if err != nil {
			return nil, fmt.Errorf("load annotations: %w", err)
		}
		logger.Info("using pre-annotated file",
			zap.String("path", cfg.Annotator.ConllFile),
			zap.Int("items", a.Len()))
		return a, nil
	}

	limiter.SetHostRate(cfg.Annotator.Endpoint, cfg.RateLimiting.SidecarRequestsPerSecond, cfg.RateLimiting.SidecarBurstSize)
	remote, err := annotate.NewHTTPAnnotator(annotate.HTTPConfigFromModel(cfg.Annotator), limiter, logger.Named("annotate"))
	if err != nil {
		return nil, fmt.Errorf("create annotator: %w", err)
	}
	logger.Info("using annotation sidecar", zap.String("endpoint", cfg.Annotator.Endpoint))

	if c == nil {
		return remote, nil
	}
	return annotate.NewCached(remote, c, logger.Named("cache")), nil
}

func newComparator(ctx context.Context, cfg *model.Config, c cache.Cache, limiter similarity.Waiter, logger *zap.Logger) (similarity.Comparator, error) {
	opts := []similarity.Option{similarity.WithLogger(logger.Named("cache"))}

	var provider llm.Provider
	if cfg.Similarity.Method == similarity.MethodLLM {
		llmCfg := llm.ConfigFromModel(cfg.LLM, cfg.Annotator)
		p, err := llm.NewProvider(llmCfg)
		if err != nil {
			return nil, fmt.Errorf("create LLM provider: %w", err)
		}
		if p != nil && !p.IsAvailable(ctx) {
			logger.Warn("LLM provider not reachable; similarity checks will fail",
				zap.String("provider", p.Name()))
		}
		provider = p
		opts = append(opts, similarity.WithLimiter(limiter, llmCfg.Host()))
	}

	cmp, err := similarity.New(cfg.Similarity, provider, c, opts...)
	if err != nil {
		return nil, fmt.Errorf("create comparator: %w", err)
	}
	return cmp, nil
}

// Process annotates one item and extracts its quotes. Failures are
// recorded on the report, never returned.
func (p *Pipeline) Process(ctx context.Context, item model.NewsItem) *model.Report {
	start := time.Now()
	report := &model.Report{
		Index:  item.Index,
		Text:   item.Text,
		Quotes: []model.Quote{},
	}
	defer func() {
		report.ProcessedAt = time.Now().UTC()
		report.Duration = time.Since(start)
	}()

	tokens, err := p.annotator.Annotate(ctx, item.Text)
	if err != nil {
		report.Error = fmt.Sprintf("annotate: %v", err)
		p.logger.Warn("item skipped", zap.Int("item", item.Index), zap.Error(err))
		return report
	}
	report.TokenCount = len(tokens)

	quotes, err := p.extractor.Extract(ctx, tokens, p.verbs)
	if err != nil {
		report.Error = fmt.Sprintf("extract: %v", err)
		p.logger.Warn("item skipped", zap.Int("item", item.Index), zap.Error(err))
		return report
	}
	report.Quotes = append(report.Quotes, quotes...)

	p.logger.Debug("item processed",
		zap.Int("item", item.Index),
		zap.Int("tokens", len(tokens)),
		zap.Int("quotes", len(quotes)))
	return report
}

// ProcessAll processes items one after another, stopping early only when
// ctx is done
func (p *Pipeline) ProcessAll(ctx context.Context, items []model.NewsItem) ([]*model.Report, error) {
	reports := make([]*model.Report, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, p.Process(ctx, item))
	}
	return reports, nil
}
