package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/quotescan/internal/model"
	"github.com/ppiankov/quotescan/internal/news"
	"github.com/ppiankov/quotescan/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <news-file>",
	Short: "Extract quotes from a news file, one item at a time",
	Long: `Extract reads news items (one per line, or paragraphs of an HTML page),
annotates each one and writes every attributed quote to the result file as

  <speaker> <verb> <statement>

with a separator line after each item.

Example:
  quotescan extract data/news.txt
  quotescan extract data/news.txt --conll data/news.conll --out result.txt
  quotescan extract page.html --similarity llm --json reports.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	return run(args[0], func(ctx context.Context, cfg *model.Config, p *pipeline.Pipeline, items []model.NewsItem) ([]*model.Report, error) {
		return p.ProcessAll(ctx, items)
	})
}

type processFunc func(ctx context.Context, cfg *model.Config, p *pipeline.Pipeline, items []model.NewsItem) ([]*model.Report, error)

// run loads the configuration and input, processes every item with process
// and writes the outputs. Partial results are written when interrupted.
func run(file string, process processFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	items, err := news.Load(file)
	if err != nil {
		return fmt.Errorf("load news: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d news items from %s\n", len(items), file)

	p, err := pipeline.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	reports, procErr := process(ctx, cfg, p, items)
	if procErr != nil {
		logger.Warn("processing interrupted", zap.Error(procErr), zap.Int("completed", len(reports)))
	}

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	if err := renderer.RenderResults(reports, cfg.Output.ResultPath); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Results written to %s\n", cfg.Output.ResultPath)

	if cfg.Output.JSONPath != "" {
		if err := renderer.RenderJSON(reports, cfg.Output.JSONPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Reports written to %s\n", cfg.Output.JSONPath)
	}

	renderer.RenderSummary(os.Stderr, reports)
	if stats, ok := p.CacheStats(); ok {
		logger.Info("cache",
			zap.Int64("hits", stats.Hits),
			zap.Int64("disk_hits", stats.DiskHits),
			zap.Int64("misses", stats.Misses),
			zap.Float64("hit_rate", stats.HitRate()))
	}
	logger.Info("done", zap.Int("items", len(reports)), zap.Duration("elapsed", time.Since(start)))

	if procErr != nil {
		return fmt.Errorf("interrupted after %d of %d items: %w", len(reports), len(items), procErr)
	}
	return nil
}
