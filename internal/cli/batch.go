package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/quotescan/internal/model"
	"github.com/ppiankov/quotescan/internal/pipeline"
	"github.com/ppiankov/quotescan/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <news-file>",
	Short: "Extract quotes from a news file with parallel workers",
	Long: `Batch processes news items concurrently:
- Read news items from the input file
- Annotate and extract items in parallel with a configurable worker count
- Write results in input order, exactly as extract does

Failed items are reported and skipped; the rest of the batch continues.

Example:
  quotescan batch data/news.txt
  quotescan batch data/news.txt --concurrency 8 --json reports.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("concurrency", 0, "number of concurrent workers (default from config)")
	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	return run(args[0], func(ctx context.Context, cfg *model.Config, p *pipeline.Pipeline, items []model.NewsItem) ([]*model.Report, error) {
		workers := cfg.Concurrency.Workers
		fmt.Fprintf(os.Stderr, "⚙️  Processing with %d workers...\n", workers)

		batch := worker.NewBatchProcessor(p, workers)
		if verbose {
			batch.OnProgress(func(done, total int, report *model.Report) {
				if report.Failed() {
					fmt.Fprintf(os.Stderr, "✗ [%d/%d] item %d: %s\n", done, total, report.Index, report.Error)
					return
				}
				fmt.Fprintf(os.Stderr, "✓ [%d/%d] item %d: %d quotes\n", done, total, report.Index, len(report.Quotes))
			})
		}

		reports := batch.Process(ctx, items)
		return reports, ctx.Err()
	})
}
