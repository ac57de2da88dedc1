package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/quotescan/internal/model"
)

// ErrCancelled marks items that never ran because the batch was cancelled
var ErrCancelled = errors.New("cancelled before processing")

// Processor turns one news item into a report. Failures belong in
// Report.Error.
type Processor interface {
	Process(ctx context.Context, item model.NewsItem) *model.Report
}

// ItemJob processes one news item
type ItemJob struct {
	Position  int
	Item      model.NewsItem
	Processor Processor
}

// Execute executes the item job
func (j *ItemJob) Execute(ctx context.Context) Result {
	report := j.Processor.Process(ctx, j.Item)
	if report == nil {
		report = &model.Report{
			Index: j.Item.Index,
			Text:  j.Item.Text,
			Error: "processor returned no report",
		}
	}
	return &ItemResult{Position: j.Position, Report: report}
}

// ItemResult carries the report and the item's position in the batch
type ItemResult struct {
	Position int
	Report   *model.Report
}

// GetError returns the item's failure, if any
func (r *ItemResult) GetError() error {
	if r.Report == nil || !r.Report.Failed() {
		return nil
	}
	return errors.New(r.Report.Error)
}

// ProgressFunc is called after each item completes
type ProgressFunc func(done, total int, report *model.Report)

// BatchProcessor processes news items concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
	progress    ProgressFunc
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// OnProgress registers a callback invoked from the collecting goroutine
func (b *BatchProcessor) OnProgress(fn ProgressFunc) {
	b.progress = fn
}

// Process runs every item and returns one report per item, in input order.
// Items left unprocessed when ctx is done get a cancelled report.
func (b *BatchProcessor) Process(ctx context.Context, items []model.NewsItem) []*model.Report {
	if len(items) == 0 {
		return []*model.Report{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	go func() {
		defer pool.Close()
		for i, item := range items {
			job := &ItemJob{Position: i, Item: item, Processor: b.processor}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	reports := make([]*model.Report, len(items))
	done := 0
	for result := range pool.Results() {
		r, ok := result.(*ItemResult)
		if !ok {
			continue
		}
		reports[r.Position] = r.Report
		done++
		if b.progress != nil {
			b.progress(done, len(items), r.Report)
		}
	}

	for i, report := range reports {
		if report == nil {
			reports[i] = &model.Report{
				Index:  items[i].Index,
				Text:   items[i].Text,
				Quotes: []model.Quote{},
				Error:  fmt.Sprintf("%v: %v", ErrCancelled, ctx.Err()),
			}
		}
	}

	return reports
}
