package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/quotescan/internal/model"
)

// mockProcessor quotes every item and fails items containing "fail"
type mockProcessor struct {
	delay time.Duration
	calls int32
}

func (m *mockProcessor) Process(ctx context.Context, item model.NewsItem) *model.Report {
	atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	report := &model.Report{Index: item.Index, Text: item.Text, Quotes: []model.Quote{}}
	if strings.Contains(item.Text, "fail") {
		report.Error = "annotate: boom"
		return report
	}
	report.Quotes = append(report.Quotes, model.Quote{Speaker: "新华社", Verb: "表示", Text: item.Text})
	return report
}

func newsItems(n int) []model.NewsItem {
	items := make([]model.NewsItem, n)
	for i := range items {
		items[i] = model.NewsItem{Index: i + 1, Text: fmt.Sprintf("item %d", i+1)}
	}
	return items
}

func TestBatchProcessor_Process(t *testing.T) {
	proc := &mockProcessor{delay: time.Millisecond}
	batch := NewBatchProcessor(proc, 3)

	items := newsItems(40)
	reports := batch.Process(context.Background(), items)

	if len(reports) != len(items) {
		t.Fatalf("expected %d reports, got %d", len(items), len(reports))
	}
	for i, report := range reports {
		if report.Index != items[i].Index {
			t.Errorf("report %d: expected index %d, got %d", i, items[i].Index, report.Index)
		}
		if report.Failed() {
			t.Errorf("report %d unexpectedly failed: %s", i, report.Error)
		}
	}
	if got := atomic.LoadInt32(&proc.calls); got != int32(len(items)) {
		t.Errorf("expected %d calls, got %d", len(items), got)
	}
}

func TestBatchProcessor_Process_FailureIsolated(t *testing.T) {
	items := []model.NewsItem{
		{Index: 1, Text: "first"},
		{Index: 2, Text: "this will fail"},
		{Index: 3, Text: "third"},
	}

	reports := NewBatchProcessor(&mockProcessor{}, 2).Process(context.Background(), items)

	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if !reports[1].Failed() {
		t.Errorf("expected item 2 to fail")
	}
	if reports[0].Failed() || reports[2].Failed() {
		t.Errorf("failure leaked into other items")
	}
	if len(reports[2].Quotes) != 1 {
		t.Errorf("expected item 3 to be processed, got %d quotes", len(reports[2].Quotes))
	}
}

func TestBatchProcessor_Process_Empty(t *testing.T) {
	reports := NewBatchProcessor(&mockProcessor{}, 2).Process(context.Background(), nil)
	if len(reports) != 0 {
		t.Errorf("expected 0 reports, got %d", len(reports))
	}
}

func TestBatchProcessor_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := newsItems(20)
	reports := NewBatchProcessor(&mockProcessor{}, 2).Process(ctx, items)

	if len(reports) != len(items) {
		t.Fatalf("expected %d reports, got %d", len(items), len(reports))
	}
	for i, report := range reports {
		if report == nil {
			t.Fatalf("report %d is nil", i)
		}
		if report.Index != items[i].Index {
			t.Errorf("report %d: expected index %d, got %d", i, items[i].Index, report.Index)
		}
	}
	if !reports[len(reports)-1].Failed() {
		t.Errorf("expected unprocessed items to be marked cancelled")
	}
}

func TestBatchProcessor_OnProgress(t *testing.T) {
	batch := NewBatchProcessor(&mockProcessor{}, 4)

	var calls, lastDone int
	batch.OnProgress(func(done, total int, report *model.Report) {
		calls++
		lastDone = done
		if total != 10 {
			t.Errorf("expected total 10, got %d", total)
		}
	})

	batch.Process(context.Background(), newsItems(10))

	if calls != 10 || lastDone != 10 {
		t.Errorf("expected 10 progress calls ending at 10, got %d ending at %d", calls, lastDone)
	}
}

// cancellingProcessor cancels the batch from inside its first item
type cancellingProcessor struct {
	cancel context.CancelFunc
	calls  int32
}

func (c *cancellingProcessor) Process(ctx context.Context, item model.NewsItem) *model.Report {
	atomic.AddInt32(&c.calls, 1)
	c.cancel()
	return &model.Report{Index: item.Index, Text: item.Text, Quotes: []model.Quote{}}
}

func TestBatchProcessor_Process_CancelMidBatch(t *testing.T) {
	for run := 0; run < 20; run++ {
		ctx, cancel := context.WithCancel(context.Background())
		proc := &cancellingProcessor{cancel: cancel}

		items := newsItems(5)
		reports := NewBatchProcessor(proc, 1).Process(ctx, items)

		if got := atomic.LoadInt32(&proc.calls); got != 1 {
			t.Fatalf("run %d: expected 1 processed item, got %d", run, got)
		}
		if len(reports) != len(items) {
			t.Fatalf("run %d: expected %d reports, got %d", run, len(items), len(reports))
		}
		for i, report := range reports[1:] {
			if !strings.Contains(report.Error, ErrCancelled.Error()) {
				t.Errorf("run %d: report %d: expected cancelled error, got %q", run, i+1, report.Error)
			}
		}
	}
}

type nilProcessor struct{}

func (nilProcessor) Process(ctx context.Context, item model.NewsItem) *model.Report {
	return nil
}

func TestItemJob_NilReport(t *testing.T) {
	job := &ItemJob{
		Position: 4,
		Item:     model.NewsItem{Index: 5, Text: "x"},
		Processor: nilProcessor{},
	}

	result := job.Execute(context.Background()).(*ItemResult)
	if result.Position != 4 {
		t.Errorf("expected position 4, got %d", result.Position)
	}
	if result.GetError() == nil {
		t.Errorf("expected error for missing report")
	}
}

func TestItemResult_GetError(t *testing.T) {
	ok := &ItemResult{Report: &model.Report{}}
	if ok.GetError() != nil {
		t.Errorf("expected nil error")
	}

	failed := &ItemResult{Report: &model.Report{Error: "extract: malformed"}}
	if err := failed.GetError(); err == nil || err.Error() != "extract: malformed" {
		t.Errorf("expected item error, got %v", err)
	}

	if !errors.Is(fmt.Errorf("%w", ErrCancelled), ErrCancelled) {
		t.Errorf("ErrCancelled should match itself")
	}
}
