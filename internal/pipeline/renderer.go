package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/quotescan/internal/model"
)

// Separator follows each item's result lines
const Separator = "++++++++++++++++++++++++++++++++++++ 分割线 ++++++++++++++++++++++++++++++++++++"

// Renderer writes extraction results
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// WriteResults writes "speaker verb text" lines for every item, each item
// followed by the separator line
func (r *Renderer) WriteResults(w io.Writer, reports []*model.Report) error {
	bw := bufio.NewWriter(w)
	for _, report := range reports {
		if report == nil {
			continue
		}
		for _, q := range report.Quotes {
			if _, err := fmt.Fprintf(bw, "%s %s %s\n", q.Speaker, q.Verb, q.Text); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "\n%s\n", Separator); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// RenderResults writes the result file at path
func (r *Renderer) RenderResults(reports []*model.Report, path string) (err error) {
	return writeFile(path, func(w io.Writer) error {
		return r.WriteResults(w, reports)
	})
}

// RenderJSON writes all reports as a JSON array
func (r *Renderer) RenderJSON(reports []*model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(reports)
	})
}

// RenderSummary prints batch totals, and failed items when verbose
func (r *Renderer) RenderSummary(w io.Writer, reports []*model.Report) {
	s := model.Summarize(reports)

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Items:     %d\n", s.Items)
	fmt.Fprintf(w, "  Failures:  %d\n", s.Failures)
	fmt.Fprintf(w, "  Quotes:    %d\n", s.Quotes)
	fmt.Fprintf(w, "  Speakers:  %d\n", s.Speakers)
	fmt.Fprintf(w, "\n")

	if !r.verbose {
		return
	}
	for _, report := range reports {
		if report != nil && report.Failed() {
			fmt.Fprintf(w, "✗ item %d: %s\n", report.Index, report.Error)
		}
	}
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
