package model

import "time"

// Report is the extraction result for one news item
type Report struct {
	Index       int           `json:"index"`           // Position of the item in the input
	Text        string        `json:"text"`            // Raw news text
	TokenCount  int           `json:"token_count"`     // Number of annotated tokens
	Quotes      []Quote       `json:"quotes"`          // Extracted quotes in subject order
	Error       string        `json:"error,omitempty"` // Set when the item could not be processed
	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration_ns"`
}

// Failed reports whether the item could not be processed
func (r *Report) Failed() bool {
	return r.Error != ""
}

// Summary aggregates a set of reports
type Summary struct {
	Items    int `json:"items"`
	Failures int `json:"failures"`
	Quotes   int `json:"quotes"`
	Speakers int `json:"speakers"` // Distinct speakers across all items
}

// Summarize builds a Summary over reports
func Summarize(reports []*Report) Summary {
	s := Summary{Items: len(reports)}
	speakers := make(map[string]bool)
	for _, r := range reports {
		if r == nil {
			continue
		}
		if r.Failed() {
			s.Failures++
			continue
		}
		s.Quotes += len(r.Quotes)
		for _, q := range r.Quotes {
			speakers[q.Speaker] = true
		}
	}
	s.Speakers = len(speakers)
	return s
}
