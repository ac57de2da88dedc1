package similarity

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/quotescan/internal/llm"
)

// Waiter blocks until a call to key may proceed
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// LLM asks a language model whether the second sentence continues the first
type LLM struct {
	provider llm.Provider
	limiter  Waiter
	host     string
}

// NewLLM creates an LLM-backed comparator. When limiter is non-nil every
// judge call first waits on it under host.
func NewLLM(provider llm.Provider, limiter Waiter, host string) *LLM {
	return &LLM{provider: provider, limiter: limiter, host: host}
}

// Similar returns the model's verdict
func (l *LLM) Similar(ctx context.Context, a, b []string) (bool, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx, l.host); err != nil {
			return false, fmt.Errorf("rate limit %s: %w", l.host, err)
		}
	}

	resp, err := l.provider.Judge(ctx, llm.JudgeRequest{
		Previous: strings.Join(a, ""),
		Next:     strings.Join(b, ""),
	})
	if err != nil {
		return false, fmt.Errorf("%s judge: %w", l.provider.Name(), err)
	}
	return resp.Continues, nil
}
