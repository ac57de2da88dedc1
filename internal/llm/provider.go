package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoVerdict is returned when the model answer is neither yes nor no
var ErrNoVerdict = errors.New("no verdict in LLM answer")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Judge asks whether the next sentence continues the previous one's statement
	Judge(ctx context.Context, req JudgeRequest) (*JudgeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// JudgeRequest contains two adjacent sentences of a news item
type JudgeRequest struct {
	Previous string
	Next     string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// JudgeResponse contains the parsed verdict
type JudgeResponse struct {
	// Continues is true when the model says Next continues Previous
	Continues bool

	// Answer is the raw model output
	Answer string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: defaultMaxTokens,
	}
}

// Default endpoints used when BaseURL is empty
const (
	defaultOllamaURL = "http://localhost:11434"
	defaultOpenAIURL = "https://api.openai.com/v1"
)

// Host returns the host the provider talks to, for per-host rate limiting
func (c Config) Host() string {
	base := c.BaseURL
	if base == "" {
		switch strings.ToLower(c.Provider) {
		case "ollama":
			base = defaultOllamaURL
		case "openai":
			base = defaultOpenAIURL
		default:
			return c.Provider
		}
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" {
		return base
	}
	return parsed.Host
}

// A verdict is one word; a few spare tokens absorb punctuation
const defaultMaxTokens = 8

// resolve fills unset request fields from the provider configuration
func (c Config) resolve(req JudgeRequest) JudgeRequest {
	if req.Prompt == "" {
		req.Prompt = BuildPrompt(req.Previous, req.Next)
	}
	if req.Model == "" {
		req.Model = c.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.MaxTokens
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = defaultMaxTokens
	}
	return req
}

// verdict turns a raw model answer into a response
func verdict(answer, model string, tokensUsed int) (*JudgeResponse, error) {
	answer = strings.TrimSpace(answer)
	continues, err := ParseVerdict(answer)
	if err != nil {
		return nil, err
	}
	return &JudgeResponse{
		Continues:  continues,
		Answer:     answer,
		Model:      model,
		TokensUsed: tokensUsed,
	}, nil
}

const systemPrompt = "You judge whether sentences in a news article belong to the same quoted statement. Answer with a single word: yes or no."

// BuildPrompt constructs the default judging prompt
func BuildPrompt(previous, next string) string {
	return fmt.Sprintf(`A news article attributes a statement to a speaker. The first sentence below is part of that statement.
Does the second sentence continue the same statement (same speaker, same topic)?

First sentence:
%s

Second sentence:
%s

Answer yes or no.`, previous, next)
}

// ParseVerdict reads a yes/no answer, accepting English and Chinese forms
func ParseVerdict(answer string) (bool, error) {
	a := strings.ToLower(strings.TrimSpace(answer))
	a = strings.Trim(a, " \t\n.。!！\"'`*")

	switch {
	case strings.HasPrefix(a, "yes"), strings.HasPrefix(a, "是"), strings.HasPrefix(a, "对"), a == "y", a == "true":
		return true, nil
	case strings.HasPrefix(a, "no"), strings.HasPrefix(a, "否"), strings.HasPrefix(a, "不"), a == "n", a == "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrNoVerdict, answer)
}
