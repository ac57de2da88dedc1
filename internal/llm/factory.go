package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/quotescan/internal/model"
)

// NewProvider creates the judge used by the llm similarity method. An empty
// or "none" provider yields a nil Provider and no error.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config. Proxies follow
// the annotator's so all outbound calls share one route.
func ConfigFromModel(modelConfig model.LLMConfig, proxies model.AnnotatorConfig) Config {
	cfg := DefaultConfig()
	cfg.Provider = modelConfig.Provider
	cfg.Model = modelConfig.Model
	cfg.APIKey = modelConfig.APIKey
	cfg.BaseURL = modelConfig.BaseURL
	cfg.HTTPProxy = proxies.HTTPProxy
	cfg.HTTPSProxy = proxies.HTTPSProxy
	if modelConfig.Timeout > 0 {
		cfg.Timeout = modelConfig.Timeout
	}
	return cfg
}
