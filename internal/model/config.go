package model

import "time"

// Config holds all runtime settings. Field tags drive both the YAML dump
// (config show/init) and viper decoding.
type Config struct {
	Annotator    AnnotatorConfig    `yaml:"annotator" mapstructure:"annotator"`
	Extract      ExtractConfig      `yaml:"extract" mapstructure:"extract"`
	Similarity   SimilarityConfig   `yaml:"similarity" mapstructure:"similarity"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// AnnotatorConfig selects and configures the NLP annotation source
type AnnotatorConfig struct {
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`       // Base URL of the annotation sidecar
	ConllFile  string        `yaml:"conll_file" mapstructure:"conll_file"`   // Pre-annotated file; takes precedence over Endpoint
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`         // Per-request timeout
	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"` // Retries on 5xx / connection errors
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// ExtractConfig tunes the quote span heuristic
type ExtractConfig struct {
	VerbsFile       string `yaml:"verbs_file" mapstructure:"verbs_file"`               // Reporting verbs, whitespace separated
	MinSpanTokens   int    `yaml:"min_span_tokens" mapstructure:"min_span_tokens"`     // Shortest accepted initial span
	MinFollowTokens int    `yaml:"min_follow_tokens" mapstructure:"min_follow_tokens"` // Shortest accepted single trailing sentence
}

// SimilarityConfig selects the sentence comparator used for span extension
type SimilarityConfig struct {
	Method    string  `yaml:"method" mapstructure:"method"`       // cosine, llm, always, never
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"` // Cosine threshold in [0, 1]
}

// LLMConfig holds LLM provider settings for the llm similarity method
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // openai, ollama
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // Seconds
}

// CacheConfig controls annotation and similarity caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits calls per remote host. The default rate applies
// to LLM providers; the sidecar rate overrides it for the annotation
// endpoint. A non-positive rate means unlimited.
type RateLimitingConfig struct {
	RequestsPerSecond        float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize                int     `yaml:"burst_size" mapstructure:"burst_size"`
	SidecarRequestsPerSecond float64 `yaml:"sidecar_requests_per_second" mapstructure:"sidecar_requests_per_second"`
	SidecarBurstSize         int     `yaml:"sidecar_burst_size" mapstructure:"sidecar_burst_size"`
}

// OutputConfig controls result files
type OutputConfig struct {
	ResultPath string `yaml:"result_path" mapstructure:"result_path"`
	JSONPath   string `yaml:"json_path,omitempty" mapstructure:"json_path"`
	Verbose    bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
	File        string `yaml:"file,omitempty" mapstructure:"file"` // Rotated log file; empty logs to stderr
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Annotator: AnnotatorConfig{
			Endpoint:   "http://localhost:12345",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Extract: ExtractConfig{
			VerbsFile:       "./data/words.txt",
			MinSpanTokens:   5,
			MinFollowTokens: 3,
		},
		Similarity: SimilarityConfig{
			Method:    "cosine",
			Threshold: 0.3,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  30,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond:        10,
			BurstSize:                5,
			SidecarRequestsPerSecond: 20,
			SidecarBurstSize:         10,
		},
		Output: OutputConfig{
			ResultPath: "./data/result.txt",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
