package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ppiankov/quotescan/internal/model"
	"github.com/ppiankov/quotescan/internal/util"
	"go.uber.org/zap"
)

// ErrStatus is returned when the sidecar answers with a non-200 status
var ErrStatus = errors.New("unexpected annotator status")

// Waiter blocks until a request to key may proceed
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// HTTPConfig configures an HTTPAnnotator
type HTTPConfig struct {
	Endpoint   string // e.g. http://ltp:12345
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration // Minimum backoff between retries
	HTTPProxy  string
	HTTPSProxy string
}

// HTTPConfigFromModel converts model.AnnotatorConfig
func HTTPConfigFromModel(cfg model.AnnotatorConfig) HTTPConfig {
	return HTTPConfig{
		Endpoint:   cfg.Endpoint,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryWait:  500 * time.Millisecond,
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
	}
}

// HTTPAnnotator calls an annotation sidecar's /annotate endpoint
type HTTPAnnotator struct {
	url     string
	host    string
	client  *retryablehttp.Client
	limiter Waiter
	logger  *zap.Logger
}

type annotateRequest struct {
	Text string `json:"text"`
}

type annotateResponse struct {
	Words   []string `json:"words"`
	POSTags []string `json:"postags"`
	NETags  []string `json:"netags"`
	Arcs    []Arc    `json:"arcs"`
}

type annotateError struct {
	Error string `json:"error"`
}

// NewHTTPAnnotator creates an annotator for the sidecar at cfg.Endpoint.
// limiter and logger may be nil.
func NewHTTPAnnotator(cfg HTTPConfig, limiter Waiter, logger *zap.Logger) (*HTTPAnnotator, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid annotator endpoint %q", cfg.Endpoint)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	proxy, err := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)
	if err != nil {
		return nil, fmt.Errorf("annotator proxy: %w", err)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	if cfg.RetryWait > 0 {
		client.RetryWaitMin = cfg.RetryWait
		client.RetryWaitMax = 10 * cfg.RetryWait
	}
	client.Logger = nil
	client.HTTPClient.Timeout = cfg.Timeout
	if t, ok := client.HTTPClient.Transport.(*http.Transport); ok {
		t.Proxy = proxy
	}
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Warn("retrying annotator request", zap.String("url", req.URL.String()), zap.Int("attempt", attempt))
		}
	}

	return &HTTPAnnotator{
		url:     endpoint + "/annotate",
		host:    parsed.Host,
		client:  client,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Annotate sends text to the sidecar and assembles its response
func (a *HTTPAnnotator) Annotate(ctx context.Context, text string) ([]model.Token, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, a.host); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	body, err := json.Marshal(annotateRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr annotateError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}

	var result annotateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	tokens, err := Assemble(result.Words, result.POSTags, result.NETags, result.Arcs)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("annotated",
		zap.Int("tokens", len(tokens)),
		zap.Duration("took", time.Since(start)))
	return tokens, nil
}
