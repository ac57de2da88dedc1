package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/quotescan/internal/cache"
	"github.com/ppiankov/quotescan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func reporterResponse() annotateResponse {
	return annotateResponse{
		Words:   []string{"记者", "问", "：", "他", "是否", "会", "参加", "。"},
		POSTags: []string{"n", "v", "wp", "r", "d", "v", "v", "wp"},
		NETags:  []string{"S-Nh", "O", "O", "O", "O", "O", "O", "O"},
		Arcs: []Arc{
			{Head: 2, Relation: "SBV"}, {Head: 0, Relation: "HED"}, {Head: 2, Relation: "WP"},
			{Head: 7, Relation: "SBV"}, {Head: 7, Relation: "ADV"}, {Head: 7, Relation: "ADV"},
			{Head: 2, Relation: "VOB"}, {Head: 2, Relation: "WP"},
		},
	}
}

func TestAssemble(t *testing.T) {
	r := reporterResponse()

	tokens, err := Assemble(r.Words, r.POSTags, r.NETags, r.Arcs)
	require.NoError(t, err)

	require.Len(t, tokens, 8)
	assert.Equal(t, model.Token{
		Index:    0,
		Text:     "记者",
		POS:      "n",
		Entity:   model.EntityTag{Position: model.PositionSingle, Kind: model.EntityPerson},
		Relation: "SBV",
		Head:     2,
	}, tokens[0])
	assert.Equal(t, 7, tokens[7].Index)
}

func TestAssemble_LengthMismatch(t *testing.T) {
	r := reporterResponse()

	_, err := Assemble(r.Words, r.POSTags[:3], r.NETags, r.Arcs)
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestHTTPAnnotator_Annotate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/annotate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req annotateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "记者问：他是否会参加。", req.Text)

		_ = json.NewEncoder(w).Encode(reporterResponse())
	}))
	defer server.Close()

	limiter := &countingWaiter{}
	a, err := NewHTTPAnnotator(HTTPConfig{Endpoint: server.URL + "/", Timeout: 5 * time.Second}, limiter, nil)
	require.NoError(t, err)

	tokens, err := a.Annotate(context.Background(), "记者问：他是否会参加。")
	require.NoError(t, err)

	assert.Len(t, tokens, 8)
	assert.Equal(t, int32(1), limiter.calls.Load())
	assert.Equal(t, strings.TrimPrefix(server.URL, "http://"), limiter.lastKey)
}

func TestHTTPAnnotator_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(reporterResponse())
	}))
	defer server.Close()

	a, err := NewHTTPAnnotator(HTTPConfig{
		Endpoint:   server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		RetryWait:  time.Millisecond,
	}, nil, nil)
	require.NoError(t, err)

	tokens, err := a.Annotate(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, tokens, 8)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestHTTPAnnotator_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(annotateError{Error: "empty text"})
	}))
	defer server.Close()

	a, err := NewHTTPAnnotator(HTTPConfig{Endpoint: server.URL, Timeout: 5 * time.Second}, nil, nil)
	require.NoError(t, err)

	_, err = a.Annotate(context.Background(), "")
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "empty text")
}

func TestHTTPAnnotator_InconsistentResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := reporterResponse()
		resp.Arcs = resp.Arcs[:2]
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	a, err := NewHTTPAnnotator(HTTPConfig{Endpoint: server.URL, Timeout: 5 * time.Second}, nil, nil)
	require.NoError(t, err)

	_, err = a.Annotate(context.Background(), "text")
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestNewHTTPAnnotator_InvalidEndpoint(t *testing.T) {
	_, err := NewHTTPAnnotator(HTTPConfig{Endpoint: "not a url"}, nil, nil)
	assert.Error(t, err)
}

const sampleConll = `# text = 记者问：他是否会参加。
1	记者	n	S-Nh	2	SBV
2	问	v	O	0	HED
3	：	wp	O	2	WP
4	他	r	O	7	SBV
5	是否	d	O	7	ADV
6	会	v	O	7	ADV
7	参加	v	O	2	VOB
8	。	wp	O	2	WP

1	天气	n	O	2	SBV
2	很好	a	O	0	HED
3	。	wp	O	2	WP
`

func TestParseConll(t *testing.T) {
	a, err := ParseConll(strings.NewReader(sampleConll))
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())

	tokens, err := a.Annotate(context.Background(), " 记者问：他是否会参加。\n")
	require.NoError(t, err)
	require.Len(t, tokens, 8)
	assert.True(t, tokens[0].Entity.IsSingleName())
	assert.Equal(t, 2, tokens[0].Head)

	// Without a text comment the key is the concatenated words
	tokens, err = a.Annotate(context.Background(), "天气很好。")
	require.NoError(t, err)
	assert.Len(t, tokens, 3)

	_, err = a.Annotate(context.Background(), "未标注的文本")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseConll_BadLines(t *testing.T) {
	_, err := ParseConll(strings.NewReader("1\t记者\tn\tS-Nh\t2\n"))
	assert.ErrorIs(t, err, ErrInconsistent)

	_, err = ParseConll(strings.NewReader("2\t记者\tn\tS-Nh\t2\tSBV\n"))
	assert.ErrorIs(t, err, ErrInconsistent)

	_, err = ParseConll(strings.NewReader("1\t记者\tn\tS-Nh\tx\tSBV\n"))
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestLoadConll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.conll")
	require.NoError(t, os.WriteFile(path, []byte(sampleConll), 0644))

	a, err := LoadConll(path)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())
}

func TestCached_Annotate(t *testing.T) {
	inner := &countingAnnotator{tokens: []model.Token{{Index: 0, Text: "好", Head: 0}}}
	a := NewCached(inner, cache.NewMemoryCache(time.Minute, time.Minute), nil)

	for i := 0; i < 3; i++ {
		tokens, err := a.Annotate(context.Background(), "好")
		require.NoError(t, err)
		assert.Equal(t, "好", tokens[0].Text)
	}
	assert.Equal(t, 1, inner.calls)
}

type readOnlyCache struct {
	cache.Cache
}

func (readOnlyCache) Get(key string) ([]byte, bool) { return nil, false }

func (readOnlyCache) Set(key string, value []byte, ttl time.Duration) error {
	return errors.New("read-only file system")
}

func TestCached_AnnotateLogsWriteFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	inner := &countingAnnotator{tokens: []model.Token{{Index: 0, Text: "好", Head: 0}}}
	a := NewCached(inner, readOnlyCache{}, zap.New(core))

	tokens, err := a.Annotate(context.Background(), "好")
	require.NoError(t, err)
	assert.Len(t, tokens, 1)

	entries := logs.FilterMessage("cache write failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "read-only file system", entries[0].ContextMap()["error"])
}

type countingWaiter struct {
	calls   atomic.Int32
	lastKey string
}

func (w *countingWaiter) Wait(ctx context.Context, key string) error {
	w.calls.Add(1)
	w.lastKey = key
	return nil
}

type countingAnnotator struct {
	tokens []model.Token
	calls  int
}

func (a *countingAnnotator) Annotate(ctx context.Context, text string) ([]model.Token, error) {
	a.calls++
	return a.tokens, nil
}
