package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/ainews/internal/keywords"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/news"
	"github.com/deusflow/ainews/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	resp *news.Response
	hit  bool
	err  error
}

func (f *fakeService) News(context.Context) (*news.Response, bool, error) {
	return f.resp, f.hit, f.err
}

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixtureResponse() *news.Response {
	resp := news.EmptyResponse(testNow)
	resp.Items = []news.Item{
		{ID: "hn-1", Title: "Claude Code ships hooks", URL: "https://example.com/1", Source: "Hacker News", Date: "2026-10-19", IsHot: true, Score: 320, Relevance: 30},
		{ID: "hn-2", Title: "Claude agents in production", URL: "https://example.com/2", Source: "Hacker News", Date: "2026-10-16", Relevance: 24},
		{ID: "rss-3", Title: "A survey of LLM benchmarks", URL: "https://example.com/3", Source: "AI Blog", Date: "2026-09-01", Relevance: 4},
	}
	resp.Sources = []news.SourceStatus{
		{Name: "Hacker News", Count: 2, Status: news.StatusOK},
		{Name: "AI Blog", Count: 1, Status: news.StatusOK},
	}
	resp.Trending = keywords.ExtractTrendingTopics([]string{resp.Items[0].Title, resp.Items[1].Title, resp.Items[2].Title})
	return resp
}

func newTestServer(svc NewsService) *Server {
	s := New(Options{
		BasePath:   "/ai-news",
		CacheTTL:   5 * time.Minute,
		StaleTTL:   10 * time.Minute,
		Service:    svc,
		Classifier: keywords.Default(),
		Logger:     logger.Discard(),
	})
	s.now = func() time.Time { return testNow }
	return s
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNews_Unfiltered(t *testing.T) {
	s := newTestServer(&fakeService{resp: fixtureResponse(), hit: true})

	w := do(t, s, http.MethodGet, "/ai-news/api/news", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, s-maxage=300, stale-while-revalidate=600", w.Header().Get("Cache-Control"))
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got, "items")
	assert.Contains(t, got, "sources")
	assert.Contains(t, got, "trending")
	assert.Contains(t, got, "fetchedAt")
	assert.NotContains(t, got, "counts")

	var resp news.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 3)
	assert.Equal(t, "2026-10-19T12:00:00Z", resp.FetchedAt)
}

func TestNews_Filtered(t *testing.T) {
	s := newTestServer(&fakeService{resp: fixtureResponse()})

	w := do(t, s, http.MethodGet, "/ai-news/api/news?q=claude&period=week", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var resp news.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "hn-1", resp.Items[0].ID)
	require.NotNil(t, resp.Counts)
	assert.Equal(t, news.PeriodCounts{All: 3, Today: 1, Week: 2}, *resp.Counts)
	assert.Equal(t, keywords.ExtractTrendingTopics([]string{
		"Claude Code ships hooks", "Claude agents in production",
	}), resp.Trending)

	w = do(t, s, http.MethodGet, "/ai-news/api/news?hot=true", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].IsHot)
}

func TestNews_BadPeriod(t *testing.T) {
	s := newTestServer(&fakeService{resp: fixtureResponse()})
	w := do(t, s, http.MethodGet, "/ai-news/api/news?period=decade", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNews_ServiceFailureReturnsEmptyEnvelope(t *testing.T) {
	s := newTestServer(&fakeService{err: errors.New("upstream down")})

	w := do(t, s, http.MethodGet, "/ai-news/api/news", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"items":[],"sources":[],"trending":[],"fetchedAt":"2026-10-19T12:00:00Z"}`, w.Body.String())
}

func TestTrending(t *testing.T) {
	fixture := fixtureResponse()
	s := newTestServer(&fakeService{resp: fixture})

	w := do(t, s, http.MethodGet, "/ai-news/api/trending", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Trending  []keywords.TrendingTopic `json:"trending"`
		FetchedAt string                   `json:"fetchedAt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, fixture.Trending, got.Trending)
	assert.Equal(t, fixture.FetchedAt, got.FetchedAt)

	s = newTestServer(&fakeService{err: errors.New("down")})
	w = do(t, s, http.MethodGet, "/ai-news/api/trending", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"trending":[],"fetchedAt":"2026-10-19T12:00:00Z"}`, w.Body.String())
}

func TestClassify(t *testing.T) {
	s := newTestServer(&fakeService{})

	body := []byte(`{"titles":["Claude 4 announced","Sourdough bread recipes"]}`)
	w := do(t, s, http.MethodPost, "/ai-news/api/classify", body)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Results  []classifyResult         `json:"results"`
		Trending []keywords.TrendingTopic `json:"trending"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Results, 2)
	assert.Equal(t, classifyResult{
		Title:     "Claude 4 announced",
		Related:   true,
		Relevance: keywords.ScoreRelevance("Claude 4 announced"),
	}, got.Results[0])
	assert.Equal(t, classifyResult{Title: "Sourdough bread recipes"}, got.Results[1])
	assert.NotNil(t, got.Trending)
}

func TestClassify_BadRequests(t *testing.T) {
	s := newTestServer(&fakeService{})

	for _, body := range []string{``, `{"titles":"nope"}`, `{}`} {
		w := do(t, s, http.MethodPost, "/ai-news/api/classify", []byte(body))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	titles := make([]string, maxClassifyTitles+1)
	for i := range titles {
		titles[i] = fmt.Sprintf("title %d", i)
	}
	big, err := json.Marshal(classifyRequest{Titles: titles})
	require.NoError(t, err)
	w := do(t, s, http.MethodPost, "/ai-news/api/classify", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDigest(t *testing.T) {
	s := newTestServer(&fakeService{resp: fixtureResponse()})

	w := do(t, s, http.MethodGet, "/ai-news/api/digest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, w.Body.String(), "1. Claude Code ships hooks")
	assert.NotContains(t, w.Body.String(), "LLM benchmarks")

	w = do(t, s, http.MethodGet, "/ai-news/api/digest?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthStatsMetrics(t *testing.T) {
	s := newTestServer(&fakeService{})

	metrics.Global.SetLastRun()
	w := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	metrics.Global.SetError("all sources failed")
	w = do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "all sources failed")
	metrics.Global.SetLastRun()

	w = do(t, s, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cache_hits"`)
	assert.NotContains(t, w.Body.String(), "rate_limiter")

	s.opts.Limiter = ratelimit.New(10, 1, 100, time.Hour, logger.Discard())
	w = do(t, s, http.MethodGet, "/stats", nil)
	assert.Contains(t, w.Body.String(), `"rate_limiter"`)

	metrics.Global.RecordCacheLookup(true)
	w = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ainews_cache_lookups_total")
}

func TestEmptyBasePath(t *testing.T) {
	s := New(Options{Service: &fakeService{resp: fixtureResponse()}, Classifier: keywords.Default(), Logger: logger.Discard()})
	w := do(t, s, http.MethodGet, "/api/news", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	s := newTestServer(&fakeService{})
	s.router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(t, s, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(&fakeService{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
