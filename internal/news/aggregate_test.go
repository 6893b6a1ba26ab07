package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/ainews/internal/keywords"
	"github.com/deusflow/ainews/internal/logger"
)

type stubSource struct {
	name  string
	items []Item
	err   error
	block bool
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, limit int) ([]Item, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && len(s.items) > limit {
		return s.items[:limit], nil
	}
	return s.items, nil
}

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestAggregator(sources []Source, limit int) *Aggregator {
	a := NewAggregator(sources, keywords.Default(), limit, logger.Discard())
	a.now = func() time.Time { return fixedNow }
	return a
}

func TestAggregate_MergesRanksAndExtractsTrending(t *testing.T) {
	hn := &stubSource{name: "Hacker News", items: []Item{
		{ID: "hn-1", Title: "Show HN: a local LLM runner", URL: "https://example.com/llm", Source: "Hacker News", Score: 50},
		{ID: "hn-2", Title: "Claude Code adds MCP agents", URL: "https://example.com/claude", Source: "Hacker News", Score: 300, IsHot: true},
		{ID: "hn-3", Title: "Claude agents for productivity", URL: "https://example.com/agents", Source: "Hacker News", Score: 10},
	}}
	blog := &stubSource{name: "AI Blog", items: []Item{
		{ID: "rss-1", Title: "claude code adds  MCP agents", URL: "https://other.example.com/post", Source: "AI Blog"},
		{ID: "rss-2", Title: "Gemini gets a bigger context window", URL: "https://www.example.com/llm/", Source: "AI Blog"},
	}}

	resp, err := newTestAggregator([]Source{hn, blog}, 20).Aggregate(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(resp.Items))
	for i, it := range resp.Items {
		ids[i] = it.ID
	}
	// hot first, then by relevance; rss-1 duplicates hn-2 by title and rss-2 duplicates hn-1 by URL
	assert.Equal(t, []string{"hn-2", "hn-3", "hn-1"}, ids)
	assert.Equal(t, keywords.ScoreRelevance("Claude Code adds MCP agents"), resp.Items[0].Relevance)

	assert.Equal(t, []SourceStatus{
		{Name: "Hacker News", Count: 3, Status: StatusOK},
		{Name: "AI Blog", Count: 2, Status: StatusOK},
	}, resp.Sources)

	assert.Equal(t, keywords.ExtractTrendingTopics([]string{
		"Claude Code adds MCP agents",
		"Claude agents for productivity",
		"Show HN: a local LLM runner",
	}), resp.Trending)
	assert.Equal(t, "2026-10-19T12:00:00Z", resp.FetchedAt)
}

func TestAggregate_FailingSourceIsReported(t *testing.T) {
	ok := &stubSource{name: "Hacker News", items: []Item{
		{ID: "hn-1", Title: "OpenAI ships new GPT", URL: "https://example.com/gpt"},
	}}
	broken := &stubSource{name: "Broken Feed", err: errors.New("boom")}

	resp, err := newTestAggregator([]Source{ok, broken}, 20).Aggregate(context.Background())
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, SourceStatus{Name: "Broken Feed", Count: 0, Status: StatusError}, resp.Sources[1])
}

func TestAggregate_AppliesLimit(t *testing.T) {
	var items []Item
	for i := 0; i < 10; i++ {
		items = append(items, Item{
			ID:    HashID("t", string(rune('a'+i))),
			Title: "AI story " + string(rune('a'+i)),
			URL:   "https://example.com/" + string(rune('a'+i)),
		})
	}

	resp, err := newTestAggregator([]Source{&stubSource{name: "s", items: items}}, 4).Aggregate(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Items, 4)
}

func TestAggregate_NoSources(t *testing.T) {
	resp, err := newTestAggregator(nil, 20).Aggregate(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, resp.Items)
	assert.NotNil(t, resp.Sources)
	assert.NotNil(t, resp.Trending)
	assert.Empty(t, resp.Items)
}

func TestAggregate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestAggregator([]Source{&stubSource{name: "slow", block: true}}, 20).Aggregate(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMakeURLKey(t *testing.T) {
	assert.Equal(t, makeURLKey("https://www.Example.com/a/"), makeURLKey("http://example.com/a#top"))
	assert.NotEqual(t, makeURLKey("https://example.com/a?id=1"), makeURLKey("https://example.com/a?id=2"))
	assert.Equal(t, "not a url", makeURLKey(" not a url "))
}
