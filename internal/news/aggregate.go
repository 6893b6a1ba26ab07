package news

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deusflow/ainews/internal/keywords"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/metrics"
)

// Scorer is the part of the keyword engine the aggregator needs.
type Scorer interface {
	ScoreRelevance(title string) int
	ExtractTrendingTopics(titles []string) []keywords.TrendingTopic
}

// Aggregator merges all sources into one ranked, deduplicated response.
type Aggregator struct {
	sources []Source
	scorer  Scorer
	limit   int
	logger  *slog.Logger
	now     func() time.Time
}

func NewAggregator(sources []Source, scorer Scorer, limit int, log *slog.Logger) *Aggregator {
	return &Aggregator{
		sources: sources,
		scorer:  scorer,
		limit:   limit,
		logger:  logger.OrDefault(log),
		now:     time.Now,
	}
}

type fetchResult struct {
	items []Item
	err   error
}

// Aggregate fetches every source concurrently. A failing source is reported
// with an error status and contributes nothing; only a done ctx fails the run.
func (a *Aggregator) Aggregate(ctx context.Context) (*Response, error) {
	start := time.Now()
	defer func() {
		metrics.Global.RecordProcessingTime(time.Since(start))
	}()

	results := make([]fetchResult, len(a.sources))
	var g errgroup.Group
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			items, err := src.Fetch(ctx, a.limit)
			results[i] = fetchResult{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregate news: %w", err)
	}

	statuses := make([]SourceStatus, 0, len(a.sources))
	var all []Item
	failed := 0
	for i, src := range a.sources {
		res := results[i]
		if res.err != nil {
			failed++
			a.logger.Error("Source fetch failed", "source", src.Name(), "error", res.err)
			metrics.Global.IncrementSourceErrors(src.Name())
			statuses = append(statuses, SourceStatus{Name: src.Name(), Count: 0, Status: StatusError})
			continue
		}
		a.logger.Info("Source fetched", "source", src.Name(), "count", len(res.items))
		metrics.Global.AddItemsFetched(src.Name(), len(res.items))
		statuses = append(statuses, SourceStatus{Name: src.Name(), Count: len(res.items), Status: StatusOK})
		all = append(all, res.items...)
	}

	for i := range all {
		all[i].Relevance = a.scorer.ScoreRelevance(all[i].Title)
	}

	items := a.dedupe(all)
	rank(items)
	if a.limit > 0 && len(items) > a.limit {
		items = items[:a.limit]
	}

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}

	resp := EmptyResponse(a.now())
	resp.Items = append(resp.Items, items...)
	resp.Sources = statuses
	resp.Trending = a.scorer.ExtractTrendingTopics(titles)

	if len(a.sources) > 0 && failed == len(a.sources) {
		metrics.Global.SetError("all sources failed")
	} else {
		metrics.Global.SetLastRun()
	}

	a.logger.Info("Aggregation complete",
		"items", len(resp.Items),
		"sources", len(statuses),
		"failed_sources", failed,
		"trending", len(resp.Trending),
		"duration", time.Since(start))

	return resp, nil
}

// dedupe keeps the first item per normalized URL and per normalized title.
func (a *Aggregator) dedupe(items []Item) []Item {
	seenLinks := map[string]struct{}{}
	seenContent := map[string]struct{}{}
	out := make([]Item, 0, len(items))
	dups := 0

	for _, it := range items {
		linkKey := makeURLKey(it.URL)
		if _, dup := seenLinks[linkKey]; dup {
			a.logger.Debug("Duplicate by link", "title", it.Title, "source", it.Source)
			dups++
			continue
		}
		contentKey := makeContentKey(it.Title)
		if _, dup := seenContent[contentKey]; dup {
			a.logger.Debug("Duplicate by title", "title", it.Title, "source", it.Source)
			dups++
			continue
		}
		seenLinks[linkKey] = struct{}{}
		seenContent[contentKey] = struct{}{}
		out = append(out, it)
	}

	if dups > 0 {
		metrics.Global.AddDuplicatesFiltered(dups)
	}
	return out
}

// rank orders hot items first, then relevance, source points and recency.
func rank(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.IsHot != b.IsHot {
			return a.IsHot
		}
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.PublishedAt.After(b.PublishedAt)
	})
}
