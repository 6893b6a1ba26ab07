package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deusflow/ainews/internal/news"
)

type hnStory struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Time  int64  `json:"time"`
	Score int    `json:"score"`
	By    string `json:"by"`
}

// HackerNews scans the current top stories for AI-related links.
type HackerNews struct {
	cfg         HackerNewsConfig
	classifier  Classifier
	fetch       *fetcher
	concurrency int
	logger      *slog.Logger
}

func NewHackerNews(cfg HackerNewsConfig, deps Deps) *HackerNews {
	deps = deps.withDefaults()
	cfg = cfg.withDefaults()
	return &HackerNews{
		cfg:         cfg,
		classifier:  deps.Classifier,
		fetch:       newFetcher(deps),
		concurrency: deps.Concurrency,
		logger:      deps.Logger.With("source", cfg.Name),
	}
}

func (h *HackerNews) Name() string { return h.cfg.Name }

// Fetch keeps top-stories order. Items that fail to load are skipped; only a
// failed top-stories request fails the source.
func (h *HackerNews) Fetch(ctx context.Context, limit int) ([]news.Item, error) {
	if limit <= 0 || limit > h.cfg.Limit {
		limit = h.cfg.Limit
	}
	api := strings.TrimSuffix(h.cfg.APIURL, "/")

	var ids []int
	if err := h.fetch.getJSON(ctx, api+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}
	if len(ids) > h.cfg.ScanDepth {
		ids = ids[:h.cfg.ScanDepth]
	}

	stories := make([]*hnStory, len(ids))
	var g errgroup.Group
	g.SetLimit(h.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			var story *hnStory
			if err := h.fetch.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", api, id), &story); err != nil {
				h.logger.Debug("Skipping story", "id", id, "error", err)
				return nil
			}
			stories[i] = story
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]news.Item, 0, limit)
	for _, s := range stories {
		if len(items) >= limit {
			break
		}
		if s == nil || s.Title == "" || s.URL == "" {
			continue
		}
		if !h.classifier.IsDomainRelated(s.Title) {
			continue
		}

		published := time.Unix(s.Time, 0).UTC()
		relevance := h.classifier.ScoreRelevance(s.Title)
		items = append(items, news.Item{
			ID:          fmt.Sprintf("hn-%d", s.ID),
			Title:       s.Title,
			URL:         s.URL,
			Source:      h.cfg.Name,
			Date:        news.FormatDate(published),
			IsHot:       s.Score > h.cfg.HotScore || relevance > h.cfg.HotRelevance,
			Score:       s.Score,
			Relevance:   relevance,
			PublishedAt: published,
		})
	}

	h.logger.Debug("Scanned top stories", "scanned", len(ids), "kept", len(items))
	return items, nil
}
