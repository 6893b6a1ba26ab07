package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/ainews/internal/news"
)

// FeedSource reads one RSS or Atom feed.
type FeedSource struct {
	cfg        FeedConfig
	classifier Classifier
	fetch      *fetcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewFeedSource(cfg FeedConfig, deps Deps) *FeedSource {
	deps = deps.withDefaults()
	cfg = cfg.withDefaults()
	return &FeedSource{
		cfg:        cfg,
		classifier: deps.Classifier,
		fetch:      newFetcher(deps),
		logger:     deps.Logger.With("source", cfg.Name),
		now:        time.Now,
	}
}

func (f *FeedSource) Name() string { return f.cfg.Name }

func (f *FeedSource) Fetch(ctx context.Context, limit int) ([]news.Item, error) {
	if limit <= 0 || limit > f.cfg.Limit {
		limit = f.cfg.Limit
	}

	body, err := f.fetch.get(ctx, f.cfg.URL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.cfg.URL, err)
	}

	items := make([]news.Item, 0, limit)
	for _, it := range feed.Items {
		if len(items) >= limit {
			break
		}
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			continue
		}
		if !f.classifier.IsDomainRelated(title) {
			continue
		}

		published := f.now()
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			published = *it.UpdatedParsed
		}

		relevance := f.classifier.ScoreRelevance(title)
		items = append(items, news.Item{
			ID:          news.HashID("rss", link),
			Title:       title,
			URL:         link,
			Source:      f.cfg.Name,
			Date:        news.FormatDate(published),
			IsHot:       relevance > f.cfg.HotRelevance,
			Relevance:   relevance,
			PublishedAt: published.UTC(),
		})
	}

	f.logger.Debug("Parsed feed", "entries", len(feed.Items), "kept", len(items))
	return items, nil
}
