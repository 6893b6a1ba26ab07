package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/ainews/internal/news"
)

// Tried in order when a page config names no item selector.
var defaultLinkSelectors = []string{
	"article h2 a",
	"article h3 a",
	".post-title a",
	"h2 a",
	"h3 a",
}

// PageSource scrapes headline links from an HTML listing page.
type PageSource struct {
	cfg        PageConfig
	base       *url.URL
	classifier Classifier
	fetch      *fetcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewPageSource(cfg PageConfig, deps Deps) (*PageSource, error) {
	deps = deps.withDefaults()
	cfg = cfg.withDefaults()

	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("page %q: invalid url: %w", cfg.Name, err)
	}

	return &PageSource{
		cfg:        cfg,
		base:       base,
		classifier: deps.Classifier,
		fetch:      newFetcher(deps),
		logger:     deps.Logger.With("source", cfg.Name),
		now:        time.Now,
	}, nil
}

func (p *PageSource) Name() string { return p.cfg.Name }

// Fetch dates every item at fetch time; listing pages rarely carry dates.
func (p *PageSource) Fetch(ctx context.Context, limit int) ([]news.Item, error) {
	if limit <= 0 || limit > p.cfg.Limit {
		limit = p.cfg.Limit
	}

	body, err := p.fetch.get(ctx, p.cfg.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", p.cfg.URL, err)
	}

	links := p.findLinks(doc)
	now := p.now().UTC()
	seen := make(map[string]struct{})
	items := make([]news.Item, 0, limit)

	links.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(items) >= limit {
			return false
		}

		title := strings.Join(strings.Fields(s.Text()), " ")
		href, ok := s.Attr("href")
		if !ok || title == "" {
			return true
		}
		link := p.resolve(href)
		if link == "" {
			return true
		}
		if _, dup := seen[link]; dup {
			return true
		}
		if !p.classifier.IsDomainRelated(title) {
			return true
		}
		seen[link] = struct{}{}

		relevance := p.classifier.ScoreRelevance(title)
		items = append(items, news.Item{
			ID:          news.HashID("page", link),
			Title:       title,
			URL:         link,
			Source:      p.cfg.Name,
			Date:        news.FormatDate(now),
			IsHot:       relevance > p.cfg.HotRelevance,
			Relevance:   relevance,
			PublishedAt: now,
		})
		return true
	})

	p.logger.Debug("Scraped page", "links", links.Length(), "kept", len(items))
	return items, nil
}

func (p *PageSource) findLinks(doc *goquery.Document) *goquery.Selection {
	if p.cfg.LinkSelector != "" {
		return doc.Find(p.cfg.LinkSelector)
	}
	for _, selector := range defaultLinkSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find("a[href]")
}

// resolve returns an absolute http(s) URL or "".
func (p *PageSource) resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := p.base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}
