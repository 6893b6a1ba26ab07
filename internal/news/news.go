package news

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/deusflow/ainews/internal/keywords"
)

// Item is a single headline returned by a source.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Date      string `json:"date"` // YYYY-MM-DD, UTC
	IsHot     bool   `json:"isHot"`
	Score     int    `json:"score,omitempty"` // source points (HN score), 0 when the source has none
	Relevance int    `json:"relevance"`

	PublishedAt time.Time `json:"-"`
}

// Source status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

type SourceStatus struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Status string `json:"status"`
}

// Response is the envelope served by the news endpoint.
type Response struct {
	Items     []Item                   `json:"items"`
	Sources   []SourceStatus           `json:"sources"`
	Trending  []keywords.TrendingTopic `json:"trending"`
	FetchedAt string                   `json:"fetchedAt"`
	Counts    *PeriodCounts            `json:"counts,omitempty"`
}

// EmptyResponse is the fail-open envelope: empty lists and a timestamp.
func EmptyResponse(now time.Time) *Response {
	return &Response{
		Items:     []Item{},
		Sources:   []SourceStatus{},
		Trending:  []keywords.TrendingTopic{},
		FetchedAt: now.UTC().Format(time.RFC3339),
	}
}

// Source fetches relevant items from one upstream.
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]Item, error)
}

// FormatDate renders t as the item date (UTC calendar day).
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// HashID returns a short stable id for link, prefixed with prefix.
func HashID(prefix, link string) string {
	h := sha1.Sum([]byte(link))
	return prefix + "-" + hex.EncodeToString(h[:])[:12]
}

// makeContentKey hashes the normalized title for duplicate detection across
// sources that link to different URLs for the same story.
func makeContentKey(title string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	h := sha1.Sum([]byte(norm))
	return hex.EncodeToString(h[:])
}

// makeURLKey normalizes a link: lowercase host without "www.", no fragment,
// no trailing slash. Unparseable links are used as-is.
func makeURLKey(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(link)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimSuffix(u.EscapedPath(), "/")
	key := host + path
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}
