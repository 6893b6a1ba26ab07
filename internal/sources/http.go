// Package sources implements the upstreams that feed the aggregator:
// the Hacker News API, RSS/Atom feeds and HTML listing pages.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/ratelimit"
	"github.com/deusflow/ainews/internal/retry"
)

const (
	userAgent       = "ainews/1.0 (+https://github.com/deusflow/ainews)"
	maxResponseSize = 10 << 20
)

// Classifier decides which titles are kept and how hot they are.
type Classifier interface {
	IsDomainRelated(title string) bool
	ScoreRelevance(title string) int
}

// Deps are shared by every source built from one config.
type Deps struct {
	Classifier  Classifier
	HTTPClient  *http.Client
	Limiter     *ratelimit.Limiter // optional
	Retry       retry.Config
	Concurrency int // parallel item requests per source
	Logger      *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.HTTPClient == nil {
		d.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if d.Retry.MaxAttempts < 1 {
		d.Retry = retry.Config{MaxAttempts: 3, Delay: time.Second, Backoff: true}
	}
	if d.Concurrency < 1 {
		d.Concurrency = 10
	}
	d.Logger = logger.OrDefault(d.Logger)
	return d
}

// fetcher issues throttled, retried GET requests.
type fetcher struct {
	client  *http.Client
	limiter *ratelimit.Limiter
	retry   retry.Config
}

func newFetcher(d Deps) *fetcher {
	return &fetcher{client: d.HTTPClient, limiter: d.Limiter, retry: d.Retry}
}

// get returns the body of a 200 response. Client errors other than 429 and
// an exhausted request budget are not retried.
func (f *fetcher) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	err := retry.WithRetry(ctx, f.retry, func(ctx context.Context) error {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				if errors.Is(err, ratelimit.ErrBudgetExhausted) {
					return retry.Permanent(err)
				}
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("GET %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return retry.Permanent(statusErr)
			}
			return statusErr
		}

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("read %s: %w", url, err)
		}
		body = b
		return nil
	})

	return body, err
}

func (f *fetcher) getJSON(ctx context.Context, url string, v any) error {
	body, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
