package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/deusflow/ainews/internal/cache"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/news"
)

const (
	responseKey           = "news:response"
	defaultRefreshTimeout = 45 * time.Second
)

// Aggregator produces a fresh response.
type Aggregator interface {
	Aggregate(ctx context.Context) (*news.Response, error)
}

// Service serves the aggregated response from cache. Entries younger than
// ttl are fresh; older ones are served while a background refresh runs, until
// they expire from the store at ttl+staleTTL.
type Service struct {
	agg            Aggregator
	cache          *responseCache
	ttl            time.Duration
	refreshTimeout time.Duration
	group          singleflight.Group
	bg             sync.WaitGroup
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(agg Aggregator, store cache.Store, ttl, staleTTL time.Duration, log *slog.Logger) *Service {
	log = logger.OrDefault(log)
	return &Service{
		agg:            agg,
		cache:          newResponseCache(store, responseKey, ttl+staleTTL, log),
		ttl:            ttl,
		refreshTimeout: defaultRefreshTimeout,
		logger:         log,
		now:            time.Now,
	}
}

// News returns the current response and whether it came from cache.
func (s *Service) News(ctx context.Context) (*news.Response, bool, error) {
	if entry, ok := s.cache.Load(ctx); ok {
		metrics.Global.RecordCacheLookup(true)
		if s.now().Sub(entry.StoredAt) >= s.ttl {
			s.refreshInBackground()
		}
		return entry.Response, true, nil
	}

	metrics.Global.RecordCacheLookup(false)
	resp, err := s.Refresh(ctx)
	if err != nil {
		return nil, false, err
	}
	return resp, false, nil
}

// Refresh aggregates and stores a new response. Concurrent callers share one
// aggregation, which is not cancelled when a single caller gives up.
func (s *Service) Refresh(ctx context.Context) (*news.Response, error) {
	ch := s.group.DoChan(responseKey, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()

		resp, err := s.agg.Aggregate(runCtx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Save(runCtx, resp, s.now()); err != nil {
			s.logger.Warn("Failed to store response", "error", err)
		}
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("refresh news: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("refresh news: %w", res.Err)
		}
		return res.Val.(*news.Response), nil
	}
}

func (s *Service) refreshInBackground() {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		s.logger.Debug("Serving stale response, refreshing")
		if _, err := s.Refresh(context.Background()); err != nil {
			s.logger.Error("Background refresh failed", "error", err)
		}
	}()
}

// Wait blocks until background refreshes finish.
func (s *Service) Wait() {
	s.bg.Wait()
}
