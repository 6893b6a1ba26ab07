// Package app wires configuration, sources, cache and scheduling into the
// news service used by the HTTP server and the CLI.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/ainews/internal/cache"
	"github.com/deusflow/ainews/internal/config"
	"github.com/deusflow/ainews/internal/keywords"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/news"
	"github.com/deusflow/ainews/internal/ratelimit"
	"github.com/deusflow/ainews/internal/retry"
	"github.com/deusflow/ainews/internal/sources"
)

const redisKeyPrefix = "ainews:"

type App struct {
	Config    *config.Config
	Lexicon   *keywords.Lexicon
	Sources   []news.Source
	Limiter   *ratelimit.Limiter
	Service   *Service
	Scheduler *Scheduler // nil when REFRESH_SCHEDULE is empty

	logger  *slog.Logger
	closers []func() error
}

// New builds the full object graph. Call Close when done.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	log = logger.OrDefault(log)

	lexicon := keywords.Default()
	if cfg.LexiconPath != "" {
		l, err := keywords.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return nil, err
		}
		lexicon = l
		log.Info("Loaded lexicon", "path", cfg.LexiconPath, "domain_terms", len(l.DomainTerms()))
	}

	srcCfg, err := sources.LoadConfig(cfg.SourcesConfigPath)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(cfg.FetchRatePerSecond, cfg.FetchConcurrency, cfg.FetchBudgetPerHour, time.Hour, log)
	srcs, err := sources.Build(srcCfg, sources.Deps{
		Classifier:  lexicon,
		HTTPClient:  &http.Client{Timeout: cfg.RequestTimeout},
		Limiter:     limiter,
		Retry:       retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true},
		Concurrency: cfg.FetchConcurrency,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	names := make([]string, len(srcs))
	for i, s := range srcs {
		names[i] = s.Name()
	}
	log.Info("Sources configured", "count", len(srcs), "sources", strings.Join(names, ", "))

	a := &App{
		Config:  cfg,
		Lexicon: lexicon,
		Sources: srcs,
		Limiter: limiter,
		logger:  log,
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	agg := news.NewAggregator(srcs, lexicon, cfg.NewsLimit, log)
	a.Service = NewService(agg, store, cfg.CacheTTL, cfg.CacheStaleTTL, log)

	if cfg.RefreshSchedule != "" {
		sched, err := NewScheduler(cfg.RefreshSchedule, a.Service, defaultRefreshTimeout, log)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Scheduler = sched
	}

	return a, nil
}

func (a *App) openStore() (cache.Store, error) {
	cfg := a.Config
	if cfg.RedisAddr == "" {
		s := cache.NewMemoryStore()
		a.closers = append(a.closers, s.Close)
		a.logger.Info("Using in-memory response cache")
		return s, nil
	}

	s, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("open redis cache: %w", err)
	}
	a.closers = append(a.closers, s.Close)
	a.logger.Info("Using redis response cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return s, nil
}

// Close stops the scheduler, waits for background refreshes and closes the
// cache store.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Service != nil {
		a.Service.Wait()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// FormatPreview renders the first n items for the console.
func FormatPreview(resp *news.Response, n int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Collected items: %d\n", len(resp.Items))
	for _, s := range resp.Sources {
		fmt.Fprintf(&b, "  %s: %d (%s)\n", s.Name, s.Count, s.Status)
	}

	for i, it := range resp.Items {
		if i >= n {
			break
		}
		b.WriteString("---\n")
		hot := ""
		if it.IsHot {
			hot = " HOT"
		}
		fmt.Fprintf(&b, "[%s, relevance: %d%s] %s\n", it.Source, it.Relevance, hot, it.Title)
		fmt.Fprintf(&b, "%s\n", it.URL)
	}

	if len(resp.Trending) > 0 {
		b.WriteString("---\nTrending:")
		for _, t := range resp.Trending {
			fmt.Fprintf(&b, " %s(%d)", t.Term, t.Count)
		}
		b.WriteString("\n")
	}

	return b.String()
}
