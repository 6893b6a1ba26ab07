// Package server exposes the news service over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deusflow/ainews/internal/keywords"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/news"
)

const shutdownTimeout = 10 * time.Second

// NewsService returns the current aggregated response and whether it was
// served from cache.
type NewsService interface {
	News(ctx context.Context) (*news.Response, bool, error)
}

// Classifier is the keyword engine used by the classify endpoint.
type Classifier interface {
	IsDomainRelated(title string) bool
	ScoreRelevance(title string) int
	ExtractTrendingTopics(titles []string) []keywords.TrendingTopic
}

// StatsProvider contributes a section to /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

type Options struct {
	BasePath   string        // e.g. "/ai-news"; "" mounts the API at the root
	CacheTTL   time.Duration // s-maxage
	StaleTTL   time.Duration // stale-while-revalidate
	Service    NewsService
	Classifier Classifier
	Limiter    StatsProvider // optional, reported under "rate_limiter"
	Logger     *slog.Logger
}

type Server struct {
	router *gin.Engine
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func New(opts Options) *Server {
	s := &Server{
		opts:   opts,
		logger: logger.OrDefault(opts.Logger),
		now:    time.Now,
	}

	r := gin.New()
	r.Use(recoveryMiddleware(s.logger), requestLogger(s.logger))

	r.GET("/health", s.handleHealth)
	r.GET("/stats", s.handleStats)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group(opts.BasePath + "/api")
	api.GET("/news", s.handleNews)
	api.GET("/trending", s.handleTrending)
	api.POST("/classify", s.handleClassify)
	api.GET("/digest", s.handleDigest)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr, "base_path", s.opts.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) handleStats(c *gin.Context) {
	stats := metrics.Global.GetStats()
	if s.opts.Limiter != nil {
		stats["rate_limiter"] = s.opts.Limiter.GetStats()
	}
	c.JSON(http.StatusOK, stats)
}
