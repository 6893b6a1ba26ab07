package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/news"
)

// Refresher is run on every scheduler tick.
type Refresher interface {
	Refresh(ctx context.Context) (*news.Response, error)
}

// Scheduler refreshes the cached response on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// NewScheduler accepts standard five-field specs and descriptors such as
// "@every 5m" or "@hourly".
func NewScheduler(spec string, r Refresher, timeout time.Duration, log *slog.Logger) (*Scheduler, error) {
	log = logger.OrDefault(log)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cl := cronLogger{log}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Scheduler{cron: c, logger: log, timeout: timeout}
	if _, err := c.AddFunc(spec, func() { s.run(r) }); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run(r Refresher) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := r.Refresh(ctx)
	if err != nil {
		s.logger.Error("Scheduled refresh failed", "error", err)
		return
	}
	s.logger.Info("Scheduled refresh complete", "items", len(resp.Items), "duration", time.Since(start))
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting refresh scheduler")
	s.cron.Start()
}

// Stop waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Refresh scheduler stopped")
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
