package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the Prometheus collectors served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	itemsFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ainews_items_fetched_total",
		Help: "Relevant items returned by each source.",
	}, []string{"source"})

	sourceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ainews_source_errors_total",
		Help: "Failed source fetches.",
	}, []string{"source"})

	duplicatesFiltered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ainews_duplicates_filtered_total",
		Help: "Items dropped as duplicates during aggregation.",
	})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ainews_cache_lookups_total",
		Help: "Response cache lookups by result.",
	}, []string{"result"})

	aggregationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ainews_aggregation_duration_seconds",
		Help:    "Wall time of a full aggregation run.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	Registry.MustRegister(itemsFetched, sourceErrors, duplicatesFiltered, cacheLookups, aggregationSeconds)
}

type Metrics struct {
	mu sync.RWMutex

	// Counters
	TotalItemsFetched  int64
	SourceErrors       int64
	DuplicatesFiltered int64
	CacheHits          int64
	CacheMisses        int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddItemsFetched(source string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalItemsFetched += int64(n)
	itemsFetched.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) IncrementSourceErrors(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceErrors++
	sourceErrors.WithLabelValues(source).Inc()
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
	duplicatesFiltered.Add(float64(n))
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.CacheHits++
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheMisses++
	cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
	aggregationSeconds.Observe(duration.Seconds())
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

// Healthy reports the current health flag.
func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_items_fetched":        m.TotalItemsFetched,
		"source_errors":              m.SourceErrors,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"cache_hits":                 m.CacheHits,
		"cache_misses":               m.CacheMisses,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
