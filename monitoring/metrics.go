package monitoring

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	llmRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total LLM generation requests",
		},
		[]string{"provider", "model", "status"},
	)

	llmTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens by direction",
		},
		[]string{"provider", "direction"},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total emails attempted by outcome",
		},
		[]string{"status"},
	)

	droppedColumns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schema_insert_dropped_columns_total",
			Help: "Columns dropped by the schema-tolerant inserter",
		},
		[]string{"table", "column"},
	)

	dedupeDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedupe_events_total",
			Help: "Duplicate events processed by outcome",
		},
		[]string{"status"},
	)

	socialCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_cache_requests_total",
			Help: "Social post cache lookups",
		},
		[]string{"result"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	tableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "table_rows_total",
			Help: "Current row count per table",
		},
		[]string{"table"},
	)

	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_goroutines_total",
			Help: "Current number of active goroutines",
		},
	)
)

func TrackHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func TrackLLMRequest(provider, model, status string) {
	llmRequests.WithLabelValues(provider, model, status).Inc()
}

func TrackLLMTokens(provider string, input, output int) {
	llmTokens.WithLabelValues(provider, "input").Add(float64(input))
	llmTokens.WithLabelValues(provider, "output").Add(float64(output))
}

func TrackEmail(status string) {
	emailsSent.WithLabelValues(status).Inc()
}

func TrackDroppedColumn(table, column string) {
	droppedColumns.WithLabelValues(table, column).Inc()
}

func TrackDedupe(status string, n int) {
	dedupeDeleted.WithLabelValues(status).Add(float64(n))
}

func TrackSocialCache(result string) {
	socialCache.WithLabelValues(result).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

// TableCounter reports row counts per table.
type TableCounter interface {
	TableCounts(ctx context.Context) map[string]int64
}

type Monitor struct {
	tables   TableCounter
	interval time.Duration
}

func NewMonitor(tables TableCounter) *Monitor {
	return &Monitor{tables: tables, interval: 30 * time.Second}
}

// Run collects gauges until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collect(ctx)
		}
	}
}

func (m *Monitor) collect(ctx context.Context) {
	for table, n := range m.tables.TableCounts(ctx) {
		if n >= 0 {
			tableRows.WithLabelValues(table).Set(float64(n))
		}
	}
	goroutineCount.Set(float64(runtime.NumGoroutine()))
}
