package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const metricsNamespace = "domain_alerts"

// Metrics stores Prometheus collectors used by batch runs and the API.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	alertsSentTotal       *prometheus.CounterVec
	alertsFailedTotal     *prometheus.CounterVec
	alertsSuppressed      *prometheus.CounterVec
	channelSendDuration   *prometheus.HistogramVec
	lookupsTotal          *prometheus.CounterVec
	domainsInflight       prometheus.Gauge
	batchRunsTotal        *prometheus.CounterVec
	batchDuration         prometheus.Histogram
	batchLastFinished     prometheus.Gauge
	ledgerPrunedRowsTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		alertsSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "alerts_sent_total",
				Help:      "Total number of alerts accepted by a channel.",
			},
			[]string{"channel"},
		),
		alertsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "alerts_failed_total",
				Help:      "Total number of alert sends that failed.",
			},
			[]string{"channel", "reason"},
		),
		alertsSuppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "alerts_suppressed_total",
				Help:      "Total number of due alerts not sent, by reason.",
			},
			[]string{"reason"},
		),
		channelSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "channel_send_duration_seconds",
				Help:      "Channel send duration in seconds grouped by channel.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"channel"},
		),
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "lookups_total",
				Help:      "Total number of registration lookups by result.",
			},
			[]string{"result"},
		),
		domainsInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "domains_inflight",
				Help:      "Current number of domains being processed.",
			},
		),
		batchRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "batch_runs_total",
				Help:      "Total number of batch runs by outcome.",
			},
			[]string{"outcome"},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "batch_duration_seconds",
				Help:      "Batch run duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
			},
		),
		batchLastFinished: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "batch_last_finished_timestamp_seconds",
				Help:      "Unix time the last batch run finished.",
			},
		),
		ledgerPrunedRowsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "ledger_pruned_rows_total",
				Help:      "Total number of ledger rows removed by retention.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.alertsSentTotal,
		m.alertsFailedTotal,
		m.alertsSuppressed,
		m.channelSendDuration,
		m.lookupsTotal,
		m.domainsInflight,
		m.batchRunsTotal,
		m.batchDuration,
		m.batchLastFinished,
		m.ledgerPrunedRowsTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Push sends the current registry to a Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, url string, job string) error {
	if m == nil || strings.TrimSpace(url) == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncAlertSent(channel string) {
	if m == nil {
		return
	}
	m.alertsSentTotal.WithLabelValues(normalizeLabel(channel)).Inc()
}

func (m *Metrics) IncAlertFailed(channel string, reason string) {
	if m == nil {
		return
	}
	m.alertsFailedTotal.WithLabelValues(normalizeLabel(channel), normalizeLabel(reason)).Inc()
}

func (m *Metrics) IncAlertSuppressed(reason string) {
	if m == nil {
		return
	}
	m.alertsSuppressed.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) ObserveChannelSendDuration(channel string, duration time.Duration) {
	if m == nil {
		return
	}
	m.channelSendDuration.WithLabelValues(normalizeLabel(channel)).Observe(max(duration.Seconds(), 0))
}

func (m *Metrics) IncLookup(result string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *Metrics) IncDomainsInFlight() {
	if m == nil {
		return
	}
	m.domainsInflight.Inc()
}

func (m *Metrics) DecDomainsInFlight() {
	if m == nil {
		return
	}
	m.domainsInflight.Dec()
}

// ObserveBatchRun records a finished run; outcome is "completed",
// "deadline_exceeded", "cancelled" or "failed".
func (m *Metrics) ObserveBatchRun(outcome string, duration time.Duration, finishedAt time.Time) {
	if m == nil {
		return
	}
	m.batchRunsTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
	m.batchDuration.Observe(max(duration.Seconds(), 0))
	m.batchLastFinished.Set(float64(finishedAt.Unix()))
}

func (m *Metrics) AddLedgerPruned(rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.ledgerPrunedRowsTotal.Add(float64(rows))
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(v string) string {
	normalized := strings.ToLower(strings.TrimSpace(v))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
