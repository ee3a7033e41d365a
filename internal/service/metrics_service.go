package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the tick engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	ticksTotal        prometheus.Counter
	alertsSentTotal   prometheus.Counter
	tickErrorsTotal   prometheus.Counter
	runRecordFailures prometheus.Counter
	tickDuration      prometheus.Histogram
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
}

// NewMetricsService registers the core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	ticksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_ticks_total",
		Help: "Total number of completed scheduler ticks",
	})

	alertsSentTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_alerts_sent_total",
		Help: "Total number of alerts delivered",
	})

	tickErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_tick_errors_total",
		Help: "Total per-notifier errors across all ticks",
	})

	runRecordFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_run_record_failures_total",
		Help: "Total run records that could not be persisted",
	})

	tickDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "notifier_tick_duration_seconds",
		Help:    "Duration of scheduler ticks",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "check_cache_hits_total",
		Help: "Total one-off check cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "check_cache_misses_total",
		Help: "Total one-off check cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, ticksTotal, alertsSentTotal,
		tickErrorsTotal, runRecordFailures, tickDuration, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		ticksTotal:        ticksTotal,
		alertsSentTotal:   alertsSentTotal,
		tickErrorsTotal:   tickErrorsTotal,
		runRecordFailures: runRecordFailures,
		tickDuration:      tickDuration,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveTick records the outcome of one scheduler tick.
func (m *MetricsService) ObserveTick(summary models.TickSummary, duration time.Duration) {
	if m == nil {
		return
	}
	m.ticksTotal.Inc()
	m.tickDuration.Observe(duration.Seconds())
	m.alertsSentTotal.Add(float64(summary.SMSSentCount))
	m.tickErrorsTotal.Add(float64(summary.ErrorCount))
}

// RecordRunRecordFailure counts a run record that could not be persisted.
func (m *MetricsService) RecordRunRecordFailure() {
	if m == nil {
		return
	}
	m.runRecordFailures.Inc()
}

// RecordCacheOperation counts a one-off check cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
