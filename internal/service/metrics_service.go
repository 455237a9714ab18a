package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civisuite/vitals-ledger/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface, the ledger engine, and the disclosure cache.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	ledgerEvents    *prometheus.CounterVec
	ledgerRejected  *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheLatency    prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors.
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

	ledgerEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_total",
		Help: "Ledger events committed, by event kind",
	}, []string{"kind"})

	ledgerRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_rejected_total",
		Help: "Ledger operations rejected before mutation, by error code",
	}, []string{"code"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "disclosure_cache_hits_total",
		Help: "Total disclosure proof cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "disclosure_cache_misses_total",
		Help: "Total disclosure proof cache misses",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "disclosure_cache_latency_seconds",
		Help:    "Latency for disclosure proof cache operations",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(requestDuration, requestTotal, ledgerEvents, ledgerRejected, cacheHits, cacheMisses, cacheLatency)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		ledgerEvents:    ledgerEvents,
		ledgerRejected:  ledgerRejected,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		cacheLatency:    cacheLatency,
	}
}

// Handler exposes the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordLedgerEvents counts committed events by kind.
func (s *MetricsService) RecordLedgerEvents(events []models.Event) {
	for _, ev := range events {
		s.ledgerEvents.WithLabelValues(string(ev.Kind)).Inc()
	}
}

// RecordLedgerRejection counts a rejected operation by error code.
func (s *MetricsService) RecordLedgerRejection(code string) {
	s.ledgerRejected.WithLabelValues(code).Inc()
}

// RecordCacheOperation tracks disclosure cache effectiveness.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
	s.cacheLatency.Observe(duration.Seconds())
}
