package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/theirongolddev/unitecon/internal/model"
)

type metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	recorded   prometheus.Counter
	duplicates prometheus.Counter
	runway     prometheus.Gauge
	mrr        prometheus.Gauge
	cash       prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unitecon",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "unitecon",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		recorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "unitecon",
			Name:      "snapshots_recorded_total",
			Help:      "Monthly check-ins recorded.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "unitecon",
			Name:      "snapshots_duplicate_total",
			Help:      "Check-ins rejected because the month was already recorded.",
		}),
		runway: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "unitecon",
			Name:      "runway_months",
			Help:      "Runway of the most recently recorded check-in.",
		}),
		mrr: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "unitecon",
			Name:      "mrr",
			Help:      "Monthly recurring revenue of the most recently recorded check-in.",
		}),
		cash: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "unitecon",
			Name:      "cash_balance",
			Help:      "Cash balance of the most recently recorded check-in.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.latency,
		m.recorded, m.duplicates,
		m.runway, m.mrr, m.cash,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) observeReport(r model.MonthReport) {
	m.runway.Set(r.RunwayMonths)
	m.mrr.Set(r.Current.CurrentMRR.InexactFloat64())
	m.cash.Set(r.Current.CashBalance.InexactFloat64())
}

// statusWriter captures the response code. It forwards Flush so the SSE
// stream keeps working behind the middleware.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Service) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.code)).Inc()
		s.metrics.latency.WithLabelValues(route).Observe(elapsed.Seconds())

		s.log.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.code,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
