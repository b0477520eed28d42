package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	backendRequestsTotal *prometheus.CounterVec
	backendDuration      *prometheus.HistogramVec
	backendCircuitOpen   *prometheus.GaugeVec
	submissionsTotal     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mailcheck",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mailcheck",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mailcheck",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	backendRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mailcheck",
			Subsystem: "gateway",
			Name:      "backend_requests_total",
			Help:      "Requests forwarded to the classification backend by outcome.",
		},
		[]string{"operation", "outcome"},
	)
	backendDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mailcheck",
			Subsystem: "gateway",
			Name:      "backend_duration_seconds",
			Help:      "Classification backend round trip in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)
	backendCircuitOpen := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mailcheck",
			Subsystem: "gateway",
			Name:      "backend_circuit_open",
			Help:      "1 while the circuit breaker for a backend operation is not closed.",
		},
		[]string{"operation"},
	)
	submissionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mailcheck",
			Subsystem: "ui",
			Name:      "submissions_total",
			Help:      "Analyze and feedback submissions from the web UI by outcome.",
		},
		[]string{"kind", "outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		backendRequestsTotal,
		backendDuration,
		backendCircuitOpen,
		submissionsTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		service:              service,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		backendRequestsTotal: backendRequestsTotal,
		backendDuration:      backendDuration,
		backendCircuitOpen:   backendCircuitOpen,
		submissionsTotal:     submissionsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware labels requests with pathLabel, which should return the route
// pattern rather than the raw path.
func (m *HTTPServerMetrics) Middleware(pathLabel func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		path := r.URL.Path
		if pathLabel != nil {
			if label := pathLabel(r); label != "" {
				path = label
			}
		}
		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) ObserveBackendRequest(operation, outcome string, duration time.Duration) {
	m.backendRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.backendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) SetCircuitOpen(operation string, open bool) {
	value := 0.0
	if open {
		value = 1
	}
	m.backendCircuitOpen.WithLabelValues(operation).Set(value)
}

func (m *HTTPServerMetrics) RecordSubmission(kind, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.submissionsTotal.WithLabelValues(kind, outcome).Inc()
}

// RegisterSessionGauge exports the number of live UI sessions as reported by count.
func (m *HTTPServerMetrics) RegisterSessionGauge(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace:   "mailcheck",
			Subsystem:   "ui",
			Name:        "sessions_active",
			Help:        "Number of live web UI sessions.",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		func() float64 { return float64(count()) },
	))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
