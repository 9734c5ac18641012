package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ssargent/gridstore/pkg/store"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus collectors for one process. Each instance has
// its own registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Storage backend metrics
	backendOperationsTotal   *prometheus.CounterVec
	backendOperationDuration *prometheus.HistogramVec
	backendBytesWritten      prometheus.Counter

	// Case file API metrics
	apiCallsTotal *prometheus.CounterVec
	filesOpen     prometheus.Gauge
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridstore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridstore_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gridstore_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		backendOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridstore_backend_operations_total",
				Help: "Total number of storage backend operations",
			},
			[]string{"operation", "status"},
		),

		backendOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridstore_backend_operation_duration_seconds",
				Help:    "Storage backend operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		backendBytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gridstore_backend_bytes_written_total",
				Help: "Value bytes handed to the storage backend",
			},
		),

		apiCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridstore_api_calls_total",
				Help: "Total number of case file API calls",
			},
			[]string{"op", "status"},
		),

		filesOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gridstore_files_open",
				Help: "Number of case files currently open",
			},
		),
	}
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordBackendOperation records one storage backend call
func (m *Metrics) RecordBackendOperation(operation string, success bool, duration time.Duration) {
	m.backendOperationsTotal.WithLabelValues(operation, status(success)).Inc()
	m.backendOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAPICall records one case file API call
func (m *Metrics) RecordAPICall(op string, success bool) {
	m.apiCallsTotal.WithLabelValues(op, status(success)).Inc()
}

// FileOpened and FileClosed track the open case file gauge
func (m *Metrics) FileOpened() { m.filesOpen.Inc() }
func (m *Metrics) FileClosed() { m.filesOpen.Dec() }

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// InstrumentFactory wraps every Backend the factory opens
func (m *Metrics) InstrumentFactory(next store.BackendFactory) store.BackendFactory {
	if next == nil {
		next = store.OpenLogBackend
	}
	return func(cfg store.BackendConfig) (store.Backend, error) {
		b, err := next(cfg)
		if err != nil {
			return nil, err
		}
		return InstrumentBackend(b, m), nil
	}
}

// InstrumentBackend times every call on b
func InstrumentBackend(b store.Backend, m *Metrics) store.Backend {
	return &instrumentedBackend{next: b, m: m}
}

type instrumentedBackend struct {
	next store.Backend
	m    *Metrics
}

func (b *instrumentedBackend) observe(op string, start time.Time, err error) {
	b.m.RecordBackendOperation(op, err == nil, time.Since(start))
}

func (b *instrumentedBackend) Get(key []byte) ([]byte, error) {
	start := time.Now()
	value, err := b.next.Get(key)
	// a miss is an answer, not a failure
	if err == store.ErrKeyNotFound {
		b.observe("get", start, nil)
		return nil, err
	}
	b.observe("get", start, err)
	return value, err
}

func (b *instrumentedBackend) Put(key, value []byte) error {
	start := time.Now()
	err := b.next.Put(key, value)
	b.observe("put", start, err)
	if err == nil {
		b.m.backendBytesWritten.Add(float64(len(value)))
	}
	return err
}

func (b *instrumentedBackend) Delete(key []byte) error {
	start := time.Now()
	err := b.next.Delete(key)
	b.observe("delete", start, err)
	return err
}

func (b *instrumentedBackend) ListKeys(prefix []byte) ([]string, error) {
	start := time.Now()
	keys, err := b.next.ListKeys(prefix)
	b.observe("list", start, err)
	return keys, err
}

func (b *instrumentedBackend) Sync() error {
	start := time.Now()
	err := b.next.Sync()
	b.observe("sync", start, err)
	return err
}

func (b *instrumentedBackend) Close() error {
	return b.next.Close()
}
