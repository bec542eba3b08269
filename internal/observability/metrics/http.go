package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	stepRunsTotal     *prometheus.CounterVec
	stepDuration      *prometheus.HistogramVec
	stepCacheHitTotal *prometheus.CounterVec
	filesIngested     *prometheus.HistogramVec
	modelCallsTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visadossier",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "visadossier",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "visadossier",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	stepRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visadossier",
			Subsystem: "pipeline",
			Name:      "step_runs_total",
			Help:      "Total executed pipeline steps by status.",
		},
		[]string{"service", "step", "status"},
	)
	stepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "visadossier",
			Subsystem: "pipeline",
			Name:      "step_duration_seconds",
			Help:      "Pipeline step execution duration in seconds.",
			Buckets:   []float64{0.05, 0.2, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "step"},
	)
	stepCacheHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visadossier",
			Subsystem: "pipeline",
			Name:      "step_cache_hits_total",
			Help:      "Total step requests answered from completed cached results.",
		},
		[]string{"service", "step"},
	)
	filesIngested := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "visadossier",
			Subsystem: "pipeline",
			Name:      "ingested_files",
			Help:      "Distribution of input files absorbed per ingest run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	modelCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visadossier",
			Subsystem: "model",
			Name:      "calls_total",
			Help:      "Total model completions by mode and status.",
		},
		[]string{"service", "mode", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		stepRunsTotal,
		stepDuration,
		stepCacheHitTotal,
		filesIngested,
		modelCallsTotal,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		stepRunsTotal:     stepRunsTotal,
		stepDuration:      stepDuration,
		stepCacheHitTotal: stepCacheHitTotal,
		filesIngested:     filesIngested,
		modelCallsTotal:   modelCallsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/artifacts/"):
		return "/v1/artifacts/{step}"
	case strings.HasPrefix(path, "/v1/pipeline/steps/"):
		return "/v1/pipeline/steps/{step}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordStepRun(service, step string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.stepRunsTotal.WithLabelValues(service, step, status).Inc()
	m.stepDuration.WithLabelValues(service, step).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordStepCacheHit(service, step string) {
	m.stepCacheHitTotal.WithLabelValues(service, step).Inc()
}

func (m *HTTPServerMetrics) RecordFilesIngested(service string, count int) {
	if count < 0 {
		return
	}
	m.filesIngested.WithLabelValues(service).Observe(float64(count))
}

func (m *HTTPServerMetrics) RecordModelCall(service, mode string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.modelCallsTotal.WithLabelValues(service, mode, status).Inc()
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

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
