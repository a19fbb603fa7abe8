package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry so several instances can coexist in tests.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	deployments         *prometheus.CounterVec
	deployDuration      *prometheus.HistogramVec
	restarts            *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cosmos_platform_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cosmos_platform_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		deployments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cosmos_platform_deployments_total",
			Help: "Simulated network deployments by final state",
		}, []string{"state"}),
		deployDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cosmos_platform_deployment_duration_seconds",
			Help:    "Wall time of simulated network deployments",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"state"}),
		restarts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cosmos_platform_service_restarts_total",
			Help: "Service restart attempts by service and result",
		}, []string{"service", "result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTPRequest records an HTTP request metric
func (m *Metrics) ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// DeploymentFinished records the outcome of a simulated deployment.
func (m *Metrics) DeploymentFinished(state string, took time.Duration) {
	m.deployments.WithLabelValues(state).Inc()
	m.deployDuration.WithLabelValues(state).Observe(took.Seconds())
}

func (m *Metrics) ObserveRestart(service, result string) {
	m.restarts.WithLabelValues(service, result).Inc()
}

// Middleware labels requests by route template rather than raw path, which
// keeps ids out of the label set.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		m.ObserveHTTPRequest(r.Method, routeOf(r), strconv.Itoa(ww.status), time.Since(start))
	})
}

func routeOf(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
