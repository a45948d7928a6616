package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

// Metrics bundles prometheus collectors used by the reporter itself.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDurationSec  *prometheus.HistogramVec
	EvaluationsTotal    *prometheus.CounterVec
	EvaluationDuration  prometheus.Histogram
	ChecksByVerdict     *prometheus.GaugeVec
	OverallState        prometheus.Gauge
	WebsocketClients    prometheus.Gauge
	NotificationsFailed prometheus.Counter
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reporter_requests_total",
			Help: "Total number of reporter HTTP requests.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reporter_request_duration_seconds",
			Help:    "Reporter request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reporter_evaluations_total",
			Help: "Total number of evaluation cycles by overall state.",
		}, []string{"overall"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reporter_evaluation_duration_seconds",
			Help:    "Evaluation cycle duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		ChecksByVerdict: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reporter_checks_by_verdict",
			Help: "Number of checks in the latest cycle by verdict.",
		}, []string{"verdict"}),
		OverallState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reporter_overall_state",
			Help: "Overall cluster state of the latest cycle (0 healthy, 1 warning, 2 unhealthy).",
		}),
		WebsocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reporter_websocket_clients",
			Help: "Number of connected websocket clients.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reporter_notifications_failed_total",
			Help: "Total number of failed webhook deliveries.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSec,
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.ChecksByVerdict,
		m.OverallState,
		m.WebsocketClients,
		m.NotificationsFailed,
	)

	return m
}

// ObserveEvaluation records the outcome of one evaluation cycle.
func (m *Metrics) ObserveEvaluation(result *entity.EvaluationResult, duration time.Duration) {
	m.EvaluationsTotal.WithLabelValues(string(result.Overall())).Inc()
	m.EvaluationDuration.Observe(duration.Seconds())
	m.OverallState.Set(overallValue(result.Overall()))

	counts := map[valueobject.Verdict]int{
		valueobject.VerdictOK:       0,
		valueobject.VerdictWarning:  0,
		valueobject.VerdictUnknown:  0,
		valueobject.VerdictCritical: 0,
	}
	for _, entry := range result.Entries() {
		counts[entry.Verdict()]++
	}
	for verdict, count := range counts {
		m.ChecksByVerdict.WithLabelValues(string(verdict)).Set(float64(count))
	}
}

func overallValue(status valueobject.OverallStatus) float64 {
	switch status {
	case valueobject.StatusUnhealthy:
		return 2
	case valueobject.StatusWarning:
		return 1
	default:
		return 0
	}
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		route := normalizeRoute(r.URL.Path)
		m.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, r.Method, status).Observe(time.Since(startedAt).Seconds())
	})
}

func normalizeRoute(path string) string {
	switch {
	case path == "/ws":
		return "/ws"
	case path == "/healthz" || path == "/readyz":
		return "probe"
	case path == "/metrics":
		return "/metrics"
	case path == "/api/v1/reports" || hasPrefix(path, "/api/v1/reports/"):
		return "/api/v1/reports/*"
	case hasPrefix(path, "/api/v1/health/"):
		return "/api/v1/health/*"
	case path == "/api/v1" || hasPrefix(path, "/api/v1/"):
		return "/api/v1/*"
	default:
		return "other"
	}
}

func hasPrefix(value, prefix string) bool {
	if len(value) < len(prefix) {
		return false
	}
	return value[:len(prefix)] == prefix
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Hijack passes websocket upgrades through wrapped ResponseWriter.
func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// Flush keeps streaming behavior for handlers that require it.
func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
