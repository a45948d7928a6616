package http

import (
	"net/http"

	"github.com/dreschagin/cluster-health-reporter/internal/interfaces/http/handler"
	"github.com/dreschagin/cluster-health-reporter/internal/interfaces/http/middleware"
	"github.com/dreschagin/cluster-health-reporter/internal/metrics"
	"github.com/dreschagin/cluster-health-reporter/pkg/config"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// Router настраивает маршруты приложения
type Router struct {
	mux              *http.ServeMux
	healthAPIHandler *handler.HealthAPIHandler
	reportAPIHandler *handler.ReportAPIHandler
	websocketHandler *handler.WebSocketHandler
	metricsHandler   http.Handler
	metrics          *metrics.Metrics
	security         config.SecurityConfig
	logger           *logger.Logger
}

// NewRouter создает новый router
func NewRouter(
	healthAPIHandler *handler.HealthAPIHandler,
	reportAPIHandler *handler.ReportAPIHandler,
	websocketHandler *handler.WebSocketHandler,
	metricsHandler http.Handler,
	appMetrics *metrics.Metrics,
	security config.SecurityConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		healthAPIHandler: healthAPIHandler,
		reportAPIHandler: reportAPIHandler,
		websocketHandler: websocketHandler,
		metricsHandler:   metricsHandler,
		metrics:          appMetrics,
		security:         security,
		logger:           logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	// Health endpoints are intentionally unauthenticated for probes.
	rt.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rt.mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if rt.metricsHandler != nil {
		rt.mux.Handle("/metrics", rt.metricsHandler)
	}

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Enabled:     rt.security.AuthEnabled,
		BearerToken: rt.security.AuthToken,
	}, rt.logger)

	// WebSocket
	rt.mux.Handle("/ws", authMiddleware(http.HandlerFunc(rt.websocketHandler.HandleConnection)))

	// API endpoints
	rt.mux.Handle("/api/v1/health/latest", authMiddleware(http.HandlerFunc(rt.healthAPIHandler.GetLatest)))
	rt.mux.Handle("/api/v1/health/run", authMiddleware(http.HandlerFunc(rt.healthAPIHandler.RunNow)))
	rt.mux.Handle("/api/v1/health/status", authMiddleware(http.HandlerFunc(rt.healthAPIHandler.GetStatus)))
	rt.mux.Handle("/api/v1/reports/render", authMiddleware(http.HandlerFunc(rt.reportAPIHandler.Render)))
	rt.mux.Handle("/api/v1/reports", authMiddleware(http.HandlerFunc(rt.reportAPIHandler.List)))

	// Применяем middleware
	var h http.Handler = rt.mux
	if rt.metrics != nil {
		h = rt.metrics.Middleware(h)
	}
	h = middleware.Logger(rt.logger)(h)
	h = middleware.Recovery(rt.logger)(h)

	return h
}
