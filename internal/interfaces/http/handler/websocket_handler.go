package handler

import (
	"net/http"
	"net/url"
	"strings"

	wsInfra "github.com/dreschagin/cluster-health-reporter/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/cluster-health-reporter/internal/interfaces/http/middleware"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
	"github.com/gorilla/websocket"
)

// WebSocketHandler принимает подписчиков на live результаты run'ов
type WebSocketHandler struct {
	hub      *wsInfra.Hub
	origins  map[string]struct{}
	auth     middleware.AuthConfig
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewWebSocketHandler создает handler. Пустой список origins запрещает
// все браузерные подключения: whitelist задается явно или не работает.
func NewWebSocketHandler(
	hub *wsInfra.Hub,
	allowedOrigins []string,
	authConfig middleware.AuthConfig,
	logger *logger.Logger,
) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = struct{}{}
		}
	}

	h := &WebSocketHandler{
		hub:     hub,
		origins: origins,
		auth:    authConfig,
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.originAllowed,
	}
	return h
}

func (h *WebSocketHandler) originAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" || len(h.origins) == 0 {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	if _, ok := h.origins[parsed.Scheme+"://"+parsed.Host]; ok {
		return true
	}
	_, wildcard := h.origins["*"]
	return wildcard
}

// HandleConnection апгрейдит запрос и передает соединение hub'у
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if err := middleware.ValidateRequestAuth(r, h.auth); err != nil {
		h.logger.Warn("WebSocket unauthorized",
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", err)
		return
	}

	client := wsInfra.NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)
	go client.Serve()
}
