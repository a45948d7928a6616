package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

var ErrUnauthorized = errors.New("unauthorized")

type AuthConfig struct {
	Enabled     bool
	BearerToken string
}

// Auth защищает endpoint'ы общим Bearer token'ом. Репортер обслуживает
// одного оператора, поэтому один статический токен вместо пользователей.
func Auth(cfg AuthConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ValidateRequestAuth(r, cfg); err != nil {
				log.Warn("Unauthorized request",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="cluster-health-reporter"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ValidateRequestAuth проверяет токен запроса.
// Включенный auth с пустым настроенным токеном отклоняет все:
// молча открытый API хуже, чем сломанный деплой.
func ValidateRequestAuth(r *http.Request, cfg AuthConfig) error {
	if !cfg.Enabled {
		return nil
	}

	want := strings.TrimSpace(cfg.BearerToken)
	if want == "" {
		return ErrUnauthorized
	}

	got := ExtractToken(r)
	if got == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return ErrUnauthorized
	}

	return nil
}

// ExtractToken достает токен из Authorization header или, для WebSocket,
// из query параметра: браузерный new WebSocket() не умеет кастомные headers.
func ExtractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, rest, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
		if token := strings.TrimSpace(rest); token != "" {
			return token
		}
	}

	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
