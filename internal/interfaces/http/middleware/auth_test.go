package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

func TestValidateRequestAuth(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		header  string
		query   string
		wantErr bool
	}{
		{
			name: "disabled auth allows everything",
			cfg:  AuthConfig{Enabled: false},
		},
		{
			name:    "enabled auth without token rejects",
			cfg:     AuthConfig{Enabled: true, BearerToken: "secret"},
			wantErr: true,
		},
		{
			name:   "valid bearer header",
			cfg:    AuthConfig{Enabled: true, BearerToken: "secret"},
			header: "Bearer secret",
		},
		{
			name:    "wrong bearer token",
			cfg:     AuthConfig{Enabled: true, BearerToken: "secret"},
			header:  "Bearer wrong",
			wantErr: true,
		},
		{
			name:  "token via query param for websocket",
			cfg:   AuthConfig{Enabled: true, BearerToken: "secret"},
			query: "secret",
		},
		{
			name:    "enabled auth with empty configured token rejects all",
			cfg:     AuthConfig{Enabled: true, BearerToken: ""},
			header:  "Bearer anything",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/api/v1/health/latest"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			err := ValidateRequestAuth(req, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequestAuth() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthMiddlewareRejectsWithChallenge(t *testing.T) {
	mw := Auth(AuthConfig{Enabled: true, BearerToken: "secret"}, logger.New("error"))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/latest", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("WWW-Authenticate challenge missing")
	}
}
