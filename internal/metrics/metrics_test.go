package metrics

import (
	"testing"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/ws", "/ws"},
		{"/healthz", "probe"},
		{"/readyz", "probe"},
		{"/metrics", "/metrics"},
		{"/api/v1/reports", "/api/v1/reports/*"},
		{"/api/v1/reports/render", "/api/v1/reports/*"},
		{"/api/v1/health/latest", "/api/v1/health/*"},
		{"/api/v1/health/run", "/api/v1/health/*"},
		{"/api/v1/something", "/api/v1/*"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		if got := normalizeRoute(tt.path); got != tt.want {
			t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestOverallValue(t *testing.T) {
	tests := []struct {
		status valueobject.OverallStatus
		want   float64
	}{
		{valueobject.StatusHealthy, 0},
		{valueobject.StatusWarning, 1},
		{valueobject.StatusUnhealthy, 2},
	}

	for _, tt := range tests {
		if got := overallValue(tt.status); got != tt.want {
			t.Errorf("overallValue(%v) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
