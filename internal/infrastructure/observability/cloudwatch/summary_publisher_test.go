package cloudwatch

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	applicationPort "github.com/dreschagin/cluster-health-reporter/internal/application/port"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

func summaryResult(t *testing.T, verdict valueobject.Verdict) *entity.EvaluationResult {
	t.Helper()
	now := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	target, err := entity.NewTarget("kube501.home", "kube501.home:9100", valueobject.KindNode)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}
	policy, err := valueobject.NewAvailabilityPolicy(valueobject.VerdictUnknown)
	if err != nil {
		t.Fatalf("NewAvailabilityPolicy() error = %v", err)
	}
	check, err := entity.NewCheck("node-up", valueobject.KindNode, `up{instance="%s"}`, policy, valueobject.CategoryAvailability, "", false)
	if err != nil {
		t.Fatalf("NewCheck() error = %v", err)
	}
	entry := entity.NewEvaluationEntry(target, check, entity.NewSample(1, now), verdict)
	return entity.NewEvaluationResult(now, []entity.EvaluationEntry{entry}, nil)
}

func TestSummaryDatums(t *testing.T) {
	result := summaryResult(t, valueobject.VerdictCritical)

	data := summaryDatums(result)

	if len(data) != 3 {
		t.Fatalf("expected 3 datums, got %d", len(data))
	}

	byName := make(map[string]float64)
	for _, datum := range data {
		if datum.MetricName == nil || datum.Value == nil {
			t.Fatal("datum missing name or value")
		}
		byName[*datum.MetricName] = *datum.Value
	}

	if byName["CriticalChecks"] != 1 {
		t.Errorf("CriticalChecks = %v, want 1", byName["CriticalChecks"])
	}
	if byName["WarningChecks"] != 0 {
		t.Errorf("WarningChecks = %v, want 0", byName["WarningChecks"])
	}
	if byName["OverallState"] != 2 {
		t.Errorf("OverallState = %v, want 2 for UNHEALTHY", byName["OverallState"])
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

func TestEncodeEntry(t *testing.T) {
	entry := applicationPort.LogEntry{
		Timestamp: time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC),
		Level:     applicationPort.LogLevelError,
		Message:   "kube501.home/cpu-usage is critical",
		Fields: map[string]interface{}{
			"target": "kube501.home",
			"check":  "cpu-usage",
			"value":  97.2,
		},
	}

	line := encodeEntry(entry)

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("log event is not valid JSON: %v\n%s", err, line)
	}

	if decoded["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", decoded["level"])
	}
	if decoded["target"] != "kube501.home" {
		t.Errorf("target = %v", decoded["target"])
	}
	if !strings.Contains(line, "2026-08-24T06:00:00Z") {
		t.Errorf("timestamp missing from %s", line)
	}
}
