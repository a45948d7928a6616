package promql

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
)

func TestQuerySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != `up{instance="kube501.home:9100"}` {
			t.Errorf("unexpected query param %q", got)
		}
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"resultType": "vector",
				"result": [
					{"metric": {"instance": "kube501.home:9100", "job": "node_exporter"}, "value": [1756015200.0, "1"]}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	samples, err := client.Query(context.Background(), `up{instance="kube501.home:9100"}`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(samples))
	}
	if samples[0].Value != 1 {
		t.Fatalf("Value = %v, want 1", samples[0].Value)
	}
	if samples[0].Labels["instance"] != "kube501.home:9100" {
		t.Fatalf("instance label = %q", samples[0].Labels["instance"])
	}
}

func TestQueryEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "success", "data": {"resultType": "vector", "result": []}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	samples, err := client.Query(context.Background(), "up")
	if err != nil {
		t.Fatalf("Query() error = %v, empty result is not an error", err)
	}
	if len(samples) != 0 {
		t.Fatalf("expected 0 samples, got %d", len(samples))
	}
}

func TestQueryNon200IsSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	if _, err := client.Query(context.Background(), "up"); !errors.Is(err, port.ErrSourceUnavailable) {
		t.Fatalf("Query() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestQueryMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "success", "data": {`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	if _, err := client.Query(context.Background(), "up"); !errors.Is(err, port.ErrMalformedResponse) {
		t.Fatalf("Query() error = %v, want ErrMalformedResponse", err)
	}
}

func TestQueryErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "error", "error": "query parse error"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	if _, err := client.Query(context.Background(), "up{"); !errors.Is(err, port.ErrMalformedResponse) {
		t.Fatalf("Query() error = %v, want ErrMalformedResponse", err)
	}
}

func TestQueryNonNumericValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"status": "success",
			"data": {"resultType": "vector", "result": [{"metric": {}, "value": [1756015200.0, "NaN-ish"]}]}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	if _, err := client.Query(context.Background(), "up"); !errors.Is(err, port.ErrMalformedResponse) {
		t.Fatalf("Query() error = %v, want ErrMalformedResponse", err)
	}
}

func TestActiveAlerts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/alerts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"alerts": [
					{
						"labels": {"alertname": "NodeDown", "severity": "critical"},
						"annotations": {"summary": "node kube502 unreachable"},
						"state": "firing",
						"activeAt": "2026-08-24T05:00:00Z"
					}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	alerts, err := client.ActiveAlerts(context.Background())
	if err != nil {
		t.Fatalf("ActiveAlerts() error = %v", err)
	}

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Name != "NodeDown" || alerts[0].Severity != "critical" || alerts[0].State != "firing" {
		t.Fatalf("unexpected alert %+v", alerts[0])
	}
	if alerts[0].Summary != "node kube502 unreachable" {
		t.Fatalf("summary = %q", alerts[0].Summary)
	}
}
