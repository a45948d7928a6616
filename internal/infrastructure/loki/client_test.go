package loki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
)

func TestCountEntriesSumsAcrossStreams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/query_range" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != `{job="node_exporter"} |~ "kubelet.*failed"` {
			t.Errorf("unexpected query param %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want 10", got)
		}
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"resultType": "streams",
				"result": [
					{"stream": {"host": "kube501.home"}, "values": [["1756015200000000000", "kubelet failed to sync pod"], ["1756015260000000000", "kubelet failed again"]]},
					{"stream": {"host": "kube502.home"}, "values": [["1756015300000000000", "kubelet failed to mount volume"]]}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 15*time.Minute, 5*time.Second)

	count, err := client.CountEntries(context.Background(), `{job="node_exporter"} |~ "kubelet.*failed"`)
	if err != nil {
		t.Fatalf("CountEntries() error = %v", err)
	}

	if count != 3 {
		t.Fatalf("count = %v, want 3", count)
	}
}

func TestCountEntriesWindowBoundsInNanoseconds(t *testing.T) {
	window := 15 * time.Minute

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, err := strconv.ParseInt(r.URL.Query().Get("start"), 10, 64)
		if err != nil {
			t.Errorf("start is not an integer: %v", err)
		}
		end, err := strconv.ParseInt(r.URL.Query().Get("end"), 10, 64)
		if err != nil {
			t.Errorf("end is not an integer: %v", err)
		}
		if end-start != window.Nanoseconds() {
			t.Errorf("window = %d ns, want %d ns", end-start, window.Nanoseconds())
		}
		w.Write([]byte(`{"status": "success", "data": {"resultType": "streams", "result": []}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, window, 5*time.Second)

	count, err := client.CountEntries(context.Background(), `{job="node_exporter"}`)
	if err != nil {
		t.Fatalf("CountEntries() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %v, want 0 for empty result", count)
	}
}

func TestCountEntriesNon200IsSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 15*time.Minute, 5*time.Second)

	if _, err := client.CountEntries(context.Background(), "{}"); !errors.Is(err, port.ErrSourceUnavailable) {
		t.Fatalf("error = %v, want ErrSourceUnavailable", err)
	}
}

func TestCountEntriesMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "success", "data":`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 15*time.Minute, 5*time.Second)

	if _, err := client.CountEntries(context.Background(), "{}"); !errors.Is(err, port.ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestCountEntriesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "error", "error": "parse error in query"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 15*time.Minute, 5*time.Second)

	if _, err := client.CountEntries(context.Background(), "{bad"); !errors.Is(err, port.ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}
