package apihealth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
)

func TestCheckOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	probe := NewProbe(server.URL, 5*time.Second, false)

	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestCheckTrailingNewlineAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	}))
	defer server.Close()

	probe := NewProbe(server.URL, 5*time.Second, false)

	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestCheckWrongBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("degraded"))
	}))
	defer server.Close()

	probe := NewProbe(server.URL, 5*time.Second, false)

	if err := probe.Check(context.Background()); !errors.Is(err, port.ErrHealthCheckFailed) {
		t.Fatalf("Check() error = %v, want ErrHealthCheckFailed", err)
	}
}

func TestCheckNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	probe := NewProbe(server.URL, 5*time.Second, false)

	if err := probe.Check(context.Background()); !errors.Is(err, port.ErrHealthCheckFailed) {
		t.Fatalf("Check() error = %v, want ErrHealthCheckFailed", err)
	}
}

func TestCheckUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	probe := NewProbe(server.URL, time.Second, false)

	if err := probe.Check(context.Background()); !errors.Is(err, port.ErrSourceUnavailable) {
		t.Fatalf("Check() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestCheckInsecureTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	probe := NewProbe(server.URL, 5*time.Second, true)

	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v, insecure probe must accept self-signed cert", err)
	}
}
