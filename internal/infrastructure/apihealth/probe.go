// Package apihealth реализует port.HealthProbe поверх healthz endpoint'а
// apiserver'а. Endpoint обязан ответить 200 и телом "ok".
package apihealth

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
)

// Probe - HTTP проверка healthz endpoint'а
type Probe struct {
	url  string
	http *http.Client
}

// NewProbe создает новый Probe.
// insecure отключает проверку TLS сертификата: healthz apiserver'а
// обычно закрыт самоподписанным сертификатом.
func NewProbe(url string, timeout time.Duration, insecure bool) *Probe {
	transport := &http.Transport{}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Probe{
		url: url,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Check возвращает nil только если endpoint ответил 200 и телом "ok"
func (p *Probe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", port.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", port.ErrHealthCheckFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return fmt.Errorf("%w: %v", port.ErrSourceUnavailable, err)
	}

	if strings.TrimSpace(string(body)) != "ok" {
		return fmt.Errorf("%w: unexpected body %q", port.ErrHealthCheckFailed, string(body))
	}

	return nil
}
