// Package promql реализует port.MetricSource поверх HTTP API Prometheus
// (/api/v1/query и /api/v1/alerts).
package promql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
)

// maxResponseBytes ограничивает размер читаемого тела ответа
const maxResponseBytes = 16 << 20

// Client - HTTP клиент Prometheus-совместимого API
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient создает новый Client.
// timeout применяется к каждому запросу целиком (включая чтение тела).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// queryResponse - форма ответа /api/v1/query
type queryResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Metric map[string]string `json:"metric"`
			Value  []json.RawMessage `json:"value"` // [unix_ts, "value"]
		} `json:"result"`
	} `json:"data"`
	Error string `json:"error"`
}

// alertsResponse - форма ответа /api/v1/alerts
type alertsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Alerts []struct {
			Labels      map[string]string `json:"labels"`
			Annotations map[string]string `json:"annotations"`
			State       string            `json:"state"`
			ActiveAt    time.Time         `json:"activeAt"`
		} `json:"alerts"`
	} `json:"data"`
	Error string `json:"error"`
}

// Query выполняет instant query и возвращает все ряды результата
func (c *Client) Query(ctx context.Context, query string) ([]port.QuerySample, error) {
	endpoint := c.baseURL + "/api/v1/query?query=" + url.QueryEscape(query)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)
	}
	if parsed.Status != "success" {
		return nil, fmt.Errorf("%w: status %s: %s", port.ErrMalformedResponse, parsed.Status, parsed.Error)
	}

	samples := make([]port.QuerySample, 0, len(parsed.Data.Result))
	for _, row := range parsed.Data.Result {
		sample, err := parseSample(row.Metric, row.Value)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// ActiveAlerts возвращает активные alerts источника
func (c *Client) ActiveAlerts(ctx context.Context) ([]port.RawAlert, error) {
	body, err := c.get(ctx, c.baseURL+"/api/v1/alerts")
	if err != nil {
		return nil, err
	}

	var parsed alertsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)
	}
	if parsed.Status != "success" {
		return nil, fmt.Errorf("%w: status %s: %s", port.ErrMalformedResponse, parsed.Status, parsed.Error)
	}

	alerts := make([]port.RawAlert, 0, len(parsed.Data.Alerts))
	for _, a := range parsed.Data.Alerts {
		alerts = append(alerts, port.RawAlert{
			Name:     a.Labels["alertname"],
			Severity: a.Labels["severity"],
			Summary:  a.Annotations["summary"],
			State:    a.State,
			ActiveAt: a.ActiveAt,
		})
	}

	return alerts, nil
}

// get выполняет GET запрос и возвращает тело ответа.
// Любая транспортная ошибка и любой не-200 статус - ErrSourceUnavailable.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", port.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrSourceUnavailable, err)
	}

	return body, nil
}

// parseSample разбирает пару [unix_ts, "value"] одного ряда
func parseSample(labels map[string]string, value []json.RawMessage) (port.QuerySample, error) {
	if len(value) != 2 {
		return port.QuerySample{}, fmt.Errorf("%w: value pair has %d elements", port.ErrMalformedResponse, len(value))
	}

	var ts float64
	if err := json.Unmarshal(value[0], &ts); err != nil {
		return port.QuerySample{}, fmt.Errorf("%w: bad timestamp: %v", port.ErrMalformedResponse, err)
	}

	var raw string
	if err := json.Unmarshal(value[1], &raw); err != nil {
		return port.QuerySample{}, fmt.Errorf("%w: bad value: %v", port.ErrMalformedResponse, err)
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return port.QuerySample{}, fmt.Errorf("%w: value %q is not a number", port.ErrMalformedResponse, raw)
	}

	sec, frac := int64(ts), ts-float64(int64(ts))
	return port.QuerySample{
		Labels:    labels,
		Value:     parsed,
		Timestamp: time.Unix(sec, int64(frac*1e9)).UTC(),
	}, nil
}
