// Package loki реализует port.LogSource поверх HTTP API Loki
// (/loki/api/v1/query_range).
package loki

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

const (
	// maxResponseBytes ограничивает размер читаемого тела ответа
	maxResponseBytes = 16 << 20

	// entryLimit ограничивает число строк на один запрос: для вердикта
	// достаточно факта совпадений, не полного списка
	entryLimit = 10
)

// Client - HTTP клиент Loki-совместимого API
type Client struct {
	baseURL string
	window  time.Duration
	http    *http.Client
}

// NewClient создает новый Client.
// window задает глубину сканирования от текущего момента,
// timeout применяется к каждому запросу целиком.
func NewClient(baseURL string, window, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		window:  window,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// queryRangeResponse - форма ответа /loki/api/v1/query_range
type queryRangeResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Stream map[string]string `json:"stream"`
			Values [][]string        `json:"values"` // [ns_ts, line]
		} `json:"result"`
	} `json:"data"`
	Error string `json:"error"`
}

// CountEntries выполняет range query за окно сканирования и возвращает
// суммарное число строк по всем stream'ам результата
func (c *Client) CountEntries(ctx context.Context, query string) (float64, error) {
	end := time.Now()
	start := end.Add(-c.window)

	params := url.Values{}
	params.Set("query", query)
	params.Set("start", strconv.FormatInt(start.UnixNano(), 10))
	params.Set("end", strconv.FormatInt(end.UnixNano(), 10))
	params.Set("limit", strconv.Itoa(entryLimit))

	body, err := c.get(ctx, c.baseURL+"/loki/api/v1/query_range?"+params.Encode())
	if err != nil {
		return 0, err
	}

	var parsed queryRangeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("%w: %v", port.ErrMalformedResponse, err)
	}
	if parsed.Status != "success" {
		return 0, fmt.Errorf("%w: status %s: %s", port.ErrMalformedResponse, parsed.Status, parsed.Error)
	}

	count := 0
	for _, stream := range parsed.Data.Result {
		count += len(stream.Values)
	}

	return float64(count), nil
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
