package port

import (
	"context"
	"errors"
	"time"
)

// Ошибки источника метрик. Адаптеры оборачивают низкоуровневые ошибки
// в одну из них через %w, use case различает их через errors.Is.
var (
	// ErrSourceUnavailable - источник недоступен (сеть, non-200, timeout)
	ErrSourceUnavailable = errors.New("metric source unavailable")

	// ErrMalformedResponse - источник ответил, но тело не разобрать
	ErrMalformedResponse = errors.New("malformed metric source response")

	// ErrHealthCheckFailed - health endpoint ответил не "ok"
	ErrHealthCheckFailed = errors.New("health check failed")
)

// QuerySample представляет один ряд из ответа на instant query
type QuerySample struct {
	Labels    map[string]string
	Value     float64
	Timestamp time.Time
}

// RawAlert представляет активный alert из alerting API источника
type RawAlert struct {
	Name     string
	Severity string
	Summary  string
	State    string
	ActiveAt time.Time
}

// MetricSource определяет интерфейс источника метрик (Port)
// Реализация будет в Infrastructure слое (PromQL HTTP client)
type MetricSource interface {
	// Query выполняет instant query и возвращает все ряды результата.
	// Пустой результат - это не ошибка: отсутствие ряда для target'а
	// решается на уровне use case, а не адаптера.
	Query(ctx context.Context, query string) ([]QuerySample, error)

	// ActiveAlerts возвращает активные alerts источника
	ActiveAlerts(ctx context.Context) ([]RawAlert, error)
}

// HealthProbe определяет интерфейс проверки живости control plane (Port)
type HealthProbe interface {
	// Check возвращает nil если endpoint ответил "ok",
	// иначе ошибку обернутую в ErrHealthCheckFailed или ErrSourceUnavailable
	Check(ctx context.Context) error
}
