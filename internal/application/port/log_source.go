package port

import "context"

// LogSource определяет интерфейс backend'а логов кластера (Port)
// Реализация будет в Infrastructure слое (Loki HTTP client)
type LogSource interface {
	// CountEntries возвращает число строк лога за окно сканирования,
	// совпавших с запросом. Ноль - это не ошибка: отсутствие совпадений
	// означает чистый лог.
	CountEntries(ctx context.Context, query string) (float64, error)
}
