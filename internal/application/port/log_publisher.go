package port

import (
	"context"
	"time"
)

// LogLevel - severity записи журнала
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogEntry - структурированная запись журнала инцидентов:
// каждый CRITICAL вердикт run'а отправляется отдельной записью
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Message   string
	Fields    map[string]interface{}
}

// LogPublisher отправляет журнал инцидентов во внешнюю observability
// платформу. Реализации буферизуют записи; лимиты батчей - их забота
type LogPublisher interface {
	// Publish отправляет одну запись
	Publish(ctx context.Context, entry LogEntry) error

	// PublishBatch отправляет несколько записей за раз
	PublishBatch(ctx context.Context, entries []LogEntry) error

	// Flush форсирует отправку буфера; вызывается при graceful shutdown
	Flush(ctx context.Context) error
}
