package port

import (
	"context"
	"time"
)

// ReportStorage определяет интерфейс для хранения отрендеренных отчетов.
type ReportStorage interface {
	// PutReport загружает отчет и возвращает URL для чтения.
	PutReport(ctx context.Context, key, contentType string, body []byte) (string, error)

	// PruneOlderThan удаляет отчеты старше cutoff и возвращает количество удаленных.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
