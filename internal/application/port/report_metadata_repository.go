package port

import (
	"context"
	"time"
)

// ReportMetadata представляет метаданные сохраненного отчета.
type ReportMetadata struct {
	ReportID     string
	Period       string
	StorageKey   string
	URL          string
	ContentType  string
	SizeBytes    int64
	OverallState string
	IssueCount   int
	GeneratedAt  time.Time
	ExpiresAt    time.Time
}

// ReportListQuery определяет параметры выборки списка отчетов.
type ReportListQuery struct {
	Period string
	Limit  int
	Cursor string
	From   time.Time
	To     time.Time
}

// ReportListPage содержит результат выборки и курсор следующей страницы.
type ReportListPage struct {
	Items      []ReportMetadata
	NextCursor string
}

// ReportMetadataRepository определяет интерфейс хранения метаданных отчетов.
type ReportMetadataRepository interface {
	Put(ctx context.Context, record ReportMetadata) error
	ListByPeriod(ctx context.Context, query ReportListQuery) (ReportListPage, error)
}
