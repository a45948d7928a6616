package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/repository"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
	"github.com/dreschagin/cluster-health-reporter/internal/reporting"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// ErrNoResults возвращается когда в хранилище нет ни одного run'а
var ErrNoResults = errors.New("no evaluation results available")

// weeklyWindow - глубина истории для недельного отчета
const weeklyWindow = 7 * 24 * time.Hour

// GenerateReportUseCase рендерит отчет по сохраненным run'ам и
// опционально выгружает его в объектное хранилище
type GenerateReportUseCase struct {
	repository    repository.EvaluationRepository
	renderer      *reporting.Renderer
	storage       port.ReportStorage            // nil если выгрузка выключена
	metadata      port.ReportMetadataRepository // nil если индекс выключен
	keyPrefix     string
	retentionDays int
	logger        *logger.Logger
}

// NewGenerateReportUseCase создает новый use case
func NewGenerateReportUseCase(
	repository repository.EvaluationRepository,
	renderer *reporting.Renderer,
	storage port.ReportStorage,
	metadata port.ReportMetadataRepository,
	keyPrefix string,
	retentionDays int,
	logger *logger.Logger,
) *GenerateReportUseCase {
	return &GenerateReportUseCase{
		repository:    repository,
		renderer:      renderer,
		storage:       storage,
		metadata:      metadata,
		keyPrefix:     keyPrefix,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Execute рендерит отчет за период и возвращает его текст.
// Отчет строится по последнему сохраненному run'у; для weekly добавляется
// динамика по run'ам за последние 7 дней. Провал выгрузки в хранилище
// не фатален: отчет уже отрендерен и возвращается вызывающему.
func (uc *GenerateReportUseCase) Execute(ctx context.Context, period valueobject.ReportPeriod) (string, error) {
	if err := period.Validate(); err != nil {
		return "", err
	}

	latest, err := uc.repository.FindLatest(ctx)
	if err != nil {
		uc.logger.Error("Failed to load latest result", err)
		return "", fmt.Errorf("failed to load latest result: %w", err)
	}
	if latest == nil {
		return "", ErrNoResults
	}

	var report string
	switch period {
	case valueobject.PeriodWeekly:
		history, err := uc.repository.FindSince(ctx, latest.GeneratedAt().Add(-weeklyWindow))
		if err != nil {
			uc.logger.Error("Failed to load history", err)
			return "", fmt.Errorf("failed to load history: %w", err)
		}
		report = uc.renderer.Weekly(latest, history)
	default:
		report = uc.renderer.Daily(latest)
	}

	uc.store(ctx, period, latest, report)

	return report, nil
}

// store выгружает отчет в объектное хранилище и регистрирует метаданные
func (uc *GenerateReportUseCase) store(ctx context.Context, period valueobject.ReportPeriod, result *entity.EvaluationResult, report string) {
	if uc.storage == nil {
		return
	}

	key := fmt.Sprintf("%s/%s/%s/%s.txt",
		uc.keyPrefix, period.String(),
		result.GeneratedAt().UTC().Format("2006-01-02"), result.ID())

	url, err := uc.storage.PutReport(ctx, key, "text/plain; charset=utf-8", []byte(report))
	if err != nil {
		uc.logger.Error("Failed to upload report", err, "key", key)
		return
	}

	uc.logger.Info("Report uploaded", "key", key, "period", period.String())

	if uc.retentionDays > 0 {
		cutoff := result.GeneratedAt().AddDate(0, 0, -uc.retentionDays)
		pruned, err := uc.storage.PruneOlderThan(ctx, cutoff)
		if err != nil {
			uc.logger.Warn("Failed to prune old reports", "error", err.Error())
		} else if pruned > 0 {
			uc.logger.Info("Pruned old reports", "count", pruned)
		}
	}

	if uc.metadata == nil {
		return
	}

	record := port.ReportMetadata{
		ReportID:     result.ID(),
		Period:       period.String(),
		StorageKey:   key,
		URL:          url,
		ContentType:  "text/plain; charset=utf-8",
		SizeBytes:    int64(len(report)),
		OverallState: result.Overall().String(),
		IssueCount:   result.IssueCount(),
		GeneratedAt:  result.GeneratedAt(),
	}
	if uc.retentionDays > 0 {
		record.ExpiresAt = result.GeneratedAt().AddDate(0, 0, uc.retentionDays)
	}

	if err := uc.metadata.Put(ctx, record); err != nil {
		uc.logger.Warn("Failed to index report metadata", "error", err.Error())
	}
}
