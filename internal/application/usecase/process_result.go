package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/cluster-health-reporter/internal/application/dto"
	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/repository"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// cacheKeyLatest - ключ последнего результата в кеше
const cacheKeyLatest = "health:latest"

// ProcessResultUseCase раздает готовый результат run'а по всем потребителям:
// хранилище, кеш, broker, websocket клиенты, observability, уведомления.
// Все потребители кроме хранилища опциональны (nil если выключены).
type ProcessResultUseCase struct {
	repository repository.EvaluationRepository
	cache      port.Cache
	events     port.EventPublisher
	subject    string
	notifier   port.NotificationService
	summary    port.SummaryPublisher
	issueLog   port.LogPublisher
	sender     port.PayloadSender
	logger     *logger.Logger
}

// NewProcessResultUseCase создает новый use case
func NewProcessResultUseCase(
	repository repository.EvaluationRepository,
	cache port.Cache,
	events port.EventPublisher,
	subject string,
	notifier port.NotificationService,
	summary port.SummaryPublisher,
	issueLog port.LogPublisher,
	sender port.PayloadSender,
	logger *logger.Logger,
) *ProcessResultUseCase {
	return &ProcessResultUseCase{
		repository: repository,
		cache:      cache,
		events:     events,
		subject:    subject,
		notifier:   notifier,
		summary:    summary,
		issueLog:   issueLog,
		sender:     sender,
		logger:     logger,
	}
}

// Execute сохраняет результат и раздает его потребителям.
// Фатален только провал сохранения: история run'ов - основа отчетов.
// Провал любого из побочных потребителей логируется и не прерывает раздачу.
func (uc *ProcessResultUseCase) Execute(ctx context.Context, result *entity.EvaluationResult) error {
	// 1. Сохраняем в хранилище
	if err := uc.repository.Save(ctx, result); err != nil {
		uc.logger.Error("Failed to save evaluation result", err)
		return fmt.Errorf("failed to save evaluation result: %w", err)
	}

	snapshot := dto.FromEntity(result)

	// 2. Обновляем кеш последнего результата
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, cacheKeyLatest, snapshot); err != nil {
			uc.logger.Warn("Failed to cache latest result", "error", err.Error())
		}
	}

	// 3. Публикуем событие в broker
	if uc.events != nil {
		if err := uc.events.PublishEvent(ctx, uc.subject, snapshot); err != nil {
			uc.logger.Warn("Failed to publish event", "subject", uc.subject, "error", err.Error())
		}
	}

	// 4. Рассылаем подключенным клиентам
	if uc.notifier != nil {
		uc.notifier.Broadcast(snapshot)
		uc.logger.Debug("Result broadcasted", "client_count", uc.notifier.ClientCount())
	}

	// 5. Публикуем сводку run'а в observability платформу
	if uc.summary != nil {
		if err := uc.summary.PublishSummary(ctx, result); err != nil {
			uc.logger.Warn("Failed to publish summary", "error", err.Error())
		}
	}

	// 6. Отправляем критические записи в журнал инцидентов
	uc.shipIssues(ctx, result)

	// 7. Уведомляем webhook при деградации
	uc.notify(ctx, result)

	return nil
}

// shipIssues отправляет критические записи run'а в журнал инцидентов
func (uc *ProcessResultUseCase) shipIssues(ctx context.Context, result *entity.EvaluationResult) {
	if uc.issueLog == nil {
		return
	}

	critical := result.CriticalEntries()
	if len(critical) == 0 {
		return
	}

	entries := make([]port.LogEntry, 0, len(critical))
	for _, e := range critical {
		fields := map[string]interface{}{
			"run_id": result.ID(),
			"target": e.TargetName(),
			"check":  e.CheckName(),
		}
		if value, present := e.Sample().Value(); present {
			fields["value"] = value
		}
		entries = append(entries, port.LogEntry{
			Timestamp: result.GeneratedAt(),
			Level:     port.LogLevelError,
			Message:   fmt.Sprintf("%s/%s is critical", e.TargetName(), e.CheckName()),
			Fields:    fields,
		})
	}

	if err := uc.issueLog.PublishBatch(ctx, entries); err != nil {
		uc.logger.Warn("Failed to ship issue log", "error", err.Error())
	}
}

// notify отправляет уведомление при деградации кластера.
// Здоровый run уведомления не порождает.
func (uc *ProcessResultUseCase) notify(ctx context.Context, result *entity.EvaluationResult) {
	if uc.sender == nil {
		return
	}
	if result.IssueCount() == 0 && result.WarningCount() == 0 {
		return
	}

	payload := dto.NewNotificationPayload(result)
	if err := uc.sender.Send(ctx, payload.Content); err != nil {
		uc.logger.Warn("Failed to send notification", "error", err.Error())
		return
	}

	uc.logger.Info("Degradation notification sent",
		"overall", result.Overall().String(),
		"critical", result.IssueCount())
}
