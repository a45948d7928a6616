package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/service"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// RunHealthCheckUseCase координирует один evaluation run:
// реестр target'ов, опрос источника, классификацию и сборку результата
type RunHealthCheckUseCase struct {
	source     port.MetricSource
	probe      port.HealthProbe
	provider   port.TargetProvider
	logs       port.LogSource
	checks     []*entity.Check
	classifier *service.VerdictClassifier
	limiter    *rate.Limiter
	workers    int
	logger     *logger.Logger
}

// NewRunHealthCheckUseCase создает новый use case.
// workers ограничивает параллелизм опроса, queryQPS - частоту запросов
// к источнику (общий лимит на все worker'ы). logs опционален:
// nil отключает log check'и (их sample всегда missing).
func NewRunHealthCheckUseCase(
	source port.MetricSource,
	probe port.HealthProbe,
	provider port.TargetProvider,
	logs port.LogSource,
	checks []*entity.Check,
	classifier *service.VerdictClassifier,
	workers int,
	queryQPS float64,
	logger *logger.Logger,
) *RunHealthCheckUseCase {
	if workers < 1 {
		workers = 1
	}
	return &RunHealthCheckUseCase{
		source:     source,
		probe:      probe,
		provider:   provider,
		logs:       logs,
		checks:     checks,
		classifier: classifier,
		limiter:    rate.NewLimiter(rate.Limit(queryQPS), 1),
		workers:    workers,
		logger:     logger,
	}
}

// task - одна пара (Check, Target) с фиксированным слотом результата
type task struct {
	check  *entity.Check
	target *entity.Target
	slot   int
}

// Execute выполняет один evaluation run.
// Каждая пара (Check, Target) с совпадающим kind дает ровно одну запись:
// недоступность источника или отсутствие ряда для target'а превращается
// в missing sample, а не в пропуск записи. Единственная фатальная ошибка -
// недоступность реестра target'ов: без него нельзя отличить "метрики нет"
// от "target не известен".
func (uc *RunHealthCheckUseCase) Execute(ctx context.Context) (*entity.EvaluationResult, error) {
	targets, err := uc.provider.Targets(ctx)
	if err != nil {
		uc.logger.Error("Failed to resolve targets", err)
		return nil, fmt.Errorf("failed to resolve targets: %w", err)
	}

	uc.logger.Debug("Resolved targets", "count", len(targets))

	// 1. Раскладываем пары по слотам заранее: worker'ы пишут каждый в свой
	// слот, порядок результата не зависит от порядка завершения
	var tasks []task
	for _, check := range uc.checks {
		for _, target := range targets {
			if target.Kind() != check.Kind() {
				continue
			}
			tasks = append(tasks, task{check: check, target: target, slot: len(tasks)})
		}
	}

	entries := make([]entity.EvaluationEntry, len(tasks))

	// 2. Опрашиваем источник ограниченным пулом worker'ов
	taskCh := make(chan task)
	var wg sync.WaitGroup
	for i := 0; i < uc.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				entries[t.slot] = uc.evaluate(ctx, t.check, t.target)
			}
		}()
	}

	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)
	wg.Wait()

	// 3. Забираем активные alerts. Провал здесь не фатален:
	// вердикты по target'ам ценнее, чем секция alerts
	alerts := uc.fetchAlerts(ctx)

	result := entity.NewEvaluationResult(time.Now(), entries, alerts)

	uc.logger.Info("Evaluation run complete",
		"overall", result.Overall().String(),
		"critical", result.IssueCount(),
		"warnings", result.WarningCount(),
		"entries", len(entries))

	return result, nil
}

// evaluate вычисляет одну пару (Check, Target)
func (uc *RunHealthCheckUseCase) evaluate(ctx context.Context, check *entity.Check, target *entity.Target) entity.EvaluationEntry {
	if check.Blocking() {
		return uc.evaluateProbe(ctx, check, target)
	}
	if check.Kind() == valueobject.KindLogSource {
		return uc.evaluateLogScan(ctx, check, target)
	}

	now := time.Now()

	if err := uc.limiter.Wait(ctx); err != nil {
		sample := entity.NewMissingSample(now)
		return entity.NewEvaluationEntry(target, check, sample, uc.classifier.Classify(sample, check.Policy()))
	}

	samples, err := uc.source.Query(ctx, check.QueryFor(target))
	if err != nil {
		uc.logger.Warn("Query failed", "check", check.Name(), "target", target.Name(), "error", err.Error())
		sample := entity.NewMissingSample(now)
		return entity.NewEvaluationEntry(target, check, sample, uc.classifier.Classify(sample, check.Policy()))
	}

	sample := matchSample(samples, target, now)
	if !sample.Present() {
		uc.logger.Debug("No sample for target", "check", check.Name(), "target", target.Name())
	}

	return entity.NewEvaluationEntry(target, check, sample, uc.classifier.Classify(sample, check.Policy()))
}

// evaluateProbe вычисляет blocking check через health probe.
// Любой провал probe кодируется значением 0: по availability политике
// это безусловный CRITICAL, независимо от причины провала.
func (uc *RunHealthCheckUseCase) evaluateProbe(ctx context.Context, check *entity.Check, target *entity.Target) entity.EvaluationEntry {
	now := time.Now()

	value := 1.0
	if err := uc.probe.Check(ctx); err != nil {
		uc.logger.Warn("Health probe failed", "target", target.Name(), "error", err.Error())
		value = 0
	}

	sample := entity.NewSample(value, now)
	return entity.NewEvaluationEntry(target, check, sample, uc.classifier.Classify(sample, check.Policy()))
}

// evaluateLogScan вычисляет log check: значение - число строк лога,
// совпавших с запросом за окно сканирования. Провал backend'а логов дает
// missing sample; политика log check'ов трактует его как OK, потому что
// недоступность Loki сама по себе не деградирует кластер.
func (uc *RunHealthCheckUseCase) evaluateLogScan(ctx context.Context, check *entity.Check, target *entity.Target) entity.EvaluationEntry {
	now := time.Now()

	if uc.logs == nil {
		sample := entity.NewMissingSample(now)
		return entity.NewEvaluationEntry(target, check, sample, uc.classifier.Classify(sample, check.Policy()))
	}

	if err := uc.limiter.Wait(ctx); err != nil {
		sample := entity.NewMissingSample(now)
		return entity.NewEvaluationEntry(target, check, sample, uc.classifier.Classify(sample, check.Policy()))
	}

	count, err := uc.logs.CountEntries(ctx, check.QueryFor(target))
	if err != nil {
		uc.logger.Warn("Log scan failed", "check", check.Name(), "error", err.Error())
		sample := entity.NewMissingSample(now)
		return entity.NewEvaluationEntry(target, check, sample, uc.classifier.Classify(sample, check.Policy()))
	}

	sample := entity.NewSample(count, now)
	return entity.NewEvaluationEntry(target, check, sample, uc.classifier.Classify(sample, check.Policy()))
}

func (uc *RunHealthCheckUseCase) fetchAlerts(ctx context.Context) []entity.FiringAlert {
	raw, err := uc.source.ActiveAlerts(ctx)
	if err != nil {
		uc.logger.Warn("Failed to fetch alerts", "error", err.Error())
		return nil
	}

	alerts := make([]entity.FiringAlert, 0, len(raw))
	for _, a := range raw {
		// pending alerts не показываем: источник еще не считает их сработавшими
		if a.State != "" && a.State != "firing" {
			continue
		}
		alerts = append(alerts, entity.FiringAlert{
			Name:     a.Name,
			Severity: a.Severity,
			Summary:  a.Summary,
			ActiveAt: a.ActiveAt,
		})
	}
	return alerts
}

// matchSample выбирает ряд результата для target'а.
// Сопоставление строго по instance label: ряд с чужим instance никогда
// не засчитывается target'у. Единственное исключение - агрегатные запросы
// (sum и т.п.), у которых label снят: одиночный ряд без instance
// принимается как есть.
func matchSample(samples []port.QuerySample, target *entity.Target, takenAt time.Time) entity.Sample {
	for _, s := range samples {
		if s.Labels["instance"] == target.Instance() {
			return entity.NewSample(s.Value, takenAt)
		}
	}

	if len(samples) == 1 {
		if _, labeled := samples[0].Labels["instance"]; !labeled {
			return entity.NewSample(samples[0].Value, takenAt)
		}
	}

	return entity.NewMissingSample(takenAt)
}
