// Package scheduler запускает периодические циклы оценки кластера.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// Evaluator выполняет один цикл оценки кластера
type Evaluator interface {
	Execute(ctx context.Context) (*entity.EvaluationResult, error)
}

// Processor обрабатывает готовый результат (персистентность, уведомления)
type Processor interface {
	Execute(ctx context.Context, result *entity.EvaluationResult) error
}

// Snapshot - состояние runner'а для status endpoint
type Snapshot struct {
	StartedAt   time.Time                 `json:"started_at"`
	Interval    time.Duration             `json:"interval"`
	LastRunAt   time.Time                 `json:"last_run_at"`
	LastError   string                    `json:"last_error,omitempty"`
	LastOverall valueobject.OverallStatus `json:"last_overall,omitempty"`
}

// Runner периодически выполняет оценку и передает результат на обработку
type Runner struct {
	evaluator Evaluator
	processor Processor
	log       *logger.Logger
	interval  time.Duration
	deadline  time.Duration

	runMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastRunAt   time.Time
	lastError   string
	lastOverall valueobject.OverallStatus
}

// NewRunner создает новый Runner
func NewRunner(evaluator Evaluator, processor Processor, log *logger.Logger, interval, deadline time.Duration) *Runner {
	return &Runner{
		evaluator: evaluator,
		processor: processor,
		log:       log,
		interval:  interval,
		deadline:  deadline,
		startedAt: time.Now(),
	}
}

// Start запускает периодический цикл (блокирует до отмены контекста)
func (r *Runner) Start(ctx context.Context) {
	r.log.Info("Evaluation runner started", "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Первый цикл сразу, не дожидаясь тика
	if _, err := r.RunOnce(ctx); err != nil && ctx.Err() != nil {
		return
	}

	for {
		select {
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				// RunOnce уже сохранил состояние ошибки и залогировал
				continue
			}
		case <-ctx.Done():
			r.log.Info("Evaluation runner stopped")
			return
		}
	}
}

// RunOnce выполняет один цикл оценки с дедлайном
func (r *Runner) RunOnce(ctx context.Context) (*entity.EvaluationResult, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, r.deadline)
	defer cancel()

	result, err := r.evaluator.Execute(runCtx)
	runAt := time.Now()

	if err != nil {
		wrappedErr := fmt.Errorf("evaluation cycle failed: %w", err)
		r.updateFailure(runAt, wrappedErr)
		r.log.Error("Evaluation cycle failed", wrappedErr)
		return nil, wrappedErr
	}

	if err := r.processor.Execute(runCtx, result); err != nil {
		wrappedErr := fmt.Errorf("result processing failed: %w", err)
		r.updateFailure(runAt, wrappedErr)
		r.log.Error("Result processing failed", wrappedErr)
		return nil, wrappedErr
	}

	r.updateSuccess(runAt, result)

	r.log.Info(
		"Evaluation cycle completed",
		"overall", string(result.Overall()),
		"issue_count", result.IssueCount(),
		"warning_count", result.WarningCount(),
		"entries", len(result.Entries()),
	)

	return result, nil
}

// Snapshot возвращает копию состояния runner'а
func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Snapshot{
		StartedAt:   r.startedAt,
		Interval:    r.interval,
		LastRunAt:   r.lastRunAt,
		LastError:   r.lastError,
		LastOverall: r.lastOverall,
	}
}

func (r *Runner) updateFailure(runAt time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRunAt = runAt
	r.lastError = err.Error()
}

func (r *Runner) updateSuccess(runAt time.Time, result *entity.EvaluationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRunAt = runAt
	r.lastError = ""
	r.lastOverall = result.Overall()
}
