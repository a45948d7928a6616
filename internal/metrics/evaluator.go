package metrics

import (
	"context"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/scheduler"
)

// InstrumentedEvaluator wraps an evaluator and records cycle metrics.
type InstrumentedEvaluator struct {
	next    scheduler.Evaluator
	metrics *Metrics
}

func NewInstrumentedEvaluator(next scheduler.Evaluator, metrics *Metrics) *InstrumentedEvaluator {
	return &InstrumentedEvaluator{next: next, metrics: metrics}
}

func (e *InstrumentedEvaluator) Execute(ctx context.Context) (*entity.EvaluationResult, error) {
	startedAt := time.Now()

	result, err := e.next.Execute(ctx)
	if err != nil {
		return nil, err
	}

	e.metrics.ObserveEvaluation(result, time.Since(startedAt))
	return result, nil
}
