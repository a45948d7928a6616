package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

type stubEvaluator struct {
	result *entity.EvaluationResult
	err    error
	calls  atomic.Int32
}

func (s *stubEvaluator) Execute(_ context.Context) (*entity.EvaluationResult, error) {
	s.calls.Add(1)
	return s.result, s.err
}

type stubProcessor struct {
	err      error
	received []*entity.EvaluationResult
}

func (s *stubProcessor) Execute(_ context.Context, result *entity.EvaluationResult) error {
	s.received = append(s.received, result)
	return s.err
}

func runnerResult(t *testing.T, verdict valueobject.Verdict) *entity.EvaluationResult {
	t.Helper()
	now := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	target, err := entity.NewTarget("kube501.home", "kube501.home:9100", valueobject.KindNode)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}
	policy, err := valueobject.NewAvailabilityPolicy(valueobject.VerdictUnknown)
	if err != nil {
		t.Fatalf("NewAvailabilityPolicy() error = %v", err)
	}
	check, err := entity.NewCheck("node-up", valueobject.KindNode, `up{instance="%s"}`, policy, valueobject.CategoryAvailability, "", false)
	if err != nil {
		t.Fatalf("NewCheck() error = %v", err)
	}
	entry := entity.NewEvaluationEntry(target, check, entity.NewSample(1, now), verdict)
	return entity.NewEvaluationResult(now, []entity.EvaluationEntry{entry}, nil)
}

func TestRunOnceSuccess(t *testing.T) {
	evaluator := &stubEvaluator{result: runnerResult(t, valueobject.VerdictOK)}
	processor := &stubProcessor{}
	runner := NewRunner(evaluator, processor, logger.New("error"), time.Minute, 30*time.Second)

	result, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}
	if len(processor.received) != 1 {
		t.Fatalf("processor calls = %d, want 1", len(processor.received))
	}

	snapshot := runner.Snapshot()
	if snapshot.LastError != "" {
		t.Errorf("LastError = %q, want empty", snapshot.LastError)
	}
	if snapshot.LastOverall != valueobject.StatusHealthy {
		t.Errorf("LastOverall = %v, want HEALTHY", snapshot.LastOverall)
	}
	if snapshot.LastRunAt.IsZero() {
		t.Error("LastRunAt not recorded")
	}
}

func TestRunOnceEvaluatorFailure(t *testing.T) {
	evaluator := &stubEvaluator{err: errors.New("registry down")}
	processor := &stubProcessor{}
	runner := NewRunner(evaluator, processor, logger.New("error"), time.Minute, 30*time.Second)

	if _, err := runner.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error from failed evaluation")
	}
	if len(processor.received) != 0 {
		t.Fatal("processor must not run after failed evaluation")
	}

	snapshot := runner.Snapshot()
	if snapshot.LastError == "" {
		t.Error("LastError not recorded")
	}
}

func TestRunOnceProcessorFailure(t *testing.T) {
	evaluator := &stubEvaluator{result: runnerResult(t, valueobject.VerdictOK)}
	processor := &stubProcessor{err: errors.New("database unavailable")}
	runner := NewRunner(evaluator, processor, logger.New("error"), time.Minute, 30*time.Second)

	if _, err := runner.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error from failed processing")
	}

	snapshot := runner.Snapshot()
	if snapshot.LastError == "" {
		t.Error("LastError not recorded")
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	evaluator := &stubEvaluator{result: runnerResult(t, valueobject.VerdictOK)}
	processor := &stubProcessor{}
	runner := NewRunner(evaluator, processor, logger.New("error"), time.Hour, 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	// Даем первому немедленному циклу выполниться
	deadline := time.After(2 * time.Second)
	for evaluator.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial cycle never ran")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after context cancel")
	}
}
