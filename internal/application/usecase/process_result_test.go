package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/application/dto"
	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

type recordingRepo struct {
	saved   []*entity.EvaluationResult
	saveErr error
}

func (r *recordingRepo) Save(_ context.Context, result *entity.EvaluationResult) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, result)
	return nil
}

func (r *recordingRepo) FindLatest(_ context.Context) (*entity.EvaluationResult, error) {
	if len(r.saved) == 0 {
		return nil, nil
	}
	return r.saved[len(r.saved)-1], nil
}

func (r *recordingRepo) FindSince(_ context.Context, _ time.Time) ([]*entity.EvaluationResult, error) {
	return r.saved, nil
}

type recordingCache struct {
	sets map[string]interface{}
}

func (c *recordingCache) Get(_ context.Context, _ string, _ interface{}) error {
	return errors.New("cache miss")
}

func (c *recordingCache) Set(_ context.Context, key string, value interface{}) error {
	if c.sets == nil {
		c.sets = make(map[string]interface{})
	}
	c.sets[key] = value
	return nil
}

func (c *recordingCache) Delete(_ context.Context, _ string) error { return nil }
func (c *recordingCache) Close() error                             { return nil }

type recordingEvents struct {
	subjects []string
}

func (e *recordingEvents) PublishEvent(_ context.Context, subject string, _ interface{}) error {
	e.subjects = append(e.subjects, subject)
	return nil
}

func (e *recordingEvents) Close() error { return nil }

type recordingNotifier struct {
	broadcasts []*dto.EvaluationDTO
}

func (n *recordingNotifier) Broadcast(result *dto.EvaluationDTO) {
	n.broadcasts = append(n.broadcasts, result)
}

func (n *recordingNotifier) ClientCount() int { return 1 }

type recordingSender struct {
	sent []string
	err  error
}

func (s *recordingSender) Send(_ context.Context, content string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, content)
	return nil
}

type recordingLogPublisher struct {
	batches [][]port.LogEntry
}

func (p *recordingLogPublisher) Publish(_ context.Context, entry port.LogEntry) error {
	p.batches = append(p.batches, []port.LogEntry{entry})
	return nil
}

func (p *recordingLogPublisher) PublishBatch(_ context.Context, entries []port.LogEntry) error {
	p.batches = append(p.batches, entries)
	return nil
}

func (p *recordingLogPublisher) Flush(_ context.Context) error { return nil }

func resultWithVerdicts(t *testing.T, verdicts ...valueobject.Verdict) *entity.EvaluationResult {
	t.Helper()
	now := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	entries := make([]entity.EvaluationEntry, 0, len(verdicts))
	for i, verdict := range verdicts {
		target, err := entity.NewTarget("kube501.home", "kube501.home:9100", valueobject.KindNode)
		if err != nil {
			t.Fatalf("NewTarget() error = %v", err)
		}
		policy, err := valueobject.NewAvailabilityPolicy(valueobject.VerdictUnknown)
		if err != nil {
			t.Fatalf("NewAvailabilityPolicy() error = %v", err)
		}
		check, err := entity.NewCheck("check-"+string(rune('a'+i)), valueobject.KindNode, `up{instance="%s"}`, policy, valueobject.CategoryAvailability, "", false)
		if err != nil {
			t.Fatalf("NewCheck() error = %v", err)
		}
		entries = append(entries, entity.NewEvaluationEntry(target, check, entity.NewSample(1, now), verdict))
	}
	return entity.NewEvaluationResult(now, entries, nil)
}

func TestProcessResultFanOut(t *testing.T) {
	repo := &recordingRepo{}
	cache := &recordingCache{}
	events := &recordingEvents{}
	notifier := &recordingNotifier{}
	issueLog := &recordingLogPublisher{}
	sender := &recordingSender{}

	uc := NewProcessResultUseCase(repo, cache, events, "health.events", notifier, nil, issueLog, sender, testLogger())

	result := resultWithVerdicts(t, valueobject.VerdictCritical, valueobject.VerdictOK)
	if err := uc.Execute(context.Background(), result); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved result, got %d", len(repo.saved))
	}
	if _, ok := cache.sets[cacheKeyLatest]; !ok {
		t.Fatal("latest result not cached")
	}
	if len(events.subjects) != 1 || events.subjects[0] != "health.events" {
		t.Fatalf("event not published, subjects = %v", events.subjects)
	}
	if len(notifier.broadcasts) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(notifier.broadcasts))
	}
	if len(issueLog.batches) != 1 || len(issueLog.batches[0]) != 1 {
		t.Fatalf("critical entries not shipped to issue log: %v", issueLog.batches)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0], "UNHEALTHY") {
		t.Fatalf("notification missing overall status: %q", sender.sent[0])
	}
}

func TestProcessResultHealthyRunSendsNoNotification(t *testing.T) {
	repo := &recordingRepo{}
	sender := &recordingSender{}

	uc := NewProcessResultUseCase(repo, nil, nil, "", nil, nil, nil, sender, testLogger())

	if err := uc.Execute(context.Background(), resultWithVerdicts(t, valueobject.VerdictOK)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("healthy run must not notify, got %v", sender.sent)
	}
}

func TestProcessResultSaveFailureIsFatal(t *testing.T) {
	repo := &recordingRepo{saveErr: errors.New("db down")}

	uc := NewProcessResultUseCase(repo, nil, nil, "", nil, nil, nil, nil, testLogger())

	if err := uc.Execute(context.Background(), resultWithVerdicts(t, valueobject.VerdictOK)); err == nil {
		t.Fatal("expected error when save fails")
	}
}

func TestProcessResultSenderFailureNotFatal(t *testing.T) {
	repo := &recordingRepo{}
	sender := &recordingSender{err: errors.New("webhook down")}

	uc := NewProcessResultUseCase(repo, nil, nil, "", nil, nil, nil, sender, testLogger())

	if err := uc.Execute(context.Background(), resultWithVerdicts(t, valueobject.VerdictWarning)); err != nil {
		t.Fatalf("Execute() error = %v, sender failure must not be fatal", err)
	}
}

func TestGetLatestResultCacheAside(t *testing.T) {
	repo := &recordingRepo{}
	cache := &recordingCache{}

	result := resultWithVerdicts(t, valueobject.VerdictOK)
	if err := repo.Save(context.Background(), result); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	uc := NewGetLatestResultUseCase(repo, cache, testLogger())

	got, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got == nil || got.ID != result.ID() {
		t.Fatalf("Execute() = %+v, want result %s", got, result.ID())
	}
	if _, ok := cache.sets[cacheKeyLatest]; !ok {
		t.Fatal("cache not populated on miss")
	}
}

func TestGetLatestResultEmpty(t *testing.T) {
	uc := NewGetLatestResultUseCase(&recordingRepo{}, nil, testLogger())

	got, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Execute() = %+v, want nil for empty history", got)
	}
}
