package entity

import (
	"testing"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

func mustTarget(t *testing.T, name string, kind valueobject.TargetKind) *Target {
	t.Helper()
	target, err := NewTarget(name, name, kind)
	if err != nil {
		t.Fatalf("NewTarget(%s) error = %v", name, err)
	}
	return target
}

func mustCheck(t *testing.T, name string, kind valueobject.TargetKind, category valueobject.CheckCategory) *Check {
	t.Helper()
	policy, err := valueobject.NewAvailabilityPolicy(valueobject.VerdictUnknown)
	if err != nil {
		t.Fatalf("NewAvailabilityPolicy() error = %v", err)
	}
	check, err := NewCheck(name, kind, `up{instance="%s"}`, policy, category, "", false)
	if err != nil {
		t.Fatalf("NewCheck(%s) error = %v", name, err)
	}
	return check
}

func entryWith(t *testing.T, targetName, checkName string, verdict valueobject.Verdict) EvaluationEntry {
	t.Helper()
	target := mustTarget(t, targetName, valueobject.KindNode)
	check := mustCheck(t, checkName, valueobject.KindNode, valueobject.CategoryAvailability)
	return NewEvaluationEntry(target, check, NewSample(1, time.Now()), verdict)
}

func TestOverallStatusMonotonicAggregation(t *testing.T) {
	tests := []struct {
		name         string
		verdicts     []valueobject.Verdict
		wantOverall  valueobject.OverallStatus
		wantIssues   int
		wantWarnings int
		wantExitCode int
	}{
		{
			name:         "all ok",
			verdicts:     []valueobject.Verdict{valueobject.VerdictOK, valueobject.VerdictOK},
			wantOverall:  valueobject.StatusHealthy,
			wantExitCode: 0,
		},
		{
			name:         "warning escalates",
			verdicts:     []valueobject.Verdict{valueobject.VerdictOK, valueobject.VerdictWarning},
			wantOverall:  valueobject.StatusWarning,
			wantWarnings: 1,
			wantExitCode: 2,
		},
		{
			name:         "unknown escalates like warning",
			verdicts:     []valueobject.Verdict{valueobject.VerdictOK, valueobject.VerdictUnknown},
			wantOverall:  valueobject.StatusWarning,
			wantWarnings: 1,
			wantExitCode: 2,
		},
		{
			name:         "critical dominates everything",
			verdicts:     []valueobject.Verdict{valueobject.VerdictWarning, valueobject.VerdictCritical, valueobject.VerdictUnknown},
			wantOverall:  valueobject.StatusUnhealthy,
			wantIssues:   1,
			wantWarnings: 2,
			wantExitCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]EvaluationEntry, 0, len(tt.verdicts))
			for i, verdict := range tt.verdicts {
				entries = append(entries, entryWith(t, "node", "check-"+string(rune('a'+i)), verdict))
			}

			result := NewEvaluationResult(time.Now(), entries, nil)

			if result.Overall() != tt.wantOverall {
				t.Fatalf("Overall() = %v, want %v", result.Overall(), tt.wantOverall)
			}
			if result.IssueCount() != tt.wantIssues {
				t.Fatalf("IssueCount() = %d, want %d", result.IssueCount(), tt.wantIssues)
			}
			if result.WarningCount() != tt.wantWarnings {
				t.Fatalf("WarningCount() = %d, want %d", result.WarningCount(), tt.wantWarnings)
			}
			if result.Overall().ExitCode() != tt.wantExitCode {
				t.Fatalf("ExitCode() = %d, want %d", result.Overall().ExitCode(), tt.wantExitCode)
			}
		})
	}
}

func TestEntriesDeterministicOrder(t *testing.T) {
	entries := []EvaluationEntry{
		entryWith(t, "kube502.home", "node-up", valueobject.VerdictOK),
		entryWith(t, "kube501.home", "node-up", valueobject.VerdictOK),
		entryWith(t, "kube501.home", "cpu-usage", valueobject.VerdictOK),
	}

	result := NewEvaluationResult(time.Now(), entries, nil)
	ordered := result.Entries()

	wantOrder := []struct{ target, check string }{
		{"kube501.home", "cpu-usage"},
		{"kube501.home", "node-up"},
		{"kube502.home", "node-up"},
	}

	for i, want := range wantOrder {
		if ordered[i].TargetName() != want.target || ordered[i].CheckName() != want.check {
			t.Fatalf("entry %d = (%s, %s), want (%s, %s)",
				i, ordered[i].TargetName(), ordered[i].CheckName(), want.target, want.check)
		}
	}
}

func TestTargetSummariesWorstVerdict(t *testing.T) {
	entries := []EvaluationEntry{
		entryWith(t, "kube501.home", "node-up", valueobject.VerdictOK),
		entryWith(t, "kube501.home", "cpu-usage", valueobject.VerdictCritical),
		entryWith(t, "kube502.home", "node-up", valueobject.VerdictWarning),
		entryWith(t, "kube502.home", "cpu-usage", valueobject.VerdictUnknown),
	}

	result := NewEvaluationResult(time.Now(), entries, nil)
	summaries := result.TargetSummaries()

	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].TargetName != "kube501.home" || summaries[0].Worst != valueobject.VerdictCritical {
		t.Fatalf("summary[0] = %+v, want kube501.home CRITICAL", summaries[0])
	}
	// UNKNOWN хуже WARNING в свертке по target'у
	if summaries[1].TargetName != "kube502.home" || summaries[1].Worst != valueobject.VerdictUnknown {
		t.Fatalf("summary[1] = %+v, want kube502.home UNKNOWN", summaries[1])
	}
}

func TestTargetSummariesSplitByKindOnSharedHostname(t *testing.T) {
	// node и cadvisor target'ы одного узла делят hostname,
	// но сворачиваются раздельно
	node := mustTarget(t, "kube501.home", valueobject.KindNode)
	cadvisor, err := NewTarget("kube501.home", "kube501.home:4194", valueobject.KindCadvisor)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	nodeCheck := mustCheck(t, "node-up", valueobject.KindNode, valueobject.CategoryAvailability)
	cadvisorCheck := mustCheck(t, "cadvisor-up", valueobject.KindCadvisor, valueobject.CategoryAvailability)

	entries := []EvaluationEntry{
		NewEvaluationEntry(node, nodeCheck, NewSample(1, time.Now()), valueobject.VerdictOK),
		NewEvaluationEntry(cadvisor, cadvisorCheck, NewSample(0, time.Now()), valueobject.VerdictCritical),
	}

	result := NewEvaluationResult(time.Now(), entries, nil)
	summaries := result.TargetSummaries()

	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries for shared hostname, got %d", len(summaries))
	}
	if summaries[0].TargetKind != valueobject.KindCadvisor || summaries[0].Worst != valueobject.VerdictCritical {
		t.Fatalf("summary[0] = %+v, want cadvisor CRITICAL", summaries[0])
	}
	if summaries[1].TargetKind != valueobject.KindNode || summaries[1].Worst != valueobject.VerdictOK {
		t.Fatalf("summary[1] = %+v, want node OK", summaries[1])
	}
}

func TestReconstructRecomputesDerivedState(t *testing.T) {
	entries := []EvaluationEntry{
		entryWith(t, "kube501.home", "node-up", valueobject.VerdictCritical),
	}

	original := NewEvaluationResult(time.Now(), entries, nil)
	restored := Reconstruct(original.ID(), original.GeneratedAt(), original.Entries(), original.Alerts())

	if restored.Overall() != valueobject.StatusUnhealthy {
		t.Fatalf("Overall() = %v, want UNHEALTHY", restored.Overall())
	}
	if restored.IssueCount() != 1 {
		t.Fatalf("IssueCount() = %d, want 1", restored.IssueCount())
	}
	if restored.ID() != original.ID() {
		t.Fatalf("ID changed on reconstruct")
	}
}
