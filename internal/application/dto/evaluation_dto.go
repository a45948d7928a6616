package dto

import (
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
)

// EntryDTO представляет одну строку результата для передачи клиентам
type EntryDTO struct {
	Target   string   `json:"target"`
	Kind     string   `json:"kind"`
	Check    string   `json:"check"`
	Category string   `json:"category"`
	Unit     string   `json:"unit,omitempty"`
	Value    *float64 `json:"value,omitempty"`
	Verdict  string   `json:"verdict"`
}

// AlertDTO представляет активный alert источника
type AlertDTO struct {
	Name     string    `json:"name"`
	Severity string    `json:"severity"`
	Summary  string    `json:"summary,omitempty"`
	ActiveAt time.Time `json:"active_at"`
}

// TargetSummaryDTO представляет свертку по одному target'у
type TargetSummaryDTO struct {
	Target  string `json:"target"`
	Kind    string `json:"kind"`
	Verdict string `json:"verdict"`
}

// EvaluationDTO представляет результат evaluation run'а
// Используется для передачи через WebSocket и HTTP API
type EvaluationDTO struct {
	ID           string             `json:"id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Overall      string             `json:"overall"` // "HEALTHY", "WARNING", "UNHEALTHY"
	IssueCount   int                `json:"issue_count"`
	WarningCount int                `json:"warning_count"`
	Targets      []TargetSummaryDTO `json:"targets"`
	Entries      []EntryDTO         `json:"entries"`
	Alerts       []AlertDTO         `json:"alerts,omitempty"`
}

// FromEntity конвертирует Domain Aggregate в DTO
func FromEntity(result *entity.EvaluationResult) *EvaluationDTO {
	entries := result.Entries()
	entryDTOs := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		d := EntryDTO{
			Target:   e.TargetName(),
			Kind:     e.TargetKind().String(),
			Check:    e.CheckName(),
			Category: e.Category().String(),
			Unit:     e.Unit(),
			Verdict:  e.Verdict().String(),
		}
		if value, present := e.Sample().Value(); present {
			v := value
			d.Value = &v
		}
		entryDTOs = append(entryDTOs, d)
	}

	alerts := result.Alerts()
	alertDTOs := make([]AlertDTO, 0, len(alerts))
	for _, a := range alerts {
		alertDTOs = append(alertDTOs, AlertDTO{
			Name:     a.Name,
			Severity: a.Severity,
			Summary:  a.Summary,
			ActiveAt: a.ActiveAt,
		})
	}

	summaries := result.TargetSummaries()
	summaryDTOs := make([]TargetSummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		summaryDTOs = append(summaryDTOs, TargetSummaryDTO{
			Target:  s.TargetName,
			Kind:    s.TargetKind.String(),
			Verdict: s.Worst.String(),
		})
	}

	return &EvaluationDTO{
		ID:           result.ID(),
		GeneratedAt:  result.GeneratedAt(),
		Overall:      result.Overall().String(),
		IssueCount:   result.IssueCount(),
		WarningCount: result.WarningCount(),
		Targets:      summaryDTOs,
		Entries:      entryDTOs,
		Alerts:       alertDTOs,
	}
}
