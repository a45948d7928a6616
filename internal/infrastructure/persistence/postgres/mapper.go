package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

// RunDBModel представляет evaluation run в БД
type RunDBModel struct {
	ID          string
	GeneratedAt time.Time
	Overall     string
	IssueCount  int
	Warnings    int
	Alerts      []byte // JSON
	CreatedAt   time.Time
}

// EntryDBModel представляет одну запись run'а в БД
type EntryDBModel struct {
	RunID      string
	TargetName string
	TargetKind string
	CheckName  string
	Category   string
	Unit       string
	Value      sql.NullFloat64 // NULL кодирует missing sample
	TakenAt    time.Time
	Verdict    string
}

// alertDBModel - форма alert'а в JSON колонке
type alertDBModel struct {
	Name     string    `json:"name"`
	Severity string    `json:"severity"`
	Summary  string    `json:"summary,omitempty"`
	ActiveAt time.Time `json:"active_at"`
}

// ToRunModel конвертирует Aggregate в DB Model run'а
func ToRunModel(result *entity.EvaluationResult) (*RunDBModel, error) {
	var alertBytes []byte

	alerts := result.Alerts()
	if len(alerts) > 0 {
		models := make([]alertDBModel, 0, len(alerts))
		for _, a := range alerts {
			models = append(models, alertDBModel{
				Name:     a.Name,
				Severity: a.Severity,
				Summary:  a.Summary,
				ActiveAt: a.ActiveAt,
			})
		}

		var err error
		alertBytes, err = json.Marshal(models)
		if err != nil {
			return nil, err
		}
	}

	return &RunDBModel{
		ID:          result.ID(),
		GeneratedAt: result.GeneratedAt(),
		Overall:     result.Overall().String(),
		IssueCount:  result.IssueCount(),
		Warnings:    result.WarningCount(),
		Alerts:      alertBytes,
		CreatedAt:   time.Now(),
	}, nil
}

// ToEntryModels конвертирует записи Aggregate в DB Models
func ToEntryModels(result *entity.EvaluationResult) []EntryDBModel {
	entries := result.Entries()
	models := make([]EntryDBModel, 0, len(entries))

	for _, e := range entries {
		model := EntryDBModel{
			RunID:      result.ID(),
			TargetName: e.TargetName(),
			TargetKind: e.TargetKind().String(),
			CheckName:  e.CheckName(),
			Category:   e.Category().String(),
			Unit:       e.Unit(),
			TakenAt:    e.Sample().TakenAt(),
			Verdict:    e.Verdict().String(),
		}
		if value, present := e.Sample().Value(); present {
			model.Value = sql.NullFloat64{Float64: value, Valid: true}
		}
		models = append(models, model)
	}

	return models
}

// ToResult восстанавливает Aggregate из DB Models.
// Счетчики и общий статус пересчитываются в Reconstruct заново.
func ToResult(run *RunDBModel, entryModels []EntryDBModel) (*entity.EvaluationResult, error) {
	entries := make([]entity.EvaluationEntry, 0, len(entryModels))
	for _, m := range entryModels {
		sample := entity.NewMissingSample(m.TakenAt)
		if m.Value.Valid {
			sample = entity.NewSample(m.Value.Float64, m.TakenAt)
		}

		entries = append(entries, entity.ReconstructEntry(
			m.TargetName,
			valueobject.TargetKind(m.TargetKind),
			m.CheckName,
			valueobject.CheckCategory(m.Category),
			m.Unit,
			sample,
			valueobject.Verdict(m.Verdict),
		))
	}

	var alerts []entity.FiringAlert
	if len(run.Alerts) > 0 {
		var models []alertDBModel
		if err := json.Unmarshal(run.Alerts, &models); err != nil {
			return nil, err
		}
		for _, m := range models {
			alerts = append(alerts, entity.FiringAlert{
				Name:     m.Name,
				Severity: m.Severity,
				Summary:  m.Summary,
				ActiveAt: m.ActiveAt,
			})
		}
	}

	return entity.Reconstruct(run.ID, run.GeneratedAt, entries, alerts), nil
}

// ScanRunRow сканирует строку БД в RunDBModel
func ScanRunRow(row interface {
	Scan(dest ...interface{}) error
}) (*RunDBModel, error) {
	var model RunDBModel
	var alerts sql.NullString

	err := row.Scan(
		&model.ID,
		&model.GeneratedAt,
		&model.Overall,
		&model.IssueCount,
		&model.Warnings,
		&alerts,
		&model.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	if alerts.Valid {
		model.Alerts = []byte(alerts.String)
	}

	return &model, nil
}
