package entity

import (
	"sort"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
	"github.com/google/uuid"
)

// EvaluationEntry представляет одну строку результата: (Target, Check, Verdict).
// Хранит идентичность target'а и check'а по значению, чтобы результат можно
// было восстановить из хранилища без полной конфигурации check'ов.
type EvaluationEntry struct {
	targetName string
	targetKind valueobject.TargetKind
	checkName  string
	category   valueobject.CheckCategory
	unit       string
	sample     Sample
	verdict    valueobject.Verdict
}

// NewEvaluationEntry создает запись результата из пары (Check, Target)
func NewEvaluationEntry(target *Target, check *Check, sample Sample, verdict valueobject.Verdict) EvaluationEntry {
	return EvaluationEntry{
		targetName: target.Name(),
		targetKind: target.Kind(),
		checkName:  check.Name(),
		category:   check.Category(),
		unit:       check.Unit(),
		sample:     sample,
		verdict:    verdict,
	}
}

// ReconstructEntry восстанавливает запись из хранилища (для Repository)
func ReconstructEntry(
	targetName string,
	targetKind valueobject.TargetKind,
	checkName string,
	category valueobject.CheckCategory,
	unit string,
	sample Sample,
	verdict valueobject.Verdict,
) EvaluationEntry {
	return EvaluationEntry{
		targetName: targetName,
		targetKind: targetKind,
		checkName:  checkName,
		category:   category,
		unit:       unit,
		sample:     sample,
		verdict:    verdict,
	}
}

// TargetName возвращает имя target'а
func (e EvaluationEntry) TargetName() string { return e.targetName }

// TargetKind возвращает тип target'а
func (e EvaluationEntry) TargetKind() valueobject.TargetKind { return e.targetKind }

// CheckName возвращает имя check'а
func (e EvaluationEntry) CheckName() string { return e.checkName }

// Category возвращает секцию отчета
func (e EvaluationEntry) Category() valueobject.CheckCategory { return e.category }

// Unit возвращает единицу измерения
func (e EvaluationEntry) Unit() string { return e.unit }

// Sample возвращает sample записи
func (e EvaluationEntry) Sample() Sample { return e.sample }

// Verdict возвращает вердикт записи
func (e EvaluationEntry) Verdict() valueobject.Verdict { return e.verdict }

// FiringAlert представляет активный alert из alerting API backend'а.
// Сырые данные от источника, по аналогии с port.QuerySample.
type FiringAlert struct {
	Name     string
	Severity string
	Summary  string
	ActiveAt time.Time
}

// TargetSummary представляет свертку по одному target'у:
// худший вердикт среди всех его check'ов.
type TargetSummary struct {
	TargetName string
	TargetKind valueobject.TargetKind
	Worst      valueobject.Verdict
}

// EvaluationResult представляет результат одного evaluation run (Aggregate Root)
// Создается один раз конструктором, после этого не мутирует. Все производные
// величины (порядок, счетчики, общий статус) вычисляются при создании.
type EvaluationResult struct {
	id           string
	generatedAt  time.Time
	entries      []EvaluationEntry
	alerts       []FiringAlert
	issueCount   int
	warningCount int
	overall      valueobject.OverallStatus
}

// NewEvaluationResult создает результат run'а.
// Записи детерминированно сортируются по (target, check), счетчики считаются
// по каждой паре отдельно (без дедупликации по target'у), общий статус
// выводится по монотонному правилу худшего вердикта.
func NewEvaluationResult(generatedAt time.Time, entries []EvaluationEntry, alerts []FiringAlert) *EvaluationResult {
	return build(uuid.New().String(), generatedAt, entries, alerts)
}

// Reconstruct восстанавливает результат из хранилища (для Repository).
// Счетчики и статус пересчитываются заново: хранилище не является
// источником истины для производных величин.
func Reconstruct(id string, generatedAt time.Time, entries []EvaluationEntry, alerts []FiringAlert) *EvaluationResult {
	return build(id, generatedAt, entries, alerts)
}

func build(id string, generatedAt time.Time, entries []EvaluationEntry, alerts []FiringAlert) *EvaluationResult {
	sorted := append([]EvaluationEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].targetName != sorted[j].targetName {
			return sorted[i].targetName < sorted[j].targetName
		}
		if sorted[i].checkName != sorted[j].checkName {
			return sorted[i].checkName < sorted[j].checkName
		}
		return sorted[i].targetKind < sorted[j].targetKind
	})

	var issueCount, warningCount int
	verdicts := make([]valueobject.Verdict, 0, len(sorted))
	for _, entry := range sorted {
		verdicts = append(verdicts, entry.verdict)
		switch {
		case entry.verdict == valueobject.VerdictCritical:
			issueCount++
		case entry.verdict.Degraded():
			warningCount++
		}
	}

	return &EvaluationResult{
		id:           id,
		generatedAt:  generatedAt,
		entries:      sorted,
		alerts:       append([]FiringAlert(nil), alerts...),
		issueCount:   issueCount,
		warningCount: warningCount,
		overall:      valueobject.OverallFromVerdicts(verdicts),
	}
}

// ID возвращает идентификатор run'а
func (r *EvaluationResult) ID() string {
	return r.id
}

// GeneratedAt возвращает время run'а
func (r *EvaluationResult) GeneratedAt() time.Time {
	return r.generatedAt
}

// Entries возвращает копию упорядоченных записей
func (r *EvaluationResult) Entries() []EvaluationEntry {
	return append([]EvaluationEntry(nil), r.entries...)
}

// EntriesByCategory возвращает записи одной секции отчета (с сохранением порядка)
func (r *EvaluationResult) EntriesByCategory(category valueobject.CheckCategory) []EvaluationEntry {
	var filtered []EvaluationEntry
	for _, entry := range r.entries {
		if entry.category == category {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// Alerts возвращает копию активных alerts
func (r *EvaluationResult) Alerts() []FiringAlert {
	return append([]FiringAlert(nil), r.alerts...)
}

// IssueCount возвращает количество CRITICAL вердиктов
func (r *EvaluationResult) IssueCount() int {
	return r.issueCount
}

// WarningCount возвращает количество WARNING и UNKNOWN вердиктов
func (r *EvaluationResult) WarningCount() int {
	return r.warningCount
}

// Overall возвращает агрегированный статус run'а
func (r *EvaluationResult) Overall() valueobject.OverallStatus {
	return r.overall
}

// targetKey идентифицирует target в свертке. Имя недостаточно:
// node и cadvisor target'ы одного узла делят hostname.
type targetKey struct {
	name string
	kind valueobject.TargetKind
}

// TargetSummaries возвращает свертку по target'ам: худший вердикт каждого.
// Порядок детерминирован (по имени, затем по типу target'а).
func (r *EvaluationResult) TargetSummaries() []TargetSummary {
	worst := make(map[targetKey]valueobject.Verdict)
	keys := make([]targetKey, 0)

	for _, entry := range r.entries {
		key := targetKey{name: entry.targetName, kind: entry.targetKind}
		if _, seen := worst[key]; !seen {
			worst[key] = entry.verdict
			keys = append(keys, key)
			continue
		}
		worst[key] = valueobject.Worse(worst[key], entry.verdict)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].kind < keys[j].kind
	})

	summaries := make([]TargetSummary, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, TargetSummary{
			TargetName: key.name,
			TargetKind: key.kind,
			Worst:      worst[key],
		})
	}
	return summaries
}

// CriticalEntries возвращает записи с вердиктом CRITICAL (с сохранением порядка)
func (r *EvaluationResult) CriticalEntries() []EvaluationEntry {
	var critical []EvaluationEntry
	for _, entry := range r.entries {
		if entry.verdict == valueobject.VerdictCritical {
			critical = append(critical, entry)
		}
	}
	return critical
}
