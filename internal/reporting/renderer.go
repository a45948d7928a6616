// Package reporting рендерит результаты evaluation run'ов в плоский текст.
// Рендеринг детерминирован: одинаковый результат дает байт-в-байт одинаковый
// отчет (время берется из result, не из часов).
package reporting

import (
	"fmt"
	"strings"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

const timeLayout = "2006-01-02 15:04:05 UTC"

// Renderer строит текстовые отчеты о здоровье кластера
type Renderer struct{}

// NewRenderer создает новый Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Daily рендерит отчет по одному run'у: заголовок, Node Status,
// Resource Usage, Pod Status, Log Scan, Active Alerts, итоговая строка.
func (r *Renderer) Daily(result *entity.EvaluationResult) string {
	var b strings.Builder

	r.writeHeader(&b, "Daily Cluster Health Report", result)
	r.writeBody(&b, result)
	r.writeFooter(&b, result)

	return b.String()
}

// Weekly рендерит недельный отчет: заголовок периода, динамика по run'ам
// за период, затем полное тело последнего run'а.
func (r *Renderer) Weekly(latest *entity.EvaluationResult, history []*entity.EvaluationResult) string {
	var b strings.Builder

	r.writeHeader(&b, "Weekly Cluster Health Report", latest)
	writeTrend(&b, history)
	r.writeBody(&b, latest)
	r.writeFooter(&b, latest)

	return b.String()
}

func (r *Renderer) writeHeader(b *strings.Builder, title string, result *entity.EvaluationResult) {
	fmt.Fprintf(b, "=== %s ===\n", title)
	fmt.Fprintf(b, "Generated: %s\n", result.GeneratedAt().UTC().Format(timeLayout))
	fmt.Fprintf(b, "Overall: %s (%d critical, %d warnings)\n",
		result.Overall().String(), result.IssueCount(), result.WarningCount())
}

func (r *Renderer) writeBody(b *strings.Builder, result *entity.EvaluationResult) {
	b.WriteString("\n--- Node Status ---\n")
	writeEntries(b, result.EntriesByCategory(valueobject.CategoryAvailability))

	b.WriteString("\n--- Resource Usage ---\n")
	var resources []entity.EvaluationEntry
	for _, category := range valueobject.ResourceCategories() {
		resources = append(resources, result.EntriesByCategory(category)...)
	}
	writeEntries(b, resources)

	b.WriteString("\n--- Pod Status ---\n")
	writeEntries(b, result.EntriesByCategory(valueobject.CategoryPods))

	// секция появляется только если log check'и вообще настроены
	if logs := result.EntriesByCategory(valueobject.CategoryLogs); len(logs) > 0 {
		b.WriteString("\n--- Log Scan ---\n")
		writeEntries(b, logs)
	}

	b.WriteString("\n--- Active Alerts ---\n")
	writeAlerts(b, result.Alerts())
}

func (r *Renderer) writeFooter(b *strings.Builder, result *entity.EvaluationResult) {
	b.WriteString("\n")
	switch result.Overall() {
	case valueobject.StatusUnhealthy:
		fmt.Fprintf(b, "Cluster is UNHEALTHY: %d check(s) critical.\n", result.IssueCount())
	case valueobject.StatusWarning:
		fmt.Fprintf(b, "Cluster is degraded: %d check(s) in warning or unknown state.\n", result.WarningCount())
	default:
		b.WriteString("All checks passed.\n")
	}
}

func writeEntries(b *strings.Builder, entries []entity.EvaluationEntry) {
	if len(entries) == 0 {
		b.WriteString("(no checks)\n")
		return
	}

	for _, entry := range entries {
		value, present := entry.Sample().Value()
		// отсутствие данных печатается явно, а не пропуском строки
		if !present {
			fmt.Fprintf(b, "%-24s %-24s %-10s no data\n",
				entry.TargetName(), entry.CheckName(), entry.Verdict().String())
			continue
		}
		fmt.Fprintf(b, "%-24s %-24s %-10s %.2f%s\n",
			entry.TargetName(), entry.CheckName(), entry.Verdict().String(), value, entry.Unit())
	}
}

func writeAlerts(b *strings.Builder, alerts []entity.FiringAlert) {
	if len(alerts) == 0 {
		b.WriteString("(none)\n")
		return
	}

	for _, alert := range alerts {
		line := fmt.Sprintf("[%s] %s", strings.ToUpper(alert.Severity), alert.Name)
		if alert.Summary != "" {
			line += ": " + alert.Summary
		}
		b.WriteString(line + "\n")
	}
}
