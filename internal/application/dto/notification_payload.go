package dto

import (
	"fmt"
	"strings"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
)

// maxCriticalLines ограничивает количество строк деталей в уведомлении,
// чтобы не упереться в лимит транспорта на каждом run'е
const maxCriticalLines = 10

// NotificationPayload представляет текст уведомления о деградации кластера
type NotificationPayload struct {
	Content string
}

// NewNotificationPayload строит текст уведомления из результата run'а.
// Формат: заголовок со статусом и счетчиками, затем до maxCriticalLines
// критических записей (target, check, значение).
func NewNotificationPayload(result *entity.EvaluationResult) NotificationPayload {
	var b strings.Builder

	fmt.Fprintf(&b, "Cluster health: %s (%d critical, %d warnings) at %s\n",
		result.Overall().String(),
		result.IssueCount(),
		result.WarningCount(),
		result.GeneratedAt().UTC().Format("2006-01-02 15:04:05 UTC"))

	critical := result.CriticalEntries()
	shown := len(critical)
	if shown > maxCriticalLines {
		shown = maxCriticalLines
	}

	for _, entry := range critical[:shown] {
		if value, present := entry.Sample().Value(); present {
			fmt.Fprintf(&b, "- %s / %s: %.2f%s\n", entry.TargetName(), entry.CheckName(), value, entry.Unit())
		} else {
			fmt.Fprintf(&b, "- %s / %s: no data\n", entry.TargetName(), entry.CheckName())
		}
	}

	if hidden := len(critical) - shown; hidden > 0 {
		fmt.Fprintf(&b, "... and %d more\n", hidden)
	}

	return NotificationPayload{Content: b.String()}
}
