package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

// dayStats - свертка run'ов одного календарного дня (UTC)
type dayStats struct {
	runs      int
	unhealthy int
	warning   int
	issues    int
}

// writeTrend печатает динамику по дням периода: количество run'ов,
// сколько из них были деградированы и сумма critical за день.
func writeTrend(b *strings.Builder, history []*entity.EvaluationResult) {
	b.WriteString("\n--- Trend ---\n")

	if len(history) == 0 {
		b.WriteString("(no history)\n")
		return
	}

	byDay := make(map[string]*dayStats)
	days := make([]string, 0)

	for _, result := range history {
		day := result.GeneratedAt().UTC().Format("2006-01-02")
		stats, ok := byDay[day]
		if !ok {
			stats = &dayStats{}
			byDay[day] = stats
			days = append(days, day)
		}

		stats.runs++
		stats.issues += result.IssueCount()
		switch result.Overall() {
		case valueobject.StatusUnhealthy:
			stats.unhealthy++
		case valueobject.StatusWarning:
			stats.warning++
		}
	}

	sort.Strings(days)

	unhealthyDays := 0
	for _, day := range days {
		stats := byDay[day]
		if stats.unhealthy > 0 {
			unhealthyDays++
		}
		fmt.Fprintf(b, "%s  runs=%d  unhealthy=%d  warning=%d  critical_total=%d\n",
			day, stats.runs, stats.unhealthy, stats.warning, stats.issues)
	}

	fmt.Fprintf(b, "Unhealthy days: %d of %d\n", unhealthyDays, len(days))
}
