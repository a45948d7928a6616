package valueobject

import "errors"

// Verdict представляет классификацию одной пары (Check, Target) (Value Object)
type Verdict string

const (
	VerdictOK       Verdict = "OK"
	VerdictWarning  Verdict = "WARNING"
	VerdictCritical Verdict = "CRITICAL"
	// VerdictUnknown ставится когда источник недоступен или не вернул данных
	// для target'а, который обязан отчитываться. Это не то же самое, что OK.
	VerdictUnknown Verdict = "UNKNOWN"
)

// Validate проверяет валидность вердикта
func (v Verdict) Validate() error {
	switch v {
	case VerdictOK, VerdictWarning, VerdictCritical, VerdictUnknown:
		return nil
	default:
		return errors.New("invalid verdict")
	}
}

// String возвращает строковое представление
func (v Verdict) String() string {
	return string(v)
}

// rank задает порядок эскалации: OK < WARNING < UNKNOWN < CRITICAL.
// UNKNOWN хуже WARNING: полностью замолчавший target - более сильный сигнал,
// чем превышенный порог.
func (v Verdict) rank() int {
	switch v {
	case VerdictWarning:
		return 1
	case VerdictUnknown:
		return 2
	case VerdictCritical:
		return 3
	default:
		return 0
	}
}

// Degraded возвращает true для вердиктов, которые переводят run в WARNING
func (v Verdict) Degraded() bool {
	return v == VerdictWarning || v == VerdictUnknown
}

// Worse возвращает худший из двух вердиктов
func Worse(a, b Verdict) Verdict {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// OverallStatus представляет агрегированный статус одного evaluation run
type OverallStatus string

const (
	StatusHealthy   OverallStatus = "HEALTHY"
	StatusWarning   OverallStatus = "WARNING"
	StatusUnhealthy OverallStatus = "UNHEALTHY"
)

// Validate проверяет валидность статуса
func (s OverallStatus) Validate() error {
	switch s {
	case StatusHealthy, StatusWarning, StatusUnhealthy:
		return nil
	default:
		return errors.New("invalid overall status")
	}
}

// String возвращает строковое представление
func (s OverallStatus) String() string {
	return string(s)
}

// ExitCode возвращает код завершения процесса по контракту CLI:
// 0 - healthy, 1 - unhealthy (есть critical), 2 - только warnings.
func (s OverallStatus) ExitCode() int {
	switch s {
	case StatusUnhealthy:
		return 1
	case StatusWarning:
		return 2
	default:
		return 0
	}
}

// worse возвращает худший из двух статусов
func (s OverallStatus) worse(other OverallStatus) OverallStatus {
	if s == StatusUnhealthy || other == StatusUnhealthy {
		return StatusUnhealthy
	}
	if s == StatusWarning || other == StatusWarning {
		return StatusWarning
	}
	return StatusHealthy
}

// WorstStatus возвращает худший статус из списка (HEALTHY для пустого списка)
func WorstStatus(statuses []OverallStatus) OverallStatus {
	worst := StatusHealthy
	for _, s := range statuses {
		worst = worst.worse(s)
	}
	return worst
}

// OverallFromVerdicts вычисляет статус по монотонному правилу:
// UNHEALTHY если есть хотя бы один CRITICAL, иначе WARNING если есть
// WARNING или UNKNOWN, иначе HEALTHY.
func OverallFromVerdicts(verdicts []Verdict) OverallStatus {
	status := StatusHealthy
	for _, v := range verdicts {
		switch {
		case v == VerdictCritical:
			return StatusUnhealthy
		case v.Degraded():
			status = StatusWarning
		}
	}
	return status
}
