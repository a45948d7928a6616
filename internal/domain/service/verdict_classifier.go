package service

import (
	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

// VerdictClassifier классифицирует sample по политике check'а (Domain Service)
type VerdictClassifier struct{}

// NewVerdictClassifier создает новый VerdictClassifier
func NewVerdictClassifier() *VerdictClassifier {
	return &VerdictClassifier{}
}

// Classify возвращает вердикт для sample'а по политике.
// Отсутствие данных классифицируется по MissingDataVerdict политики и
// никогда не отбрасывается молча. Сравнение с порогом включает границу
// с "плохой" стороны (>= для above, <= для below): значение ровно на
// пороге получает худшую из двух смежных степеней.
func (c *VerdictClassifier) Classify(sample entity.Sample, policy valueobject.ThresholdPolicy) valueobject.Verdict {
	value, present := sample.Value()
	if !present {
		return policy.MissingDataVerdict()
	}

	if policy.Mode() == valueobject.ModeAvailability {
		if value == 1 {
			return valueobject.VerdictOK
		}
		return valueobject.VerdictCritical
	}

	if breached(value, policy.CriticalAt(), policy.Direction()) {
		return valueobject.VerdictCritical
	}
	if breached(value, policy.WarningAt(), policy.Direction()) {
		return valueobject.VerdictWarning
	}
	return valueobject.VerdictOK
}

func breached(value float64, threshold *float64, direction valueobject.Direction) bool {
	if threshold == nil {
		return false
	}
	if direction == valueobject.DirectionBelow {
		return value <= *threshold
	}
	return value >= *threshold
}
