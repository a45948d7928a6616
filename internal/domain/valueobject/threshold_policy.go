package valueobject

import "errors"

// Direction задает сторону деградации для числовых порогов
type Direction string

const (
	// DirectionAbove - значение выше порога означает деградацию (CPU, memory, disk)
	DirectionAbove Direction = "above"
	// DirectionBelow - значение ниже порога означает деградацию
	DirectionBelow Direction = "below"
)

// PolicyMode задает способ классификации значения
type PolicyMode string

const (
	// ModeThreshold - сравнение с warning/critical порогами
	ModeThreshold PolicyMode = "threshold"
	// ModeAvailability - gauge 0/1: ровно 1 означает OK, все остальное CRITICAL
	ModeAvailability PolicyMode = "availability"
)

// ThresholdPolicy описывает политику классификации одного Check (Value Object)
// Иммутабельный объект
type ThresholdPolicy struct {
	mode        PolicyMode
	direction   Direction
	warningAt   *float64
	criticalAt  *float64
	missingData Verdict
}

// NewThresholdPolicy создает пороговую политику с валидацией.
// warningAt и criticalAt опциональны, но хотя бы один порог обязателен.
func NewThresholdPolicy(direction Direction, warningAt, criticalAt *float64, missingData Verdict) (ThresholdPolicy, error) {
	if direction != DirectionAbove && direction != DirectionBelow {
		return ThresholdPolicy{}, errors.New("invalid direction")
	}
	if warningAt == nil && criticalAt == nil {
		return ThresholdPolicy{}, errors.New("at least one threshold is required")
	}
	if warningAt != nil && criticalAt != nil {
		if direction == DirectionAbove && *warningAt > *criticalAt {
			return ThresholdPolicy{}, errors.New("warning threshold must not exceed critical threshold")
		}
		if direction == DirectionBelow && *warningAt < *criticalAt {
			return ThresholdPolicy{}, errors.New("critical threshold must not exceed warning threshold")
		}
	}
	if err := missingData.Validate(); err != nil {
		return ThresholdPolicy{}, err
	}

	return ThresholdPolicy{
		mode:        ModeThreshold,
		direction:   direction,
		warningAt:   copyFloat(warningAt),
		criticalAt:  copyFloat(criticalAt),
		missingData: missingData,
	}, nil
}

// NewAvailabilityPolicy создает политику для gauge доступности (up == 1)
func NewAvailabilityPolicy(missingData Verdict) (ThresholdPolicy, error) {
	if err := missingData.Validate(); err != nil {
		return ThresholdPolicy{}, err
	}

	return ThresholdPolicy{
		mode:        ModeAvailability,
		missingData: missingData,
	}, nil
}

// NewInformationalPolicy создает политику без порогов: значение только
// попадает в отчет, вердикт всегда OK (кроме отсутствия данных).
func NewInformationalPolicy(missingData Verdict) (ThresholdPolicy, error) {
	if err := missingData.Validate(); err != nil {
		return ThresholdPolicy{}, err
	}

	return ThresholdPolicy{
		mode:        ModeThreshold,
		direction:   DirectionAbove,
		missingData: missingData,
	}, nil
}

// Mode возвращает способ классификации
func (p ThresholdPolicy) Mode() PolicyMode {
	return p.mode
}

// Direction возвращает сторону деградации
func (p ThresholdPolicy) Direction() Direction {
	return p.direction
}

// WarningAt возвращает warning порог (nil если не задан)
func (p ThresholdPolicy) WarningAt() *float64 {
	return copyFloat(p.warningAt)
}

// CriticalAt возвращает critical порог (nil если не задан)
func (p ThresholdPolicy) CriticalAt() *float64 {
	return copyFloat(p.criticalAt)
}

// MissingDataVerdict возвращает вердикт для отсутствующих данных
func (p ThresholdPolicy) MissingDataVerdict() Verdict {
	return p.missingData
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
