package valueobject

import "errors"

// ReportPeriod определяет вид отчета
type ReportPeriod string

const (
	PeriodDaily  ReportPeriod = "daily"
	PeriodWeekly ReportPeriod = "weekly"
)

// Validate проверяет валидность периода
func (p ReportPeriod) Validate() error {
	switch p {
	case PeriodDaily, PeriodWeekly:
		return nil
	default:
		return errors.New("invalid report period")
	}
}

// String возвращает строковое представление
func (p ReportPeriod) String() string {
	return string(p)
}
