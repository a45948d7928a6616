package entity

import "time"

// Sample представляет результат вычисления одного Check для одного Target.
// Создается один раз за run и не мутирует после создания. Отсутствие данных
// кодируется явно, а не нулевым значением: здоровый ноль и "нет данных" -
// разные исходы.
type Sample struct {
	value   float64
	present bool
	takenAt time.Time
}

// NewSample создает sample с присутствующим значением
func NewSample(value float64, takenAt time.Time) Sample {
	return Sample{
		value:   value,
		present: true,
		takenAt: takenAt,
	}
}

// NewMissingSample создает явный маркер отсутствия данных
func NewMissingSample(takenAt time.Time) Sample {
	return Sample{
		present: false,
		takenAt: takenAt,
	}
}

// Value возвращает значение и флаг его присутствия
func (s Sample) Value() (float64, bool) {
	return s.value, s.present
}

// Present возвращает true, если значение получено от источника
func (s Sample) Present() bool {
	return s.present
}

// TakenAt возвращает время получения sample'а
func (s Sample) TakenAt() time.Time {
	return s.takenAt
}
