package valueobject

import "errors"

// CheckCategory определяет секцию отчета, в которую попадает Check
type CheckCategory string

const (
	CategoryAvailability CheckCategory = "availability"
	CategoryCPU          CheckCategory = "cpu"
	CategoryMemory       CheckCategory = "memory"
	CategoryDisk         CheckCategory = "disk"
	CategoryPods         CheckCategory = "pods"
	CategoryLogs         CheckCategory = "logs"
)

// Validate проверяет валидность категории
func (c CheckCategory) Validate() error {
	switch c {
	case CategoryAvailability, CategoryCPU, CategoryMemory, CategoryDisk, CategoryPods, CategoryLogs:
		return nil
	default:
		return errors.New("invalid check category")
	}
}

// String возвращает строковое представление
func (c CheckCategory) String() string {
	return string(c)
}

// ResourceCategories возвращает категории секции "Resource Usage"
func ResourceCategories() []CheckCategory {
	return []CheckCategory{CategoryCPU, CategoryMemory, CategoryDisk}
}
