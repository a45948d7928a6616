package valueobject

import "errors"

// TargetKind представляет тип наблюдаемой сущности (Value Object)
type TargetKind string

const (
	// KindNode - узел кластера, отчитывается через node_exporter
	KindNode TargetKind = "node"
	// KindCadvisor - источник контейнерных метрик на узле
	KindCadvisor TargetKind = "cadvisor"
	// KindKubeStateMetrics - источник объектных метрик кластера
	KindKubeStateMetrics TargetKind = "kube-state-metrics"
	// KindAPIEndpoint - healthz endpoint apiserver'а
	KindAPIEndpoint TargetKind = "api-endpoint"
	// KindLogSource - backend логов кластера (Loki)
	KindLogSource TargetKind = "log-source"
)

// Validate проверяет валидность типа target'а
func (k TargetKind) Validate() error {
	switch k {
	case KindNode, KindCadvisor, KindKubeStateMetrics, KindAPIEndpoint, KindLogSource:
		return nil
	default:
		return errors.New("invalid target kind")
	}
}

// String возвращает строковое представление
func (k TargetKind) String() string {
	return string(k)
}

// AllTargetKinds возвращает список всех допустимых типов
func AllTargetKinds() []TargetKind {
	return []TargetKind{KindNode, KindCadvisor, KindKubeStateMetrics, KindAPIEndpoint, KindLogSource}
}
