// Package registry реализует port.TargetProvider: реестр target'ов,
// по которому evaluator отличает "метрики нет" от "target не известен".
package registry

import (
	"context"
	"fmt"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

// Порты экспортеров на узлах кластера
const (
	nodeExporterPort = "9100"
	cadvisorPort     = "4194"
)

// StaticProvider строит реестр из статического списка узлов конфигурации.
// Состав фиксируется на старте и не меняется между run'ами.
type StaticProvider struct {
	targets []*entity.Target
}

// NewStaticProvider создает реестр: для каждого узла - node и cadvisor
// target'ы, плюс один kube-state-metrics и один apiserver target.
// Пустой logSourceHost означает, что backend логов не настроен.
func NewStaticProvider(nodes []string, kubeStateMetricsHost, logSourceHost string) (*StaticProvider, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("node list cannot be empty")
	}

	targets := make([]*entity.Target, 0, len(nodes)*2+2)

	for _, node := range nodes {
		nodeTarget, err := entity.NewTarget(node, node+":"+nodeExporterPort, valueobject.KindNode)
		if err != nil {
			return nil, fmt.Errorf("invalid node %q: %w", node, err)
		}
		targets = append(targets, nodeTarget)

		cadvisorTarget, err := entity.NewTarget(node, node+":"+cadvisorPort, valueobject.KindCadvisor)
		if err != nil {
			return nil, fmt.Errorf("invalid node %q: %w", node, err)
		}
		targets = append(targets, cadvisorTarget)
	}

	ksmTarget, err := entity.NewTarget("kube-state-metrics", kubeStateMetricsHost, valueobject.KindKubeStateMetrics)
	if err != nil {
		return nil, fmt.Errorf("invalid kube-state-metrics host: %w", err)
	}
	targets = append(targets, ksmTarget)

	apiTarget, err := entity.NewTarget("apiserver", "apiserver", valueobject.KindAPIEndpoint)
	if err != nil {
		return nil, err
	}
	targets = append(targets, apiTarget)

	if logSourceHost != "" {
		logTarget, err := entity.NewTarget("loki", logSourceHost, valueobject.KindLogSource)
		if err != nil {
			return nil, fmt.Errorf("invalid log source host: %w", err)
		}
		targets = append(targets, logTarget)
	}

	return &StaticProvider{targets: targets}, nil
}

// Targets возвращает полный список target'ов
func (p *StaticProvider) Targets(_ context.Context) ([]*entity.Target, error) {
	return append([]*entity.Target(nil), p.targets...), nil
}
