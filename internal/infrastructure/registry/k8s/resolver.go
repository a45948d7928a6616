// Package k8s реализует port.TargetProvider поверх Kubernetes API:
// список узлов кластера запрашивается у apiserver'а, а не задается статически.
package k8s

import (
	"context"
	"fmt"
	"sort"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

const (
	nodeExporterPort = "9100"
	cadvisorPort     = "4194"
)

// Resolver строит реестр target'ов по списку узлов из Kubernetes API
type Resolver struct {
	client               kubernetes.Interface
	nodeSelector         string
	kubeStateMetricsHost string
	logSourceHost        string
	logger               *logger.Logger
}

// NewResolver создает Resolver с готовым клиентом (для тестов - fake clientset).
// Пустой logSourceHost означает, что backend логов не настроен.
func NewResolver(client kubernetes.Interface, nodeSelector, kubeStateMetricsHost, logSourceHost string, logger *logger.Logger) *Resolver {
	return &Resolver{
		client:               client,
		nodeSelector:         nodeSelector,
		kubeStateMetricsHost: kubeStateMetricsHost,
		logSourceHost:        logSourceHost,
		logger:               logger,
	}
}

// NewInClusterResolver создает Resolver с in-cluster конфигурацией
func NewInClusterResolver(nodeSelector, kubeStateMetricsHost, logSourceHost string, logger *logger.Logger) (*Resolver, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load in-cluster config: %w", err)
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return NewResolver(client, nodeSelector, kubeStateMetricsHost, logSourceHost, logger), nil
}

// Targets возвращает реестр по текущему списку узлов кластера.
// Порядок детерминирован: узлы сортируются по имени.
func (r *Resolver) Targets(ctx context.Context) ([]*entity.Target, error) {
	nodeList, err := r.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{
		LabelSelector: r.nodeSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	if len(nodeList.Items) == 0 {
		return nil, fmt.Errorf("no nodes matched selector %q", r.nodeSelector)
	}

	names := make([]string, 0, len(nodeList.Items))
	for _, node := range nodeList.Items {
		names = append(names, node.Name)
	}
	sort.Strings(names)

	r.logger.Debug("Discovered cluster nodes", "count", len(names), "selector", r.nodeSelector)

	targets := make([]*entity.Target, 0, len(names)*2+2)
	for _, name := range names {
		nodeTarget, err := entity.NewTarget(name, name+":"+nodeExporterPort, valueobject.KindNode)
		if err != nil {
			return nil, fmt.Errorf("invalid node %q: %w", name, err)
		}
		targets = append(targets, nodeTarget)

		cadvisorTarget, err := entity.NewTarget(name, name+":"+cadvisorPort, valueobject.KindCadvisor)
		if err != nil {
			return nil, fmt.Errorf("invalid node %q: %w", name, err)
		}
		targets = append(targets, cadvisorTarget)
	}

	ksmTarget, err := entity.NewTarget("kube-state-metrics", r.kubeStateMetricsHost, valueobject.KindKubeStateMetrics)
	if err != nil {
		return nil, fmt.Errorf("invalid kube-state-metrics host: %w", err)
	}
	targets = append(targets, ksmTarget)

	apiTarget, err := entity.NewTarget("apiserver", "apiserver", valueobject.KindAPIEndpoint)
	if err != nil {
		return nil, err
	}
	targets = append(targets, apiTarget)

	if r.logSourceHost != "" {
		logTarget, err := entity.NewTarget("loki", r.logSourceHost, valueobject.KindLogSource)
		if err != nil {
			return nil, fmt.Errorf("invalid log source host: %w", err)
		}
		targets = append(targets, logTarget)
	}

	return targets, nil
}
