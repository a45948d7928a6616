package usecase

import (
	"fmt"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
	"github.com/dreschagin/cluster-health-reporter/pkg/config"
)

// BuildChecks строит каталог check'ов из конфигурации порогов.
// Каталог фиксируется на старте процесса и не меняется между run'ами.
// Плейсхолдер %s в запросах заменяется на instance target'а (QueryFor).
func BuildChecks(cfg *config.Config) ([]*entity.Check, error) {
	missingUnknown := valueobject.VerdictUnknown

	availability, err := valueobject.NewAvailabilityPolicy(missingUnknown)
	if err != nil {
		return nil, err
	}
	informational, err := valueobject.NewInformationalPolicy(missingUnknown)
	if err != nil {
		return nil, err
	}
	// apiserver обязан отвечать: отсутствие ответа - CRITICAL, не UNKNOWN
	blockingAvailability, err := valueobject.NewAvailabilityPolicy(valueobject.VerdictCritical)
	if err != nil {
		return nil, err
	}

	t := cfg.Thresholds
	cpuPolicy, err := valueobject.NewThresholdPolicy(
		valueobject.DirectionAbove, floatPtr(t.CPUWarningAt), floatPtr(t.CPUCriticalAt), missingUnknown)
	if err != nil {
		return nil, err
	}
	memoryPolicy, err := valueobject.NewThresholdPolicy(
		valueobject.DirectionAbove, floatPtr(t.MemoryWarningAt), floatPtr(t.MemoryCriticalAt), missingUnknown)
	if err != nil {
		return nil, err
	}
	diskPolicy, err := valueobject.NewThresholdPolicy(
		valueobject.DirectionAbove, floatPtr(t.DiskWarningAt), floatPtr(t.DiskCriticalAt), missingUnknown)
	if err != nil {
		return nil, err
	}
	podsFailedPolicy, err := valueobject.NewThresholdPolicy(
		valueobject.DirectionAbove, floatPtr(t.PodsFailedWarning), nil, missingUnknown)
	if err != nil {
		return nil, err
	}
	// Совпадения в логах дают не больше WARNING, недоступность backend'а
	// логов не деградирует кластер
	logScanPolicy, err := valueobject.NewThresholdPolicy(
		valueobject.DirectionAbove, floatPtr(1), nil, valueobject.VerdictOK)
	if err != nil {
		return nil, err
	}

	nodeJob := cfg.Cluster.NodeExporterJob
	cadvisorJob := cfg.Cluster.CadvisorJob

	specs := []struct {
		name     string
		kind     valueobject.TargetKind
		query    string
		policy   valueobject.ThresholdPolicy
		category valueobject.CheckCategory
		unit     string
		blocking bool
	}{
		{
			name:     "node-up",
			kind:     valueobject.KindNode,
			query:    fmt.Sprintf(`up{job=%q, instance="%%s"}`, nodeJob),
			policy:   availability,
			category: valueobject.CategoryAvailability,
		},
		{
			name:     "cpu-usage",
			kind:     valueobject.KindNode,
			query:    fmt.Sprintf(`100 - (avg by (instance) (rate(node_cpu_seconds_total{job=%q, mode="idle", instance="%%s"}[5m])) * 100)`, nodeJob),
			policy:   cpuPolicy,
			category: valueobject.CategoryCPU,
			unit:     "%",
		},
		{
			name:     "memory-usage",
			kind:     valueobject.KindNode,
			query:    `(1 - (node_memory_MemAvailable_bytes{instance="%s"} / node_memory_MemTotal_bytes{instance="%s"})) * 100`,
			policy:   memoryPolicy,
			category: valueobject.CategoryMemory,
			unit:     "%",
		},
		{
			name:     "disk-usage",
			kind:     valueobject.KindNode,
			query:    `(1 - (node_filesystem_avail_bytes{instance="%s", mountpoint="/"} / node_filesystem_size_bytes{instance="%s", mountpoint="/"})) * 100`,
			policy:   diskPolicy,
			category: valueobject.CategoryDisk,
			unit:     "%",
		},
		{
			name:     "cadvisor-up",
			kind:     valueobject.KindCadvisor,
			query:    fmt.Sprintf(`up{job=%q, instance="%%s"}`, cadvisorJob),
			policy:   availability,
			category: valueobject.CategoryAvailability,
		},
		{
			name:     "kube-state-metrics-up",
			kind:     valueobject.KindKubeStateMetrics,
			query:    `up{job="kube-state-metrics"}`,
			policy:   availability,
			category: valueobject.CategoryAvailability,
		},
		{
			name:     "pods-running",
			kind:     valueobject.KindKubeStateMetrics,
			query:    `sum(kube_pod_status_phase{phase="Running"})`,
			policy:   informational,
			category: valueobject.CategoryPods,
		},
		{
			name:     "pods-pending",
			kind:     valueobject.KindKubeStateMetrics,
			query:    `sum(kube_pod_status_phase{phase="Pending"})`,
			policy:   informational,
			category: valueobject.CategoryPods,
		},
		{
			name:     "pods-failed",
			kind:     valueobject.KindKubeStateMetrics,
			query:    `sum(kube_pod_status_phase{phase="Failed"})`,
			policy:   podsFailedPolicy,
			category: valueobject.CategoryPods,
		},
		{
			name:     "apiserver-healthz",
			kind:     valueobject.KindAPIEndpoint,
			policy:   blockingAvailability,
			category: valueobject.CategoryAvailability,
			blocking: true,
		},
		{
			name:     "logs-kubelet-failed",
			kind:     valueobject.KindLogSource,
			query:    `{job="node_exporter"} |~ "kubelet.*failed"`,
			policy:   logScanPolicy,
			category: valueobject.CategoryLogs,
		},
		{
			name:     "logs-apiserver-error",
			kind:     valueobject.KindLogSource,
			query:    `{job="node_exporter"} |~ "apiserver.*error"`,
			policy:   logScanPolicy,
			category: valueobject.CategoryLogs,
		},
		{
			name:     "logs-etcd-error",
			kind:     valueobject.KindLogSource,
			query:    `{job="node_exporter"} |~ "etcd.*error"`,
			policy:   logScanPolicy,
			category: valueobject.CategoryLogs,
		},
		{
			name:     "logs-scheduler-failed",
			kind:     valueobject.KindLogSource,
			query:    `{job="node_exporter"} |~ "scheduler.*failed"`,
			policy:   logScanPolicy,
			category: valueobject.CategoryLogs,
		},
		{
			name:     "logs-controller-error",
			kind:     valueobject.KindLogSource,
			query:    `{job="node_exporter"} |~ "controller.*error"`,
			policy:   logScanPolicy,
			category: valueobject.CategoryLogs,
		},
	}

	checks := make([]*entity.Check, 0, len(specs))
	for _, s := range specs {
		check, err := entity.NewCheck(s.name, s.kind, s.query, s.policy, s.category, s.unit, s.blocking)
		if err != nil {
			return nil, fmt.Errorf("failed to build check %s: %w", s.name, err)
		}
		checks = append(checks, check)
	}

	return checks, nil
}

func floatPtr(v float64) *float64 { return &v }
