// healthcheck - разовый прогон оценки кластера без сервера и БД.
// Печатает daily отчет в stdout и завершает процесс кодом по контракту CLI:
// 0 - healthy, 1 - unhealthy, 2 - warnings.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
	"github.com/dreschagin/cluster-health-reporter/internal/application/usecase"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/service"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/apihealth"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/loki"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/promql"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/registry"
	k8sRegistry "github.com/dreschagin/cluster-health-reporter/internal/infrastructure/registry/k8s"
	"github.com/dreschagin/cluster-health-reporter/internal/reporting"
	"github.com/dreschagin/cluster-health-reporter/pkg/config"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	source := promql.NewClient(cfg.Source.PrometheusURL, cfg.Source.QueryTimeout)
	probe := apihealth.NewProbe(cfg.Source.APIHealthURL, cfg.Source.QueryTimeout, cfg.Source.APIHealthInsecure)

	var logSource port.LogSource
	if cfg.Source.LokiURL != "" {
		logSource = loki.NewClient(cfg.Source.LokiURL, cfg.Source.LogScanWindow, cfg.Source.QueryTimeout)
	}

	var provider port.TargetProvider
	if cfg.Discovery.Enabled {
		resolver, err := k8sRegistry.NewInClusterResolver(cfg.Discovery.NodeSelector, cfg.Cluster.KubeStateMetricsHost, cfg.Source.LokiURL, log)
		if err != nil {
			log.Error("Failed to initialize node discovery", err)
			os.Exit(1)
		}
		provider = resolver
	} else {
		static, err := registry.NewStaticProvider(cfg.Cluster.Nodes, cfg.Cluster.KubeStateMetricsHost, cfg.Source.LokiURL)
		if err != nil {
			log.Error("Failed to build static target registry", err)
			os.Exit(1)
		}
		provider = static
	}

	checks, err := usecase.BuildChecks(cfg)
	if err != nil {
		log.Error("Failed to build check catalog", err)
		os.Exit(1)
	}

	runUC := usecase.NewRunHealthCheckUseCase(
		source,
		probe,
		provider,
		logSource,
		checks,
		service.NewVerdictClassifier(),
		cfg.Evaluation.Workers,
		cfg.Evaluation.QueryQPS,
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Evaluation.Deadline)
	defer cancel()

	result, err := runUC.Execute(ctx)
	if err != nil {
		log.Error("Evaluation failed", err)
		os.Exit(1)
	}

	fmt.Print(reporting.NewRenderer().Daily(result))

	os.Exit(result.Overall().ExitCode())
}
