package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Application
	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
	"github.com/dreschagin/cluster-health-reporter/internal/application/usecase"

	// Domain
	"github.com/dreschagin/cluster-health-reporter/internal/domain/service"

	// Infrastructure
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/apihealth"
	redisCache "github.com/dreschagin/cluster-health-reporter/internal/infrastructure/cache/redis"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/loki"
	natsMessaging "github.com/dreschagin/cluster-health-reporter/internal/infrastructure/messaging/nats"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/notification/webhook"
	wsInfra "github.com/dreschagin/cluster-health-reporter/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/observability/cloudwatch"
	dynamoPersistence "github.com/dreschagin/cluster-health-reporter/internal/infrastructure/persistence/dynamodb"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/persistence/postgres"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/promql"
	"github.com/dreschagin/cluster-health-reporter/internal/infrastructure/registry"
	k8sRegistry "github.com/dreschagin/cluster-health-reporter/internal/infrastructure/registry/k8s"
	s3storage "github.com/dreschagin/cluster-health-reporter/internal/infrastructure/storage/s3"

	// Interfaces
	httpInterface "github.com/dreschagin/cluster-health-reporter/internal/interfaces/http"
	"github.com/dreschagin/cluster-health-reporter/internal/interfaces/http/handler"
	"github.com/dreschagin/cluster-health-reporter/internal/interfaces/http/middleware"

	// Shared
	"github.com/dreschagin/cluster-health-reporter/internal/metrics"
	"github.com/dreschagin/cluster-health-reporter/internal/reporting"
	"github.com/dreschagin/cluster-health-reporter/internal/scheduler"
	"github.com/dreschagin/cluster-health-reporter/pkg/config"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	// 1. Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализируем logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting Cluster Health Reporter")

	// 3. Подключаемся к БД
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		log.Error("Failed to ping database", err)
		os.Exit(1)
	}
	log.Info("Database connected successfully")

	// 4. Dependency Injection - Infrastructure Layer

	// Repository
	evaluationRepository := postgres.NewPostgresEvaluationRepository(db)

	// Источник метрик и probe
	source := promql.NewClient(cfg.Source.PrometheusURL, cfg.Source.QueryTimeout)
	if cfg.Source.APIHealthURL == "" {
		log.Warn("API_HEALTH_URL is empty, apiserver-healthz will report CRITICAL")
	}
	probe := apihealth.NewProbe(cfg.Source.APIHealthURL, cfg.Source.QueryTimeout, cfg.Source.APIHealthInsecure)

	// Backend логов (опционально)
	var logSource port.LogSource
	if cfg.Source.LokiURL != "" {
		logSource = loki.NewClient(cfg.Source.LokiURL, cfg.Source.LogScanWindow, cfg.Source.QueryTimeout)
		log.Info("Log scanning enabled", "window", cfg.Source.LogScanWindow.String())
	}

	// Реестр target'ов: in-cluster discovery или статический список
	var provider port.TargetProvider
	if cfg.Discovery.Enabled {
		resolver, err := k8sRegistry.NewInClusterResolver(cfg.Discovery.NodeSelector, cfg.Cluster.KubeStateMetricsHost, cfg.Source.LokiURL, log)
		if err != nil {
			log.Error("Failed to initialize node discovery", err)
			os.Exit(1)
		}
		provider = resolver
		log.Info("Using in-cluster node discovery", "selector", cfg.Discovery.NodeSelector)
	} else {
		static, err := registry.NewStaticProvider(cfg.Cluster.Nodes, cfg.Cluster.KubeStateMetricsHost, cfg.Source.LokiURL)
		if err != nil {
			log.Error("Failed to build static target registry", err)
			os.Exit(1)
		}
		provider = static
		log.Info("Using static target registry", "nodes", len(cfg.Cluster.Nodes))
	}

	// Cache (опционально)
	var cache port.Cache
	if cfg.Redis.Enabled {
		rc, err := redisCache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			log.Error("Failed to connect to redis", err)
			os.Exit(1)
		}
		defer rc.Close()
		cache = rc
		log.Info("Redis cache connected")
	}

	// Event publisher (опционально)
	var events port.EventPublisher
	if cfg.NATS.Enabled {
		publisher, err := natsMessaging.NewPublisher(cfg.NATS.URL, log)
		if err != nil {
			log.Error("Failed to connect to NATS", err)
			os.Exit(1)
		}
		defer publisher.Close()
		events = publisher
		log.Info("NATS publisher connected", "subject", cfg.NATS.Subject)
	}

	// S3 хранилище отчетов (опционально)
	var reportStorage port.ReportStorage
	if cfg.Reports.S3Enabled {
		storage, err := s3storage.NewReportStorage(context.Background(), s3storage.Config{
			Bucket:          cfg.Reports.Bucket,
			Region:          cfg.Reports.Region,
			Endpoint:        cfg.Reports.Endpoint,
			AccessKeyID:     cfg.Reports.AccessKeyID,
			SecretAccessKey: cfg.Reports.SecretAccessKey,
			UsePathStyle:    cfg.Reports.UsePathStyle,
			KeyPrefix:       cfg.Reports.KeyPrefix,
		})
		if err != nil {
			log.Error("Failed to initialize report storage", err)
			os.Exit(1)
		}
		reportStorage = storage
		log.Info("S3 report storage initialized", "bucket", cfg.Reports.Bucket)
	}

	// DynamoDB индекс отчетов (опционально)
	var reportMetadata port.ReportMetadataRepository
	if cfg.DynamoDB.Enabled {
		repo, err := dynamoPersistence.NewReportMetadataRepository(context.Background(), dynamoPersistence.Config{
			TableName:       cfg.DynamoDB.TableName,
			Region:          cfg.DynamoDB.Region,
			Endpoint:        cfg.DynamoDB.Endpoint,
			AccessKeyID:     cfg.DynamoDB.AccessKeyID,
			SecretAccessKey: cfg.DynamoDB.SecretAccessKey,
		})
		if err != nil {
			log.Error("Failed to initialize report metadata repository", err)
			os.Exit(1)
		}
		reportMetadata = repo
		log.Info("DynamoDB report index initialized", "table", cfg.DynamoDB.TableName)
	}

	// CloudWatch observability (опционально)
	var summaryPublisher port.SummaryPublisher
	var issueLogPublisher port.LogPublisher
	if cfg.CloudWatch.Enabled {
		summary, err := cloudwatch.NewSummaryPublisher(context.Background(), cloudwatch.SummaryPublisherConfig{
			Namespace:       cfg.CloudWatch.Namespace,
			Region:          cfg.CloudWatch.Region,
			Endpoint:        cfg.CloudWatch.Endpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
		})
		if err != nil {
			log.Error("Failed to initialize CloudWatch summary publisher", err)
			os.Exit(1)
		}
		summaryPublisher = summary

		issues, err := cloudwatch.NewLogsPublisher(context.Background(), cloudwatch.LogsPublisherConfig{
			LogGroupName:    cfg.CloudWatch.LogGroupName,
			LogStreamName:   cfg.CloudWatch.LogStreamName,
			Region:          cfg.CloudWatch.Region,
			Endpoint:        cfg.CloudWatch.Endpoint,
			AccessKeyID:     cfg.CloudWatch.AccessKeyID,
			SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
			AutoCreate:      true,
		})
		if err != nil {
			log.Error("Failed to initialize CloudWatch logs publisher", err)
			os.Exit(1)
		}
		defer issues.Close(context.Background())
		issueLogPublisher = issues
		log.Info("CloudWatch observability initialized", "namespace", cfg.CloudWatch.Namespace)
	}

	// Prometheus self-metrics
	promRegistry := prometheus.NewRegistry()
	appMetrics := metrics.New(promRegistry)
	metricsHandler := promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})

	// Webhook уведомления (опционально)
	var sender port.PayloadSender
	if cfg.Webhook.Enabled {
		sender = metrics.NewInstrumentedSender(webhook.NewSender(cfg.Webhook.URL, cfg.Webhook.Timeout), appMetrics)
		log.Info("Webhook notifications enabled")
	}

	// WebSocket Hub
	hub := wsInfra.NewHub(log)

	// 5. Dependency Injection - Domain Layer

	classifier := service.NewVerdictClassifier()

	checks, err := usecase.BuildChecks(cfg)
	if err != nil {
		log.Error("Failed to build check catalog", err)
		os.Exit(1)
	}

	// 6. Dependency Injection - Application Layer (Use Cases)

	runHealthCheckUC := usecase.NewRunHealthCheckUseCase(
		source,
		probe,
		provider,
		logSource,
		checks,
		classifier,
		cfg.Evaluation.Workers,
		cfg.Evaluation.QueryQPS,
		log,
	)

	processResultUC := usecase.NewProcessResultUseCase(
		evaluationRepository,
		cache,
		events,
		cfg.NATS.Subject,
		hub,
		summaryPublisher,
		issueLogPublisher,
		sender,
		log,
	)

	getLatestResultUC := usecase.NewGetLatestResultUseCase(
		evaluationRepository,
		cache,
		log,
	)

	generateReportUC := usecase.NewGenerateReportUseCase(
		evaluationRepository,
		reporting.NewRenderer(),
		reportStorage,
		reportMetadata,
		cfg.Reports.KeyPrefix,
		cfg.Reports.RetentionDays,
		log,
	)

	// Runner: оценка по расписанию + self-metrics
	runner := scheduler.NewRunner(
		metrics.NewInstrumentedEvaluator(runHealthCheckUC, appMetrics),
		processResultUC,
		log,
		cfg.Evaluation.Interval,
		cfg.Evaluation.Deadline,
	)

	// 7. Dependency Injection - Interfaces Layer (HTTP Handlers)

	authConfig := middleware.AuthConfig{
		Enabled:     cfg.Security.AuthEnabled,
		BearerToken: cfg.Security.AuthToken,
	}

	healthAPIHandler := handler.NewHealthAPIHandler(getLatestResultUC, runner, log)
	reportAPIHandler := handler.NewReportAPIHandler(generateReportUC, reportMetadata, log)
	websocketHandler := handler.NewWebSocketHandler(hub, cfg.Security.AllowedOrigins, authConfig, log)

	// Router
	router := httpInterface.NewRouter(
		healthAPIHandler,
		reportAPIHandler,
		websocketHandler,
		metricsHandler,
		appMetrics,
		cfg.Security,
		log,
	)

	// 8. Запускаем фоновые процессы

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем WebSocket hub
	go hub.Run()

	// Периодическая оценка кластера
	go runner.Start(ctx)

	// Gauge подключенных websocket клиентов
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				appMetrics.WebsocketClients.Set(float64(hub.ClientCount()))
			case <-ctx.Done():
				return
			}
		}
	}()

	// 9. Настраиваем HTTP сервер

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Канал для получения сигналов ОС
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Запускаем сервер в отдельной goroutine
	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}()

	// 10. Ожидаем сигнал для graceful shutdown

	<-sigChan
	log.Info("Shutdown signal received, starting graceful shutdown...")

	// Останавливаем периодическую оценку
	cancel()

	// Даем время на завершение текущих операций
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	log.Info("Server stopped gracefully")
}
