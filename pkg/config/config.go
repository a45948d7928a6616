package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Source     SourceConfig
	Cluster    ClusterConfig
	Thresholds ThresholdsConfig
	Evaluation EvaluationConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Webhook    WebhookConfig
	Reports    ReportsConfig
	DynamoDB   DynamoDBConfig
	CloudWatch CloudWatchConfig
	Discovery  DiscoveryConfig
	Security   SecurityConfig
	LogLevel   string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SourceConfig описывает внешние источники: Prometheus, apiserver и Loki.
// LokiURL опционален: пустое значение отключает сканирование логов.
type SourceConfig struct {
	PrometheusURL     string
	APIHealthURL      string
	APIHealthInsecure bool
	QueryTimeout      time.Duration
	LokiURL           string
	LogScanWindow     time.Duration
}

// ClusterConfig содержит статический состав кластера.
type ClusterConfig struct {
	Nodes                []string
	NodeExporterJob      string
	CadvisorJob          string
	KubeStateMetricsHost string
}

type ThresholdsConfig struct {
	CPUWarningAt      float64
	CPUCriticalAt     float64
	MemoryWarningAt   float64
	MemoryCriticalAt  float64
	DiskWarningAt     float64
	DiskCriticalAt    float64
	PodsFailedWarning float64
}

type EvaluationConfig struct {
	Workers  int
	QueryQPS float64
	Deadline time.Duration
	Interval time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type NATSConfig struct {
	Enabled bool
	URL     string
	Subject string
}

type WebhookConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

type ReportsConfig struct {
	S3Enabled       bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	KeyPrefix       string
	RetentionDays   int
}

type DynamoDBConfig struct {
	Enabled         bool
	TableName       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type CloudWatchConfig struct {
	Enabled         bool
	Namespace       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	LogGroupName    string
	LogStreamName   string
}

type DiscoveryConfig struct {
	Enabled      bool
	NodeSelector string
}

type SecurityConfig struct {
	AllowedOrigins []string
	AuthEnabled    bool
	AuthToken      string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	queryTimeout, err := time.ParseDuration(getEnv("QUERY_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUERY_TIMEOUT: %w", err)
	}

	logScanWindow, err := time.ParseDuration(getEnv("LOG_SCAN_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_SCAN_WINDOW: %w", err)
	}

	deadline, err := time.ParseDuration(getEnv("EVAL_DEADLINE", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVAL_DEADLINE: %w", err)
	}

	interval, err := time.ParseDuration(getEnv("EVAL_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVAL_INTERVAL: %w", err)
	}

	workers, err := strconv.Atoi(getEnv("EVAL_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVAL_WORKERS: %w", err)
	}

	queryQPS, err := getEnvFloat("QUERY_QPS", 10)
	if err != nil {
		return nil, err
	}

	thresholds, err := loadThresholds()
	if err != nil {
		return nil, err
	}

	redisTTL, err := time.ParseDuration(getEnv("REDIS_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_TTL: %w", err)
	}

	webhookTimeout, err := time.ParseDuration(getEnv("WEBHOOK_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
	}

	retentionDays, err := strconv.Atoi(getEnv("REPORT_RETENTION_DAYS", "90"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_RETENTION_DAYS: %w", err)
	}

	nodes := splitCSV(getEnv("CLUSTER_NODES", ""))
	if len(nodes) == 0 {
		return nil, fmt.Errorf("CLUSTER_NODES is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    20 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Source: SourceConfig{
			PrometheusURL:     getEnv("PROMETHEUS_URL", "http://prometheus.home"),
			APIHealthURL:      getEnv("API_HEALTH_URL", ""),
			APIHealthInsecure: getEnvBool("API_HEALTH_INSECURE", true),
			QueryTimeout:      queryTimeout,
			LokiURL:           getEnv("LOKI_URL", ""),
			LogScanWindow:     logScanWindow,
		},
		Cluster: ClusterConfig{
			Nodes:                nodes,
			NodeExporterJob:      getEnv("NODE_EXPORTER_JOB", "node_exporter"),
			CadvisorJob:          getEnv("CADVISOR_JOB", "cadvisor"),
			KubeStateMetricsHost: getEnv("KUBE_STATE_METRICS_HOST", "kube-state-metrics"),
		},
		Thresholds: thresholds,
		Evaluation: EvaluationConfig{
			Workers:  workers,
			QueryQPS: queryQPS,
			Deadline: deadline,
			Interval: interval,
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "cluster_health"),
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
			TTL:      redisTTL,
		},
		NATS: NATSConfig{
			Enabled: getEnvBool("NATS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Subject: getEnv("NATS_SUBJECT", "health.events"),
		},
		Webhook: WebhookConfig{
			Enabled: getEnvBool("WEBHOOK_ENABLED", false),
			URL:     getEnv("WEBHOOK_URL", ""),
			Timeout: webhookTimeout,
		},
		Reports: ReportsConfig{
			S3Enabled:       getEnvBool("S3_ENABLED", false),
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "ru-central1"),
			Endpoint:        getEnv("S3_ENDPOINT", "https://storage.yandexcloud.net"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", true),
			KeyPrefix:       getEnv("S3_KEY_PREFIX", "reports"),
			RetentionDays:   retentionDays,
		},
		DynamoDB: DynamoDBConfig{
			Enabled:         getEnvBool("DYNAMODB_ENABLED", false),
			TableName:       getEnv("DYNAMODB_TABLE", ""),
			Region:          getEnv("DYNAMODB_REGION", "us-east-1"),
			Endpoint:        getEnv("DYNAMODB_ENDPOINT", ""),
			AccessKeyID:     getEnv("DYNAMODB_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("DYNAMODB_SECRET_ACCESS_KEY", ""),
		},
		CloudWatch: CloudWatchConfig{
			Enabled:         getEnvBool("CLOUDWATCH_ENABLED", false),
			Namespace:       getEnv("CLOUDWATCH_NAMESPACE", "ClusterHealth/Reporter"),
			Region:          getEnv("CLOUDWATCH_REGION", "us-east-1"),
			Endpoint:        getEnv("CLOUDWATCH_ENDPOINT", ""),
			AccessKeyID:     getEnv("CLOUDWATCH_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("CLOUDWATCH_SECRET_ACCESS_KEY", ""),
			LogGroupName:    getEnv("CLOUDWATCH_LOG_GROUP", "/cluster-health/issues"),
			LogStreamName:   getEnv("CLOUDWATCH_LOG_STREAM", "reporter"),
		},
		Discovery: DiscoveryConfig{
			Enabled:      getEnvBool("DISCOVERY_ENABLED", false),
			NodeSelector: getEnv("DISCOVERY_NODE_SELECTOR", ""),
		},
		Security: SecurityConfig{
			AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:8080")),
			AuthEnabled:    getEnvBool("AUTH_ENABLED", false),
			AuthToken:      getEnv("AUTH_BEARER_TOKEN", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Source.APIHealthURL == "" {
		return nil, fmt.Errorf("API_HEALTH_URL is required")
	}
	if cfg.Security.AuthEnabled && cfg.Security.AuthToken == "" {
		return nil, fmt.Errorf("AUTH_BEARER_TOKEN is required when AUTH_ENABLED=true")
	}
	if cfg.Webhook.Enabled && cfg.Webhook.URL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_ENABLED=true")
	}
	if cfg.Evaluation.Workers <= 0 {
		return nil, fmt.Errorf("EVAL_WORKERS must be positive")
	}

	return cfg, nil
}

func loadThresholds() (ThresholdsConfig, error) {
	t := ThresholdsConfig{}
	fields := []struct {
		key string
		def float64
		dst *float64
	}{
		{"CPU_WARNING_AT", 75, &t.CPUWarningAt},
		{"CPU_CRITICAL_AT", 90, &t.CPUCriticalAt},
		{"MEMORY_WARNING_AT", 80, &t.MemoryWarningAt},
		{"MEMORY_CRITICAL_AT", 90, &t.MemoryCriticalAt},
		{"DISK_WARNING_AT", 85, &t.DiskWarningAt},
		{"DISK_CRITICAL_AT", 95, &t.DiskCriticalAt},
		{"PODS_FAILED_WARNING_AT", 1, &t.PodsFailedWarning},
	}

	for _, f := range fields {
		value, err := getEnvFloat(f.key, f.def)
		if err != nil {
			return ThresholdsConfig{}, err
		}
		*f.dst = value
	}

	return t, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return parsed, nil
}

func splitCSV(raw string) []string {
	items := make([]string, 0)
	current := ""

	for _, r := range raw {
		if r == ',' {
			if current != "" {
				items = append(items, current)
				current = ""
			}
			continue
		}
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			current += string(r)
		}
	}

	if current != "" {
		items = append(items, current)
	}

	return items
}
