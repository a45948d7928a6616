package cloudwatch

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
)

const (
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
)

// SummaryPublisherConfig holds configuration for CloudWatch metrics publishing.
type SummaryPublisherConfig struct {
	Namespace       string // CloudWatch namespace (e.g., "ClusterHealth/Reporter")
	Region          string // AWS region (e.g., "us-east-1")
	Endpoint        string // Optional endpoint override (for LocalStack)
	AccessKeyID     string // AWS access key
	SecretAccessKey string // AWS secret key
}

// SummaryPublisher publishes evaluation run summaries to AWS CloudWatch.
// A run produces a handful of datapoints, so there is no internal buffering:
// each run is published immediately.
type SummaryPublisher struct {
	client    *cloudwatch.Client
	namespace string
}

// NewSummaryPublisher creates a new CloudWatch summary publisher.
func NewSummaryPublisher(ctx context.Context, cfg SummaryPublisherConfig) (*SummaryPublisher, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}

	awsCfg, err := buildAWSConfig(ctx, cfg.Region, cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	return &SummaryPublisher{
		client:    cloudwatch.NewFromConfig(awsCfg),
		namespace: cfg.Namespace,
	}, nil
}

// PublishSummary publishes aggregate datapoints for a single evaluation run.
func (p *SummaryPublisher) PublishSummary(ctx context.Context, result *entity.EvaluationResult) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	data := summaryDatums(result)

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: data,
		})
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt < maxRetries-1 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// Flush is a no-op: nothing is buffered.
func (p *SummaryPublisher) Flush(_ context.Context) error {
	return nil
}

// summaryDatums converts a run into CloudWatch datapoints.
func summaryDatums(result *entity.EvaluationResult) []types.MetricDatum {
	timestamp := aws.Time(result.GeneratedAt())
	dimensions := []types.Dimension{
		{
			Name:  aws.String("Overall"),
			Value: aws.String(result.Overall().String()),
		},
	}

	return []types.MetricDatum{
		{
			MetricName: aws.String("CriticalChecks"),
			Value:      aws.Float64(float64(result.IssueCount())),
			Unit:       types.StandardUnitCount,
			Timestamp:  timestamp,
			Dimensions: dimensions,
		},
		{
			MetricName: aws.String("WarningChecks"),
			Value:      aws.Float64(float64(result.WarningCount())),
			Unit:       types.StandardUnitCount,
			Timestamp:  timestamp,
			Dimensions: dimensions,
		},
		{
			MetricName: aws.String("OverallState"),
			Value:      aws.Float64(overallValue(result.Overall())),
			Unit:       types.StandardUnitNone,
			Timestamp:  timestamp,
		},
	}
}

// overallValue maps overall status to a numeric gauge: 0 healthy, 1 warning, 2 unhealthy.
func overallValue(status valueobject.OverallStatus) float64 {
	switch status {
	case valueobject.StatusUnhealthy:
		return 2
	case valueobject.StatusWarning:
		return 1
	default:
		return 0
	}
}

// buildAWSConfig creates an AWS config with credentials.
func buildAWSConfig(ctx context.Context, region, endpoint, accessKeyID, secretAccessKey string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if accessKeyID != "" && secretAccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, err
	}

	// Override endpoint if specified (for LocalStack testing)
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}

	return cfg, nil
}
