package cloudwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	applicationPort "github.com/dreschagin/cluster-health-reporter/internal/application/port"
)

// PutLogEvents принимает не больше 10000 событий за вызов
const maxLogEventsPerRequest = 10000

// LogsPublisherConfig holds configuration for CloudWatch logs publishing.
type LogsPublisherConfig struct {
	LogGroupName    string
	LogStreamName   string
	Region          string
	Endpoint        string // optional override (LocalStack)
	AccessKeyID     string
	SecretAccessKey string
	BufferSize      int
	FlushInterval   time.Duration
	AutoCreate      bool
}

// LogsPublisher ships the incident journal to AWS CloudWatch Logs.
// Entries are converted to CloudWatch events at enqueue time and flushed
// either when the buffer fills up or on the flush interval.
type LogsPublisher struct {
	client *cloudwatchlogs.Client
	group  string
	stream string

	mu      sync.Mutex
	pending []types.InputLogEvent
	limit   int

	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewLogsPublisher creates the publisher and starts its background flusher.
func NewLogsPublisher(ctx context.Context, cfg LogsPublisherConfig) (*LogsPublisher, error) {
	switch {
	case cfg.LogGroupName == "":
		return nil, errors.New("log group name is required")
	case cfg.LogStreamName == "":
		return nil, errors.New("log stream name is required")
	case cfg.Region == "":
		return nil, errors.New("region is required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	awsCfg, err := buildAWSConfig(ctx, cfg.Region, cfg.Endpoint, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	p := &LogsPublisher{
		client:  cloudwatchlogs.NewFromConfig(awsCfg),
		group:   cfg.LogGroupName,
		stream:  cfg.LogStreamName,
		pending: make([]types.InputLogEvent, 0, cfg.BufferSize),
		limit:   cfg.BufferSize,
		ticker:  time.NewTicker(cfg.FlushInterval),
		done:    make(chan struct{}),
	}

	if cfg.AutoCreate {
		if err := p.ensureDestination(ctx); err != nil {
			return nil, err
		}
	}

	p.wg.Add(1)
	go p.run()

	return p, nil
}

// Publish buffers a single journal entry.
func (p *LogsPublisher) Publish(ctx context.Context, entry applicationPort.LogEntry) error {
	return p.PublishBatch(ctx, []applicationPort.LogEntry{entry})
}

// PublishBatch buffers journal entries, flushing once the buffer fills up.
func (p *LogsPublisher) PublishBatch(ctx context.Context, entries []applicationPort.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, entry := range entries {
		p.pending = append(p.pending, types.InputLogEvent{
			Timestamp: aws.Int64(entry.Timestamp.UnixMilli()),
			Message:   aws.String(encodeEntry(entry)),
		})
	}

	if len(p.pending) >= p.limit {
		return p.flushLocked(ctx)
	}
	return nil
}

// Flush forces immediate publication of buffered entries.
func (p *LogsPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked(ctx)
}

// Close stops the background flusher and drains the buffer.
func (p *LogsPublisher) Close(ctx context.Context) error {
	close(p.done)
	p.ticker.Stop()
	p.wg.Wait()
	return p.Flush(ctx)
}

func (p *LogsPublisher) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			_ = p.Flush(ctx) // ошибку переживем до следующего тика
			cancel()
		case <-p.done:
			return
		}
	}
}

// flushLocked publishes the buffer; caller holds p.mu.
func (p *LogsPublisher) flushLocked(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}

	// PutLogEvents требует хронологический порядок
	sort.Slice(p.pending, func(i, j int) bool {
		return *p.pending[i].Timestamp < *p.pending[j].Timestamp
	})

	for len(p.pending) > 0 {
		n := len(p.pending)
		if n > maxLogEventsPerRequest {
			n = maxLogEventsPerRequest
		}

		_, err := p.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
			LogGroupName:  aws.String(p.group),
			LogStreamName: aws.String(p.stream),
			LogEvents:     p.pending[:n],
		})
		if err != nil {
			return fmt.Errorf("put log events failed: %w", err)
		}

		p.pending = p.pending[n:]
	}

	// Дошитый хвост освобождает исходный backing array
	p.pending = make([]types.InputLogEvent, 0, p.limit)
	return nil
}

// ensureDestination creates the log group and stream when missing.
func (p *LogsPublisher) ensureDestination(ctx context.Context) error {
	_, err := p.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(p.group),
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("create log group failed: %w", err)
	}

	_, err = p.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(p.group),
		LogStreamName: aws.String(p.stream),
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("create log stream failed: %w", err)
	}

	return nil
}

func isAlreadyExists(err error) bool {
	var alreadyExists *types.ResourceAlreadyExistsException
	return errors.As(err, &alreadyExists)
}

// encodeEntry serializes one journal entry as a single JSON line.
func encodeEntry(entry applicationPort.LogEntry) string {
	payload := map[string]interface{}{
		"timestamp": entry.Timestamp.UTC().Format(time.RFC3339),
		"level":     string(entry.Level),
		"message":   entry.Message,
	}
	for key, value := range entry.Fields {
		payload[key] = value
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return entry.Message
	}
	return string(serialized)
}
