package port

import (
	"context"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
)

// SummaryPublisher defines the interface for publishing run summaries to external
// observability platforms. This port allows the application layer to publish
// without coupling to specific implementations.
type SummaryPublisher interface {
	// PublishSummary publishes aggregate datapoints (issue count, warning count,
	// overall state) for a single evaluation run.
	PublishSummary(ctx context.Context, result *entity.EvaluationResult) error

	// Flush forces immediate publication of any buffered datapoints.
	// Should be called during graceful shutdown to prevent data loss.
	Flush(ctx context.Context) error
}
