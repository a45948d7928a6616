package metrics

import (
	"context"

	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
)

// InstrumentedSender wraps a payload sender and counts failed deliveries.
type InstrumentedSender struct {
	next    port.PayloadSender
	metrics *Metrics
}

func NewInstrumentedSender(next port.PayloadSender, metrics *Metrics) *InstrumentedSender {
	return &InstrumentedSender{next: next, metrics: metrics}
}

func (s *InstrumentedSender) Send(ctx context.Context, content string) error {
	err := s.next.Send(ctx, content)
	if err != nil {
		s.metrics.NotificationsFailed.Inc()
	}
	return err
}
