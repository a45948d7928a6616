package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

// Имя stream'а, принимающего все health.* subject'ы
const streamName = "HEALTH"

// Publisher публикует снимки результатов run'ов в NATS JetStream.
// Реализует port.EventPublisher.
type Publisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewPublisher подключается к NATS и создает stream, если его еще нет.
// Существующий stream не переконфигурируется: retention - зона
// ответственности оператора NATS.
func NewPublisher(url string, log *logger.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("cluster-health-reporter"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	if _, err := js.StreamInfo(streamName); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			conn.Close()
			return nil, fmt.Errorf("stream info: %w", err)
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{"health.>"},
			Storage:  nats.FileStorage,
			MaxAge:   30 * 24 * time.Hour,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("create stream %s: %w", streamName, err)
		}
		log.Info("JetStream stream created", "stream", streamName)
	}

	log.Info("Connected to NATS", "url", url)

	return &Publisher{conn: conn, js: js, logger: log}, nil
}

// PublishEvent публикует событие синхронно с подтверждением от JetStream:
// run'ов несколько в час, подтверждение важнее скорости
func (p *Publisher) PublishEvent(ctx context.Context, subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := p.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		p.logger.Error("Failed to publish event", err, "subject", subject)
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	p.logger.Debug("Event published", "subject", subject, "size", len(data))
	return nil
}

// Close дожидается отправки буферизованных сообщений и закрывает соединение
func (p *Publisher) Close() error {
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	p.logger.Info("Draining NATS connection")
	return p.conn.Drain()
}
