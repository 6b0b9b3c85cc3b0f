package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"educapta/internal/events"
	"educapta/internal/metrics"

	"github.com/nats-io/nats.go"
)

// Producer publishes entity change events to a NATS subject.
type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewProducer(url string, subject string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *Producer) Publish(ctx context.Context, event events.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	start := time.Now()
	err = p.conn.Publish(p.subject, payload)
	p.metrics.Messaging.RecordPublish(ctx, p.subject, time.Since(start), err)

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to NATS", "error", err,
			"entity", event.Entity, "action", event.Action)
		return err
	}

	p.logger.InfoContext(ctx, "event published to NATS", "subject", p.subject,
		"entity", event.Entity, "action", event.Action, "id", event.ID)
	return nil
}

func (p *Producer) Close() error {
	p.conn.Close()
	return nil
}
