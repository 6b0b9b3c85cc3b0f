package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database  *DatabaseMetrics
	HTTP      *HTTPMetrics
	Messaging *MessagingMetrics

	alunosCreated  metric.Int64Counter
	turmasCreated  metric.Int64Counter
	turmasRetired  metric.Int64Counter
	loginsTotal    metric.Int64Counter
	logger         *slog.Logger
}

func New(serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	httpMetrics, err := NewHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		Database:  database,
		HTTP:      httpMetrics,
		Messaging: messaging,
		logger:    logger,
	}

	m.alunosCreated, err = meter.Int64Counter(
		"educapta.alunos.created",
		metric.WithDescription("Total number of students created"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.turmasCreated, err = meter.Int64Counter(
		"educapta.turmas.created",
		metric.WithDescription("Total number of classes created"),
		metric.WithUnit("{class}"),
	)
	if err != nil {
		return nil, err
	}

	m.turmasRetired, err = meter.Int64Counter(
		"educapta.turmas.retired",
		metric.WithDescription("Total number of classes soft-deleted"),
		metric.WithUnit("{class}"),
	)
	if err != nil {
		return nil, err
	}

	m.loginsTotal, err = meter.Int64Counter(
		"educapta.logins.total",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")

	return m, nil
}

// NewMock creates a no-op Metrics instance for testing.
// The returned Metrics safely ignores all Record* calls.
func NewMock() *Metrics {
	return &Metrics{
		Database:  &DatabaseMetrics{},
		HTTP:      &HTTPMetrics{},
		Messaging: &MessagingMetrics{},
	}
}

func (m *Metrics) RecordAlunoCreated(ctx context.Context) {
	if m != nil && m.alunosCreated != nil {
		m.alunosCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordTurmaCreated(ctx context.Context) {
	if m != nil && m.turmasCreated != nil {
		m.turmasCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordTurmaRetired(ctx context.Context) {
	if m != nil && m.turmasRetired != nil {
		m.turmasRetired.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context) {
	if m != nil && m.loginsTotal != nil {
		m.loginsTotal.Add(ctx, 1)
	}
}
