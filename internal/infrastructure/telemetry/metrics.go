package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the service instruments.
type Metrics struct {
	conversions   metric.Int64Counter
	rows          metric.Int64Counter
	externalCalls metric.Float64Histogram
	outcomes      metric.Int64Counter
}

// NewMetrics registers the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.conversions, err = meter.Int64Counter("central.conversions",
		metric.WithDescription("Spreadsheet conversions by kind and result"),
		metric.WithUnit("{conversion}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create conversions counter: %w", err)
	}
	if m.rows, err = meter.Int64Counter("central.rows",
		metric.WithDescription("Input rows processed by kind"),
		metric.WithUnit("{row}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rows counter: %w", err)
	}
	if m.externalCalls, err = meter.Float64Histogram("central.external.duration",
		metric.WithDescription("Latency of calls to external services"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create external call histogram: %w", err)
	}
	if m.outcomes, err = meter.Int64Counter("central.row.outcomes",
		metric.WithDescription("Per-row outcomes of validation and transcription batches"),
		metric.WithUnit("{row}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create outcome counter: %w", err)
	}
	return m, nil
}

// RecordConversion counts one conversion of kind with rows input rows.
func (m *Metrics) RecordConversion(ctx context.Context, kind string, rows int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.conversions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("result", result),
	))
	m.rows.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordExternalCall records the latency of one call to service.
func (m *Metrics) RecordExternalCall(ctx context.Context, service string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.externalCalls.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.Bool("error", err != nil),
	))
}

// RecordOutcome counts one per-row outcome of a batch feature.
func (m *Metrics) RecordOutcome(ctx context.Context, feature, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("feature", feature),
		attribute.String("outcome", outcome),
	))
}
