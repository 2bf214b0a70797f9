package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/abgdnv/inventory/inventory_service"

type orderMetrics struct {
	placed   metric.Int64Counter
	rejected metric.Int64Counter
}

func newOrderMetrics(meter metric.Meter) orderMetrics {
	var m orderMetrics
	m.placed, _ = meter.Int64Counter("orders_placed", metric.WithDescription("Orders that deducted stock"))
	m.rejected, _ = meter.Int64Counter("orders_rejected", metric.WithDescription("Orders rejected by validation or availability"))
	return m
}

func (m orderMetrics) record(ctx context.Context, outcome OrderOutcome) {
	switch o := outcome.(type) {
	case Placed:
		m.placed.Add(ctx, 1)
	case Rejected:
		m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(o.Reason))))
	}
}
