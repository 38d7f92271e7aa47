package typeorm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var defaultMeter = otel.Meter(instrumentationName)

// driverMetrics holds the metric instruments. Disabled by default; recording
// methods are nil-safe.
type driverMetrics struct {
	enabled bool

	queriesTotal      metric.Int64Counter
	queryDuration     metric.Float64Histogram
	connectionsActive metric.Int64UpDownCounter
}

func (m *driverMetrics) init() {
	if m.queriesTotal != nil {
		return
	}
	m.queriesTotal, _ = defaultMeter.Int64Counter("db.queries.total",
		metric.WithDescription("Total number of executed statements"))
	m.queryDuration, _ = defaultMeter.Float64Histogram("db.query.duration",
		metric.WithDescription("Statement execution duration in milliseconds"),
		metric.WithUnit("ms"))
	m.connectionsActive, _ = defaultMeter.Int64UpDownCounter("db.connections.active",
		metric.WithDescription("Connections currently checked out of the pool"))
}

// recordQuery records one executed statement.
func (m *driverMetrics) recordQuery(ctx context.Context, duration time.Duration, err error) {
	if m == nil || !m.enabled || m.queriesTotal == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.queriesTotal.Add(ctx, 1, attrs)
	m.queryDuration.Record(ctx, float64(duration.Nanoseconds())/1e6, attrs)
}

// recordConnection tracks checkout/return of pooled connections.
func (m *driverMetrics) recordConnection(ctx context.Context, delta int64) {
	if m == nil || !m.enabled || m.connectionsActive == nil {
		return
	}
	m.connectionsActive.Add(ctx, delta)
}

// EnableMetrics turns metric collection on or off for this driver.
func (d *Driver) EnableMetrics(enabled bool) {
	if d == nil {
		return
	}
	d.exec.metrics.enabled = enabled
	if enabled {
		d.exec.metrics.init()
	}
}
