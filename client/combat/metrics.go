package combat

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "skirmish/client/combat"

// Metrics は射撃パイプラインのカウンタです。
// MeterProviderが設定されていなければ何も記録しません。
type Metrics struct {
	shots       metric.Int64Counter
	projectiles metric.Int64Counter
	reloads     metric.Int64Counter
	requests    metric.Int64Counter
}

// NewMetrics はグローバルのMeterProviderからカウンタを作ります。
func NewMetrics() *Metrics {
	return newMetrics(otel.Meter(meterName))
}

func newMetrics(meter metric.Meter) *Metrics {
	return &Metrics{
		shots:       counter(meter, "combat.shots", "successful trigger pulls"),
		projectiles: counter(meter, "combat.projectiles", "spawned projectiles"),
		reloads:     counter(meter, "combat.reloads", "completed reloads"),
		requests:    counter(meter, "combat.requests", "purchase, heal and select requests sent to the server"),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter, falling back to noop", "name", name, "err", err)
		return noop.Int64Counter{}
	}
	return c
}

func (m *Metrics) Shot(ctx context.Context, v WeaponVariant, pellets int) {
	attrs := metric.WithAttributes(attribute.String("weapon", v.String()))
	m.shots.Add(ctx, 1, attrs)
	if pellets > 0 {
		m.projectiles.Add(ctx, int64(pellets), attrs)
	}
}

func (m *Metrics) Reloaded(ctx context.Context, v WeaponVariant) {
	m.reloads.Add(ctx, 1, metric.WithAttributes(attribute.String("weapon", v.String())))
}

func (m *Metrics) Request(ctx context.Context, kind string) {
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
