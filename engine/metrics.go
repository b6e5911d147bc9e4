package engine

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// metrics holds the engine's resolve counters. The same increments
// feed the engine's atomic counters; these exist so an embedding tool
// can export hit rates through its own meter provider.
type metrics struct {
	hits   metric.Int64Counter
	misses metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	hits, err := meter.Int64Counter(
		"memoize.resolve.hits",
		metric.WithDescription("Resolutions served from the cache store"),
		metric.WithUnit("{resolve}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"memoize.resolve.misses",
		metric.WithDescription("Resolutions that executed the query"),
		metric.WithUnit("{resolve}"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{hits: hits, misses: misses}, nil
}

func (m *metrics) recordHit(ctx context.Context) {
	m.hits.Add(ctx, 1)
}

func (m *metrics) recordMiss(ctx context.Context) {
	m.misses.Add(ctx, 1)
}
