package engine

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/memoize/diag"
	"github.com/jonwraymond/memoize/storage"
	"github.com/jonwraymond/memoize/store"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	store     store.Store
	substrate storage.Substrate
	logger    diag.Logger
	meter     metric.Meter
	readLimit int64
}

// WithStore selects the cache store. The default is a transient
// in-memory store scoped to the engine's lifetime; pass a
// store.Durable to persist across process runs.
func WithStore(s store.Store) Option {
	return func(c *config) {
		c.store = s
	}
}

// WithSubstrate selects the storage substrate queries run against.
// The default is an in-memory substrate.
func WithSubstrate(sub storage.Substrate) Option {
	return func(c *config) {
		c.substrate = sub
	}
}

// WithLogger sets the diagnostics sink. The default discards
// diagnostics.
func WithLogger(l diag.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMeter sets the meter the resolve counters register on. The
// default meter is a no-op.
func WithMeter(m metric.Meter) Option {
	return func(c *config) {
		c.meter = m
	}
}

// WithReadLimit caps the bytes a single artifact read may buffer.
// The default is storage.DefaultReadLimit.
func WithReadLimit(n int64) Option {
	return func(c *config) {
		c.readLimit = n
	}
}
