package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/memoize/diag"
	"github.com/jonwraymond/memoize/fingerprint"
	"github.com/jonwraymond/memoize/query"
	"github.com/jonwraymond/memoize/storage"
	"github.com/jonwraymond/memoize/store"
)

// Engine resolves queries against a cache store, executing each
// distinct fingerprint at most once per lifetime and coalescing
// concurrent misses on the same fingerprint into one execution.
type Engine struct {
	store     store.Store
	substrate storage.Substrate
	logger    diag.Logger
	metrics   *metrics
	readLimit int64

	flight singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// New creates an engine. With no options it caches in memory only:
// transient store, in-memory substrate, no diagnostics.
func New(opts ...Option) (*Engine, error) {
	cfg := &config{
		logger:    diag.Nop(),
		meter:     noop.NewMeterProvider().Meter("memoize"),
		readLimit: storage.DefaultReadLimit,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.store == nil {
		cfg.store = store.NewMemory()
	}
	if cfg.substrate == nil {
		cfg.substrate = storage.NewMemory()
	}
	if cfg.readLimit <= 0 {
		return nil, fmt.Errorf("engine: read limit must be positive, got %d", cfg.readLimit)
	}

	m, err := newMetrics(cfg.meter)
	if err != nil {
		return nil, fmt.Errorf("engine: register counters: %w", err)
	}

	return &Engine{
		store:     cfg.store,
		substrate: cfg.substrate,
		logger:    cfg.logger,
		metrics:   m,
		readLimit: cfg.readLimit,
	}, nil
}

// Resolve returns the artifact location for a query, executing it only
// if no entry exists for its fingerprint.
//
// Exactly one of the hit/miss counters is incremented per call. Nested
// resolutions made by the query's Run count independently.
func (e *Engine) Resolve(ctx context.Context, q query.Query) (storage.Ref, error) {
	if e.isClosed() {
		return storage.NilRef, ErrShutdown
	}

	d := fingerprint.Of(q)

	if chainContains(ctx, d) {
		e.logger.Warn(ctx, "query cycle detected", diag.F("fingerprint", d.Hex()))
		return storage.NilRef, fmt.Errorf("%w: %s", ErrCycle, d.Hex())
	}

	ref, ok, err := e.store.Get(ctx, d)
	if err != nil {
		return storage.NilRef, fmt.Errorf("engine: lookup %s: %w", d.Hex(), err)
	}
	if ok {
		e.hits.Add(1)
		e.metrics.recordHit(ctx)
		return ref, nil
	}

	e.misses.Add(1)
	e.metrics.recordMiss(ctx)

	// Concurrent misses on one fingerprint coalesce: the first caller
	// runs the query, later callers wait for its result.
	v, err, _ := e.flight.Do(d.Hex(), func() (any, error) {
		return e.execute(ctx, d, q)
	})
	if err != nil {
		return storage.NilRef, err
	}
	return v.(storage.Ref), nil
}

// execute runs a missed query and registers its artifact. Only called
// through the singleflight group.
func (e *Engine) execute(ctx context.Context, d fingerprint.Digest, q query.Query) (storage.Ref, error) {
	// A previous flight may have registered the entry between this
	// caller's lookup and its turn as flight leader.
	if ref, ok, err := e.store.Get(ctx, d); err != nil {
		return storage.NilRef, fmt.Errorf("engine: lookup %s: %w", d.Hex(), err)
	} else if ok {
		return ref, nil
	}

	inv := &invocation{engine: e, output: e.store.ArtifactRef(d)}

	ref, err := q.Run(withChain(ctx, d), inv)
	if err != nil {
		// Write-then-register: nothing was registered, so drop any
		// partially written artifact.
		e.discard(ctx, d, inv.output)
		return storage.NilRef, fmt.Errorf("engine: run %s: %w", d.Hex(), err)
	}
	if ref == storage.NilRef {
		return storage.NilRef, fmt.Errorf("engine: run %s: query returned no artifact location", d.Hex())
	}

	if err := e.store.Put(ctx, d, ref); err != nil {
		return storage.NilRef, fmt.Errorf("engine: register %s: %w", d.Hex(), err)
	}
	return ref, nil
}

// discard removes an unregistered artifact after a failed run.
func (e *Engine) discard(ctx context.Context, d fingerprint.Digest, ref storage.Ref) {
	if err := e.substrate.Remove(ctx, ref); err != nil && !errors.Is(err, storage.ErrNotFound) {
		e.logger.Warn(ctx, "failed to remove partial artifact",
			diag.F("fingerprint", d.Hex()),
			diag.F("ref", string(ref)),
			diag.F("error", err.Error()))
	}
}

// CacheHits returns the number of resolutions served from the store.
// Monotonic for the engine's lifetime; safe to read concurrently with
// ongoing resolutions.
func (e *Engine) CacheHits() uint64 {
	return e.hits.Load()
}

// CacheMisses returns the number of resolutions that executed their
// query. Monotonic for the engine's lifetime.
func (e *Engine) CacheMisses() uint64 {
	return e.misses.Load()
}

// Storage returns the engine's substrate handle, for callers that need
// to read resolved artifacts outside a Run.
func (e *Engine) Storage() storage.Substrate {
	return e.substrate
}

// ReadLimit returns the engine's maximum buffered read size.
func (e *Engine) ReadLimit() int64 {
	return e.readLimit
}

// Shutdown flushes the cache store and releases the engine. Idempotent;
// Resolve calls after Shutdown fail with ErrShutdown.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	if err := e.store.Close(ctx); err != nil {
		e.logger.Error(ctx, "failed to close cache store", diag.F("error", err.Error()))
		return fmt.Errorf("engine: close cache store: %w", err)
	}
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// invocation is the Runtime handed to one Run call.
type invocation struct {
	engine *Engine
	output storage.Ref
}

func (inv *invocation) Resolve(ctx context.Context, q query.Query) (storage.Ref, error) {
	return inv.engine.Resolve(ctx, q)
}

func (inv *invocation) Storage() storage.Substrate {
	return inv.engine.substrate
}

func (inv *invocation) Output() storage.Ref {
	return inv.output
}

func (inv *invocation) ReadLimit() int64 {
	return inv.engine.readLimit
}

// Ensure invocation implements query.Runtime
var _ query.Runtime = (*invocation)(nil)
