package engine

import "errors"

// Sentinel errors for engine operations.
var (
	// ErrCycle is returned when a query transitively resolves itself.
	ErrCycle = errors.New("engine: query cycle detected")

	// ErrShutdown is returned by operations attempted after Shutdown.
	ErrShutdown = errors.New("engine: engine is shut down")
)
