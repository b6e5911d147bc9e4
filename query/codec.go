package query

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonwraymond/memoize/storage"
)

// WriteJSON serializes v and writes it to the invocation's assigned
// output location, returning that location. It is the usual last line
// of a Run implementation.
func WriteJSON(ctx context.Context, rt Runtime, v any) (storage.Ref, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return storage.NilRef, fmt.Errorf("query: encode result: %w", err)
	}

	ref := rt.Output()
	if err := rt.Storage().Write(ctx, ref, data); err != nil {
		return storage.NilRef, fmt.Errorf("query: write result: %w", err)
	}
	return ref, nil
}

// ReadJSON reads a previously resolved artifact and deserializes it,
// honoring the engine's read limit.
func ReadJSON[T any](ctx context.Context, rt Runtime, ref storage.Ref) (T, error) {
	var v T

	data, err := storage.ReadAll(ctx, rt.Storage(), ref, rt.ReadLimit())
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("query: decode artifact %s: %w", ref, err)
	}
	return v, nil
}
