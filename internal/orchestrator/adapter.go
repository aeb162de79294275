package orchestrator

import (
	"context"
	"fmt"
)

// AudioChunk is one unit of PCM plus metadata yielded by an Adapter. It is
// immutable once returned: callers must not mutate PCM in place.
type AudioChunk struct {
	PCM        []byte // little-endian signed 16-bit samples
	DurationMs float64
	Markers    any
	EOS        bool
}

// Adapter is a pluggable synthesis backend. Pull produces the next chunk as
// soon as one is ready and may suspend; it must not block waiting for an
// entire utterance. Reset abandons all in-flight state and must be
// idempotent so a subsequent Pull starts a fresh synthesis pass.
type Adapter interface {
	Pull(ctx context.Context, window int) (AudioChunk, error)
	Reset(ctx context.Context) error
}

// Named is an optional capability an Adapter may satisfy to report a stable
// identifier for observability. Absent that, the orchestrator falls back to
// a type-derived name — mirrors the teacher's optional-capability pattern
// of probing for GetRequiredFormat() via a type assertion instead of a
// required interface method.
type Named interface {
	Name() string
}

// adapterName returns a's Name() if it implements Named, else a stable
// fallback derived from its Go type.
func adapterName(a Adapter) string {
	if n, ok := a.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", a)
}
