// Package scenes drives the orchestrator against small, deterministic mock
// adapters and captures the resulting timeline and WAV as artifacts for
// human and automated review. Grounded on original_source/scenes/*.py.
package scenes

import (
	"context"
	"sync"
	"time"

	"github.com/morpheus-tts/pcmorchestrator/internal/orchestrator"
)

// coldStartAdapter stalls 50ms before its first pull, then emits a fixed
// number of uniform chunks. Grounded on scenes/cold_start.py.
type coldStartAdapter struct {
	total int
	sent  int
}

func newColdStartAdapter() *coldStartAdapter { return &coldStartAdapter{total: 3} }

func (a *coldStartAdapter) Pull(ctx context.Context, window int) (orchestrator.AudioChunk, error) {
	if a.sent == 0 {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return orchestrator.AudioChunk{}, ctx.Err()
		}
	}
	if a.sent >= a.total {
		return orchestrator.AudioChunk{EOS: true}, nil
	}
	a.sent++
	return orchestrator.AudioChunk{PCM: repeatByte16(0x01, 0x00, 160), DurationMs: 10}, nil
}

func (a *coldStartAdapter) Reset(ctx context.Context) error { return nil }
func (a *coldStartAdapter) Name() string                    { return "cold_start_adapter" }

// longReadAdapter emits many uniform chunks to simulate a long narration.
// Grounded on scenes/long_read.py.
type longReadAdapter struct {
	total int
	sent  int
}

func newLongReadAdapter() *longReadAdapter { return &longReadAdapter{total: 60} }

func (a *longReadAdapter) Pull(ctx context.Context, window int) (orchestrator.AudioChunk, error) {
	if a.sent >= a.total {
		return orchestrator.AudioChunk{EOS: true}, nil
	}
	a.sent++
	eos := a.sent >= a.total
	return orchestrator.AudioChunk{PCM: repeatByte16(0x02, 0x00, 160), DurationMs: 10, EOS: eos}, nil
}

func (a *longReadAdapter) Reset(ctx context.Context) error { return nil }
func (a *longReadAdapter) Name() string                    { return "long_read_adapter" }

// swapAdapter reports a different Name() partway through the stream
// without interrupting the chunk sequence. Grounded on
// scenes/mid_stream_swap.py.
type swapAdapter struct {
	mu          sync.Mutex
	name        string
	switchAfter int
	total       int
	sent        int
}

func newSwapAdapter() *swapAdapter {
	return &swapAdapter{name: "adapter_a", switchAfter: 3, total: 6}
}

func (a *swapAdapter) Pull(ctx context.Context, window int) (orchestrator.AudioChunk, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sent >= a.total {
		return orchestrator.AudioChunk{EOS: true}, nil
	}
	a.sent++
	fill := byte(0x03)
	if a.name == "adapter_b" {
		fill = 0x04
	}
	if a.sent == a.switchAfter {
		a.name = "adapter_b"
	}
	eos := a.sent >= a.total
	return orchestrator.AudioChunk{PCM: repeatByte16(fill, 0x00, 160), DurationMs: 10, EOS: eos}, nil
}

func (a *swapAdapter) Reset(ctx context.Context) error { return nil }

func (a *swapAdapter) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name
}

// bargeAdapter emits chunks until the harness signals a barge-in. Grounded
// on scenes/barge_in.py.
type bargeAdapter struct {
	total      int
	sent       int
	resetCalls int
}

func newBargeAdapter() *bargeAdapter { return &bargeAdapter{total: 5} }

func (a *bargeAdapter) Pull(ctx context.Context, window int) (orchestrator.AudioChunk, error) {
	if a.sent >= a.total {
		return orchestrator.AudioChunk{EOS: true}, nil
	}
	a.sent++
	return orchestrator.AudioChunk{PCM: repeatByte16(0x05, 0x00, 160), DurationMs: 10}, nil
}

func (a *bargeAdapter) Reset(ctx context.Context) error {
	a.resetCalls++
	return nil
}

func (a *bargeAdapter) Name() string { return "barge_in_adapter" }

// breathingAdapter emits two 10ms chunks, the second carrying EOS, so the
// stream ends on a data-bearing chunk rather than an empty trailing one.
// Grounded on scenes/breathing_room.py.
type breathingAdapter struct {
	chunks []orchestrator.AudioChunk
}

func newBreathingAdapter() *breathingAdapter {
	return &breathingAdapter{
		chunks: []orchestrator.AudioChunk{
			{PCM: repeatByte16(0x01, 0x00, 160), DurationMs: 10},
			{PCM: repeatByte16(0x01, 0x00, 160), DurationMs: 10, EOS: true},
		},
	}
}

func (a *breathingAdapter) Pull(ctx context.Context, window int) (orchestrator.AudioChunk, error) {
	if len(a.chunks) == 0 {
		return orchestrator.AudioChunk{EOS: true}, nil
	}
	next := a.chunks[0]
	a.chunks = a.chunks[1:]
	return next, nil
}

func (a *breathingAdapter) Reset(ctx context.Context) error { return nil }
func (a *breathingAdapter) Name() string                    { return "breathing_room_adapter" }

func repeatByte16(hi, lo byte, frames int) []byte {
	out := make([]byte, 0, frames*2)
	for i := 0; i < frames; i++ {
		out = append(out, hi, lo)
	}
	return out
}
