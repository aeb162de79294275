package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// sequenceAdapter yields a fixed sequence of chunks, optionally swapping its
// reported Name() partway through and recording Reset() calls.
type sequenceAdapter struct {
	mu         sync.Mutex
	chunks     []AudioChunk
	next       int
	name       string
	swapAfter  int // 0 disables the swap
	swapToName string
	resets     atomic.Int32
	preRoll    time.Duration
}

func (a *sequenceAdapter) Pull(ctx context.Context, window int) (AudioChunk, error) {
	a.mu.Lock()
	idx := a.next
	a.next++
	a.mu.Unlock()

	if idx == 0 && a.preRoll > 0 {
		time.Sleep(a.preRoll)
	}

	if idx >= len(a.chunks) {
		return AudioChunk{EOS: true}, nil
	}
	return a.chunks[idx], nil
}

func (a *sequenceAdapter) Reset(ctx context.Context) error {
	a.resets.Add(1)
	return nil
}

func (a *sequenceAdapter) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.swapAfter > 0 && a.next > a.swapAfter {
		return a.swapToName
	}
	return a.name
}

func uniformChunks(n int, bytesPerChunk int, durationMs float64) []AudioChunk {
	out := make([]AudioChunk, n)
	for i := range n {
		out[i] = AudioChunk{PCM: make([]byte, bytesPerChunk), DurationMs: durationMs}
	}
	return out
}

func drain(t *testing.T, out <-chan AudioChunk, errCh <-chan error) ([]AudioChunk, error) {
	t.Helper()
	var chunks []AudioChunk
	var streamErr error

	for out != nil || errCh != nil {
		select {
		case c, ok := <-out:
			if !ok {
				out = nil
				continue
			}
			chunks = append(chunks, c)
		case e, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			streamErr = e
		}
	}
	return chunks, streamErr
}

func defaultConfig() Config {
	return Config{
		SampleRateHz:  16000,
		ComfortLowMs:  50,
		ComfortHighMs: 250,
	}
}

func TestOrchestratorChunkIDsAreContiguousFromZero(t *testing.T) {
	adapter := &sequenceAdapter{chunks: uniformChunks(5, 320, 10), name: "adapter_a"}
	o := New(adapter, defaultConfig(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, errCh := o.Stream(ctx, nil)
	chunks, err := drain(t, out, errCh)
	require.NoError(t, err)
	require.Len(t, chunks, 6) // 5 data chunks + final EOS

	for i, e := range o.timeline.Events() {
		assert.Equal(t, uint64(i), e.ChunkID)
	}
}

func TestOrchestratorStopsPullingAfterEOS(t *testing.T) {
	adapter := &sequenceAdapter{chunks: uniformChunks(2, 320, 10), name: "adapter_a"}
	o := New(adapter, defaultConfig(), nil, nil)

	ctx := context.Background()
	out, errCh := o.Stream(ctx, nil)
	chunks, err := drain(t, out, errCh)
	require.NoError(t, err)

	require.NotEmpty(t, chunks)
	assert.True(t, chunks[len(chunks)-1].EOS)
	assert.Equal(t, StateTerminal, o.Snapshot().State)
}

func TestOrchestratorPullErrorPropagatesAndTerminates(t *testing.T) {
	boom := errors.New("adapter exploded")
	adapter := &failingAdapter{err: boom}
	o := New(adapter, defaultConfig(), nil, nil)

	out, errCh := o.Stream(context.Background(), nil)
	chunks, err := drain(t, out, errCh)

	assert.Empty(t, chunks)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

type failingAdapter struct{ err error }

func (f *failingAdapter) Pull(ctx context.Context, window int) (AudioChunk, error) {
	return AudioChunk{}, f.err
}
func (f *failingAdapter) Reset(ctx context.Context) error { return nil }

func TestOrchestratorBargeInYieldsAtMostOneMoreChunk(t *testing.T) {
	adapter := &sequenceAdapter{chunks: uniformChunks(5, 320, 10), name: "adapter_a"}
	o := New(adapter, defaultConfig(), nil, nil)

	var barged atomic.Bool
	onEvent := func(e TimelineEvent) {
		if e.ChunkID == 2 && !barged.Load() {
			barged.Store(true)
			o.SignalBargeIn()
		}
	}

	out, errCh := o.Stream(context.Background(), onEvent)
	chunks, err := drain(t, out, errCh)
	require.NoError(t, err)

	assert.Less(t, len(chunks), 5)
	assert.Equal(t, int32(1), adapter.resets.Load())
	assert.Equal(t, 0.0, o.Snapshot().BufferMs)
}

func TestOrchestratorMidStreamAdapterNameSwap(t *testing.T) {
	adapter := &sequenceAdapter{
		chunks:     uniformChunks(6, 320, 10),
		name:       "adapter_a",
		swapAfter:  3,
		swapToName: "adapter_b",
	}
	o := New(adapter, defaultConfig(), nil, nil)

	out, errCh := o.Stream(context.Background(), nil)
	_, err := drain(t, out, errCh)
	require.NoError(t, err)

	events := o.timeline.Events()
	seenB := false
	for _, e := range events {
		if e.Adapter == "adapter_b" {
			seenB = true
		}
		if seenB {
			assert.Equal(t, "adapter_b", e.Adapter)
		}
	}
	assert.True(t, seenB)
}

func TestOrchestratorZeroLengthNonEOSChunkAdvancesChunkID(t *testing.T) {
	adapter := &sequenceAdapter{
		chunks: []AudioChunk{
			{PCM: nil, DurationMs: 0},
			{PCM: []byte{1, 0}, DurationMs: 10, EOS: true},
		},
		name: "adapter_a",
	}
	o := New(adapter, defaultConfig(), nil, nil)

	out, errCh := o.Stream(context.Background(), nil)
	_, err := drain(t, out, errCh)
	require.NoError(t, err)

	events := o.timeline.Events()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, uint64(0), events[0].ChunkID)
	assert.Equal(t, uint64(1), events[1].ChunkID)
}

func TestOrchestratorColdStartScenario(t *testing.T) {
	adapter := &sequenceAdapter{
		chunks:  uniformChunks(3, 320, 10),
		name:    "adapter_a",
		preRoll: 20 * time.Millisecond,
	}
	o := New(adapter, defaultConfig(), nil, nil)

	out, errCh := o.Stream(context.Background(), nil)
	_, err := drain(t, out, errCh)
	require.NoError(t, err)

	events := o.timeline.Events()
	require.GreaterOrEqual(t, len(events), 3)
	assert.Greater(t, events[0].RenderMs, events[1].RenderMs)
	for _, e := range events {
		assert.GreaterOrEqual(t, e.BufferMs, 0.0)
	}
}

func TestOrchestratorLongReadScenario(t *testing.T) {
	chunks := uniformChunks(60, 320, 10)
	chunks[len(chunks)-1].EOS = true // final data chunk carries EOS, so every event is 10ms
	adapter := &sequenceAdapter{chunks: chunks, name: "adapter_a"}
	o := New(adapter, defaultConfig(), nil, nil)

	out, errCh := o.Stream(context.Background(), nil)
	_, err := drain(t, out, errCh)
	require.NoError(t, err)

	events := o.timeline.Events()
	assert.GreaterOrEqual(t, len(events), 50)
	for _, e := range events {
		assert.InDelta(t, 10.0, e.DurationMs, 0.001)
		assert.GreaterOrEqual(t, e.BufferMs, 0.0)
	}
}
