// Package orchestrator implements the streaming PCM orchestrator: it pulls
// bounded audio chunks from an Adapter at an adaptive granularity, paces
// them against a playback buffer's comfort band, records a replayable
// timeline, and supports mid-utterance interruption via barge-in.
package orchestrator

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/morpheus-tts/pcmorchestrator/internal/errors"
)

// State is one of the orchestrator's three lifecycle states.
type State int

const (
	StateStreaming State = iota
	StateBargeResetting
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StateBargeResetting:
		return "barge_resetting"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Config configures an Orchestrator at construction.
type Config struct {
	SampleRateHz       int
	ComfortLowMs       float64
	ComfortHighMs      float64
	LadderSteps        []int
	RingCapacityBytes  int // 0 disables the ring buffer; PCM is tracked via PlaybackBuffer.Add instead
	PlaybackCapacityMs float64
}

// Snapshot is a read-only copy of orchestrator state, safe to read without
// taking a lock on live state — grounded on the teacher's GetMetrics()
// snapshot pattern in processing_pipeline.go.
type Snapshot struct {
	SessionID   string
	State       State
	ChunkID     uint64
	LadderIndex int
	BufferMs    float64
	RingSize    int
	Adapter     string
}

// OnEvent is invoked synchronously after each TimelineEvent is recorded and
// before the chunk is routed or yielded. It must not suspend.
type OnEvent func(TimelineEvent)

// Orchestrator wires an Adapter, PlaybackBuffer, optional RingBuffer and
// ChunkLadder into the streaming state machine described by the component
// design. Each instance owns its collaborators exclusively and runs its
// pull loop on exactly one goroutine, mirroring the teacher's
// one-goroutine-per-pipeline processLoop.
type Orchestrator struct {
	sessionID uuid.UUID
	adapter   Adapter
	buffer    *PlaybackBuffer
	ring      *RingBuffer
	ladder    *ChunkLadder
	timeline  *Timeline
	metrics   *Metrics

	sampleRateHz  int
	comfortLowMs  float64
	comfortHighMs float64

	state   atomic.Int32
	chunkID atomic.Uint64
	bargeIn atomic.Bool

	startedAt time.Time
	log       *slog.Logger
	stall     *StallMonitor
}

// WithStallMonitor attaches a stall monitor checked once per loop
// iteration, after the ladder is adapted.
func (o *Orchestrator) WithStallMonitor(m *StallMonitor) *Orchestrator {
	o.stall = m
	return o
}

// New constructs an Orchestrator over adapter with the given config. A nil
// logger disables logging; a nil metrics disables instrumentation.
func New(adapter Adapter, cfg Config, log *slog.Logger, metrics *Metrics) *Orchestrator {
	buffer := NewPlaybackBuffer(cfg.PlaybackCapacityMs)

	var ring *RingBuffer
	if cfg.RingCapacityBytes > 0 {
		ring = NewRingBuffer(cfg.RingCapacityBytes, cfg.SampleRateHz, buffer)
	}

	low, high := cfg.ComfortLowMs, cfg.ComfortHighMs
	if low <= 0 && high <= 0 {
		low, high = DefaultComfortLowMs, DefaultComfortHighMs
	}

	o := &Orchestrator{
		sessionID:     uuid.New(),
		adapter:       adapter,
		buffer:        buffer,
		ring:          ring,
		ladder:        NewChunkLadder(cfg.LadderSteps),
		timeline:      NewTimeline(),
		metrics:       metrics,
		sampleRateHz:  cfg.SampleRateHz,
		comfortLowMs:  low,
		comfortHighMs: high,
		log:           log,
	}
	return o
}

// SessionID returns the orchestrator's stable correlation id, attached to
// every log line for this instance.
func (o *Orchestrator) SessionID() string { return o.sessionID.String() }

// SignalBargeIn sets the one-shot barge-in flag. Safe to call from any
// goroutine; observed by the pull loop at the next loop head or
// immediately after yielding a chunk.
func (o *Orchestrator) SignalBargeIn() {
	o.bargeIn.Store(true)
}

// LogTranscript appends a transcript note for post-hoc inspection.
func (o *Orchestrator) LogTranscript(text string) {
	o.timeline.LogTranscript(float64(time.Now().UnixNano())/1e9, text)
}

// SaveTimeline writes the accumulated timeline and transcript to disk.
func (o *Orchestrator) SaveTimeline(path string) error {
	return o.timeline.Save(path)
}

// Timeline returns the accumulated timeline events recorded so far.
func (o *Orchestrator) Timeline() *Timeline {
	return o.timeline
}

// Snapshot returns a point-in-time copy of orchestrator state.
func (o *Orchestrator) Snapshot() Snapshot {
	ringSize := 0
	if o.ring != nil {
		ringSize = o.ring.Size()
	}
	return Snapshot{
		SessionID:   o.sessionID.String(),
		State:       State(o.state.Load()),
		ChunkID:     o.chunkID.Load(),
		LadderIndex: o.ladder.Index(),
		BufferMs:    o.buffer.DepthMs(),
		RingSize:    ringSize,
		Adapter:     adapterName(o.adapter),
	}
}

// Stream drives the pull loop on its own goroutine and returns a
// receive-only channel of yielded chunks plus an error channel that
// receives at most one error before both channels close. ctx cancellation
// is treated as a DownstreamClosed signal, equivalent to barge-in.
func (o *Orchestrator) Stream(ctx context.Context, onEvent OnEvent) (<-chan AudioChunk, <-chan error) {
	out := make(chan AudioChunk, 1)
	errCh := make(chan error, 1)

	o.startedAt = time.Now()
	o.state.Store(int32(StateStreaming))

	go func() {
		defer close(out)
		defer close(errCh)
		defer func() {
			if r := recover(); r != nil {
				if o.log != nil {
					o.log.Error("panic in orchestrator pull loop", "session_id", o.sessionID.String(), "panic", r)
				}
			}
		}()

		o.runLoop(ctx, out, errCh, onEvent)
	}()

	return out, errCh
}

func (o *Orchestrator) runLoop(ctx context.Context, out chan<- AudioChunk, errCh chan<- error, onEvent OnEvent) {
	for {
		if o.observeInterrupt(ctx) {
			o.enterBargeResetting(ctx, onEvent)
			return
		}

		window := o.ladder.Current()
		pullStart := time.Now()
		chunk, err := o.adapter.Pull(ctx, window)
		renderMs := float64(time.Since(pullStart)) / float64(time.Millisecond)

		if err != nil {
			wrapped := errors.New(err).Component("orchestrator").Category(errors.CategoryAdapter).
				Context("session_id", o.sessionID.String()).Build()
			if o.log != nil {
				o.log.Error("adapter pull failed", "session_id", o.sessionID.String(), "error", wrapped.Error())
			}
			if o.metrics != nil {
				o.metrics.PullErrors.Inc()
			}
			errCh <- wrapped
			return
		}

		id := o.chunkID.Load()
		o.chunkID.Add(1)

		event := NewTimelineEvent(id, adapterName(o.adapter), window, renderMs, chunk.PCM)
		event.TimestampMs = float64(time.Since(o.startedAt)) / float64(time.Millisecond)
		event.DurationMs = chunk.DurationMs
		event.BufferMs = o.buffer.DepthMs()
		o.timeline.Append(event)

		if onEvent != nil {
			onEvent(event)
		}

		if o.ring != nil {
			o.ring.Write(chunk.PCM)
		} else {
			o.buffer.Add(chunk.DurationMs)
		}

		if o.metrics != nil {
			o.metrics.ChunksPulled.Inc()
			o.metrics.RenderMs.Observe(renderMs)
			o.metrics.BufferDepthMs.Set(o.buffer.DepthMs())
			o.metrics.LadderIndex.Set(float64(o.ladder.Index()))
		}

		select {
		case out <- chunk:
		case <-ctx.Done():
			o.enterBargeResetting(ctx, onEvent)
			return
		}

		if chunk.EOS {
			o.state.Store(int32(StateTerminal))
			return
		}

		if o.observeInterrupt(ctx) {
			o.enterBargeResetting(ctx, onEvent)
			return
		}

		o.ladder.Adapt(o.buffer.DepthMs(), o.comfortLowMs, o.comfortHighMs)

		if o.stall != nil {
			o.stall.Check(o.buffer.DepthMs(), o.sessionID.String())
		}
	}
}

// observeInterrupt reports whether a barge-in signal or downstream
// cancellation has been observed. Both are treated identically.
func (o *Orchestrator) observeInterrupt(ctx context.Context) bool {
	return o.bargeIn.Load() || ctx.Err() != nil
}

func (o *Orchestrator) enterBargeResetting(ctx context.Context, onEvent OnEvent) {
	o.state.Store(int32(StateBargeResetting))

	if err := o.adapter.Reset(ctx); err != nil {
		wrapped := errors.New(err).Component("orchestrator").Category(errors.CategoryAdapter).
			Context("session_id", o.sessionID.String()).Build()
		if o.log != nil {
			o.log.Warn("adapter reset failed", "session_id", o.sessionID.String(), "error", wrapped.Error())
		}
	}

	o.buffer.Reset()
	if o.ring != nil {
		o.ring.Reset()
	}

	id := o.chunkID.Load()
	o.chunkID.Add(1)
	event := NewTimelineEvent(id, adapterName(o.adapter), o.ladder.Current(), 0, nil)
	event.TimestampMs = float64(time.Since(o.startedAt)) / float64(time.Millisecond)
	event.BufferMs = o.buffer.DepthMs()
	event.BargeInReset = true
	o.timeline.Append(event)
	if onEvent != nil {
		onEvent(event)
	}
	if o.metrics != nil {
		o.metrics.BargeIns.Inc()
	}

	o.bargeIn.Store(false)
	o.state.Store(int32(StateTerminal))
}
