package orchestrator

import (
	"github.com/smallnest/ringbuffer"
)

const bytesPerSample = 2 // mono 16-bit signed little-endian

// RingBuffer is a fixed-capacity byte queue backed by smallnest/ringbuffer
// that keeps a linked PlaybackBuffer's depth in sync with every byte it
// accepts or releases. Grounded on the teacher's circular_buffer.go for the
// "pair a byte store with a time-based depth model" shape, but the actual
// wraparound storage is delegated to the real dependency instead of a
// hand-rolled slice.
type RingBuffer struct {
	rb         *ringbuffer.RingBuffer
	buffer     *PlaybackBuffer
	sampleRate int
	capacity   int
	size       int
}

// NewRingBuffer returns a ring buffer of the given byte capacity, wired to
// buffer so every Write/Read updates exactly one depth model, per the
// "never double-count" rule governing the optional RingBuffer path.
func NewRingBuffer(capacity, sampleRate int, buffer *PlaybackBuffer) *RingBuffer {
	return &RingBuffer{
		rb:         ringbuffer.New(capacity),
		buffer:     buffer,
		sampleRate: sampleRate,
		capacity:   capacity,
	}
}

func (r *RingBuffer) bytesToMs(n int) float64 {
	samples := float64(n / bytesPerSample)
	return samples / float64(r.sampleRate) * 1000.0
}

// Write appends up to capacity-size bytes of b, returning the accepted
// count. A short write is not an error; it signals backpressure to the
// chunk ladder on its next adapt.
func (r *RingBuffer) Write(b []byte) int {
	n, _ := r.rb.TryWrite(b)
	r.size += n
	if r.size > r.capacity {
		r.size = r.capacity
	}
	r.buffer.Add(r.bytesToMs(n))
	return n
}

// Read returns up to min(n, size) bytes.
func (r *RingBuffer) Read(n int) []byte {
	out := make([]byte, n)
	read, _ := r.rb.TryRead(out)
	r.size -= read
	if r.size < 0 {
		r.size = 0
	}
	r.buffer.Consume(r.bytesToMs(read))
	return out[:read]
}

// Reset zeroes size and both indices; the underlying byte storage is not
// cleared.
func (r *RingBuffer) Reset() {
	r.rb.Reset()
	r.size = 0
}

// Size returns the number of bytes currently queued.
func (r *RingBuffer) Size() int {
	return r.size
}

// Capacity returns the fixed byte capacity.
func (r *RingBuffer) Capacity() int {
	return r.capacity
}
