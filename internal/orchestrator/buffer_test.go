package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaybackBufferAddConsume(t *testing.T) {
	b := NewPlaybackBuffer(1000)
	b.Add(150)
	assert.InDelta(t, 150.0, b.DepthMs(), 0.001)

	b.Consume(50)
	assert.InDelta(t, 100.0, b.DepthMs(), 0.001)
}

func TestPlaybackBufferConsumeClampsAtZero(t *testing.T) {
	b := NewPlaybackBuffer(1000)
	b.Add(10)
	b.Consume(100)

	assert.GreaterOrEqual(t, b.DepthMs(), 0.0)
	assert.Equal(t, 0.0, b.DepthMs())
}

func TestPlaybackBufferReset(t *testing.T) {
	b := NewPlaybackBuffer(1000)
	b.Add(500)
	b.Reset()
	assert.Equal(t, 0.0, b.DepthMs())
}

func TestPlaybackBufferWithin(t *testing.T) {
	b := NewPlaybackBuffer(1000)
	b.Add(100)

	assert.True(t, b.Within(50, 150))
	assert.False(t, b.Within(150, 300))
}
