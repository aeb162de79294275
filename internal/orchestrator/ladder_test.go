package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkLadderDefaultSteps(t *testing.T) {
	l := NewChunkLadder(nil)
	assert.Equal(t, 8, l.Current())
}

func TestChunkLadderStepUpSaturates(t *testing.T) {
	l := NewChunkLadder([]int{8, 12, 16})
	for range 10 {
		l.StepUp()
	}
	assert.Equal(t, 2, l.Index())
	assert.Equal(t, 16, l.Current())
}

func TestChunkLadderStepDownSaturates(t *testing.T) {
	l := NewChunkLadder([]int{8, 12, 16})
	l.StepUp()
	for range 10 {
		l.StepDown()
	}
	assert.Equal(t, 0, l.Index())
}

func TestChunkLadderAdaptWithinBandIsNoop(t *testing.T) {
	l := NewChunkLadder([]int{8, 12, 16})
	l.StepUp()
	before := l.Index()

	l.Adapt(100, 50, 250)

	assert.Equal(t, before, l.Index())
}

func TestChunkLadderAdaptBelowLowStepsUp(t *testing.T) {
	l := NewChunkLadder([]int{8, 12, 16})
	l.Adapt(10, 50, 250)
	assert.Equal(t, 1, l.Index())
}

func TestChunkLadderAdaptAboveHighStepsDown(t *testing.T) {
	l := NewChunkLadder([]int{8, 12, 16})
	l.StepUp()
	l.StepUp()
	l.Adapt(300, 50, 250)
	assert.Equal(t, 1, l.Index())
}

func TestChunkLadderReset(t *testing.T) {
	l := NewChunkLadder([]int{8, 12, 16})
	l.StepUp()
	l.Reset()
	assert.Equal(t, 0, l.Index())
}
