package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int16sToChunk(samples []int16, eos bool) AudioChunk {
	return AudioChunk{PCM: samplesToBytes(samples), EOS: eos}
}

func TestStitcherUnityGainWithZeroOverlap(t *testing.T) {
	s := NewStitcher(1000, 0, false)

	var got []int16
	for _, chunk := range []AudioChunk{
		int16sToChunk([]int16{0, 1, 2}, false),
		int16sToChunk([]int16{3, 4, 5}, true),
	} {
		for _, out := range s.Process(chunk) {
			got = append(got, bytesToSamples(out.PCM)...)
		}
	}

	assert.Equal(t, []int16{0, 1, 2, 3, 4, 5}, got)
}

func TestStitcherCrossfadeLiteralScenario(t *testing.T) {
	s := NewStitcher(1000, 2, false) // 2 samples of overlap at 1kHz

	var got []int16
	emitted1 := s.Process(int16sToChunk([]int16{0, 1, 2, 3, 4, 5}, false))
	require.Len(t, emitted1, 1)
	got = append(got, bytesToSamples(emitted1[0].PCM)...)

	emitted2 := s.Process(int16sToChunk([]int16{5, 4, 3, 2, 1, 0}, true))
	require.Len(t, emitted2, 1)
	assert.True(t, emitted2[0].EOS)
	got = append(got, bytesToSamples(emitted2[0].PCM)...)

	assert.Equal(t, []int16{0, 1, 2, 3, 4, 4, 3, 2, 1, 0}, got)
}

func TestStitcherDriftGuardAccumulatesShortChunks(t *testing.T) {
	s := NewStitcher(1000, 5, false) // overlap_samples = 5

	emitted := s.Process(int16sToChunk([]int16{1, 2}, false)) // shorter than overlap
	assert.Empty(t, emitted)

	final := s.Process(int16sToChunk([]int16{3, 4, 5}, true))
	require.Len(t, final, 1)
	// The retained [1,2] is crossfaded with [3,4,5] over min(5, 2, 3) = 2
	// samples: 1*1 + 3*0 = 1, then (2+4)/2 = 3, followed by the remaining 5.
	assert.Equal(t, []int16{1, 3, 5}, bytesToSamples(final[0].PCM))
}

func TestStitcherFlushesRemainingTailWithoutEOS(t *testing.T) {
	s := NewStitcher(1000, 2, false)

	emitted := s.Process(int16sToChunk([]int16{0, 1, 2, 3, 4, 5}, false))
	require.Len(t, emitted, 1)

	final := s.Flush()
	require.Len(t, final, 1)
	assert.True(t, final[0].EOS)
	assert.Equal(t, []int16{4, 5}, bytesToSamples(final[0].PCM))
}

func TestStitcherDurationMsMatchesSampleCount(t *testing.T) {
	s := NewStitcher(1000, 0, false)
	emitted := s.Process(int16sToChunk([]int16{0, 1, 2, 3, 4}, true))
	require.Len(t, emitted, 1)
	assert.InDelta(t, 5.0, emitted[0].DurationMs, 0.001)
}
