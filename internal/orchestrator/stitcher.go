package orchestrator

import "encoding/binary"

const fadeFixedPoint = 1 << 16

// Stitcher joins a sequence of AudioChunks into a continuous waveform using
// overlap-add. Grounded in shape on the teacher's OverlapBuffer in
// internal/audiocore/processing_pipeline.go (retain a tail, prepend to the
// next chunk) and in exact crossfade law on
// original_source/morpheus_tts/orchestrator/stitcher.py.
type Stitcher struct {
	sampleRate     int
	overlapSamples int
	emitMarkers    bool
	tail           []int16
}

// NewStitcher returns a stitcher for the given sample rate and overlap in
// milliseconds. emitMarkers controls whether input markers propagate to
// emitted chunks.
func NewStitcher(sampleRate int, overlapMs float64, emitMarkers bool) *Stitcher {
	overlapSamples := int(overlapMs * float64(sampleRate) / 1000.0)
	if overlapSamples < 0 {
		overlapSamples = 0
	}
	return &Stitcher{
		sampleRate:     sampleRate,
		overlapSamples: overlapSamples,
		emitMarkers:    emitMarkers,
	}
}

// Process feeds one input chunk and returns zero or one emitted chunks. A
// result of zero chunks occurs only under the drift guard, when the
// combined buffer is too short to safely emit relative to the overlap.
func (s *Stitcher) Process(c AudioChunk) []AudioChunk {
	working := bytesToSamples(c.PCM)

	if len(s.tail) > 0 {
		if s.overlapSamples > 0 {
			working = crossfadeJoin(s.tail, working, s.overlapSamples)
		} else {
			working = append(append([]int16{}, s.tail...), working...)
		}
		s.tail = nil
	}

	if c.EOS {
		s.tail = nil
		return []AudioChunk{s.emit(working, c.Markers, true)}
	}

	if s.overlapSamples > 0 {
		if len(working) <= s.overlapSamples {
			s.tail = working
			return nil
		}
		cut := len(working) - s.overlapSamples
		s.tail = append([]int16{}, working[cut:]...)
		return []AudioChunk{s.emit(working[:cut], c.Markers, false)}
	}

	return []AudioChunk{s.emit(working, c.Markers, false)}
}

// Flush emits any retained tail as a final EOS chunk, for streams that end
// without an explicit EOS chunk.
func (s *Stitcher) Flush() []AudioChunk {
	if len(s.tail) == 0 {
		return nil
	}
	tail := s.tail
	s.tail = nil
	return []AudioChunk{s.emit(tail, nil, true)}
}

func (s *Stitcher) emit(samples []int16, markers any, eos bool) AudioChunk {
	var m any
	if s.emitMarkers {
		m = markers
	}
	return AudioChunk{
		PCM:        samplesToBytes(samples),
		DurationMs: float64(len(samples)) / float64(s.sampleRate) * 1000.0,
		Markers:    m,
		EOS:        eos,
	}
}

// crossfadeJoin produces tail[:-ov] ++ mix(tail[-ov:], pcm[:ov]) ++ pcm[ov:]
// where ov = min(overlapSamples, len(tail), len(pcm)). The mix uses a
// linear ramp computed in fixed point so fadeOut+fadeIn sum to unity
// exactly, then accumulates in int64 before clamping back to int16.
func crossfadeJoin(tail, pcm []int16, overlapSamples int) []int16 {
	ov := overlapSamples
	if ov > len(tail) {
		ov = len(tail)
	}
	if ov > len(pcm) {
		ov = len(pcm)
	}

	out := make([]int16, 0, len(tail)+len(pcm)-ov)
	out = append(out, tail[:len(tail)-ov]...)

	tailSeg := tail[len(tail)-ov:]
	pcmSeg := pcm[:ov]
	for i := 0; i < ov; i++ {
		fadeIn := int64(i) * fadeFixedPoint / int64(ov)
		fadeOut := fadeFixedPoint - fadeIn
		mixed := int64(tailSeg[i])*fadeOut + int64(pcmSeg[i])*fadeIn
		mixed /= fadeFixedPoint
		out = append(out, clampInt16(mixed))
	}

	out = append(out, pcm[ov:]...)
	return out
}

func clampInt16(v int64) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

func bytesToSamples(b []byte) []int16 {
	n := len(b) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2 : i*2+2]))
	}
	return out
}

func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(s))
	}
	return out
}
