// Package wavfmt encodes mono 16-bit PCM as WAV, either with a known total
// length (replay/scene artifacts) or an unknown-length streaming header.
// Grounded on the teacher's encodeWAV in internal/audiocore/export/wav.go,
// which builds the same RIFF/fmt/data layout via an ordered element list.
package wavfmt

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/morpheus-tts/pcmorchestrator/internal/errors"
)

const (
	bitsPerSample = 16
	channels      = 1
	bytesPerFrame = channels * bitsPerSample / 8
)

// WriteHeader writes a standard closed-form 44-byte RIFF/WAVE header sized
// for exactly pcmLen bytes of mono 16-bit PCM at sampleRate, mirroring the
// teacher's encodeWAV element-by-element header assembly.
func WriteHeader(w io.Writer, sampleRate int, pcmLen int) error {
	byteRate := sampleRate * bytesPerFrame
	subChunk2Size := uint32(pcmLen)
	chunkSize := 36 + subChunk2Size

	elements := []any{
		[]byte("RIFF"),
		chunkSize,
		[]byte("WAVE"),
		[]byte("fmt "),
		uint32(16),
		uint16(1), // PCM format tag
		uint16(channels),
		uint32(sampleRate),
		uint32(byteRate),
		uint16(bytesPerFrame),
		uint16(bitsPerSample),
		[]byte("data"),
		subChunk2Size,
	}
	return writeElements(w, elements)
}

// WriteStreamingHeader writes a RIFF/WAVE header with unknown-length
// fields (0xFFFFFFFF) for chunkSize and the data subchunk size, per the
// streaming PCM framing contract: frames follow contiguously until the
// stream ends and no total length can be known in advance.
func WriteStreamingHeader(w io.Writer, sampleRate int) error {
	const unknownLength = uint32(0xFFFFFFFF)
	byteRate := sampleRate * bytesPerFrame

	elements := []any{
		[]byte("RIFF"),
		unknownLength,
		[]byte("WAVE"),
		[]byte("fmt "),
		uint32(16),
		uint16(1),
		uint16(channels),
		uint32(sampleRate),
		uint32(byteRate),
		uint16(bytesPerFrame),
		uint16(bitsPerSample),
		[]byte("data"),
		unknownLength,
	}
	return writeElements(w, elements)
}

// Encode returns a complete closed-form WAV file: header sized for pcm's
// length, followed by pcm itself.
func Encode(sampleRate int, pcm []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := WriteHeader(buf, sampleRate, len(pcm)); err != nil {
		return nil, err
	}
	if _, err := buf.Write(pcm); err != nil {
		return nil, errors.New(err).Component("wavfmt").Category(errors.CategoryFileIO).Build()
	}
	return buf.Bytes(), nil
}

func writeElements(w io.Writer, elements []any) error {
	for _, elem := range elements {
		if b, ok := elem.([]byte); ok {
			if _, err := w.Write(b); err != nil {
				return errors.New(err).Component("wavfmt").Category(errors.CategoryFileIO).
					Context("operation", "write_wav_header_bytes").Build()
			}
			continue
		}
		if err := binary.Write(w, binary.LittleEndian, elem); err != nil {
			return errors.New(err).Component("wavfmt").Category(errors.CategoryFileIO).
				Context("operation", "write_wav_header_binary").Build()
		}
	}
	return nil
}
