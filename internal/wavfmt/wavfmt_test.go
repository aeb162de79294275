package wavfmt

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeProducesLiteralReplayScenario(t *testing.T) {
	pcm := append([]byte{1, 0}, []byte{2, 0}...)

	out, err := Encode(16000, pcm)
	require.NoError(t, err)

	assert.Len(t, out, 44+4)
	assert.Equal(t, []byte("RIFF"), out[0:4])
	assert.Equal(t, []byte("WAVE"), out[8:12])
	assert.Equal(t, []byte("data"), out[36:40])
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(out[40:44]))
	assert.Equal(t, []byte{1, 0, 2, 0}, out[44:])
}

func TestWriteHeaderFieldsMatchPCMFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteHeader(buf, 16000, 100))

	out := buf.Bytes()
	assert.Equal(t, uint32(1), uint32(binary.LittleEndian.Uint16(out[20:22]))) // audio format = PCM
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(out[22:24]))        // channels
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(out[24:28]))    // sample rate
	assert.Equal(t, uint32(32000), binary.LittleEndian.Uint32(out[28:32]))    // byte rate
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(out[32:34]))        // block align
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(out[34:36]))       // bits per sample
}

func TestWriteStreamingHeaderUsesUnknownLength(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteStreamingHeader(buf, 16000))

	out := buf.Bytes()
	assert.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(out[4:8]))
	assert.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(out[40:44]))
}
