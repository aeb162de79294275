package replay

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func TestParseTimelineAcceptsJSONArray(t *testing.T) {
	log := `[{"chunk_id":0,"pcm":"` + b64([]byte{1, 0}) + `"},{"chunk_id":1,"pcm":"` + b64([]byte{2, 0}) + `"}]`

	events, err := ParseTimeline(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[1].ChunkID)
}

func TestParseTimelineAcceptsNDJSON(t *testing.T) {
	log := `{"chunk_id":0,"pcm":"` + b64([]byte{1, 0}) + `"}` + "\n" +
		`{"chunk_id":1,"pcm":"` + b64([]byte{2, 0}) + `"}` + "\n"

	events, err := ParseTimeline(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestParseTimelineAcceptsSavedArtifact(t *testing.T) {
	log := `{"events":[{"chunk_id":0,"pcm":"` + b64([]byte{1, 0}) + `"}],"metrics":{"events":1}}`

	events, err := ParseTimeline(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestParseTimelineEmptyInputReturnsNoEvents(t *testing.T) {
	events, err := ParseTimeline(strings.NewReader("  \n  "))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestConcatenatePCMPreservesOrder(t *testing.T) {
	events := []Event{
		{ChunkID: 0, PCM: b64([]byte{1, 0})},
		{ChunkID: 1, PCM: b64([]byte{2, 0})},
	}

	pcm, err := ConcatenatePCM(events)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0}, pcm)
}

func TestConcatenatePCMReportsOffendingRecord(t *testing.T) {
	events := []Event{
		{ChunkID: 0, PCM: b64([]byte{1, 0})},
		{ChunkID: 7, PCM: "not-valid-base64!!"},
	}

	_, err := ConcatenatePCM(events)
	require.Error(t, err)
	assert.Contains(t, FormatEncodingError(err), "malformed record 1")
}

func TestWriteWAVProducesLiteralReplayScenario(t *testing.T) {
	log := `[{"chunk_id":0,"pcm":"` + b64([]byte{1, 0}) + `"},{"chunk_id":1,"pcm":"` + b64([]byte{2, 0}) + `"}]`

	var out bytes.Buffer
	require.NoError(t, WriteWAV(strings.NewReader(log), &out, 16000))

	data := out.Bytes()
	assert.Len(t, data, 44+4)
	assert.Equal(t, []byte("RIFF"), data[0:4])
	assert.Equal(t, []byte("data"), data[36:40])
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(data[40:44]))
	assert.Equal(t, []byte{1, 0, 2, 0}, data[44:])
}

func TestWriteWAVPropagatesMalformedJSONError(t *testing.T) {
	var out bytes.Buffer
	err := WriteWAV(strings.NewReader("{not json"), &out, 16000)
	require.Error(t, err)
}
