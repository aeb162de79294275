// Package replay reconstructs a WAV file from a timeline log by
// concatenating the base64-decoded PCM field of each recorded event in
// order, proving the timeline is a lossless capture of produced audio.
// Grounded directly on original_source/replay.py.
package replay

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/morpheus-tts/pcmorchestrator/internal/errors"
	"github.com/morpheus-tts/pcmorchestrator/internal/wavfmt"
)

// Event is the minimal shape replay needs from a TimelineEvent record.
type Event struct {
	ChunkID uint64 `json:"chunk_id"`
	PCM     string `json:"pcm"`
}

// ParseTimeline reads a timeline log that is either a single JSON array of
// events or newline-delimited JSON, one event per line.
func ParseTimeline(r io.Reader) ([]Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(err).Component("replay").Category(errors.CategoryFileIO).Build()
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var events []Event
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, errors.New(err).Component("replay").Category(errors.CategoryEncoding).
				Context("format", "json-array").Build()
		}
		return events, nil
	}

	if wrapper, ok := tryUnmarshalArtifact(data); ok {
		return wrapper, nil
	}

	var events []Event
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(text, &e); err != nil {
			return nil, errors.New(err).Component("replay").Category(errors.CategoryEncoding).
				Context("line", line).Build()
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.New(err).Component("replay").Category(errors.CategoryFileIO).Build()
	}
	return events, nil
}

// tryUnmarshalArtifact recognizes the {"events": [...], "metrics": {...}}
// shape save_timeline produces, so replay can consume a saved artifact file
// directly in addition to a bare event log.
func tryUnmarshalArtifact(data []byte) ([]Event, bool) {
	var artifact struct {
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(data, &artifact); err != nil || artifact.Events == nil {
		return nil, false
	}
	return artifact.Events, true
}

// ConcatenatePCM decodes and concatenates each event's base64 PCM field in
// order, returning an error naming the offending record on malformed
// base64.
func ConcatenatePCM(events []Event) ([]byte, error) {
	var out []byte
	for i, e := range events {
		pcm, err := base64.StdEncoding.DecodeString(e.PCM)
		if err != nil {
			return nil, errors.New(err).Component("replay").Category(errors.CategoryEncoding).
				Context("record_index", i).Context("chunk_id", e.ChunkID).
				Build()
		}
		out = append(out, pcm...)
	}
	return out, nil
}

// WriteWAV reads a timeline from r, decodes and concatenates its PCM, and
// writes a closed-form WAV at sampleRate to w.
func WriteWAV(r io.Reader, w io.Writer, sampleRate int) error {
	events, err := ParseTimeline(r)
	if err != nil {
		return err
	}
	pcm, err := ConcatenatePCM(events)
	if err != nil {
		return err
	}
	data, err := wavfmt.Encode(sampleRate, pcm)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.New(err).Component("replay").Category(errors.CategoryFileIO).Build()
	}
	return nil
}

// FormatEncodingError renders err for CLI display, naming the offending
// record when the error carries that context.
func FormatEncodingError(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		if idx, ok := ee.GetContext()["record_index"]; ok {
			return fmt.Sprintf("malformed record %v: %s", idx, ee.Error())
		}
		if line, ok := ee.GetContext()["line"]; ok {
			return fmt.Sprintf("malformed record at line %v: %s", line, ee.Error())
		}
	}
	return err.Error()
}
