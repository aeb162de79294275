package orchestrator

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/morpheus-tts/pcmorchestrator/internal/errors"
)

// TimelineEvent is the serialized record of one successful pull, sufficient
// to reconstruct the produced audio from the log alone.
type TimelineEvent struct {
	ChunkID      uint64  `json:"chunk_id"`
	Adapter      string  `json:"adapter"`
	TokenWindow  int     `json:"token_window"`
	RenderMs     float64 `json:"render_ms"`
	PCMBase64    string  `json:"pcm"`
	TimestampMs  float64 `json:"timestamp_ms"`
	DurationMs   float64 `json:"duration_ms"`
	BufferMs     float64 `json:"buffer_ms"`
	BargeInReset bool    `json:"barge_in_reset,omitempty"`
}

// NewTimelineEvent builds an event, base64-encoding pcm.
func NewTimelineEvent(chunkID uint64, adapter string, window int, renderMs float64, pcm []byte) TimelineEvent {
	return TimelineEvent{
		ChunkID:     chunkID,
		Adapter:     adapter,
		TokenWindow: window,
		RenderMs:    renderMs,
		PCMBase64:   base64.StdEncoding.EncodeToString(pcm),
	}
}

// TranscriptEntry is one post-hoc transcript note.
type TranscriptEntry struct {
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
}

type timelineArtifact struct {
	Events  []TimelineEvent `json:"events"`
	Metrics artifactMetrics `json:"metrics"`
}

type artifactMetrics struct {
	Events int `json:"events"`
}

// Timeline accumulates TimelineEvents and transcript notes for one
// orchestrator run.
type Timeline struct {
	events      []TimelineEvent
	transcripts []TranscriptEntry
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Append records an event, keeping chunk_id ordering as produced by the
// caller.
func (t *Timeline) Append(e TimelineEvent) {
	t.events = append(t.events, e)
}

// Events returns the accumulated events in order.
func (t *Timeline) Events() []TimelineEvent {
	return t.events
}

// LogTranscript appends a transcript note at the given epoch-seconds
// timestamp.
func (t *Timeline) LogTranscript(timestamp float64, text string) {
	t.transcripts = append(t.transcripts, TranscriptEntry{Timestamp: timestamp, Text: text})
}

// Save writes {events, metrics:{events: N}} as pretty-printed JSON to path,
// and the accumulated transcript list to a sibling transcripts.json.
// Parent directories are created as needed.
func (t *Timeline) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(err).Component("orchestrator").Category(errors.CategoryFileIO).
			Context("path", path).Build()
	}

	artifact := timelineArtifact{Events: t.events, Metrics: artifactMetrics{Events: len(t.events)}}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return errors.New(err).Component("orchestrator").Category(errors.CategoryEncoding).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return errors.New(err).Component("orchestrator").Category(errors.CategoryFileIO).
			Context("path", path).Build()
	}

	transcriptsPath := filepath.Join(filepath.Dir(path), "transcripts.json")
	transcriptData, err := json.MarshalIndent(t.transcripts, "", "  ")
	if err != nil {
		return errors.New(err).Component("orchestrator").Category(errors.CategoryEncoding).Build()
	}
	if err := os.WriteFile(transcriptsPath, transcriptData, 0o644); err != nil { //nolint:gosec
		return errors.New(err).Component("orchestrator").Category(errors.CategoryFileIO).
			Context("path", transcriptsPath).Build()
	}
	return nil
}
