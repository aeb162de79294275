package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the Prometheus collectors the orchestrator updates at the
// same points it records a TimelineEvent, adding no extra suspension
// points. Grounded on the teacher's internal/audiocore metrics pattern of
// one counter/gauge/histogram set per pipeline stage.
type Metrics struct {
	ChunksPulled  prometheus.Counter
	PullErrors    prometheus.Counter
	BargeIns      prometheus.Counter
	RenderMs      prometheus.Histogram
	BufferDepthMs prometheus.Gauge
	LadderIndex   prometheus.Gauge
}

// NewMetrics constructs a Metrics bundle and registers it with reg. Pass a
// fresh *prometheus.Registry per orchestrator instance, or a shared
// registry with distinct constLabels, to avoid duplicate-registration
// panics across multiple orchestrators.
func NewMetrics(reg prometheus.Registerer, constLabels prometheus.Labels) *Metrics {
	m := &Metrics{
		ChunksPulled: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pcmorchestrator_chunks_pulled_total",
			Help:        "Number of chunks successfully pulled from the adapter.",
			ConstLabels: constLabels,
		}),
		PullErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pcmorchestrator_pull_errors_total",
			Help:        "Number of adapter.Pull calls that returned an error.",
			ConstLabels: constLabels,
		}),
		BargeIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pcmorchestrator_barge_ins_total",
			Help:        "Number of barge-in resets performed.",
			ConstLabels: constLabels,
		}),
		RenderMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "pcmorchestrator_render_ms",
			Help:        "Wall-clock time spent in adapter.Pull, in milliseconds.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),
		BufferDepthMs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "pcmorchestrator_buffer_depth_ms",
			Help:        "Current playback buffer depth in milliseconds.",
			ConstLabels: constLabels,
		}),
		LadderIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "pcmorchestrator_ladder_index",
			Help:        "Current chunk ladder cursor position.",
			ConstLabels: constLabels,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ChunksPulled, m.PullErrors, m.BargeIns, m.RenderMs, m.BufferDepthMs, m.LadderIndex)
	}

	return m
}
