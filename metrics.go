package avsource

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	rejectReasonEnded     = "ended"
	rejectReasonTimestamp = "timestamp"
)

// Metrics holds the prometheus collectors sources and factories report into.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Pushed        *prometheus.CounterVec
	Rejected      *prometheus.CounterVec
	ChunksDropped prometheus.Counter
	TracksCreated *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Pushed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avsource_pushes_total",
				Help: "Total number of frames and chunks accepted",
			},
			[]string{"kind"},
		),
		Rejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avsource_rejections_total",
				Help: "Total number of frames and chunks rejected",
			},
			[]string{"kind", "reason"},
		),
		ChunksDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "avsource_audio_chunks_dropped_total",
			Help: "Total number of audio chunks evicted from a full delivery queue",
		}),
		TracksCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avsource_tracks_created_total",
				Help: "Total number of tracks created",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) pushed(kind RTPCodecType) {
	if m == nil {
		return
	}
	m.Pushed.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) rejected(kind RTPCodecType, reason string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(kind.String(), reason).Inc()
}

func (m *Metrics) dropped() {
	if m == nil {
		return
	}
	m.ChunksDropped.Inc()
}

func (m *Metrics) trackCreated(kind RTPCodecType) {
	if m == nil {
		return
	}
	m.TracksCreated.WithLabelValues(kind.String()).Inc()
}
