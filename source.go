package avsource

import (
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
)

// Re-export pion's RTPCodecType so source and track kinds line up with the
// peer connection they are attached to.
type RTPCodecType = webrtc.RTPCodecType

const (
	RTPCodecTypeAudio = webrtc.RTPCodecTypeAudio
	RTPCodecTypeVideo = webrtc.RTPCodecTypeVideo
)

// SourceState is the liveness of a media source.
type SourceState int32

const (
	SourceStateLive  SourceState = iota // Accepting pushes
	SourceStateEnded                    // Ended; every push is rejected
)

func (s SourceState) String() string {
	switch s {
	case SourceStateLive:
		return "live"
	case SourceStateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MediaSource is the part of a source a track depends on.
type MediaSource interface {
	// Kind returns audio or video.
	Kind() RTPCodecType

	// State returns the current liveness state.
	State() SourceState

	// End marks the source ended. Irreversible.
	End()

	// AttachedTracks returns the number of tracks currently holding the source.
	AttachedTracks() int

	retain()
	release()
}

// Clock returns the current time. Sources stamp ingested media with it.
type Clock func() time.Time

func unixMicros(c Clock) int64 {
	return c().UnixMicro()
}

// lifecycle holds state shared by both adapters: the Live/Ended flag and the
// reference count. The holder owns one reference from construction; every
// attached track owns one more. Dropping the last reference ends the source.
type lifecycle struct {
	state  atomic.Int32
	refs   atomic.Int32
	tracks atomic.Int32
	closed atomic.Bool
}

func (l *lifecycle) init() {
	l.state.Store(int32(SourceStateLive))
	l.refs.Store(1)
}

func (l *lifecycle) State() SourceState { return SourceState(l.state.Load()) }

func (l *lifecycle) AttachedTracks() int { return int(l.tracks.Load()) }

func (l *lifecycle) ended() bool { return l.State() == SourceStateEnded }

func (l *lifecycle) attach() {
	l.refs.Add(1)
	l.tracks.Add(1)
}

// detach drops a track reference and reports whether it was the last one.
func (l *lifecycle) detach() bool {
	l.tracks.Add(-1)
	return l.refs.Add(-1) == 0
}

// drop releases the holder reference once and reports whether it was the
// last one.
func (l *lifecycle) drop() bool {
	if !l.closed.CompareAndSwap(false, true) {
		return false
	}
	return l.refs.Add(-1) == 0
}

// Option configures a source.
type Option func(*sourceOptions)

type sourceOptions struct {
	clock         Clock
	metrics       *Metrics
	audioCapacity int
}

func defaultSourceOptions() sourceOptions {
	return sourceOptions{
		clock:         time.Now,
		audioCapacity: DefaultAudioQueueCapacity,
	}
}

func applyOptions(opts []Option) sourceOptions {
	o := defaultSourceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock sets the clock used to stamp ingested media.
func WithClock(c Clock) Option {
	return func(o *sourceOptions) { o.clock = c }
}

// WithMetrics records pushes, rejections and drops into m.
func WithMetrics(m *Metrics) Option {
	return func(o *sourceOptions) { o.metrics = m }
}

// WithAudioQueueCapacity bounds the audio delivery queue.
func WithAudioQueueCapacity(n int) Option {
	return func(o *sourceOptions) { o.audioCapacity = n }
}
