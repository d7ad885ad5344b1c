package avsource

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// TrackState represents the state of a track.
type TrackState int

const (
	TrackStateLive  TrackState = iota // Track and source are both live
	TrackStateEnded                   // Track stopped or its source ended
)

func (s TrackState) String() string {
	switch s {
	case TrackStateLive:
		return "live"
	case TrackStateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MediaStreamTrack is a track minted from a source. Every implementation can
// be handed to webrtc.PeerConnection.AddTrack.
type MediaStreamTrack interface {
	webrtc.TrackLocal

	// Label returns a human-readable label for the track.
	Label() string

	// State returns live until the track is stopped or its source ends.
	State() TrackState

	// Enabled returns whether the track is enabled.
	Enabled() bool

	// SetEnabled sets the enabled state.
	SetEnabled(enabled bool)

	// Stop ends the track and releases its source reference.
	Stop()

	// Clone creates a new track with a fresh id on the same source.
	Clone() (MediaStreamTrack, error)

	// Source returns the source backing the track.
	Source() MediaSource

	// OnEnded sets a callback for when the track is stopped.
	OnEnded(callback func())
}

// Track provides the state shared by audio and video tracks and implements
// webrtc.TrackLocal. RTP produced by an external encoder is fanned out to
// every bound peer connection through WriteRTP.
type Track struct {
	id       string
	streamID string
	rid      string
	label    string
	kind     RTPCodecType
	codec    webrtc.RTPCodecCapability
	source   MediaSource
	factory  *TrackFactory
	stopped  atomic.Bool
	enabled  atomic.Bool
	endedCb  func()
	mu       sync.RWMutex
	bindMu   sync.RWMutex
	bindings []webrtc.TrackLocalContext
}

func newTrack(id, streamID string, codec webrtc.RTPCodecCapability, source MediaSource, factory *TrackFactory) *Track {
	t := &Track{
		id:       id,
		streamID: streamID,
		label:    source.Kind().String() + "-" + id,
		kind:     source.Kind(),
		codec:    codec,
		source:   source,
		factory:  factory,
	}
	t.enabled.Store(true)
	source.retain()
	return t
}

func (t *Track) ID() string         { return t.id }
func (t *Track) StreamID() string   { return t.streamID }
func (t *Track) Kind() RTPCodecType { return t.kind }
func (t *Track) Label() string      { return t.label }

func (t *Track) RID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rid
}

func (t *Track) SetRID(rid string) {
	t.mu.Lock()
	t.rid = rid
	t.mu.Unlock()
}

// Codec returns the codec capability offered when the track is bound.
func (t *Track) Codec() webrtc.RTPCodecCapability { return t.codec }

// Source returns the backing source.
func (t *Track) Source() MediaSource { return t.source }

func (t *Track) State() TrackState {
	if t.stopped.Load() || t.source.State() == SourceStateEnded {
		return TrackStateEnded
	}
	return TrackStateLive
}

func (t *Track) Enabled() bool     { return t.enabled.Load() }
func (t *Track) SetEnabled(e bool) { t.enabled.Store(e) }

func (t *Track) OnEnded(callback func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endedCb = callback
}

// Stop ends the track. The first call releases the source reference.
func (t *Track) Stop() {
	if !t.stopped.CompareAndSwap(false, true) {
		return
	}
	t.source.release()

	t.mu.RLock()
	cb := t.endedCb
	t.mu.RUnlock()
	if cb != nil {
		go cb()
	}
}

// Close implements io.Closer.
func (t *Track) Close() error {
	t.Stop()
	return nil
}

// Bind implements webrtc.TrackLocal.
func (t *Track) Bind(ctx webrtc.TrackLocalContext) (webrtc.RTPCodecParameters, error) {
	t.bindMu.Lock()
	defer t.bindMu.Unlock()

	t.bindings = append(t.bindings, ctx)

	// Find matching codec from negotiated parameters
	for _, p := range ctx.CodecParameters() {
		if p.MimeType == t.codec.MimeType {
			return p, nil
		}
	}

	return webrtc.RTPCodecParameters{
		RTPCodecCapability: t.codec,
	}, nil
}

// Unbind implements webrtc.TrackLocal.
func (t *Track) Unbind(ctx webrtc.TrackLocalContext) error {
	t.bindMu.Lock()
	defer t.bindMu.Unlock()

	for i, b := range t.bindings {
		if b.ID() == ctx.ID() {
			t.bindings = append(t.bindings[:i], t.bindings[i+1:]...)
			break
		}
	}
	return nil
}

// Bindings returns the number of peer connections the track is bound to.
func (t *Track) Bindings() int {
	t.bindMu.RLock()
	defer t.bindMu.RUnlock()
	return len(t.bindings)
}

// WriteRTP writes an encoded RTP packet to all bound contexts. Packets are
// discarded while the track is disabled or ended.
func (t *Track) WriteRTP(p *rtp.Packet) error {
	if !t.Enabled() || t.State() == TrackStateEnded {
		return nil
	}

	t.bindMu.RLock()
	defer t.bindMu.RUnlock()

	for _, b := range t.bindings {
		if _, err := b.WriteStream().WriteRTP(&p.Header, p.Payload); err != nil {
			return err
		}
	}
	return nil
}

// Write writes raw RTP bytes to all bound contexts.
func (t *Track) Write(b []byte) (int, error) {
	var p rtp.Packet
	if err := p.Unmarshal(b); err != nil {
		return 0, err
	}
	return len(b), t.WriteRTP(&p)
}

var _ webrtc.TrackLocal = (*Track)(nil)

// VideoTrack is a track backed by a VideoSource.
type VideoTrack struct {
	*Track
	video *VideoSource
}

// Frame returns the latest frame of the source, or nil if the track is
// disabled, ended or nothing has been pushed yet.
func (t *VideoTrack) Frame() *VideoFrame {
	if !t.Enabled() || t.State() == TrackStateEnded {
		return nil
	}
	return t.video.Frame()
}

// VideoSource returns the typed source.
func (t *VideoTrack) VideoSource() *VideoSource { return t.video }

// VideoTrackSettings reports the source hints seen by the track.
type VideoTrackSettings struct {
	IsScreencast   bool
	NeedsDenoising *bool
}

// Settings returns the source hints.
func (t *VideoTrack) Settings() VideoTrackSettings {
	s := VideoTrackSettings{IsScreencast: t.video.IsScreencast()}
	if v, ok := t.video.NeedsDenoising(); ok {
		s.NeedsDenoising = &v
	}
	return s
}

func (t *VideoTrack) Clone() (MediaStreamTrack, error) {
	c, err := t.factory.CreateVideoTrack(t.video)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AudioTrack is a track backed by an AudioSource.
type AudioTrack struct {
	*Track
	audio *AudioSource
}

// ReadChunk pops the oldest chunk queued on the source. Tracks sharing a source
// share its queue. A disabled track reads nothing and leaves the queue alone;
// the source's drop-oldest policy keeps it bounded meanwhile.
func (t *AudioTrack) ReadChunk() (*AudioChunk, bool) {
	if t.stopped.Load() || !t.Enabled() {
		return nil, false
	}
	return t.audio.ReadChunk()
}

// AudioSource returns the typed source.
func (t *AudioTrack) AudioSource() *AudioSource { return t.audio }

func (t *AudioTrack) Clone() (MediaStreamTrack, error) {
	c, err := t.factory.CreateAudioTrack(t.audio)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var (
	_ MediaStreamTrack = (*VideoTrack)(nil)
	_ MediaStreamTrack = (*AudioTrack)(nil)
)

// Default codecs offered by new tracks.
var (
	DefaultVideoCodec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}
	DefaultAudioCodec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}
)

// TrackFactory mints uniquely identified tracks. It holds no per-track state.
type TrackFactory struct {
	newID      func() (uuid.UUID, error)
	metrics    *Metrics
	streamID   string
	videoCodec webrtc.RTPCodecCapability
	audioCodec webrtc.RTPCodecCapability
}

// FactoryOption configures a TrackFactory.
type FactoryOption func(*TrackFactory)

// WithIDGenerator replaces uuid.NewRandom.
func WithIDGenerator(gen func() (uuid.UUID, error)) FactoryOption {
	return func(f *TrackFactory) { f.newID = gen }
}

// WithFactoryMetrics counts created tracks in m.
func WithFactoryMetrics(m *Metrics) FactoryOption {
	return func(f *TrackFactory) { f.metrics = m }
}

// WithStreamID sets the msid stream id advertised by new tracks.
func WithStreamID(id string) FactoryOption {
	return func(f *TrackFactory) { f.streamID = id }
}

// WithVideoCodec sets the codec new video tracks offer.
func WithVideoCodec(c webrtc.RTPCodecCapability) FactoryOption {
	return func(f *TrackFactory) { f.videoCodec = c }
}

// WithAudioCodec sets the codec new audio tracks offer.
func WithAudioCodec(c webrtc.RTPCodecCapability) FactoryOption {
	return func(f *TrackFactory) { f.audioCodec = c }
}

// NewTrackFactory creates a track factory.
func NewTrackFactory(opts ...FactoryOption) *TrackFactory {
	f := &TrackFactory{
		newID:      uuid.NewRandom,
		streamID:   "avsource",
		videoCodec: DefaultVideoCodec,
		audioCodec: DefaultAudioCodec,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *TrackFactory) id() (string, error) {
	id, err := f.newID()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTrackID, err)
	}
	return id.String(), nil
}

// CreateVideoTrack returns a new track on src. Several tracks may share one
// source.
func (f *TrackFactory) CreateVideoTrack(src *VideoSource) (*VideoTrack, error) {
	id, err := f.id()
	if err != nil {
		return nil, err
	}
	t := &VideoTrack{
		Track: newTrack(id, f.streamID, f.videoCodec, src, f),
		video: src,
	}
	f.metrics.trackCreated(RTPCodecTypeVideo)
	return t, nil
}

// CreateAudioTrack returns a new track on src. Several tracks may share one
// source.
func (f *TrackFactory) CreateAudioTrack(src *AudioSource) (*AudioTrack, error) {
	id, err := f.id()
	if err != nil {
		return nil, err
	}
	t := &AudioTrack{
		Track: newTrack(id, f.streamID, f.audioCodec, src, f),
		audio: src,
	}
	f.metrics.trackCreated(RTPCodecTypeAudio)
	return t, nil
}

// CreateMediaStream returns a stream with a random id holding tracks.
func (f *TrackFactory) CreateMediaStream(tracks ...MediaStreamTrack) (*MediaStream, error) {
	id, err := f.newID()
	if err != nil {
		return nil, fmt.Errorf("cannot generate stream id: %w", err)
	}
	s := NewMediaStream(id.String())
	s.factory = f
	for _, t := range tracks {
		s.AddTrack(t)
	}
	return s, nil
}
