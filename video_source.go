package avsource

import (
	"sync"
	"sync/atomic"
)

// VideoSource holds the most recent frame pushed by the host. Tracks pull the
// latest frame only; nothing is queued.
type VideoSource struct {
	lifecycle

	isScreencast   bool
	needsDenoising *bool

	clock   Clock
	metrics *Metrics

	// mu serializes writers and End. Readers never take it.
	mu      sync.Mutex
	lastUs  int64
	hasLast bool

	current atomic.Pointer[VideoFrame]
}

// NewVideoSource creates a live video source. A nil needsDenoising leaves the
// choice to the downstream pipeline.
func NewVideoSource(isScreencast bool, needsDenoising *bool, opts ...Option) *VideoSource {
	o := applyOptions(opts)
	s := &VideoSource{
		isScreencast: isScreencast,
		clock:        o.clock,
		metrics:      o.metrics,
	}
	if needsDenoising != nil {
		v := *needsDenoising
		s.needsDenoising = &v
	}
	s.lifecycle.init()
	return s
}

func (s *VideoSource) Kind() RTPCodecType { return RTPCodecTypeVideo }

// IsScreencast reports the construction-time screencast hint.
func (s *VideoSource) IsScreencast() bool { return s.isScreencast }

// NeedsDenoising reports the construction-time denoising hint. ok is false
// when the hint was left unset.
func (s *VideoSource) NeedsDenoising() (needs bool, ok bool) {
	if s.needsDenoising == nil {
		return false, false
	}
	return *s.needsDenoising, true
}

// PushFrame publishes frame as the current frame. The source takes ownership
// of the frame; callers must not modify it afterwards.
func (s *VideoSource) PushFrame(frame *VideoFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishLocked(frame)
}

// pushStamped stamps buf with the source clock, nudging the stamp forward when
// the clock has not advanced past the last accepted frame.
func (s *VideoSource) pushStamped(buf *I420Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := unixMicros(s.clock)
	if s.hasLast && ts <= s.lastUs {
		ts = s.lastUs + 1
	}
	return s.publishLocked(NewVideoFrame(buf, ts))
}

func (s *VideoSource) publishLocked(frame *VideoFrame) error {
	if s.ended() {
		s.metrics.rejected(RTPCodecTypeVideo, rejectReasonEnded)
		return &RejectedFrameError{TimestampUs: frame.TimestampUs, LastUs: s.lastUs, Reason: ErrSourceEnded}
	}
	if s.hasLast && frame.TimestampUs <= s.lastUs {
		s.metrics.rejected(RTPCodecTypeVideo, rejectReasonTimestamp)
		return &RejectedFrameError{TimestampUs: frame.TimestampUs, LastUs: s.lastUs, Reason: ErrNonMonotonicTimestamp}
	}
	s.lastUs = frame.TimestampUs
	s.hasLast = true
	s.current.Store(frame)
	s.metrics.pushed(RTPCodecTypeVideo)
	return nil
}

// Frame returns the last published frame, or nil before the first push.
func (s *VideoSource) Frame() *VideoFrame {
	return s.current.Load()
}

// LastTimestamp returns the timestamp of the last accepted frame.
func (s *VideoSource) LastTimestamp() (us int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUs, s.hasLast
}

// End marks the source ended. Pushes that start after End returns fail.
func (s *VideoSource) End() {
	s.mu.Lock()
	s.state.Store(int32(SourceStateEnded))
	s.mu.Unlock()
}

func (s *VideoSource) retain() { s.attach() }

func (s *VideoSource) release() {
	if s.detach() {
		s.End()
	}
}

// Close releases the holder's reference.
func (s *VideoSource) Close() error {
	if s.drop() {
		s.End()
	}
	return nil
}
