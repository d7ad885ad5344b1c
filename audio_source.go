package avsource

import "sync"

// DefaultAudioQueueCapacity holds one second of 10ms chunks.
const DefaultAudioQueueCapacity = 100

// AudioSource buffers PCM chunks for asynchronous delivery to attached tracks.
// The queue is bounded; on overflow the oldest chunk is dropped and counted.
type AudioSource struct {
	lifecycle

	metrics *Metrics

	mu      sync.Mutex
	ring    []*AudioChunk
	head    int
	size    int
	dropped uint64
}

// NewAudioSource creates a live audio source. The queue capacity comes from
// WithAudioQueueCapacity; values below 1 are raised to 1.
func NewAudioSource(opts ...Option) *AudioSource {
	o := applyOptions(opts)
	capacity := o.audioCapacity
	if capacity < 1 {
		capacity = 1
	}
	s := &AudioSource{
		metrics: o.metrics,
		ring:    make([]*AudioChunk, capacity),
	}
	s.lifecycle.init()
	return s
}

func (s *AudioSource) Kind() RTPCodecType { return RTPCodecTypeAudio }

// PushData copies chunk and appends the copy to the delivery queue.
func (s *AudioSource) PushData(chunk *AudioChunk) error {
	if s.ended() {
		s.metrics.rejected(RTPCodecTypeAudio, rejectReasonEnded)
		return &RejectedChunkError{Reason: ErrSourceEnded}
	}
	c := chunk.Clone()

	s.mu.Lock()
	if s.ended() {
		s.mu.Unlock()
		s.metrics.rejected(RTPCodecTypeAudio, rejectReasonEnded)
		return &RejectedChunkError{Reason: ErrSourceEnded}
	}
	evicted := s.enqueueLocked(c)
	s.mu.Unlock()

	s.metrics.pushed(RTPCodecTypeAudio)
	if evicted {
		s.metrics.dropped()
	}
	return nil
}

func (s *AudioSource) enqueueLocked(c *AudioChunk) (evicted bool) {
	capacity := len(s.ring)
	if s.size == capacity {
		s.ring[s.head] = nil
		s.head = (s.head + 1) % capacity
		s.size--
		s.dropped++
		evicted = true
	}
	s.ring[(s.head+s.size)%capacity] = c
	s.size++
	return evicted
}

// ReadChunk pops the oldest queued chunk. ok is false when the queue is empty.
// Chunks already queued stay readable after the source ends.
func (s *AudioSource) ReadChunk() (chunk *AudioChunk, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.size == 0 {
		return nil, false
	}
	chunk = s.ring[s.head]
	s.ring[s.head] = nil
	s.head = (s.head + 1) % len(s.ring)
	s.size--
	return chunk, true
}

// Len returns the number of queued chunks.
func (s *AudioSource) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Capacity returns the queue bound.
func (s *AudioSource) Capacity() int { return len(s.ring) }

// Dropped returns the number of chunks evicted on overflow.
func (s *AudioSource) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// End marks the source ended. Pushes that start after End returns fail.
func (s *AudioSource) End() {
	s.mu.Lock()
	s.state.Store(int32(SourceStateEnded))
	s.mu.Unlock()
}

func (s *AudioSource) retain() { s.attach() }

func (s *AudioSource) release() {
	if s.detach() {
		s.End()
	}
}

// Close releases the holder's reference.
func (s *AudioSource) Close() error {
	if s.drop() {
		s.End()
	}
	return nil
}
