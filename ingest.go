package avsource

import (
	"errors"
	"fmt"
)

// SourceInit holds the construction options a host passes to
// AudioVideoSource. A nil NeedsDenoising means the pipeline default.
type SourceInit struct {
	IsScreencast   bool
	NeedsDenoising *bool
}

// AudioVideoSource pairs a video and an audio source behind a single
// ingestion surface. Frames and chunks are stamped with the ingestion clock
// at the moment of the call and handed to the adapters without blocking.
type AudioVideoSource struct {
	video   *VideoSource
	audio   *AudioSource
	factory *TrackFactory
	clock   Clock
}

// NewAudioVideoSource constructs both sources from init.
func NewAudioVideoSource(init SourceInit, factory *TrackFactory, opts ...Option) (*AudioVideoSource, error) {
	if factory == nil {
		return nil, &ConstructionError{Name: "RTCAudioVideoSource", Err: errors.New("nil track factory")}
	}
	o := applyOptions(opts)
	if o.clock == nil {
		return nil, &ConstructionError{Name: "RTCAudioVideoSource", Err: errors.New("nil clock")}
	}
	if o.audioCapacity < 1 {
		return nil, &ConstructionError{
			Name: "RTCAudioVideoSource",
			Err:  fmt.Errorf("audio queue capacity must be positive, got %d", o.audioCapacity),
		}
	}
	return &AudioVideoSource{
		video:   NewVideoSource(init.IsScreencast, init.NeedsDenoising, opts...),
		audio:   NewAudioSource(opts...),
		factory: factory,
		clock:   o.clock,
	}, nil
}

// OnFrame stamps a copy of buf with the ingestion clock and publishes it. The
// caller keeps ownership of buf and may reuse it once OnFrame returns.
func (s *AudioVideoSource) OnFrame(buf *I420Buffer) error {
	if err := buf.Validate(); err != nil {
		return &ArgumentShapeError{Field: "frame", Expected: "I420 buffer", Got: buf, Err: err}
	}
	return s.video.pushStamped(buf.Clone())
}

// OnData stamps chunk with the ingestion clock and queues a copy of it.
func (s *AudioVideoSource) OnData(chunk *AudioChunk) error {
	if err := chunk.Validate(); err != nil {
		return &ArgumentShapeError{Field: "data", Expected: "PCM chunk", Got: chunk, Err: err}
	}
	stamped := *chunk
	stamped.TimestampUs = unixMicros(s.clock)
	return s.audio.PushData(&stamped)
}

// CreateVideoTrack mints a new track on the video source.
func (s *AudioVideoSource) CreateVideoTrack() (*VideoTrack, error) {
	return s.factory.CreateVideoTrack(s.video)
}

// CreateAudioTrack mints a new track on the audio source.
func (s *AudioVideoSource) CreateAudioTrack() (*AudioTrack, error) {
	return s.factory.CreateAudioTrack(s.audio)
}

func (s *AudioVideoSource) IsScreencast() bool { return s.video.IsScreencast() }

func (s *AudioVideoSource) NeedsDenoising() (needs bool, ok bool) {
	return s.video.NeedsDenoising()
}

func (s *AudioVideoSource) Video() *VideoSource { return s.video }
func (s *AudioVideoSource) Audio() *AudioSource { return s.audio }

// End ends both sources. Attached tracks report ended.
func (s *AudioVideoSource) End() {
	s.video.End()
	s.audio.End()
}

// Close releases the holder's references. Sources stay live while tracks
// still hold them.
func (s *AudioVideoSource) Close() error {
	s.video.Close()
	s.audio.Close()
	return nil
}
