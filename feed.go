package avsource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Feeder pushes generated frames and chunks into an AudioVideoSource at the
// generators' real-time pace, standing in for a host capture loop.
type Feeder struct {
	source *AudioVideoSource
	video  *VideoPattern
	audio  *AudioPattern

	frames   atomic.Uint64
	chunks   atomic.Uint64
	rejected atomic.Uint64
}

// NewFeeder creates a feeder. Either generator may be nil.
func NewFeeder(source *AudioVideoSource, video *VideoPattern, audio *AudioPattern) *Feeder {
	return &Feeder{source: source, video: video, audio: audio}
}

// FeederStats counts what a feeder pushed.
type FeederStats struct {
	Frames   uint64
	Chunks   uint64
	Rejected uint64
}

func (f *Feeder) Stats() FeederStats {
	return FeederStats{
		Frames:   f.frames.Load(),
		Chunks:   f.chunks.Load(),
		Rejected: f.rejected.Load(),
	}
}

// Run pushes until ctx is done or the source ends. It returns ctx.Err() or
// ErrSourceEnded.
func (f *Feeder) Run(ctx context.Context) error {
	var videoC, audioC <-chan time.Time
	if f.video != nil {
		t := time.NewTicker(f.video.FrameInterval())
		defer t.Stop()
		videoC = t.C
	}
	if f.audio != nil {
		t := time.NewTicker(f.audio.ChunkInterval())
		defer t.Stop()
		audioC = t.C
	}
	if videoC == nil && audioC == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-videoC:
			if err := f.count(f.source.OnFrame(f.video.Next()), &f.frames); err != nil {
				return err
			}
		case <-audioC:
			if err := f.count(f.source.OnData(f.audio.Next()), &f.chunks); err != nil {
				return err
			}
		}
	}
}

func (f *Feeder) count(err error, ok *atomic.Uint64) error {
	if err == nil {
		ok.Add(1)
		return nil
	}
	f.rejected.Add(1)
	if errors.Is(err, ErrSourceEnded) {
		return ErrSourceEnded
	}
	return nil
}
