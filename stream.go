package avsource

import (
	"errors"
	"fmt"
	"sync"
)

// MediaStream is a collection of tracks (like the browser's MediaStream).
type MediaStream struct {
	id            string
	factory       *TrackFactory
	tracks        []MediaStreamTrack
	mu            sync.RWMutex
	onAddTrack    func(MediaStreamTrack)
	onRemoveTrack func(MediaStreamTrack)
}

// NewMediaStream creates an empty stream with the given id. Streams created
// this way cannot be cloned; use TrackFactory.CreateMediaStream.
func NewMediaStream(id string) *MediaStream {
	return &MediaStream{
		id:     id,
		tracks: make([]MediaStreamTrack, 0),
	}
}

func (s *MediaStream) ID() string { return s.id }

// Active reports whether any track in the stream is live.
func (s *MediaStream) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tracks {
		if t.State() == TrackStateLive {
			return true
		}
	}
	return false
}

func (s *MediaStream) GetTracks() []MediaStreamTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]MediaStreamTrack, len(s.tracks))
	copy(result, s.tracks)
	return result
}

func (s *MediaStream) GetVideoTracks() []*VideoTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*VideoTrack
	for _, t := range s.tracks {
		if vt, ok := t.(*VideoTrack); ok {
			result = append(result, vt)
		}
	}
	return result
}

func (s *MediaStream) GetAudioTracks() []*AudioTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*AudioTrack
	for _, t := range s.tracks {
		if at, ok := t.(*AudioTrack); ok {
			result = append(result, at)
		}
	}
	return result
}

// GetTrackByID returns the track with the given id, or nil.
func (s *MediaStream) GetTrackByID(id string) MediaStreamTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tracks {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

// AddTrack adds track unless a track with the same id is already present.
// It reports whether the track was added.
func (s *MediaStream) AddTrack(track MediaStreamTrack) bool {
	s.mu.Lock()
	for _, t := range s.tracks {
		if t.ID() == track.ID() {
			s.mu.Unlock()
			return false
		}
	}
	s.tracks = append(s.tracks, track)
	cb := s.onAddTrack
	s.mu.Unlock()

	if cb != nil {
		go cb(track)
	}
	return true
}

// RemoveTrack removes the track with track's id and reports whether it was
// present.
func (s *MediaStream) RemoveTrack(track MediaStreamTrack) bool {
	s.mu.Lock()
	removed := false
	for i, t := range s.tracks {
		if t.ID() == track.ID() {
			s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)
			removed = true
			break
		}
	}
	cb := s.onRemoveTrack
	s.mu.Unlock()

	if removed && cb != nil {
		go cb(track)
	}
	return removed
}

// Clone returns a stream with a fresh id whose tracks are new tracks on the
// same sources.
func (s *MediaStream) Clone() (*MediaStream, error) {
	if s.factory == nil {
		return nil, errors.New("stream has no track factory")
	}
	tracks := s.GetTracks()

	clones := make([]MediaStreamTrack, 0, len(tracks))
	for _, t := range tracks {
		c, err := t.Clone()
		if err != nil {
			for _, done := range clones {
				done.Stop()
			}
			return nil, fmt.Errorf("failed to clone track %s: %w", t.ID(), err)
		}
		clones = append(clones, c)
	}
	return s.factory.CreateMediaStream(clones...)
}

func (s *MediaStream) OnAddTrack(callback func(MediaStreamTrack)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAddTrack = callback
}

func (s *MediaStream) OnRemoveTrack(callback func(MediaStreamTrack)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemoveTrack = callback
}

// Close stops every track and empties the stream.
func (s *MediaStream) Close() error {
	s.mu.Lock()
	tracks := s.tracks
	s.tracks = nil
	s.mu.Unlock()

	for _, t := range tracks {
		t.Stop()
	}
	return nil
}
