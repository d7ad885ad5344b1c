package avsource

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceEnded is returned for pushes into a source that has ended.
	ErrSourceEnded = errors.New("source ended")

	// ErrNonMonotonicTimestamp is returned when a frame's timestamp is not
	// strictly after the last accepted frame.
	ErrNonMonotonicTimestamp = errors.New("timestamp not after last accepted frame")

	// ErrTrackID is returned when a track identifier cannot be generated.
	ErrTrackID = errors.New("cannot generate track id")
)

// RejectedFrameError reports a video frame that was not published.
type RejectedFrameError struct {
	TimestampUs int64
	LastUs      int64
	Reason      error
}

func (e *RejectedFrameError) Error() string {
	if errors.Is(e.Reason, ErrNonMonotonicTimestamp) {
		return fmt.Sprintf("rejected frame at %dus: %v (last %dus)", e.TimestampUs, e.Reason, e.LastUs)
	}
	return fmt.Sprintf("rejected frame at %dus: %v", e.TimestampUs, e.Reason)
}

func (e *RejectedFrameError) Unwrap() error { return e.Reason }

// RejectedChunkError reports an audio chunk that was not enqueued.
type RejectedChunkError struct {
	Reason error
}

func (e *RejectedChunkError) Error() string {
	return "rejected audio chunk: " + e.Reason.Error()
}

func (e *RejectedChunkError) Unwrap() error { return e.Reason }

// ArgumentShapeError reports a host argument that could not be converted.
// Err, when set, is the validation failure behind it.
type ArgumentShapeError struct {
	Field    string
	Expected string
	Got      any
	Err      error
}

func (e *ArgumentShapeError) Error() string {
	switch {
	case e.Err != nil && e.Field == "":
		return fmt.Sprintf("expected %s: %v", e.Expected, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: expected %s: %v", e.Field, e.Expected, e.Err)
	case e.Field == "":
		return fmt.Sprintf("expected %s, got %T", e.Expected, e.Got)
	default:
		return fmt.Sprintf("%s: expected %s, got %T (%v)", e.Field, e.Expected, e.Got, e.Got)
	}
}

func (e *ArgumentShapeError) Unwrap() error { return e.Err }

// ConstructionError reports a source or stream that could not be constructed.
type ConstructionError struct {
	Name string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct %s: %v", e.Name, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }
