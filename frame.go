// Core frame and sample types used across the avsource package.
package avsource

import (
	"errors"
	"fmt"
	"time"
)

// PixelFormat represents video pixel formats.
type PixelFormat int

const (
	PixelFormatI420 PixelFormat = iota // YUV 4:2:0 planar (Y + U + V)
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatI420:
		return "I420"
	default:
		return "Unknown"
	}
}

// PlaneCount returns the number of planes for this pixel format.
func (p PixelFormat) PlaneCount() int {
	switch p {
	case PixelFormatI420:
		return 3 // Y, U, V
	default:
		return 0
	}
}

// I420Size returns the total buffer size needed for an I420 frame.
func I420Size(width, height int) int {
	// Y plane: width * height
	// U plane: (width/2) * (height/2)
	// V plane: (width/2) * (height/2)
	ySize := width * height
	uvSize := (width / 2) * (height / 2)
	return ySize + uvSize*2
}

// I420Buffer is a planar YUV 4:2:0 pixel buffer. The three planes usually
// share one backing array, laid out Y then U then V.
type I420Buffer struct {
	Width   int
	Height  int
	Y       []byte
	U       []byte
	V       []byte
	StrideY int
	StrideU int
	StrideV int
}

// NewI420Buffer allocates a zeroed buffer for a width x height frame.
func NewI420Buffer(width, height int) *I420Buffer {
	return WrapI420(width, height, make([]byte, I420Size(width, height)))
}

// WrapI420 slices data into Y, U and V planes without copying. data must be
// exactly I420Size(width, height) bytes; see Validate.
func WrapI420(width, height int, data []byte) *I420Buffer {
	ySize := width * height
	uvSize := (width / 2) * (height / 2)
	b := &I420Buffer{
		Width:   width,
		Height:  height,
		StrideY: width,
		StrideU: width / 2,
		StrideV: width / 2,
	}
	if len(data) >= ySize+2*uvSize {
		b.Y = data[:ySize:ySize]
		b.U = data[ySize : ySize+uvSize : ySize+uvSize]
		b.V = data[ySize+uvSize : ySize+2*uvSize : ySize+2*uvSize]
	}
	return b
}

// Validate checks dimensions and plane sizes.
func (b *I420Buffer) Validate() error {
	if b == nil {
		return errors.New("nil I420 buffer")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid I420 dimensions %dx%d", b.Width, b.Height)
	}
	if b.Width%2 != 0 || b.Height%2 != 0 {
		return fmt.Errorf("I420 dimensions must be even, got %dx%d", b.Width, b.Height)
	}
	uvSize := (b.Width / 2) * (b.Height / 2)
	if len(b.Y) != b.Width*b.Height {
		return fmt.Errorf("Y plane is %d bytes, want %d", len(b.Y), b.Width*b.Height)
	}
	if len(b.U) != uvSize || len(b.V) != uvSize {
		return fmt.Errorf("chroma planes are %d/%d bytes, want %d", len(b.U), len(b.V), uvSize)
	}
	return nil
}

// Clone creates a deep copy of the buffer in a single allocation.
func (b *I420Buffer) Clone() *I420Buffer {
	data := make([]byte, len(b.Y)+len(b.U)+len(b.V))
	n := copy(data, b.Y)
	n += copy(data[n:], b.U)
	copy(data[n:], b.V)
	clone := WrapI420(b.Width, b.Height, data)
	clone.StrideY, clone.StrideU, clone.StrideV = b.StrideY, b.StrideU, b.StrideV
	return clone
}

// VideoFrame is a raw video frame as published by a VideoSource.
// A frame is immutable once pushed; readers may hold it indefinitely.
type VideoFrame struct {
	Buffer      *I420Buffer
	Width       int
	Height      int
	TimestampUs int64 // Capture timestamp in microseconds
}

// NewVideoFrame builds a frame around buf with the given timestamp.
func NewVideoFrame(buf *I420Buffer, timestampUs int64) *VideoFrame {
	return &VideoFrame{
		Buffer:      buf,
		Width:       buf.Width,
		Height:      buf.Height,
		TimestampUs: timestampUs,
	}
}

// Format is always I420.
func (f *VideoFrame) Format() PixelFormat { return PixelFormatI420 }

// Clone creates a deep copy of the video frame.
func (f *VideoFrame) Clone() *VideoFrame {
	clone := *f
	if f.Buffer != nil {
		clone.Buffer = f.Buffer.Clone()
	}
	return &clone
}

// AudioChunk is a block of interleaved signed 16-bit PCM.
type AudioChunk struct {
	Samples     []int16 // Interleaved, len == SampleCount*Channels
	SampleRate  int     // Sample rate (e.g., 48000)
	Channels    int     // Number of channels (1 = mono, 2 = stereo)
	SampleCount int     // Number of samples per channel
	TimestampUs int64   // Ingestion timestamp in microseconds
}

// Duration returns SampleCount / SampleRate.
func (c *AudioChunk) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.SampleCount) * time.Second / time.Duration(c.SampleRate)
}

// Validate checks the chunk metadata against its sample buffer.
func (c *AudioChunk) Validate() error {
	if c == nil {
		return errors.New("nil audio chunk")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid channel count %d", c.Channels)
	}
	if c.SampleCount < 0 {
		return fmt.Errorf("invalid sample count %d", c.SampleCount)
	}
	if len(c.Samples)%c.Channels != 0 || len(c.Samples)/c.Channels != c.SampleCount {
		return fmt.Errorf("got %d samples, want %d frames x %d channels", len(c.Samples), c.SampleCount, c.Channels)
	}
	return nil
}

// Clone creates a deep copy of the chunk.
func (c *AudioChunk) Clone() *AudioChunk {
	clone := *c
	if c.Samples != nil {
		clone.Samples = make([]int16, len(c.Samples))
		copy(clone.Samples, c.Samples)
	}
	return &clone
}
