package avsource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelFormat_String(t *testing.T) {
	assert.Equal(t, "I420", PixelFormatI420.String())
	assert.Equal(t, "Unknown", PixelFormat(99).String())
	assert.Equal(t, 3, PixelFormatI420.PlaneCount())
	assert.Equal(t, 0, PixelFormat(99).PlaneCount())
}

func TestI420Size(t *testing.T) {
	tests := []struct {
		width, height int
		want          int
	}{
		{1920, 1080, 1920*1080 + 2*(960*540)},
		{1280, 720, 1280*720 + 2*(640*360)},
		{640, 480, 640*480 + 2*(320*240)},
		{2, 2, 6},
	}

	for _, tt := range tests {
		if got := I420Size(tt.width, tt.height); got != tt.want {
			t.Errorf("I420Size(%d, %d) = %d, want %d", tt.width, tt.height, got, tt.want)
		}
	}
}

func TestNewI420Buffer(t *testing.T) {
	buf := NewI420Buffer(4, 2)
	require.NoError(t, buf.Validate())
	assert.Len(t, buf.Y, 8)
	assert.Len(t, buf.U, 2)
	assert.Len(t, buf.V, 2)
	assert.Equal(t, 4, buf.StrideY)
	assert.Equal(t, 2, buf.StrideU)
}

func TestWrapI420_PlanesDoNotOverlap(t *testing.T) {
	data := make([]byte, I420Size(4, 4))
	for i := range data {
		data[i] = byte(i)
	}
	buf := WrapI420(4, 4, data)
	require.NoError(t, buf.Validate())
	assert.Equal(t, byte(0), buf.Y[0])
	assert.Equal(t, byte(16), buf.U[0])
	assert.Equal(t, byte(20), buf.V[0])

	// Appending to a plane must not clobber the next one.
	_ = append(buf.Y, 0xFF)
	assert.Equal(t, byte(16), buf.U[0])
}

func TestI420Buffer_Validate(t *testing.T) {
	tests := []struct {
		name string
		buf  *I420Buffer
	}{
		{"zero", &I420Buffer{}},
		{"odd", WrapI420(3, 2, make([]byte, 64))},
		{"short", WrapI420(4, 4, make([]byte, 10))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.buf.Validate())
		})
	}
}

func TestI420Buffer_Clone(t *testing.T) {
	buf := NewI420Buffer(4, 4)
	buf.Y[0] = 42
	clone := buf.Clone()
	require.NoError(t, clone.Validate())
	assert.Equal(t, byte(42), clone.Y[0])

	buf.Y[0] = 7
	assert.Equal(t, byte(42), clone.Y[0])
}

func TestVideoFrame_Clone(t *testing.T) {
	frame := NewVideoFrame(NewI420Buffer(2, 2), 100)
	clone := frame.Clone()
	assert.Equal(t, int64(100), clone.TimestampUs)
	assert.Equal(t, 2, clone.Width)
	assert.NotSame(t, frame.Buffer, clone.Buffer)
	assert.Equal(t, PixelFormatI420, clone.Format())
}

func TestAudioChunk_Duration(t *testing.T) {
	tests := []struct {
		name  string
		chunk AudioChunk
		want  time.Duration
	}{
		{"10ms at 48kHz", AudioChunk{SampleRate: 48000, SampleCount: 480}, 10 * time.Millisecond},
		{"20ms at 48kHz", AudioChunk{SampleRate: 48000, SampleCount: 960}, 20 * time.Millisecond},
		{"10ms at 44.1kHz", AudioChunk{SampleRate: 44100, SampleCount: 441}, 10 * time.Millisecond},
		{"zero rate", AudioChunk{SampleCount: 480}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chunk.Duration())
		})
	}
}

func TestAudioChunk_Validate(t *testing.T) {
	ok := &AudioChunk{Samples: make([]int16, 960), SampleRate: 48000, Channels: 2, SampleCount: 480}
	assert.NoError(t, ok.Validate())

	bad := []*AudioChunk{
		{Samples: make([]int16, 480), SampleRate: 0, Channels: 1, SampleCount: 480},
		{Samples: make([]int16, 480), SampleRate: 48000, Channels: 0, SampleCount: 480},
		{Samples: make([]int16, 479), SampleRate: 48000, Channels: 1, SampleCount: 480},
		{Samples: make([]int16, 4), SampleRate: 48000, Channels: 1, SampleCount: -4},
		// 4 * 1<<62 wraps to zero.
		{Samples: nil, SampleRate: 48000, Channels: 4, SampleCount: 1 << 62},
	}
	for _, c := range bad {
		assert.Error(t, c.Validate())
	}
}

func TestAudioChunk_Clone(t *testing.T) {
	c := &AudioChunk{Samples: []int16{1, 2, 3}, SampleRate: 8000, Channels: 1, SampleCount: 3}
	clone := c.Clone()
	c.Samples[0] = 99
	assert.Equal(t, int16(1), clone.Samples[0])
	assert.Equal(t, 3, clone.SampleCount)
}
