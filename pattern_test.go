package avsource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVideoPattern_Defaults(t *testing.T) {
	g := NewVideoPattern(VideoPatternConfig{})
	cfg := g.Config()
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, 32, cfg.CheckerSize)
	assert.Equal(t, time.Second/30, g.FrameInterval())
}

func TestNewVideoPattern_RoundsToEven(t *testing.T) {
	g := NewVideoPattern(VideoPatternConfig{Width: 321, Height: 1})
	assert.Equal(t, 320, g.Config().Width)
	assert.Equal(t, 2, g.Config().Height)
	require.NoError(t, g.Next().Validate())
}

func TestVideoPattern_AllPatterns(t *testing.T) {
	patterns := []PatternType{
		PatternColorBars,
		PatternGradient,
		PatternCheckerboard,
		PatternSolidColor,
		PatternNoise,
		PatternMovingBox,
	}
	for _, p := range patterns {
		t.Run(p.String(), func(t *testing.T) {
			g := NewVideoPattern(VideoPatternConfig{Width: 64, Height: 48, Pattern: p, SolidR: 255})
			a := g.Next()
			b := g.Next()
			require.NoError(t, a.Validate())
			require.NoError(t, b.Validate())
			assert.NotSame(t, &a.Y[0], &b.Y[0], "each frame gets its own buffer")
		})
	}
}

func TestVideoPattern_ColorBarsDiffer(t *testing.T) {
	buf := NewVideoPattern(VideoPatternConfig{Width: 64, Height: 8}).Next()
	// First bar is light grey, last bar is near black.
	assert.Greater(t, buf.Y[0], buf.Y[63])
}

func TestVideoPattern_MovingBoxMoves(t *testing.T) {
	g := NewVideoPattern(VideoPatternConfig{Width: 128, Height: 64, Pattern: PatternMovingBox})
	a := g.Next()
	for i := 0; i < 10; i++ {
		g.Next()
	}
	b := g.Next()
	assert.NotEqual(t, a.Y, b.Y)
}

func TestPatternType_String(t *testing.T) {
	assert.Equal(t, "ColorBars", PatternColorBars.String())
	assert.Equal(t, "Unknown", PatternType(99).String())
	assert.Equal(t, "SineWave", AudioPatternSineWave.String())
	assert.Equal(t, "Unknown", AudioPatternType(99).String())
}

func TestNewAudioPattern_Defaults(t *testing.T) {
	g := NewAudioPattern(AudioPatternConfig{})
	cfg := g.Config()
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 1, cfg.Channels)
	assert.Equal(t, 480, cfg.FrameSize)
	assert.Equal(t, 440.0, cfg.Frequency)
	assert.Equal(t, 10*time.Millisecond, g.ChunkInterval())

	g = NewAudioPattern(AudioPatternConfig{Amplitude: 3})
	assert.Equal(t, 1.0, g.Config().Amplitude)
}

func TestAudioPattern_Chunks(t *testing.T) {
	tests := []struct {
		pattern AudioPatternType
		silent  bool
	}{
		{AudioPatternSilence, true},
		{AudioPatternSineWave, false},
		{AudioPatternSquareWave, false},
		{AudioPatternWhiteNoise, false},
		{AudioPatternSweep, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern.String(), func(t *testing.T) {
			g := NewAudioPattern(AudioPatternConfig{Pattern: tt.pattern, Channels: 2})
			c := g.Next()
			require.NoError(t, c.Validate())
			assert.Len(t, c.Samples, 960)
			assert.Equal(t, 10*time.Millisecond, c.Duration())

			nonZero := false
			for i := 0; i < len(c.Samples); i += 2 {
				assert.Equal(t, c.Samples[i], c.Samples[i+1], "channels carry the same sample")
				if c.Samples[i] != 0 {
					nonZero = true
				}
			}
			assert.Equal(t, !tt.silent, nonZero)
		})
	}
}

func TestAudioPattern_SquareAmplitude(t *testing.T) {
	g := NewAudioPattern(AudioPatternConfig{Pattern: AudioPatternSquareWave, Amplitude: 0.5})
	want := int16(16383)
	for _, s := range g.Next().Samples {
		assert.True(t, s == want || s == -want, "sample %d", s)
	}
}
