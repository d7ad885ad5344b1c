package avsource

import (
	"math"
	"time"
)

// AudioPatternType defines the type of audio test pattern.
type AudioPatternType int

const (
	AudioPatternSilence    AudioPatternType = iota // Silence
	AudioPatternSineWave                           // Sine wave tone
	AudioPatternSquareWave                         // Square wave tone
	AudioPatternWhiteNoise                         // White noise
	AudioPatternSweep                              // Frequency sweep
)

func (p AudioPatternType) String() string {
	switch p {
	case AudioPatternSilence:
		return "Silence"
	case AudioPatternSineWave:
		return "SineWave"
	case AudioPatternSquareWave:
		return "SquareWave"
	case AudioPatternWhiteNoise:
		return "WhiteNoise"
	case AudioPatternSweep:
		return "Sweep"
	default:
		return "Unknown"
	}
}

// AudioPatternConfig configures an AudioPattern.
type AudioPatternConfig struct {
	SampleRate int              // Sample rate (default: 48000)
	Channels   int              // Number of channels (default: 1)
	FrameSize  int              // Samples per channel per chunk (default: 480 = 10ms at 48kHz)
	Pattern    AudioPatternType // Pattern type
	Frequency  float64          // Tone frequency in Hz (default: 440)
	Amplitude  float64          // Amplitude 0.0-1.0 (default: 0.5)

	// For sweep pattern
	SweepStartHz  float64       // Sweep start frequency
	SweepEndHz    float64       // Sweep end frequency
	SweepDuration time.Duration // Sweep duration
}

// DefaultAudioPatternConfig returns a default audio pattern configuration.
func DefaultAudioPatternConfig() AudioPatternConfig {
	return AudioPatternConfig{
		SampleRate:    48000,
		Channels:      1,
		FrameSize:     480,
		Pattern:       AudioPatternSineWave,
		Frequency:     440.0, // A4
		Amplitude:     0.5,
		SweepStartHz:  200,
		SweepEndHz:    2000,
		SweepDuration: 2 * time.Second,
	}
}

// AudioPattern renders synthetic PCM chunks. It is not safe for concurrent
// use.
type AudioPattern struct {
	config AudioPatternConfig

	// Phase for continuous waveforms
	phase       float64
	sweepPhase  float64
	sampleCount uint64

	rngState uint64
}

// NewAudioPattern creates a generator.
func NewAudioPattern(config AudioPatternConfig) *AudioPattern {
	def := DefaultAudioPatternConfig()
	if config.SampleRate <= 0 {
		config.SampleRate = def.SampleRate
	}
	if config.Channels <= 0 {
		config.Channels = def.Channels
	}
	if config.FrameSize <= 0 {
		config.FrameSize = def.FrameSize
	}
	if config.Frequency <= 0 {
		config.Frequency = def.Frequency
	}
	if config.Amplitude <= 0 {
		config.Amplitude = def.Amplitude
	}
	if config.Amplitude > 1.0 {
		config.Amplitude = 1.0
	}
	if config.SweepStartHz <= 0 {
		config.SweepStartHz = def.SweepStartHz
	}
	if config.SweepEndHz <= 0 {
		config.SweepEndHz = def.SweepEndHz
	}
	if config.SweepDuration <= 0 {
		config.SweepDuration = def.SweepDuration
	}
	return &AudioPattern{
		config:   config,
		rngState: uint64(time.Now().UnixNano()) | 1,
	}
}

// Config returns the effective configuration.
func (g *AudioPattern) Config() AudioPatternConfig { return g.config }

// ChunkInterval returns the playback duration of one chunk.
func (g *AudioPattern) ChunkInterval() time.Duration {
	return time.Duration(g.config.FrameSize) * time.Second / time.Duration(g.config.SampleRate)
}

// Next renders the next chunk.
func (g *AudioPattern) Next() *AudioChunk {
	chunk := &AudioChunk{
		Samples:     make([]int16, g.config.FrameSize*g.config.Channels),
		SampleRate:  g.config.SampleRate,
		Channels:    g.config.Channels,
		SampleCount: g.config.FrameSize,
	}
	switch g.config.Pattern {
	case AudioPatternSineWave:
		g.sine(chunk.Samples, g.config.Frequency, &g.phase)
	case AudioPatternSquareWave:
		g.square(chunk.Samples)
	case AudioPatternWhiteNoise:
		g.whiteNoise(chunk.Samples)
	case AudioPatternSweep:
		g.sine(chunk.Samples, g.sweepFrequency(), &g.sweepPhase)
	}
	g.sampleCount += uint64(g.config.FrameSize)
	return chunk
}

// writeFrame copies one sample into every channel of frame i.
func (g *AudioPattern) writeFrame(out []int16, i int, sample int16) {
	base := i * g.config.Channels
	for c := 0; c < g.config.Channels; c++ {
		out[base+c] = sample
	}
}

func (g *AudioPattern) sine(out []int16, freq float64, phase *float64) {
	phaseIncrement := 2.0 * math.Pi * freq / float64(g.config.SampleRate)
	amplitude := g.config.Amplitude * 32767.0

	for i := 0; i < g.config.FrameSize; i++ {
		g.writeFrame(out, i, int16(amplitude*math.Sin(*phase)))
		*phase += phaseIncrement
		if *phase > 2*math.Pi {
			*phase -= 2 * math.Pi
		}
	}
}

func (g *AudioPattern) square(out []int16) {
	phaseIncrement := 2.0 * math.Pi * g.config.Frequency / float64(g.config.SampleRate)
	amplitude := int16(g.config.Amplitude * 32767.0)

	for i := 0; i < g.config.FrameSize; i++ {
		sample := -amplitude
		if math.Sin(g.phase) >= 0 {
			sample = amplitude
		}
		g.writeFrame(out, i, sample)
		g.phase += phaseIncrement
		if g.phase > 2*math.Pi {
			g.phase -= 2 * math.Pi
		}
	}
}

func (g *AudioPattern) whiteNoise(out []int16) {
	amplitude := g.config.Amplitude * 32767.0

	for i := 0; i < g.config.FrameSize; i++ {
		// xorshift64
		g.rngState ^= g.rngState << 13
		g.rngState ^= g.rngState >> 7
		g.rngState ^= g.rngState << 17

		normalized := (float64(g.rngState)/float64(^uint64(0)))*2.0 - 1.0
		g.writeFrame(out, i, int16(amplitude*normalized))
	}
}

// sweepFrequency returns the current frequency of a logarithmic sweep.
func (g *AudioPattern) sweepFrequency() float64 {
	sweepSamples := float64(g.config.SampleRate) * g.config.SweepDuration.Seconds()
	progress := math.Mod(float64(g.sampleCount), sweepSamples) / sweepSamples

	logStart := math.Log(g.config.SweepStartHz)
	logEnd := math.Log(g.config.SweepEndHz)
	return math.Exp(logStart + progress*(logEnd-logStart))
}
