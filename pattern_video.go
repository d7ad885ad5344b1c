package avsource

import (
	"math"
	"time"
)

// PatternType defines the type of test pattern to generate.
type PatternType int

const (
	PatternColorBars    PatternType = iota // SMPTE color bars
	PatternGradient                        // Horizontal gradient
	PatternCheckerboard                    // Checkerboard pattern
	PatternSolidColor                      // Solid color
	PatternNoise                           // Random noise
	PatternMovingBox                       // Moving box (animated)
)

func (p PatternType) String() string {
	switch p {
	case PatternColorBars:
		return "ColorBars"
	case PatternGradient:
		return "Gradient"
	case PatternCheckerboard:
		return "Checkerboard"
	case PatternSolidColor:
		return "SolidColor"
	case PatternNoise:
		return "Noise"
	case PatternMovingBox:
		return "MovingBox"
	default:
		return "Unknown"
	}
}

// VideoPatternConfig configures a VideoPattern.
type VideoPatternConfig struct {
	Width   int         // Frame width (default: 640)
	Height  int         // Frame height (default: 480)
	FPS     int         // Frames per second (default: 30)
	Pattern PatternType // Pattern type (default: ColorBars)

	// For SolidColor pattern
	SolidR, SolidG, SolidB uint8

	// For Checkerboard pattern
	CheckerSize int // Size of each checker square (default: 32)
}

// DefaultVideoPatternConfig returns a default video pattern configuration.
func DefaultVideoPatternConfig() VideoPatternConfig {
	return VideoPatternConfig{
		Width:       640,
		Height:      480,
		FPS:         30,
		Pattern:     PatternColorBars,
		CheckerSize: 32,
	}
}

// VideoPattern renders synthetic I420 frames. It is not safe for concurrent
// use.
type VideoPattern struct {
	config     VideoPatternConfig
	frameCount uint64
	rngState   uint64
}

// NewVideoPattern creates a generator. Dimensions are rounded down to even.
func NewVideoPattern(config VideoPatternConfig) *VideoPattern {
	def := DefaultVideoPatternConfig()
	if config.Width <= 0 {
		config.Width = def.Width
	}
	if config.Height <= 0 {
		config.Height = def.Height
	}
	if config.FPS <= 0 {
		config.FPS = def.FPS
	}
	if config.CheckerSize <= 0 {
		config.CheckerSize = def.CheckerSize
	}
	config.Width &^= 1
	config.Height &^= 1
	if config.Width == 0 {
		config.Width = 2
	}
	if config.Height == 0 {
		config.Height = 2
	}
	return &VideoPattern{
		config:   config,
		rngState: uint64(time.Now().UnixNano()) | 1,
	}
}

// Config returns the effective configuration.
func (g *VideoPattern) Config() VideoPatternConfig { return g.config }

// FrameInterval returns the time between frames.
func (g *VideoPattern) FrameInterval() time.Duration {
	return time.Second / time.Duration(g.config.FPS)
}

// Next renders the next frame into a fresh buffer. A fresh buffer per frame
// lets the result be pushed into a source, which keeps it.
func (g *VideoPattern) Next() *I420Buffer {
	buf := NewI420Buffer(g.config.Width, g.config.Height)
	switch g.config.Pattern {
	case PatternGradient:
		g.gradient(buf)
	case PatternCheckerboard:
		g.checkerboard(buf)
	case PatternSolidColor:
		fillSolid(buf, g.config.SolidR, g.config.SolidG, g.config.SolidB)
	case PatternNoise:
		g.noise(buf)
	case PatternMovingBox:
		g.movingBox(buf, g.frameCount)
	default:
		colorBars(buf)
	}
	g.frameCount++
	return buf
}

// SMPTE color bars (simplified 8-bar pattern)
var colorBarsRGB = [][3]uint8{
	{192, 192, 192}, // White (75%)
	{192, 192, 0},   // Yellow
	{0, 192, 192},   // Cyan
	{0, 192, 0},     // Green
	{192, 0, 192},   // Magenta
	{192, 0, 0},     // Red
	{0, 0, 192},     // Blue
	{16, 16, 16},    // Black
}

func colorBars(buf *I420Buffer) {
	w, h := buf.Width, buf.Height
	barWidth := max(w/8, 1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			barIdx := min(x/barWidth, 7)
			rgb := colorBarsRGB[barIdx]
			yVal, u, v := rgbToYUV(rgb[0], rgb[1], rgb[2])

			buf.Y[y*buf.StrideY+x] = yVal
			if x%2 == 0 && y%2 == 0 {
				uvIdx := (y/2)*buf.StrideU + x/2
				buf.U[uvIdx] = u
				buf.V[uvIdx] = v
			}
		}
	}
}

func (g *VideoPattern) gradient(buf *I420Buffer) {
	w, h := buf.Width, buf.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.Y[y*buf.StrideY+x] = uint8((x * 255) / w)
		}
	}
	neutralChroma(buf)
}

func (g *VideoPattern) checkerboard(buf *I420Buffer) {
	size := g.config.CheckerSize
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			yVal := uint8(16)
			if ((x/size)+(y/size))%2 == 0 {
				yVal = 235
			}
			buf.Y[y*buf.StrideY+x] = yVal
		}
	}
	neutralChroma(buf)
}

func fillSolid(buf *I420Buffer, r, g, b uint8) {
	yVal, u, v := rgbToYUV(r, g, b)
	for i := range buf.Y {
		buf.Y[i] = yVal
	}
	for i := range buf.U {
		buf.U[i] = u
		buf.V[i] = v
	}
}

func (g *VideoPattern) noise(buf *I420Buffer) {
	// xorshift64
	for i := range buf.Y {
		g.rngState ^= g.rngState << 13
		g.rngState ^= g.rngState >> 7
		g.rngState ^= g.rngState << 17
		buf.Y[i] = uint8(g.rngState)
	}
	neutralChroma(buf)
}

func (g *VideoPattern) movingBox(buf *I420Buffer, frameNum uint64) {
	w, h := buf.Width, buf.Height
	for i := range buf.Y {
		buf.Y[i] = 16
	}
	neutralChroma(buf)

	// Box moves in a circle around the center
	boxSize := max(min(w, h)/5, 2)
	radius := float64(min(w, h)) / 4
	angle := float64(frameNum) * 0.05
	boxX := w/2 + int(radius*math.Cos(angle)) - boxSize/2
	boxY := h/2 + int(radius*math.Sin(angle)) - boxSize/2

	for y := max(boxY, 0); y < boxY+boxSize && y < h; y++ {
		for x := max(boxX, 0); x < boxX+boxSize && x < w; x++ {
			buf.Y[y*buf.StrideY+x] = 235
		}
	}
}

func neutralChroma(buf *I420Buffer) {
	for i := range buf.U {
		buf.U[i] = 128
		buf.V[i] = 128
	}
}

// rgbToYUV converts RGB to YUV (BT.601)
func rgbToYUV(r, g, b uint8) (y, u, v uint8) {
	yf := 16.0 + 65.481*float64(r)/255.0 + 128.553*float64(g)/255.0 + 24.966*float64(b)/255.0
	uf := 128.0 - 37.797*float64(r)/255.0 - 74.203*float64(g)/255.0 + 112.0*float64(b)/255.0
	vf := 128.0 + 112.0*float64(r)/255.0 - 93.786*float64(g)/255.0 - 18.214*float64(b)/255.0

	y = uint8(clamp(yf, 16, 235))
	u = uint8(clamp(uf, 16, 240))
	v = uint8(clamp(vf, 16, 240))
	return
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
