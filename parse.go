package avsource

import (
	"encoding/base64"
	"math"
)

// Host dictionaries arrive as map[string]any (decoded JSON or a scripting
// host's object). The parsers below convert them before anything reaches a
// source and report every mismatch as *ArgumentShapeError.

// ParseSourceInit reads {isScreencast?: bool, needsDenoising?: bool}. A nil
// dict yields the defaults. Unknown keys are ignored.
func ParseSourceInit(dict map[string]any) (SourceInit, error) {
	var init SourceInit
	if v, ok := dict["isScreencast"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return SourceInit{}, &ArgumentShapeError{Field: "isScreencast", Expected: "boolean", Got: v}
		}
		init.IsScreencast = b
	}
	if v, ok := dict["needsDenoising"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return SourceInit{}, &ArgumentShapeError{Field: "needsDenoising", Expected: "boolean", Got: v}
		}
		init.NeedsDenoising = &b
	}
	return init, nil
}

// ParseOnData reads {samples, sampleRate, bitsPerSample?, channelCount?,
// numberOfFrames?}. samples may be []int16 or a JSON array of numbers.
func ParseOnData(dict map[string]any) (*AudioChunk, error) {
	if dict == nil {
		return nil, &ArgumentShapeError{Expected: "object", Got: dict}
	}
	samples, err := int16Slice("samples", dict["samples"])
	if err != nil {
		return nil, err
	}
	sampleRate, err := positiveInt("sampleRate", dict["sampleRate"], 0)
	if err != nil {
		return nil, err
	}
	bits, err := positiveInt("bitsPerSample", dict["bitsPerSample"], 16)
	if err != nil {
		return nil, err
	}
	if bits != 16 {
		return nil, &ArgumentShapeError{Field: "bitsPerSample", Expected: "16", Got: bits}
	}
	channels, err := positiveInt("channelCount", dict["channelCount"], 1)
	if err != nil {
		return nil, err
	}
	frames, err := positiveInt("numberOfFrames", dict["numberOfFrames"], len(samples)/channels)
	if err != nil {
		return nil, err
	}
	if len(samples)%channels != 0 || len(samples)/channels != frames {
		return nil, &ArgumentShapeError{
			Field:    "samples",
			Expected: "numberOfFrames * channelCount samples",
			Got:      len(samples),
		}
	}
	return &AudioChunk{
		Samples:     samples,
		SampleRate:  sampleRate,
		Channels:    channels,
		SampleCount: frames,
	}, nil
}

// ParseI420Frame reads {width, height, data}. data may be []byte or a base64
// string and must hold exactly I420Size(width, height) bytes.
func ParseI420Frame(dict map[string]any) (*I420Buffer, error) {
	if dict == nil {
		return nil, &ArgumentShapeError{Expected: "object", Got: dict}
	}
	width, err := positiveInt("width", dict["width"], 0)
	if err != nil {
		return nil, err
	}
	height, err := positiveInt("height", dict["height"], 0)
	if err != nil {
		return nil, err
	}
	if width%2 != 0 || height%2 != 0 {
		return nil, &ArgumentShapeError{Field: "width/height", Expected: "even dimensions", Got: [2]int{width, height}}
	}

	var data []byte
	switch v := dict["data"].(type) {
	case []byte:
		data = v
	case string:
		data, err = base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, &ArgumentShapeError{Field: "data", Expected: "base64 string", Got: v}
		}
	default:
		return nil, &ArgumentShapeError{Field: "data", Expected: "byte array", Got: v}
	}
	if want := I420Size(width, height); len(data) != want {
		return nil, &ArgumentShapeError{Field: "data", Expected: "I420 buffer of matching size", Got: len(data)}
	}
	return WrapI420(width, height, data), nil
}

// positiveInt converts a host number. A missing value yields def when def is
// positive and is an error otherwise.
func positiveInt(field string, v any, def int) (int, error) {
	if v == nil {
		if def > 0 {
			return def, nil
		}
		return 0, &ArgumentShapeError{Field: field, Expected: "positive integer", Got: v}
	}
	var n int
	switch x := v.(type) {
	case int:
		if x > math.MaxInt32 {
			return 0, &ArgumentShapeError{Field: field, Expected: "positive integer", Got: v}
		}
		n = x
	case int32:
		n = int(x)
	case int64:
		if x > math.MaxInt32 {
			return 0, &ArgumentShapeError{Field: field, Expected: "positive integer", Got: v}
		}
		n = int(x)
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt32 {
			return 0, &ArgumentShapeError{Field: field, Expected: "positive integer", Got: v}
		}
		n = int(x)
	default:
		return 0, &ArgumentShapeError{Field: field, Expected: "positive integer", Got: v}
	}
	if n <= 0 {
		return 0, &ArgumentShapeError{Field: field, Expected: "positive integer", Got: v}
	}
	return n, nil
}

func int16Slice(field string, v any) ([]int16, error) {
	switch x := v.(type) {
	case []int16:
		return x, nil
	case []any:
		out := make([]int16, len(x))
		for i, e := range x {
			f, ok := e.(float64)
			if !ok || f != math.Trunc(f) || f < math.MinInt16 || f > math.MaxInt16 {
				return nil, &ArgumentShapeError{Field: field, Expected: "array of int16", Got: e}
			}
			out[i] = int16(f)
		}
		return out, nil
	default:
		return nil, &ArgumentShapeError{Field: field, Expected: "array of int16", Got: v}
	}
}
