package fingerprint

import (
	"slices"
)

// StableSubset is the projection of a [Record] that feeds the identifier.
// Field order is the serialization order and is part of the identifier
// contract. A field whose source slot did not produce a value is null,
// except Plugins, which counts zero.
//
// Timestamps, performance counters, permission states, battery state,
// connection estimates, the live viewport and high-entropy user-agent
// values are deliberately not part of the subset.
type StableSubset struct {
	UserAgent      *string       `json:"userAgent"`
	Language       []string      `json:"language"`
	Platform       *string       `json:"platform"`
	ScreenProps    ScreenProps   `json:"screenProps"`
	TimezoneOffset *int          `json:"timezoneOffset"`
	Timezone       *string       `json:"timezone"`
	CPUCores       any           `json:"cpuCores"`
	DeviceMemory   any           `json:"deviceMemory"`
	Canvas         *CanvasTokens `json:"canvas"`
	WebGL          StableGPU     `json:"webgl"`
	Fonts          *int          `json:"fonts"`
	Audio          *string       `json:"audio"`
	Plugins        int           `json:"plugins"`
}

// ScreenProps is the display geometry part of the stable subset.
type ScreenProps struct {
	Width            *int     `json:"width"`
	Height           *int     `json:"height"`
	ColorDepth       *int     `json:"colorDepth"`
	PixelDepth       *int     `json:"pixelDepth"`
	DevicePixelRatio *float64 `json:"devicePixelRatio"`
}

// StableGPU is the GPU identity part of the stable subset.
type StableGPU struct {
	Vendor     any      `json:"vendor"`
	Renderer   any      `json:"renderer"`
	Extensions []string `json:"extensions"`
}

// Classify projects the stable subset out of r. The result shares no memory
// with r. A nil record yields the all-placeholder subset.
func Classify(r *Record) StableSubset {
	var s StableSubset
	if r == nil {
		return s
	}

	if v, ok := valueOf[string](r, KeyUserAgent); ok {
		s.UserAgent = &v
	}
	if v, ok := valueOf[[]string](r, KeyLanguages); ok {
		s.Language = slices.Clone(v)
	}
	if v, ok := valueOf[string](r, KeyPlatform); ok {
		s.Platform = &v
	}

	if scr, ok := valueOf[ScreenInfo](r, KeyScreen); ok {
		s.ScreenProps = ScreenProps{
			Width:            ptr(scr.Width),
			Height:           ptr(scr.Height),
			ColorDepth:       ptr(scr.ColorDepth),
			PixelDepth:       ptr(scr.PixelDepth),
			DevicePixelRatio: ptr(scr.DevicePixelRatio),
		}
	}

	if t, ok := valueOf[TimeInfo](r, KeyTime); ok {
		s.TimezoneOffset = ptr(t.TimezoneOffset)
		s.Timezone = ptr(t.Timezone)
	}

	if hw, ok := valueOf[HardwareInfo](r, KeyHardware); ok {
		s.CPUCores = hw.HardwareConcurrency
		s.DeviceMemory = hw.DeviceMemory
	}

	if c, ok := valueOf[CanvasTokens](r, KeyCanvas); ok {
		s.Canvas = &c
	}

	if g, ok := valueOf[GPUInfo](r, KeyWebGL); ok {
		s.WebGL = StableGPU{
			Vendor:     g.Vendor,
			Renderer:   g.Renderer,
			Extensions: slices.Clone(g.Extensions),
		}
	}

	if f, ok := valueOf[FontInfo](r, KeyFonts); ok {
		s.Fonts = ptr(f.FontsCount)
	}

	if a, ok := valueOf[AudioInfo](r, KeyAudio); ok {
		s.Audio = ptr(a.Fingerprint)
	}

	if b, ok := valueOf[BrowserInfo](r, KeyBrowser); ok {
		if plugins, ok := b.Plugins.([]Plugin); ok {
			s.Plugins = len(plugins)
		}
	}

	return s
}

// valueOf returns the value stored under k when its probe succeeded and the
// value has type T.
func valueOf[T any](r *Record, k Key) (T, bool) {
	var zero T

	o := r.Get(k)
	if o.Status != StatusOK {
		return zero, false
	}

	v, ok := o.Value.(T)
	if !ok {
		return zero, false
	}

	return v, true
}

func ptr[T any](v T) *T {
	return &v
}
