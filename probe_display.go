package fingerprint

import (
	"context"
)

// ScreenInfo is the value recorded under [KeyScreen]. Orientation holds an
// [Orientation] or the unavailable sentinel.
type ScreenInfo struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	AvailWidth       int     `json:"availWidth"`
	AvailHeight      int     `json:"availHeight"`
	ColorDepth       int     `json:"colorDepth"`
	PixelDepth       int     `json:"pixelDepth"`
	Orientation      any     `json:"orientation"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
	InnerWidth       int     `json:"innerWidth"`
	InnerHeight      int     `json:"innerHeight"`
	OuterWidth       int     `json:"outerWidth"`
	OuterHeight      int     `json:"outerHeight"`
}

// MediaFeatures is the value recorded under [KeyMediaFeatures].
type MediaFeatures struct {
	DarkMode       bool   `json:"darkMode"`
	LightMode      bool   `json:"lightMode"`
	ReducedMotion  bool   `json:"reducedMotion"`
	HoverAvailable bool   `json:"hoverAvailable"`
	FinePointer    bool   `json:"finePointer"`
	ColorGamut     string `json:"colorGamut"`
	InvertedColors bool   `json:"invertedColors"`
	ContrastLevel  string `json:"contrastLevel"`
}

// HardwareInfo is the value recorded under [KeyHardware]. DeviceMemory and
// HardwareConcurrency hold a number or the unavailable sentinel.
type HardwareInfo struct {
	DeviceMemory        any `json:"deviceMemory"`
	HardwareConcurrency any `json:"hardwareConcurrency"`
	MaxTouchPoints      int `json:"maxTouchPoints"`
}

var hardwareCapabilities = []namedCapability{
	{"bluetooth", CapBluetooth},
	{"usb", CapUSB},
	{"serial", CapSerial},
	{"nfc", CapNFC},
	{"hid", CapHID},
	{"gamepads", CapGamepads},
	{"virtualReality", CapXR},
}

// cascade pairs a media query with the value it selects.
type cascade struct {
	query string
	value string
}

var colorGamutCascade = []cascade{
	{"(color-gamut: rec2020)", "rec2020"},
	{"(color-gamut: p3)", "p3"},
	{"(color-gamut: srgb)", "srgb"},
}

var contrastCascade = []cascade{
	{"(prefers-contrast: more)", "more"},
	{"(prefers-contrast: less)", "less"},
	{"(prefers-contrast: custom)", "custom"},
}

func collectScreen(ctx context.Context, h Host, w *slotWriter) error {
	s, err := h.Screen(ctx)
	switch {
	case isUnavailable(err):
		w.Absent(KeyScreen, nil)
	case err != nil:
		w.Fail(KeyScreen, err)
	default:
		info := ScreenInfo{
			Width:            s.Width,
			Height:           s.Height,
			AvailWidth:       s.AvailWidth,
			AvailHeight:      s.AvailHeight,
			ColorDepth:       s.ColorDepth,
			PixelDepth:       s.PixelDepth,
			Orientation:      Unavailable,
			DevicePixelRatio: s.DevicePixelRatio,
			InnerWidth:       s.InnerWidth,
			InnerHeight:      s.InnerHeight,
			OuterWidth:       s.OuterWidth,
			OuterHeight:      s.OuterHeight,
		}
		if s.Orientation != nil {
			o := *s.Orientation
			info.Orientation = o
		}
		w.Put(KeyScreen, info)
	}

	mq := mediaQuerier{ctx: ctx, h: h}
	features := MediaFeatures{
		DarkMode:       mq.matches("(prefers-color-scheme: dark)"),
		LightMode:      mq.matches("(prefers-color-scheme: light)"),
		ReducedMotion:  mq.matches("(prefers-reduced-motion: reduce)"),
		HoverAvailable: mq.matches("(hover: hover)"),
		FinePointer:    mq.matches("(pointer: fine)"),
		ColorGamut:     mq.first(colorGamutCascade, "unknown"),
		InvertedColors: mq.matches("(inverted-colors: inverted)"),
		ContrastLevel:  mq.first(contrastCascade, "normal"),
	}
	if mq.asked > 0 && mq.absent == mq.asked {
		w.Absent(KeyMediaFeatures, nil)
		return nil
	}
	w.Put(KeyMediaFeatures, features)

	return nil
}

// mediaQuerier evaluates each query independently; a failing query reads
// as not matching.
type mediaQuerier struct {
	ctx    context.Context
	h      Host
	asked  int
	absent int
}

func (m *mediaQuerier) matches(query string) bool {
	m.asked++
	ok, err := m.h.MatchMedia(m.ctx, query)
	if err != nil {
		if isUnavailable(err) {
			m.absent++
		}

		return false
	}

	return ok
}

func (m *mediaQuerier) first(list []cascade, fallback string) string {
	for _, c := range list {
		if m.matches(c.query) {
			return c.value
		}
	}

	return fallback
}

func collectHardware(ctx context.Context, h Host, w *slotWriter) error {
	hw, err := h.Hardware(ctx)
	switch {
	case isUnavailable(err):
		w.Absent(KeyHardware, nil)
	case err != nil:
		w.Fail(KeyHardware, err)
	default:
		w.Put(KeyHardware, HardwareInfo{
			DeviceMemory:        orUnavailable(hw.DeviceMemory),
			HardwareConcurrency: orUnavailable(hw.HardwareConcurrency),
			MaxTouchPoints:      hw.MaxTouchPoints,
		})
	}

	w.Put(KeyHardwareCapabilities, presence(h, hardwareCapabilities))

	return nil
}
