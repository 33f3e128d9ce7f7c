package fingerprint

import (
	"context"
	"slices"
	"strconv"
	"strings"
)

// CanvasTokens is the value recorded under [KeyCanvas]. Each token is the
// content hash of one scene, "unavailable" when the host cannot draw it, or
// "error: <message>" when drawing failed.
type CanvasTokens struct {
	Standard     string `json:"standard"`
	Text         string `json:"text"`
	WebGL        string `json:"webgl"`
	UniqueValues string `json:"uniqueValues"`
}

func collectCanvas(ctx context.Context, h Host, w *slotWriter) error {
	token := func(kind RenderKind) string {
		payload, err := h.Render(ctx, kind)
		switch {
		case isUnavailable(err):
			return Unavailable
		case err != nil:
			return "error: " + err.Error()
		default:
			return HashContent(payload)
		}
	}

	w.Put(KeyCanvas, CanvasTokens{
		Standard:     token(RenderStandard),
		Text:         token(RenderText),
		WebGL:        token(RenderWebGL),
		UniqueValues: token(RenderUniqueValues),
	})

	return nil
}

// GPUInfo is the value recorded under [KeyWebGL]. Vendor and Renderer hold
// the unmasked strings or the unavailable sentinel; MaxAnisotropy holds a
// number or the unavailable sentinel.
type GPUInfo struct {
	Available              bool                                              `json:"available"`
	ContextVersion         string                                            `json:"contextVersion"`
	Vendor                 any                                               `json:"vendor"`
	Renderer               any                                               `json:"renderer"`
	VendorGL               string                                            `json:"vendorGl"`
	RendererGL             string                                            `json:"rendererGl"`
	Version                string                                            `json:"version"`
	ShadingLanguageVersion string                                            `json:"shadingLanguageVersion"`
	Antialiasing           bool                                              `json:"antialiasing"`
	Extensions             []string                                          `json:"extensions"`
	MaxParams              GPULimits                                         `json:"maxParams"`
	AliasedLineWidthRange  [2]float64                                        `json:"aliasedLineWidthRange"`
	AliasedPointSizeRange  [2]float64                                        `json:"aliasedPointSizeRange"`
	MaxAnisotropy          any                                               `json:"maxAnisotropy"`
	PrecisionFormat        map[string]map[string]map[string]PrecisionFormat `json:"precisionFormat,omitempty"`
	WebGPU                 bool                                              `json:"webgpu"`
}

// GPULimits are the numeric capability limits of the rendering context.
type GPULimits struct {
	MaxTextureSize               int    `json:"maxTextureSize"`
	MaxCubeMapTextureSize        int    `json:"maxCubeMapTextureSize"`
	MaxRenderbufferSize          int    `json:"maxRenderbufferSize"`
	MaxViewportDims              [2]int `json:"maxViewportDims"`
	MaxTextureImageUnits         int    `json:"maxTextureImageUnits"`
	MaxVertexTextureImageUnits   int    `json:"maxVertexTextureImageUnits"`
	MaxCombinedTextureImageUnits int    `json:"maxCombinedTextureImageUnits"`
	MaxFragmentUniformVectors    int    `json:"maxFragmentUniformVectors"`
	MaxVertexUniformVectors      int    `json:"maxVertexUniformVectors"`
	MaxVertexAttribs             int    `json:"maxVertexAttribs"`
	MaxVaryingVectors            int    `json:"maxVaryingVectors"`
}

func collectGPU(ctx context.Context, h Host, w *slotWriter) error {
	p, err := h.GPU(ctx)
	if err != nil {
		if isUnavailable(err) {
			w.Absent(KeyWebGL, availability{Available: false})
			return nil
		}

		return err
	}

	version := "WebGL 1.0"
	if p.WebGL2 {
		version = "WebGL 2.0"
	}

	extensions := slices.Clone(p.Extensions)
	if extensions == nil {
		extensions = []string{}
	}

	w.Put(KeyWebGL, GPUInfo{
		Available:              true,
		ContextVersion:         version,
		Vendor:                 orUnavailable(p.Vendor),
		Renderer:               orUnavailable(p.Renderer),
		VendorGL:               p.VendorGL,
		RendererGL:             p.RendererGL,
		Version:                p.Version,
		ShadingLanguageVersion: p.ShadingLanguageVersion,
		Antialiasing:           p.Antialiasing,
		Extensions:             extensions,
		MaxParams: GPULimits{
			MaxTextureSize:               p.MaxTextureSize,
			MaxCubeMapTextureSize:        p.MaxCubeMapTextureSize,
			MaxRenderbufferSize:          p.MaxRenderbufferSize,
			MaxViewportDims:              p.MaxViewportDims,
			MaxTextureImageUnits:         p.MaxTextureImageUnits,
			MaxVertexTextureImageUnits:   p.MaxVertexTextureImageUnits,
			MaxCombinedTextureImageUnits: p.MaxCombinedTextureImageUnits,
			MaxFragmentUniformVectors:    p.MaxFragmentUniformVectors,
			MaxVertexUniformVectors:      p.MaxVertexUniformVectors,
			MaxVertexAttribs:             p.MaxVertexAttribs,
			MaxVaryingVectors:            p.MaxVaryingVectors,
		},
		AliasedLineWidthRange: p.AliasedLineWidthRange,
		AliasedPointSizeRange: p.AliasedPointSizeRange,
		MaxAnisotropy:         orUnavailable(p.MaxAnisotropy),
		PrecisionFormat:       p.Precision,
		WebGPU:                h.Has(CapWebGPU),
	})

	return nil
}

// baseFonts are the generic families every candidate is measured against.
var baseFonts = []string{"monospace", "sans-serif", "serif"}

// candidateFonts is the fixed candidate list probed by measurement.
var candidateFonts = []string{
	"Arial",
	"Arial Black",
	"Arial Narrow",
	"Arial Rounded MT Bold",
	"Bookman Old Style",
	"Bradley Hand",
	"Century",
	"Century Gothic",
	"Comic Sans MS",
	"Courier",
	"Courier New",
	"Georgia",
	"Gentium",
	"Impact",
	"King",
	"Lucida Console",
	"Lalit",
	"Modena",
	"Monotype Corsiva",
	"Papyrus",
	"Tahoma",
	"TeX",
	"Times",
	"Times New Roman",
	"Trebuchet MS",
	"Verdana",
	"Verona",
}

const fontSampleSize = 10

// FontInfo is the value recorded under [KeyFonts].
type FontInfo struct {
	FontsDetected []string      `json:"fontsDetected"`
	FontsCount    int           `json:"fontsCount"`
	ModernFontAPI ModernFontAPI `json:"modernFontApi"`
}

// ModernFontAPI reports the font access API result. Error is set when the
// API exists but the query failed.
type ModernFontAPI struct {
	Available   bool     `json:"available"`
	FontsCount  int      `json:"fontsCount,omitempty"`
	FontsSample []string `json:"fontsSample,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func collectFonts(ctx context.Context, h Host, w *slotWriter) (err error) {
	m, err := h.OpenTextMeasurer(ctx)
	if err != nil {
		if isUnavailable(err) {
			w.Absent(KeyFonts, nil)
			return nil
		}

		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	detected, err := detectFonts(ctx, m)
	if err != nil {
		return err
	}

	info := FontInfo{
		FontsDetected: detected,
		FontsCount:    len(detected),
	}

	families, err := h.LocalFonts(ctx)
	switch {
	case isUnavailable(err):
	case err != nil:
		info.ModernFontAPI = ModernFontAPI{Available: true, Error: err.Error()}
	default:
		info.ModernFontAPI = ModernFontAPI{
			Available:   true,
			FontsCount:  len(families),
			FontsSample: slices.Clone(families[:min(len(families), fontSampleSize)]),
		}
	}

	w.Put(KeyFonts, info)

	return nil
}

// detectFonts reports a candidate as installed as soon as its box differs
// from any baseline, so each candidate costs at most len(baseFonts) measurements.
func detectFonts(ctx context.Context, m TextMeasurer) ([]string, error) {
	baseline := make(map[string]Box, len(baseFonts))
	for _, base := range baseFonts {
		box, err := m.Measure(ctx, base)
		if err != nil {
			return nil, err
		}
		baseline[base] = box
	}

	detected := []string{}
	for _, font := range candidateFonts {
		for _, base := range baseFonts {
			box, err := m.Measure(ctx, font+","+base)
			if err != nil {
				return nil, err
			}
			if box != baseline[base] {
				detected = append(detected, font)
				break
			}
		}
	}

	return detected, nil
}

// audioBins is the number of leading frequency bins folded into the audio token.
const audioBins = 50

// AudioInfo is the value recorded under [KeyAudio].
type AudioInfo struct {
	AudioDestination
	Fingerprint string `json:"fingerprint"`
}

func collectAudio(ctx context.Context, h Host, w *slotWriter) (err error) {
	g, err := h.OpenAudio(ctx)
	if err != nil {
		if isUnavailable(err) {
			w.Absent(KeyAudio, nil)
			return nil
		}

		return err
	}
	defer func() {
		if cerr := g.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	info := AudioInfo{AudioDestination: g.Destination()}

	bins, err := g.FrequencyData(ctx, audioBins)
	if err != nil {
		return err
	}

	parts := make([]string, 0, min(len(bins), audioBins))
	for _, b := range bins[:min(len(bins), audioBins)] {
		parts = append(parts, strconv.Itoa(int(b)))
	}
	info.Fingerprint = HashContent(strings.Join(parts, ","))

	w.Put(KeyAudio, info)

	return nil
}
