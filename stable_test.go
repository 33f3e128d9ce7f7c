package fingerprint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settledRecord(t *testing.T, values map[Key]Outcome) *Record {
	t.Helper()

	r := newRecord("stable")
	for _, k := range Keys() {
		o, ok := values[k]
		if !ok {
			o = Absent(nil)
		}
		require.NoError(t, r.put(k, o))
	}

	return r
}

func TestClassifyEmptyRecord(t *testing.T) {
	s := Classify(settledRecord(t, nil))
	assert.Equal(t, StableSubset{}, s)
}

func TestClassifyNilRecord(t *testing.T) {
	var s StableSubset
	require.NotPanics(t, func() { s = Classify(nil) })
	assert.Equal(t, StableSubset{}, s)

	id, err := Identify(s, "")
	require.NoError(t, err)
	assert.Len(t, id, 8)
}

func TestClassifyIgnoresFailedSlots(t *testing.T) {
	r := settledRecord(t, map[Key]Outcome{
		KeyUserAgent: OK("agent"),
		KeyCanvas:    Failed(errors.New("no context")),
		KeyWebGL:     Absent(availability{}),
		KeyAudio:     Failed(ErrProbeTimeout),
	})

	s := Classify(r)
	require.NotNil(t, s.UserAgent)
	assert.Equal(t, "agent", *s.UserAgent)
	assert.Nil(t, s.Canvas)
	assert.Nil(t, s.Audio)
	assert.Equal(t, StableGPU{}, s.WebGL)
}

func TestClassifyProjectsStableFields(t *testing.T) {
	r := settledRecord(t, map[Key]Outcome{
		KeyLanguages: OK([]string{"en-US", "en"}),
		KeyPlatform:  OK("Linux x86_64"),
		KeyScreen: OK(ScreenInfo{
			Width: 1920, Height: 1080, ColorDepth: 24, PixelDepth: 24, DevicePixelRatio: 1.5,
			InnerWidth: 800, OuterWidth: 900,
		}),
		KeyTime:     OK(TimeInfo{TimezoneOffset: -420, Timezone: "Asia/Ho_Chi_Minh"}),
		KeyHardware: OK(HardwareInfo{DeviceMemory: Unavailable, HardwareConcurrency: 4}),
		KeyWebGL: OK(GPUInfo{
			Vendor:     "Vendor",
			Renderer:   Unavailable,
			Extensions: []string{"EXT_a", "EXT_b"},
			Version:    "WebGL 1.0",
		}),
		KeyFonts:   OK(FontInfo{FontsDetected: []string{"Arial"}, FontsCount: 1}),
		KeyAudio:   OK(AudioInfo{Fingerprint: "0badf00d"}),
		KeyBrowser: OK(BrowserInfo{Plugins: []Plugin{{Name: "a"}, {Name: "b"}}}),
	})

	s := Classify(r)

	assert.Equal(t, []string{"en-US", "en"}, s.Language)
	assert.Equal(t, 1920, *s.ScreenProps.Width)
	assert.Equal(t, 1.5, *s.ScreenProps.DevicePixelRatio)
	assert.Equal(t, -420, *s.TimezoneOffset)
	assert.Equal(t, "Asia/Ho_Chi_Minh", *s.Timezone)
	assert.Equal(t, 4, s.CPUCores)
	assert.Equal(t, Unavailable, s.DeviceMemory)
	assert.Equal(t, StableGPU{Vendor: "Vendor", Renderer: Unavailable, Extensions: []string{"EXT_a", "EXT_b"}}, s.WebGL)
	assert.Equal(t, 1, *s.Fonts)
	assert.Equal(t, "0badf00d", *s.Audio)
	assert.Equal(t, 2, s.Plugins)
}

func TestClassifyPluginsUnavailableCountsZero(t *testing.T) {
	r := settledRecord(t, map[Key]Outcome{
		KeyBrowser: OK(BrowserInfo{Plugins: Unavailable}),
	})

	assert.Zero(t, Classify(r).Plugins)
}

func TestClassifySharesNoMemory(t *testing.T) {
	langs := []string{"en-US"}
	ext := []string{"EXT_a"}
	r := settledRecord(t, map[Key]Outcome{
		KeyLanguages: OK(langs),
		KeyWebGL:     OK(GPUInfo{Extensions: ext}),
	})

	s := Classify(r)
	s.Language[0] = "fr-FR"
	s.WebGL.Extensions[0] = "EXT_z"

	assert.Equal(t, "en-US", langs[0])
	assert.Equal(t, "EXT_a", ext[0])
}
