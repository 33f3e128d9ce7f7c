package static

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slashdevops/fingerprint"
)

const yamlProfile = `
navigator:
  userAgent: "TestAgent/1.0"
  platform: "MacIntel"
  languages: ["fr-FR", "fr"]
  brands:
    - brand: "Chromium"
      version: "126"
highEntropy:
  bitness: "64"
screen:
  width: 1440
  height: 900
  devicePixelRatio: 2
  orientation: landscape-primary
hardware:
  hardwareConcurrency: 10
  deviceMemory: 8
capabilities: [webGPU, permissions, CHROME]
now: 2025-03-01T10:00:00Z
timeZone: Europe/Paris
locale: fr-FR
render:
  standard: "a1b2"
battery:
  charging: true
  chargingTime: -1
  dischargingTime: 3600
  level: 0.42
faults:
  Connection:
    error: "network down"
  StorageEstimate:
    unavailable: true
`

func TestParseYAML(t *testing.T) {
	p, err := Parse([]byte(yamlProfile))
	require.NoError(t, err)

	assert.Equal(t, "TestAgent/1.0", p.Navigator.UserAgent)
	assert.Equal(t, []string{"fr-FR", "fr"}, p.Navigator.Languages)
	assert.Equal(t, 1440, p.Screen.Width)
	assert.Equal(t, "Europe/Paris", p.TimeZone)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), p.Now.UTC())
	assert.Equal(t, Fault{Error: "network down"}, p.Faults["Connection"])
}

func TestParseJSON(t *testing.T) {
	p, err := Parse([]byte(`{"navigator": {"userAgent": "JSONAgent"}, "hardware": {"hardwareConcurrency": 4}}`))
	require.NoError(t, err)

	assert.Equal(t, "JSONAgent", p.Navigator.UserAgent)
	assert.Equal(t, 4, p.Hardware.HardwareConcurrency)
	assert.Nil(t, p.Screen)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("navigator: [unterminated"))
	assert.ErrorContains(t, err, "parsing profile")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlProfile), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "MacIntel", p.Navigator.Platform)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading profile")
}

func TestNewRejectsBadProfiles(t *testing.T) {
	_, err := New(Profile{Capabilities: []string{"teleport"}})
	assert.ErrorContains(t, err, `unknown capability "teleport"`)

	_, err = New(Profile{TimeZone: "Mars/Olympus_Mons"})
	assert.ErrorContains(t, err, "loading time zone")

	assert.Panics(t, func() { MustNew(Profile{Capabilities: []string{"teleport"}}) })
}

func TestHostAnswersFromProfile(t *testing.T) {
	p, err := Parse([]byte(yamlProfile))
	require.NoError(t, err)
	h := MustNew(p)
	ctx := context.Background()

	assert.True(t, h.Has(fingerprint.CapWebGPU))
	assert.True(t, h.Has(fingerprint.CapChromeObject))
	assert.False(t, h.Has(fingerprint.CapBluetooth))
	assert.Equal(t, p.Now, h.Now())

	nav, err := h.Navigator(ctx)
	require.NoError(t, err)
	require.NotNil(t, nav.UserAgentData)
	assert.True(t, nav.UserAgentData.HighEntropy)

	values, err := h.HighEntropyValues(ctx, []string{"bitness", "model"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bitness": "64"}, values)

	screen, err := h.Screen(ctx)
	require.NoError(t, err)
	require.NotNil(t, screen.Orientation)
	assert.Equal(t, "landscape-primary", screen.Orientation.Type)

	zone, err := h.TimeZone(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", zone.Location.String())
	assert.Equal(t, "fr-FR", zone.Locale)

	battery, err := h.Battery(ctx)
	require.NoError(t, err)
	assert.True(t, math.IsInf(battery.ChargingTime, 1))
	assert.Equal(t, 3600.0, battery.DischargingTime)

	_, err = h.GPU(ctx)
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)

	_, err = h.Render(ctx, fingerprint.RenderText)
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)
}

func TestHostFaults(t *testing.T) {
	p, err := Parse([]byte(yamlProfile))
	require.NoError(t, err)
	p.Faults["Screen"] = Fault{Panic: "screen gone"}
	p.Faults["Hardware"] = Fault{Stall: true}

	h := MustNew(p)

	_, err = h.Connection(context.Background())
	assert.EqualError(t, err, "network down")

	_, err = h.StorageEstimate(context.Background())
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)

	assert.PanicsWithValue(t, "screen gone", func() { _, _ = h.Screen(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = h.Hardware(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, 1, h.Calls("Connection"))
	assert.Equal(t, 1, h.Calls("Hardware"))
}

func TestQueryPermission(t *testing.T) {
	h := MustNew(Desktop())

	state, err := h.QueryPermission(context.Background(), "camera")
	require.NoError(t, err)
	assert.Equal(t, "prompt", state)

	_, err = h.QueryPermission(context.Background(), "bluetooth")
	assert.Error(t, err)
}

func TestMeasurer(t *testing.T) {
	h := MustNew(Desktop())
	ctx := context.Background()

	m, err := h.OpenTextMeasurer(ctx)
	require.NoError(t, err)

	mono, err := m.Measure(ctx, "monospace")
	require.NoError(t, err)
	assert.Equal(t, baselineBoxes["monospace"], mono)

	arial, err := m.Measure(ctx, `"Arial", monospace`)
	require.NoError(t, err)
	assert.Equal(t, installedBox("Arial"), arial)
	assert.Greater(t, arial.Width, mono.Width)

	fallback, err := m.Measure(ctx, "Papyrus,sans-serif")
	require.NoError(t, err)
	assert.Equal(t, baselineBoxes["sans-serif"], fallback)

	require.NoError(t, m.Close())
	_, err = m.Measure(ctx, "serif")
	assert.ErrorIs(t, err, errClosed)
	assert.Equal(t, 1, h.Calls("CloseTextMeasurer"))
}

func TestAudioGraph(t *testing.T) {
	h := MustNew(Desktop())
	ctx := context.Background()

	g, err := h.OpenAudio(ctx)
	require.NoError(t, err)
	assert.Equal(t, 48000.0, g.Destination().SampleRate)

	bins, err := g.FrequencyData(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 12, 48, 96, 140, 96, 48, 12, 0, 0, 0}, bins)

	require.NoError(t, g.Close())
	_, err = g.FrequencyData(ctx, 4)
	assert.ErrorIs(t, err, errClosed)
	assert.Equal(t, 1, h.Calls("CloseAudio"))
}
