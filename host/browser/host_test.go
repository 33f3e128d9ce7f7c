package browser

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slashdevops/fingerprint"
)

// scriptedPage answers evaluations by script text.
type scriptedPage struct {
	mu      sync.Mutex
	results map[string]string
	errs    map[string]error
	calls   []string
}

func newScriptedPage() *scriptedPage {
	return &scriptedPage{results: map[string]string{}, errs: map[string]error{}}
}

func (p *scriptedPage) on(js, result string) *scriptedPage {
	p.results[js] = result
	return p
}

func (p *scriptedPage) eval(ctx context.Context, js string, _ ...any) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, js)
	if err := ctx.Err(); err != nil {
		return nil, errors.New("page context canceled")
	}
	if err, ok := p.errs[js]; ok {
		return nil, err
	}
	if r, ok := p.results[js]; ok {
		return json.RawMessage(r), nil
	}

	return nil, nil
}

func (p *scriptedPage) count(js string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, c := range p.calls {
		if c == js {
			n++
		}
	}

	return n
}

func TestCapabilityScript(t *testing.T) {
	js := capabilityScript()

	assert.True(t, strings.HasPrefix(js, "() => {"))
	assert.Contains(t, js, `check('webGPU', () => 'gpu' in navigator);`)
	assert.Contains(t, js, `check('webdriver', () => navigator.webdriver === true);`)

	for _, c := range fingerprint.Capabilities() {
		assert.Contains(t, capabilityChecks, c, "missing check for %s", c)
	}
}

func TestAttachReadsCapabilitiesAndClock(t *testing.T) {
	page := newScriptedPage().
		on(capabilityScript(), `{"webGPU": true, "permissions": true, "webdriver": false, "teleport": true}`).
		on(clockJS, strconv.FormatInt(time.Now().Add(time.Hour).UnixMilli(), 10))

	h := newHost(page.eval)
	h.init(context.Background())

	assert.True(t, h.Has(fingerprint.CapWebGPU))
	assert.True(t, h.Has(fingerprint.CapPermissions))
	assert.False(t, h.Has(fingerprint.CapWebDriver))
	assert.False(t, h.Has(fingerprint.CapBluetooth))
	assert.Len(t, h.caps, 3)
	assert.WithinDuration(t, time.Now().Add(time.Hour), h.Now(), time.Second)
}

func TestAttachToleratesFailures(t *testing.T) {
	page := newScriptedPage()
	page.errs[capabilityScript()] = errors.New("Runtime.evaluate failed")

	h := newHost(page.eval)
	h.init(context.Background())

	assert.Empty(t, h.caps)
	assert.WithinDuration(t, time.Now(), h.Now(), time.Second)
}

func TestDecode(t *testing.T) {
	page := newScriptedPage().
		on(screenJS, `{"width": 1920, "height": 1080, "colorDepth": 24, "devicePixelRatio": 1.25, "orientation": {"type": "landscape-primary", "angle": 0}}`).
		on(hardwareJS, `"not an object"`)
	h := newHost(page.eval)
	ctx := context.Background()

	screen, err := h.Screen(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1920, screen.Width)
	assert.Equal(t, 1.25, screen.DevicePixelRatio)
	require.NotNil(t, screen.Orientation)
	assert.Equal(t, "landscape-primary", screen.Orientation.Type)

	_, err = h.Hardware(ctx)
	assert.ErrorContains(t, err, "decode script result")

	_, err = h.Connection(ctx)
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)

	page.errs[gpuJS] = errors.New("WebGL context lost")
	_, err = h.GPU(ctx)
	assert.EqualError(t, err, "evaluate script: WebGL context lost")

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = h.Performance(canceled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNavigatorDecoding(t *testing.T) {
	page := newScriptedPage().on(navigatorJS, `{
		"userAgent": "Mozilla/5.0 Chrome/126",
		"platform": "Win32",
		"languages": ["en-US", "en"],
		"cpuClass": "",
		"oscpu": "",
		"cookieEnabled": true,
		"pdfViewerEnabled": true,
		"userAgentData": {"brands": [{"brand": "Chromium", "version": "126"}], "mobile": false, "highEntropy": true},
		"plugins": [{"name": "PDF Viewer", "description": "Portable Document Format", "filename": "internal-pdf-viewer",
			"mimeTypes": [{"type": "application/pdf", "description": "", "suffixes": "pdf", "enabledPlugin": "PDF Viewer"}]}],
		"props": {"hardwareConcurrency": 8, "webdriver": false},
		"userActivation": {"hasBeenActive": false, "isActive": false}
	}`)
	h := newHost(page.eval)

	nav, err := h.Navigator(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Win32", nav.Platform)
	assert.Equal(t, []string{"en-US", "en"}, nav.Languages)
	require.NotNil(t, nav.PDFViewerEnabled)
	assert.True(t, *nav.PDFViewerEnabled)
	require.NotNil(t, nav.UserAgentData)
	assert.True(t, nav.UserAgentData.HighEntropy)
	require.Len(t, nav.Plugins, 1)
	assert.Equal(t, "pdf", nav.Plugins[0].MimeTypes[0].Suffixes)
	assert.Equal(t, 8.0, nav.Props["hardwareConcurrency"])
	require.NotNil(t, nav.UserActivation)
}

func TestTimeZoneFallsBackToOffset(t *testing.T) {
	page := newScriptedPage().on(zoneJS, `{"timeZone": "Etc/Nowhere", "locale": "en-US", "offset": -330}`)
	h := newHost(page.eval)

	zone, err := h.TimeZone(context.Background())
	require.NoError(t, err)

	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, zone.Location).Zone()
	assert.Equal(t, 330*60, offset)
	assert.Equal(t, "en-US", zone.Locale)

	page.on(zoneJS, `{"timeZone": "Asia/Ho_Chi_Minh", "locale": "vi-VN", "offset": -420}`)
	zone, err = h.TimeZone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Asia/Ho_Chi_Minh", zone.Location.String())
}

func TestBatteryInfiniteTimes(t *testing.T) {
	page := newScriptedPage().on(batteryJS, `{"charging": true, "chargingTime": -1, "dischargingTime": -1, "level": 1}`)
	h := newHost(page.eval)

	b, err := h.Battery(context.Background())
	require.NoError(t, err)
	assert.True(t, math.IsInf(b.ChargingTime, 1))
	assert.True(t, math.IsInf(b.DischargingTime, 1))
	assert.Equal(t, 1.0, b.Level)
}

func TestRenderAndFonts(t *testing.T) {
	page := newScriptedPage().
		on(renderScenes[fingerprint.RenderStandard], `"data:image/png;base64,AAAA"`).
		on(localFontsJS, `[]`)
	h := newHost(page.eval)
	ctx := context.Background()

	out, err := h.Render(ctx, fingerprint.RenderStandard)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", out)

	_, err = h.Render(ctx, fingerprint.RenderWebGL)
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)

	_, err = h.Render(ctx, fingerprint.RenderKind(42))
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)

	_, err = h.LocalFonts(ctx)
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)
}

func TestMeasurerLifecycle(t *testing.T) {
	page := newScriptedPage().
		on(measurerOpenJS, `true`).
		on(measureJS, `{"width": 431.5, "height": 82}`).
		on(measurerCloseJS, `true`)
	h := newHost(page.eval)
	ctx := context.Background()

	m, err := h.OpenTextMeasurer(ctx)
	require.NoError(t, err)

	box, err := m.Measure(ctx, "Arial,monospace")
	require.NoError(t, err)
	assert.Equal(t, fingerprint.Box{Width: 431.5, Height: 82}, box)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	_, err = m.Measure(ctx, "serif")
	assert.ErrorIs(t, err, errClosed)
	assert.Equal(t, 1, page.count(measurerCloseJS))
}

func TestAudioLifecycle(t *testing.T) {
	page := newScriptedPage().
		on(audioOpenJS, `{"sampleRate": 48000, "state": "running", "maxChannelCount": 2, "channelCount": 2, "channelCountMode": "explicit", "channelInterpretation": "speakers"}`).
		on(frequencyJS, `[1, 2, 3, 4]`).
		on(audioCloseJS, `true`)
	h := newHost(page.eval)
	ctx := context.Background()

	g, err := h.OpenAudio(ctx)
	require.NoError(t, err)
	assert.Equal(t, 48000.0, g.Destination().SampleRate)

	bins, err := g.FrequencyData(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 4}, bins)

	require.NoError(t, g.Close())
	_, err = g.FrequencyData(ctx, 4)
	assert.ErrorIs(t, err, errClosed)
	assert.Equal(t, 1, page.count(audioCloseJS))
}

func TestAudioUnavailable(t *testing.T) {
	h := newHost(newScriptedPage().eval)

	_, err := h.OpenAudio(context.Background())
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)
}

func TestCloseWithoutBrowser(t *testing.T) {
	h := newHost(newScriptedPage().eval)
	assert.NoError(t, h.Close())
}
