// Package browser provides a [fingerprint.Host] backed by a real browser
// page driven over the Chrome DevTools Protocol with go-rod.
//
// Every host method evaluates a small script in the page and decodes its
// JSON result. A script that returns null means the page lacks the feature
// and the method reports [fingerprint.ErrUnavailable].
//
// Capability presence and the page clock are read once when the host is
// attached, since [fingerprint.Host.Has] and [fingerprint.Host.Now] take no
// context.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slashdevops/fingerprint"
)

// evalFunc runs a script function with arguments and returns its result as
// raw JSON, or nil when the script returned null or undefined.
type evalFunc func(ctx context.Context, js string, args ...any) (json.RawMessage, error)

// Config selects the browser to drive.
type Config struct {
	// ControlURL is the DevTools WebSocket URL of a running browser. When
	// empty a local browser is launched.
	ControlURL string
	// Bin is the browser binary to launch. Empty uses the launcher default.
	Bin string
	// Headless launches the browser without a window.
	Headless bool
	// PageURL is loaded before probing. It defaults to about:blank.
	PageURL string
}

// Host answers probes by evaluating scripts in a browser page.
type Host struct {
	eval   evalFunc
	logger *zerolog.Logger

	caps   map[fingerprint.Capability]bool
	offset time.Duration

	page     *rod.Page
	browser  *rod.Browser
	launcher *launcher.Launcher
}

var _ fingerprint.Host = (*Host)(nil)

// Open launches or connects to a browser, opens a page on cfg.PageURL and
// attaches a host to it. Close releases the page and the browser.
func Open(ctx context.Context, cfg Config) (*Host, error) {
	controlURL := cfg.ControlURL
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	pageURL := cfg.PageURL
	if pageURL == "" {
		pageURL = "about:blank"
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: pageURL})
	if err == nil {
		err = page.Context(ctx).WaitLoad()
	}
	if err != nil {
		_ = b.Close()
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("open page %s: %w", pageURL, err)
	}

	h := Attach(ctx, page)
	h.browser = b
	h.launcher = l

	return h, nil
}

// Attach wraps an already loaded page. The caller keeps ownership of the
// page; Close on the returned host does not close it.
func Attach(ctx context.Context, page *rod.Page) *Host {
	h := newHost(pageEval(page))
	h.page = page
	h.init(ctx)

	return h
}

func newHost(eval evalFunc) *Host {
	return &Host{
		eval: eval,
		caps: map[fingerprint.Capability]bool{},
	}
}

// WithLogger sets an optional logger. A nil logger disables logging.
func (h *Host) WithLogger(logger *zerolog.Logger) *Host {
	h.logger = logger

	return h
}

// init reads the capability set and the page clock offset. Failures leave
// every capability absent and the local clock in use.
func (h *Host) init(ctx context.Context) {
	names, err := decode[map[string]bool](ctx, h, capabilityScript())
	if err != nil {
		h.logWarn().Err(err).Msg("reading page capabilities")
	}
	for name, present := range names {
		if c, ok := fingerprint.ParseCapability(name); ok {
			h.caps[c] = present
		}
	}

	ms, err := decode[float64](ctx, h, clockJS)
	if err != nil {
		h.logWarn().Err(err).Msg("reading page clock")
		return
	}
	h.offset = time.UnixMilli(int64(ms)).Sub(time.Now())
}

// Close releases the page and browser opened by [Open].
func (h *Host) Close() error {
	if h.browser == nil {
		return nil
	}

	err := h.browser.Close()
	if h.launcher != nil {
		h.launcher.Kill()
		h.launcher.Cleanup()
	}
	h.browser = nil

	return err
}

func pageEval(page *rod.Page) evalFunc {
	return func(ctx context.Context, js string, args ...any) (json.RawMessage, error) {
		res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{
			JS:           js,
			JSArgs:       args,
			ByValue:      true,
			AwaitPromise: true,
		})
		if err != nil {
			return nil, err
		}
		if res == nil || res.Value.Nil() {
			return nil, nil
		}

		return res.Value.MarshalJSON()
	}
}

// decode evaluates js and unmarshals its result into T.
func decode[T any](ctx context.Context, h *Host, js string, args ...any) (T, error) {
	var out T

	raw, err := h.eval(ctx, js, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		return out, fmt.Errorf("evaluate script: %w", err)
	}
	if raw == nil || string(raw) == "null" {
		return out, fingerprint.ErrUnavailable
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode script result: %w", err)
	}

	return out, nil
}

func (h *Host) Navigator(ctx context.Context) (fingerprint.Navigator, error) {
	return decode[fingerprint.Navigator](ctx, h, navigatorJS)
}

func (h *Host) HighEntropyValues(ctx context.Context, hints []string) (map[string]any, error) {
	return decode[map[string]any](ctx, h, highEntropyJS, hints)
}

func (h *Host) Screen(ctx context.Context) (fingerprint.Screen, error) {
	return decode[fingerprint.Screen](ctx, h, screenJS)
}

func (h *Host) MatchMedia(ctx context.Context, query string) (bool, error) {
	return decode[bool](ctx, h, matchMediaJS, query)
}

func (h *Host) Hardware(ctx context.Context) (fingerprint.Hardware, error) {
	return decode[fingerprint.Hardware](ctx, h, hardwareJS)
}

func (h *Host) Has(c fingerprint.Capability) bool {
	return h.caps[c]
}

// Now returns the page clock, derived from the offset measured at attach.
func (h *Host) Now() time.Time {
	return time.Now().Add(h.offset)
}

type zoneResult struct {
	TimeZone string `json:"timeZone"`
	Locale   string `json:"locale"`
	// Offset is minutes behind UTC, as Date.getTimezoneOffset reports it.
	Offset int `json:"offset"`
}

func (h *Host) TimeZone(ctx context.Context) (fingerprint.Zone, error) {
	z, err := decode[zoneResult](ctx, h, zoneJS)
	if err != nil {
		return fingerprint.Zone{}, err
	}

	return fingerprint.Zone{Location: z.location(), Locale: z.Locale}, nil
}

// location resolves the IANA zone, falling back to a fixed zone at the
// page's current offset when the name is unknown to the local database.
func (z zoneResult) location() *time.Location {
	if z.TimeZone != "" {
		if loc, err := time.LoadLocation(z.TimeZone); err == nil {
			return loc
		}
	}

	return time.FixedZone(z.TimeZone, -z.Offset*60)
}

func (h *Host) Performance(ctx context.Context) (fingerprint.PerformanceTiming, error) {
	return decode[fingerprint.PerformanceTiming](ctx, h, performanceJS)
}

func (h *Host) Render(ctx context.Context, kind fingerprint.RenderKind) (string, error) {
	js, ok := renderScenes[kind]
	if !ok {
		return "", fingerprint.ErrUnavailable
	}

	return decode[string](ctx, h, js)
}

func (h *Host) GPU(ctx context.Context) (fingerprint.GPUParams, error) {
	return decode[fingerprint.GPUParams](ctx, h, gpuJS)
}

func (h *Host) LocalFonts(ctx context.Context) ([]string, error) {
	families, err := decode[[]string](ctx, h, localFontsJS)
	if err != nil {
		return nil, err
	}
	if len(families) == 0 {
		return nil, fingerprint.ErrUnavailable
	}

	return families, nil
}

func (h *Host) OpenTextMeasurer(ctx context.Context) (fingerprint.TextMeasurer, error) {
	id := "fp-measure-" + uuid.NewString()
	if _, err := decode[bool](ctx, h, measurerOpenJS, id); err != nil {
		return nil, err
	}

	return &spanMeasurer{h: h, id: id}, nil
}

func (h *Host) OpenAudio(ctx context.Context) (fingerprint.AudioGraph, error) {
	id := "__fpAudio_" + uuid.NewString()
	dest, err := decode[fingerprint.AudioDestination](ctx, h, audioOpenJS, id)
	if err != nil {
		return nil, err
	}

	return &pageAudio{h: h, id: id, dest: dest}, nil
}

func (h *Host) Connection(ctx context.Context) (fingerprint.Connection, error) {
	return decode[fingerprint.Connection](ctx, h, connectionJS)
}

func (h *Host) StorageEstimate(ctx context.Context) (fingerprint.StorageEstimate, error) {
	return decode[fingerprint.StorageEstimate](ctx, h, storageEstimateJS)
}

func (h *Host) StoragePersisted(ctx context.Context) (bool, error) {
	return decode[bool](ctx, h, storagePersistedJS)
}

func (h *Host) Battery(ctx context.Context) (fingerprint.Battery, error) {
	b, err := decode[fingerprint.Battery](ctx, h, batteryJS)
	if err != nil {
		return b, err
	}
	if b.ChargingTime < 0 {
		b.ChargingTime = math.Inf(1)
	}
	if b.DischargingTime < 0 {
		b.DischargingTime = math.Inf(1)
	}

	return b, nil
}

func (h *Host) CanPlayType(ctx context.Context, mime string) (bool, error) {
	return decode[bool](ctx, h, canPlayTypeJS, mime)
}

func (h *Host) MediaDevices(ctx context.Context) ([]fingerprint.MediaDevice, error) {
	return decode[[]fingerprint.MediaDevice](ctx, h, mediaDevicesJS)
}

func (h *Host) QueryPermission(ctx context.Context, name string) (string, error) {
	return decode[string](ctx, h, permissionJS, name)
}

var errClosed = errors.New("resource closed")

type spanMeasurer struct {
	h      *Host
	id     string
	closed bool
}

func (m *spanMeasurer) Measure(ctx context.Context, family string) (fingerprint.Box, error) {
	if m.closed {
		return fingerprint.Box{}, errClosed
	}

	return decode[fingerprint.Box](ctx, m.h, measureJS, m.id, family)
}

// Close removes the span. It uses a fresh context so that cleanup still
// runs after the probe's deadline expired.
func (m *spanMeasurer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	_, err := decode[bool](ctx, m.h, measurerCloseJS, m.id)

	return err
}

type pageAudio struct {
	h      *Host
	id     string
	dest   fingerprint.AudioDestination
	closed bool
}

func (a *pageAudio) Destination() fingerprint.AudioDestination {
	return a.dest
}

func (a *pageAudio) FrequencyData(ctx context.Context, bins int) ([]uint8, error) {
	if a.closed {
		return nil, errClosed
	}

	values, err := decode[[]int](ctx, a.h, frequencyJS, a.id, bins)
	if err != nil {
		return nil, err
	}

	out := make([]uint8, len(values))
	for i, v := range values {
		out[i] = uint8(v)
	}

	return out, nil
}

func (a *pageAudio) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	_, err := decode[bool](ctx, a.h, audioCloseJS, a.id)

	return err
}

const closeTimeout = 2 * time.Second

func (h *Host) logWarn() *zerolog.Event {
	if h.logger == nil {
		return nil
	}

	return h.logger.Warn()
}
