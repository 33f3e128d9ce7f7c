// Package static provides a deterministic, fully simulated [fingerprint.Host]
// built from a [Profile]. It backs tests and replays of recorded devices, and
// can inject failures, panics and stalls into any host method.
package static

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/slashdevops/fingerprint"
)

// Host is a simulated host. It is safe for concurrent use.
type Host struct {
	profile Profile
	caps    map[fingerprint.Capability]bool
	zone    *time.Location

	mu    sync.Mutex
	clock func() time.Time
	calls map[string]int
}

var _ fingerprint.Host = (*Host)(nil)

// New builds a host from p. It fails on unknown capability names and
// unknown time zones.
func New(p Profile) (*Host, error) {
	h := &Host{
		profile: p,
		caps:    make(map[fingerprint.Capability]bool, len(p.Capabilities)),
		calls:   make(map[string]int),
	}

	for _, name := range p.Capabilities {
		c, ok := fingerprint.ParseCapability(name)
		if !ok {
			return nil, fmt.Errorf("unknown capability %q", name)
		}
		h.caps[c] = true
	}

	if p.TimeZone != "" {
		loc, err := time.LoadLocation(p.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("loading time zone: %w", err)
		}
		h.zone = loc
	}

	if !p.Now.IsZero() {
		now := p.Now
		h.clock = func() time.Time { return now }
	} else {
		h.clock = time.Now
	}

	return h, nil
}

// MustNew is like New but panics on error.
func MustNew(p Profile) *Host {
	h, err := New(p)
	if err != nil {
		panic(err)
	}

	return h
}

// WithClock replaces the host clock.
func (h *Host) WithClock(clock func() time.Time) *Host {
	h.mu.Lock()
	h.clock = clock
	h.mu.Unlock()

	return h
}

// Calls returns how many times method has been invoked.
func (h *Host) Calls(method string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.calls[method]
}

// enter counts the call and applies the configured fault for method.
func (h *Host) enter(ctx context.Context, method string) error {
	h.mu.Lock()
	h.calls[method]++
	h.mu.Unlock()

	f, ok := h.profile.Faults[method]
	if !ok {
		return ctx.Err()
	}

	switch {
	case f.Panic != "":
		panic(f.Panic)
	case f.Stall:
		<-ctx.Done()
		return ctx.Err()
	case f.Unavailable:
		return fingerprint.ErrUnavailable
	case f.Error != "":
		return errors.New(f.Error)
	}

	return ctx.Err()
}

func (h *Host) Navigator(ctx context.Context) (fingerprint.Navigator, error) {
	if err := h.enter(ctx, "Navigator"); err != nil {
		return fingerprint.Navigator{}, err
	}

	n := h.profile.Navigator
	if n == nil {
		return fingerprint.Navigator{}, fingerprint.ErrUnavailable
	}

	nav := fingerprint.Navigator{
		UserAgent:        n.UserAgent,
		Platform:         n.Platform,
		CPUClass:         n.CPUClass,
		DoNotTrack:       n.DoNotTrack,
		Language:         n.Language,
		Languages:        slices.Clone(n.Languages),
		OSCPU:            n.OSCPU,
		Vendor:           n.Vendor,
		VendorSub:        n.VendorSub,
		ProductSub:       n.ProductSub,
		AppName:          n.AppName,
		AppVersion:       n.AppVersion,
		AppCodeName:      n.AppCodeName,
		BuildID:          n.BuildID,
		Product:          n.Product,
		CookieEnabled:    n.CookieEnabled,
		JavaEnabled:      n.JavaEnabled,
		PDFViewerEnabled: n.PDFViewerEnabled,
		Plugins:          slices.Clone(n.Plugins),
		MimeTypes:        slices.Clone(n.MimeTypes),
		Props:            n.Props,
		UserActivation:   n.UserActivation,
	}
	if len(n.Brands) > 0 {
		nav.UserAgentData = &fingerprint.UserAgentHints{
			Brands:      slices.Clone(n.Brands),
			Mobile:      n.Mobile,
			HighEntropy: h.profile.HighEntropy != nil,
		}
	}

	return nav, nil
}

func (h *Host) HighEntropyValues(ctx context.Context, hints []string) (map[string]any, error) {
	if err := h.enter(ctx, "HighEntropyValues"); err != nil {
		return nil, err
	}
	if h.profile.HighEntropy == nil {
		return nil, fingerprint.ErrUnavailable
	}

	out := make(map[string]any, len(hints))
	for _, hint := range hints {
		if v, ok := h.profile.HighEntropy[hint]; ok {
			out[hint] = v
		}
	}

	return out, nil
}

func (h *Host) Screen(ctx context.Context) (fingerprint.Screen, error) {
	if err := h.enter(ctx, "Screen"); err != nil {
		return fingerprint.Screen{}, err
	}

	s := h.profile.Screen
	if s == nil {
		return fingerprint.Screen{}, fingerprint.ErrUnavailable
	}

	out := fingerprint.Screen{
		Width:            s.Width,
		Height:           s.Height,
		AvailWidth:       s.AvailWidth,
		AvailHeight:      s.AvailHeight,
		ColorDepth:       s.ColorDepth,
		PixelDepth:       s.PixelDepth,
		DevicePixelRatio: s.DevicePixelRatio,
		InnerWidth:       s.InnerWidth,
		InnerHeight:      s.InnerHeight,
		OuterWidth:       s.OuterWidth,
		OuterHeight:      s.OuterHeight,
	}
	if s.Orientation != "" {
		out.Orientation = &fingerprint.Orientation{Type: s.Orientation, Angle: s.OrientationAngle}
	}

	return out, nil
}

func (h *Host) MatchMedia(ctx context.Context, query string) (bool, error) {
	if err := h.enter(ctx, "MatchMedia"); err != nil {
		return false, err
	}
	if h.profile.Media == nil {
		return false, fingerprint.ErrUnavailable
	}

	return h.profile.Media[query], nil
}

func (h *Host) Hardware(ctx context.Context) (fingerprint.Hardware, error) {
	if err := h.enter(ctx, "Hardware"); err != nil {
		return fingerprint.Hardware{}, err
	}

	hw := h.profile.Hardware
	if hw == nil {
		return fingerprint.Hardware{}, fingerprint.ErrUnavailable
	}

	return fingerprint.Hardware{
		DeviceMemory:        hw.DeviceMemory,
		HardwareConcurrency: hw.HardwareConcurrency,
		MaxTouchPoints:      hw.MaxTouchPoints,
	}, nil
}

func (h *Host) Has(c fingerprint.Capability) bool {
	return h.caps[c]
}

func (h *Host) Now() time.Time {
	h.mu.Lock()
	clock := h.clock
	h.mu.Unlock()

	return clock()
}

func (h *Host) TimeZone(ctx context.Context) (fingerprint.Zone, error) {
	if err := h.enter(ctx, "TimeZone"); err != nil {
		return fingerprint.Zone{}, err
	}
	if h.zone == nil {
		return fingerprint.Zone{}, fingerprint.ErrUnavailable
	}

	return fingerprint.Zone{Location: h.zone, Locale: h.profile.Locale}, nil
}

func (h *Host) Performance(ctx context.Context) (fingerprint.PerformanceTiming, error) {
	if err := h.enter(ctx, "Performance"); err != nil {
		return fingerprint.PerformanceTiming{}, err
	}

	p := h.profile.Performance
	if p == nil {
		return fingerprint.PerformanceTiming{}, fingerprint.ErrUnavailable
	}

	return fingerprint.PerformanceTiming{
		NavigationStart: p.NavigationStart,
		TimeOrigin:      p.TimeOrigin,
		Now:             p.Now,
	}, nil
}

func (h *Host) Render(ctx context.Context, kind fingerprint.RenderKind) (string, error) {
	if err := h.enter(ctx, "Render"); err != nil {
		return "", err
	}

	payload, ok := h.profile.Render[kind.String()]
	if !ok {
		return "", fingerprint.ErrUnavailable
	}

	return payload, nil
}

func (h *Host) GPU(ctx context.Context) (fingerprint.GPUParams, error) {
	if err := h.enter(ctx, "GPU"); err != nil {
		return fingerprint.GPUParams{}, err
	}

	g := h.profile.GPU
	if g == nil {
		return fingerprint.GPUParams{}, fingerprint.ErrUnavailable
	}

	return fingerprint.GPUParams{
		WebGL2:                 g.WebGL2,
		Vendor:                 g.Vendor,
		Renderer:               g.Renderer,
		VendorGL:               g.VendorGL,
		RendererGL:             g.RendererGL,
		Version:                g.Version,
		ShadingLanguageVersion: g.ShadingLanguageVersion,
		Antialiasing:           g.Antialiasing,
		Extensions:             slices.Clone(g.Extensions),
		MaxTextureSize:         g.MaxTextureSize,
		MaxViewportDims:        g.MaxViewportDims,
		MaxAnisotropy:          g.MaxAnisotropy,
		AliasedLineWidthRange:  g.AliasedLineWidthRange,
		AliasedPointSizeRange:  g.AliasedPointSizeRange,
	}, nil
}

func (h *Host) LocalFonts(ctx context.Context) ([]string, error) {
	if err := h.enter(ctx, "LocalFonts"); err != nil {
		return nil, err
	}
	if h.profile.Fonts == nil || len(h.profile.Fonts.Local) == 0 {
		return nil, fingerprint.ErrUnavailable
	}

	return slices.Clone(h.profile.Fonts.Local), nil
}

func (h *Host) Connection(ctx context.Context) (fingerprint.Connection, error) {
	if err := h.enter(ctx, "Connection"); err != nil {
		return fingerprint.Connection{}, err
	}

	c := h.profile.Connection
	if c == nil {
		return fingerprint.Connection{}, fingerprint.ErrUnavailable
	}

	return fingerprint.Connection{
		EffectiveType: c.EffectiveType,
		Type:          c.Type,
		Downlink:      c.Downlink,
		RTT:           c.RTT,
		SaveData:      c.SaveData,
	}, nil
}

func (h *Host) StorageEstimate(ctx context.Context) (fingerprint.StorageEstimate, error) {
	if err := h.enter(ctx, "StorageEstimate"); err != nil {
		return fingerprint.StorageEstimate{}, err
	}
	if h.profile.Storage == nil {
		return fingerprint.StorageEstimate{}, fingerprint.ErrUnavailable
	}

	return fingerprint.StorageEstimate{
		Usage: h.profile.Storage.Usage,
		Quota: h.profile.Storage.Quota,
	}, nil
}

func (h *Host) StoragePersisted(ctx context.Context) (bool, error) {
	if err := h.enter(ctx, "StoragePersisted"); err != nil {
		return false, err
	}
	if h.profile.Storage == nil {
		return false, fingerprint.ErrUnavailable
	}

	return h.profile.Storage.Persisted, nil
}

func (h *Host) Battery(ctx context.Context) (fingerprint.Battery, error) {
	if err := h.enter(ctx, "Battery"); err != nil {
		return fingerprint.Battery{}, err
	}

	b := h.profile.Battery
	if b == nil {
		return fingerprint.Battery{}, fingerprint.ErrUnavailable
	}

	return fingerprint.Battery{
		Charging:        b.Charging,
		ChargingTime:    unbounded(b.ChargingTime),
		DischargingTime: unbounded(b.DischargingTime),
		Level:           b.Level,
	}, nil
}

func unbounded(v float64) float64 {
	if v < 0 {
		return math.Inf(1)
	}

	return v
}

func (h *Host) CanPlayType(ctx context.Context, mime string) (bool, error) {
	if err := h.enter(ctx, "CanPlayType"); err != nil {
		return false, err
	}
	if h.profile.Playable == nil {
		return false, fingerprint.ErrUnavailable
	}

	return h.profile.Playable[mime], nil
}

func (h *Host) MediaDevices(ctx context.Context) ([]fingerprint.MediaDevice, error) {
	if err := h.enter(ctx, "MediaDevices"); err != nil {
		return nil, err
	}
	if h.profile.MediaDevices == nil {
		return nil, fingerprint.ErrUnavailable
	}

	devices := make([]fingerprint.MediaDevice, len(h.profile.MediaDevices))
	for i, kind := range h.profile.MediaDevices {
		devices[i] = fingerprint.MediaDevice{Kind: strings.ToLower(kind)}
	}

	return devices, nil
}

func (h *Host) QueryPermission(ctx context.Context, name string) (string, error) {
	if err := h.enter(ctx, "QueryPermission"); err != nil {
		return "", err
	}

	state, ok := h.profile.Permissions[name]
	if !ok {
		return "", fmt.Errorf("permission %q is not implemented", name)
	}

	return state, nil
}
