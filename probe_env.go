package fingerprint

import (
	"context"
	"math"
	"slices"
)

// TimeInfo is the value recorded under [KeyTime]. TimezoneOffset follows the
// UTC-minus-local convention, so zones east of UTC are negative.
type TimeInfo struct {
	TimezoneOffset    int            `json:"timezoneOffset"`
	Timezone          string         `json:"timezone"`
	LocaleDateTime    string         `json:"localeDateTime"`
	ResolvedLocale    any            `json:"resolvedLocale"`
	DateTimeFormat    DateTimeFormat `json:"dateTimeFormat"`
	PerformanceTiming any            `json:"performanceTiming,omitempty"`
}

// DateTimeFormat holds the full date and time renderings of the collection instant.
type DateTimeFormat struct {
	DateStyle string `json:"dateStyle"`
	TimeStyle string `json:"timeStyle"`
}

// PerformanceInfo is the performance counter snapshot inside [TimeInfo].
type PerformanceInfo struct {
	NavigationStart any     `json:"navigationStart"`
	TimeOrigin      any     `json:"timeOrigin"`
	Now             float64 `json:"now"`
}

func collectTime(ctx context.Context, h Host, w *slotWriter) error {
	now := h.Now()

	zone, err := h.TimeZone(ctx)
	if err != nil && !isUnavailable(err) {
		return err
	}

	loc := zone.Location
	if loc == nil {
		loc = now.Location()
	}
	local := now.In(loc)
	_, offset := local.Zone()

	info := TimeInfo{
		TimezoneOffset: -offset / 60,
		Timezone:       loc.String(),
		LocaleDateTime: local.Format("1/2/2006, 3:04:05 PM"),
		ResolvedLocale: orUnavailable(zone.Locale),
		DateTimeFormat: DateTimeFormat{
			DateStyle: local.Format("Monday, January 2, 2006"),
			TimeStyle: local.Format("3:04:05 PM MST"),
		},
	}

	perf, err := h.Performance(ctx)
	switch {
	case isUnavailable(err):
	case err != nil:
		info.PerformanceTiming = Failed(err)
	default:
		info.PerformanceTiming = PerformanceInfo{
			NavigationStart: orUnavailable(perf.NavigationStart),
			TimeOrigin:      orUnavailable(perf.TimeOrigin),
			Now:             perf.Now,
		}
	}

	w.Put(KeyTime, info)

	return nil
}

// BrowserInfo is the value recorded under [KeyBrowser]. Plugins and
// MimeTypes hold a list or the unavailable sentinel.
type BrowserInfo struct {
	Plugins                  any             `json:"plugins"`
	MimeTypes                any             `json:"mimeTypes"`
	PDFViewerEnabled         bool            `json:"pdfViewerEnabled"`
	TouchSupport             TouchSupport    `json:"touchSupport"`
	JavaEnabled              bool            `json:"javaEnabled"`
	MathMLEnabled            bool            `json:"mathMLEnabled"`
	WebSocketEnabled         bool            `json:"webSocketEnabled"`
	WebWorkersEnabled        bool            `json:"webWorkersEnabled"`
	WebAssemblyEnabled       bool            `json:"webAssemblyEnabled"`
	SharedWorkersEnabled     bool            `json:"sharedWorkersEnabled"`
	ServiceWorkersEnabled    bool            `json:"serviceWorkersEnabled"`
	WebRTCEnabled            bool            `json:"webRTCEnabled"`
	WebAuthnEnabled          bool            `json:"webAuthnEnabled"`
	SpeechSynthesisEnabled   bool            `json:"speechSynthesisEnabled"`
	SpeechRecognitionEnabled bool            `json:"speechRecognitionEnabled"`
	Clipboard                map[string]bool `json:"clipboard"`
	IndexedDB                bool            `json:"indexedDB"`
	WebSQL                   bool            `json:"webSQL"`
	DOMStorage               bool            `json:"DOMStorage"`
	CookiesEnabled           bool            `json:"cookiesEnabled"`
	ColorManagementEnabled   bool            `json:"colorManagementEnabled"`
	ModernFeatures           map[string]bool `json:"modernFeatures"`
}

// TouchSupport summarizes touch input.
type TouchSupport struct {
	MaxTouchPoints int  `json:"maxTouchPoints"`
	TouchEvent     bool `json:"touchEvent"`
	TouchPoints    int  `json:"touchPoints"`
}

var clipboardCapabilities = []namedCapability{
	{"readTextEnabled", CapClipboardReadText},
	{"writeTextEnabled", CapClipboardWriteText},
	{"readEnabled", CapClipboardRead},
	{"writeEnabled", CapClipboardWrite},
}

var modernFeatures = []namedCapability{
	{"webGPU", CapWebGPU},
	{"webTransport", CapWebTransport},
	{"webCodecs", CapWebCodecs},
	{"webHID", CapHID},
	{"webUSB", CapUSB},
	{"webMIDI", CapWebMIDI},
	{"webBluetooth", CapBluetooth},
	{"webNFC", CapWebNFC},
	{"webSerial", CapSerial},
	{"offscreenCanvas", CapOffscreenCanvas},
	{"webAnimation", CapWebAnimation},
	{"webShare", CapWebShare},
	{"payments", CapPayments},
	{"credentialManagement", CapCredentialManagement},
	{"webVR", CapWebVR},
	{"webXR", CapXR},
	{"sharedArrayBuffer", CapSharedArrayBuffer},
	{"backgroundSync", CapBackgroundSync},
	{"periodicSync", CapPeriodicSync},
	{"webLocks", CapWebLocks},
	{"idle", CapIdleDetection},
	{"contentIndex", CapContentIndex},
	{"layoutInstability", CapLayoutInstability},
	{"eyeDropper", CapEyeDropper},
	{"fileSystem", CapFileSystemAccess},
}

func collectBrowser(ctx context.Context, h Host, w *slotWriter) error {
	nav, err := h.Navigator(ctx)
	if err != nil && !isUnavailable(err) {
		return err
	}

	hw, err := h.Hardware(ctx)
	if err != nil && !isUnavailable(err) {
		return err
	}

	touch := TouchSupport{
		MaxTouchPoints: hw.MaxTouchPoints,
		TouchEvent:     h.Has(CapTouchEvents),
	}
	if touch.TouchEvent {
		touch.TouchPoints = hw.MaxTouchPoints
	}

	info := BrowserInfo{
		Plugins:                  Unavailable,
		MimeTypes:                Unavailable,
		PDFViewerEnabled:         pdfViewer(nav),
		TouchSupport:             touch,
		JavaEnabled:              nav.JavaEnabled,
		MathMLEnabled:            h.Has(CapMathML),
		WebSocketEnabled:         h.Has(CapWebSocket),
		WebWorkersEnabled:        h.Has(CapWebWorkers),
		WebAssemblyEnabled:       h.Has(CapWebAssembly),
		SharedWorkersEnabled:     h.Has(CapSharedWorkers),
		ServiceWorkersEnabled:    h.Has(CapServiceWorkers),
		WebRTCEnabled:            h.Has(CapWebRTC),
		WebAuthnEnabled:          h.Has(CapWebAuthn),
		SpeechSynthesisEnabled:   h.Has(CapSpeechSynthesis),
		SpeechRecognitionEnabled: h.Has(CapSpeechRecognition),
		Clipboard:                presence(h, clipboardCapabilities),
		IndexedDB:                h.Has(CapIndexedDB),
		WebSQL:                   h.Has(CapWebSQL),
		DOMStorage:               h.Has(CapDOMStorage),
		CookiesEnabled:           nav.CookieEnabled,
		ColorManagementEnabled:   h.Has(CapColorGamutP3),
		ModernFeatures:           presence(h, modernFeatures),
	}
	if len(nav.Plugins) > 0 {
		info.Plugins = slices.Clone(nav.Plugins)
	}
	if len(nav.MimeTypes) > 0 {
		info.MimeTypes = slices.Clone(nav.MimeTypes)
	}

	w.Put(KeyBrowser, info)

	return nil
}

func pdfViewer(nav Navigator) bool {
	if nav.PDFViewerEnabled != nil {
		return *nav.PDFViewerEnabled
	}

	return slices.ContainsFunc(nav.MimeTypes, func(m MimeType) bool {
		return m.Type == "application/pdf"
	})
}

// NetworkInfo is the value recorded under [KeyNetwork]. Connection is nil
// when the host has no connection API.
type NetworkInfo struct {
	Connection    any             `json:"connection,omitempty"`
	WebRTCSupport map[string]bool `json:"webrtcSupport"`
}

// ConnectionInfo is the live connection estimate inside [NetworkInfo].
type ConnectionInfo struct {
	EffectiveType string  `json:"effectiveType,omitempty"`
	Type          string  `json:"type,omitempty"`
	Downlink      float64 `json:"downlink"`
	DownlinkMax   float64 `json:"downlinkMax,omitempty"`
	RTT           float64 `json:"rtt"`
	SaveData      bool    `json:"saveData"`
}

var webRTCCapabilities = []namedCapability{
	{"RTCPeerConnection", CapRTCPeerConnection},
	{"RTCDataChannel", CapRTCDataChannel},
	{"RTCSessionDescription", CapRTCSessionDescription},
}

func collectNetwork(ctx context.Context, h Host, w *slotWriter) error {
	info := NetworkInfo{WebRTCSupport: presence(h, webRTCCapabilities)}

	conn, err := h.Connection(ctx)
	switch {
	case isUnavailable(err):
	case err != nil:
		info.Connection = Failed(err)
	default:
		info.Connection = ConnectionInfo{
			EffectiveType: conn.EffectiveType,
			Type:          conn.Type,
			Downlink:      conn.Downlink,
			DownlinkMax:   finiteOrZero(conn.DownlinkMax),
			RTT:           conn.RTT,
			SaveData:      conn.SaveData,
		}
	}

	w.Put(KeyNetwork, info)

	return nil
}

// StorageInfo is the value recorded under [KeyStorage]. Quota and
// Persistence are omitted when the host has no storage manager, and hold an
// error object when their query fails.
type StorageInfo struct {
	LocalStorage   bool `json:"localStorage"`
	SessionStorage bool `json:"sessionStorage"`
	IndexedDB      bool `json:"indexedDB"`
	CookiesEnabled bool `json:"cookiesEnabled"`
	Quota          any  `json:"quota,omitempty"`
	Persistence    any  `json:"persistence,omitempty"`
	CacheAPI       bool `json:"cacheAPI,omitempty"`
}

// QuotaInfo is the storage estimate inside [StorageInfo].
type QuotaInfo struct {
	Usage           uint64 `json:"usage"`
	Quota           uint64 `json:"quota"`
	UsagePercentage int    `json:"usagePercentage"`
}

type persistence struct {
	Persisted bool `json:"persisted"`
}

func collectStorage(ctx context.Context, h Host, w *slotWriter) error {
	nav, err := h.Navigator(ctx)
	if err != nil && !isUnavailable(err) {
		return err
	}

	info := StorageInfo{
		LocalStorage:   h.Has(CapLocalStorage),
		SessionStorage: h.Has(CapSessionStorage),
		IndexedDB:      h.Has(CapIndexedDB),
		CookiesEnabled: nav.CookieEnabled,
		CacheAPI:       h.Has(CapCacheAPI),
	}

	est, err := h.StorageEstimate(ctx)
	switch {
	case isUnavailable(err):
	case err != nil:
		info.Quota = Failed(err)
	default:
		q := QuotaInfo{Usage: est.Usage, Quota: est.Quota}
		if est.Quota > 0 {
			q.UsagePercentage = int(math.Round(float64(est.Usage) / float64(est.Quota) * 100))
		}
		info.Quota = q
	}

	persisted, err := h.StoragePersisted(ctx)
	switch {
	case isUnavailable(err):
	case err != nil:
		info.Persistence = Failed(err)
	default:
		info.Persistence = persistence{Persisted: persisted}
	}

	w.Put(KeyStorage, info)

	return nil
}

// BatteryInfo is the value recorded under [KeyBattery]. Charging times are
// null when the host reports them as unbounded.
type BatteryInfo struct {
	Charging        bool     `json:"charging"`
	ChargingTime    *float64 `json:"chargingTime"`
	DischargingTime *float64 `json:"dischargingTime"`
	Level           float64  `json:"level"`
}

func collectBattery(ctx context.Context, h Host, w *slotWriter) error {
	b, err := h.Battery(ctx)
	if err != nil {
		if isUnavailable(err) {
			w.Absent(KeyBattery, availability{Available: false})
			return nil
		}

		return err
	}

	w.Put(KeyBattery, BatteryInfo{
		Charging:        b.Charging,
		ChargingTime:    finite(b.ChargingTime),
		DischargingTime: finite(b.DischargingTime),
		Level:           b.Level,
	})

	return nil
}

// finite returns nil for values JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}

	return &v
}

func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}

	return v
}
