package fingerprint

import (
	"context"
	"slices"
)

var videoFormats = []string{
	`video/mp4; codecs="avc1.42E01E"`,
	`video/webm; codecs="vp9"`,
	`video/webm; codecs="vp8"`,
	`video/ogg; codecs="theora"`,
	`video/mp4; codecs="hev1"`,
	`video/mp4; codecs="av01"`,
}

var audioFormats = []string{
	`audio/mp4; codecs="mp4a.40.2"`,
	`audio/mpeg`,
	`audio/webm; codecs="vorbis"`,
	`audio/webm; codecs="opus"`,
	`audio/ogg; codecs="flac"`,
	`audio/wav; codecs="1"`,
}

// MediaInfo is the value recorded under [KeyMedia]. Devices holds a
// [DeviceCounts], an error object, or is omitted without a device API.
type MediaInfo struct {
	VideoTypes           []FormatSupport `json:"videoTypes"`
	AudioTypes           []FormatSupport `json:"audioTypes"`
	MediaDevices         bool            `json:"mediaDevices"`
	MediaCapabilitiesAPI bool            `json:"mediaCapabilitiesAPI,omitempty"`
	Devices              any             `json:"devices,omitempty"`
}

// FormatSupport is the playability of one MIME type. Supported is a bool,
// or "unknown" when the query could not be answered.
type FormatSupport struct {
	Format    string `json:"format"`
	Supported any    `json:"supported"`
}

// DeviceCounts counts enumerated media devices by kind.
type DeviceCounts struct {
	AudioInput  int `json:"audioInput"`
	AudioOutput int `json:"audioOutput"`
	VideoInput  int `json:"videoInput"`
}

func collectMedia(ctx context.Context, h Host, w *slotWriter) error {
	playable := func(formats []string) []FormatSupport {
		out := make([]FormatSupport, 0, len(formats))
		for _, f := range formats {
			fs := FormatSupport{Format: f, Supported: "unknown"}
			if ok, err := h.CanPlayType(ctx, f); err == nil {
				fs.Supported = ok
			}
			out = append(out, fs)
		}

		return out
	}

	info := MediaInfo{
		VideoTypes:           playable(videoFormats),
		AudioTypes:           playable(audioFormats),
		MediaDevices:         h.Has(CapMediaDevices),
		MediaCapabilitiesAPI: h.Has(CapMediaCapabilities),
	}

	if info.MediaDevices {
		devices, err := h.MediaDevices(ctx)
		switch {
		case isUnavailable(err):
		case err != nil:
			info.Devices = Failed(err)
		default:
			var counts DeviceCounts
			for _, d := range devices {
				switch d.Kind {
				case "audioinput":
					counts.AudioInput++
				case "audiooutput":
					counts.AudioOutput++
				case "videoinput":
					counts.VideoInput++
				}
			}
			info.Devices = counts
		}
	}

	w.Put(KeyMedia, info)

	return nil
}

var sensorCapabilities = []namedCapability{
	{"deviceMotion", CapDeviceMotion},
	{"deviceOrientation", CapDeviceOrientation},
	{"absoluteOrientation", CapAbsoluteOrientation},
	{"accelerometer", CapAccelerometer},
	{"gyroscope", CapGyroscope},
	{"magnetometer", CapMagnetometer},
	{"ambientLightSensor", CapAmbientLightSensor},
	{"geolocation", CapGeolocation},
	{"proximity", CapProximitySensor},
}

func collectSensors(ctx context.Context, h Host, w *slotWriter) error {
	sensors := make(map[string]any, len(sensorCapabilities)+1)
	for name, ok := range presence(h, sensorCapabilities) {
		sensors[name] = ok
	}

	if h.Has(CapPermissions) {
		state, err := h.QueryPermission(ctx, "accelerometer")
		if err != nil {
			state = "error"
		}
		sensors["accelerometerPermission"] = state
	}

	w.Put(KeySensors, sensors)

	return nil
}

var nonStandardNavigator = []namedCapability{
	{"buildID", CapNavigatorBuildID},
	{"credentials", CapNavigatorCredentials},
	{"keyboard", CapNavigatorKeyboard},
	{"activeVRDisplays", CapNavigatorActiveVRDisplays},
	{"standalone", CapNavigatorStandalone},
	{"wakeLock", CapNavigatorWakeLock},
	{"virtualKeyboard", CapNavigatorVirtualKeyboard},
	{"canShare", CapNavigatorCanShare},
}

func collectNavigatorProps(ctx context.Context, h Host, w *slotWriter) error {
	nav, err := h.Navigator(ctx)
	if err != nil {
		if isUnavailable(err) {
			w.Absent(KeyNavigatorProps, nil)
			return nil
		}

		return err
	}

	props := make(map[string]any, len(nav.Props)+2)
	for k, v := range nav.Props {
		if k == "plugins" || k == "mimeTypes" || !scalar(v) {
			continue
		}
		props[k] = v
	}
	if nav.UserActivation != nil {
		props["userActivation"] = *nav.UserActivation
	}
	props["nonStandardSupport"] = presence(h, nonStandardNavigator)

	w.Put(KeyNavigatorProps, props)

	return nil
}

func scalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

var permissionNames = []string{
	"geolocation",
	"notifications",
	"persistent-storage",
	"push",
	"screen-wake-lock",
	"clipboard-read",
	"clipboard-write",
	"microphone",
	"camera",
	"midi",
	"background-sync",
	"accelerometer",
	"gyroscope",
	"magnetometer",
	"ambient-light-sensor",
}

// PermissionsInfo is the value recorded under [KeyPermissions].
type PermissionsInfo struct {
	Supported bool              `json:"supported"`
	States    map[string]string `json:"states"`
}

func collectPermissions(ctx context.Context, h Host, w *slotWriter) error {
	if !h.Has(CapPermissions) {
		w.Absent(KeyPermissions, support{Supported: false})
		return nil
	}

	states := make(map[string]string, len(permissionNames))
	for _, name := range permissionNames {
		state, err := h.QueryPermission(ctx, name)
		if err != nil {
			state = "unsupported"
		}
		states[name] = state
	}

	w.Put(KeyPermissions, PermissionsInfo{Supported: true, States: states})

	return nil
}

// BehaviorInfo is the value recorded under [KeyBehavior].
type BehaviorInfo struct {
	Timestamp         string          `json:"timestamp"`
	TimeZone          string          `json:"timeZone"`
	Language          string          `json:"language"`
	Languages         []string        `json:"languages"`
	DoNotTrack        *string         `json:"doNotTrack"`
	ScreenOrientation string          `json:"screenOrientation"`
	TouchPoints       int             `json:"touchPoints"`
	Automation        map[string]bool `json:"automation"`
}

var automationTells = []namedCapability{
	{"webdriver", CapWebDriver},
	{"selenium", CapSelenium},
	{"documentAutomation", CapDocumentAutomation},
	{"domAutomation", CapDOMAutomation},
	{"external", CapSequentumExternal},
	{"phantom", CapPhantom},
	{"nightmareJS", CapNightmare},
	{"hasChrome", CapChromeObject},
	{"chromeWebstoreInstall", CapChromeWebstore},
}

func collectBehavior(ctx context.Context, h Host, w *slotWriter) error {
	nav, err := h.Navigator(ctx)
	if err != nil && !isUnavailable(err) {
		return err
	}

	info := BehaviorInfo{
		Timestamp:         h.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Language:          nav.Language,
		Languages:         slices.Clone(nav.Languages),
		ScreenOrientation: "unknown",
		Automation:        presence(h, automationTells),
	}
	if nav.DoNotTrack != "" {
		dnt := nav.DoNotTrack
		info.DoNotTrack = &dnt
	}

	if zone, err := h.TimeZone(ctx); err == nil && zone.Location != nil {
		info.TimeZone = zone.Location.String()
	} else {
		info.TimeZone = h.Now().Location().String()
	}

	if s, err := h.Screen(ctx); err == nil && s.Orientation != nil {
		info.ScreenOrientation = s.Orientation.Type
	}

	if h.Has(CapTouchEvents) {
		if hw, err := h.Hardware(ctx); err == nil {
			info.TouchPoints = hw.MaxTouchPoints
		}
	}

	w.Put(KeyBehavior, info)

	return nil
}
