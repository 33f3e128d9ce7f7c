package static

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slashdevops/fingerprint"
)

// Profile describes a simulated host. A nil section means the host lacks
// that capability entirely. Profiles are read from YAML; JSON documents
// parse as well.
type Profile struct {
	Navigator    *Navigator        `yaml:"navigator" json:"navigator"`
	HighEntropy  map[string]any    `yaml:"highEntropy" json:"highEntropy"`
	Screen       *Screen           `yaml:"screen" json:"screen"`
	Media        map[string]bool   `yaml:"media" json:"media"`
	Hardware     *Hardware         `yaml:"hardware" json:"hardware"`
	Capabilities []string          `yaml:"capabilities" json:"capabilities"`
	Now          time.Time         `yaml:"now" json:"now"`
	TimeZone     string            `yaml:"timeZone" json:"timeZone"`
	Locale       string            `yaml:"locale" json:"locale"`
	Performance  *Performance      `yaml:"performance" json:"performance"`
	Render       map[string]string `yaml:"render" json:"render"`
	GPU          *GPU              `yaml:"gpu" json:"gpu"`
	Fonts        *Fonts            `yaml:"fonts" json:"fonts"`
	Audio        *Audio            `yaml:"audio" json:"audio"`
	Connection   *Connection       `yaml:"connection" json:"connection"`
	Storage      *Storage          `yaml:"storage" json:"storage"`
	Battery      *Battery          `yaml:"battery" json:"battery"`
	Playable     map[string]bool   `yaml:"playable" json:"playable"`
	MediaDevices []string          `yaml:"mediaDevices" json:"mediaDevices"`
	Permissions  map[string]string `yaml:"permissions" json:"permissions"`
	Faults       map[string]Fault  `yaml:"faults" json:"faults"`
}

// Navigator is the navigator section of a profile.
type Navigator struct {
	UserAgent        string                      `yaml:"userAgent" json:"userAgent"`
	Platform         string                      `yaml:"platform" json:"platform"`
	CPUClass         string                      `yaml:"cpuClass" json:"cpuClass"`
	DoNotTrack       string                      `yaml:"doNotTrack" json:"doNotTrack"`
	Language         string                      `yaml:"language" json:"language"`
	Languages        []string                    `yaml:"languages" json:"languages"`
	OSCPU            string                      `yaml:"oscpu" json:"oscpu"`
	Vendor           string                      `yaml:"vendor" json:"vendor"`
	VendorSub        string                      `yaml:"vendorSub" json:"vendorSub"`
	ProductSub       string                      `yaml:"productSub" json:"productSub"`
	AppName          string                      `yaml:"appName" json:"appName"`
	AppVersion       string                      `yaml:"appVersion" json:"appVersion"`
	AppCodeName      string                      `yaml:"appCodeName" json:"appCodeName"`
	BuildID          string                      `yaml:"buildID" json:"buildID"`
	Product          string                      `yaml:"product" json:"product"`
	CookieEnabled    bool                        `yaml:"cookieEnabled" json:"cookieEnabled"`
	JavaEnabled      bool                        `yaml:"javaEnabled" json:"javaEnabled"`
	PDFViewerEnabled *bool                       `yaml:"pdfViewerEnabled" json:"pdfViewerEnabled"`
	Brands           []fingerprint.Brand         `yaml:"brands" json:"brands"`
	Mobile           bool                        `yaml:"mobile" json:"mobile"`
	Plugins          []fingerprint.Plugin        `yaml:"plugins" json:"plugins"`
	MimeTypes        []fingerprint.MimeType      `yaml:"mimeTypes" json:"mimeTypes"`
	Props            map[string]any              `yaml:"props" json:"props"`
	UserActivation   *fingerprint.UserActivation `yaml:"userActivation" json:"userActivation"`
}

// Screen is the display section of a profile.
type Screen struct {
	Width            int     `yaml:"width" json:"width"`
	Height           int     `yaml:"height" json:"height"`
	AvailWidth       int     `yaml:"availWidth" json:"availWidth"`
	AvailHeight      int     `yaml:"availHeight" json:"availHeight"`
	ColorDepth       int     `yaml:"colorDepth" json:"colorDepth"`
	PixelDepth       int     `yaml:"pixelDepth" json:"pixelDepth"`
	DevicePixelRatio float64 `yaml:"devicePixelRatio" json:"devicePixelRatio"`
	Orientation      string  `yaml:"orientation" json:"orientation"`
	OrientationAngle int     `yaml:"orientationAngle" json:"orientationAngle"`
	InnerWidth       int     `yaml:"innerWidth" json:"innerWidth"`
	InnerHeight      int     `yaml:"innerHeight" json:"innerHeight"`
	OuterWidth       int     `yaml:"outerWidth" json:"outerWidth"`
	OuterHeight      int     `yaml:"outerHeight" json:"outerHeight"`
}

// Hardware is the hardware section of a profile.
type Hardware struct {
	DeviceMemory        float64 `yaml:"deviceMemory" json:"deviceMemory"`
	HardwareConcurrency int     `yaml:"hardwareConcurrency" json:"hardwareConcurrency"`
	MaxTouchPoints      int     `yaml:"maxTouchPoints" json:"maxTouchPoints"`
}

// Performance is the performance counter section of a profile.
type Performance struct {
	NavigationStart float64 `yaml:"navigationStart" json:"navigationStart"`
	TimeOrigin      float64 `yaml:"timeOrigin" json:"timeOrigin"`
	Now             float64 `yaml:"now" json:"now"`
}

// GPU is the rendering context section of a profile.
type GPU struct {
	WebGL2                 bool       `yaml:"webgl2" json:"webgl2"`
	Vendor                 string     `yaml:"vendor" json:"vendor"`
	Renderer               string     `yaml:"renderer" json:"renderer"`
	VendorGL               string     `yaml:"vendorGl" json:"vendorGl"`
	RendererGL             string     `yaml:"rendererGl" json:"rendererGl"`
	Version                string     `yaml:"version" json:"version"`
	ShadingLanguageVersion string     `yaml:"shadingLanguageVersion" json:"shadingLanguageVersion"`
	Antialiasing           bool       `yaml:"antialiasing" json:"antialiasing"`
	Extensions             []string   `yaml:"extensions" json:"extensions"`
	MaxTextureSize         int        `yaml:"maxTextureSize" json:"maxTextureSize"`
	MaxViewportDims        [2]int     `yaml:"maxViewportDims" json:"maxViewportDims"`
	MaxAnisotropy          float64    `yaml:"maxAnisotropy" json:"maxAnisotropy"`
	AliasedLineWidthRange  [2]float64 `yaml:"aliasedLineWidthRange" json:"aliasedLineWidthRange"`
	AliasedPointSizeRange  [2]float64 `yaml:"aliasedPointSizeRange" json:"aliasedPointSizeRange"`
}

// Fonts is the font section of a profile. Installed families measure
// differently from the generic baselines; Local is what the font access API
// lists and is unavailable when empty.
type Fonts struct {
	Installed []string `yaml:"installed" json:"installed"`
	Local     []string `yaml:"local" json:"local"`
}

// Audio is the audio graph section of a profile.
type Audio struct {
	SampleRate      float64 `yaml:"sampleRate" json:"sampleRate"`
	MaxChannelCount int     `yaml:"maxChannelCount" json:"maxChannelCount"`
	Bins            []uint8 `yaml:"bins" json:"bins"`
}

// Connection is the network section of a profile.
type Connection struct {
	EffectiveType string  `yaml:"effectiveType" json:"effectiveType"`
	Type          string  `yaml:"type" json:"type"`
	Downlink      float64 `yaml:"downlink" json:"downlink"`
	RTT           float64 `yaml:"rtt" json:"rtt"`
	SaveData      bool    `yaml:"saveData" json:"saveData"`
}

// Storage is the storage manager section of a profile.
type Storage struct {
	Usage     uint64 `yaml:"usage" json:"usage"`
	Quota     uint64 `yaml:"quota" json:"quota"`
	Persisted bool   `yaml:"persisted" json:"persisted"`
}

// Battery is the battery section of a profile. Negative times read as
// unbounded.
type Battery struct {
	Charging        bool    `yaml:"charging" json:"charging"`
	ChargingTime    float64 `yaml:"chargingTime" json:"chargingTime"`
	DischargingTime float64 `yaml:"dischargingTime" json:"dischargingTime"`
	Level           float64 `yaml:"level" json:"level"`
}

// Fault makes one host method misbehave. Methods are named as on
// [fingerprint.Host], e.g. "Screen" or "OpenAudio".
type Fault struct {
	Error       string `yaml:"error" json:"error"`
	Panic       string `yaml:"panic" json:"panic"`
	Stall       bool   `yaml:"stall" json:"stall"`
	Unavailable bool   `yaml:"unavailable" json:"unavailable"`
}

// Load reads a profile from a YAML or JSON file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML or JSON profile document.
func Parse(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile: %w", err)
	}

	return p, nil
}

// Desktop returns a profile of a desktop Chromium browser on Linux with
// 8 logical cores, device memory class 8 and the en-US locale.
func Desktop() Profile {
	pdf := true

	return Profile{
		Navigator: &Navigator{
			UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			Platform:         "Linux x86_64",
			Language:         "en-US",
			Languages:        []string{"en-US", "en"},
			Vendor:           "Google Inc.",
			ProductSub:       "20030107",
			AppName:          "Netscape",
			AppVersion:       "5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
			AppCodeName:      "Mozilla",
			Product:          "Gecko",
			CookieEnabled:    true,
			PDFViewerEnabled: &pdf,
			Brands: []fingerprint.Brand{
				{Brand: "Chromium", Version: "126"},
				{Brand: "Not.A/Brand", Version: "24"},
			},
			Plugins: []fingerprint.Plugin{
				{Name: "PDF Viewer", Description: "Portable Document Format", Filename: "internal-pdf-viewer"},
				{Name: "Chrome PDF Viewer", Description: "Portable Document Format", Filename: "internal-pdf-viewer"},
			},
			MimeTypes: []fingerprint.MimeType{
				{Type: "application/pdf", Description: "Portable Document Format", Suffixes: "pdf", EnabledPlugin: "PDF Viewer"},
			},
			Props: map[string]any{
				"hardwareConcurrency": 8,
				"language":            "en-US",
				"onLine":              true,
				"webdriver":           false,
			},
			UserActivation: &fingerprint.UserActivation{},
		},
		HighEntropy: map[string]any{
			"architecture":    "x86",
			"bitness":         "64",
			"model":           "",
			"platformVersion": "6.5.0",
		},
		Screen: &Screen{
			Width:            1920,
			Height:           1080,
			AvailWidth:       1920,
			AvailHeight:      1050,
			ColorDepth:       24,
			PixelDepth:       24,
			DevicePixelRatio: 1,
			Orientation:      "landscape-primary",
			InnerWidth:       1280,
			InnerHeight:      720,
			OuterWidth:       1280,
			OuterHeight:      800,
		},
		Media: map[string]bool{
			"(prefers-color-scheme: light)": true,
			"(hover: hover)":                true,
			"(pointer: fine)":               true,
			"(color-gamut: srgb)":           true,
		},
		Hardware: &Hardware{DeviceMemory: 8, HardwareConcurrency: 8},
		Capabilities: []string{
			"webSocket", "webWorkers", "webAssembly", "sharedWorkers", "serviceWorkers",
			"webRTC", "rtcPeerConnection", "rtcDataChannel", "rtcSessionDescription",
			"webAuthn", "speechSynthesis", "clipboardReadText", "clipboardWriteText",
			"clipboardRead", "clipboardWrite", "indexedDB", "domStorage", "localStorage",
			"sessionStorage", "cacheAPI", "permissions", "mediaDevices", "mediaCapabilities",
			"webGPU", "webCodecs", "offscreenCanvas", "webAnimation", "webLocks",
			"geolocation", "deviceMotion", "deviceOrientation", "chrome",
			"navigator.credentials", "navigator.keyboard", "navigator.wakeLock",
		},
		TimeZone:    "America/New_York",
		Locale:      "en-US",
		Performance: &Performance{TimeOrigin: 1718000000000, Now: 412.5},
		Render: map[string]string{
			"standard":     "a1b2",
			"text":         "a1b2",
			"webgl":        "a1b2",
			"uniqueValues": "a1b2",
		},
		GPU: &GPU{
			WebGL2:                 true,
			Vendor:                 "Google Inc. (Intel)",
			Renderer:               "ANGLE (Intel, Mesa Intel(R) UHD Graphics 620, OpenGL 4.6)",
			VendorGL:               "WebKit",
			RendererGL:             "WebKit WebGL",
			Version:                "WebGL 1.0 (OpenGL ES 2.0 Chromium)",
			ShadingLanguageVersion: "WebGL GLSL ES 1.0 (OpenGL ES GLSL ES 1.0 Chromium)",
			Antialiasing:           true,
			Extensions:             []string{"ANGLE_instanced_arrays", "EXT_blend_minmax", "OES_texture_float", "WEBGL_debug_renderer_info"},
			MaxTextureSize:         16384,
			MaxViewportDims:        [2]int{32767, 32767},
			MaxAnisotropy:          16,
			AliasedLineWidthRange:  [2]float64{1, 1},
			AliasedPointSizeRange:  [2]float64{1, 1024},
		},
		Fonts: &Fonts{Installed: []string{"Arial", "Courier New", "Times New Roman", "Verdana"}},
		Audio: &Audio{
			SampleRate:      48000,
			MaxChannelCount: 2,
			Bins:            []uint8{0, 0, 12, 48, 96, 140, 96, 48, 12, 0},
		},
		Connection: &Connection{EffectiveType: "4g", Downlink: 10, RTT: 50},
		Storage:    &Storage{Usage: 1024, Quota: 1 << 30},
		Playable: map[string]bool{
			`video/mp4; codecs="avc1.42E01E"`: true,
			`video/webm; codecs="vp9"`:        true,
			`video/webm; codecs="vp8"`:        true,
			`audio/mpeg`:                      true,
			`audio/webm; codecs="opus"`:       true,
		},
		MediaDevices: []string{"audioinput", "audiooutput", "videoinput"},
		Permissions: map[string]string{
			"geolocation":   "prompt",
			"notifications": "prompt",
			"camera":        "prompt",
			"microphone":    "prompt",
			"accelerometer": "granted",
		},
	}
}
