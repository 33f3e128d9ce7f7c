package fingerprint

import (
	"context"
	"time"
)

// Host is the environment surface probes read from. Implementations are
// allowed to be partial: a method returns [ErrUnavailable] (optionally
// wrapped) when the host lacks that capability, and probes record the
// absence as a sentinel instead of a failure.
//
// Probes call a Host from several goroutines at once, so implementations
// must be safe for concurrent use.
type Host interface {
	// Navigator returns identity strings and navigator-level properties.
	Navigator(ctx context.Context) (Navigator, error)
	// HighEntropyValues resolves user-agent client hints on request.
	HighEntropyValues(ctx context.Context, hints []string) (map[string]any, error)
	// Screen returns display and viewport geometry.
	Screen(ctx context.Context) (Screen, error)
	// MatchMedia evaluates one media query.
	MatchMedia(ctx context.Context, query string) (bool, error)
	// Hardware returns hardware descriptors.
	Hardware(ctx context.Context) (Hardware, error)
	// Has reports whether a presence-only capability exists on the host.
	Has(c Capability) bool
	// Now returns the host's wall clock.
	Now() time.Time
	// TimeZone returns the host's zone and resolved locale.
	TimeZone(ctx context.Context) (Zone, error)
	// Performance returns the live performance counters.
	Performance(ctx context.Context) (PerformanceTiming, error)
	// Render draws the fixed scene for kind and returns its encoded output.
	Render(ctx context.Context, kind RenderKind) (string, error)
	// GPU acquires a rendering context and reads its capability limits.
	GPU(ctx context.Context) (GPUParams, error)
	// OpenTextMeasurer creates a hidden measurement element. The caller
	// must Close it.
	OpenTextMeasurer(ctx context.Context) (TextMeasurer, error)
	// LocalFonts lists font families through the host's font access API.
	LocalFonts(ctx context.Context) ([]string, error)
	// OpenAudio builds a muted tone-processing graph. The caller must Close it.
	OpenAudio(ctx context.Context) (AudioGraph, error)
	// Connection returns live network connection estimates.
	Connection(ctx context.Context) (Connection, error)
	// StorageEstimate returns the storage quota estimate.
	StorageEstimate(ctx context.Context) (StorageEstimate, error)
	// StoragePersisted reports whether storage is persistent.
	StoragePersisted(ctx context.Context) (bool, error)
	// Battery returns the live battery state.
	Battery(ctx context.Context) (Battery, error)
	// CanPlayType reports whether a media MIME type is playable.
	CanPlayType(ctx context.Context, mime string) (bool, error)
	// MediaDevices enumerates media input and output devices.
	MediaDevices(ctx context.Context) ([]MediaDevice, error)
	// QueryPermission returns the state of a named permission.
	QueryPermission(ctx context.Context, name string) (string, error)
}

// TextMeasurer measures the rendered box of a fixed test string for a CSS
// font-family list.
type TextMeasurer interface {
	Measure(ctx context.Context, family string) (Box, error)
	Close() error
}

// AudioGraph is a live tone-processing chain.
type AudioGraph interface {
	Destination() AudioDestination
	// FrequencyData returns the first bins values of the byte frequency
	// spectrum.
	FrequencyData(ctx context.Context, bins int) ([]uint8, error)
	Close() error
}

// RenderKind selects one of the deterministic drawing scenes.
type RenderKind int

const (
	// RenderStandard draws a gradient, text and an arc on a 200x50 surface.
	RenderStandard RenderKind = iota
	// RenderText draws a glyph-rich string in a fixed list of fonts.
	RenderText
	// RenderWebGL draws a single shaded triangle through the GPU pipeline.
	RenderWebGL
	// RenderUniqueValues blends low-alpha pixels to expose sub-pixel rounding.
	RenderUniqueValues
)

var renderKindNames = [...]string{"standard", "text", "webgl", "uniqueValues"}

// String returns the name used for kind in the record.
func (k RenderKind) String() string {
	if k < 0 || int(k) >= len(renderKindNames) {
		return "unknown"
	}

	return renderKindNames[k]
}

// Navigator holds identity strings. Empty strings mean the host did not
// expose the property.
type Navigator struct {
	UserAgent   string
	Platform    string
	CPUClass    string
	DoNotTrack  string
	Language    string
	Languages   []string
	OSCPU       string
	Vendor      string
	VendorSub   string
	ProductSub  string
	AppName     string
	AppVersion  string
	AppCodeName string
	BuildID     string
	Product     string

	CookieEnabled bool
	JavaEnabled   bool
	// PDFViewerEnabled is nil when the host does not report it.
	PDFViewerEnabled *bool

	// UserAgentData is nil when the host has no client hints API.
	UserAgentData *UserAgentHints

	Plugins   []Plugin
	MimeTypes []MimeType

	// Props holds the scalar own properties of the navigator object.
	Props map[string]any
	// UserActivation is nil when the host does not track activation.
	UserActivation *UserActivation
}

// UserAgentHints is the low-entropy part of user-agent client hints.
type UserAgentHints struct {
	Brands []Brand
	Mobile bool
	// HighEntropy reports whether HighEntropyValues can be requested.
	HighEntropy bool
}

// Brand is one entry of the client hints brand list.
type Brand struct {
	Brand   string `json:"brand" yaml:"brand"`
	Version string `json:"version" yaml:"version"`
}

// Plugin describes an installed browser plugin.
type Plugin struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Filename    string     `json:"filename" yaml:"filename"`
	Version     string     `json:"version,omitempty" yaml:"version"`
	MimeTypes   []MimeType `json:"mimeTypes" yaml:"mimeTypes"`
}

// MimeType describes a MIME type registered with the browser.
type MimeType struct {
	Type          string `json:"type" yaml:"type"`
	Description   string `json:"description" yaml:"description"`
	Suffixes      string `json:"suffixes" yaml:"suffixes"`
	EnabledPlugin string `json:"enabledPlugin,omitempty" yaml:"enabledPlugin"`
}

// UserActivation mirrors the transient user activation state.
type UserActivation struct {
	HasBeenActive bool `json:"hasBeenActive"`
	IsActive      bool `json:"isActive"`
}

// Screen holds display geometry. Inner and outer sizes describe the live
// viewport and change with window resizes.
type Screen struct {
	Width            int
	Height           int
	AvailWidth       int
	AvailHeight      int
	ColorDepth       int
	PixelDepth       int
	DevicePixelRatio float64
	// Orientation is nil when the host has no orientation API.
	Orientation *Orientation
	InnerWidth  int
	InnerHeight int
	OuterWidth  int
	OuterHeight int
}

// Orientation describes the current screen orientation.
type Orientation struct {
	Type  string `json:"type"`
	Angle int    `json:"angle"`
}

// Hardware holds hardware descriptors. Zero DeviceMemory or
// HardwareConcurrency means the host did not expose the value.
type Hardware struct {
	DeviceMemory        float64
	HardwareConcurrency int
	MaxTouchPoints      int
}

// Zone is the host's time zone and resolved locale.
type Zone struct {
	Location *time.Location
	Locale   string
}

// PerformanceTiming holds live performance counters in milliseconds.
type PerformanceTiming struct {
	NavigationStart float64
	TimeOrigin      float64
	Now             float64
}

// GPUParams is the raw capability record of a GPU rendering context.
// Vendor and Renderer are the unmasked values and are empty when the debug
// extension is missing; MaxAnisotropy is zero when anisotropic filtering is
// unsupported.
type GPUParams struct {
	WebGL2                       bool
	Vendor                       string
	Renderer                     string
	VendorGL                     string
	RendererGL                   string
	Version                      string
	ShadingLanguageVersion       string
	Antialiasing                 bool
	Extensions                   []string
	MaxTextureSize               int
	MaxCubeMapTextureSize        int
	MaxRenderbufferSize          int
	MaxViewportDims              [2]int
	AliasedLineWidthRange        [2]float64
	AliasedPointSizeRange        [2]float64
	MaxAnisotropy                float64
	MaxTextureImageUnits         int
	MaxVertexTextureImageUnits   int
	MaxCombinedTextureImageUnits int
	MaxFragmentUniformVectors    int
	MaxVertexUniformVectors      int
	MaxVertexAttribs             int
	MaxVaryingVectors            int
	// Precision is indexed by shader (VERTEX, FRAGMENT), then format
	// (FLOAT, INT), then precision (HIGH, MEDIUM, LOW).
	Precision map[string]map[string]map[string]PrecisionFormat
}

// PrecisionFormat is the range and precision of one shader numeric type.
type PrecisionFormat struct {
	RangeMin  int `json:"rangeMin" yaml:"rangeMin"`
	RangeMax  int `json:"rangeMax" yaml:"rangeMax"`
	Precision int `json:"precision" yaml:"precision"`
}

// Box is a rendered element's size in CSS pixels.
type Box struct {
	Width  float64
	Height float64
}

// AudioDestination describes the audio graph's output node.
type AudioDestination struct {
	SampleRate            float64 `json:"sampleRate"`
	State                 string  `json:"state"`
	MaxChannelCount       int     `json:"maxChannelCount"`
	NumberOfInputs        int     `json:"numberOfInputs"`
	NumberOfOutputs       int     `json:"numberOfOutputs"`
	ChannelCount          int     `json:"channelCount"`
	ChannelCountMode      string  `json:"channelCountMode"`
	ChannelInterpretation string  `json:"channelInterpretation"`
}

// Connection holds live network connection estimates.
type Connection struct {
	EffectiveType string
	Type          string
	Downlink      float64
	DownlinkMax   float64
	RTT           float64
	SaveData      bool
}

// StorageEstimate is the storage usage and quota in bytes.
type StorageEstimate struct {
	Usage uint64
	Quota uint64
}

// Battery is the live battery state. Charging times may be +Inf.
type Battery struct {
	Charging        bool
	ChargingTime    float64
	DischargingTime float64
	Level           float64
}

// MediaDevice is one enumerated media device.
type MediaDevice struct {
	Kind string
}

// UnsupportedHost answers every [Host] method as unavailable. Embed it in an
// adapter to implement only the capabilities that adapter supports.
type UnsupportedHost struct{}

var _ Host = UnsupportedHost{}

func (UnsupportedHost) Navigator(context.Context) (Navigator, error) {
	return Navigator{}, ErrUnavailable
}

func (UnsupportedHost) HighEntropyValues(context.Context, []string) (map[string]any, error) {
	return nil, ErrUnavailable
}

func (UnsupportedHost) Screen(context.Context) (Screen, error) {
	return Screen{}, ErrUnavailable
}

func (UnsupportedHost) MatchMedia(context.Context, string) (bool, error) {
	return false, ErrUnavailable
}

func (UnsupportedHost) Hardware(context.Context) (Hardware, error) {
	return Hardware{}, ErrUnavailable
}

func (UnsupportedHost) Has(Capability) bool {
	return false
}

func (UnsupportedHost) Now() time.Time {
	return time.Now()
}

func (UnsupportedHost) TimeZone(context.Context) (Zone, error) {
	return Zone{}, ErrUnavailable
}

func (UnsupportedHost) Performance(context.Context) (PerformanceTiming, error) {
	return PerformanceTiming{}, ErrUnavailable
}

func (UnsupportedHost) Render(context.Context, RenderKind) (string, error) {
	return "", ErrUnavailable
}

func (UnsupportedHost) GPU(context.Context) (GPUParams, error) {
	return GPUParams{}, ErrUnavailable
}

func (UnsupportedHost) OpenTextMeasurer(context.Context) (TextMeasurer, error) {
	return nil, ErrUnavailable
}

func (UnsupportedHost) LocalFonts(context.Context) ([]string, error) {
	return nil, ErrUnavailable
}

func (UnsupportedHost) OpenAudio(context.Context) (AudioGraph, error) {
	return nil, ErrUnavailable
}

func (UnsupportedHost) Connection(context.Context) (Connection, error) {
	return Connection{}, ErrUnavailable
}

func (UnsupportedHost) StorageEstimate(context.Context) (StorageEstimate, error) {
	return StorageEstimate{}, ErrUnavailable
}

func (UnsupportedHost) StoragePersisted(context.Context) (bool, error) {
	return false, ErrUnavailable
}

func (UnsupportedHost) Battery(context.Context) (Battery, error) {
	return Battery{}, ErrUnavailable
}

func (UnsupportedHost) CanPlayType(context.Context, string) (bool, error) {
	return false, ErrUnavailable
}

func (UnsupportedHost) MediaDevices(context.Context) ([]MediaDevice, error) {
	return nil, ErrUnavailable
}

func (UnsupportedHost) QueryPermission(context.Context, string) (string, error) {
	return "", ErrUnavailable
}
