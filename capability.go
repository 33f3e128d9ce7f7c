package fingerprint

import "strings"

// Capability names one presence-only host feature. The set is closed: a
// [Host] answers [Host.Has] for these values only, and values outside the
// set are reported absent.
type Capability int

// Hardware-adjacent interfaces.
const (
	CapBluetooth Capability = iota
	CapUSB
	CapSerial
	CapNFC
	CapHID
	CapGamepads
	CapXR

	// Browser platform features.
	CapWebSocket
	CapWebWorkers
	CapWebAssembly
	CapSharedWorkers
	CapServiceWorkers
	CapWebRTC
	CapWebAuthn
	CapSpeechSynthesis
	CapSpeechRecognition
	CapClipboardReadText
	CapClipboardWriteText
	CapClipboardRead
	CapClipboardWrite
	CapIndexedDB
	CapWebSQL
	CapDOMStorage
	CapMathML
	CapTouchEvents
	CapColorGamutP3

	// Modern APIs.
	CapWebGPU
	CapWebTransport
	CapWebCodecs
	CapWebMIDI
	CapWebNFC
	CapOffscreenCanvas
	CapWebAnimation
	CapWebShare
	CapPayments
	CapCredentialManagement
	CapWebVR
	CapSharedArrayBuffer
	CapBackgroundSync
	CapPeriodicSync
	CapWebLocks
	CapIdleDetection
	CapContentIndex
	CapLayoutInstability
	CapEyeDropper
	CapFileSystemAccess

	// Storage.
	CapLocalStorage
	CapSessionStorage
	CapCacheAPI

	// WebRTC building blocks.
	CapRTCPeerConnection
	CapRTCDataChannel
	CapRTCSessionDescription

	// Sensors.
	CapDeviceMotion
	CapDeviceOrientation
	CapAbsoluteOrientation
	CapAccelerometer
	CapGyroscope
	CapMagnetometer
	CapAmbientLightSensor
	CapGeolocation
	CapProximitySensor

	// Media and permissions.
	CapMediaDevices
	CapMediaCapabilities
	CapPermissions

	// Non-standard navigator members.
	CapNavigatorBuildID
	CapNavigatorCredentials
	CapNavigatorKeyboard
	CapNavigatorActiveVRDisplays
	CapNavigatorStandalone
	CapNavigatorWakeLock
	CapNavigatorVirtualKeyboard
	CapNavigatorCanShare

	// Automation tells.
	CapWebDriver
	CapSelenium
	CapDocumentAutomation
	CapDOMAutomation
	CapSequentumExternal
	CapPhantom
	CapNightmare
	CapChromeObject
	CapChromeWebstore

	capabilityCount
)

var capabilityNames = [capabilityCount]string{
	CapBluetooth:                 "bluetooth",
	CapUSB:                       "usb",
	CapSerial:                    "serial",
	CapNFC:                       "nfc",
	CapHID:                       "hid",
	CapGamepads:                  "gamepads",
	CapXR:                        "xr",
	CapWebSocket:                 "webSocket",
	CapWebWorkers:                "webWorkers",
	CapWebAssembly:               "webAssembly",
	CapSharedWorkers:             "sharedWorkers",
	CapServiceWorkers:            "serviceWorkers",
	CapWebRTC:                    "webRTC",
	CapWebAuthn:                  "webAuthn",
	CapSpeechSynthesis:           "speechSynthesis",
	CapSpeechRecognition:         "speechRecognition",
	CapClipboardReadText:         "clipboardReadText",
	CapClipboardWriteText:        "clipboardWriteText",
	CapClipboardRead:             "clipboardRead",
	CapClipboardWrite:            "clipboardWrite",
	CapIndexedDB:                 "indexedDB",
	CapWebSQL:                    "webSQL",
	CapDOMStorage:                "domStorage",
	CapMathML:                    "mathML",
	CapTouchEvents:               "touchEvents",
	CapColorGamutP3:              "colorGamutP3",
	CapWebGPU:                    "webGPU",
	CapWebTransport:              "webTransport",
	CapWebCodecs:                 "webCodecs",
	CapWebMIDI:                   "webMIDI",
	CapWebNFC:                    "webNFC",
	CapOffscreenCanvas:           "offscreenCanvas",
	CapWebAnimation:              "webAnimation",
	CapWebShare:                  "webShare",
	CapPayments:                  "payments",
	CapCredentialManagement:      "credentialManagement",
	CapWebVR:                     "webVR",
	CapSharedArrayBuffer:         "sharedArrayBuffer",
	CapBackgroundSync:            "backgroundSync",
	CapPeriodicSync:              "periodicSync",
	CapWebLocks:                  "webLocks",
	CapIdleDetection:             "idle",
	CapContentIndex:              "contentIndex",
	CapLayoutInstability:         "layoutInstability",
	CapEyeDropper:                "eyeDropper",
	CapFileSystemAccess:          "fileSystem",
	CapLocalStorage:              "localStorage",
	CapSessionStorage:            "sessionStorage",
	CapCacheAPI:                  "cacheAPI",
	CapRTCPeerConnection:         "rtcPeerConnection",
	CapRTCDataChannel:            "rtcDataChannel",
	CapRTCSessionDescription:     "rtcSessionDescription",
	CapDeviceMotion:              "deviceMotion",
	CapDeviceOrientation:         "deviceOrientation",
	CapAbsoluteOrientation:       "absoluteOrientation",
	CapAccelerometer:             "accelerometer",
	CapGyroscope:                 "gyroscope",
	CapMagnetometer:              "magnetometer",
	CapAmbientLightSensor:        "ambientLightSensor",
	CapGeolocation:               "geolocation",
	CapProximitySensor:           "proximity",
	CapMediaDevices:              "mediaDevices",
	CapMediaCapabilities:         "mediaCapabilities",
	CapPermissions:               "permissions",
	CapNavigatorBuildID:          "navigator.buildID",
	CapNavigatorCredentials:      "navigator.credentials",
	CapNavigatorKeyboard:         "navigator.keyboard",
	CapNavigatorActiveVRDisplays: "navigator.activeVRDisplays",
	CapNavigatorStandalone:       "navigator.standalone",
	CapNavigatorWakeLock:         "navigator.wakeLock",
	CapNavigatorVirtualKeyboard:  "navigator.virtualKeyboard",
	CapNavigatorCanShare:         "navigator.canShare",
	CapWebDriver:                 "webdriver",
	CapSelenium:                  "selenium",
	CapDocumentAutomation:        "documentAutomation",
	CapDOMAutomation:             "domAutomation",
	CapSequentumExternal:         "sequentumExternal",
	CapPhantom:                   "phantom",
	CapNightmare:                 "nightmare",
	CapChromeObject:              "chrome",
	CapChromeWebstore:            "chromeWebstore",
}

// String returns the capability's stable name.
func (c Capability) String() string {
	if !c.Valid() {
		return "unknown"
	}

	return capabilityNames[c]
}

// Valid reports whether c belongs to the closed capability set.
func (c Capability) Valid() bool {
	return c >= 0 && c < capabilityCount
}

// Capabilities returns every recognized capability in declaration order.
func Capabilities() []Capability {
	caps := make([]Capability, capabilityCount)
	for i := range caps {
		caps[i] = Capability(i)
	}

	return caps
}

// ParseCapability resolves a capability by its name, case-insensitively.
func ParseCapability(name string) (Capability, bool) {
	for i, n := range capabilityNames {
		if strings.EqualFold(n, name) {
			return Capability(i), true
		}
	}

	return 0, false
}
