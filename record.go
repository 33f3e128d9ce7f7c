package fingerprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// Key names one top-level slot of a [Record]. The set is fixed.
type Key int

const (
	KeyUserAgent Key = iota
	KeyPlatform
	KeyCPUClass
	KeyDoNotTrack
	KeyLanguages
	KeyOSCPU
	KeyVendor
	KeyVendorSub
	KeyProductSub
	KeyCookieEnabled
	KeyAppName
	KeyAppVersion
	KeyAppCodeName
	KeyBuildID
	KeyProduct
	KeyUserAgentData
	KeyScreen
	KeyMediaFeatures
	KeyHardware
	KeyHardwareCapabilities
	KeyTime
	KeyBrowser
	KeyCanvas
	KeyWebGL
	KeyFonts
	KeyAudio
	KeyNetwork
	KeyStorage
	KeyBattery
	KeyMedia
	KeySensors
	KeyNavigatorProps
	KeyPermissions
	KeyBehavior

	keyCount
)

// IdentifierKey is the reserved record key that holds the identifier.
const IdentifierKey = "fingerprintId"

var keyNames = [keyCount]string{
	KeyUserAgent:            "userAgent",
	KeyPlatform:             "platform",
	KeyCPUClass:             "cpuClass",
	KeyDoNotTrack:           "doNotTrack",
	KeyLanguages:            "languages",
	KeyOSCPU:                "oscpu",
	KeyVendor:               "vendor",
	KeyVendorSub:            "vendorSub",
	KeyProductSub:           "productSub",
	KeyCookieEnabled:        "cookieEnabled",
	KeyAppName:              "appName",
	KeyAppVersion:           "appVersion",
	KeyAppCodeName:          "appCodeName",
	KeyBuildID:              "buildID",
	KeyProduct:              "product",
	KeyUserAgentData:        "userAgentData",
	KeyScreen:               "screen",
	KeyMediaFeatures:        "mediaFeatures",
	KeyHardware:             "hardware",
	KeyHardwareCapabilities: "hardwareCapabilities",
	KeyTime:                 "time",
	KeyBrowser:              "browser",
	KeyCanvas:               "canvas",
	KeyWebGL:                "webgl",
	KeyFonts:                "fonts",
	KeyAudio:                "audio",
	KeyNetwork:              "network",
	KeyStorage:              "storage",
	KeyBattery:              "battery",
	KeyMedia:                "media",
	KeySensors:              "sensors",
	KeyNavigatorProps:       "navigatorProps",
	KeyPermissions:          "permissions",
	KeyBehavior:             "behavior",
}

// String returns the key's JSON name.
func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return fmt.Sprintf("key(%d)", int(k))
	}

	return keyNames[k]
}

// Keys returns every record key in serialization order.
func Keys() []Key {
	keys := make([]Key, keyCount)
	for i := range keys {
		keys[i] = Key(i)
	}

	return keys
}

type slot struct {
	outcome Outcome
	filled  bool
}

// Record accumulates the settled output of every probe for one collection
// session. Each key has a pre-allocated slot owned by exactly one probe, so
// concurrent probes never contend on the same memory. A record returned by
// [Collector.Collect] is frozen and safe for concurrent reads.
type Record struct {
	session    string
	identifier string
	slots      [keyCount]slot
	frozen     atomic.Bool
}

func newRecord(session string) *Record {
	return &Record{session: session}
}

// put settles one slot. Only the scheduler calls it, once per key.
func (r *Record) put(k Key, o Outcome) error {
	if r.frozen.Load() {
		return ErrRecordFrozen
	}
	if k < 0 || k >= keyCount {
		return fmt.Errorf("%w: %s", ErrForeignKey, k)
	}

	r.slots[k] = slot{outcome: o, filled: true}

	return nil
}

// unsettled returns the keys whose slot is still empty.
func (r *Record) unsettled() []Key {
	var keys []Key
	for k := range r.slots {
		if !r.slots[k].filled {
			keys = append(keys, Key(k))
		}
	}

	return keys
}

func (r *Record) attach(identifier string) error {
	if r.frozen.Load() {
		return ErrRecordFrozen
	}

	r.identifier = identifier
	r.frozen.Store(true)

	return nil
}

// Get returns the outcome stored under k.
func (r *Record) Get(k Key) Outcome {
	if k < 0 || k >= keyCount {
		return Outcome{}
	}

	return r.slots[k].outcome
}

// Identifier returns the identifier attached to the record.
func (r *Record) Identifier() string {
	return r.identifier
}

// SessionID returns the id of the collection session that produced the record.
func (r *Record) SessionID() string {
	return r.session
}

// Frozen reports whether the identifier has been attached.
func (r *Record) Frozen() bool {
	return r.frozen.Load()
}

// MarshalJSON encodes the record as a flat object of its keys in
// declaration order followed by the reserved identifier key.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for k := range r.slots {
		name, err := json.Marshal(Key(k).String())
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(r.slots[k].outcome)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", Key(k), err)
		}

		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
		buf.WriteByte(',')
	}

	id, err := json.Marshal(r.identifier)
	if err != nil {
		return nil, err
	}

	buf.WriteString(`"` + IdentifierKey + `":`)
	buf.Write(id)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
