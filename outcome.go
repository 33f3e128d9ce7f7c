package fingerprint

import (
	"encoding/json"
	"errors"
)

// Unavailable is the sentinel string recorded for a signal the host does not expose.
const Unavailable = "unavailable"

// Status tags the variant held by an [Outcome].
type Status int

const (
	// StatusOK means the probe produced a value.
	StatusOK Status = iota
	// StatusError means the probe failed; the message is kept.
	StatusError
	// StatusUnavailable means the host lacks the capability.
	StatusUnavailable
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Outcome is the settled result of one record slot: a value, a captured
// error message, or the unavailable sentinel.
type Outcome struct {
	Value  any
	Err    string
	Status Status
}

// OK wraps a successful value.
func OK(v any) Outcome {
	return Outcome{Status: StatusOK, Value: v}
}

// Failed captures err as an error outcome. The timeout sentinel keeps its
// bare message so the slot serializes as {"error":"timeout"}.
func Failed(err error) Outcome {
	if err == nil {
		err = errors.New("unknown error")
	}

	msg := err.Error()
	if errors.Is(err, ErrProbeTimeout) {
		msg = ErrProbeTimeout.Error()
	}

	return Outcome{Status: StatusError, Err: msg}
}

// Absent marks a slot as unavailable. A non-nil shape is serialized in place
// of the bare sentinel string, e.g. {"available":false}.
func Absent(shape any) Outcome {
	return Outcome{Status: StatusUnavailable, Value: shape}
}

// MarshalJSON encodes the outcome as the raw value, {"error": msg}, or the
// unavailable sentinel.
func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o.Status {
	case StatusError:
		return json.Marshal(struct {
			Error string `json:"error"`
		}{o.Err})
	case StatusUnavailable:
		if o.Value != nil {
			return json.Marshal(o.Value)
		}

		return json.Marshal(Unavailable)
	default:
		return json.Marshal(o.Value)
	}
}

// availability is the shape recorded for probes whose whole sub-record
// degrades when the host lacks the feature.
type availability struct {
	Available bool `json:"available"`
}

// support is the shape recorded when the permission API is missing.
type support struct {
	Supported bool `json:"supported"`
}
