package fingerprint

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by [Collector.Collect] and recorded in [DiagnosticInfo.Errors].
var (
	// ErrUnavailable is returned by a [Host] when the requested capability is
	// absent on that host. Probes report it as the "unavailable" sentinel
	// rather than as a failure.
	ErrUnavailable = errors.New("capability unavailable")

	// ErrProbeTimeout is recorded when a probe does not settle within the
	// collector's probe timeout. Its message is the "timeout" sentinel.
	ErrProbeTimeout = errors.New("timeout")

	// ErrRecordFrozen is returned when a write targets a [Record] whose
	// identifier has already been attached.
	ErrRecordFrozen = errors.New("record is frozen")

	// ErrForeignKey is returned when a probe writes a key it does not own.
	ErrForeignKey = errors.New("key not owned by probe")

	// ErrIncompleteRecord is returned when a slot is still empty after the
	// settle barrier. It indicates a scheduler defect, not a probe failure.
	ErrIncompleteRecord = errors.New("record has unsettled slots")

	// ErrNoHost is returned when a [Collector] is used without a [Host].
	ErrNoHost = errors.New("no host configured")

	// ErrUnknownProbe is returned when a [Collector] is configured with a
	// probe name that does not exist.
	ErrUnknownProbe = errors.New("unknown probe")
)

// ProbeError records a failure inside a single probe.
// These errors appear in [DiagnosticInfo.Errors] and can be inspected with [errors.As].
type ProbeError struct {
	Probe string // probe name, e.g. "canvas", "audio"
	Err   error  // underlying error
}

// Error returns a human-readable description of the probe failure.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %q: %v", e.Probe, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// SessionError records a failure outside any individual probe. When
// [Collector.Collect] returns one, no record is returned.
type SessionError struct {
	Session string // session id, empty if the session never started
	Err     error  // underlying error
}

// Error returns a human-readable description of the session failure.
func (e *SessionError) Error() string {
	if e.Session == "" {
		return fmt.Sprintf("collection failed: %v", e.Err)
	}

	return fmt.Sprintf("collection %s failed: %v", e.Session, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// HashError records a failure to serialize the stable subset.
// The collector recovers from it with a degraded identifier.
type HashError struct {
	Err error // underlying serialization error
}

// Error returns a human-readable description of the serialization failure.
func (e *HashError) Error() string {
	return fmt.Sprintf("failed to serialize stable subset: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *HashError) Unwrap() error {
	return e.Err
}
