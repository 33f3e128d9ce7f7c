// Package fingerprint collects browser and device signals from a host
// environment and derives a compact identifier that stays the same across
// sessions on the same device.
//
// # Overview
//
// A [Collector] runs a fixed set of independent probes against a [Host].
// Each probe reads one category of signal (identity strings, display,
// hardware, time zone, rendering, GPU, fonts, audio, network, storage,
// battery, media, sensors, permissions, automation tells) and owns a fixed
// set of keys in the resulting [Record]. Probes run concurrently; the
// session waits until every probe has settled, whatever its outcome.
//
// The stable subset of the record ([Classify]) is serialized canonically
// and reduced with a 32-bit rolling hash to an 8 character hexadecimal
// identifier ([Identify]). Volatile signals such as timestamps, battery
// state and connection estimates are recorded but never hashed.
//
// The identifier is a correlation key, not a security token. The hash is
// not collision resistant and the subset is observable by anyone who can
// run the same probes.
//
// # Quick Start
//
//	rec, err := fingerprint.New(host).Collect(ctx)
//	if err != nil {
//		return err
//	}
//	fmt.Println(rec.Identifier())
//
// # Hosts
//
// A [Host] answers every probe's questions. Hosts may be partial: a method
// returns [ErrUnavailable] when the host lacks the capability and the
// record stores the "unavailable" sentinel for that signal. Embed
// [UnsupportedHost] to implement only what an adapter supports.
//
// Adapters live in sub-packages:
//
//   - host/static: a deterministic host built from a YAML or JSON profile,
//     with fault injection for tests and replays
//   - host/native: the local operating system, read through gopsutil
//   - host/browser: a real browser page driven over the DevTools protocol
//
// # Failure Handling
//
// A probe never fails the session. A probe error is recorded as
// {"error": "<message>"} under the probe's keys and a probe that overruns
// its deadline ([Collector.WithProbeTimeout]) as {"error": "timeout"}.
// Panics inside a probe are recovered the same way.
//
// Only a failure outside the probes (no host, an unknown probe name, a
// cancelled context) makes [Collector.Collect] return a [*SessionError]
// instead of a record. Callers never see a partial record.
//
// When the stable subset cannot be serialized, for example because the
// pixel ratio is NaN, the identifier falls back to a time-based hash that
// will not match later sessions and [DiagnosticInfo.DegradedID] is set.
//
// # Salt
//
// [Collector.WithSalt] mixes an application-specific string into the hash
// so that two applications on the same device produce different IDs.
//
// # Diagnostics
//
// After calling [Collector.Collect], call [Collector.Diagnostics] to see
// which probes settled, failed, timed out or were skipped:
//
//	diag := collector.Diagnostics()
//	fmt.Println("Timed out:", diag.TimedOut)
//	fmt.Println("Errors:", diag.Errors)
//
// # Thread Safety
//
// A [Collector] is safe for concurrent use after configuration is complete.
// Every call to Collect starts a new session with its own record.
//
// # CLI Tool
//
// A command-line tool is provided in cmd/fingerprint:
//
//	fingerprint collect --host native --json
//	fingerprint collect --host static --profile device.yaml --diagnostics
//	fingerprint validate 1a2b3c4d --host native
//	fingerprint serve --listen :8080
//	fingerprint version --long
package fingerprint
