package fingerprint

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultProbeTimeout bounds every probe unless WithProbeTimeout overrides it.
const defaultProbeTimeout = 5 * time.Second

// DiagnosticInfo describes the last collection session of a [Collector].
// Use [Collector.Diagnostics] to retrieve it after calling [Collector.Collect].
type DiagnosticInfo struct {
	SessionID  string           // id of the session, also on the record
	Collected  []string         // probes that settled without error
	Errors     map[string]error // probes that failed, timed out, or lost an enrichment
	TimedOut   []string         // probes abandoned at the timeout
	Skipped    []string         // probes disabled by configuration
	DegradedID bool             // the identifier fell back to the time-based hash
	Duration   time.Duration    // wall time of the whole session
}

// Collector runs the probes against a [Host] and computes the identifier.
// Configure it with the With* methods before the first call to Collect.
// Collect is safe for concurrent use once configuration is complete.
type Collector struct {
	host        Host
	logger      *zerolog.Logger
	clock       func() time.Time
	diagnostics *DiagnosticInfo
	salt        string
	only        []string
	without     []string
	timeout     time.Duration
	mu          sync.Mutex
}

// New creates a Collector reading from host with every probe enabled and
// the default probe timeout.
func New(host Host) *Collector {
	return &Collector{
		host:    host,
		clock:   time.Now,
		timeout: defaultProbeTimeout,
	}
}

// WithProbeTimeout sets the deadline each probe must settle within. A probe
// that overruns is recorded as {"error":"timeout"}. Non-positive values
// restore the default.
func (c *Collector) WithProbeTimeout(d time.Duration) *Collector {
	if d <= 0 {
		d = defaultProbeTimeout
	}
	c.timeout = d

	return c
}

// WithLogger sets an optional logger. A nil logger (the default) disables
// all logging.
func (c *Collector) WithLogger(logger *zerolog.Logger) *Collector {
	c.logger = logger

	return c
}

// WithClock replaces the clock used for session timing and the degraded
// identifier. The host keeps its own clock for probe data.
func (c *Collector) WithClock(clock func() time.Time) *Collector {
	if clock == nil {
		clock = time.Now
	}
	c.clock = clock

	return c
}

// WithProbes restricts collection to the named probes. The keys of every
// other probe are recorded as unavailable.
func (c *Collector) WithProbes(names ...string) *Collector {
	c.only = slices.Clone(names)

	return c
}

// WithoutProbes disables the named probes.
func (c *Collector) WithoutProbes(names ...string) *Collector {
	c.without = append(c.without, names...)

	return c
}

// WithSalt mixes salt into the identifier. The empty salt (the default)
// yields the unsalted identifier.
func (c *Collector) WithSalt(salt string) *Collector {
	c.salt = salt

	return c
}

// Collect runs one collection session. Every enabled probe runs
// concurrently under its own timeout and the session waits for all of them
// to settle, whatever their outcome. The returned record has every key
// populated and carries the identifier.
//
// A failure outside the probes (no host, an unknown probe name, a context
// that is already done, or a panic in the session itself) returns a
// [*SessionError] and no record.
func (c *Collector) Collect(ctx context.Context) (rec *Record, err error) {
	if c.host == nil {
		return nil, &SessionError{Err: ErrNoHost}
	}

	enabled, skipped, err := c.plan()
	if err != nil {
		return nil, &SessionError{Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, &SessionError{Err: err}
	}

	session := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			c.logError().Str("session", session).Interface("panic", r).Msg("collection aborted")
			rec = nil
			err = &SessionError{Session: session, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	start := c.clock()
	c.logInfo().
		Str("session", session).
		Strs("probes", probeNames(enabled)).
		Dur("probe_timeout", c.timeout).
		Msg("collection started")

	diag := &DiagnosticInfo{
		SessionID: session,
		Errors:    make(map[string]error),
	}
	rec = newRecord(session)

	for _, res := range c.runAll(ctx, enabled) {
		if err := c.commit(rec, diag, res); err != nil {
			return nil, &SessionError{Session: session, Err: err}
		}
	}

	for _, p := range skipped {
		for _, k := range p.keys {
			if err := rec.put(k, Absent(nil)); err != nil {
				return nil, &SessionError{Session: session, Err: err}
			}
		}
		diag.Skipped = append(diag.Skipped, p.name)
	}

	if keys := rec.unsettled(); len(keys) > 0 {
		return nil, &SessionError{Session: session, Err: fmt.Errorf("%w: %v", ErrIncompleteRecord, keys)}
	}

	if err := ctx.Err(); err != nil {
		c.logWarn().Str("session", session).Err(err).Msg("collection cancelled")
		return nil, &SessionError{Session: session, Err: err}
	}

	id, err := Identify(Classify(rec), c.salt)
	if err != nil {
		id = c.degradedID(rec)
		diag.DegradedID = true
		c.logWarn().Str("session", session).Err(err).Str("identifier", id).Msg("stable subset not serializable, using degraded identifier")
	}

	if err := rec.attach(id); err != nil {
		return nil, &SessionError{Session: session, Err: err}
	}

	diag.Duration = c.clock().Sub(start)

	c.mu.Lock()
	c.diagnostics = diag
	c.mu.Unlock()

	c.logInfo().
		Str("session", session).
		Str("identifier", id).
		Int("collected", len(diag.Collected)).
		Int("errors", len(diag.Errors)).
		Int("timed_out", len(diag.TimedOut)).
		Dur("duration", diag.Duration).
		Msg("collection finished")

	return rec, nil
}

// ID runs a collection session and returns only the identifier.
func (c *Collector) ID(ctx context.Context) (string, error) {
	rec, err := c.Collect(ctx)
	if err != nil {
		return "", err
	}

	return rec.Identifier(), nil
}

// Validate reports whether a fresh collection yields id.
func (c *Collector) Validate(ctx context.Context, id string) (bool, error) {
	current, err := c.ID(ctx)
	if err != nil {
		return false, err
	}

	return current == id, nil
}

// Diagnostics returns what happened during the last successful call to
// [Collector.Collect]. Returns nil if no session has completed yet.
func (c *Collector) Diagnostics() *DiagnosticInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.diagnostics
}

// plan splits the probe set into enabled and skipped probes.
func (c *Collector) plan() (enabled, skipped []probe, err error) {
	all := probes()
	known := ProbeNames()

	for _, name := range slices.Concat(c.only, c.without) {
		if !slices.Contains(known, name) {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProbe, name)
		}
	}

	for _, p := range all {
		off := slices.Contains(c.without, p.name) ||
			(len(c.only) > 0 && !slices.Contains(c.only, p.name))
		if off {
			skipped = append(skipped, p)
			continue
		}
		enabled = append(enabled, p)
	}

	return enabled, skipped, nil
}

// commit writes one settled probe into the record and the diagnostics.
func (c *Collector) commit(rec *Record, diag *DiagnosticInfo, res probeResult) error {
	for _, k := range res.probe.keys {
		if err := rec.put(k, res.outcomes[k]); err != nil {
			return err
		}
	}

	switch {
	case res.timedOut:
		diag.TimedOut = append(diag.TimedOut, res.probe.name)
		diag.Errors[res.probe.name] = &ProbeError{Probe: res.probe.name, Err: res.err}
		c.logWarn().Str("probe", res.probe.name).Dur("timeout", c.timeout).Msg("probe timed out")
	case res.err != nil:
		diag.Errors[res.probe.name] = &ProbeError{Probe: res.probe.name, Err: res.err}
		c.logWarn().Str("probe", res.probe.name).Err(res.err).Msg("probe failed")
	default:
		diag.Collected = append(diag.Collected, res.probe.name)
		c.logDebug().Str("probe", res.probe.name).Dur("elapsed", res.elapsed).Msg("probe settled")
	}

	if res.enrichErr != nil {
		if _, failed := diag.Errors[res.probe.name]; !failed {
			diag.Errors[res.probe.name] = &ProbeError{Probe: res.probe.name, Err: res.enrichErr}
		}
		c.logWarn().Str("probe", res.probe.name).Err(res.enrichErr).Msg("probe enrichment failed")
	}

	return nil
}

// degradedID is the identifier used when the stable subset cannot be
// serialized. It is unique per millisecond, so it never matches a later
// collection.
func (c *Collector) degradedID(rec *Record) string {
	ua, _ := valueOf[string](rec, KeyUserAgent)

	return HashIdentity(ua + strconv.FormatInt(c.clock().UnixMilli(), 10))
}

func (c *Collector) logDebug() *zerolog.Event {
	if c.logger == nil {
		return nil
	}

	return c.logger.Debug()
}

func (c *Collector) logInfo() *zerolog.Event {
	if c.logger == nil {
		return nil
	}

	return c.logger.Info()
}

func (c *Collector) logWarn() *zerolog.Event {
	if c.logger == nil {
		return nil
	}

	return c.logger.Warn()
}

func (c *Collector) logError() *zerolog.Event {
	if c.logger == nil {
		return nil
	}

	return c.logger.Error()
}

func probeNames(set []probe) []string {
	names := make([]string, len(set))
	for i, p := range set {
		names[i] = p.name
	}

	return names
}
