package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Probe names used in [DiagnosticInfo] and with [Collector.WithProbes].
const (
	ProbeBasic       = "basic"
	ProbeScreen      = "screen"
	ProbeHardware    = "hardware"
	ProbeTime        = "time"
	ProbeBrowser     = "browser"
	ProbeCanvas      = "canvas"
	ProbeGPU         = "webgl"
	ProbeFonts       = "fonts"
	ProbeAudio       = "audio"
	ProbeNetwork     = "network"
	ProbeStorage     = "storage"
	ProbeBattery     = "battery"
	ProbeMedia       = "media"
	ProbeSensors     = "sensors"
	ProbeNavigator   = "navigatorProps"
	ProbePermissions = "permissions"
	ProbeBehavior    = "behavior"
)

// probe is one independent unit of collection. It owns keys exclusively and
// writes them through a slotWriter that rejects every other key.
type probe struct {
	name string
	keys []Key
	run  func(ctx context.Context, h Host, w *slotWriter) error
}

// probes returns the full probe set in launch order.
func probes() []probe {
	return []probe{
		{name: ProbeBasic, keys: basicKeys, run: collectBasic},
		{name: ProbeScreen, keys: []Key{KeyScreen, KeyMediaFeatures}, run: collectScreen},
		{name: ProbeHardware, keys: []Key{KeyHardware, KeyHardwareCapabilities}, run: collectHardware},
		{name: ProbeTime, keys: []Key{KeyTime}, run: collectTime},
		{name: ProbeBrowser, keys: []Key{KeyBrowser}, run: collectBrowser},
		{name: ProbeCanvas, keys: []Key{KeyCanvas}, run: collectCanvas},
		{name: ProbeGPU, keys: []Key{KeyWebGL}, run: collectGPU},
		{name: ProbeFonts, keys: []Key{KeyFonts}, run: collectFonts},
		{name: ProbeAudio, keys: []Key{KeyAudio}, run: collectAudio},
		{name: ProbeNetwork, keys: []Key{KeyNetwork}, run: collectNetwork},
		{name: ProbeStorage, keys: []Key{KeyStorage}, run: collectStorage},
		{name: ProbeBattery, keys: []Key{KeyBattery}, run: collectBattery},
		{name: ProbeMedia, keys: []Key{KeyMedia}, run: collectMedia},
		{name: ProbeSensors, keys: []Key{KeySensors}, run: collectSensors},
		{name: ProbeNavigator, keys: []Key{KeyNavigatorProps}, run: collectNavigatorProps},
		{name: ProbePermissions, keys: []Key{KeyPermissions}, run: collectPermissions},
		{name: ProbeBehavior, keys: []Key{KeyBehavior}, run: collectBehavior},
	}
}

// ProbeNames returns the names of every probe in launch order.
func ProbeNames() []string {
	return probeNames(probes())
}

// slotWriter buffers the outcomes of one probe run. The scheduler commits
// the buffer to the record only if the probe settles in time, so a probe
// abandoned after its timeout can never write shared state.
type slotWriter struct {
	owned  []Key
	mu     sync.Mutex
	values map[Key]Outcome
	tasks  errgroup.Group
}

func newSlotWriter(owned []Key) *slotWriter {
	return &slotWriter{
		owned:  owned,
		values: make(map[Key]Outcome, len(owned)),
	}
}

func (w *slotWriter) set(k Key, o Outcome) {
	if !slices.Contains(w.owned, k) {
		panic(fmt.Errorf("%w: %s", ErrForeignKey, k))
	}

	w.mu.Lock()
	w.values[k] = o
	w.mu.Unlock()
}

// Put records a successful value for k.
func (w *slotWriter) Put(k Key, v any) {
	w.set(k, OK(v))
}

// Absent records k as unavailable with an optional shape.
func (w *slotWriter) Absent(k Key, shape any) {
	w.set(k, Absent(shape))
}

// Fail records a probe-local failure for k.
func (w *slotWriter) Fail(k Key, err error) {
	w.set(k, Failed(err))
}

// enrichmentShare divides what remains of a probe's budget to give each
// enrichment its own, earlier deadline.
const enrichmentShare = 2

// Enrich registers an asynchronous enrichment of a value this probe owns.
// fetch runs under its own deadline, a share of the probe's remaining
// budget, so a stalled enrichment degrades only the value it enriches and
// never the probe's other keys. apply receives the fetched value, the
// failure, or the timeout error when fetch overruns. It always runs before
// the probe settles, so no write can land after the identifier is computed.
func (w *slotWriter) Enrich(ctx context.Context, fetch func(ctx context.Context) (any, error), apply func(Outcome)) {
	w.tasks.Go(func() error {
		ectx, cancel := enrichmentContext(ctx)
		defer cancel()

		type fetched struct {
			outcome Outcome
			err     error
		}

		done := make(chan fetched, 1)
		go func() {
			var v any
			err := guard(func() (err error) {
				v, err = fetch(ectx)
				return err
			})
			if err != nil {
				done <- fetched{outcome: Failed(err), err: err}
				return
			}
			done <- fetched{outcome: OK(v)}
		}()

		select {
		case f := <-done:
			if f.err != nil && ectx.Err() != nil {
				f = fetched{outcome: Failed(ErrProbeTimeout), err: ErrProbeTimeout}
			}
			apply(f.outcome)

			return f.err
		case <-ectx.Done():
			// fetch is abandoned; its late result is dropped with the channel
			apply(Failed(ErrProbeTimeout))

			return ErrProbeTimeout
		}
	})
}

// enrichmentContext derives the enrichment deadline from the probe's.
func enrichmentContext(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, time.Until(deadline)/enrichmentShare)
}

// execute runs p, recovering panics and joining enrichments. The returned
// error describes the probe failure; enrichment errors are returned
// separately because they do not fail the probe.
func (w *slotWriter) execute(ctx context.Context, p probe, h Host) (err, enrichErr error) {
	err = guard(func() error {
		return p.run(ctx, h, w)
	})
	enrichErr = w.tasks.Wait()

	return err, enrichErr
}

// guard converts a panic in fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok && errors.Is(rerr, ErrForeignKey) {
				err = rerr
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return fn()
}

// outcomes returns the settled outcome of every owned key. Keys the probe
// left unwritten take failure, or the unavailable sentinel when the probe
// succeeded without writing them.
func (w *slotWriter) outcomes(failure error) map[Key]Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[Key]Outcome, len(w.owned))
	for _, k := range w.owned {
		if o, ok := w.values[k]; ok {
			out[k] = o
			continue
		}
		if failure != nil {
			out[k] = Failed(failure)
			continue
		}
		out[k] = Absent(nil)
	}

	return out
}
