package fingerprint

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// probeResult is the settled state of one probe run.
type probeResult struct {
	probe     probe
	outcomes  map[Key]Outcome
	err       error
	enrichErr error
	timedOut  bool
	elapsed   time.Duration
}

// runAll launches every probe concurrently and returns once all of them
// have settled. The group carries no shared context, so one failing probe
// never cancels its siblings.
func (c *Collector) runAll(ctx context.Context, set []probe) []probeResult {
	results := make([]probeResult, len(set))

	var g errgroup.Group
	for i, p := range set {
		g.Go(func() error {
			results[i] = c.runProbe(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runProbe runs p under the probe timeout. When the deadline passes first,
// every key of p resolves to the timeout error and whatever the probe
// still writes is discarded with its buffer.
func (c *Collector) runProbe(parent context.Context, p probe) probeResult {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	type settled struct {
		err       error
		enrichErr error
	}

	start := time.Now()
	w := newSlotWriter(p.keys)
	done := make(chan settled, 1)

	go func() {
		err, enrichErr := w.execute(ctx, p, c.host)
		done <- settled{err: err, enrichErr: enrichErr}
	}()

	select {
	case s := <-done:
		if s.err != nil && ctx.Err() != nil {
			// the probe gave up on its own expired context
			return expired(parent, p, start)
		}

		return probeResult{
			probe:     p,
			outcomes:  w.outcomes(s.err),
			err:       s.err,
			enrichErr: s.enrichErr,
			elapsed:   time.Since(start),
		}
	case <-ctx.Done():
		return expired(parent, p, start)
	}
}

// expired resolves every key of p to the timeout error, or to the parent's
// error when the whole session was cancelled.
func expired(parent context.Context, p probe, start time.Time) probeResult {
	err := ErrProbeTimeout
	if perr := parent.Err(); perr != nil {
		err = perr
	}

	outcomes := make(map[Key]Outcome, len(p.keys))
	for _, k := range p.keys {
		outcomes[k] = Failed(err)
	}

	return probeResult{
		probe:    p,
		outcomes: outcomes,
		err:      err,
		timedOut: true,
		elapsed:  time.Since(start),
	}
}
