package static

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/slashdevops/fingerprint"
)

// errClosed is returned by a measurer or audio graph used after Close.
var errClosed = errors.New("resource closed")

// baselineBoxes are the simulated boxes of the generic families.
var baselineBoxes = map[string]fingerprint.Box{
	"monospace":  {Width: 173, Height: 82},
	"sans-serif": {Width: 151, Height: 82},
	"serif":      {Width: 146, Height: 83},
}

func (h *Host) OpenTextMeasurer(ctx context.Context) (fingerprint.TextMeasurer, error) {
	if err := h.enter(ctx, "OpenTextMeasurer"); err != nil {
		return nil, err
	}
	if h.profile.Fonts == nil {
		return nil, fingerprint.ErrUnavailable
	}

	return &measurer{host: h, installed: slices.Clone(h.profile.Fonts.Installed)}, nil
}

// measurer resolves a font-family list the way a layout engine does: the
// first installed family wins, generic families always resolve.
type measurer struct {
	host      *Host
	installed []string

	mu     sync.Mutex
	closed bool
}

func (m *measurer) Measure(ctx context.Context, family string) (fingerprint.Box, error) {
	if err := m.host.enter(ctx, "Measure"); err != nil {
		return fingerprint.Box{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fingerprint.Box{}, errClosed
	}

	for _, name := range strings.Split(family, ",") {
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		if box, ok := baselineBoxes[name]; ok {
			return box, nil
		}
		if slices.Contains(m.installed, name) {
			return installedBox(name), nil
		}
	}

	return baselineBoxes["serif"], nil
}

// installedBox derives a stable box wider than every baseline.
func installedBox(name string) fingerprint.Box {
	return fingerprint.Box{
		Width:  float64(200 + fingerprint.Sum32(name)%100),
		Height: float64(80 + fingerprint.Sum32(name)%7),
	}
}

func (m *measurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.host.mu.Lock()
	m.host.calls["CloseTextMeasurer"]++
	m.host.mu.Unlock()

	m.closed = true

	return nil
}

func (h *Host) OpenAudio(ctx context.Context) (fingerprint.AudioGraph, error) {
	if err := h.enter(ctx, "OpenAudio"); err != nil {
		return nil, err
	}

	a := h.profile.Audio
	if a == nil {
		return nil, fingerprint.ErrUnavailable
	}

	return &audioGraph{
		host: h,
		dest: fingerprint.AudioDestination{
			SampleRate:            a.SampleRate,
			State:                 "running",
			MaxChannelCount:       a.MaxChannelCount,
			NumberOfInputs:        1,
			NumberOfOutputs:       0,
			ChannelCount:          2,
			ChannelCountMode:      "explicit",
			ChannelInterpretation: "speakers",
		},
		bins: slices.Clone(a.Bins),
	}, nil
}

type audioGraph struct {
	host *Host
	dest fingerprint.AudioDestination
	bins []uint8

	mu     sync.Mutex
	closed bool
}

func (g *audioGraph) Destination() fingerprint.AudioDestination {
	return g.dest
}

func (g *audioGraph) FrequencyData(ctx context.Context, bins int) ([]uint8, error) {
	if err := g.host.enter(ctx, "FrequencyData"); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, errClosed
	}

	out := make([]uint8, bins)
	copy(out, g.bins)

	return out, nil
}

func (g *audioGraph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.host.mu.Lock()
	g.host.calls["CloseAudio"]++
	g.host.mu.Unlock()

	g.closed = true

	return nil
}
