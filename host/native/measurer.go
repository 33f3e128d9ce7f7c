package native

import (
	"context"
	"slices"
	"strings"

	"github.com/slashdevops/fingerprint"
)

// genericBoxes are the boxes the generic CSS families resolve to.
var genericBoxes = map[string]fingerprint.Box{
	"monospace":  {Width: 160, Height: 80},
	"sans-serif": {Width: 150, Height: 80},
	"serif":      {Width: 145, Height: 80},
}

// catalogMeasurer resolves font-family lists against the system font
// catalog. There is no layout engine, so a family that the catalog holds
// measures with a box derived from its name, which differs from every
// generic box.
type catalogMeasurer struct {
	installed []string
}

func newCatalogMeasurer(families []string) *catalogMeasurer {
	installed := make([]string, len(families))
	for i, f := range families {
		installed[i] = strings.ToLower(f)
	}

	return &catalogMeasurer{installed: installed}
}

func (m *catalogMeasurer) Measure(ctx context.Context, family string) (fingerprint.Box, error) {
	if err := ctx.Err(); err != nil {
		return fingerprint.Box{}, err
	}

	for name := range strings.SplitSeq(family, ",") {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
		if box, ok := genericBoxes[name]; ok {
			return box, nil
		}
		if slices.Contains(m.installed, name) {
			return fingerprint.Box{Width: float64(200 + fingerprint.Sum32(name)%100), Height: 80}, nil
		}
	}

	return genericBoxes["serif"], nil
}

func (m *catalogMeasurer) Close() error {
	return nil
}
