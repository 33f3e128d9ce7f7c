package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityNamesAreUnique(t *testing.T) {
	seen := make(map[string]Capability)
	for _, c := range Capabilities() {
		name := c.String()
		assert.NotEmpty(t, name, "capability %d has no name", int(c))

		if prev, ok := seen[name]; ok {
			t.Errorf("capabilities %d and %d share the name %q", prev, c, name)
		}
		seen[name] = c
	}
}

func TestParseCapability(t *testing.T) {
	for _, c := range Capabilities() {
		got, ok := ParseCapability(c.String())
		assert.True(t, ok, c.String())
		assert.Equal(t, c, got)
	}

	got, ok := ParseCapability("WEBGPU")
	assert.True(t, ok)
	assert.Equal(t, CapWebGPU, got)

	_, ok = ParseCapability("teleport")
	assert.False(t, ok)
}

func TestCapabilityOutsideSet(t *testing.T) {
	assert.False(t, Capability(-1).Valid())
	assert.False(t, capabilityCount.Valid())
	assert.Equal(t, "unknown", capabilityCount.String())
	assert.False(t, UnsupportedHost{}.Has(CapWebGPU))
}
