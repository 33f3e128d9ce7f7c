package native

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slashdevops/fingerprint"
	"github.com/slashdevops/fingerprint/internal/version"
)

// fakeHost returns a Host whose system readers are all stubbed.
func fakeHost(env map[string]string) *Host {
	h := New()
	h.env = func(k string) string { return env[k] }
	h.cores = func(context.Context, bool) (int, error) { return 12, nil }
	h.memory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 16 << 30}, nil
	}
	h.info = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{
			OS:              "linux",
			Platform:        "ubuntu",
			PlatformFamily:  "debian",
			PlatformVersion: "24.04",
			KernelVersion:   "6.8.0",
			KernelArch:      "x86_64",
		}, nil
	}
	h.interfaces = func(context.Context) (psnet.InterfaceStatList, error) {
		return psnet.InterfaceStatList{
			{Name: "lo", Flags: []string{"up", "loopback"}},
			{Name: "wlp2s0", HardwareAddr: "aa:bb:cc:dd:ee:ff", Flags: []string{"up"}},
		}, nil
	}
	h.usage = func(context.Context, string) (*disk.UsageStat, error) {
		return &disk.UsageStat{Total: 500 << 30, Used: 120 << 30}, nil
	}
	h.storageDir = "/var/cache"

	mock := newMockExecutor()
	mock.setOutput("fc-list", "Arial\nVerdana\nDejaVu Sans")
	mock.setOutput("system_profiler", `{"SPFontsDataType":[{"_name":"Arial.ttf","typefaces":[{"family":"Arial"}]},{"_name":"Verdana.ttf","typefaces":[{"family":"Verdana"}]}]}`)
	mock.setOutput("reg", "    Arial (TrueType)    REG_SZ    arial.ttf\n    Verdana (TrueType)    REG_SZ    verdana.ttf")
	h.WithExecutor(mock)

	return h
}

func TestMemoryClass(t *testing.T) {
	tests := []struct {
		total uint64
		want  float64
	}{
		{0, 0},
		{128 << 20, 0.25},
		{1 << 30, 1},
		{3 << 30, 2},
		{6 << 30, 4},
		{8 << 30, 8},
		{64 << 30, 8},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, memoryClass(tt.total), "total %d", tt.total)
	}
}

func TestLanguageTag(t *testing.T) {
	assert.Equal(t, "en-US", languageTag("en_US.UTF-8"))
	assert.Equal(t, "sr-RS", languageTag("sr_RS@latin"))
	assert.Equal(t, "de", languageTag("de"))
	assert.Empty(t, languageTag("C"))
	assert.Empty(t, languageTag("POSIX.UTF-8"))
	assert.Empty(t, languageTag(""))
}

func TestArchitecture(t *testing.T) {
	arch, bits := architecture("x86_64")
	assert.Equal(t, "x86", arch)
	assert.Equal(t, "64", bits)

	arch, bits = architecture("aarch64")
	assert.Equal(t, "arm", arch)
	assert.Equal(t, "64", bits)

	arch, bits = architecture("armv7l")
	assert.Equal(t, "arm", arch)
	assert.Equal(t, "32", bits)
}

func TestNavigator(t *testing.T) {
	h := fakeHost(map[string]string{"LANGUAGE": "vi_VN:en_US", "LANG": "vi_VN.UTF-8"})

	nav, err := h.Navigator(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Linux x86_64", nav.Platform)
	assert.Equal(t, []string{"vi-VN", "en-US"}, nav.Languages)
	assert.Equal(t, "vi-VN", nav.Language)
	assert.Equal(t, version.Identity(), nav.UserAgent)
	assert.NotContains(t, nav.UserAgent, version.Version)
	require.NotNil(t, nav.UserAgentData)
	assert.True(t, nav.UserAgentData.HighEntropy)

	values, err := h.HighEntropyValues(context.Background(), []string{"bitness", "platformVersion", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bitness": "64", "platformVersion": "24.04"}, values)
}

func TestNavigatorInfoFailure(t *testing.T) {
	h := fakeHost(nil)
	h.info = func(context.Context) (*host.InfoStat, error) { return nil, errors.New("no /etc/os-release") }

	_, err := h.Navigator(context.Background())
	assert.ErrorContains(t, err, "reading host info")
}

func TestHardware(t *testing.T) {
	h := fakeHost(nil)

	hw, err := h.Hardware(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fingerprint.Hardware{DeviceMemory: 8, HardwareConcurrency: 12}, hw)

	h.memory = func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errors.New("denied") }
	hw, err = h.Hardware(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, hw.HardwareConcurrency)
	assert.Zero(t, hw.DeviceMemory)

	h.cores = func(context.Context, bool) (int, error) { return 0, errors.New("denied") }
	_, err = h.Hardware(context.Background())
	assert.Error(t, err)
}

func TestTimeZoneFromEnv(t *testing.T) {
	h := fakeHost(map[string]string{"TZ": ":Europe/Berlin", "LC_ALL": "de_DE.UTF-8"})

	zone, err := h.TimeZone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", zone.Location.String())
	assert.Equal(t, "de-DE", zone.Locale)
}

func TestConnectionAndStorage(t *testing.T) {
	h := fakeHost(nil)

	conn, err := h.Connection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wifi", conn.Type)

	est, err := h.StorageEstimate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fingerprint.StorageEstimate{Usage: 120 << 30, Quota: 500 << 30}, est)

	h.WithStorageDir("")
	_, err = h.StorageEstimate(context.Background())
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)
}

func TestLocalFontsAndMeasurer(t *testing.T) {
	h := fakeHost(nil)
	h.fonts = func(context.Context, CommandExecutor) ([]string, error) {
		return []string{"Arial", "Verdana"}, nil
	}

	m, err := h.OpenTextMeasurer(context.Background())
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()
	base, err := m.Measure(ctx, "monospace")
	require.NoError(t, err)

	arial, err := m.Measure(ctx, "Arial,monospace")
	require.NoError(t, err)
	assert.NotEqual(t, base, arial)

	missing, err := m.Measure(ctx, "Papyrus,monospace")
	require.NoError(t, err)
	assert.Equal(t, base, missing)

	h.fonts = func(context.Context, CommandExecutor) ([]string, error) { return nil, nil }
	_, err = h.LocalFonts(context.Background())
	assert.ErrorIs(t, err, fingerprint.ErrUnavailable)
}

func TestListFontsThroughExecutor(t *testing.T) {
	h := fakeHost(nil)

	families, err := h.LocalFonts(context.Background())
	if errors.Is(err, fingerprint.ErrUnavailable) {
		t.Skip("no font catalog command on this platform")
	}
	require.NoError(t, err)
	assert.Contains(t, families, "Arial")
	assert.Contains(t, families, "Verdana")
}

func TestCollectWithNativeHost(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := fakeHost(map[string]string{"LANG": "en_US.UTF-8", "TZ": "UTC"}).WithClock(func() time.Time { return now })

	c := fingerprint.New(h)
	first, err := c.Collect(context.Background())
	require.NoError(t, err)
	second, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Identifier(), second.Identifier())
	canvas, ok := first.Get(fingerprint.KeyCanvas).Value.(fingerprint.CanvasTokens)
	require.True(t, ok)
	assert.Equal(t, fingerprint.Unavailable, canvas.Standard)
	assert.Equal(t, fingerprint.StatusUnavailable, first.Get(fingerprint.KeyAudio).Status)

	hw, ok := first.Get(fingerprint.KeyHardware).Value.(fingerprint.HardwareInfo)
	require.True(t, ok)
	assert.Equal(t, 12, hw.HardwareConcurrency)
}
