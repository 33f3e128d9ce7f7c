// Package native provides a [fingerprint.Host] backed by the operating
// system instead of a browser. It serves command-line tools and daemons
// that want a device identifier for the machine they run on.
//
// Hardware, platform, storage and network signals come from gopsutil. The
// font catalog is read with the platform's own tooling (fc-list,
// system_profiler or the registry) through a [CommandExecutor]. Browser-only
// signals such as rendering, audio, battery and permissions are reported
// unavailable.
package native

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/slashdevops/fingerprint"
	"github.com/slashdevops/fingerprint/internal/version"
)

// Host reads signals from the local operating system. It is safe for
// concurrent use once configured.
type Host struct {
	fingerprint.UnsupportedHost

	executor   CommandExecutor
	logger     *zerolog.Logger
	clock      func() time.Time
	started    time.Time
	storageDir string
	env        func(string) string

	cores      func(context.Context, bool) (int, error)
	memory     func(context.Context) (*mem.VirtualMemoryStat, error)
	info       func(context.Context) (*host.InfoStat, error)
	interfaces func(context.Context) (psnet.InterfaceStatList, error)
	usage      func(context.Context, string) (*disk.UsageStat, error)
	fonts      func(context.Context, CommandExecutor) ([]string, error)

	zoneOnce sync.Once
	zone     *time.Location
}

var _ fingerprint.Host = (*Host)(nil)

// New creates a host reading from the running system.
func New() *Host {
	return &Host{
		executor:   &defaultCommandExecutor{TimeOut: defaultCommandTimeout},
		clock:      time.Now,
		started:    time.Now(),
		storageDir: defaultStorageDir(),
		env:        os.Getenv,
		cores:      cpu.CountsWithContext,
		memory:     mem.VirtualMemoryWithContext,
		info:       host.InfoWithContext,
		interfaces: psnet.InterfacesWithContext,
		usage:      disk.UsageWithContext,
		fonts:      listFonts,
	}
}

// WithExecutor sets the command executor used to read the font catalog.
func (h *Host) WithExecutor(executor CommandExecutor) *Host {
	h.executor = executor

	return h
}

// WithLogger sets an optional logger. A nil logger disables logging.
func (h *Host) WithLogger(logger *zerolog.Logger) *Host {
	h.logger = logger

	return h
}

// WithClock replaces the wall clock reported by Now.
func (h *Host) WithClock(clock func() time.Time) *Host {
	if clock == nil {
		clock = time.Now
	}
	h.clock = clock

	return h
}

// WithStorageDir sets the directory whose file system backs the storage
// estimate. It defaults to the user cache directory.
func (h *Host) WithStorageDir(dir string) *Host {
	h.storageDir = dir

	return h
}

func defaultStorageDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}

	return os.TempDir()
}

func (h *Host) Navigator(ctx context.Context) (fingerprint.Navigator, error) {
	info, err := h.info(ctx)
	if err != nil {
		return fingerprint.Navigator{}, fmt.Errorf("reading host info: %w", err)
	}

	languages := h.languages()
	nav := fingerprint.Navigator{
		UserAgent:  version.Identity(),
		Platform:   platformName(info),
		Languages:  languages,
		AppName:    "fingerprint",
		AppVersion: version.Version,
		Product:    info.OS,
		ProductSub: info.KernelVersion,
		UserAgentData: &fingerprint.UserAgentHints{
			Brands:      []fingerprint.Brand{{Brand: "fingerprint", Version: version.Version}},
			HighEntropy: true,
		},
		Props: map[string]any{
			"platform":       info.Platform,
			"platformFamily": info.PlatformFamily,
			"virtualization": info.VirtualizationSystem,
		},
	}
	if len(languages) > 0 {
		nav.Language = languages[0]
	}

	return nav, nil
}

func (h *Host) HighEntropyValues(ctx context.Context, hints []string) (map[string]any, error) {
	info, err := h.info(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading host info: %w", err)
	}

	arch, bitness := architecture(info.KernelArch)
	all := map[string]any{
		"architecture":    arch,
		"bitness":         bitness,
		"model":           "",
		"platformVersion": info.PlatformVersion,
		"fullVersionList": []fingerprint.Brand{{Brand: "fingerprint", Version: version.Version}},
	}

	out := make(map[string]any, len(hints))
	for _, hint := range hints {
		if v, ok := all[hint]; ok {
			out[hint] = v
		}
	}

	return out, nil
}

func (h *Host) Hardware(ctx context.Context) (fingerprint.Hardware, error) {
	var hw fingerprint.Hardware
	var errs []error

	if n, err := h.cores(ctx, true); err != nil {
		errs = append(errs, fmt.Errorf("counting cores: %w", err))
	} else {
		hw.HardwareConcurrency = n
	}

	if vm, err := h.memory(ctx); err != nil {
		errs = append(errs, fmt.Errorf("reading memory: %w", err))
	} else {
		hw.DeviceMemory = memoryClass(vm.Total)
	}

	if len(errs) == 2 {
		return fingerprint.Hardware{}, errors.Join(errs...)
	}
	for _, err := range errs {
		h.logDebug().Err(err).Msg("partial hardware information")
	}

	return hw, nil
}

func (h *Host) Now() time.Time {
	return h.clock()
}

func (h *Host) TimeZone(context.Context) (fingerprint.Zone, error) {
	h.zoneOnce.Do(func() {
		h.zone = h.resolveZone()
	})

	return fingerprint.Zone{Location: h.zone, Locale: h.locale()}, nil
}

func (h *Host) Performance(context.Context) (fingerprint.PerformanceTiming, error) {
	return fingerprint.PerformanceTiming{
		TimeOrigin: float64(h.started.UnixMilli()),
		Now:        float64(time.Since(h.started).Microseconds()) / 1000,
	}, nil
}

func (h *Host) LocalFonts(ctx context.Context) ([]string, error) {
	families, err := h.fonts(ctx, h.executor)
	if err != nil {
		return nil, err
	}
	if len(families) == 0 {
		return nil, fingerprint.ErrUnavailable
	}

	return families, nil
}

func (h *Host) OpenTextMeasurer(ctx context.Context) (fingerprint.TextMeasurer, error) {
	families, err := h.LocalFonts(ctx)
	if err != nil {
		return nil, err
	}

	return newCatalogMeasurer(families), nil
}

func (h *Host) Connection(ctx context.Context) (fingerprint.Connection, error) {
	list, err := h.interfaces(ctx)
	if err != nil {
		return fingerprint.Connection{}, fmt.Errorf("listing interfaces: %w", err)
	}

	physical := physicalInterfaces(list)
	for _, i := range physical {
		h.logDebug().Str("interface", i.Name).Msg("including interface")
	}

	return fingerprint.Connection{Type: connectionType(physical)}, nil
}

func (h *Host) StorageEstimate(ctx context.Context) (fingerprint.StorageEstimate, error) {
	if h.storageDir == "" {
		return fingerprint.StorageEstimate{}, fingerprint.ErrUnavailable
	}

	u, err := h.usage(ctx, h.storageDir)
	if err != nil {
		return fingerprint.StorageEstimate{}, fmt.Errorf("reading disk usage: %w", err)
	}

	return fingerprint.StorageEstimate{Usage: u.Used, Quota: u.Total}, nil
}

// memoryClass rounds total bytes down to the power-of-two GiB class a
// browser reports, clamped to [0.25, 8].
func memoryClass(total uint64) float64 {
	if total == 0 {
		return 0
	}

	gib := float64(total) / (1 << 30)
	class := 0.25
	for class*2 <= gib && class < 8 {
		class *= 2
	}

	return class
}

// platformName mirrors the strings browsers report as navigator.platform.
func platformName(info *host.InfoStat) string {
	switch info.OS {
	case "darwin":
		return "MacIntel"
	case "windows":
		return "Win32"
	case "linux":
		return "Linux " + info.KernelArch
	default:
		return info.OS
	}
}

// architecture splits a kernel architecture into the client hint pair.
func architecture(kernelArch string) (arch, bitness string) {
	switch kernelArch {
	case "x86_64", "amd64":
		return "x86", "64"
	case "i386", "i686", "x86":
		return "x86", "32"
	case "aarch64", "arm64":
		return "arm", "64"
	case "":
		kernelArch = runtime.GOARCH
	}

	if strings.HasPrefix(kernelArch, "arm") {
		return "arm", "32"
	}

	return kernelArch, ""
}

// languages reads the preferred languages from the POSIX locale
// environment, most preferred first.
func (h *Host) languages() []string {
	var out []string
	if list := h.env("LANGUAGE"); list != "" {
		for part := range strings.SplitSeq(list, ":") {
			if tag := languageTag(part); tag != "" {
				out = append(out, tag)
			}
		}
	}
	if tag := h.locale(); tag != "" && len(out) == 0 {
		out = append(out, tag)
	}

	return out
}

func (h *Host) locale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if tag := languageTag(h.env(key)); tag != "" {
			return tag
		}
	}

	return ""
}

// languageTag converts a POSIX locale such as "en_US.UTF-8" to "en-US".
func languageTag(posix string) string {
	posix, _, _ = strings.Cut(posix, ".")
	posix, _, _ = strings.Cut(posix, "@")
	if posix == "" || posix == "C" || posix == "POSIX" {
		return ""
	}

	return strings.ReplaceAll(posix, "_", "-")
}

// resolveZone finds the IANA name of the local zone from TZ or the
// /etc/localtime link, falling back to the process zone.
func (h *Host) resolveZone() *time.Location {
	if tz := strings.TrimPrefix(h.env("TZ"), ":"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if _, name, ok := strings.Cut(filepath.ToSlash(target), "zoneinfo/"); ok {
			if loc, err := time.LoadLocation(name); err == nil {
				return loc
			}
		}
	}

	return time.Local
}

func (h *Host) logDebug() *zerolog.Event {
	if h.logger == nil {
		return nil
	}

	return h.logger.Debug()
}
