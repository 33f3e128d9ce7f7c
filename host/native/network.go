package native

import (
	"slices"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// virtualInterfacePrefixes lists interface name prefixes that represent
// virtual, VPN, bridge, or ephemeral interfaces. They say nothing about the
// physical link the device is on.
var virtualInterfacePrefixes = []string{
	// VPN and tunnel interfaces
	"utun", "tun", "tap", "ipsec", "ppp",
	// Docker and container bridges
	"docker", "br-", "veth",
	// Virtual bridges and switches
	"virbr", "vnet", "vmnet",
	"bridge",
	"lo",
	"wg",
	// Parallels / VirtualBox / VMware
	"vnic", "vboxnet",
}

// linkPrefixes maps physical interface name prefixes to a connection type
// as reported by the network information API.
var linkPrefixes = []struct {
	prefix string
	kind   string
}{
	{"wlan", "wifi"},
	{"wlp", "wifi"},
	{"wl", "wifi"},
	{"wi-fi", "wifi"},
	{"wifi", "wifi"},
	{"wwan", "cellular"},
	{"rmnet", "cellular"},
	{"eth", "ethernet"},
	{"enp", "ethernet"},
	{"eno", "ethernet"},
	{"ens", "ethernet"},
	{"en", "ethernet"},
	{"ethernet", "ethernet"},
}

// isVirtualInterface returns true if the interface name matches a known
// virtual, VPN, or bridge prefix.
func isVirtualInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	return false
}

// physicalInterfaces keeps the interfaces that are up, have a hardware
// address and are not virtual.
func physicalInterfaces(list psnet.InterfaceStatList) []psnet.InterfaceStat {
	var out []psnet.InterfaceStat
	for _, i := range list {
		if slices.Contains(i.Flags, "loopback") || i.HardwareAddr == "" {
			continue
		}
		if !slices.Contains(i.Flags, "up") {
			continue
		}
		if isVirtualInterface(i.Name) {
			continue
		}
		out = append(out, i)
	}

	return out
}

// connectionType names the link type of the physical interfaces. Wireless
// links take precedence over ethernet when both are up.
func connectionType(ifaces []psnet.InterfaceStat) string {
	kinds := make([]string, 0, len(ifaces))
	for _, i := range ifaces {
		kinds = append(kinds, linkKind(i.Name))
	}

	for _, want := range []string{"wifi", "cellular", "ethernet"} {
		if slices.Contains(kinds, want) {
			return want
		}
	}
	if len(kinds) > 0 {
		return "other"
	}

	return "none"
}

func linkKind(name string) string {
	lower := strings.ToLower(name)
	for _, lp := range linkPrefixes {
		if strings.HasPrefix(lower, lp.prefix) {
			return lp.kind
		}
	}

	return "other"
}
