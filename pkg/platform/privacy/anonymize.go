// Package privacy reduces client addresses to a network prefix before they reach logs.
package privacy

import "net/netip"

const (
	v4Bits = 24
	v6Bits = 48
)

// AnonymizeIP masks an address to its /24 (IPv4) or /48 (IPv6) network, so
// "192.168.1.47" logs as "192.168.1.0" and "2001:db8:1:2::9" as "2001:db8:1::".
// IPv4-mapped IPv6 addresses are treated as IPv4. Empty input and the "unknown"
// placeholder give "unknown"; anything unparseable gives "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")
	bits := v6Bits
	if addr.Is4() {
		bits = v4Bits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
