package discovery

import (
	"net/netip"

	"github.com/auto-dns/ddns-sync/internal/domain"
	"github.com/auto-dns/ddns-sync/internal/util"
)

var nonGlobalV4 = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("224.0.0.0/4"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

var nonGlobalV6 = []netip.Prefix{
	netip.MustParsePrefix("::/128"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("::ffff:0:0/96"),
	netip.MustParsePrefix("64:ff9b:1::/48"),
	netip.MustParsePrefix("100::/64"),
	netip.MustParsePrefix("2001::/23"),
	netip.MustParsePrefix("2001:db8::/32"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("ff00::/8"),
}

// globalV6Exceptions are the globally reachable assignments inside 2001::/23.
var globalV6Exceptions = []netip.Prefix{
	netip.MustParsePrefix("2001:1::1/128"),
	netip.MustParsePrefix("2001:1::2/128"),
	netip.MustParsePrefix("2001:3::/32"),
	netip.MustParsePrefix("2001:4:112::/48"),
	netip.MustParsePrefix("2001:20::/28"),
}

func inAny(a netip.Addr, prefixes []netip.Prefix) bool {
	for _, p := range prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

func isGlobalIPv4(a netip.Addr) bool {
	return a.Is4() && !inAny(a, nonGlobalV4)
}

func isGlobalUnicastIPv6(a netip.Addr) bool {
	if !a.Is6() || a.Is4In6() {
		return false
	}
	return inAny(a, globalV6Exceptions) || !inAny(a, nonGlobalV6)
}

// globalIPv4s keeps the distinct global IPv4 addresses in interface order.
func globalIPv4s(addrs []netip.Addr) []netip.Addr {
	return util.Unique(util.Filter(util.Map(addrs, netip.Addr.Unmap), isGlobalIPv4))
}

// globalIPv6Prefixes keeps the distinct /64 prefixes of global unicast IPv6
// addresses in interface order.
func globalIPv6Prefixes(addrs []netip.Addr) []netip.Addr {
	return util.Unique(util.Map(util.Filter(addrs, isGlobalUnicastIPv6), domain.MaskPrefix))
}
