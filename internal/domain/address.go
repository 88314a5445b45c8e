package domain

import (
	"fmt"
	"net/netip"
)

// PrefixBits is the length of the IPv6 network prefix tracked for AAAA records.
const PrefixBits = 64

// AddressPair holds an IPv4 address and an IPv6 /64 prefix. A zero netip.Addr
// means the family is absent.
type AddressPair struct {
	IPv4       netip.Addr
	IPv6Prefix netip.Addr
}

func (p AddressPair) HasIPv4() bool       { return p.IPv4.IsValid() }
func (p AddressPair) HasIPv6Prefix() bool { return p.IPv6Prefix.IsValid() }

// IsEmpty reports whether both families are absent.
func (p AddressPair) IsEmpty() bool {
	return !p.HasIPv4() && !p.HasIPv6Prefix()
}

func (p AddressPair) Equal(o AddressPair) bool {
	return p.IPv4 == o.IPv4 && p.IPv6Prefix == o.IPv6Prefix
}

// Merge returns p with every absent family taken from base.
func (p AddressPair) Merge(base AddressPair) AddressPair {
	out := p
	if !out.HasIPv4() {
		out.IPv4 = base.IPv4
	}
	if !out.HasIPv6Prefix() {
		out.IPv6Prefix = base.IPv6Prefix
	}
	return out
}

func (p AddressPair) Render() string {
	return fmt.Sprintf("ipv4=%s ipv6_prefix=%s", renderAddr(p.IPv4), renderAddr(p.IPv6Prefix))
}

func renderAddr(a netip.Addr) string {
	if !a.IsValid() {
		return "<none>"
	}
	return a.String()
}

// MaskPrefix keeps the upper 64 bits of an IPv6 address. Anything that is
// not an IPv6 address is returned unchanged.
func MaskPrefix(a netip.Addr) netip.Addr {
	if !a.Is6() || a.Is4In6() {
		return a
	}
	return netip.PrefixFrom(a, PrefixBits).Masked().Addr()
}

// ComposeIPv6 builds a host address from the upper 64 bits of prefix and the
// lower 64 bits of suffix. Bits the suffix sets in the prefix half are dropped.
func ComposeIPv6(prefix, suffix netip.Addr) netip.Addr {
	p := prefix.As16()
	s := suffix.As16()
	var out [16]byte
	copy(out[:8], p[:8])
	copy(out[8:], s[8:])
	return netip.AddrFrom16(out)
}
