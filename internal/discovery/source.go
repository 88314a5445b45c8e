package discovery

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/rs/zerolog"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

type Family string

const (
	FamilyIPv4 Family = "ipv4"
	FamilyIPv6 Family = "ipv6"
)

// maxBodyBytes bounds what an echo service may send back.
const maxBodyBytes = 1024

type InterfaceSource struct {
	name   string
	family Family
	addrs  interfaceAddrs
	logger zerolog.Logger
}

func NewInterfaceSource(name string, family Family, logger zerolog.Logger) *InterfaceSource {
	return &InterfaceSource{
		name:   name,
		family: family,
		addrs:  systemInterfaceAddrs,
		logger: logger.With().Str("interface", name).Str("family", string(family)).Logger(),
	}
}

// Address returns the first global address of the interface. For IPv6 it is
// the /64 prefix of the first global unicast address.
func (s *InterfaceSource) Address(ctx context.Context) (netip.Addr, error) {
	all, err := s.addrs(s.name)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to obtain network interface information: %w", err)
	}

	var candidates []netip.Addr
	switch s.family {
	case FamilyIPv4:
		candidates = globalIPv4s(all)
	case FamilyIPv6:
		candidates = globalIPv6Prefixes(all)
	}

	if len(candidates) == 0 {
		return netip.Addr{}, fmt.Errorf("%w: interface %q has no global %s address", ErrNoAddress, s.name, s.family)
	}
	if len(candidates) > 1 {
		s.logger.Warn().Int("count", len(candidates)).Msgf("Multiple global %s addresses found on interface %q, using %s", s.family, s.name, candidates[0])
	}
	return candidates[0], nil
}

func systemInterfaceAddrs(name string) ([]netip.Addr, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, err
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, err
	}

	out := make([]netip.Addr, 0, len(addrs))
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if addr, ok := netip.AddrFromSlice(ip); ok {
			out = append(out, addr)
		}
	}
	return out, nil
}

type HTTPSource struct {
	url    string
	family Family
	client httpDoer
	logger zerolog.Logger
}

func NewHTTPSource(url string, family Family, client httpDoer, logger zerolog.Logger) *HTTPSource {
	return &HTTPSource{
		url:    url,
		family: family,
		client: client,
		logger: logger.With().Str("url", url).Str("family", string(family)).Logger(),
	}
}

// Address asks an echo service for the caller's public address. The body is
// expected to hold nothing but the address.
func (s *HTTPSource) Address(ctx context.Context) (netip.Addr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to build request for %s: %w", s.url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to GET %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return netip.Addr{}, NewUnexpectedResponseError(s.url, fmt.Sprintf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to read response from %s: %w", s.url, err)
	}
	text := strings.TrimSpace(string(body))
	s.logger.Trace().Str("body", text).Msg("Received echo response")

	addr, err := netip.ParseAddr(text)
	if err != nil {
		return netip.Addr{}, NewUnexpectedResponseError(s.url, err.Error())
	}

	switch s.family {
	case FamilyIPv4:
		addr = addr.Unmap()
		if !addr.Is4() {
			return netip.Addr{}, NewUnexpectedResponseError(s.url, fmt.Sprintf("%s is not an IPv4 address", addr))
		}
		return addr, nil
	default:
		if !addr.Is6() || addr.Is4In6() {
			return netip.Addr{}, NewUnexpectedResponseError(s.url, fmt.Sprintf("%s is not an IPv6 address", addr))
		}
		return domain.MaskPrefix(addr.WithZone("")), nil
	}
}
