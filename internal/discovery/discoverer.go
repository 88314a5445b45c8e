package discovery

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/auto-dns/ddns-sync/internal/config"
	"github.com/auto-dns/ddns-sync/internal/domain"
)

// Discoverer reads the current address of every enabled family.
// A nil source leaves its family disabled.
type Discoverer struct {
	ipv4   Source
	ipv6   Source
	logger zerolog.Logger
}

func NewDiscoverer(ipv4, ipv6 Source, logger zerolog.Logger) *Discoverer {
	return &Discoverer{ipv4: ipv4, ipv6: ipv6, logger: logger}
}

// NewDiscovererFromConfig picks one source per family. An interface takes
// precedence over an HTTP echo service.
func NewDiscovererFromConfig(cfg *config.DiscoveryConfig, logger zerolog.Logger) *Discoverer {
	return NewDiscoverer(
		sourceFor(cfg.IPv4, FamilyIPv4, logger),
		sourceFor(cfg.IPv6, FamilyIPv6, logger),
		logger,
	)
}

func sourceFor(cfg config.SourceConfig, family Family, logger zerolog.Logger) Source {
	switch {
	case !cfg.Enabled():
		return nil
	case cfg.Interface != "":
		return NewInterfaceSource(cfg.Interface, family, logger)
	default:
		return NewHTTPSource(cfg.HTTP, family, NewFamilyClient(family), logger)
	}
}

// NewFamilyClient returns an HTTP client that only dials over the given
// family, so an echo service sees the address being asked for.
func NewFamilyClient(family Family) *http.Client {
	network := "tcp4"
	if family == FamilyIPv6 {
		network = "tcp6"
	}

	dialer := &net.Dialer{}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = func(ctx context.Context, _, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, addr)
	}
	return &http.Client{Transport: transport}
}

func (d *Discoverer) Discover(ctx context.Context) (domain.AddressPair, error) {
	var observed domain.AddressPair

	if d.ipv4 != nil {
		addr, err := d.ipv4.Address(ctx)
		if err != nil {
			return domain.AddressPair{}, fmt.Errorf("failed to discover IPv4 address: %w", err)
		}
		observed.IPv4 = addr
		d.logger.Debug().Str("ipv4", addr.String()).Msg("Discovered IPv4 address")
	}

	if d.ipv6 != nil {
		addr, err := d.ipv6.Address(ctx)
		if err != nil {
			return domain.AddressPair{}, fmt.Errorf("failed to discover IPv6 prefix: %w", err)
		}
		observed.IPv6Prefix = domain.MaskPrefix(addr)
		d.logger.Debug().Str("ipv6_prefix", observed.IPv6Prefix.String()).Msg("Discovered IPv6 prefix")
	}

	return observed, nil
}
