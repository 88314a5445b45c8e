package core

import (
	"net/netip"

	"github.com/rs/zerolog"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

// ChangedAddresses returns, per family, the observed value when it differs
// from history. A family is absent from the result when it was not observed
// or did not change.
func ChangedAddresses(observed, history domain.AddressPair, logger zerolog.Logger) domain.AddressPair {
	return domain.AddressPair{
		IPv4:       changedFamily("IPv4 address", observed.IPv4, history.IPv4, logger),
		IPv6Prefix: changedFamily("IPv6 prefix", domain.MaskPrefix(observed.IPv6Prefix), domain.MaskPrefix(history.IPv6Prefix), logger),
	}
}

func changedFamily(label string, observed, previous netip.Addr, logger zerolog.Logger) netip.Addr {
	switch {
	case !observed.IsValid():
		return netip.Addr{}
	case observed == previous:
		logger.Info().Msgf("%s %s unchanged, skipping update", label, observed)
		return netip.Addr{}
	case !previous.IsValid():
		logger.Warn().Msgf("Previous %s unknown, updating to %s", label, observed)
	default:
		logger.Warn().Msgf("%s changed from %s to %s", label, previous, observed)
	}
	return observed
}
