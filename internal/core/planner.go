package core

import (
	"net/netip"

	"github.com/rs/zerolog"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

// PlanUpdates turns the changed addresses into one update per existing
// remote record. Configured records with no remote counterpart are logged and
// counted in the returned number.
func PlanUpdates(zoneID string, zone domain.ZoneSpec, changed domain.AddressPair, index domain.RecordIndex, logger zerolog.Logger) ([]domain.PlannedUpdate, int) {
	var updates []domain.PlannedUpdate
	missing := 0

	plan := func(rs domain.RecordSpec, kind domain.RecordKind, content netip.Addr) {
		recordID, ok := index.Lookup(kind, rs.Name)
		if !ok {
			logger.Error().
				Err(NewRecordMissingError(kind, rs.Name)).
				Str("record", rs.Name).
				Str("type", string(kind)).
				Msgf("No %s record exists for %s", kind, rs.Name)
			missing++
			return
		}

		pu := domain.PlannedUpdate{
			ZoneID:   zoneID,
			RecordID: recordID,
			Kind:     kind,
			Name:     rs.Name,
			Content:  content,
			TTL:      rs.TTL,
			Proxied:  rs.Proxied,
		}
		logger.Debug().Str("record", rs.Name).Str("type", string(kind)).Msgf("Update %s", pu.Render())
		updates = append(updates, pu)
	}

	for _, rs := range zone.Records {
		if changed.HasIPv4() {
			plan(rs, domain.RecordA, changed.IPv4)
		}
		if changed.HasIPv6Prefix() && rs.HasSuffix() {
			plan(rs, domain.RecordAAAA, domain.ComposeIPv6(changed.IPv6Prefix, rs.Suffix))
		}
	}

	return updates, missing
}
