package core

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/auto-dns/ddns-sync/internal/domain"
	"github.com/auto-dns/ddns-sync/internal/metrics"
	"github.com/auto-dns/ddns-sync/internal/util"
)

// executeUpdates issues every update at once, waits for all of them and
// returns how many failed.
func executeUpdates(ctx context.Context, provider dnsProvider, zone string, updates []domain.PlannedUpdate, m *metrics.Metrics, logger zerolog.Logger) int {
	if len(updates) == 0 {
		return 0
	}

	mapper := iter.Mapper[domain.PlannedUpdate, error]{MaxGoroutines: len(updates)}
	errs := mapper.Map(updates, func(pu *domain.PlannedUpdate) error {
		err := provider.UpdateRecord(ctx, *pu)
		m.IncRecordUpdate(zone, err)

		l := logger.With().Str("record", pu.Name).Str("type", string(pu.Kind)).Logger()
		if err != nil {
			l.Error().Err(err).Msgf("Failed to update record for zone %s", zone)
			return err
		}
		l.Info().Msgf("Updated %s", pu.Render())
		return nil
	})

	return len(util.Filter(errs, func(err error) bool { return err != nil }))
}
