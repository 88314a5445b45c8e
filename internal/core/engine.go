package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/auto-dns/ddns-sync/internal/config"
	"github.com/auto-dns/ddns-sync/internal/domain"
	"github.com/auto-dns/ddns-sync/internal/metrics"
	"github.com/auto-dns/ddns-sync/internal/state"
	"github.com/auto-dns/ddns-sync/internal/util"
)

// SyncEngine coordinates address discovery, per-zone reconciliation and
// history persistence.
type SyncEngine struct {
	logger       zerolog.Logger
	cfg          *config.AppConfig
	zones        []domain.ZoneSpec
	discoverer   addressDiscoverer
	provider     dnsProvider
	history      historyStore
	metrics      *metrics.Metrics
	textfilePath string
}

func NewSyncEngine(logger zerolog.Logger, cfg *config.AppConfig, zones []domain.ZoneSpec, discoverer addressDiscoverer, provider dnsProvider, history historyStore, m *metrics.Metrics) *SyncEngine {
	return &SyncEngine{
		logger:     logger,
		cfg:        cfg,
		zones:      zones,
		discoverer: discoverer,
		provider:   provider,
		history:    history,
		metrics:    m,
	}
}

// WithMetricsTextfile makes every pass end by exporting the metrics registry
// to path.
func (se *SyncEngine) WithMetricsTextfile(path string) *SyncEngine {
	se.textfilePath = path
	return se
}

// Run loads history once and runs a single pass, or one pass per interval
// when an interval is configured. In periodic mode pass failures are logged
// and retried on the next tick; history I/O failures end the loop.
func (se *SyncEngine) Run(ctx context.Context) error {
	se.logger.Info().Msg("Starting SyncEngine")

	history, err := se.history.Load(ctx)
	if err != nil {
		return err
	}
	se.logger.Debug().Msgf("Loaded history %s", history.Render())

	if se.cfg.Interval <= 0 {
		_, err := se.RunOnce(ctx, history)
		return err
	}

	se.logger.Info().Int("interval", se.cfg.Interval).Msg("Launching reconciliation loop")
	ticker := time.NewTicker(time.Duration(se.cfg.Interval) * time.Second)
	defer ticker.Stop()
	for {
		history, err = se.RunOnce(ctx, history)
		if err != nil {
			if errors.Is(err, state.ErrHistoryIO) {
				return err
			}
			se.logger.Error().Err(err).Msg("Sync error")
		}

		select {
		case <-ticker.C:
			se.logger.Debug().Msg("Reconciliation loop tick")
		case <-ctx.Done():
			se.logger.Info().Msg("SyncEngine shutting down")
			return ctx.Err()
		}
	}
}

// RunOnce performs one pass against the given history and returns the
// history to use for the next pass.
func (se *SyncEngine) RunOnce(ctx context.Context, history domain.AddressPair) (domain.AddressPair, error) {
	next, failedZones, err := se.reconcile(ctx, history)
	se.metrics.SetRunResult(failedZones, err)
	if se.textfilePath != "" {
		if werr := se.metrics.WriteTextfile(se.textfilePath); werr != nil {
			se.logger.Warn().Err(werr).Str("path", se.textfilePath).Msg("Failed to write metrics textfile")
		}
	}
	return next, err
}

func (se *SyncEngine) reconcile(ctx context.Context, history domain.AddressPair) (domain.AddressPair, int, error) {
	if len(se.zones) == 0 {
		se.logger.Warn().Msg("No zones configured, nothing to do")
		return history, 0, nil
	}

	observed, err := se.discoverer.Discover(ctx)
	if err != nil {
		return history, 0, err
	}
	if observed.IsEmpty() {
		se.logger.Warn().Msg("Neither IPv4 nor IPv6 discovery is configured, nothing to do")
		return history, 0, nil
	}

	changed := ChangedAddresses(observed, history, se.logger)
	if changed.IsEmpty() {
		return history, 0, nil
	}

	if failed := se.updateZones(ctx, changed); failed > 0 {
		return history, failed, NewRunError(failed)
	}

	next := changed.Merge(history)
	if err := se.history.Save(ctx, next); err != nil {
		return history, 0, err
	}
	se.logger.Info().Msgf("Saved history %s", next.Render())
	return next, 0, nil
}

// updateZones reconciles every zone in parallel and returns how many failed.
func (se *SyncEngine) updateZones(ctx context.Context, changed domain.AddressPair) int {
	mapper := iter.Mapper[domain.ZoneSpec, error]{MaxGoroutines: len(se.zones)}
	errs := mapper.Map(se.zones, func(zone *domain.ZoneSpec) error {
		err := se.updateZone(ctx, *zone, changed)
		if err != nil {
			se.logger.Error().Err(err).Str("zone", zone.Name).Msgf("Failed to update zone %s", zone.Name)
		}
		return err
	})
	return len(util.Filter(errs, func(err error) bool { return err != nil }))
}

func (se *SyncEngine) updateZone(ctx context.Context, zone domain.ZoneSpec, changed domain.AddressPair) error {
	logger := se.logger.With().Str("zone", zone.Name).Logger()

	if len(zone.Records) == 0 {
		logger.Warn().Msgf("No records for zone %s", zone.Name)
		return nil
	}

	zoneID, err := resolveZone(ctx, se.provider, zone.Name)
	if err != nil {
		return err
	}

	index, err := buildIndex(ctx, se.provider, zoneID)
	if err != nil {
		return fmt.Errorf("failed to list records for zone %s id %s: %w", zone.Name, zoneID, err)
	}

	updates, missing := PlanUpdates(zoneID, zone, changed, index, logger)
	se.metrics.SetMissingRecords(zone.Name, missing)

	failures := missing + executeUpdates(ctx, se.provider, zone.Name, updates, se.metrics, logger)
	if failures > 0 {
		return NewZoneUpdateError(zone.Name, failures)
	}

	logger.Info().Int("updated", len(updates)).Msgf("Zone %s is up to date", zone.Name)
	return nil
}
