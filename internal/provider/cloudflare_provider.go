package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/rs/zerolog"

	"github.com/auto-dns/ddns-sync/internal/config"
	"github.com/auto-dns/ddns-sync/internal/domain"
	"github.com/auto-dns/ddns-sync/internal/metrics"
)

// cloudflareClient is the part of cloudflare.API the provider uses.
type cloudflareClient interface {
	ListZonesContext(ctx context.Context, opts ...cloudflare.ReqOption) (cloudflare.ZonesResponse, error)
	ListDNSRecords(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.ListDNSRecordsParams) ([]cloudflare.DNSRecord, *cloudflare.ResultInfo, error)
	UpdateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.UpdateDNSRecordParams) (cloudflare.DNSRecord, error)
}

type CloudflareProvider struct {
	client  cloudflareClient
	perPage int
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCloudflareClient builds an API client authenticated with a scoped API token.
func NewCloudflareClient(cfg *config.CloudflareConfig) (*cloudflare.API, error) {
	var opts []cloudflare.Option
	if cfg.BaseURL != "" {
		opts = append(opts, cloudflare.BaseURL(cfg.BaseURL))
	}
	api, err := cloudflare.NewWithAPIToken(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudflare API client: %w", err)
	}
	return api, nil
}

func NewCloudflareProvider(client cloudflareClient, cfg *config.CloudflareConfig, m *metrics.Metrics, logger zerolog.Logger) *CloudflareProvider {
	return &CloudflareProvider{
		client:  client,
		perPage: cfg.PerPage,
		metrics: m,
		logger:  logger,
	}
}

// ListZones returns the active zones whose name is exactly name.
func (cp *CloudflareProvider) ListZones(ctx context.Context, name string) ([]domain.Zone, error) {
	start := time.Now()
	resp, err := cp.client.ListZonesContext(ctx, cloudflare.WithZoneFilters(name, "", "active"))
	cp.metrics.ObserveAPICall(actListZones, start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list zones: %w", ErrRemoteUnavailable, err)
	}

	zones := make([]domain.Zone, 0, len(resp.Result))
	for _, z := range resp.Result {
		if z.Name != name {
			cp.logger.Debug().Str("zone", z.Name).Msgf("Ignoring zone not named %s", name)
			continue
		}
		zones = append(zones, fromCloudflareZone(z))
	}
	return zones, nil
}

// ListRecords fetches a single page of a zone's records in ascending order.
func (cp *CloudflareProvider) ListRecords(ctx context.Context, zoneID string, page uint32) (domain.RecordPage, error) {
	params := cloudflare.ListDNSRecordsParams{
		Direction: cloudflare.ListDirectionAsc,
		ResultInfo: cloudflare.ResultInfo{
			Page:    int(page),
			PerPage: cp.perPage,
		},
	}

	start := time.Now()
	records, info, err := cp.client.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(zoneID), params)
	cp.metrics.ObserveAPICall(actListRecords, start, err)
	if err != nil {
		return domain.RecordPage{}, fmt.Errorf("%w: failed to list existing DNS records: %w", ErrRemoteUnavailable, err)
	}

	cp.logger.Trace().Str("zone_id", zoneID).Uint32("page", page).Int("records", len(records)).Msg("Fetched record page")
	return domain.RecordPage{
		Records: fromCloudflareRecords(records),
		Info:    fromResultInfo(info),
	}, nil
}

// UpdateRecord rewrites the content of an existing record.
func (cp *CloudflareProvider) UpdateRecord(ctx context.Context, pu domain.PlannedUpdate) error {
	start := time.Now()
	_, err := cp.client.UpdateDNSRecord(ctx, cloudflare.ZoneIdentifier(pu.ZoneID), toUpdateParams(pu))
	cp.metrics.ObserveAPICall(actUpdateRecord, start, err)
	if err != nil {
		return fmt.Errorf("%w: failed to update %s record %s: %w", ErrRemoteUnavailable, pu.Kind, pu.Name, err)
	}
	return nil
}
