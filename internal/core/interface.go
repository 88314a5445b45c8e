package core

import (
	"context"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

type addressDiscoverer interface {
	Discover(ctx context.Context) (domain.AddressPair, error)
}

type dnsProvider interface {
	ListZones(ctx context.Context, name string) ([]domain.Zone, error)
	ListRecords(ctx context.Context, zoneID string, page uint32) (domain.RecordPage, error)
	UpdateRecord(ctx context.Context, pu domain.PlannedUpdate) error
}

type historyStore interface {
	Load(ctx context.Context) (domain.AddressPair, error)
	Save(ctx context.Context, h domain.AddressPair) error
	Close() error
}
