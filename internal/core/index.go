package core

import (
	"context"
	"fmt"
	"math"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

const firstPage uint32 = 1

// buildIndex walks every page of a zone's records and maps A and AAAA record
// names to their ids.
func buildIndex(ctx context.Context, provider dnsProvider, zoneID string) (domain.RecordIndex, error) {
	return buildIndexFrom(ctx, provider, zoneID, firstPage)
}

func buildIndexFrom(ctx context.Context, provider dnsProvider, zoneID string, page uint32) (domain.RecordIndex, error) {
	index := domain.NewRecordIndex()
	for {
		rp, err := provider.ListRecords(ctx, zoneID, page)
		if err != nil {
			return domain.RecordIndex{}, fmt.Errorf("failed to list records on page %d: %w", page, err)
		}
		for _, r := range rp.Records {
			index.Add(r)
		}

		if rp.Info == nil || int64(rp.Info.TotalPages) <= int64(page) {
			return index, nil
		}
		if page == math.MaxUint32 {
			return domain.RecordIndex{}, ErrPageCounterOverflow
		}
		page++
	}
}
