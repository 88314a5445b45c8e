package provider

import (
	"github.com/cloudflare/cloudflare-go"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

func fromCloudflareZone(z cloudflare.Zone) domain.Zone {
	return domain.Zone{ID: z.ID, Name: z.Name}
}

func fromCloudflareRecords(records []cloudflare.DNSRecord) []domain.RemoteRecord {
	out := make([]domain.RemoteRecord, 0, len(records))
	for _, r := range records {
		out = append(out, domain.RemoteRecord{
			ID:      r.ID,
			Name:    r.Name,
			Kind:    domain.RecordKind(r.Type),
			Content: r.Content,
		})
	}
	return out
}

// fromResultInfo returns nil when the response carried no pagination
// metadata, which the client decodes as page 0.
func fromResultInfo(info *cloudflare.ResultInfo) *domain.PageInfo {
	if info == nil || info.Page <= 0 {
		return nil
	}
	return &domain.PageInfo{Page: info.Page, TotalPages: info.TotalPages}
}

func toUpdateParams(pu domain.PlannedUpdate) cloudflare.UpdateDNSRecordParams {
	params := cloudflare.UpdateDNSRecordParams{
		ID:      pu.RecordID,
		Type:    string(pu.Kind),
		Name:    pu.Name,
		Content: pu.Content.String(),
		Proxied: pu.Proxied,
	}
	if pu.TTL != nil {
		params.TTL = *pu.TTL
	}
	return params
}
