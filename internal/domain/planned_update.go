package domain

import (
	"fmt"
	"net/netip"
)

// PlannedUpdate is a single record rewrite, alive between planning and
// execution of one pass.
type PlannedUpdate struct {
	ZoneID   string
	RecordID string
	Kind     RecordKind
	Name     string
	Content  netip.Addr
	TTL      *int
	Proxied  *bool
}

func (pu PlannedUpdate) Render() string {
	return fmt.Sprintf("[%s] %s -> %s (zone_id=%s, record_id=%s)", pu.Kind, pu.Name, pu.Content, pu.ZoneID, pu.RecordID)
}
