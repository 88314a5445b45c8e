package core

import (
	"context"
	"fmt"
)

// resolveZone maps a zone name to the id of the single active zone with that
// exact name.
func resolveZone(ctx context.Context, provider dnsProvider, name string) (string, error) {
	zones, err := provider.ListZones(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to get zone identifier from zone name %s: %w", name, err)
	}

	switch len(zones) {
	case 0:
		return "", NewZoneNotFoundError(name)
	case 1:
		return zones[0].ID, nil
	default:
		return "", NewAmbiguousZoneError(name, len(zones))
	}
}
