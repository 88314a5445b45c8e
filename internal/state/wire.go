package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

// ErrHistoryIO marks any failure to read or write history. It is fatal to a
// pass because the change decision depends on it.
var ErrHistoryIO = errors.New("history I/O error")

type historyRecord struct {
	IPv4       *netip.Addr `json:"ipv4"`
	IPv6Prefix *netip.Addr `json:"ipv6_prefix"`
}

func marshalHistory(h domain.AddressPair) ([]byte, error) {
	var wire historyRecord
	if h.HasIPv4() {
		ip := h.IPv4
		wire.IPv4 = &ip
	}
	if h.HasIPv6Prefix() {
		prefix := domain.MaskPrefix(h.IPv6Prefix)
		wire.IPv6Prefix = &prefix
	}
	return json.Marshal(wire)
}

func unmarshalHistory(raw []byte) (domain.AddressPair, error) {
	var wire historyRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return domain.AddressPair{}, fmt.Errorf("decode history: %w", err)
	}

	var h domain.AddressPair
	if wire.IPv4 != nil && wire.IPv4.IsValid() {
		if !wire.IPv4.Is4() {
			return domain.AddressPair{}, fmt.Errorf("decode history: ipv4 %s is not an IPv4 address", wire.IPv4)
		}
		h.IPv4 = *wire.IPv4
	}
	if wire.IPv6Prefix != nil && wire.IPv6Prefix.IsValid() {
		if !wire.IPv6Prefix.Is6() {
			return domain.AddressPair{}, fmt.Errorf("decode history: ipv6_prefix %s is not an IPv6 address", wire.IPv6Prefix)
		}
		h.IPv6Prefix = domain.MaskPrefix(*wire.IPv6Prefix)
	}
	return h, nil
}
