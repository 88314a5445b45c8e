package provider

import "errors"

// ErrRemoteUnavailable wraps every transport or API failure reported by the
// DNS provider.
var ErrRemoteUnavailable = errors.New("DNS provider unavailable")

const (
	actListZones    = "list_zones"
	actListRecords  = "list_records"
	actUpdateRecord = "update_record"
)
