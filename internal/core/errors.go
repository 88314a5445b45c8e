package core

import (
	"errors"
	"fmt"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

// ErrPageCounterOverflow is returned when a record listing claims more pages
// than the page counter can address.
var ErrPageCounterOverflow = errors.New("page counter overflow")

// AmbiguousZoneError is returned when more than one active zone carries the
// configured name.
type AmbiguousZoneError struct {
	Zone    string
	Matches int
}

func NewAmbiguousZoneError(zone string, matches int) *AmbiguousZoneError {
	return &AmbiguousZoneError{Zone: zone, Matches: matches}
}

func (e *AmbiguousZoneError) Error() string {
	return fmt.Sprintf("%d active zones named %s", e.Matches, e.Zone)
}

type ZoneNotFoundError struct {
	Zone string
}

func NewZoneNotFoundError(zone string) *ZoneNotFoundError {
	return &ZoneNotFoundError{Zone: zone}
}

func (e *ZoneNotFoundError) Error() string {
	return fmt.Sprintf("no active zone named %s", e.Zone)
}

// RecordMissingError marks a configured record that has no remote record of
// the needed type.
type RecordMissingError struct {
	Kind domain.RecordKind
	Name string
}

func NewRecordMissingError(kind domain.RecordKind, name string) *RecordMissingError {
	return &RecordMissingError{Kind: kind, Name: name}
}

func (e *RecordMissingError) Error() string {
	return fmt.Sprintf("no %s record exists for %s", e.Kind, e.Name)
}

// ZoneUpdateError reports how many records of a zone could not be updated,
// missing records included.
type ZoneUpdateError struct {
	Zone     string
	Failures int
}

func NewZoneUpdateError(zone string, failures int) *ZoneUpdateError {
	return &ZoneUpdateError{Zone: zone, Failures: failures}
}

func (e *ZoneUpdateError) Error() string {
	return fmt.Sprintf("failed to update %d records", e.Failures)
}

// RunError reports how many zones failed during a pass.
type RunError struct {
	FailedZones int
}

func NewRunError(failedZones int) *RunError {
	return &RunError{FailedZones: failedZones}
}

func (e *RunError) Error() string {
	return fmt.Sprintf("failed to update %d zones", e.FailedZones)
}
