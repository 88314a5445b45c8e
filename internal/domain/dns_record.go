package domain

import "net/netip"

type RecordKind string

const (
	RecordA    RecordKind = "A"
	RecordAAAA RecordKind = "AAAA"
)

// RemoteRecord is a record as reported by the DNS provider. Kind holds the
// provider's type string verbatim, so it may be something other than A/AAAA.
type RemoteRecord struct {
	ID      string
	Name    string
	Kind    RecordKind
	Content string
}

func (r RemoteRecord) IsA() bool    { return r.Kind == RecordA }
func (r RemoteRecord) IsAAAA() bool { return r.Kind == RecordAAAA }

// Zone is a provider zone.
type Zone struct {
	ID   string
	Name string
}

// PageInfo is the pagination metadata of a record listing, as reported by
// the provider.
type PageInfo struct {
	Page       int
	TotalPages int
}

// RecordPage is one page of a zone's record listing. Info is nil when the
// provider did not send pagination metadata.
type RecordPage struct {
	Records []RemoteRecord
	Info    *PageInfo
}

// RecordIndex maps record names to provider record ids, per address family.
type RecordIndex struct {
	A    map[string]string
	AAAA map[string]string
}

func NewRecordIndex() RecordIndex {
	return RecordIndex{
		A:    make(map[string]string),
		AAAA: make(map[string]string),
	}
}

// Add files the record under its family. Other kinds are ignored.
func (ri RecordIndex) Add(r RemoteRecord) {
	switch {
	case r.IsA():
		ri.A[r.Name] = r.ID
	case r.IsAAAA():
		ri.AAAA[r.Name] = r.ID
	}
}

func (ri RecordIndex) Lookup(kind RecordKind, name string) (string, bool) {
	var m map[string]string
	switch kind {
	case RecordA:
		m = ri.A
	case RecordAAAA:
		m = ri.AAAA
	default:
		return "", false
	}
	id, ok := m[name]
	return id, ok
}

// ZoneSpec is a configured zone and the records to keep updated in it.
type ZoneSpec struct {
	Name    string
	Records []RecordSpec
}

// RecordSpec is a configured record. Suffix is the zero Addr when AAAA
// updates are not wanted for the record.
type RecordSpec struct {
	Name    string
	TTL     *int
	Proxied *bool
	Suffix  netip.Addr
}

func (rs RecordSpec) HasSuffix() bool {
	return rs.Suffix.IsValid()
}
