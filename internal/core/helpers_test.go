package core

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"time"

	"github.com/auto-dns/ddns-sync/internal/domain"
)

var errUpdateRejected = errors.New("update rejected")

type fakeProvider struct {
	mu sync.Mutex

	zones   map[string][]domain.Zone
	pages   map[string][]domain.RecordPage
	failIDs map[string]bool

	listZonesErr   error
	listRecordsErr error

	zoneLookups []string
	pageReads   []uint32
	updates     []domain.PlannedUpdate
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		zones:   map[string][]domain.Zone{},
		pages:   map[string][]domain.RecordPage{},
		failIDs: map[string]bool{},
	}
}

// withZone registers a zone whose records fit on a single page.
func (f *fakeProvider) withZone(name, id string, records ...domain.RemoteRecord) *fakeProvider {
	f.zones[name] = append(f.zones[name], domain.Zone{ID: id, Name: name})
	f.pages[id] = []domain.RecordPage{{
		Records: records,
		Info:    &domain.PageInfo{Page: 1, TotalPages: 1},
	}}
	return f
}

func (f *fakeProvider) ListZones(ctx context.Context, name string) ([]domain.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zoneLookups = append(f.zoneLookups, name)
	if f.listZonesErr != nil {
		return nil, f.listZonesErr
	}
	return f.zones[name], nil
}

func (f *fakeProvider) ListRecords(ctx context.Context, zoneID string, page uint32) (domain.RecordPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageReads = append(f.pageReads, page)
	if f.listRecordsErr != nil {
		return domain.RecordPage{}, f.listRecordsErr
	}
	pages := f.pages[zoneID]
	if page == 0 || int(page) > len(pages) {
		return domain.RecordPage{}, nil
	}
	return pages[page-1], nil
}

func (f *fakeProvider) UpdateRecord(ctx context.Context, pu domain.PlannedUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, pu)
	if f.failIDs[pu.RecordID] {
		return errUpdateRejected
	}
	return nil
}

func (f *fakeProvider) remoteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.zoneLookups) + len(f.pageReads) + len(f.updates)
}

type fakeDiscoverer struct {
	observed domain.AddressPair
	err      error
	calls    int
}

func (d *fakeDiscoverer) Discover(ctx context.Context) (domain.AddressPair, error) {
	d.calls++
	return d.observed, d.err
}

func aRecord(id, name, content string) domain.RemoteRecord {
	return domain.RemoteRecord{ID: id, Name: name, Kind: domain.RecordA, Content: content}
}

func aaaaRecord(id, name, content string) domain.RemoteRecord {
	return domain.RemoteRecord{ID: id, Name: name, Kind: domain.RecordAAAA, Content: content}
}

func ipv4(s string) domain.AddressPair {
	return domain.AddressPair{IPv4: netip.MustParseAddr(s)}
}

func ptr[T any](v T) *T {
	return &v
}

var errBarrierTimeout = errors.New("not every call was in flight at once")

// barrier releases its callers only once n of them are waiting at the same
// time, and fails them after a timeout otherwise.
type barrier struct {
	wg  sync.WaitGroup
	all chan struct{}
}

func newBarrier(n int) *barrier {
	b := &barrier{all: make(chan struct{})}
	b.wg.Add(n)
	go func() {
		b.wg.Wait()
		close(b.all)
	}()
	return b
}

func (b *barrier) await() error {
	b.wg.Done()
	select {
	case <-b.all:
		return nil
	case <-time.After(2 * time.Second):
		return errBarrierTimeout
	}
}

// updateBarrierProvider holds every UpdateRecord call at a barrier.
type updateBarrierProvider struct {
	*fakeProvider
	barrier *barrier
}

func (p updateBarrierProvider) UpdateRecord(ctx context.Context, pu domain.PlannedUpdate) error {
	if err := p.barrier.await(); err != nil {
		return err
	}
	return p.fakeProvider.UpdateRecord(ctx, pu)
}

// zoneBarrierProvider holds every ListZones call at a barrier.
type zoneBarrierProvider struct {
	*fakeProvider
	barrier *barrier
}

func (p zoneBarrierProvider) ListZones(ctx context.Context, name string) ([]domain.Zone, error) {
	if err := p.barrier.await(); err != nil {
		return nil, err
	}
	return p.fakeProvider.ListZones(ctx, name)
}
