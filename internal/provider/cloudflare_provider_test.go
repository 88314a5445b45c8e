package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync"
	"testing"

	"github.com/cloudflare/cloudflare-go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-dns/ddns-sync/internal/config"
	"github.com/auto-dns/ddns-sync/internal/domain"
	"github.com/auto-dns/ddns-sync/internal/metrics"
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	f.handler(w, r)
}

func newTestProvider(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*CloudflareProvider, *fakeAPI, *metrics.Metrics) {
	t.Helper()
	api := &fakeAPI{handler: handler}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := &config.CloudflareConfig{Token: "test-token", BaseURL: srv.URL, PerPage: 50}
	client, err := NewCloudflareClient(cfg)
	require.NoError(t, err)

	m := metrics.New()
	return NewCloudflareProvider(client, cfg, m, zerolog.Nop()), api, m
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const forbiddenBody = `{"success": false, "errors": [{"code": 9109, "message": "Invalid access token"}], "messages": [], "result": null}`

func TestCloudflareProvider_ListZones(t *testing.T) {
	p, api, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"success": true, "errors": [], "messages": [],
			"result": [
				{"id": "z1", "name": "example.com", "status": "active"},
				{"id": "z2", "name": "sub.example.com", "status": "active"}
			],
			"result_info": {"page": 1, "per_page": 50, "count": 2, "total_count": 2, "total_pages": 1}
		}`)
	})

	zones, err := p.ListZones(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, []domain.Zone{{ID: "z1", Name: "example.com"}}, zones)

	require.NotEmpty(t, api.requests)
	q := api.requests[0].URL.Query()
	assert.Equal(t, "/zones", api.requests[0].URL.Path)
	assert.Equal(t, "example.com", q.Get("name"))
	assert.Equal(t, "active", q.Get("status"))
	assert.Equal(t, "Bearer test-token", api.requests[0].Header.Get("Authorization"))
}

func TestCloudflareProvider_ListZonesError(t *testing.T) {
	p, _, m := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, forbiddenBody)
	})

	_, err := p.ListZones(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	failed, err := testutil.GatherAndCount(m.Registry(), "ddns_sync_failed_api_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
}

func TestCloudflareProvider_ListRecords(t *testing.T) {
	p, api, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"success": true, "errors": [], "messages": [],
			"result": [
				{"id": "r1", "type": "A", "name": "home.example.com", "content": "1.2.3.4", "ttl": 1},
				{"id": "r2", "type": "AAAA", "name": "home.example.com", "content": "2001:db8::1", "ttl": 1},
				{"id": "r3", "type": "TXT", "name": "home.example.com", "content": "hello", "ttl": 1}
			],
			"result_info": {"page": 2, "per_page": 50, "count": 3, "total_count": 53, "total_pages": 2}
		}`)
	})

	page, err := p.ListRecords(context.Background(), "z1", 2)
	require.NoError(t, err)

	assert.Equal(t, []domain.RemoteRecord{
		{ID: "r1", Name: "home.example.com", Kind: domain.RecordA, Content: "1.2.3.4"},
		{ID: "r2", Name: "home.example.com", Kind: domain.RecordAAAA, Content: "2001:db8::1"},
		{ID: "r3", Name: "home.example.com", Kind: "TXT", Content: "hello"},
	}, page.Records)
	require.NotNil(t, page.Info)
	assert.Equal(t, domain.PageInfo{Page: 2, TotalPages: 2}, *page.Info)

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, "/zones/z1/dns_records", req.URL.Path)
	assert.Equal(t, "2", req.URL.Query().Get("page"))
	assert.Equal(t, "50", req.URL.Query().Get("per_page"))
	assert.Equal(t, "asc", req.URL.Query().Get("direction"))
}

func TestCloudflareProvider_ListRecordsWithoutResultInfo(t *testing.T) {
	p, _, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success": true, "errors": [], "messages": [], "result": []}`)
	})

	page, err := p.ListRecords(context.Background(), "z1", 1)
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Nil(t, page.Info)
}

func TestCloudflareProvider_ListRecordsError(t *testing.T) {
	p, _, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, forbiddenBody)
	})

	_, err := p.ListRecords(context.Background(), "z1", 1)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestCloudflareProvider_UpdateRecord(t *testing.T) {
	p, api, m := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"success": true, "errors": [], "messages": [],
			"result": {"id": "r1", "type": "A", "name": "home.example.com", "content": "9.9.9.9", "ttl": 300}
		}`)
	})

	ttl := 300
	proxied := true
	err := p.UpdateRecord(context.Background(), domain.PlannedUpdate{
		ZoneID:   "z1",
		RecordID: "r1",
		Kind:     domain.RecordA,
		Name:     "home.example.com",
		Content:  netip.MustParseAddr("9.9.9.9"),
		TTL:      &ttl,
		Proxied:  &proxied,
	})
	require.NoError(t, err)

	require.Len(t, api.requests, 1)
	assert.Equal(t, "/zones/z1/dns_records/r1", api.requests[0].URL.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(api.bodies[0]), &body))
	assert.Equal(t, "A", body["type"])
	assert.Equal(t, "home.example.com", body["name"])
	assert.Equal(t, "9.9.9.9", body["content"])
	assert.Equal(t, 300.0, body["ttl"])
	assert.Equal(t, true, body["proxied"])

	succeeded, err := testutil.GatherAndCount(m.Registry(), "ddns_sync_successful_api_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, succeeded)
}

func TestCloudflareProvider_UpdateRecordError(t *testing.T) {
	p, _, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, forbiddenBody)
	})

	err := p.UpdateRecord(context.Background(), domain.PlannedUpdate{
		ZoneID:   "z1",
		RecordID: "r1",
		Kind:     domain.RecordAAAA,
		Name:     "home.example.com",
		Content:  netip.MustParseAddr("2001:db8::1"),
	})
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Contains(t, err.Error(), "AAAA")
}

func TestFromResultInfo(t *testing.T) {
	assert.Nil(t, fromResultInfo(nil))
	assert.Nil(t, fromResultInfo(&cloudflare.ResultInfo{}))
	assert.Equal(t, &domain.PageInfo{Page: 1, TotalPages: 0}, fromResultInfo(&cloudflare.ResultInfo{Page: 1}))
}

func TestToUpdateParams_OmitsUnsetTTL(t *testing.T) {
	params := toUpdateParams(domain.PlannedUpdate{
		RecordID: "r1",
		Kind:     domain.RecordAAAA,
		Name:     "home.example.com",
		Content:  netip.MustParseAddr("2001:db8::1"),
	})
	assert.Equal(t, 0, params.TTL)
	assert.Nil(t, params.Proxied)
	assert.Equal(t, "2001:db8::1", params.Content)
	assert.Equal(t, "AAAA", params.Type)
}
