package discovery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-dns/ddns-sync/internal/config"
	"github.com/auto-dns/ddns-sync/internal/domain"
)

type staticSource struct {
	addr  netip.Addr
	err   error
	calls int
}

func (s *staticSource) Address(ctx context.Context) (netip.Addr, error) {
	s.calls++
	return s.addr, s.err
}

func TestDiscoverer_BothFamilies(t *testing.T) {
	v4 := &staticSource{addr: netip.MustParseAddr("9.9.9.9")}
	v6 := &staticSource{addr: netip.MustParseAddr("2606:4700:10:5:1:2:3:4")}

	got, err := NewDiscoverer(v4, v6, zerolog.Nop()).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AddressPair{
		IPv4:       netip.MustParseAddr("9.9.9.9"),
		IPv6Prefix: netip.MustParseAddr("2606:4700:10:5::"),
	}, got)
}

func TestDiscoverer_DisabledFamily(t *testing.T) {
	v4 := &staticSource{addr: netip.MustParseAddr("9.9.9.9")}

	got, err := NewDiscoverer(v4, nil, zerolog.Nop()).Discover(context.Background())
	require.NoError(t, err)
	assert.True(t, got.HasIPv4())
	assert.False(t, got.HasIPv6Prefix())
}

func TestDiscoverer_SourceError(t *testing.T) {
	v4 := &staticSource{err: ErrNoAddress}
	v6 := &staticSource{addr: netip.MustParseAddr("2606:4700::1")}

	_, err := NewDiscoverer(v4, v6, zerolog.Nop()).Discover(context.Background())
	assert.ErrorIs(t, err, ErrNoAddress)
	assert.Equal(t, 0, v6.calls)

	v6.err = errors.New("boom")
	_, err = NewDiscoverer(nil, v6, zerolog.Nop()).Discover(context.Background())
	assert.ErrorContains(t, err, "IPv6")
}

func TestNewDiscovererFromConfig(t *testing.T) {
	cfg := &config.DiscoveryConfig{
		IPv4: config.SourceConfig{Interface: "eth0", HTTP: "https://ipv4.example.net"},
		IPv6: config.SourceConfig{HTTP: "https://ipv6.example.net"},
	}
	d := NewDiscovererFromConfig(cfg, zerolog.Nop())

	assert.IsType(t, &InterfaceSource{}, d.ipv4)
	assert.IsType(t, &HTTPSource{}, d.ipv6)

	d = NewDiscovererFromConfig(&config.DiscoveryConfig{}, zerolog.Nop())
	assert.Nil(t, d.ipv4)
	assert.Nil(t, d.ipv6)
}

func TestNewFamilyClient_DialsOnlyItsFamily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	resp, err := NewFamilyClient(FamilyIPv4).Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	_, err = NewFamilyClient(FamilyIPv6).Get(srv.URL)
	assert.Error(t, err)
}
