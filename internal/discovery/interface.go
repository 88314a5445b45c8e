package discovery

import (
	"context"
	"net/http"
	"net/netip"
)

// Source yields the current address of one family.
type Source interface {
	Address(ctx context.Context) (netip.Addr, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// interfaceAddrs lists the addresses bound to a named interface.
type interfaceAddrs func(name string) ([]netip.Addr, error)
