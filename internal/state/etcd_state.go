package state

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/auto-dns/ddns-sync/internal/config"
	"github.com/auto-dns/ddns-sync/internal/domain"
)

type etcdClient interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Close() error
}

// EtcdStore keeps history as a JSON value under a single etcd key.
type EtcdStore struct {
	client etcdClient
	key    string
	logger zerolog.Logger
}

func NewEtcdStore(client etcdClient, cfg *config.EtcdConfig, logger zerolog.Logger) *EtcdStore {
	return &EtcdStore{
		client: client,
		key:    cfg.Key,
		logger: logger,
	}
}

// Load reads history from etcd. A missing key is created with empty history.
func (es *EtcdStore) Load(ctx context.Context) (domain.AddressPair, error) {
	resp, err := es.client.Get(ctx, es.key)
	if err != nil {
		return domain.AddressPair{}, fmt.Errorf("%w: failed to read etcd key %s: %w", ErrHistoryIO, es.key, err)
	}
	if len(resp.Kvs) == 0 {
		es.logger.Warn().Str("key", es.key).Msg("[etcd_state] History key does not exist, creating it")
		if err := es.Save(ctx, domain.AddressPair{}); err != nil {
			return domain.AddressPair{}, fmt.Errorf("failed to create initial history key: %w", err)
		}
		return domain.AddressPair{}, nil
	}

	h, err := unmarshalHistory(resp.Kvs[0].Value)
	if err != nil {
		return domain.AddressPair{}, fmt.Errorf("%w: etcd key %s: %w", ErrHistoryIO, es.key, err)
	}
	return h, nil
}

// Save overwrites the history key in a single put.
func (es *EtcdStore) Save(ctx context.Context, h domain.AddressPair) error {
	data, err := marshalHistory(h)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHistoryIO, err)
	}
	if _, err := es.client.Put(ctx, es.key, string(data)); err != nil {
		return fmt.Errorf("%w: failed to write etcd key %s: %w", ErrHistoryIO, es.key, err)
	}
	es.logger.Debug().Str("key", es.key).Str("history", h.Render()).Msg("[etcd_state] History saved")
	return nil
}

func (es *EtcdStore) Close() error {
	return es.client.Close()
}
