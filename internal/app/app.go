package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/auto-dns/ddns-sync/internal/config"
	"github.com/auto-dns/ddns-sync/internal/core"
	"github.com/auto-dns/ddns-sync/internal/discovery"
	"github.com/auto-dns/ddns-sync/internal/domain"
	"github.com/auto-dns/ddns-sync/internal/metrics"
	"github.com/auto-dns/ddns-sync/internal/provider"
	"github.com/auto-dns/ddns-sync/internal/state"
)

type historyStore interface {
	Load(ctx context.Context) (domain.AddressPair, error)
	Save(ctx context.Context, h domain.AddressPair) error
	Close() error
}

type App struct {
	history historyStore
	engine  *core.SyncEngine
	logger  zerolog.Logger
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	zones, err := cfg.ZoneSpecs()
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	// Cloudflare
	cfClient, err := provider.NewCloudflareClient(&cfg.Cloudflare)
	if err != nil {
		return nil, err
	}
	dnsProvider := provider.NewCloudflareProvider(cfClient, &cfg.Cloudflare, m, logger)

	// History
	history, err := newHistoryStore(&cfg.History, logger)
	if err != nil {
		return nil, err
	}

	// Engine
	discoverer := discovery.NewDiscovererFromConfig(&cfg.Discovery, logger)
	engine := core.NewSyncEngine(logger, &cfg.App, zones, discoverer, dnsProvider, history, m).
		WithMetricsTextfile(cfg.Metrics.TextfilePath)

	return &App{
		history: history,
		engine:  engine,
		logger:  logger,
	}, nil
}

func newHistoryStore(cfg *config.HistoryConfig, logger zerolog.Logger) (historyStore, error) {
	switch cfg.Backend {
	case config.HistoryBackendEtcd:
		etcdClient, err := clientv3.New(clientv3.Config{
			Endpoints:   cfg.Etcd.Endpoints,
			DialTimeout: time.Duration(cfg.Etcd.DialTimeout * float64(time.Second)),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to connect to etcd: %w", state.ErrHistoryIO, err)
		}
		return state.NewEtcdStore(etcdClient, &cfg.Etcd, logger), nil
	case config.HistoryBackendFile:
		return state.NewFileStore(cfg.Path, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown history backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}

// Run starts the application by running the sync engine.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Msg("Application starting")
	return a.engine.Run(ctx)
}

func (a *App) Close() error {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			return fmt.Errorf("close history store: %w", err)
		}
	}
	return nil
}
