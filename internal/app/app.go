package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/feedback-backend/internal/http"
	"github.com/yungbote/feedback-backend/internal/observability"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/store"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Backend  store.Backend
	Metrics  *observability.Metrics
	Clients  Clients
	Services Services
	Server   *http.Server

	storage      *storageProvider
	otelShutdown func(context.Context) error
}

// Bootstrap loads config and builds the storage backend, clients and
// services without the HTTP layer. The operator CLI uses it directly.
func Bootstrap(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig(nil)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Config loaded",
		"storage_backend", cfg.Storage.Backend,
		"llm_provider", cfg.LLM.Provider,
		"cache_backend", cfg.Cache.Backend,
	)
	a := &App{Log: log, Cfg: cfg}
	if err := a.wireCore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func New(ctx context.Context) (*App, error) {
	a, err := Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	handlers := wireHandlers(a.Log, a.Services, a.Metrics)
	srv, err := wireServer(a.Log, a.Cfg, handlers, a.Metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init http server: %w", err)
	}
	a.Server = srv
	return a, nil
}

func (a *App) wireCore(ctx context.Context) error {
	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: a.Cfg.ServiceName,
		Environment: a.Cfg.Environment,
		Enabled:     a.Cfg.Otel.Enabled,
		Endpoint:    a.Cfg.Otel.Endpoint,
		Headers:     observability.ParseHeaders(a.Cfg.Otel.Headers),
		Insecure:    a.Cfg.Otel.Insecure,
		SampleRatio: a.Cfg.Otel.SampleRatio,
	})
	if a.Cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics()
	}

	sp, err := resolveStorage(ctx, a.Log, a.Cfg.Storage)
	if err != nil {
		return err
	}
	a.storage = sp
	a.Backend = sp.Backend

	clients, err := wireClients(ctx, a.Log, a.Cfg)
	if err != nil {
		return err
	}
	a.Clients = clients

	svcs, err := wireServices(a.Log, a.Cfg, a.Backend, a.Clients, a.Metrics)
	if err != nil {
		return err
	}
	a.Services = svcs
	return nil
}

// Run serves HTTP until ctx is cancelled. The dashboard snapshot is warmed
// alongside so the first admin view does not pay for the read.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("Serving HTTP", "address", a.Cfg.Address(), "backend", a.Backend.Name())
		return a.Server.Run(gctx, a.Cfg.Address())
	})
	g.Go(func() error {
		if err := a.Services.Dashboard.Refresh(gctx); err != nil {
			a.Log.Warn("Dashboard warmup failed", "error", err)
		}
		return nil
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		a.otelShutdown = nil
	}
	a.Clients.Close()
	a.storage.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
