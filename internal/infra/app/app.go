// Package app wires the console's components together: config, logger,
// session guard, transport, capability registry, query cache, and the
// services the CLI drives.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/arklim/subhub-console/internal/core/port"
	"github.com/arklim/subhub-console/internal/infra/config"
	"github.com/arklim/subhub-console/internal/infra/logger"
	"github.com/arklim/subhub-console/internal/infra/telemetry"
	"github.com/arklim/subhub-console/internal/querycache"
	"github.com/arklim/subhub-console/internal/registry"
	"github.com/arklim/subhub-console/internal/session"
	"github.com/arklim/subhub-console/internal/transport/rest"
	"github.com/arklim/subhub-console/internal/usecase"
)

// Application is the composition root of the console.
type Application struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Sessions *session.Store
	Registry *registry.Registry
	Cache    *querycache.Store
	Client   *rest.Client
	Resolver *usecase.TargetResolver

	Subscribes *usecase.SubscribeService
	Cookies    *usecase.CookieService
	Weights    *usecase.WeightService
}

// New builds the full component graph from config.
func New(cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	sessions := session.NewStore(log)
	guard := session.NewGuard(nil, sessions, log)
	httpClient := &http.Client{
		Transport: guard,
		Timeout:   cfg.API.Timeout,
	}
	client := rest.New(cfg.API.BaseURL, httpClient, log)

	metrics, err := telemetry.NewCacheMetrics(telemetry.CacheMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init cache metrics: %w", err)
	}
	cache := querycache.New(log,
		querycache.WithMetrics(metrics),
		querycache.WithRefetchTimeout(cfg.Cache.RefetchTimeout),
	)

	// A cleared session drops everything resident; the next login starts
	// from a cold cache instead of replaying another user's reads.
	sessions.OnClear(func(string) { cache.Reset() })

	reg := registry.New(client, log)
	resolver := usecase.NewTargetResolver(client, cfg.Resolver.MemoTTL, log)

	application := &Application{
		Config:     cfg,
		Logger:     log,
		Sessions:   sessions,
		Registry:   reg,
		Cache:      cache,
		Client:     client,
		Resolver:   resolver,
		Subscribes: usecase.NewSubscribeService(client, cache, reg, resolver, log),
		Cookies:    usecase.NewCookieService(client, client, cache, reg, log),
		Weights:    usecase.NewWeightService(client, cache, log),
	}

	if addr := cfg.Telemetry.MetricsAddr; addr != "" {
		go telemetry.ServeMetrics(addr, log)
	}

	return application, nil
}

// Login exchanges the one-time code for a bearer token and activates the
// session.
func (a *Application) Login(ctx context.Context, code string) (port.AuthGrant, error) {
	grant, err := a.Client.Auth(ctx, code)
	if err != nil {
		return port.AuthGrant{}, fmt.Errorf("auth bootstrap: %w", err)
	}
	if err := a.Sessions.Activate(grant); err != nil {
		return port.AuthGrant{}, err
	}
	return grant, nil
}

// Bootstrap loads the capability registry. Callers may retry on failure.
func (a *Application) Bootstrap(ctx context.Context) error {
	return a.Registry.Load(ctx)
}
