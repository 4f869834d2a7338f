// Package dashboard собирает HTTP-сервер дашборда: хранилище, кеш, шим и маршруты.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/cache"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/handlers/health"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/jwt"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/metrics"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/auth"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/plandesc"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage/driver"
)

type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []io.Closer
}

// New поднимает зависимости по конфигу и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "dashboard.New"

	app := &App{logger: logger}

	store, err := driver.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.closers = append(app.closers, store)
	var pinger health.Pinger
	if store.DB != nil {
		pinger = store.DB
	}

	var snapshotCache shim.Cache = cache.Noop{}
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, redisCache)
		snapshotCache = redisCache
	} else {
		logger.Info("redis address is empty, snapshot cache disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	actions := shim.New(logger, store, snapshotCache, metrics.NewActionMetrics(registry), cfg.SnapshotTTL)
	gate := auth.NewGate(cfg.Credentials, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL))

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:    logger,
		Shim:      actions,
		Gate:      gate,
		Health:    health.New(logger, pinger),
		Registry:  registry,
		Billing:   cfg.Billing,
		Limit:     cfg.RateLimit,
		Now:       time.Now,
		Describer: plandesc.New(cfg.AI, cfg.CurrencySymbol, logger),
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Handler возвращает корневой роутер. Используется в тестах.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
