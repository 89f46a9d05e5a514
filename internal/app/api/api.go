package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/fare-aggregator/internal/cache"
	"github.com/magabrotheeeer/fare-aggregator/internal/config"
	"github.com/magabrotheeeer/fare-aggregator/internal/migrations"
	"github.com/magabrotheeeer/fare-aggregator/internal/ryanair"
	"github.com/magabrotheeeer/fare-aggregator/internal/services/aggregator"
	rulesservice "github.com/magabrotheeeer/fare-aggregator/internal/services/rules"
	searchservice "github.com/magabrotheeeer/fare-aggregator/internal/services/search"
	"github.com/magabrotheeeer/fare-aggregator/internal/storage/repository"
)

// App представляет HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает новый экземпляр HTTP-приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	// redis необязателен: без него поиск просто не кешируется
	var searchCache searchservice.ResultCache
	if cfg.RedisConnection.AddressRedis != "" {
		cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		searchCache = cacheRedis
	}

	fareClient := ryanair.New(cfg.FareAPI, logger)
	fareParser := ryanair.NewParser(logger)
	aggService := aggregator.New(fareClient, fareParser, cfg.FareAPI.Workers, logger)

	rulesService := rulesservice.New(db, logger)
	searchService := searchservice.New(aggService, searchCache, cfg.Currency, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, rulesService, searchService, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста.
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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
