// Package scheduler содержит сборку приложения периодических задач:
// проверка правил оповещений и сбор истории цен.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fare-aggregator/internal/cache"
	"github.com/magabrotheeeer/fare-aggregator/internal/config"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/smtp"
	"github.com/magabrotheeeer/fare-aggregator/internal/rabbitmq"
	"github.com/magabrotheeeer/fare-aggregator/internal/ryanair"
	"github.com/magabrotheeeer/fare-aggregator/internal/services/aggregator"
	"github.com/magabrotheeeer/fare-aggregator/internal/services/alerts"
	"github.com/magabrotheeeer/fare-aggregator/internal/services/sampler"
	schedulerservice "github.com/magabrotheeeer/fare-aggregator/internal/services/scheduler"
	"github.com/magabrotheeeer/fare-aggregator/internal/services/sender"
	"github.com/magabrotheeeer/fare-aggregator/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	runner *schedulerservice.Runner
	conn   *amqp.Connection
	ch     *amqp.Channel
	db     *repository.Storage
	cfg    *config.Config
	logger *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetHistoryQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	// redis необязателен: без него дедупликация живет только в памяти
	var dedup alerts.DedupCache
	if cfg.RedisConnection.AddressRedis != "" {
		cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			closeResources(ch, conn, logger)
			return nil, fmt.Errorf("cache not initialized: %w", err)
		}
		dedup = cacheRedis
	}

	fareClient := ryanair.New(cfg.FareAPI, logger)
	fareParser := ryanair.NewParser(logger)
	aggService := aggregator.New(fareClient, fareParser, cfg.FareAPI.Workers, logger)

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := sender.New(transport, logger)

	engine := alerts.NewEngine(db, aggService, senderService, dedup,
		alerts.NewFindings(), cfg.Alerts.Recipient, cfg.Currency, logger)

	samplerService := sampler.New(fareClient, fareParser,
		rabbitmq.NewHistoryPublisher(ch), cfg.Sampler.TrackedRoutes, cfg.Currency, logger)

	runner := schedulerservice.NewRunner(logger,
		&schedulerservice.Job{
			Name:     "alerts",
			Interval: cfg.Alerts.AlertsInterval,
			Run:      engine.RunTick,
		},
		&schedulerservice.Job{
			Name:     "sampler",
			Interval: cfg.Sampler.SamplerInterval,
			Run:      samplerService.RunTick,
		},
	)

	return &App{
		runner: runner,
		conn:   conn,
		ch:     ch,
		db:     db,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.MetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(a.cfg.MetricsAddress, mux); err != nil {
				a.logger.Error("metrics server stopped", sl.Err(err))
			}
		}()
	}

	go a.runner.Start(ctx)

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")

	closeResources(a.ch, a.conn, a.logger)
	_ = a.db.DB.Close()

	return nil
}
