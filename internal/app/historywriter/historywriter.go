// Package historywriter содержит сборку потребителя очереди истории цен:
// принимает пакеты точек из RabbitMQ и записывает их в PostgreSQL.
package historywriter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fare-aggregator/internal/config"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/metrics"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
	"github.com/magabrotheeeer/fare-aggregator/internal/rabbitmq"
	"github.com/magabrotheeeer/fare-aggregator/internal/storage/repository"
)

// App представляет приложение записи истории цен.
type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	db      *repository.Storage
	workers int
	logger  *slog.Logger
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

// New создает новый экземпляр приложения записи истории.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetHistoryQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(db); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &App{
		conn:    conn,
		ch:      ch,
		db:      db,
		workers: cfg.RabbitMQWorkers,
		logger:  logger,
	}, nil
}

// handleBatch возвращает обработчик пакета точек истории. Нечитаемый
// пакет помечается битым и не возвращается в очередь, сбой записи
// в базу приводит к повторной доставке.
func (a *App) handleBatch(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		var points []models.DailyPricePoint
		if err := json.Unmarshal(body, &points); err != nil {
			a.logger.Error("failed to unmarshal history batch", sl.Err(err))
			return fmt.Errorf("%w: %v", rabbitmq.ErrBadMessage, err)
		}
		if err := a.db.AppendBatch(ctx, points); err != nil {
			a.logger.Error("failed to append history batch", sl.Err(err))
			return err
		}
		metrics.HistoryRows.Add(float64(len(points)))
		a.logger.Info("history batch written", slog.Int("points", len(points)))
		return nil
	}
}

// Run запускает потребителя и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	queues := rabbitmq.GetHistoryQueues()
	if err := rabbitmq.ConsumerMessage(ctx, a.ch, queues[0].QueueName, a.workers, a.logger, a.handleBatch(ctx)); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	<-ctx.Done()

	a.logger.Info("shutting down history writer")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	_ = a.db.DB.Close()

	return nil
}
