// Package main содержит точку входа для сервиса записи истории цен.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/fare-aggregator/internal/app/historywriter"
	"github.com/magabrotheeeer/fare-aggregator/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting history-writer", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := historywriter.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize history-writer app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("history-writer app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("history-writer app stopped gracefully")
}
