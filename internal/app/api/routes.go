// Package api предоставляет HTTP-приложение: маршруты управления
// правилами, интерактивный поиск и чтение истории цен.
package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/fare-aggregator/internal/http/handlers/health"
	"github.com/magabrotheeeer/fare-aggregator/internal/http/handlers/history"
	rulecreate "github.com/magabrotheeeer/fare-aggregator/internal/http/handlers/rule/create"
	rulelist "github.com/magabrotheeeer/fare-aggregator/internal/http/handlers/rule/list"
	ruleremove "github.com/magabrotheeeer/fare-aggregator/internal/http/handlers/rule/remove"
	searchhandler "github.com/magabrotheeeer/fare-aggregator/internal/http/handlers/search"
	rulesservice "github.com/magabrotheeeer/fare-aggregator/internal/services/rules"
	searchservice "github.com/magabrotheeeer/fare-aggregator/internal/services/search"
	"github.com/magabrotheeeer/fare-aggregator/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, rulesService *rulesservice.Service, searchService *searchservice.Service, storage *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rules", rulecreate.New(logger, rulesService).ServeHTTP)
		r.Get("/rules", rulelist.New(logger, rulesService).ServeHTTP)
		r.Delete("/rules/{id}", ruleremove.New(logger, rulesService).ServeHTTP)
		r.Post("/search", searchhandler.New(logger, searchService).ServeHTTP)
		r.Get("/history", history.New(logger, storage).ServeHTTP)
	})

	r.Get("/health", health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
