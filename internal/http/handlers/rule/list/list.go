// Package list реализует HTTP-обработчик для чтения всех правил оповещений.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fare-aggregator/internal/http/response"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// Handler управляет HTTP-запросами на чтение правил оповещений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения правил.
type Service interface {
	List(ctx context.Context) ([]models.AlertRule, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список правил оповещений
// @Tags Rules
// @Produce  json
// @Success 200 {object} map[string]any "Список правил"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /rules [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rule.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list alert rules", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list alert rules"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"rules": result,
		"count": len(result),
	}))
}
