// Package create реализует HTTP-обработчик для создания правил оповещений.
//
// Handler принимает JSON-запрос с параметрами правила, валидирует их,
// вызывает бизнес-логику создания правила через сервис и возвращает ID
// созданной записи в JSON-формате.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/fare-aggregator/internal/http/response"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// Handler управляет HTTP-запросами на создание правил оповещений.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания правила.
type Service interface {
	Create(ctx context.Context, input models.CreateRuleInput) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать правило оповещения
// @Description Создает правило оповещения о дешевых перелетах. Возвращает ID созданной записи.
// @Tags Rules
// @Accept  json
// @Produce  json
// @Param request body models.CreateRuleInput true "Параметры правила"
// @Success 200 {object} map[string]any "Успешное создание правила"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании правила"
// @Router /rules [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.rule.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateRuleInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.service.Create(r.Context(), req)
	if err != nil {
		log.Error("failed to create alert rule", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create alert rule"))
		return
	}

	log.Info("alert rule created", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
