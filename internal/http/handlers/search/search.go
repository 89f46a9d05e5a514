// Package search реализует HTTP-обработчик интерактивного поиска
// round-trip перелетов.
//
// Обработчик различает три исхода для пользователя: пустой результат
// "по этим критериям ничего не найдено" (не ошибка), недоступность
// fare-API (временная ошибка) и некорректный ввод (исправимая ошибка).
package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/fare-aggregator/internal/http/response"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/dates"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
	"github.com/magabrotheeeer/fare-aggregator/internal/ryanair"
)

// Handler управляет HTTP-запросами интерактивного поиска.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики поиска.
type Service interface {
	Search(ctx context.Context, input models.SearchInput) ([]models.TripOffer, error)
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
// @Summary Поиск round-trip перелетов
// @Description Возвращает до десяти самых дешевых round-trip предложений за месяц.
// @Tags Search
// @Accept  json
// @Produce  json
// @Param request body models.SearchInput true "Параметры поиска"
// @Success 200 {object} map[string]any "Найденные предложения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Fare-API недоступен"
// @Router /search [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SearchInput
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

	offers, err := h.service.Search(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, dates.ErrInvalidDate):
			log.Warn("invalid search input", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("invalid search month"))
		case errors.Is(err, ryanair.ErrNetwork), errors.Is(err, ryanair.ErrUpstreamStatus), errors.Is(err, ryanair.ErrMalformed):
			log.Error("fare api unavailable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("could not reach the fare search service, try again later"))
		default:
			log.Error("search failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("search failed"))
		}
		return
	}

	if len(offers) == 0 {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"trips":   []models.TripOffer{},
			"message": "no round trips found matching your criteria",
		}))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"trips": offers,
		"count": len(offers),
	}))
}
