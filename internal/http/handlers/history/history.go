// Package history реализует HTTP-обработчик выборки временного ряда цен
// по маршруту для построения графиков.
package history

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fare-aggregator/internal/http/response"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// Handler управляет HTTP-запросами чтения истории цен.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки временного ряда.
type Service interface {
	ReadPriceSeries(ctx context.Context, filter models.HistoryFilter) ([]models.DailyPricePoint, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Временной ряд цен по маршруту
// @Tags History
// @Produce  json
// @Param origin query string true "IATA-код вылета"
// @Param destination query string true "IATA-код назначения"
// @Param direction query string false "outbound или inbound" default(outbound)
// @Param from query string true "Начало диапазона дат вылета, 2006-01-02"
// @Param to query string true "Конец диапазона дат вылета, 2006-01-02"
// @Success 200 {object} map[string]any "Точки временного ряда"
// @Failure 422 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.history"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter, err := parseFilter(r)
	if err != nil {
		log.Warn("invalid history query", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	points, err := h.service.ReadPriceSeries(r.Context(), filter)
	if err != nil {
		log.Error("failed to read price series", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read price history"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"points": points,
		"count":  len(points),
	}))
}

func parseFilter(r *http.Request) (models.HistoryFilter, error) {
	q := r.URL.Query()

	origin := strings.ToUpper(q.Get("origin"))
	destination := strings.ToUpper(q.Get("destination"))
	if len(origin) != 3 || len(destination) != 3 {
		return models.HistoryFilter{}, errInvalidQuery("origin and destination must be 3-letter IATA codes")
	}

	direction := models.Direction(q.Get("direction"))
	if direction == "" {
		direction = models.DirectionOutbound
	}
	if direction != models.DirectionOutbound && direction != models.DirectionInbound {
		return models.HistoryFilter{}, errInvalidQuery("direction must be outbound or inbound")
	}

	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		return models.HistoryFilter{}, errInvalidQuery("from must be a date in format 2006-01-02")
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		return models.HistoryFilter{}, errInvalidQuery("to must be a date in format 2006-01-02")
	}
	if to.Before(from) {
		return models.HistoryFilter{}, errInvalidQuery("to must not be before from")
	}

	return models.HistoryFilter{
		Origin:      origin,
		Destination: destination,
		Direction:   direction,
		From:        from,
		To:          to,
	}, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return string(e) }
