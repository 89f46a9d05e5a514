// Package sampler собирает историю цен: для каждого отслеживаемого
// маршрута запрашивает цены по дням следующего месяца в обоих
// направлениях и отправляет пакет точек в хранилище истории.
package sampler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fare-aggregator/internal/config"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/dates"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/metrics"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
	"github.com/magabrotheeeer/fare-aggregator/internal/ryanair"
)

// FareAPI запрос цен по дням месяца
type FareAPI interface {
	CheapestPerDay(ctx context.Context, origin, destination string, monthDate time.Time, currency string) ([]byte, error)
}

// HistorySink приемник пакетов точек истории. Один вызов — одна
// логическая запись по маршруту.
type HistorySink interface {
	AppendBatch(ctx context.Context, points []models.DailyPricePoint) error
}

// Service сборщик истории цен
type Service struct {
	api      FareAPI
	parser   *ryanair.Parser
	sink     HistorySink
	routes   []config.TrackedRoute
	currency string
	log      *slog.Logger
}

// New создает новый Service
func New(api FareAPI, parser *ryanair.Parser, sink HistorySink, routes []config.TrackedRoute, currency string, log *slog.Logger) *Service {
	return &Service{
		api:      api,
		parser:   parser,
		sink:     sink,
		routes:   routes,
		currency: currency,
		log:      log,
	}
}

// RunTick собирает цены следующего календарного месяца по всем
// отслеживаемым маршрутам. Ошибка одного маршрута не мешает остальным.
func (s *Service) RunTick(ctx context.Context) {
	const op = "sampler.RunTick"
	log := s.log.With(slog.String("op", op))

	metrics.SchedulerTicks.WithLabelValues("sampler").Inc()

	monthDate := dates.FirstOfNextMonth(time.Now().UTC())
	log.Info("sampling daily prices",
		slog.String("month", monthDate.Format("2006-01")),
		slog.Int("routes", len(s.routes)))

	for _, route := range s.routes {
		s.sampleRoute(ctx, route, monthDate)
	}
}

// sampleRoute собирает обе стороны маршрута в один пакет. Маршрут,
// не давший ни одной точки, пропускается без пустой записи.
func (s *Service) sampleRoute(ctx context.Context, route config.TrackedRoute, monthDate time.Time) {
	log := s.log.With(
		slog.String("origin", route.Origin),
		slog.String("destination", route.Destination),
	)

	legs := []struct {
		from, to  string
		direction models.Direction
	}{
		{route.Origin, route.Destination, models.DirectionOutbound},
		{route.Destination, route.Origin, models.DirectionInbound},
	}

	var points []models.DailyPricePoint
	for _, leg := range legs {
		body, err := s.api.CheapestPerDay(ctx, leg.from, leg.to, monthDate, s.currency)
		if err != nil {
			log.Warn("daily fares fetch failed",
				slog.String("direction", string(leg.direction)),
				sl.Err(err))
			continue
		}
		fares, err := s.parser.ParseCheapestPerDay(body, monthDate.Year(), int(monthDate.Month()), s.currency)
		if err != nil {
			log.Warn("daily fares parse failed",
				slog.String("direction", string(leg.direction)),
				sl.Err(err))
			continue
		}
		for _, fare := range fares {
			points = append(points, models.DailyPricePoint{
				Origin:        route.Origin,
				Destination:   route.Destination,
				Direction:     leg.direction,
				DepartureDate: time.Date(monthDate.Year(), monthDate.Month(), fare.Day, 0, 0, 0, 0, time.UTC),
				Price:         fare.Price,
				Currency:      fare.Currency,
			})
		}
	}

	if len(points) == 0 {
		log.Info("no daily fares for route, skipping write")
		return
	}
	if err := s.sink.AppendBatch(ctx, points); err != nil {
		log.Error("failed to append price history batch", sl.Err(err))
		return
	}
	log.Info("route sampled", slog.Int("points", len(points)))
}
