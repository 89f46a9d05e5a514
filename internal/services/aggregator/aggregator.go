// Package aggregator сводит результаты fare-поиска по одной или многим
// парам аэропортов к "самому дешевому" предложению.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
	"github.com/magabrotheeeer/fare-aggregator/internal/ryanair"
)

// FareAPI интерфейс клиента fare-API
type FareAPI interface {
	SearchRoundTrips(ctx context.Context, q models.RouteQuery) ([]byte, error)
	CheapestPerDay(ctx context.Context, origin, destination string, monthDate time.Time, currency string) ([]byte, error)
}

// Service реализует агрегацию по маршрутам. Фан-аут по парам ограничен
// пулом из workers горутин, чтобы не превышать лимиты удаленной стороны.
type Service struct {
	api     FareAPI
	parser  *ryanair.Parser
	workers int
	log     *slog.Logger
}

// New создает новый Service
func New(api FareAPI, parser *ryanair.Parser, workers int, log *slog.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		api:     api,
		parser:  parser,
		workers: workers,
		log:     log,
	}
}

// CheapestForPair ищет round-trip предложения по одной паре и возвращает
// их отсортированными по возрастанию итоговой цены. Сортировка стабильная:
// при равной цене сохраняется порядок ответа.
func (s *Service) CheapestForPair(ctx context.Context, q models.RouteQuery) ([]models.TripOffer, error) {
	const op = "aggregator.CheapestForPair"

	body, err := s.api.SearchRoundTrips(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	offers, err := s.parser.ParseRoundTrips(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].TotalPrice < offers[j].TotalPrice
	})
	return offers, nil
}

// CheapestAcrossPairs ищет минимум по декартову произведению
// origins x destinations без пар с совпадающими аэропортами.
// Сбой одной пары логируется и не прерывает остальные. Возвращает nil,
// если ни одна пара не дала предложения с ценой.
func (s *Service) CheapestAcrossPairs(ctx context.Context, origins, destinations []string, window models.DateWindow, durationMin, durationMax int, currency string) *models.TripOffer {
	var (
		mu   sync.Mutex
		best *models.TripOffer
	)

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for _, origin := range origins {
		for _, destination := range destinations {
			if strings.EqualFold(origin, destination) {
				continue
			}
			q := models.RouteQuery{
				Origin:      origin,
				Destination: destination,
				Window:      window,
				DurationMin: durationMin,
				DurationMax: durationMax,
				Currency:    currency,
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(q models.RouteQuery) {
				defer wg.Done()
				defer func() { <-sem }()

				offers, err := s.CheapestForPair(ctx, q)
				if err != nil {
					s.log.Warn("pair search failed",
						slog.String("origin", q.Origin),
						slog.String("destination", q.Destination),
						sl.Err(err))
					return
				}
				if len(offers) == 0 {
					return
				}
				mu.Lock()
				// строгое < : при равенстве остается найденный раньше минимум
				if best == nil || offers[0].TotalPrice < best.TotalPrice {
					top := offers[0]
					best = &top
				}
				mu.Unlock()
			}(q)
		}
	}
	wg.Wait()
	return best
}

// CheapestPerDestination держит минимальную итоговую цену по каждому
// направлению из фиксированного origin. Просматриваются все предложения
// направления, а не только первое: порядок ответа не считается
// отсортированным по цене. Сбои направлений независимы.
func (s *Service) CheapestPerDestination(ctx context.Context, origin string, destinations []string, window models.DateWindow, durationMin, durationMax int, currency string) map[string]models.TripOffer {
	result := make(map[string]models.TripOffer, len(destinations))
	for _, destination := range destinations {
		if strings.EqualFold(origin, destination) {
			continue
		}
		q := models.RouteQuery{
			Origin:      origin,
			Destination: destination,
			Window:      window,
			DurationMin: durationMin,
			DurationMax: durationMax,
			Currency:    currency,
		}
		offers, err := s.CheapestForPair(ctx, q)
		if err != nil {
			s.log.Warn("destination search failed",
				slog.String("origin", origin),
				slog.String("destination", destination),
				sl.Err(err))
			continue
		}
		for _, offer := range offers {
			current, ok := result[destination]
			if !ok || offer.TotalPrice < current.TotalPrice {
				result[destination] = offer
			}
		}
	}
	return result
}
