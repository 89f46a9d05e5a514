// Package search реализует интерактивный round-trip поиск: вычисляет
// окно дат по месяцу, запрашивает предложения и возвращает десять
// самых дешевых. Результаты ненадолго кешируются, чтобы повторные
// запросы не ходили к удаленной стороне.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/fare-aggregator/internal/lib/dates"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

const (
	topTrips            = 10
	defaultDurationMin  = 2
	defaultDurationMax  = 7
	resultCacheDuration = 10 * time.Minute
)

// Aggregator поиск предложений по одной паре аэропортов
type Aggregator interface {
	CheapestForPair(ctx context.Context, q models.RouteQuery) ([]models.TripOffer, error)
}

// ResultCache кеш результатов поиска
type ResultCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service интерактивный поиск
type Service struct {
	agg      Aggregator
	cache    ResultCache // может быть nil
	currency string
	log      *slog.Logger
}

// New создает новый Service. cache может быть nil.
func New(agg Aggregator, cache ResultCache, currency string, log *slog.Logger) *Service {
	return &Service{
		agg:      agg,
		cache:    cache,
		currency: currency,
		log:      log,
	}
}

// Search возвращает до десяти самых дешевых round-trip предложений.
// Пустой список — корректный результат "ничего не найдено".
func (s *Service) Search(ctx context.Context, input models.SearchInput) ([]models.TripOffer, error) {
	const op = "search.Search"

	year, month, err := dates.ParseMonth(input.Month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	window, err := dates.MonthWindow(year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	durationMin := input.DurationMin
	if durationMin == 0 {
		durationMin = defaultDurationMin
	}
	durationMax := input.DurationMax
	if durationMax == 0 {
		durationMax = defaultDurationMax
	}

	q := models.RouteQuery{
		Origin:      strings.ToUpper(input.Origin),
		Destination: strings.ToUpper(input.Destination),
		Window:      window,
		DurationMin: durationMin,
		DurationMax: durationMax,
		Currency:    s.currency,
	}

	cacheKey := fmt.Sprintf("search:%s:%s:%s:%d:%d", q.Origin, q.Destination, input.Month, durationMin, durationMax)
	if s.cache != nil {
		var cached []models.TripOffer
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.log.Warn("search cache lookup failed", sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	offers, err := s.agg.CheapestForPair(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(offers) > topTrips {
		offers = offers[:topTrips]
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, offers, resultCacheDuration); err != nil {
			s.log.Warn("failed to cache search results", sl.Err(err))
		}
	}
	return offers, nil
}
