package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fare-aggregator/internal/lib/dates"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) CheapestForPair(ctx context.Context, q models.RouteQuery) ([]models.TripOffer, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TripOffer), args.Error(1)
}

type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockResultCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

var (
	_ Aggregator  = (*MockAggregator)(nil)
	_ ResultCache = (*MockResultCache)(nil)
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func offersOf(prices ...float64) []models.TripOffer {
	result := make([]models.TripOffer, 0, len(prices))
	for _, p := range prices {
		result = append(result, models.TripOffer{TotalPrice: p, Currency: "EUR"})
	}
	return result
}

// TestSearch проверяет вычисление окна, умолчания длительностей и
// ограничение результата десятью предложениями
func TestSearch(t *testing.T) {
	agg := new(MockAggregator)
	var captured models.RouteQuery
	agg.On("CheapestForPair", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(models.RouteQuery)
		}).
		Return(offersOf(10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21), nil).Once()

	service := New(agg, nil, "EUR", newNoopLogger())
	offers, err := service.Search(context.Background(), models.SearchInput{
		Origin:      "sof",
		Destination: "bcn",
		Month:       "2025-05",
	})

	require.NoError(t, err)
	assert.Len(t, offers, 10)

	assert.Equal(t, "SOF", captured.Origin)
	assert.Equal(t, "BCN", captured.Destination)
	assert.Equal(t, 2, captured.DurationMin)
	assert.Equal(t, 7, captured.DurationMax)
	assert.Equal(t, "EUR", captured.Currency)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), captured.Window.OutboundFrom)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), captured.Window.InboundTo)
}

// TestSearch_InvalidMonth проверяет ошибку разбора месяца
func TestSearch_InvalidMonth(t *testing.T) {
	agg := new(MockAggregator)

	service := New(agg, nil, "EUR", newNoopLogger())
	_, err := service.Search(context.Background(), models.SearchInput{
		Origin:      "SOF",
		Destination: "BCN",
		Month:       "not-a-month",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, dates.ErrInvalidDate)
	agg.AssertNotCalled(t, "CheapestForPair", mock.Anything, mock.Anything)
}

// TestSearch_CacheHit проверяет, что попадание в кеш не ходит к агрегатору
func TestSearch_CacheHit(t *testing.T) {
	agg := new(MockAggregator)
	cache := new(MockResultCache)

	cacheKey := "search:SOF:BCN:2025-05:2:7"
	cache.On("Get", mock.Anything, cacheKey, mock.Anything).Return(true, nil).Once()

	service := New(agg, cache, "EUR", newNoopLogger())
	_, err := service.Search(context.Background(), models.SearchInput{
		Origin:      "SOF",
		Destination: "BCN",
		Month:       "2025-05",
	})

	require.NoError(t, err)
	agg.AssertNotCalled(t, "CheapestForPair", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

// TestSearch_CacheMissStoresResult проверяет запись результата в кеш
func TestSearch_CacheMissStoresResult(t *testing.T) {
	agg := new(MockAggregator)
	cache := new(MockResultCache)

	cacheKey := "search:SOF:BCN:2025-05:3:5"
	cache.On("Get", mock.Anything, cacheKey, mock.Anything).Return(false, nil).Once()
	agg.On("CheapestForPair", mock.Anything, mock.Anything).Return(offersOf(25.00), nil).Once()
	cache.On("Set", mock.Anything, cacheKey, mock.Anything, 10*time.Minute).Return(nil).Once()

	service := New(agg, cache, "EUR", newNoopLogger())
	offers, err := service.Search(context.Background(), models.SearchInput{
		Origin:      "SOF",
		Destination: "BCN",
		Month:       "2025-05",
		DurationMin: 3,
		DurationMax: 5,
	})

	require.NoError(t, err)
	assert.Len(t, offers, 1)
	cache.AssertExpectations(t)
}

// TestSearch_CacheErrorsNotFatal проверяет, что сбои кеша не мешают поиску
func TestSearch_CacheErrorsNotFatal(t *testing.T) {
	agg := new(MockAggregator)
	cache := new(MockResultCache)

	cache.On("Get", mock.Anything, mock.Anything, mock.Anything).
		Return(false, errors.New("redis down")).Once()
	agg.On("CheapestForPair", mock.Anything, mock.Anything).Return(offersOf(25.00), nil).Once()
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("redis down")).Once()

	service := New(agg, cache, "EUR", newNoopLogger())
	offers, err := service.Search(context.Background(), models.SearchInput{
		Origin:      "SOF",
		Destination: "BCN",
		Month:       "2025-05",
	})

	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

// TestSearch_AggregatorError проверяет проброс ошибки поиска
func TestSearch_AggregatorError(t *testing.T) {
	agg := new(MockAggregator)
	agg.On("CheapestForPair", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("upstream down")).Once()

	service := New(agg, nil, "EUR", newNoopLogger())
	_, err := service.Search(context.Background(), models.SearchInput{
		Origin:      "SOF",
		Destination: "BCN",
		Month:       "2025-05",
	})

	require.Error(t, err)
}
