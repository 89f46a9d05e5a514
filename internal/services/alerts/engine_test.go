package alerts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

type MockRuleStore struct {
	mock.Mock
}

func (m *MockRuleStore) ListRules(ctx context.Context) ([]models.AlertRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AlertRule), args.Error(1)
}

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

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(subject, body, recipient string) error {
	args := m.Called(subject, body, recipient)
	return args.Error(0)
}

type MockDedupCache struct {
	mock.Mock
}

func (m *MockDedupCache) SeenDeal(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDedupCache) MarkDeal(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

var (
	_ RuleStore  = (*MockRuleStore)(nil)
	_ Aggregator = (*MockAggregator)(nil)
	_ Notifier   = (*MockNotifier)(nil)
	_ DedupCache = (*MockDedupCache)(nil)
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testRule() models.AlertRule {
	return models.AlertRule{
		ID:          "rule-1",
		Origin:      "SOF",
		Destination: "BCN",
		SearchMonth: "2025-05",
		DurationMin: 2,
		DurationMax: 7,
		Threshold:   50.00,
		CreatedAt:   time.Now().UTC(),
	}
}

func cheapOffer(price float64, dep string) models.TripOffer {
	return models.TripOffer{
		Origin:      "SOF",
		Destination: "BCN",
		TotalPrice:  price,
		Currency:    "EUR",
		Outbound:    models.FlightLeg{FlightNumber: "FR 1234", DepartureTime: dep},
		Inbound:     models.FlightLeg{FlightNumber: "FR 1235", DepartureTime: "2025-05-14T21:05:00"},
	}
}

// TestRunTick_NotifyOnceThenSuppress проверяет, что одна и та же сделка
// доставляется ровно один раз, а новая сделка по тому же правилу проходит
func TestRunTick_NotifyOnceThenSuppress(t *testing.T) {
	rules := new(MockRuleStore)
	agg := new(MockAggregator)
	notifier := new(MockNotifier)

	offer := cheapOffer(35.50, "2025-05-10T06:30:00")
	rules.On("ListRules", mock.Anything).Return([]models.AlertRule{testRule()}, nil).Times(3)
	agg.On("CheapestForPair", mock.Anything, mock.Anything).
		Return([]models.TripOffer{offer}, nil).Twice()
	notifier.On("Send", mock.Anything, mock.Anything, "user@example.com").Return(nil).Once()

	engine := NewEngine(rules, agg, notifier, nil, NewFindings(), "user@example.com", "EUR", newNoopLogger())

	// первый тик: оповещение уходит
	engine.RunTick(context.Background())
	// второй тик: та же сделка подавляется
	engine.RunTick(context.Background())
	notifier.AssertNumberOfCalls(t, "Send", 1)

	// третий тик: цена упала — это новая сделка
	cheaper := cheapOffer(29.99, "2025-05-10T06:30:00")
	agg.On("CheapestForPair", mock.Anything, mock.Anything).
		Return([]models.TripOffer{cheaper}, nil).Once()
	notifier.On("Send", mock.Anything, mock.Anything, "user@example.com").Return(nil).Once()
	engine.RunTick(context.Background())

	notifier.AssertNumberOfCalls(t, "Send", 2)
	rules.AssertExpectations(t)
	agg.AssertExpectations(t)
}

// TestRunTick_ThresholdIsStrict проверяет строгое сравнение с порогом
func TestRunTick_ThresholdIsStrict(t *testing.T) {
	rules := new(MockRuleStore)
	agg := new(MockAggregator)
	notifier := new(MockNotifier)

	rules.On("ListRules", mock.Anything).Return([]models.AlertRule{testRule()}, nil).Once()
	agg.On("CheapestForPair", mock.Anything, mock.Anything).
		Return([]models.TripOffer{cheapOffer(50.00, "2025-05-10T06:30:00")}, nil).Once()

	engine := NewEngine(rules, agg, notifier, nil, NewFindings(), "user@example.com", "EUR", newNoopLogger())
	engine.RunTick(context.Background())

	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

// TestRunTick_FailedDeliveryStaysEligible проверяет, что при сбое доставки
// ключи не помечаются и сделка уходит на следующем тике
func TestRunTick_FailedDeliveryStaysEligible(t *testing.T) {
	rules := new(MockRuleStore)
	agg := new(MockAggregator)
	notifier := new(MockNotifier)

	offer := cheapOffer(35.50, "2025-05-10T06:30:00")
	rules.On("ListRules", mock.Anything).Return([]models.AlertRule{testRule()}, nil).Twice()
	agg.On("CheapestForPair", mock.Anything, mock.Anything).
		Return([]models.TripOffer{offer}, nil).Twice()
	notifier.On("Send", mock.Anything, mock.Anything, "user@example.com").
		Return(errors.New("smtp connection refused")).Once()
	notifier.On("Send", mock.Anything, mock.Anything, "user@example.com").Return(nil).Once()

	engine := NewEngine(rules, agg, notifier, nil, NewFindings(), "user@example.com", "EUR", newNoopLogger())
	engine.RunTick(context.Background())
	engine.RunTick(context.Background())

	notifier.AssertNumberOfCalls(t, "Send", 2)
	assert.Equal(t, 1, engine.findings.Len())
}

// TestRunTick_InvalidRuleSkipped проверяет изоляцию некорректного правила
func TestRunTick_InvalidRuleSkipped(t *testing.T) {
	rules := new(MockRuleStore)
	agg := new(MockAggregator)
	notifier := new(MockNotifier)

	broken := testRule()
	broken.ID = "rule-broken"
	broken.Destination = "SOF" // совпадает с origin

	valid := testRule()
	rules.On("ListRules", mock.Anything).
		Return([]models.AlertRule{broken, valid}, nil).Once()
	agg.On("CheapestForPair", mock.Anything, mock.MatchedBy(func(q models.RouteQuery) bool {
		return q.Destination == "BCN"
	})).Return([]models.TripOffer{cheapOffer(35.50, "2025-05-10T06:30:00")}, nil).Once()
	notifier.On("Send", mock.Anything, mock.Anything, "user@example.com").Return(nil).Once()

	engine := NewEngine(rules, agg, notifier, nil, NewFindings(), "user@example.com", "EUR", newNoopLogger())
	engine.RunTick(context.Background())

	notifier.AssertNumberOfCalls(t, "Send", 1)
	agg.AssertExpectations(t)
}

// TestRunTick_StoreErrorSkipsTick проверяет пропуск тика при недоступном
// хранилище правил: LastChecked не обновляется
func TestRunTick_StoreErrorSkipsTick(t *testing.T) {
	rules := new(MockRuleStore)
	agg := new(MockAggregator)
	notifier := new(MockNotifier)

	rules.On("ListRules", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	engine := NewEngine(rules, agg, notifier, nil, NewFindings(), "user@example.com", "EUR", newNoopLogger())
	engine.RunTick(context.Background())

	assert.True(t, engine.findings.LastChecked().IsZero())
	agg.AssertNotCalled(t, "CheapestForPair", mock.Anything, mock.Anything)
}

// TestRunTick_SetsLastCheckedOnce проверяет обновление LastChecked после тика
func TestRunTick_SetsLastCheckedOnce(t *testing.T) {
	rules := new(MockRuleStore)
	agg := new(MockAggregator)
	notifier := new(MockNotifier)

	rule := testRule()
	rules.On("ListRules", mock.Anything).Return([]models.AlertRule{rule}, nil).Once()
	agg.On("CheapestForPair", mock.Anything, mock.Anything).
		Return(nil, errors.New("search failed")).Once()

	engine := NewEngine(rules, agg, notifier, nil, NewFindings(), "user@example.com", "EUR", newNoopLogger())
	before := time.Now().UTC()
	engine.RunTick(context.Background())

	// сбой поиска по правилу не мешает обновлению LastChecked
	assert.False(t, engine.findings.LastChecked().Before(before))
}

// TestRunTick_DedupCache проверяет взаимодействие с внешним кешем ключей
func TestRunTick_DedupCache(t *testing.T) {
	offer := cheapOffer(35.50, "2025-05-10T06:30:00")
	key := models.DealKey("rule-1", offer).String()

	t.Run("seen key suppresses notification", func(t *testing.T) {
		rules := new(MockRuleStore)
		agg := new(MockAggregator)
		notifier := new(MockNotifier)
		dedup := new(MockDedupCache)

		rules.On("ListRules", mock.Anything).Return([]models.AlertRule{testRule()}, nil).Once()
		agg.On("CheapestForPair", mock.Anything, mock.Anything).
			Return([]models.TripOffer{offer}, nil).Once()
		dedup.On("SeenDeal", mock.Anything, key).Return(true, nil).Once()

		engine := NewEngine(rules, agg, notifier, dedup, NewFindings(), "user@example.com", "EUR", newNoopLogger())
		engine.RunTick(context.Background())

		notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
		dedup.AssertExpectations(t)
	})

	t.Run("new key is persisted after delivery", func(t *testing.T) {
		rules := new(MockRuleStore)
		agg := new(MockAggregator)
		notifier := new(MockNotifier)
		dedup := new(MockDedupCache)

		rules.On("ListRules", mock.Anything).Return([]models.AlertRule{testRule()}, nil).Once()
		agg.On("CheapestForPair", mock.Anything, mock.Anything).
			Return([]models.TripOffer{offer}, nil).Once()
		dedup.On("SeenDeal", mock.Anything, key).Return(false, nil).Once()
		dedup.On("MarkDeal", mock.Anything, key, mock.Anything).Return(nil).Once()
		notifier.On("Send", mock.Anything, mock.Anything, "user@example.com").Return(nil).Once()

		engine := NewEngine(rules, agg, notifier, dedup, NewFindings(), "user@example.com", "EUR", newNoopLogger())
		engine.RunTick(context.Background())

		dedup.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("cache error treats deal as new", func(t *testing.T) {
		rules := new(MockRuleStore)
		agg := new(MockAggregator)
		notifier := new(MockNotifier)
		dedup := new(MockDedupCache)

		rules.On("ListRules", mock.Anything).Return([]models.AlertRule{testRule()}, nil).Once()
		agg.On("CheapestForPair", mock.Anything, mock.Anything).
			Return([]models.TripOffer{offer}, nil).Once()
		dedup.On("SeenDeal", mock.Anything, key).Return(false, errors.New("redis down")).Once()
		dedup.On("MarkDeal", mock.Anything, key, mock.Anything).Return(errors.New("redis down")).Once()
		notifier.On("Send", mock.Anything, mock.Anything, "user@example.com").Return(nil).Once()

		engine := NewEngine(rules, agg, notifier, dedup, NewFindings(), "user@example.com", "EUR", newNoopLogger())
		engine.RunTick(context.Background())

		notifier.AssertNumberOfCalls(t, "Send", 1)
	})
}

// TestBuildAlertMessage проверяет тему и тело письма
func TestBuildAlertMessage(t *testing.T) {
	offers := []models.TripOffer{
		cheapOffer(35.50, "2025-05-10T06:30:00"),
		cheapOffer(42.00, "2025-05-17T06:30:00"),
	}

	subject, body := buildAlertMessage(testRule(), offers)

	assert.Equal(t, "Flight deal: SOF -> BCN from 35.50 EUR", subject)
	assert.Contains(t, body, "35.50")
	assert.Contains(t, body, "42.00")
	assert.Contains(t, body, "2025-05-10T06:30:00")
	require.Contains(t, body, "FR 1234")
}
