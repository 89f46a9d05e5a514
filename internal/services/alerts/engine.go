// Package alerts реализует движок правил оповещений: один тик загружает
// правила, ищет предложения дешевле порога, отсекает уже отправленные
// сделки и доставляет письмо по каждому правилу с новыми сделками.
package alerts

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/fare-aggregator/internal/lib/dates"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/metrics"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// RuleStore хранилище правил оповещений
type RuleStore interface {
	ListRules(ctx context.Context) ([]models.AlertRule, error)
}

// Aggregator поиск предложений по одной паре аэропортов
type Aggregator interface {
	CheapestForPair(ctx context.Context, q models.RouteQuery) ([]models.TripOffer, error)
}

// Notifier граница доставки оповещений. Успех — nil, любая ошибка
// означает, что письмо не доставлено.
type Notifier interface {
	Send(subject, body, recipient string) error
}

// DedupCache необязательное внешнее хранилище ключей дедупликации
// с TTL, чтобы множество не росло бесконечно и переживало рестарт.
type DedupCache interface {
	SeenDeal(ctx context.Context, key string) (bool, error)
	MarkDeal(ctx context.Context, key string, ttl time.Duration) error
}

// Engine движок правил оповещений
type Engine struct {
	rules     RuleStore
	agg       Aggregator
	notifier  Notifier
	dedup     DedupCache // может быть nil
	findings  *Findings
	validate  *validator.Validate
	recipient string
	currency  string
	log       *slog.Logger
}

// NewEngine создает новый Engine. dedup может быть nil — тогда
// дедупликация живет только в памяти процесса.
func NewEngine(rules RuleStore, agg Aggregator, notifier Notifier, dedup DedupCache, findings *Findings, recipient, currency string, log *slog.Logger) *Engine {
	return &Engine{
		rules:     rules,
		agg:       agg,
		notifier:  notifier,
		dedup:     dedup,
		findings:  findings,
		validate:  validator.New(),
		recipient: recipient,
		currency:  currency,
		log:       log,
	}
}

// RunTick выполняет одну проверку всех правил. Ошибки отдельных правил
// не прерывают остальные; недоступность хранилища правил пропускает
// весь тик. LastChecked обновляется один раз после обработки всех
// правил независимо от их исходов.
func (e *Engine) RunTick(ctx context.Context) {
	const op = "alerts.RunTick"
	log := e.log.With(slog.String("op", op))

	metrics.SchedulerTicks.WithLabelValues("alerts").Inc()

	rules, err := e.rules.ListRules(ctx)
	if err != nil {
		log.Error("failed to load alert rules, skipping tick", sl.Err(err))
		return
	}
	log.Info("checking alert rules", slog.Int("count", len(rules)))

	for _, rule := range rules {
		e.evaluateRule(ctx, rule)
	}

	e.findings.SetLastChecked(time.Now().UTC())
}

func (e *Engine) evaluateRule(ctx context.Context, rule models.AlertRule) {
	log := e.log.With(
		slog.String("rule_id", rule.ID),
		slog.String("origin", rule.Origin),
		slog.String("destination", rule.Destination),
	)

	if err := e.validate.Struct(rule); err != nil {
		log.Warn("skipping invalid alert rule", sl.Err(err))
		return
	}
	year, month, err := dates.ParseMonth(rule.SearchMonth)
	if err != nil {
		log.Warn("skipping rule with unparseable month", sl.Err(err))
		return
	}
	window, err := dates.MonthWindow(year, month)
	if err != nil {
		log.Warn("skipping rule with invalid month", sl.Err(err))
		return
	}

	offers, err := e.agg.CheapestForPair(ctx, models.RouteQuery{
		Origin:      rule.Origin,
		Destination: rule.Destination,
		Window:      window,
		DurationMin: rule.DurationMin,
		DurationMax: rule.DurationMax,
		Currency:    e.currency,
	})
	if err != nil {
		log.Warn("fare search failed for rule, will retry next tick", sl.Err(err))
		return
	}

	var (
		fresh []models.TripOffer
		keys  []models.NotifiedDealKey
	)
	for _, offer := range offers {
		if offer.TotalPrice >= rule.Threshold {
			continue
		}
		key := models.DealKey(rule.ID, offer)
		if e.alreadyNotified(ctx, key) {
			continue
		}
		fresh = append(fresh, offer)
		keys = append(keys, key)
	}
	if len(fresh) == 0 {
		log.Info("no new deals for rule")
		return
	}

	subject, body := buildAlertMessage(rule, fresh)
	if err := e.notifier.Send(subject, body, e.recipient); err != nil {
		// ключи не помечаются: те же сделки останутся кандидатами
		// на следующем тике
		log.Error("failed to deliver alert, deals stay eligible", sl.Err(err))
		metrics.AlertSendFailures.Inc()
		return
	}

	e.findings.Mark(keys)
	e.persistKeys(ctx, keys, window, log)
	metrics.DealsNotified.Add(float64(len(fresh)))
	log.Info("alert delivered", slog.Int("deals", len(fresh)))
}

func (e *Engine) alreadyNotified(ctx context.Context, key models.NotifiedDealKey) bool {
	if e.findings.Seen(key) {
		return true
	}
	if e.dedup == nil {
		return false
	}
	seen, err := e.dedup.SeenDeal(ctx, key.String())
	if err != nil {
		// при недоступном кеше считаем сделку новой: повторное письмо
		// хуже, чем потерянное, но пропуск тика хуже обоих
		e.log.Warn("dedup cache lookup failed", sl.Err(err))
		return false
	}
	return seen
}

// persistKeys сохраняет ключи во внешнем кеше. TTL привязан к закрытию
// окна поиска правила: после него сделка уже не может повториться.
func (e *Engine) persistKeys(ctx context.Context, keys []models.NotifiedDealKey, window models.DateWindow, log *slog.Logger) {
	if e.dedup == nil {
		return
	}
	ttl := time.Until(window.InboundTo.AddDate(0, 0, 1))
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	for _, key := range keys {
		if err := e.dedup.MarkDeal(ctx, key.String(), ttl); err != nil {
			log.Warn("failed to persist dedup key", sl.Err(err))
		}
	}
}
