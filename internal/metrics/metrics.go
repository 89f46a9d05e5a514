// Package metrics объявляет прометеевские метрики сервиса.
// Метрики регистрируются в реестре по умолчанию и отдаются
// через promhttp в HTTP-приложениях.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FareQueries счетчик запросов к fare-API по конечной точке и исходу
	FareQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fare_queries_total",
		Help: "Number of fare API queries by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// FareQueryDuration длительность запросов к fare-API
	FareQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fare_query_duration_seconds",
		Help:    "Duration of fare API queries.",
		Buckets: prometheus.DefBuckets,
	})

	// ParseDrops счетчик записей ответа, отброшенных при разборе
	ParseDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fare_parse_dropped_entries_total",
		Help: "Number of fare entries dropped during parsing.",
	})

	// SchedulerTicks счетчик запусков периодических задач
	SchedulerTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_ticks_total",
		Help: "Number of scheduler job runs by job name.",
	}, []string{"job"})

	// DealsNotified счетчик сделок, по которым отправлены оповещения
	DealsNotified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deal_alerts_sent_total",
		Help: "Number of deals included in successfully delivered alerts.",
	})

	// AlertSendFailures счетчик неудачных доставок оповещений
	AlertSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deal_alert_send_failures_total",
		Help: "Number of failed alert deliveries.",
	})

	// HistoryRows счетчик строк истории цен, записанных в хранилище
	HistoryRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_history_rows_written_total",
		Help: "Number of daily price points appended to the history store.",
	})
)
