// Package models содержит доменные структуры поиска перелетов:
// окно дат, запрос по маршруту, нормализованные предложения,
// точки истории цен и правила оповещений.
package models

import (
	"fmt"
	"time"
)

// DateWindow окно поиска для месяца путешествия.
// OutboundFrom — первый день месяца, OutboundTo — последний день месяца,
// InboundFrom совпадает с OutboundFrom, InboundTo — последний день
// следующего месяца.
type DateWindow struct {
	OutboundFrom time.Time
	OutboundTo   time.Time
	InboundFrom  time.Time
	InboundTo    time.Time
}

// RouteQuery параметры round-trip поиска по одной паре аэропортов.
// Origin и Destination — трехбуквенные IATA-коды, Origin != Destination.
type RouteQuery struct {
	Origin      string
	Destination string
	Window      DateWindow
	DurationMin int
	DurationMax int
	Currency    string
}

// FlightLeg одно плечо перелета.
type FlightLeg struct {
	FlightNumber  string  `json:"flight_no"`
	DepartureTime string  `json:"dep_time"`
	ArrivalTime   string  `json:"arr_time"`
	Price         float64 `json:"price"`
}

// TripOffer нормализованное предложение round-trip перелета,
// полученное из ответа fare-API.
type TripOffer struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	TotalPrice  float64   `json:"total_price"`
	Currency    string    `json:"currency"`
	Outbound    FlightLeg `json:"outbound"`
	Inbound     FlightLeg `json:"inbound"`
}

// Direction направление перелета для точки истории цен
type Direction string

const (
	// DirectionOutbound перелет из origin в destination
	DirectionOutbound Direction = "outbound"
	// DirectionInbound обратный перелет
	DirectionInbound Direction = "inbound"
)

// DailyPricePoint цена за конкретный день вылета. Строки append-only,
// CollectedAt присваивается хранилищем в момент записи и не изменяется.
type DailyPricePoint struct {
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Direction     Direction `json:"direction"`
	DepartureDate time.Time `json:"departure_date"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	CollectedAt   time.Time `json:"collected_at,omitempty"`
}

// HistoryFilter параметры выборки временного ряда из истории цен
type HistoryFilter struct {
	Origin      string
	Destination string
	Direction   Direction
	From        time.Time
	To          time.Time
}

// AlertRule пользовательское правило оповещения о дешевых перелетах.
// SearchMonth хранится строкой в формате 2006-01. Правило не изменяется
// на месте: редактирование — это удаление и создание заново.
type AlertRule struct {
	ID          string    `json:"id" validate:"required"`
	Origin      string    `json:"origin" validate:"required,alpha,len=3"`
	Destination string    `json:"destination" validate:"required,alpha,len=3,nefield=Origin"`
	SearchMonth string    `json:"search_month" validate:"required,datetime=2006-01"`
	DurationMin int       `json:"duration_min" validate:"required,gte=1"`
	DurationMax int       `json:"duration_max" validate:"required,gtefield=DurationMin"`
	Threshold   float64   `json:"threshold" validate:"required,gt=0"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotifiedDealKey производный идентификатор уже отправленного оповещения.
// Два наблюдения одной и той же сделки дают одинаковый ключ, поэтому
// повторное оповещение подавляется. Изменение цены или даты вылета
// дает новый ключ — это считается новой сделкой.
type NotifiedDealKey struct {
	RuleID      string
	Destination string
	TotalPrice  float64
	OutboundDep string
}

// DealKey строит ключ дедупликации для предложения, найденного по правилу
func DealKey(ruleID string, offer TripOffer) NotifiedDealKey {
	return NotifiedDealKey{
		RuleID:      ruleID,
		Destination: offer.Destination,
		TotalPrice:  offer.TotalPrice,
		OutboundDep: offer.Outbound.DepartureTime,
	}
}

func (k NotifiedDealKey) String() string {
	return fmt.Sprintf("%s|%s|%.2f|%s", k.RuleID, k.Destination, k.TotalPrice, k.OutboundDep)
}
