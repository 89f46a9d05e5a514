package ryanair

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/fare-aggregator/internal/lib/dates"
	"github.com/magabrotheeeer/fare-aggregator/internal/metrics"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// Parser превращает сырые ответы fare-API в нормализованные структуры.
// Обязательные и необязательные поля перечислены явно: обязательные
// представлены указателями, и запись без них отбрасывается с предупреждением,
// а не с ошибкой — частичный сбой разбора не прерывает обработку остальных.
type Parser struct {
	log *slog.Logger
}

// NewParser создает новый Parser
func NewParser(log *slog.Logger) *Parser {
	return &Parser{log: log}
}

// Структура ответа roundTripFares. Указатели отмечают поля, которые
// реально пропадают в ответах.
type roundTripResponse struct {
	Fares []roundTripFare `json:"fares"`
}

type roundTripFare struct {
	Outbound *fareLeg     `json:"outbound"`
	Inbound  *fareLeg     `json:"inbound"`
	Summary  *fareSummary `json:"summary"`
}

type fareSummary struct {
	Price *farePrice `json:"price"`
}

type fareLeg struct {
	DepartureAirport *fareAirport `json:"departureAirport"`
	ArrivalAirport   *fareAirport `json:"arrivalAirport"`
	DepartureDate    string       `json:"departureDate"`
	ArrivalDate      string       `json:"arrivalDate"`
	FlightNumber     string       `json:"flightNumber"`
	Price            *farePrice   `json:"price"`
}

type fareAirport struct {
	IataCode string `json:"iataCode"`
	Name     string `json:"name"`
}

type farePrice struct {
	Value        *float64 `json:"value"`
	CurrencyCode string   `json:"currencyCode"`
}

// Структура ответа cheapestPerDay
type cheapestPerDayResponse struct {
	Outbound struct {
		Fares []dayFareEntry `json:"fares"`
	} `json:"outbound"`
}

type dayFareEntry struct {
	Day         int        `json:"day"`
	Price       *farePrice `json:"price"`
	SoldOut     bool       `json:"soldOut"`
	Unavailable bool       `json:"unavailable"`
}

// DayFare распарсенная цена за один день месяца.
// Day — номер дня месяца, начиная с 1.
type DayFare struct {
	Day      int
	Price    float64
	Currency string
}

// ParseRoundTrips разбирает ответ roundTripFares в список предложений.
// Запись без итоговой цены пропускается с предупреждением. Пустой список
// предложений — корректный результат "сделок нет", а не ошибка.
func (p *Parser) ParseRoundTrips(body []byte) ([]models.TripOffer, error) {
	const op = "ryanair.ParseRoundTrips"

	var resp roundTripResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}

	offers := make([]models.TripOffer, 0, len(resp.Fares))
	for i, fare := range resp.Fares {
		if fare.Summary == nil || fare.Summary.Price == nil || fare.Summary.Price.Value == nil {
			p.log.Warn("skipping fare entry without total price",
				slog.Int("index", i),
				slog.String("missing", missingSummaryField(fare)))
			metrics.ParseDrops.Inc()
			continue
		}
		offer := models.TripOffer{
			TotalPrice: *fare.Summary.Price.Value,
			Currency:   fare.Summary.Price.CurrencyCode,
			Outbound:   mapLeg(fare.Outbound),
			Inbound:    mapLeg(fare.Inbound),
		}
		if fare.Outbound != nil {
			if fare.Outbound.DepartureAirport != nil {
				offer.Origin = fare.Outbound.DepartureAirport.IataCode
			}
			if fare.Outbound.ArrivalAirport != nil {
				offer.Destination = fare.Outbound.ArrivalAirport.IataCode
			}
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func missingSummaryField(fare roundTripFare) string {
	switch {
	case fare.Summary == nil:
		return "summary"
	case fare.Summary.Price == nil:
		return "summary.price"
	default:
		return "summary.price.value"
	}
}

func mapLeg(leg *fareLeg) models.FlightLeg {
	if leg == nil {
		return models.FlightLeg{}
	}
	out := models.FlightLeg{
		FlightNumber:  leg.FlightNumber,
		DepartureTime: leg.DepartureDate,
		ArrivalTime:   leg.ArrivalDate,
	}
	if leg.Price != nil && leg.Price.Value != nil {
		out.Price = *leg.Price.Value
	}
	return out
}

// ParseCheapestPerDay разбирает ответ cheapestPerDay для месяца (year, month).
// Дни без цены (sold out, unavailable) пропускаются. День, которого нет
// в этом месяце — редкая аномалия ответа — отбрасывается с предупреждением.
// Если в ответе нет валюты, подставляется fallbackCurrency.
func (p *Parser) ParseCheapestPerDay(body []byte, year, month int, fallbackCurrency string) ([]DayFare, error) {
	const op = "ryanair.ParseCheapestPerDay"

	var resp cheapestPerDayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}

	daysInMonth := dates.DaysIn(year, month)
	fares := make([]DayFare, 0, len(resp.Outbound.Fares))
	for _, entry := range resp.Outbound.Fares {
		if entry.Price == nil || entry.Price.Value == nil {
			if entry.SoldOut || entry.Unavailable {
				continue
			}
			p.log.Warn("skipping day fare without price", slog.Int("day", entry.Day))
			metrics.ParseDrops.Inc()
			continue
		}
		if entry.Day < 1 || entry.Day > daysInMonth {
			p.log.Warn("skipping day fare outside of month",
				slog.Int("day", entry.Day),
				slog.Int("year", year),
				slog.Int("month", month))
			metrics.ParseDrops.Inc()
			continue
		}
		currency := entry.Price.CurrencyCode
		if currency == "" {
			currency = fallbackCurrency
		}
		fares = append(fares, DayFare{
			Day:      entry.Day,
			Price:    *entry.Price.Value,
			Currency: currency,
		})
	}
	return fares, nil
}
