package ryanair

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/fare-aggregator/internal/config"
	"github.com/magabrotheeeer/fare-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/fare-aggregator/internal/metrics"
	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// Fare-API отклоняет запросы без браузерного User-Agent
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36"

const (
	endpointRoundTrip      = "roundTripFares"
	endpointCheapestPerDay = "cheapestPerDay"
)

// Client выполняет GET-запросы к fare-API. Не хранит изменяемого
// состояния, безопасен для конкурентных вызовов по разным маршрутам.
// Исходящие запросы проходят через общий rate-лимитер, чтобы фан-аут
// одного тика не упирался в ограничения удаленной стороны.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	retries    int
	retryDelay time.Duration
	log        *slog.Logger
}

// New создает новый Client с настройками из конфига
func New(cfg config.FareAPI, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		retries:    cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		log:        log,
	}
}

// SearchRoundTrips запрашивает round-trip предложения по одной паре
// аэропортов в заданном окне дат и возвращает сырое тело ответа.
func (c *Client) SearchRoundTrips(ctx context.Context, q models.RouteQuery) ([]byte, error) {
	const op = "ryanair.SearchRoundTrips"

	v := url.Values{}
	v.Set("departureAirportIataCode", strings.ToUpper(q.Origin))
	v.Set("market", "en-gb")
	v.Set("adultPaxCount", "1")
	v.Set("arrivalAirportIataCode", strings.ToUpper(q.Destination))
	v.Set("searchMode", "ALL")
	v.Set("outboundDepartureDateFrom", q.Window.OutboundFrom.Format("2006-01-02"))
	v.Set("outboundDepartureDateTo", q.Window.OutboundTo.Format("2006-01-02"))
	v.Set("inboundDepartureDateFrom", q.Window.InboundFrom.Format("2006-01-02"))
	v.Set("inboundDepartureDateTo", q.Window.InboundTo.Format("2006-01-02"))
	v.Set("durationFrom", strconv.Itoa(q.DurationMin))
	v.Set("durationTo", strconv.Itoa(q.DurationMax))
	v.Set("currency", q.Currency)

	endpoint := c.baseURL + "/api/farfnd/v4/roundTripFares?" + v.Encode()
	body, err := c.fetch(ctx, endpointRoundTrip, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return body, nil
}

// CheapestPerDay запрашивает самые дешевые one-way перелеты по дням
// месяца, на первый день которого указывает monthDate.
func (c *Client) CheapestPerDay(ctx context.Context, origin, destination string, monthDate time.Time, currency string) ([]byte, error) {
	const op = "ryanair.CheapestPerDay"

	v := url.Values{}
	v.Set("outboundMonthOfDate", monthDate.Format("2006-01-02"))
	v.Set("currency", currency)

	endpoint := fmt.Sprintf("%s/api/farfnd/v4/oneWayFares/%s/%s/cheapestPerDay?%s",
		c.baseURL, strings.ToUpper(origin), strings.ToUpper(destination), v.Encode())
	body, err := c.fetch(ctx, endpointCheapestPerDay, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return body, nil
}

// fetch выполняет запрос с ограниченным числом повторов.
// Повторяются только сетевые сбои: не-2xx ответ возвращается сразу.
func (c *Client) fetch(ctx context.Context, endpointName, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrNetwork, ctx.Err())
			case <-time.After(delay):
			}
			c.log.Warn("retrying fare api call",
				slog.String("endpoint", endpointName),
				slog.Int("attempt", attempt+1),
				sl.Err(lastErr))
		}
		body, err := c.fetchOnce(ctx, endpointName, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !errors.Is(err, ErrNetwork) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, endpointName, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.FareQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FareQueries.WithLabelValues(endpointName, "network_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		metrics.FareQueries.WithLabelValues(endpointName, "http_error").Inc()
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.FareQueries.WithLabelValues(endpointName, "network_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	metrics.FareQueries.WithLabelValues(endpointName, "success").Inc()
	return body, nil
}
