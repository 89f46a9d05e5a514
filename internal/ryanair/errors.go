// Package ryanair реализует клиент публичного fare-API Ryanair:
// построение запросов двух форм (round-trip поиск и цены по дням месяца),
// классификацию исходов и типизированный разбор ответов.
package ryanair

import "errors"

// Классификация исходов запроса к fare-API. Вызывающий код различает
// их через errors.Is и сам решает, что делать с неудачной единицей работы.
var (
	// ErrUpstreamStatus не-2xx ответ. Автоматически не повторяется:
	// 4xx означает некорректные параметры, а не временный сбой.
	ErrUpstreamStatus = errors.New("fare api returned unexpected status")
	// ErrNetwork таймаут, отказ соединения или ошибка DNS
	ErrNetwork = errors.New("fare api is unreachable")
	// ErrMalformed 2xx ответ, тело которого не соответствует ожидаемой структуре
	ErrMalformed = errors.New("fare api returned malformed response")
)
