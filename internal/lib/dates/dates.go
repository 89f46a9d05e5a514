// Package dates содержит вычисление окна поиска для месяца путешествия.
// Все остальные компоненты строят диапазоны дат только через этот пакет.
package dates

import (
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// ErrInvalidDate возвращается, когда пара (год, месяц) не образует
// корректную календарную дату.
var ErrInvalidDate = errors.New("invalid date")

// MonthWindow строит окно поиска для заданного месяца: вылет в любой
// день месяца, возврат до конца следующего месяца. Год переходит через
// декабрь автоматически.
func MonthWindow(year, month int) (models.DateWindow, error) {
	if month < 1 || month > 12 {
		return models.DateWindow{}, fmt.Errorf("%w: month %d is out of range", ErrInvalidDate, month)
	}
	if year < 1 || year > 9999 {
		return models.DateWindow{}, fmt.Errorf("%w: year %d is out of range", ErrInvalidDate, year)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return models.DateWindow{
		OutboundFrom: start,
		OutboundTo:   start.AddDate(0, 1, -1),
		InboundFrom:  start,
		InboundTo:    start.AddDate(0, 2, -1),
	}, nil
}

// ParseMonth разбирает строку вида 2006-01 в пару (год, месяц)
func ParseMonth(s string) (int, int, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return t.Year(), int(t.Month()), nil
}

// DaysIn возвращает количество дней в месяце
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstOfNextMonth возвращает первый день следующего календарного месяца
func FirstOfNextMonth(now time.Time) time.Time {
	firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfCurrent.AddDate(0, 1, 0)
}
