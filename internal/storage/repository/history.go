package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// AppendBatch вставляет пакет точек истории цен одной транзакцией.
// collected_at присваивается базой в момент записи.
func (s *Storage) AppendBatch(ctx context.Context, points []models.DailyPricePoint) error {
	const op = "storage.AppendBatch"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO price_history (origin, destination, direction,
			      departure_date, price, currency)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	for _, point := range points {
		_, err := tx.ExecContext(ctx, query,
			point.Origin, point.Destination, string(point.Direction),
			point.DepartureDate, point.Price, point.Currency)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadPriceSeries возвращает временной ряд цен по маршруту и направлению,
// отсортированный по collected_at по возрастанию.
func (s *Storage) ReadPriceSeries(ctx context.Context, filter models.HistoryFilter) ([]models.DailyPricePoint, error) {
	const op = "storage.ReadPriceSeries"

	query := `SELECT origin, destination, direction, departure_date,
			      price, currency, collected_at
			  FROM price_history
			  WHERE origin = $1 AND destination = $2 AND direction = $3
			      AND departure_date >= $4 AND departure_date <= $5
			  ORDER BY collected_at ASC`
	rows, err := s.DB.QueryContext(ctx, query,
		filter.Origin, filter.Destination, string(filter.Direction),
		filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.DailyPricePoint
	for rows.Next() {
		var point models.DailyPricePoint
		var direction string
		err := rows.Scan(&point.Origin, &point.Destination, &direction,
			&point.DepartureDate, &point.Price, &point.Currency, &point.CollectedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		point.Direction = models.Direction(direction)
		result = append(result, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
