package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// AddRule вставляет новое правило оповещения.
func (s *Storage) AddRule(ctx context.Context, rule models.AlertRule) error {
	const op = "storage.AddRule"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO alert_rules (id, origin, destination, search_month,
			      duration_min, duration_max, threshold)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		rule.ID, rule.Origin, rule.Destination, rule.SearchMonth,
		rule.DurationMin, rule.DurationMax, rule.Threshold)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListRules возвращает все правила оповещений.
func (s *Storage) ListRules(ctx context.Context) ([]models.AlertRule, error) {
	const op = "storage.ListRules"

	query := `SELECT id, origin, destination, search_month,
			      duration_min, duration_max, threshold, created_at
			  FROM alert_rules
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.AlertRule
	for rows.Next() {
		var rule models.AlertRule
		err := rows.Scan(&rule.ID, &rule.Origin, &rule.Destination, &rule.SearchMonth,
			&rule.DurationMin, &rule.DurationMax, &rule.Threshold, &rule.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteRuleByID удаляет правило по ID и возвращает количество удалённых строк.
func (s *Storage) DeleteRuleByID(ctx context.Context, id string) (int64, error) {
	const op = "storage.DeleteRuleByID"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM alert_rules WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}
