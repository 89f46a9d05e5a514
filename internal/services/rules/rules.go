// Package rules реализует бизнес-логику управления правилами оповещений.
// Правила принадлежат хранилищу; движок оповещений их только читает.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/fare-aggregator/internal/models"
)

// Repository хранилище правил
type Repository interface {
	AddRule(ctx context.Context, rule models.AlertRule) error
	ListRules(ctx context.Context) ([]models.AlertRule, error)
	DeleteRuleByID(ctx context.Context, id string) (int64, error)
}

// Service бизнес-логика правил оповещений
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый Service
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create создает правило с новым id и возвращает его
func (s *Service) Create(ctx context.Context, input models.CreateRuleInput) (string, error) {
	const op = "rules.Create"

	rule := models.AlertRule{
		ID:          uuid.NewString(),
		Origin:      strings.ToUpper(input.Origin),
		Destination: strings.ToUpper(input.Destination),
		SearchMonth: input.SearchMonth,
		DurationMin: input.DurationMin,
		DurationMax: input.DurationMax,
		Threshold:   input.Threshold,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.AddRule(ctx, rule); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return rule.ID, nil
}

// List возвращает все правила
func (s *Service) List(ctx context.Context) ([]models.AlertRule, error) {
	const op = "rules.List"

	result, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Delete удаляет правило по id, возвращает количество удаленных строк
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	const op = "rules.Delete"

	count, err := s.repo.DeleteRuleByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
