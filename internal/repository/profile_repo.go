package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutricoach-backend/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error) {
	p := &models.Profile{}
	query := `SELECT telegram_id, COALESCE(goal, ''), COALESCE(meal_frequency, ''),
			COALESCE(target_calories, 0), COALESCE(target_protein, 0), COALESCE(target_fat, 0), COALESCE(target_carbs, 0),
			COALESCE(weight, 0), COALESCE(age, 0), COALESCE(gender, '')
		FROM users WHERE telegram_id = $1`

	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&p.TelegramID, &p.Goal, &p.MealFrequency,
		&p.TargetCalories, &p.TargetProtein, &p.TargetFat, &p.TargetCarbs,
		&p.Weight, &p.Age, &p.Gender,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load profile %d: %w", telegramID, err)
	}
	return p, nil
}
