package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresWaterIntakesStorage — Postgres implementation for water intakes
type PostgresWaterIntakesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresWaterIntakesStorage(pool *pgxpool.Pool) *PostgresWaterIntakesStorage {
	return &PostgresWaterIntakesStorage{pool: pool}
}

func (s *PostgresWaterIntakesStorage) AddWaterIntake(ctx context.Context, intake storage.WaterIntake) (storage.WaterIntake, error) {
	if intake.ID == uuid.Nil {
		intake.ID = uuid.New()
	}
	if intake.CreatedAt.IsZero() {
		intake.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO water_intakes (id, user_id, amount_ml, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		intake.ID,
		strings.TrimSpace(intake.UserID),
		intake.AmountMl,
		intake.CreatedAt,
	)
	if err != nil {
		return storage.WaterIntake{}, err
	}
	return intake, nil
}

func (s *PostgresWaterIntakesStorage) ListWaterIntakes(ctx context.Context, userID string, from, to time.Time) ([]storage.WaterIntake, error) {
	const query = `
		SELECT id, user_id, amount_ml, created_at
		FROM water_intakes
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, strings.TrimSpace(userID), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]storage.WaterIntake, 0)
	for rows.Next() {
		var intake storage.WaterIntake
		if err := rows.Scan(&intake.ID, &intake.UserID, &intake.AmountMl, &intake.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, intake)
	}
	return result, rows.Err()
}

func (s *PostgresWaterIntakesStorage) WaterTotal(ctx context.Context, userID string, from, to time.Time) (int, error) {
	const query = `
		SELECT COALESCE(SUM(amount_ml), 0)
		FROM water_intakes
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
	`

	var total int
	err := s.pool.QueryRow(ctx, query, strings.TrimSpace(userID), from, to).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
