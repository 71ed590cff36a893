package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSettingsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresSettingsStorage(pool *pgxpool.Pool) *PostgresSettingsStorage {
	return &PostgresSettingsStorage{pool: pool}
}

func (s *PostgresSettingsStorage) GetSettings(ctx context.Context, userID string) (storage.UserSettings, error) {
	const query = `
		SELECT user_id, step_goal, sleep_goal_hours, hydration_goal_ml,
		       auto_sync_enabled, reminders_enabled, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var row storage.UserSettings
	err := s.pool.QueryRow(ctx, query, strings.TrimSpace(userID)).Scan(
		&row.UserID,
		&row.StepGoal,
		&row.SleepGoalHours,
		&row.HydrationGoalMl,
		&row.AutoSyncEnabled,
		&row.RemindersEnabled,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.UserSettings{}, ErrNotFound
		}
		return storage.UserSettings{}, err
	}
	return row, nil
}

func (s *PostgresSettingsStorage) UpsertSettings(ctx context.Context, settings storage.UserSettings) (storage.UserSettings, error) {
	const query = `
		INSERT INTO user_settings (
			user_id, step_goal, sleep_goal_hours, hydration_goal_ml,
			auto_sync_enabled, reminders_enabled, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			step_goal = EXCLUDED.step_goal,
			sleep_goal_hours = EXCLUDED.sleep_goal_hours,
			hydration_goal_ml = EXCLUDED.hydration_goal_ml,
			auto_sync_enabled = EXCLUDED.auto_sync_enabled,
			reminders_enabled = EXCLUDED.reminders_enabled,
			updated_at = NOW()
		RETURNING user_id, step_goal, sleep_goal_hours, hydration_goal_ml,
		          auto_sync_enabled, reminders_enabled, updated_at
	`

	var out storage.UserSettings
	err := s.pool.QueryRow(ctx, query,
		strings.TrimSpace(settings.UserID),
		settings.StepGoal,
		settings.SleepGoalHours,
		settings.HydrationGoalMl,
		settings.AutoSyncEnabled,
		settings.RemindersEnabled,
	).Scan(
		&out.UserID,
		&out.StepGoal,
		&out.SleepGoalHours,
		&out.HydrationGoalMl,
		&out.AutoSyncEnabled,
		&out.RemindersEnabled,
		&out.UpdatedAt,
	)
	if err != nil {
		return storage.UserSettings{}, err
	}
	return out, nil
}
