package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMedicationsStorage — Postgres implementation for medications
type PostgresMedicationsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresMedicationsStorage(pool *pgxpool.Pool) *PostgresMedicationsStorage {
	return &PostgresMedicationsStorage{pool: pool}
}

func (s *PostgresMedicationsStorage) CreateMedication(ctx context.Context, med storage.Medication) (storage.Medication, error) {
	if med.ID == uuid.Nil {
		med.ID = uuid.New()
	}
	if med.CreatedAt.IsZero() {
		med.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO medications (id, user_id, name, dose, times, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		med.ID,
		strings.TrimSpace(med.UserID),
		med.Name,
		med.Dose,
		med.Times,
		med.CreatedAt,
	)
	if err != nil {
		return storage.Medication{}, err
	}
	return med, nil
}

func (s *PostgresMedicationsStorage) ListMedications(ctx context.Context, userID string) ([]storage.Medication, error) {
	const query = `
		SELECT id, user_id, name, dose, times, created_at
		FROM medications
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]storage.Medication, 0)
	for rows.Next() {
		var med storage.Medication
		if err := rows.Scan(&med.ID, &med.UserID, &med.Name, &med.Dose, &med.Times, &med.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, med)
	}
	return result, rows.Err()
}

func (s *PostgresMedicationsStorage) DeleteMedication(ctx context.Context, userID string, id uuid.UUID) error {
	const query = `
		DELETE FROM medications
		WHERE id = $1 AND user_id = $2
	`

	tag, err := s.pool.Exec(ctx, query, id, strings.TrimSpace(userID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresMedicationsStorage) ListMedicationsDueAt(ctx context.Context, hhmm string) ([]storage.Medication, error) {
	const query = `
		SELECT id, user_id, name, dose, times, created_at
		FROM medications
		WHERE $1 = ANY(times)
		ORDER BY user_id, created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, hhmm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]storage.Medication, 0)
	for rows.Next() {
		var med storage.Medication
		if err := rows.Scan(&med.ID, &med.UserID, &med.Name, &med.Dose, &med.Times, &med.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, med)
	}
	return result, rows.Err()
}
