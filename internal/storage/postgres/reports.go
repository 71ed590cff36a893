package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresReportsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresReportsStorage(pool *pgxpool.Pool) *PostgresReportsStorage {
	return &PostgresReportsStorage{pool: pool}
}

func (s *PostgresReportsStorage) CreateReport(ctx context.Context, report storage.ReportMeta) (storage.ReportMeta, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO reports (id, user_id, object_key, data, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		report.ID,
		strings.TrimSpace(report.UserID),
		report.ObjectKey,
		report.Data,
		report.SizeBytes,
		report.CreatedAt,
	)
	if err != nil {
		return storage.ReportMeta{}, err
	}
	return report, nil
}

func (s *PostgresReportsStorage) GetReport(ctx context.Context, userID string, id uuid.UUID) (storage.ReportMeta, error) {
	const query = `
		SELECT id, user_id, object_key, data, size_bytes, created_at
		FROM reports
		WHERE id = $1 AND user_id = $2
	`

	var report storage.ReportMeta
	err := s.pool.QueryRow(ctx, query, id, strings.TrimSpace(userID)).Scan(
		&report.ID,
		&report.UserID,
		&report.ObjectKey,
		&report.Data,
		&report.SizeBytes,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ReportMeta{}, ErrNotFound
		}
		return storage.ReportMeta{}, err
	}
	return report, nil
}

func (s *PostgresReportsStorage) ListReports(ctx context.Context, userID string, limit int) ([]storage.ReportMeta, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, user_id, object_key, data, size_bytes, created_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, strings.TrimSpace(userID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]storage.ReportMeta, 0)
	for rows.Next() {
		var report storage.ReportMeta
		if err := rows.Scan(&report.ID, &report.UserID, &report.ObjectKey, &report.Data, &report.SizeBytes, &report.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	return result, rows.Err()
}
