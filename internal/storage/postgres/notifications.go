package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresNotificationsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresNotificationsStorage(pool *pgxpool.Pool) *PostgresNotificationsStorage {
	return &PostgresNotificationsStorage{pool: pool}
}

func (s *PostgresNotificationsStorage) CreateNotification(ctx context.Context, n storage.Notification) (storage.Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO notifications (id, user_id, kind, title, body, created_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		n.ID,
		strings.TrimSpace(n.UserID),
		n.Kind,
		n.Title,
		n.Body,
		n.CreatedAt,
		n.ReadAt,
	)
	if err != nil {
		return storage.Notification{}, err
	}
	return n, nil
}

func (s *PostgresNotificationsStorage) ListNotifications(ctx context.Context, userID string, onlyUnread bool, limit int) ([]storage.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, kind, title, body, created_at, read_at
		FROM notifications
		WHERE user_id = $1
	`
	if onlyUnread {
		query += ` AND read_at IS NULL`
	}
	query += `
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, strings.TrimSpace(userID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]storage.Notification, 0)
	for rows.Next() {
		var n storage.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (s *PostgresNotificationsStorage) MarkNotificationRead(ctx context.Context, userID string, id uuid.UUID) error {
	const query = `
		UPDATE notifications
		SET read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, id, strings.TrimSpace(userID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// либо нет записи, либо уже прочитана — проверяем наличие
		const existsQuery = `SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2`
		var one int
		if err := s.pool.QueryRow(ctx, existsQuery, id, strings.TrimSpace(userID)).Scan(&one); err != nil {
			return ErrNotFound
		}
	}
	return nil
}
