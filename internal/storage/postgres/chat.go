package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresChatStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresChatStorage(pool *pgxpool.Pool) *PostgresChatStorage {
	return &PostgresChatStorage{pool: pool}
}

func (s *PostgresChatStorage) InsertChatMessage(ctx context.Context, msg storage.ChatMessage) (storage.ChatMessage, error) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.UserID = strings.TrimSpace(msg.UserID)
	msg.Role = strings.TrimSpace(msg.Role)

	sources, err := json.Marshal(msg.Sources)
	if err != nil {
		return storage.ChatMessage{}, err
	}

	const query = `
		INSERT INTO chat_messages (id, user_id, role, content, client_msg_id, sources, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.pool.Exec(ctx, query,
		msg.ID,
		msg.UserID,
		msg.Role,
		msg.Content,
		msg.ClientMsgID,
		sources,
		msg.CreatedAt,
	)
	if err != nil {
		return storage.ChatMessage{}, err
	}
	return msg, nil
}

func (s *PostgresChatStorage) ListChatMessages(ctx context.Context, userID string, limit int) ([]storage.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	// последние limit строк в хронологическом порядке
	const query = `
		SELECT id, user_id, role, content, client_msg_id, sources, created_at
		FROM (
			SELECT id, user_id, role, content, client_msg_id, sources, created_at
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) AS page
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, strings.TrimSpace(userID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]storage.ChatMessage, 0, limit)
	for rows.Next() {
		var msg storage.ChatMessage
		var sources []byte
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Content, &msg.ClientMsgID, &sources, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &msg.Sources); err != nil {
				return nil, err
			}
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
