package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
)

// NotificationsMemoryStorage — in-memory storage for notifications
type NotificationsMemoryStorage struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]storage.Notification
}

func NewNotificationsMemoryStorage() *NotificationsMemoryStorage {
	return &NotificationsMemoryStorage{
		notifications: make(map[uuid.UUID]storage.Notification),
	}
}

func (s *NotificationsMemoryStorage) CreateNotification(ctx context.Context, n storage.Notification) (storage.Notification, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	s.notifications[n.ID] = n
	return n, nil
}

func (s *NotificationsMemoryStorage) ListNotifications(ctx context.Context, userID string, onlyUnread bool, limit int) ([]storage.Notification, error) {
	_ = ctx

	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]storage.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if onlyUnread && n.ReadAt != nil {
			continue
		}
		result = append(result, n)
	}

	// новые первыми
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *NotificationsMemoryStorage) MarkNotificationRead(ctx context.Context, userID string, id uuid.UUID) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}

	if n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
		s.notifications[id] = n
	}
	return nil
}
