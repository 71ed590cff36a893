package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
)

// SettingsMemoryStorage — in-memory storage for user settings
type SettingsMemoryStorage struct {
	mu       sync.RWMutex
	settings map[string]storage.UserSettings
}

func NewSettingsMemoryStorage() *SettingsMemoryStorage {
	return &SettingsMemoryStorage{
		settings: make(map[string]storage.UserSettings),
	}
}

func (s *SettingsMemoryStorage) GetSettings(ctx context.Context, userID string) (storage.UserSettings, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[userID]
	if !ok {
		return storage.UserSettings{}, ErrNotFound
	}
	return settings, nil
}

func (s *SettingsMemoryStorage) UpsertSettings(ctx context.Context, settings storage.UserSettings) (storage.UserSettings, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	settings.UpdatedAt = time.Now().UTC()
	s.settings[settings.UserID] = settings
	return settings, nil
}
