package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
)

// WaterIntakesMemoryStorage — in-memory storage for water intakes
type WaterIntakesMemoryStorage struct {
	mu      sync.RWMutex
	intakes []storage.WaterIntake
}

func NewWaterIntakesMemoryStorage() *WaterIntakesMemoryStorage {
	return &WaterIntakesMemoryStorage{
		intakes: make([]storage.WaterIntake, 0),
	}
}

func (s *WaterIntakesMemoryStorage) AddWaterIntake(ctx context.Context, intake storage.WaterIntake) (storage.WaterIntake, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if intake.ID == uuid.Nil {
		intake.ID = uuid.New()
	}
	if intake.CreatedAt.IsZero() {
		intake.CreatedAt = time.Now().UTC()
	}

	s.intakes = append(s.intakes, intake)
	return intake, nil
}

func (s *WaterIntakesMemoryStorage) ListWaterIntakes(ctx context.Context, userID string, from, to time.Time) ([]storage.WaterIntake, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]storage.WaterIntake, 0)
	for _, intake := range s.intakes {
		if intake.UserID != userID {
			continue
		}
		if intake.CreatedAt.Before(from) || intake.CreatedAt.After(to) {
			continue
		}
		result = append(result, intake)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *WaterIntakesMemoryStorage) WaterTotal(ctx context.Context, userID string, from, to time.Time) (int, error) {
	rows, err := s.ListWaterIntakes(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, intake := range rows {
		total += intake.AmountMl
	}
	return total, nil
}
