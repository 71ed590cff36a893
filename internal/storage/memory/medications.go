package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
)

// MedicationsMemoryStorage — in-memory storage for medications
type MedicationsMemoryStorage struct {
	mu          sync.RWMutex
	medications map[uuid.UUID]storage.Medication
}

func NewMedicationsMemoryStorage() *MedicationsMemoryStorage {
	return &MedicationsMemoryStorage{
		medications: make(map[uuid.UUID]storage.Medication),
	}
}

func (s *MedicationsMemoryStorage) CreateMedication(ctx context.Context, med storage.Medication) (storage.Medication, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if med.ID == uuid.Nil {
		med.ID = uuid.New()
	}
	if med.CreatedAt.IsZero() {
		med.CreatedAt = time.Now().UTC()
	}

	times := make([]string, len(med.Times))
	copy(times, med.Times)
	med.Times = times

	s.medications[med.ID] = med
	return med, nil
}

func (s *MedicationsMemoryStorage) ListMedications(ctx context.Context, userID string) ([]storage.Medication, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]storage.Medication, 0)
	for _, med := range s.medications {
		if med.UserID == userID {
			result = append(result, med)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MedicationsMemoryStorage) DeleteMedication(ctx context.Context, userID string, id uuid.UUID) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	med, ok := s.medications[id]
	if !ok || med.UserID != userID {
		return ErrNotFound
	}

	delete(s.medications, id)
	return nil
}

func (s *MedicationsMemoryStorage) ListMedicationsDueAt(ctx context.Context, hhmm string) ([]storage.Medication, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]storage.Medication, 0)
	for _, med := range s.medications {
		for _, t := range med.Times {
			if t == hhmm {
				result = append(result, med)
				break
			}
		}
	}
	return result, nil
}
