package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
)

// ReportsMemoryStorage — in-memory storage for report metadata
type ReportsMemoryStorage struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]storage.ReportMeta
}

func NewReportsMemoryStorage() *ReportsMemoryStorage {
	return &ReportsMemoryStorage{
		reports: make(map[uuid.UUID]storage.ReportMeta),
	}
}

func (s *ReportsMemoryStorage) CreateReport(ctx context.Context, report storage.ReportMeta) (storage.ReportMeta, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	s.reports[report.ID] = report
	return report, nil
}

func (s *ReportsMemoryStorage) GetReport(ctx context.Context, userID string, id uuid.UUID) (storage.ReportMeta, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok || report.UserID != userID {
		return storage.ReportMeta{}, ErrNotFound
	}
	return report, nil
}

func (s *ReportsMemoryStorage) ListReports(ctx context.Context, userID string, limit int) ([]storage.ReportMeta, error) {
	_ = ctx

	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]storage.ReportMeta, 0)
	for _, report := range s.reports {
		if report.UserID == userID {
			result = append(result, report)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
