package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/fdg312/health-navigator/internal/userctx"
	"github.com/google/uuid"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrMedicationNotFound    = errors.New("medication not found")
	ErrMaxMedicationsReached = errors.New("max medications reached")
)

// Service содержит бизнес-логику лекарств и дневного расписания.
type Service struct {
	medsStorage storage.MedicationsStorage
}

func NewService(medsStorage storage.MedicationsStorage) *Service {
	return &Service{medsStorage: medsStorage}
}

func (s *Service) List(ctx context.Context) (*ListMedicationsResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	rows, err := s.medsStorage.ListMedications(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]MedicationDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDTO(row))
	}
	return &ListMedicationsResponse{Medications: result}, nil
}

func (s *Service) Create(ctx context.Context, req CreateMedicationRequest) (*MedicationDTO, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := req.Validate(); err != nil {
		return nil, ErrInvalidRequest
	}

	existing, err := s.medsStorage.ListMedications(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxMedicationsPerUser {
		return nil, ErrMaxMedicationsReached
	}

	times, err := normalizeTimes(req.Times)
	if err != nil {
		return nil, ErrInvalidRequest
	}

	row, err := s.medsStorage.CreateMedication(ctx, storage.Medication{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		Dose:      strings.TrimSpace(req.Dose),
		Times:     times,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(row)
	return &dto, nil
}

func (s *Service) Delete(ctx context.Context, medicationID uuid.UUID) error {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return ErrUnauthorized
	}
	if medicationID == uuid.Nil {
		return ErrInvalidRequest
	}

	if err := s.medsStorage.DeleteMedication(ctx, userID, medicationID); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return ErrMedicationNotFound
		}
		return err
	}
	return nil
}

func (s *Service) TodaySchedule(ctx context.Context, now time.Time) (*TodayScheduleResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	rows, err := s.medsStorage.ListMedications(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TodayScheduleResponse{Entries: BuildSchedule(rows, now)}, nil
}

func (s *Service) NextDoseAt(ctx context.Context, now time.Time) (*NextDoseResponse, error) {
	schedule, err := s.TodaySchedule(ctx, now)
	if err != nil {
		return nil, err
	}

	entry, diff := NextDose(schedule.Entries, now)
	return &NextDoseResponse{Entry: entry, DiffMinutes: diff}, nil
}

func userIDFromContext(ctx context.Context) string {
	userID, ok := userctx.GetUserID(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(userID)
}
