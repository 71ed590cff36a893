package intakes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/settings"
	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/fdg312/health-navigator/internal/userctx"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrDailyLimitExceeded = errors.New("daily water limit exceeded")
)

type goalsProvider interface {
	GetOrDefault(ctx context.Context, userID string) (settings.SettingsResponse, error)
}

// Service содержит бизнес-логику учёта выпитой воды.
type Service struct {
	waterStorage    storage.WaterIntakesStorage
	settingsService goalsProvider
	config          *config.Config
	now             func() time.Time
}

func NewService(waterStorage storage.WaterIntakesStorage, settingsService goalsProvider, cfg *config.Config) *Service {
	return &Service{
		waterStorage:    waterStorage,
		settingsService: settingsService,
		config:          cfg,
		now:             time.Now,
	}
}

func (s *Service) AddWater(ctx context.Context, req AddWaterRequest) (WaterIntakeDTO, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return WaterIntakeDTO{}, ErrUnauthorized
	}

	amount := req.AmountMl
	if amount == 0 {
		amount = s.config.IntakesWaterDefaultAddMl
	}
	if amount <= 0 || amount > s.config.IntakesMaxWaterMlPerDay {
		return WaterIntakeDTO{}, ErrInvalidRequest
	}

	from, to := s.todayWindow()
	currentTotal, err := s.waterStorage.WaterTotal(ctx, userID, from, to)
	if err != nil {
		return WaterIntakeDTO{}, err
	}
	if currentTotal+amount > s.config.IntakesMaxWaterMlPerDay {
		return WaterIntakeDTO{}, ErrDailyLimitExceeded
	}

	created, err := s.waterStorage.AddWaterIntake(ctx, storage.WaterIntake{
		UserID:    userID,
		AmountMl:  amount,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return WaterIntakeDTO{}, err
	}

	return toDTO(created), nil
}

func (s *Service) WaterToday(ctx context.Context) (*WaterTodayResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	from, to := s.todayWindow()

	total, err := s.waterStorage.WaterTotal(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	rows, err := s.waterStorage.ListWaterIntakes(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]WaterIntakeDTO, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toDTO(row))
	}

	goalMl := s.config.DefaultHydrationGoalMl
	if s.settingsService != nil {
		if resp, err := s.settingsService.GetOrDefault(ctx, userID); err == nil {
			goalMl = resp.Settings.HydrationGoalMl
		}
	}

	return &WaterTodayResponse{
		Date:    s.now().Format("2006-01-02"),
		TotalMl: total,
		GoalMl:  goalMl,
		Entries: entries,
	}, nil
}

// WaterTotalToday возвращает суммарный объём за сегодня.
// Используется калькулятором health score.
func (s *Service) WaterTotalToday(ctx context.Context, userID string) (int, error) {
	from, to := s.todayWindow()
	return s.waterStorage.WaterTotal(ctx, userID, from, to)
}

// todayWindow — от локальной полуночи до текущего момента.
func (s *Service) todayWindow() (time.Time, time.Time) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight, now
}

func userIDFromContext(ctx context.Context) string {
	userID, ok := userctx.GetUserID(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(userID)
}
