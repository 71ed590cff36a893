package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/storage"
)

// syncController применяет переключатель auto_sync_enabled к фоновому
// циклу синхронизации метрик.
type syncController interface {
	ApplyAutoSync(userID string, enabled bool)
}

// Service содержит бизнес-логику настроек пользователя.
// Пока пользователь ничего не сохранял, отдаются дефолты из конфигурации.
type Service struct {
	storage storage.SettingsStorage
	config  *config.Config
	sync    syncController
}

func NewService(settingsStorage storage.SettingsStorage, cfg *config.Config) *Service {
	return &Service{
		storage: settingsStorage,
		config:  cfg,
	}
}

// SetSyncController подключает цикл автосинхронизации. Вызывается при
// сборке сервера: metrics-сервис создаётся позже settings.
func (s *Service) SetSyncController(c syncController) {
	s.sync = c
}

func (s *Service) GetOrDefault(ctx context.Context, userID string) (SettingsResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return SettingsResponse{}, fmt.Errorf("user_id is required")
	}

	row, err := s.storage.GetSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return SettingsResponse{
				Settings:  dtoFromStorage(s.defaults(userID)),
				IsDefault: true,
			}, nil
		}
		return SettingsResponse{}, err
	}

	return SettingsResponse{
		Settings:  dtoFromStorage(row),
		IsDefault: false,
	}, nil
}

func (s *Service) Upsert(ctx context.Context, userID string, dto SettingsDTO) (SettingsDTO, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return SettingsDTO{}, fmt.Errorf("user_id is required")
	}

	if err := dto.Validate(); err != nil {
		return SettingsDTO{}, err
	}

	row, err := s.storage.UpsertSettings(ctx, dtoToStorage(userID, dto))
	if err != nil {
		return SettingsDTO{}, err
	}

	// Сохранённый переключатель сразу применяется к фоновому циклу.
	// Старт и стоп идемпотентны, проверять прежнее значение не нужно.
	if s.sync != nil {
		s.sync.ApplyAutoSync(userID, row.AutoSyncEnabled)
	}
	return dtoFromStorage(row), nil
}

// SetAutoSync сохраняет только флаг автосинхронизации, не трогая
// остальные настройки. Цикл здесь не переключается: метод зовёт сам
// metrics-сервис, у которого цикл уже применён.
func (s *Service) SetAutoSync(ctx context.Context, userID string, enabled bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}

	resp, err := s.GetOrDefault(ctx, userID)
	if err != nil {
		return err
	}

	row := dtoToStorage(userID, resp.Settings)
	row.AutoSyncEnabled = enabled
	_, err = s.storage.UpsertSettings(ctx, row)
	return err
}

func (s *Service) defaults(userID string) storage.UserSettings {
	return storage.UserSettings{
		UserID:           userID,
		StepGoal:         s.config.DefaultStepGoal,
		SleepGoalHours:   s.config.DefaultSleepGoalHours,
		HydrationGoalMl:  s.config.DefaultHydrationGoalMl,
		AutoSyncEnabled:  false,
		RemindersEnabled: s.config.RemindersEnabled,
	}
}
