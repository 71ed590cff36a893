package settings

import (
	"fmt"

	"github.com/fdg312/health-navigator/internal/storage"
)

type SettingsDTO struct {
	StepGoal         int     `json:"step_goal"`
	SleepGoalHours   float64 `json:"sleep_goal_hours"`
	HydrationGoalMl  int     `json:"hydration_goal_ml"`
	AutoSyncEnabled  bool    `json:"auto_sync_enabled"`
	RemindersEnabled bool    `json:"reminders_enabled"`
}

type SettingsResponse struct {
	Settings  SettingsDTO `json:"settings"`
	IsDefault bool        `json:"is_default"`
}

func (s SettingsDTO) Validate() error {
	if s.StepGoal < 1000 || s.StepGoal > 50000 {
		return fmt.Errorf("step_goal must be in range 1000..50000")
	}
	if s.SleepGoalHours < 4 || s.SleepGoalHours > 14 {
		return fmt.Errorf("sleep_goal_hours must be in range 4..14")
	}
	if s.HydrationGoalMl < 500 || s.HydrationGoalMl > 8000 {
		return fmt.Errorf("hydration_goal_ml must be in range 500..8000")
	}
	return nil
}

func dtoFromStorage(s storage.UserSettings) SettingsDTO {
	return SettingsDTO{
		StepGoal:         s.StepGoal,
		SleepGoalHours:   s.SleepGoalHours,
		HydrationGoalMl:  s.HydrationGoalMl,
		AutoSyncEnabled:  s.AutoSyncEnabled,
		RemindersEnabled: s.RemindersEnabled,
	}
}

func dtoToStorage(userID string, dto SettingsDTO) storage.UserSettings {
	return storage.UserSettings{
		UserID:           userID,
		StepGoal:         dto.StepGoal,
		SleepGoalHours:   dto.SleepGoalHours,
		HydrationGoalMl:  dto.HydrationGoalMl,
		AutoSyncEnabled:  dto.AutoSyncEnabled,
		RemindersEnabled: dto.RemindersEnabled,
	}
}
