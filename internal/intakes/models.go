package intakes

import (
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
)

type WaterIntakeDTO struct {
	ID        uuid.UUID `json:"id"`
	AmountMl  int       `json:"amount_ml"`
	CreatedAt time.Time `json:"created_at"`
}

type AddWaterRequest struct {
	// AmountMl — объём в миллилитрах. 0 означает «порция по умолчанию».
	AmountMl int `json:"amount_ml"`
}

type WaterTodayResponse struct {
	Date    string           `json:"date"`
	TotalMl int              `json:"total_ml"`
	GoalMl  int              `json:"goal_ml"`
	Entries []WaterIntakeDTO `json:"entries"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toDTO(intake storage.WaterIntake) WaterIntakeDTO {
	return WaterIntakeDTO{
		ID:        intake.ID,
		AmountMl:  intake.AmountMl,
		CreatedAt: intake.CreatedAt,
	}
}
