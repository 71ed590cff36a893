package metrics

import (
	"time"

	"github.com/fdg312/health-navigator/internal/googlefit"
	"github.com/fdg312/health-navigator/internal/score"
)

// SnapshotDTO — агрегированное состояние метрик за сегодня.
// Статусы различают настоящий ноль и отсутствие данных.
type SnapshotDTO struct {
	Steps          int    `json:"steps"`
	StepsStatus    string `json:"steps_status"`
	CaloriesKcal   int    `json:"calories_kcal"`
	CaloriesStatus string `json:"calories_status"`

	DistanceKm     float64 `json:"distance_km"`
	DistanceStatus string  `json:"distance_status"`

	SleepHours   float64 `json:"sleep_hours"`
	SleepMessage string  `json:"sleep_message,omitempty"`
	SleepStatus  string  `json:"sleep_status"`

	HeartRate       *int                   `json:"heart_rate,omitempty"`
	HeartRateHourly []googlefit.TrendPoint `json:"heart_rate_hourly,omitempty"`
	HeartRateStatus string                 `json:"heart_rate_status"`

	SyncedAt time.Time `json:"synced_at"`
}

type SnapshotResponse struct {
	Snapshot *SnapshotDTO       `json:"snapshot"`
	Score    *score.HealthScore `json:"score,omitempty"`
}

type ScoreResponse struct {
	Score *score.HealthScore `json:"score"`
}

type TrendsResponse struct {
	StepsIntraday    []googlefit.TrendPoint `json:"steps_intraday"`
	DistanceIntraday []googlefit.TrendPoint `json:"distance_intraday"`
	StepsWeekly      []googlefit.TrendPoint `json:"steps_weekly"`
	CaloriesWeekly   []googlefit.TrendPoint `json:"calories_weekly"`
	DistanceWeekly   []googlefit.TrendPoint `json:"distance_weekly"`
	HeartRateWeekly  []googlefit.TrendPoint `json:"heart_rate_weekly"`
	SleepWeekly      []googlefit.TrendPoint `json:"sleep_weekly"`
}

const (
	OutcomeSynced = "synced"
	OutcomeNoData = "no_data"
)

type SyncResponse struct {
	Outcome  string             `json:"outcome"`
	Messages []string           `json:"messages,omitempty"`
	Snapshot *SnapshotDTO       `json:"snapshot,omitempty"`
	Score    *score.HealthScore `json:"score,omitempty"`
}

type AutoSyncRequest struct {
	Enabled bool `json:"enabled"`
}

type AutoSyncResponse struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"interval_seconds"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
