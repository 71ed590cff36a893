package googlefit

// Completeness описывает, насколько полным оказался ответ провайдера.
// Отличает настоящий ноль от отсутствия данных.
type Completeness int

const (
	NoData Completeness = iota
	Partial
	Complete
)

func (c Completeness) String() string {
	switch c {
	case Complete:
		return "complete"
	case Partial:
		return "partial"
	default:
		return "no_data"
	}
}

const (
	dataTypeSteps     = "com.google.step_count.delta"
	dataTypeCalories  = "com.google.calories.expended"
	dataTypeDistance  = "com.google.distance.delta"
	dataTypeHeartRate = "com.google.heart_rate.bpm"

	dataSourceSteps = "derived:com.google.step_count.delta:com.google.android.gms:estimated_steps"

	sleepActivityType = 72
)

type aggregateRequest struct {
	AggregateBy     []aggregateBy `json:"aggregateBy"`
	BucketByTime    bucketByTime  `json:"bucketByTime"`
	StartTimeMillis int64         `json:"startTimeMillis"`
	EndTimeMillis   int64         `json:"endTimeMillis"`
}

type aggregateBy struct {
	DataTypeName string `json:"dataTypeName"`
	DataSourceID string `json:"dataSourceId,omitempty"`
}

type bucketByTime struct {
	DurationMillis int64 `json:"durationMillis"`
}

// Google возвращает миллисекунды строками, поэтому поля строковые.
type aggregateResponse struct {
	Bucket []bucket `json:"bucket"`
}

type bucket struct {
	StartTimeMillis string    `json:"startTimeMillis"`
	EndTimeMillis   string    `json:"endTimeMillis"`
	Dataset         []dataset `json:"dataset"`
}

type dataset struct {
	DataSourceID string  `json:"dataSourceId"`
	Point        []point `json:"point"`
}

type point struct {
	StartTimeNanos string       `json:"startTimeNanos"`
	EndTimeNanos   string       `json:"endTimeNanos"`
	Value          []pointValue `json:"value"`
}

type pointValue struct {
	IntVal *int64   `json:"intVal,omitempty"`
	FpVal  *float64 `json:"fpVal,omitempty"`
}

type sessionsResponse struct {
	Session []session `json:"session"`
}

type session struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StartTimeMillis string `json:"startTimeMillis"`
	EndTimeMillis   string `json:"endTimeMillis"`
	ActivityType    int    `json:"activityType"`
}

// TrendPoint — одна точка серии для графиков.
type TrendPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// StepsResult — результат суточной агрегации шагов.
type StepsResult struct {
	Steps        int
	Completeness Completeness
}

type CaloriesResult struct {
	Calories     int
	Completeness Completeness
}

type DistanceResult struct {
	Km           float64
	Completeness Completeness
}

// SleepResult содержит часы сна и информационное сообщение
// для случая, когда сессий не нашлось.
type SleepResult struct {
	Hours        float64
	Completeness Completeness
	Message      string
}

// HeartRateResult: Current равен nil, когда пульс не измерялся.
type HeartRateResult struct {
	Current      *int
	Hourly       []TrendPoint
	Completeness Completeness
}

type SeriesResult struct {
	Points       []TrendPoint
	Completeness Completeness
}
