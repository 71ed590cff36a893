package googlefit

import (
	"context"
	"math"
	"time"
)

const (
	sleepLookback  = 36 * time.Hour
	sleepDayWindow = 24 * time.Hour

	// NoSleepDataMessage — информационное сообщение, а не ошибка.
	NoSleepDataMessage = "No sleep data found for the past 36 hours."
)

// StepsToday возвращает сумму шагов за сегодня одной корзиной на всё окно.
func (c *Client) StepsToday(ctx context.Context, token string, now time.Time) (StepsResult, error) {
	start, end := DayWindow(now)
	resp, err := c.aggregate(ctx, token, aggregateRequest{
		AggregateBy: []aggregateBy{{
			DataTypeName: dataTypeSteps,
			DataSourceID: dataSourceSteps,
		}},
		BucketByTime:    bucketByTime{DurationMillis: end.Sub(start).Milliseconds()},
		StartTimeMillis: millis(start),
		EndTimeMillis:   millis(end),
	})
	if err != nil {
		return StepsResult{}, err
	}

	steps, completeness := firstIntValue(resp)
	return StepsResult{Steps: int(steps), Completeness: completeness}, nil
}

func (c *Client) CaloriesToday(ctx context.Context, token string, now time.Time) (CaloriesResult, error) {
	start, end := DayWindow(now)
	resp, err := c.aggregate(ctx, token, aggregateRequest{
		AggregateBy:     []aggregateBy{{DataTypeName: dataTypeCalories}},
		BucketByTime:    bucketByTime{DurationMillis: end.Sub(start).Milliseconds()},
		StartTimeMillis: millis(start),
		EndTimeMillis:   millis(end),
	})
	if err != nil {
		return CaloriesResult{}, err
	}

	total, completeness := sumFloatValues(resp)
	return CaloriesResult{Calories: int(math.Round(total)), Completeness: completeness}, nil
}

// DistanceToday складывает все точки всех корзин: ответ провайдера
// может раздробить дистанцию на несколько фрагментов.
func (c *Client) DistanceToday(ctx context.Context, token string, now time.Time) (DistanceResult, error) {
	start, end := DayWindow(now)
	resp, err := c.aggregate(ctx, token, aggregateRequest{
		AggregateBy:     []aggregateBy{{DataTypeName: dataTypeDistance}},
		BucketByTime:    bucketByTime{DurationMillis: end.Sub(start).Milliseconds()},
		StartTimeMillis: millis(start),
		EndTimeMillis:   millis(end),
	})
	if err != nil {
		return DistanceResult{}, err
	}

	meters, completeness := sumFloatValues(resp)
	return DistanceResult{Km: meters / 1000, Completeness: completeness}, nil
}

// SleepLastNight запрашивает сессии сна за 36 часов, чтобы поймать
// сессию, начавшуюся накануне вечером, и суммирует те, что закончились
// в последние сутки.
func (c *Client) SleepLastNight(ctx context.Context, token string, now time.Time) (SleepResult, error) {
	sessions, err := c.sessions(ctx, token, now.Add(-sleepLookback), now, sleepActivityType)
	if err != nil {
		return SleepResult{}, err
	}

	if len(sessions) == 0 {
		return SleepResult{Hours: 0, Completeness: NoData, Message: NoSleepDataMessage}, nil
	}

	cutoff := now.Add(-sleepDayWindow).UnixMilli()
	var totalMillis int64
	counted := 0
	for _, s := range sessions {
		endMs := parseMillis(s.EndTimeMillis)
		if endMs < cutoff || endMs > now.UnixMilli() {
			continue
		}
		startMs := parseMillis(s.StartTimeMillis)
		if startMs >= endMs {
			continue
		}
		totalMillis += endMs - startMs
		counted++
	}

	if counted == 0 {
		return SleepResult{Hours: 0, Completeness: NoData, Message: NoSleepDataMessage}, nil
	}

	hours := math.Round(float64(totalMillis)/3_600_000*10) / 10
	return SleepResult{Hours: hours, Completeness: Complete}, nil
}

// HeartRate агрегирует пульс почасовыми корзинами за последние сутки.
// «Текущее» значение — последняя точка последней непустой корзины,
// не среднее.
func (c *Client) HeartRate(ctx context.Context, token string, now time.Time) (HeartRateResult, error) {
	start := now.Add(-24 * time.Hour)
	resp, err := c.aggregate(ctx, token, aggregateRequest{
		AggregateBy:     []aggregateBy{{DataTypeName: dataTypeHeartRate}},
		BucketByTime:    bucketByTime{DurationMillis: time.Hour.Milliseconds()},
		StartTimeMillis: millis(start),
		EndTimeMillis:   millis(now),
	})
	if err != nil {
		return HeartRateResult{}, err
	}

	result := HeartRateResult{Completeness: NoData}
	bucketsWithData := 0
	for _, b := range resp.Bucket {
		value, ok := lastPointValue(b)
		if !ok {
			continue
		}
		bucketsWithData++
		bpm := int(math.Round(value))
		result.Current = &bpm

		label := time.UnixMilli(parseMillis(b.StartTimeMillis)).In(now.Location()).Format("15:04")
		result.Hourly = append(result.Hourly, TrendPoint{Label: label, Value: value})
	}

	result.Completeness = bucketCompleteness(len(resp.Bucket), bucketsWithData)
	if len(resp.Bucket) == 0 {
		result.Completeness = NoData
	}
	return result, nil
}
