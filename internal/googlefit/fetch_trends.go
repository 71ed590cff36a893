package googlefit

import (
	"context"
	"math"
	"time"
)

const (
	intradayBucket = 30 * time.Minute
	weeklyLookback = 7
)

// StepsIntraday строит накопительную серию шагов получасовыми
// корзинами от полуночи до текущего момента.
func (c *Client) StepsIntraday(ctx context.Context, token string, now time.Time) (SeriesResult, error) {
	return c.intradayCumulative(ctx, token, now, aggregateBy{
		DataTypeName: dataTypeSteps,
		DataSourceID: dataSourceSteps,
	}, 1)
}

func (c *Client) DistanceIntraday(ctx context.Context, token string, now time.Time) (SeriesResult, error) {
	// метры в километры
	return c.intradayCumulative(ctx, token, now, aggregateBy{DataTypeName: dataTypeDistance}, 1.0/1000)
}

func (c *Client) intradayCumulative(ctx context.Context, token string, now time.Time, by aggregateBy, scale float64) (SeriesResult, error) {
	start, end := DayWindow(now)
	resp, err := c.aggregate(ctx, token, aggregateRequest{
		AggregateBy:     []aggregateBy{by},
		BucketByTime:    bucketByTime{DurationMillis: intradayBucket.Milliseconds()},
		StartTimeMillis: millis(start),
		EndTimeMillis:   millis(end),
	})
	if err != nil {
		return SeriesResult{}, err
	}

	points := make([]TrendPoint, 0, len(resp.Bucket))
	var running float64
	bucketsWithData := 0
	for _, b := range resp.Bucket {
		delta, ok := bucketValue(b)
		if ok {
			bucketsWithData++
		}
		running += delta * scale
		label := time.UnixMilli(parseMillis(b.StartTimeMillis)).In(now.Location()).Format("15:04")
		points = append(points, TrendPoint{Label: label, Value: running})
	}

	return SeriesResult{
		Points:       points,
		Completeness: bucketCompleteness(len(resp.Bucket), bucketsWithData),
	}, nil
}

// StepsWeekly агрегирует шаги суточными корзинами за последние 7 дней.
func (c *Client) StepsWeekly(ctx context.Context, token string, now time.Time) (SeriesResult, error) {
	return c.weeklySeries(ctx, token, now, aggregateBy{
		DataTypeName: dataTypeSteps,
		DataSourceID: dataSourceSteps,
	}, 1, false)
}

func (c *Client) CaloriesWeekly(ctx context.Context, token string, now time.Time) (SeriesResult, error) {
	return c.weeklySeries(ctx, token, now, aggregateBy{DataTypeName: dataTypeCalories}, 1, false)
}

func (c *Client) DistanceWeekly(ctx context.Context, token string, now time.Time) (SeriesResult, error) {
	return c.weeklySeries(ctx, token, now, aggregateBy{DataTypeName: dataTypeDistance}, 1.0/1000, false)
}

func (c *Client) HeartRateWeekly(ctx context.Context, token string, now time.Time) (SeriesResult, error) {
	return c.weeklySeries(ctx, token, now, aggregateBy{DataTypeName: dataTypeHeartRate}, 1, true)
}

func (c *Client) weeklySeries(ctx context.Context, token string, now time.Time, by aggregateBy, scale float64, lastPoint bool) (SeriesResult, error) {
	dayStart, _ := DayWindow(now)
	start := dayStart.AddDate(0, 0, -(weeklyLookback - 1))

	resp, err := c.aggregate(ctx, token, aggregateRequest{
		AggregateBy:     []aggregateBy{by},
		BucketByTime:    bucketByTime{DurationMillis: (24 * time.Hour).Milliseconds()},
		StartTimeMillis: millis(start),
		EndTimeMillis:   millis(now),
	})
	if err != nil {
		return SeriesResult{}, err
	}

	points := make([]TrendPoint, 0, len(resp.Bucket))
	bucketsWithData := 0
	for _, b := range resp.Bucket {
		var value float64
		var ok bool
		if lastPoint {
			value, ok = lastPointValue(b)
		} else {
			value, ok = bucketValue(b)
		}
		if ok {
			bucketsWithData++
		}
		label := time.UnixMilli(parseMillis(b.StartTimeMillis)).In(now.Location()).Format("Mon")
		points = append(points, TrendPoint{Label: label, Value: value * scale})
	}

	return SeriesResult{
		Points:       points,
		Completeness: bucketCompleteness(len(resp.Bucket), bucketsWithData),
	}, nil
}

// SleepWeekly раскладывает сырые сессии сна по календарным дням
// последней недели по времени окончания сессии.
func (c *Client) SleepWeekly(ctx context.Context, token string, now time.Time) (SeriesResult, error) {
	dayStart, _ := DayWindow(now)
	start := dayStart.AddDate(0, 0, -(weeklyLookback - 1))

	sessions, err := c.sessions(ctx, token, start, now, sleepActivityType)
	if err != nil {
		return SeriesResult{}, err
	}

	totals := make(map[string]float64, weeklyLookback)
	for _, s := range sessions {
		endMs := parseMillis(s.EndTimeMillis)
		startMs := parseMillis(s.StartTimeMillis)
		if startMs >= endMs {
			continue
		}
		day := time.UnixMilli(endMs).In(now.Location()).Format("2006-01-02")
		totals[day] += float64(endMs-startMs) / 3_600_000
	}

	points := make([]TrendPoint, 0, weeklyLookback)
	daysWithData := 0
	for i := 0; i < weeklyLookback; i++ {
		day := start.AddDate(0, 0, i)
		hours := totals[day.Format("2006-01-02")]
		if hours > 0 {
			daysWithData++
		}
		points = append(points, TrendPoint{
			Label: day.Format("Mon"),
			Value: math.Round(hours*10) / 10,
		})
	}

	return SeriesResult{
		Points:       points,
		Completeness: bucketCompleteness(weeklyLookback, daysWithData),
	}, nil
}
