package score

import (
	"fmt"
	"math"
)

// Дефолтные цели, используются когда пользователь не задал свои.
const (
	DefaultStepGoal        = 10000
	DefaultSleepGoalHours  = 7.5
	DefaultHydrationGoalMl = 2000
)

const maxAdviceEntries = 3

// Input — снимок метрик плюс цели. HeartRate равен nil, когда пульс
// не измерялся; остальные нули считаются настоящими нулями.
type Input struct {
	Steps      int
	SleepHours float64
	Calories   int
	DistanceKm float64
	HeartRate  *int

	HydrationMl     int
	HydrationGoalMl int
	StepGoal        int
	SleepGoalHours  float64
}

// HealthScore — итог 0–100 с пояснениями и советами (не больше трёх
// каждого, в каноническом порядке метрик).
type HealthScore struct {
	Score        int      `json:"score"`
	Explanations []string `json:"explanations"`
	Suggestions  []string `json:"suggestions"`
}

// Calculate — чистая функция: взвешенная сумма покрытия целей.
// Метрики оцениваются в фиксированном порядке: шаги, сон, вода,
// калории, дистанция, пульс.
func Calculate(in Input) HealthScore {
	stepGoal := in.StepGoal
	if stepGoal <= 0 {
		stepGoal = DefaultStepGoal
	}
	sleepGoal := in.SleepGoalHours
	if sleepGoal <= 0 {
		sleepGoal = DefaultSleepGoalHours
	}
	hydrationGoal := in.HydrationGoalMl
	if hydrationGoal <= 0 {
		hydrationGoal = DefaultHydrationGoalMl
	}

	var total float64
	var explanations, suggestions []string

	add := func(points float64, explanation, suggestion string, belowTarget bool) {
		total += points
		explanations = append(explanations, explanation)
		if belowTarget {
			suggestions = append(suggestions, suggestion)
		}
	}

	stepsRatio := capRatio(float64(in.Steps) / float64(stepGoal))
	add(stepsRatio*20,
		fmt.Sprintf("Steps: %s (%d of %d)", ratioLabel(stepsRatio), in.Steps, stepGoal),
		fmt.Sprintf("Try to reach %d steps today, a short walk helps.", stepGoal),
		stepsRatio < 1)

	sleepRatio := capRatio(in.SleepHours / sleepGoal)
	add(sleepRatio*20,
		fmt.Sprintf("Sleep: %s (%.1fh of %.1fh)", ratioLabel(sleepRatio), in.SleepHours, sleepGoal),
		fmt.Sprintf("Aim for %.1f hours of sleep tonight.", sleepGoal),
		sleepRatio < 1)

	hydrationRatio := capRatio(float64(in.HydrationMl) / float64(hydrationGoal))
	add(hydrationRatio*20,
		fmt.Sprintf("Hydration: %s (%dml of %dml)", ratioLabel(hydrationRatio), in.HydrationMl, hydrationGoal),
		"Drink a glass of water now to catch up on hydration.",
		hydrationRatio < 1)

	caloriesRatio := capRatio(float64(in.Calories) / 500)
	add(caloriesRatio*10,
		fmt.Sprintf("Active calories: %s (%d kcal)", ratioLabel(caloriesRatio), in.Calories),
		"Add some activity to burn more calories.",
		caloriesRatio < 1)

	distanceRatio := capRatio(in.DistanceKm / 5)
	add(distanceRatio*10,
		fmt.Sprintf("Distance: %s (%.1f km)", ratioLabel(distanceRatio), in.DistanceKm),
		"A longer walk or a light run would boost your distance.",
		distanceRatio < 1)

	if in.HeartRate != nil {
		bpm := *in.HeartRate
		// штраф за отклонение от базового пульса покоя, не проверка диапазона
		factor := math.Max(0, 1-math.Abs(float64(bpm)-75)/40)
		add(factor*20,
			fmt.Sprintf("Heart rate: %s (%d bpm)", ratioLabel(factor), bpm),
			"Your heart rate is far from a typical resting baseline, consider a calm break.",
			factor < 0.5)
	}

	if len(explanations) > maxAdviceEntries {
		explanations = explanations[:maxAdviceEntries]
	}
	if len(suggestions) > maxAdviceEntries {
		suggestions = suggestions[:maxAdviceEntries]
	}

	return HealthScore{
		Score:        int(math.Round(total)),
		Explanations: explanations,
		Suggestions:  suggestions,
	}
}

func capRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func ratioLabel(r float64) string {
	switch {
	case r >= 1:
		return "excellent"
	case r >= 0.6:
		return "good"
	case r >= 0.3:
		return "fair"
	default:
		return "low"
	}
}
