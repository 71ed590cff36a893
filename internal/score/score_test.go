package score

import "testing"

func intPtr(v int) *int { return &v }

func TestStepsContributionCapped(t *testing.T) {
	base := Calculate(Input{})
	withSteps := Calculate(Input{Steps: 12000, StepGoal: 10000})

	if got := withSteps.Score - base.Score; got != 20 {
		t.Fatalf("steps contribution = %d, want 20 (capped at ratio 1)", got)
	}
}

func TestStepsContributionExactRatio(t *testing.T) {
	base := Calculate(Input{})
	half := Calculate(Input{Steps: 5000, StepGoal: 10000})

	if got := half.Score - base.Score; got != 10 {
		t.Fatalf("steps contribution = %d, want 10", got)
	}
}

func TestHeartRateDeviationPenalty(t *testing.T) {
	base := Calculate(Input{})

	resting := Calculate(Input{HeartRate: intPtr(75)})
	if got := resting.Score - base.Score; got != 20 {
		t.Fatalf("hr=75 contribution = %d, want 20", got)
	}

	elevated := Calculate(Input{HeartRate: intPtr(115)})
	if got := elevated.Score - base.Score; got != 0 {
		t.Fatalf("hr=115 contribution = %d, want 0", got)
	}
}

func TestAbsentHeartRateContributesNothing(t *testing.T) {
	withNil := Calculate(Input{Steps: 10000, StepGoal: 10000})
	withZeroDeviation := Calculate(Input{Steps: 10000, StepGoal: 10000, HeartRate: intPtr(75)})

	if withZeroDeviation.Score-withNil.Score != 20 {
		t.Fatalf("nil heart rate must not be scored: %d vs %d", withNil.Score, withZeroDeviation.Score)
	}
}

func TestFullSnapshotScoresHundred(t *testing.T) {
	result := Calculate(Input{
		Steps:           12000,
		SleepHours:      8,
		Calories:        600,
		DistanceKm:      6,
		HeartRate:       intPtr(75),
		HydrationMl:     2500,
		HydrationGoalMl: 2000,
		StepGoal:        10000,
		SleepGoalHours:  7.5,
	})
	if result.Score != 100 {
		t.Fatalf("score = %d, want 100", result.Score)
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("no suggestions expected for a perfect day, got %v", result.Suggestions)
	}
}

func TestAdviceListsTruncatedToThree(t *testing.T) {
	result := Calculate(Input{HeartRate: intPtr(130)})

	if len(result.Explanations) != 3 {
		t.Fatalf("explanations = %d, want 3", len(result.Explanations))
	}
	if len(result.Suggestions) != 3 {
		t.Fatalf("suggestions = %d, want 3", len(result.Suggestions))
	}
}

func TestCanonicalExplanationOrder(t *testing.T) {
	result := Calculate(Input{Steps: 1000, SleepHours: 2})

	wantPrefixes := []string{"Steps:", "Sleep:", "Hydration:"}
	for i, prefix := range wantPrefixes {
		if len(result.Explanations) <= i {
			t.Fatalf("missing explanation %d", i)
		}
		if got := result.Explanations[i]; len(got) < len(prefix) || got[:len(prefix)] != prefix {
			t.Fatalf("explanation %d = %q, want prefix %q", i, got, prefix)
		}
	}
}

func TestDefaultsAppliedWhenGoalsMissing(t *testing.T) {
	base := Calculate(Input{})
	result := Calculate(Input{Steps: DefaultStepGoal})
	if result.Score-base.Score != 20 {
		t.Fatalf("default step goal not applied: %d", result.Score-base.Score)
	}
}
