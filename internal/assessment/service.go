package assessment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fdg312/health-navigator/internal/ai"
	"github.com/fdg312/health-navigator/internal/metrics"
	"github.com/fdg312/health-navigator/internal/settings"
)

var ErrUnauthorized = errors.New("unauthorized")

const systemPrompt = "You are a direct, objective, and professional Wellness Analyst. " +
	"Provide an honest, integrated assessment of the user's steps and sleep data. " +
	"Compare facts against recommended health goals, and give 3 specific, actionable, " +
	"and non-overly-optimistic suggestions for improvement or maintenance across both domains. " +
	"The tone must be neutral and focused on data and progress, not emotional encouragement."

type snapshotSource interface {
	Snapshot(ctx context.Context) (*metrics.SnapshotResponse, error)
}

type goalsSource interface {
	GetOrDefault(ctx context.Context, userID string) (settings.SettingsResponse, error)
}

// Service строит разовую AI-оценку по текущему снимку метрик.
// Результат не персистится: это одноразовый вывод аналитика.
type Service struct {
	snapshots snapshotSource
	goals     goalsSource
	provider  ai.Provider
}

func NewService(snapshots snapshotSource, goals goalsSource, provider ai.Provider) *Service {
	return &Service{
		snapshots: snapshots,
		goals:     goals,
		provider:  provider,
	}
}

func (s *Service) Assess(ctx context.Context, userID string) (*AssessmentResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil && !errors.Is(err, metrics.ErrNotSynced) {
		return nil, err
	}

	stepGoal := 10000
	sleepGoalHours := 7.5
	if s.goals != nil {
		if resp, err := s.goals.GetOrDefault(ctx, userID); err == nil {
			stepGoal = resp.Settings.StepGoal
			sleepGoalHours = resp.Settings.SleepGoalHours
		}
	}

	prompt := buildPrompt(snapshot, stepGoal, sleepGoalHours)

	reply, err := s.provider.Generate(ctx, ai.GenerateRequest{
		SystemInstruction: systemPrompt,
		Messages: []ai.ChatMessage{
			{Role: "user", Content: prompt},
		},
		UseSearch: true,
	})
	if err != nil {
		log.Printf("WARNING: assessment provider failed for user %s: %v", userID, err)
		return &AssessmentResponse{Text: ai.FallbackMessage}, nil
	}

	sources := make([]SourceDTO, 0, len(reply.Sources))
	for _, src := range reply.Sources {
		sources = append(sources, SourceDTO{URI: src.URI, Title: src.Title})
	}

	return &AssessmentResponse{
		Text:    reply.Text,
		Sources: sources,
	}, nil
}

func buildPrompt(snapshot *metrics.SnapshotResponse, stepGoal int, sleepGoalHours float64) string {
	stepStatus := "Data not available."
	sleepStatus := "Data not available."

	if snapshot != nil && snapshot.Snapshot != nil {
		snap := snapshot.Snapshot
		if snap.StepsStatus != "no_data" {
			stepStatus = fmt.Sprintf("%d steps (Goal: %d steps)", snap.Steps, stepGoal)
		}
		if snap.SleepStatus != "no_data" {
			sleepStatus = fmt.Sprintf("%.1f hours (Recommended: %.1f hours)", snap.SleepHours, sleepGoalHours)
		}
	}

	return fmt.Sprintf(
		"Analyze the following two key health metrics and provide an integrated wellness summary:\n"+
			"1. Daily Steps: %s\n"+
			"2. Sleep Duration (Last Night): %s\n\n"+
			"Provide a frank, objective assessment and suggestions. "+
			"Focus on how sleep impacts energy and motivation for activity. "+
			"If both are low, suggest prioritization. "+
			"If one is good and the other is poor, focus on improving the weaker metric and maintaining the stronger one. "+
			"The general health goal is %d steps and %.1f hours of sleep. "+
			"The analysis must be professional and direct.",
		stepStatus, sleepStatus, stepGoal, sleepGoalHours,
	)
}
