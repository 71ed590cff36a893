package ai

import (
	"context"
	"strings"
)

// MockProvider отвечает заготовленными текстами без обращения к сети.
// Используется в тестах и в режиме AI_MODE=mock.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	_ = ctx

	lastUserMessage := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			lastUserMessage = req.Messages[i].Content
			break
		}
	}

	lowered := strings.ToLower(lastUserMessage)

	var text string
	var sources []Source

	switch {
	case strings.Contains(lowered, "sleep"):
		text = "Mock answer: adults generally need 7-9 hours of sleep per night. " +
			"Consistent bed and wake times improve sleep quality more than total duration alone. " +
			"This is a demo mode response and not medical advice."
		sources = []Source{{
			URI:   "https://example.org/sleep-guidelines",
			Title: "Sleep duration guidelines",
		}}
	case strings.Contains(lowered, "steps") || strings.Contains(lowered, "walk"):
		text = "Mock answer: a common daily target is 10,000 steps, though health benefits " +
			"start well below that. Spreading activity through the day also counts. " +
			"This is a demo mode response and not medical advice."
	case strings.Contains(lowered, "water") || strings.Contains(lowered, "hydration"):
		text = "Mock answer: a reasonable hydration baseline is about 2 liters of water per day, " +
			"adjusted for activity and climate. This is a demo mode response and not medical advice."
	case strings.Contains(lowered, "wellness analyst") ||
		strings.Contains(strings.ToLower(req.SystemInstruction), "wellness analyst"):
		text = "Mock assessment: steps and sleep are below the stated goals. " +
			"1. Schedule a fixed bedtime to protect sleep duration. " +
			"2. Add a 20-minute walk at lunchtime. " +
			"3. Re-check both metrics after one week of consistent routine."
	default:
		text = "Mock answer: I can help with questions about steps, sleep, heart rate and hydration. " +
			"This is a demo mode response and not medical advice."
	}

	return GenerateResponse{Text: text, Sources: sources}, nil
}
