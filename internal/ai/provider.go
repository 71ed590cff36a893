package ai

import (
	"context"
	"time"
)

// FallbackMessage возвращается вместо ответа модели, когда провайдер
// недоступен или ответ не удалось разобрать.
const FallbackMessage = "Sorry, I couldn't generate a response. Please try again later."

type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

type ChatMessage struct {
	Role      string // user | model
	Content   string
	CreatedAt time.Time
}

// Source — ссылка на источник, которым модель подтвердила ответ
// (grounding через поиск).
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type GenerateRequest struct {
	SystemInstruction string
	Messages          []ChatMessage
	UseSearch         bool
}

type GenerateResponse struct {
	Text    string
	Sources []Source
}
