package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/ai"
	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/fdg312/health-navigator/internal/userctx"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
)

const systemPrompt = "You are a concise, knowledgeable health and wellness navigator. " +
	"Provide a direct, factual answer to the user's question. " +
	"Limit your response to a maximum of 4-5 sentences. " +
	"Use Google Search grounding for medical/factual queries."

const maxContentLength = 4000

// Service содержит бизнес-логику чата с AI-навигатором.
type Service struct {
	chatStorage  storage.ChatStorage
	provider     ai.Provider
	historyTurns int
	now          func() time.Time
}

func NewService(chatStorage storage.ChatStorage, provider ai.Provider, historyTurns int) *Service {
	if historyTurns <= 0 {
		historyTurns = 10
	}
	return &Service{
		chatStorage:  chatStorage,
		provider:     provider,
		historyTurns: historyTurns,
		now:          time.Now,
	}
}

func (s *Service) ListMessages(ctx context.Context, limit int) (*ListMessagesResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	rows, err := s.chatStorage.ListChatMessages(ctx, userID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}

	messages := make([]ChatMessageDTO, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, messageToDTO(row))
	}

	return &ListMessagesResponse{Messages: messages}, nil
}

// SendMessage сохраняет сообщение пользователя, запрашивает ответ модели
// и сохраняет его. Ошибка провайдера не фатальна: вместо ответа модели
// сохраняется фиксированный текст-заглушка.
func (s *Service) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	content := strings.TrimSpace(req.Content)
	if content == "" || len(content) > maxContentLength {
		return nil, ErrInvalidRequest
	}

	userMessage, err := s.chatStorage.InsertChatMessage(ctx, storage.ChatMessage{
		UserID:      userID,
		Role:        "user",
		Content:     content,
		ClientMsgID: strings.TrimSpace(req.ClientMsgID),
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	// История уже включает только что сохранённое сообщение пользователя.
	historyRows, err := s.chatStorage.ListChatMessages(ctx, userID, s.historyTurns)
	if err != nil {
		return nil, err
	}

	aiMessages := make([]ai.ChatMessage, 0, len(historyRows))
	for _, msg := range historyRows {
		aiMessages = append(aiMessages, ai.ChatMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	modelText := ai.FallbackMessage
	var sources []storage.ChatSource

	reply, err := s.provider.Generate(ctx, ai.GenerateRequest{
		SystemInstruction: systemPrompt,
		Messages:          aiMessages,
		UseSearch:         true,
	})
	if err != nil {
		log.Printf("WARNING: chat provider failed for user %s: %v", userID, err)
	} else if strings.TrimSpace(reply.Text) != "" {
		modelText = strings.TrimSpace(reply.Text)
		for _, src := range reply.Sources {
			sources = append(sources, storage.ChatSource{URI: src.URI, Title: src.Title})
		}
	}

	modelMessage, err := s.chatStorage.InsertChatMessage(ctx, storage.ChatMessage{
		UserID:    userID,
		Role:      "model",
		Content:   modelText,
		Sources:   sources,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return &SendMessageResponse{
		UserMessage:  messageToDTO(userMessage),
		ModelMessage: messageToDTO(modelMessage),
	}, nil
}

func userIDFromContext(ctx context.Context) string {
	userID, ok := userctx.GetUserID(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(userID)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}
