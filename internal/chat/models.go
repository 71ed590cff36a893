package chat

import (
	"time"

	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/google/uuid"
)

type ChatMessageDTO struct {
	ID          uuid.UUID            `json:"id"`
	Role        string               `json:"role"`
	Content     string               `json:"content"`
	ClientMsgID string               `json:"client_msg_id,omitempty"`
	Sources     []storage.ChatSource `json:"sources,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

type SendMessageRequest struct {
	Content     string `json:"content"`
	ClientMsgID string `json:"client_msg_id"`
}

type SendMessageResponse struct {
	UserMessage  ChatMessageDTO `json:"user_message"`
	ModelMessage ChatMessageDTO `json:"model_message"`
}

type ListMessagesResponse struct {
	Messages []ChatMessageDTO `json:"messages"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func messageToDTO(msg storage.ChatMessage) ChatMessageDTO {
	return ChatMessageDTO{
		ID:          msg.ID,
		Role:        msg.Role,
		Content:     msg.Content,
		ClientMsgID: msg.ClientMsgID,
		Sources:     msg.Sources,
		CreatedAt:   msg.CreatedAt,
	}
}
