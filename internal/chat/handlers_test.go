package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/health-navigator/internal/ai"
	"github.com/fdg312/health-navigator/internal/storage/memory"
	"github.com/fdg312/health-navigator/internal/userctx"
)

type scriptedProvider struct {
	lastRequest ai.GenerateRequest
	response    ai.GenerateResponse
	err         error
}

func (p *scriptedProvider) Generate(ctx context.Context, req ai.GenerateRequest) (ai.GenerateResponse, error) {
	p.lastRequest = req
	if p.err != nil {
		return ai.GenerateResponse{}, p.err
	}
	return p.response, nil
}

func newTestHandler(provider ai.Provider, historyTurns int) *Handler {
	store := memory.New()
	service := NewService(store.GetChatStorage(), provider, historyTurns)
	return NewHandler(service)
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(userctx.WithUserID(req.Context(), "user-1"))
}

func TestHandleSendMessage(t *testing.T) {
	provider := &scriptedProvider{
		response: ai.GenerateResponse{
			Text: "Adults need 7-9 hours of sleep.",
			Sources: []ai.Source{
				{URI: "https://example.org/sleep", Title: "Sleep basics"},
			},
		},
	}
	handler := newTestHandler(provider, 10)

	req := authedRequest(http.MethodPost, "/v1/chat/messages",
		`{"content": "How much sleep do I need?", "client_msg_id": "tmp-1"}`)
	rec := httptest.NewRecorder()
	handler.HandleSendMessage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp SendMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.UserMessage.Role != "user" || resp.UserMessage.Content != "How much sleep do I need?" {
		t.Errorf("unexpected user message: %+v", resp.UserMessage)
	}
	if resp.UserMessage.ClientMsgID != "tmp-1" {
		t.Errorf("expected client_msg_id tmp-1, got %q", resp.UserMessage.ClientMsgID)
	}
	if resp.ModelMessage.Role != "model" || resp.ModelMessage.Content != "Adults need 7-9 hours of sleep." {
		t.Errorf("unexpected model message: %+v", resp.ModelMessage)
	}
	if len(resp.ModelMessage.Sources) != 1 || resp.ModelMessage.Sources[0].Title != "Sleep basics" {
		t.Errorf("expected sources on model message, got %+v", resp.ModelMessage.Sources)
	}

	if !provider.lastRequest.UseSearch {
		t.Error("expected search grounding to be enabled")
	}
	if !strings.Contains(provider.lastRequest.SystemInstruction, "health and wellness navigator") {
		t.Errorf("unexpected system instruction: %q", provider.lastRequest.SystemInstruction)
	}
}

func TestHandleSendMessageProviderFailure(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("network down")}
	handler := newTestHandler(provider, 10)

	req := authedRequest(http.MethodPost, "/v1/chat/messages", `{"content": "hello"}`)
	rec := httptest.NewRecorder()
	handler.HandleSendMessage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite provider failure, got %d", rec.Code)
	}

	var resp SendMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ModelMessage.Content != ai.FallbackMessage {
		t.Errorf("expected fallback message, got %q", resp.ModelMessage.Content)
	}
}

func TestHandleSendMessageHistoryWindow(t *testing.T) {
	provider := &scriptedProvider{response: ai.GenerateResponse{Text: "ok"}}
	handler := newTestHandler(provider, 4)

	for _, content := range []string{"one", "two", "three", "four", "five"} {
		req := authedRequest(http.MethodPost, "/v1/chat/messages",
			`{"content": "`+content+`"}`)
		rec := httptest.NewRecorder()
		handler.HandleSendMessage(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("send %q: expected 200, got %d", content, rec.Code)
		}
	}

	// История хранит все пары, но провайдеру уходят только последние 4.
	if len(provider.lastRequest.Messages) != 4 {
		t.Fatalf("expected 4 history messages, got %d", len(provider.lastRequest.Messages))
	}
	last := provider.lastRequest.Messages[len(provider.lastRequest.Messages)-1]
	if last.Role != "user" || last.Content != "five" {
		t.Errorf("expected latest user message last, got %+v", last)
	}
}

func TestHandleSendMessageValidation(t *testing.T) {
	handler := newTestHandler(&scriptedProvider{}, 10)

	t.Run("empty content", func(t *testing.T) {
		req := authedRequest(http.MethodPost, "/v1/chat/messages", `{"content": "   "}`)
		rec := httptest.NewRecorder()
		handler.HandleSendMessage(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/chat/messages", strings.NewReader(`{"content": "hi"}`))
		rec := httptest.NewRecorder()
		handler.HandleSendMessage(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestHandleListMessages(t *testing.T) {
	provider := &scriptedProvider{response: ai.GenerateResponse{Text: "reply"}}
	handler := newTestHandler(provider, 10)

	sendReq := authedRequest(http.MethodPost, "/v1/chat/messages", `{"content": "first question"}`)
	sendRec := httptest.NewRecorder()
	handler.HandleSendMessage(sendRec, sendReq)
	if sendRec.Code != http.StatusOK {
		t.Fatalf("send: expected 200, got %d", sendRec.Code)
	}

	req := authedRequest(http.MethodGet, "/v1/chat/messages", "")
	rec := httptest.NewRecorder()
	handler.HandleListMessages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ListMessagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}
	if resp.Messages[0].Role != "user" || resp.Messages[1].Role != "model" {
		t.Errorf("expected chronological user,model order, got %s,%s",
			resp.Messages[0].Role, resp.Messages[1].Role)
	}
}
