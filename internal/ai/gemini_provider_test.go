package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &GeminiProvider{
		apiKey:     "test-key",
		model:      "gemini-2.5-flash-preview-09-2025",
		baseURL:    server.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGeminiProviderGenerate(t *testing.T) {
	var captured generateContentRequest

	provider := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected key query param, got %q", r.URL.Query().Get("key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Adults need 7-9 hours of sleep."}]},
				"groundingMetadata": {
					"groundingAttributions": [
						{"web": {"uri": "https://example.org/sleep", "title": "Sleep basics"}},
						{"web": {"uri": "https://example.org/no-title", "title": ""}}
					]
				}
			}]
		}`))
	})

	resp, err := provider.Generate(context.Background(), GenerateRequest{
		SystemInstruction: "You are a concise health navigator.",
		Messages: []ChatMessage{
			{Role: "user", Content: "How much sleep do I need?"},
		},
		UseSearch: true,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if resp.Text != "Adults need 7-9 hours of sleep." {
		t.Errorf("unexpected text: %q", resp.Text)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected 1 source (entry without title dropped), got %d", len(resp.Sources))
	}
	if resp.Sources[0].URI != "https://example.org/sleep" || resp.Sources[0].Title != "Sleep basics" {
		t.Errorf("unexpected source: %+v", resp.Sources[0])
	}

	if captured.SystemInstruction == nil || len(captured.SystemInstruction.Parts) == 0 ||
		captured.SystemInstruction.Parts[0].Text != "You are a concise health navigator." {
		t.Error("system instruction was not forwarded")
	}
	if len(captured.Tools) != 1 || captured.Tools[0].GoogleSearch == nil {
		t.Error("expected google_search tool in request")
	}
	if len(captured.Contents) != 1 || captured.Contents[0].Role != "user" {
		t.Errorf("unexpected contents: %+v", captured.Contents)
	}
}

func TestGeminiProviderGenerateFallbacks(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		provider := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		})

		resp, err := provider.Generate(context.Background(), GenerateRequest{
			Messages: []ChatMessage{{Role: "user", Content: "hi"}},
		})
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if resp.Text != FallbackMessage {
			t.Errorf("expected fallback message, got %q", resp.Text)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		provider := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		resp, err := provider.Generate(context.Background(), GenerateRequest{
			Messages: []ChatMessage{{Role: "user", Content: "hi"}},
		})
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if resp.Text != FallbackMessage {
			t.Errorf("expected fallback message, got %q", resp.Text)
		}
	})

	t.Run("server error surfaces", func(t *testing.T) {
		provider := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := provider.Generate(context.Background(), GenerateRequest{
			Messages: []ChatMessage{{Role: "user", Content: "hi"}},
		})
		if err == nil {
			t.Fatal("expected error for non-2xx response")
		}
	})
}
