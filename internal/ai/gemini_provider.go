package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/httpretry"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiProvider(cfg *config.Config) *GeminiProvider {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}

	return &GeminiProvider{
		apiKey:  cfg.GeminiAPIKey,
		model:   cfg.GeminiModel,
		baseURL: defaultGeminiBaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	requestPayload := generateContentRequest{
		Contents: p.buildContents(req),
	}
	if strings.TrimSpace(req.SystemInstruction) != "" {
		requestPayload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}
	if req.UseSearch {
		requestPayload.Tools = []geminiTool{{GoogleSearch: map[string]any{}}}
	}

	body, err := json.Marshal(requestPayload)
	if err != nil {
		return GenerateResponse{}, err
	}

	endpoint := fmt.Sprintf(
		"%s/v1beta/models/%s:generateContent?key=%s",
		p.baseURL, p.model, url.QueryEscape(p.apiKey),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return GenerateResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpretry.Do(ctx, p.httpClient, httpReq)
	if err != nil {
		return GenerateResponse{}, err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return GenerateResponse{}, err
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return GenerateResponse{Text: FallbackMessage}, nil
	}
	if len(parsed.Candidates) == 0 {
		return GenerateResponse{Text: FallbackMessage}, nil
	}

	candidate := parsed.Candidates[0]
	if len(candidate.Content.Parts) == 0 || strings.TrimSpace(candidate.Content.Parts[0].Text) == "" {
		return GenerateResponse{Text: FallbackMessage}, nil
	}

	return GenerateResponse{
		Text:    strings.TrimSpace(candidate.Content.Parts[0].Text),
		Sources: extractSources(candidate.GroundingMetadata),
	}, nil
}

func (p *GeminiProvider) buildContents(req GenerateRequest) []geminiContent {
	contents := make([]geminiContent, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := strings.TrimSpace(msg.Role)
		if role == "" || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	return contents
}

// extractSources собирает источники из grounding-метаданных.
// Записи без uri или title отбрасываются.
func extractSources(meta *groundingMetadata) []Source {
	if meta == nil || len(meta.GroundingAttributions) == 0 {
		return nil
	}

	sources := make([]Source, 0, len(meta.GroundingAttributions))
	for _, attribution := range meta.GroundingAttributions {
		uri := strings.TrimSpace(attribution.Web.URI)
		title := strings.TrimSpace(attribution.Web.Title)
		if uri == "" || title == "" {
			continue
		}
		sources = append(sources, Source{URI: uri, Title: title})
	}
	if len(sources) == 0 {
		return nil
	}
	return sources
}

type generateContentRequest struct {
	Contents          []geminiContent `json:"contents"`
	Tools             []geminiTool    `json:"tools,omitempty"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch map[string]any `json:"google_search"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content           geminiContent      `json:"content"`
		GroundingMetadata *groundingMetadata `json:"groundingMetadata"`
	} `json:"candidates"`
}

type groundingMetadata struct {
	GroundingAttributions []struct {
		Web struct {
			URI   string `json:"uri"`
			Title string `json:"title"`
		} `json:"web"`
	} `json:"groundingAttributions"`
}
