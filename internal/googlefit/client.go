package googlefit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fdg312/health-navigator/internal/httpretry"
)

const defaultBaseURL = "https://www.googleapis.com"

// Client — типизированный клиент REST API Google Fit.
// Все вызовы идут через httpretry и требуют bearer-токен пользователя.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithBaseURL подменяет адрес API. Используется в тестах.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) aggregate(ctx context.Context, token string, body aggregateRequest) (aggregateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return aggregateResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/fitness/v1/users/me/dataset:aggregate", bytes.NewReader(payload))
	if err != nil {
		return aggregateResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpretry.Do(ctx, c.httpClient, req)
	if err != nil {
		return aggregateResponse{}, fmt.Errorf("fitness aggregate: %w", err)
	}
	defer resp.Body.Close()

	var parsed aggregateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return aggregateResponse{}, fmt.Errorf("fitness aggregate: decode response: %w", err)
	}
	return parsed, nil
}

func (c *Client) sessions(ctx context.Context, token string, start, end time.Time, activityType int) ([]session, error) {
	query := url.Values{}
	query.Set("startTime", start.Format(time.RFC3339))
	query.Set("endTime", end.Format(time.RFC3339))
	query.Set("activityType", strconv.Itoa(activityType))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fitness/v1/users/me/sessions?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpretry.Do(ctx, c.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("fitness sessions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed sessionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("fitness sessions: decode response: %w", err)
	}
	return parsed.Session, nil
}
